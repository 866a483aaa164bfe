package client

import (
	"io"
	"sync/atomic"
)

// CountingReader wraps a reader and reports the cumulative number of bytes
// read. Upload progress comes from actual reads, not a timer.
type CountingReader struct {
	r      io.Reader
	read   atomic.Int64
	report func(read int64)
}

// NewCountingReader wraps r. report may be nil.
func NewCountingReader(r io.Reader, report func(read int64)) *CountingReader {
	return &CountingReader{r: r, report: report}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		total := c.read.Add(int64(n))
		if c.report != nil {
			c.report(total)
		}
	}
	return n, err
}

// BytesRead returns the cumulative count so far.
func (c *CountingReader) BytesRead() int64 {
	return c.read.Load()
}
