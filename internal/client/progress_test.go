package client

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountingReader_ReportsCumulativeTotals(t *testing.T) {
	var reports []int64
	cr := NewCountingReader(strings.NewReader("0123456789"), func(read int64) {
		reports = append(reports, read)
	})

	buf := make([]byte, 4)
	n, err := cr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = cr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	rest, err := io.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, "89", string(rest))

	assert.Equal(t, []int64{4, 8, 10}, reports)
	assert.Equal(t, int64(10), cr.BytesRead())
}

func TestCountingReader_NilReportIsSafe(t *testing.T) {
	cr := NewCountingReader(strings.NewReader("abc"), nil)

	data, err := io.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
	assert.Equal(t, int64(3), cr.BytesRead())
}
