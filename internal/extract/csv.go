package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// csvExtractor converts delimited text to a single table element.
// The delimiter is sniffed from the header line (comma, semicolon or tab).
type csvExtractor struct{}

// NewCSVExtractor returns an Extractor for CSV files.
func NewCSVExtractor() Extractor {
	return &csvExtractor{}
}

func (c *csvExtractor) Extract(data []byte) (*Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("csv: empty input")
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1 // tolerate ragged rows
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: no records")
	}

	res := &Result{Pages: 1}

	header := strings.Join(records[0], "\t")
	res.Elements = append(res.Elements, Element{
		Category: CategoryTitle,
		Text:     header,
		Page:     1,
	})

	var b strings.Builder
	for _, rec := range records[1:] {
		b.WriteString(strings.Join(rec, "\t"))
		b.WriteByte('\n')
	}
	if b.Len() > 0 {
		res.Elements = append(res.Elements, Element{
			Category: CategoryTable,
			Text:     strings.TrimRight(b.String(), "\n"),
			Page:     1,
			Section:  header,
		})
	}
	return res, nil
}

// sniffDelimiter inspects the first line and picks the most frequent of
// comma, semicolon and tab. Comma wins ties.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	commas := bytes.Count(line, []byte{','})
	semis := bytes.Count(line, []byte{';'})
	tabs := bytes.Count(line, []byte{'\t'})
	switch {
	case semis > commas && semis >= tabs:
		return ';'
	case tabs > commas && tabs > semis:
		return '\t'
	default:
		return ','
	}
}
