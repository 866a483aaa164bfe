package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxExtractor converts spreadsheets to tab-separated grid text, one table
// element per sheet. The header row is repeated as the element section so
// chunking keeps column context.
type xlsxExtractor struct{}

// NewXLSXExtractor returns an Extractor for XLSX workbooks.
func NewXLSXExtractor() Extractor {
	return &xlsxExtractor{}
}

func (x *xlsxExtractor) Extract(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("xlsx: empty input")
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xlsx: open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	res := &Result{}
	sheets := f.GetSheetList()
	res.Pages = len(sheets)

	for sheetIdx, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("sheet %q: %v", sheet, err))
			continue
		}
		if len(rows) == 0 {
			continue
		}

		res.Elements = append(res.Elements, Element{
			Category: CategoryTitle,
			Text:     sheet,
			Page:     sheetIdx + 1,
			Section:  sheet,
		})

		var b strings.Builder
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
		res.Elements = append(res.Elements, Element{
			Category: CategoryTable,
			Text:     strings.TrimRight(b.String(), "\n"),
			Page:     sheetIdx + 1,
			Section:  sheet,
		})
	}
	return res, nil
}
