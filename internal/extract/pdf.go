package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfExtractor extracts page-by-page text from PDF files.
type pdfExtractor struct{}

// NewPDFExtractor returns an Extractor for PDF documents.
func NewPDFExtractor() Extractor {
	return &pdfExtractor{}
}

func (p *pdfExtractor) Extract(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("pdf: empty input")
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf: open: %w", err)
	}

	res := &Result{Pages: r.NumPage()}
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d is empty", i))
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		for _, para := range splitParagraphs(text) {
			res.Elements = append(res.Elements, Element{
				Category: classifyLine(para),
				Text:     para,
				Page:     i,
			})
		}
	}
	return res, nil
}

// splitParagraphs breaks extracted text on blank lines and trims whitespace.
func splitParagraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}

// classifyLine assigns a coarse category based on text shape. Short lines
// without terminal punctuation are treated as titles, list markers as list
// items, everything else as narrative text.
func classifyLine(text string) ElementCategory {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return CategoryUncategorized
	}
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "• ") {
		return CategoryListItem
	}
	if len(trimmed) <= 80 && !strings.ContainsAny(trimmed[len(trimmed)-1:], ".!?,;:") && !strings.Contains(trimmed, "\n") {
		return CategoryTitle
	}
	return CategoryNarrativeText
}
