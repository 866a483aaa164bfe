package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// textExtractor handles plain text and markdown. Paragraphs are split on
// blank lines; markdown headings become titles and set the section.
type textExtractor struct{}

// NewTextExtractor returns an Extractor for plain text files.
func NewTextExtractor() Extractor {
	return &textExtractor{}
}

func (t *textExtractor) Extract(data []byte) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("text: input is not valid UTF-8")
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text: empty input")
	}

	res := &Result{Pages: 1}
	var section string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		cat := classifyLine(block)
		if strings.HasPrefix(block, "#") {
			cat = CategoryTitle
			block = strings.TrimSpace(strings.TrimLeft(block, "#"))
			if block == "" {
				continue
			}
		}
		if cat == CategoryTitle {
			section = block
		}
		res.Elements = append(res.Elements, Element{
			Category: cat,
			Text:     block,
			Page:     1,
			Section:  section,
		})
	}
	return res, nil
}
