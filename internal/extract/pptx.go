package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// pptxExtractor extracts slide-by-slide text from PPTX files. Like DOCX,
// a PPTX file is a ZIP archive; each slide is ppt/slides/slideN.xml.
type pptxExtractor struct{}

// NewPPTXExtractor returns an Extractor for PPTX presentations.
func NewPPTXExtractor() Extractor {
	return &pptxExtractor{}
}

func (p *pptxExtractor) Extract(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("pptx: empty input")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pptx: open archive: %w", err)
	}

	type slideFile struct {
		num  int
		file *zip.File
	}
	var slides []slideFile
	for _, f := range zr.File {
		m := slidePathRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slideFile{num: n, file: f})
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("pptx: no slides found")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	res := &Result{Pages: len(slides)}
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("slide %d: %v", s.num, err))
			continue
		}
		paras, err := parseSlideText(rc)
		rc.Close()
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("slide %d: %v", s.num, err))
			continue
		}
		for i, text := range paras {
			cat := CategoryNarrativeText
			// The first text block on a slide is almost always its title placeholder.
			if i == 0 {
				cat = CategoryTitle
			}
			res.Elements = append(res.Elements, Element{
				Category: cat,
				Text:     text,
				Page:     s.num,
				Section:  fmt.Sprintf("slide %d", s.num),
			})
		}
	}
	return res, nil
}

// parseSlideText collects the a:t runs of a slide grouped by paragraph.
func parseSlideText(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var paras []string
	var cur strings.Builder

	flush := func() {
		text := strings.TrimSpace(cur.String())
		cur.Reset()
		if text != "" {
			paras = append(paras, text)
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				var text string
				if err := dec.DecodeElement(&text, &t); err == nil {
					cur.WriteString(text)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				flush()
			}
		}
	}
	flush()
	return paras, nil
}
