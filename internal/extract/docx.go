package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// docxExtractor extracts text from DOCX files using a pure Go parser.
// A DOCX file is a ZIP archive; the body lives in word/document.xml.
type docxExtractor struct{}

// NewDOCXExtractor returns an Extractor for DOCX documents.
func NewDOCXExtractor() Extractor {
	return &docxExtractor{}
}

func (d *docxExtractor) Extract(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("docx: empty input")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("docx: open archive: %w", err)
	}
	var docFile *zip.File
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, "word/document.xml") {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("docx: word/document.xml not found")
	}
	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("docx: open document.xml: %w", err)
	}
	defer rc.Close()
	return parseDOCXBody(rc)
}

// parseDOCXBody walks WordprocessingML, emitting one element per paragraph.
// Heading paragraphs (pStyle starting with "Heading") become titles and set
// the current section for subsequent paragraphs.
func parseDOCXBody(r io.Reader) (*Result, error) {
	dec := xml.NewDecoder(r)
	res := &Result{Pages: 1}

	var (
		para      strings.Builder
		inPara    bool
		isHeading bool
		section   string
	)

	flush := func() {
		text := strings.TrimSpace(para.String())
		para.Reset()
		if text == "" {
			return
		}
		cat := CategoryNarrativeText
		if isHeading {
			cat = CategoryTitle
			section = text
		}
		res.Elements = append(res.Elements, Element{
			Category: cat,
			Text:     text,
			Page:     1,
			Section:  section,
		})
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docx: parse: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				isHeading = false
			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" && strings.HasPrefix(attr.Value, "Heading") {
						isHeading = true
					}
				}
			case "t", "instrText":
				var text string
				if err := dec.DecodeElement(&text, &t); err == nil && inPara {
					para.WriteString(text)
				}
			case "tab":
				if inPara {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if inPara {
					para.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				flush()
				inPara = false
			case "tc":
				if inPara {
					para.WriteByte('\t')
				}
			}
		}
	}
	if inPara {
		flush()
	}
	return res, nil
}
