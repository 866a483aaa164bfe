// Package preview renders a local, read-only view of a file before upload.
// Decoders are registered per extension; unknown formats fall back to a
// generic stub instead of failing, and a decoder error only degrades the
// preview for that one file.
package preview

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fileforge/internal/extract"
)

// Kind tells the renderer how the pages should be laid out.
type Kind string

const (
	KindText   Kind = "text"
	KindGrid   Kind = "grid"
	KindSlides Kind = "slides"
	KindNone   Kind = "none"
)

// Page is one page, sheet or slide of a preview.
type Page struct {
	// Title is the page heading, e.g. a sheet or slide name.
	Title string
	// Lines holds the text content row by row. Grid pages keep
	// tab-separated cells within each line.
	Lines []string
}

// Model is the decoded preview of one file.
type Model struct {
	Filename string
	Kind     Kind
	Pages    []Page
	// Note carries a message for degraded previews, e.g. why the file
	// could not be decoded.
	Note string
}

// Decoder turns raw file bytes into a preview model.
type Decoder interface {
	Decode(filename string, data []byte) (*Model, error)
}

// Dispatcher routes a file to the decoder registered for its extension.
type Dispatcher struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewDispatcher returns a dispatcher with the built-in decoders registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{decoders: make(map[string]Decoder)}
	reg := extract.NewRegistry()
	text := &extractDecoder{registry: reg, kind: KindText}
	grid := &extractDecoder{registry: reg, kind: KindGrid}
	slides := &extractDecoder{registry: reg, kind: KindSlides}
	d.Register(".pdf", text)
	d.Register(".docx", text)
	d.Register(".txt", text)
	d.Register(".md", text)
	d.Register(".csv", grid)
	d.Register(".xlsx", grid)
	d.Register(".pptx", slides)
	return d
}

// Register adds or replaces the decoder for an extension.
func (d *Dispatcher) Register(ext string, dec Decoder) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.decoders[strings.ToLower(ext)] = dec
}

// Preview decodes data as filename's format. It never returns an error:
// unknown extensions and decoder failures produce a fallback model with a
// note, so one bad file cannot break the surrounding flow.
func (d *Dispatcher) Preview(filename string, data []byte) *Model {
	ext := strings.ToLower(filepath.Ext(filename))
	d.mu.RLock()
	dec, ok := d.decoders[ext]
	d.mu.RUnlock()
	if !ok {
		return fallback(filename, "preview not available for this file type")
	}
	m, err := dec.Decode(filename, data)
	if err != nil {
		return fallback(filename, "preview failed: "+err.Error())
	}
	return m
}

// PreviewFile reads path and previews its content.
func (d *Dispatcher) PreviewFile(path string) *Model {
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback(filepath.Base(path), "preview failed: "+err.Error())
	}
	return d.Preview(filepath.Base(path), data)
}

func fallback(filename, note string) *Model {
	return &Model{Filename: filename, Kind: KindNone, Note: note}
}

// extractDecoder builds preview pages from the shared extraction pipeline,
// grouping elements by their source page.
type extractDecoder struct {
	registry *extract.Registry
	kind     Kind
}

func (e *extractDecoder) Decode(filename string, data []byte) (*Model, error) {
	ex, err := e.registry.Lookup(filename)
	if err != nil {
		return nil, err
	}
	res, err := ex.Extract(data)
	if err != nil {
		return nil, err
	}

	m := &Model{Filename: filename, Kind: e.kind}
	var cur *Page
	curPage := 0
	for _, el := range res.Elements {
		if el.Category == extract.CategoryPageBreak {
			continue
		}
		if cur == nil || el.Page != curPage {
			m.Pages = append(m.Pages, Page{})
			cur = &m.Pages[len(m.Pages)-1]
			curPage = el.Page
		}
		if el.Category == extract.CategoryTitle && cur.Title == "" && len(cur.Lines) == 0 {
			cur.Title = el.Text
			continue
		}
		cur.Lines = append(cur.Lines, strings.Split(el.Text, "\n")...)
	}
	if len(m.Pages) == 0 {
		m.Note = "file contains no previewable text"
	}
	if len(res.Warnings) > 0 {
		m.Note = strings.Join(res.Warnings, "; ")
	}
	return m, nil
}
