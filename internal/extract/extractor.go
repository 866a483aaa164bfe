// Package extract turns uploaded file bytes into structured text elements.
// Each supported format has its own extractor; a registry maps file
// extensions to extractors so new formats plug in without touching callers.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrUnsupportedFormat is returned when no extractor is registered for an extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ElementCategory classifies an extracted element.
type ElementCategory string

const (
	CategoryTitle         ElementCategory = "Title"
	CategoryNarrativeText ElementCategory = "NarrativeText"
	CategoryListItem      ElementCategory = "ListItem"
	CategoryTable         ElementCategory = "Table"
	CategoryPageBreak     ElementCategory = "PageBreak"
	CategoryUncategorized ElementCategory = "UncategorizedText"
)

// Element is a piece of extracted text with its source location.
type Element struct {
	Category ElementCategory
	Text     string
	Page     int
	Section  string
}

// Result is the output of a single extraction run.
type Result struct {
	Elements []Element
	// Pages is the number of pages/sheets/slides seen, when the format has them.
	Pages int
	// Warnings collects non-fatal extraction issues.
	Warnings []string
}

// RawText joins all element text in document order.
func (r *Result) RawText() string {
	var b strings.Builder
	for i, el := range r.Elements {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(el.Text)
	}
	return b.String()
}

// Extractor decodes one file format into elements.
type Extractor interface {
	// Extract parses the file content. Implementations must not retain data.
	Extract(data []byte) (*Result, error)
}

// Registry maps lower-cased file extensions (with dot) to extractors.
// It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
}

// NewRegistry returns a registry with all built-in extractors registered.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	r.Register(".pdf", NewPDFExtractor())
	r.Register(".docx", NewDOCXExtractor())
	r.Register(".xlsx", NewXLSXExtractor())
	r.Register(".csv", NewCSVExtractor())
	r.Register(".pptx", NewPPTXExtractor())
	r.Register(".txt", NewTextExtractor())
	r.Register(".md", NewTextExtractor())
	return r
}

// Register adds or replaces the extractor for an extension.
func (r *Registry) Register(ext string, e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[strings.ToLower(ext)] = e
}

// Lookup returns the extractor for the file's extension.
func (r *Registry) Lookup(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return e, nil
}

// Supported reports whether the file's extension has a registered extractor.
func (r *Registry) Supported(filename string) bool {
	_, err := r.Lookup(filename)
	return err == nil
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// FileType derives the short type name ("pdf", "docx", ...) from a filename.
func FileType(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}
