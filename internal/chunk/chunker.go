// Package chunk converts extraction results into LLM-ready chunks.
package chunk

import (
	"strings"
	"unicode/utf8"

	"fileforge/internal/extract"
)

// Strategy selects how extracted elements are grouped into chunks.
type Strategy string

const (
	// StrategyNone emits one chunk per extracted element.
	StrategyNone Strategy = "none"
	// StrategyFixed splits the full text into size windows with overlap.
	StrategyFixed Strategy = "fixed"
	// StrategySemantic groups elements between title boundaries,
	// splitting oversized sections by size.
	StrategySemantic Strategy = "semantic"
)

// ParseStrategy maps a request string to a Strategy, defaulting to semantic.
func ParseStrategy(s string) Strategy {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyNone:
		return StrategyNone
	case StrategyFixed:
		return StrategyFixed
	default:
		return StrategySemantic
	}
}

// Chunk is one LLM-ready segment of a document.
type Chunk struct {
	Index      int
	Text       string
	TokenCount int

	Categories []string
	Pages      []int
	Section    string
}

// Chunker splits extraction results into chunks of roughly ChunkSize
// characters with Overlap characters repeated between neighbors.
type Chunker struct {
	ChunkSize int
	Overlap   int
}

// New returns a Chunker with sanitized parameters.
func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Chunker{ChunkSize: chunkSize, Overlap: overlap}
}

// Split applies the strategy to the extraction result.
func (c *Chunker) Split(res *extract.Result, strategy Strategy) []Chunk {
	if res == nil || len(res.Elements) == 0 {
		return nil
	}
	var out []Chunk
	switch strategy {
	case StrategyNone:
		out = c.splitNone(res)
	case StrategyFixed:
		out = c.splitFixed(res)
	default:
		out = c.splitSemantic(res)
	}
	for i := range out {
		out[i].Index = i
	}
	return out
}

// splitNone keeps each element as its own chunk.
func (c *Chunker) splitNone(res *extract.Result) []Chunk {
	out := make([]Chunk, 0, len(res.Elements))
	for _, el := range res.Elements {
		text := strings.TrimSpace(el.Text)
		if text == "" {
			continue
		}
		out = append(out, Chunk{
			Text:       text,
			TokenCount: EstimateTokens(text),
			Categories: []string{string(el.Category)},
			Pages:      pageList(el.Page),
			Section:    el.Section,
		})
	}
	return out
}

// splitFixed windows the concatenated text by rune count with overlap.
func (c *Chunker) splitFixed(res *extract.Result) []Chunk {
	runes := []rune(res.RawText())
	if len(runes) == 0 {
		return nil
	}

	step := c.ChunkSize - c.Overlap
	if step <= 0 {
		step = c.ChunkSize
	}

	out := make([]Chunk, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + c.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		text := strings.TrimSpace(string(runes[start:end]))
		if text != "" {
			out = append(out, Chunk{
				Text:       text,
				TokenCount: EstimateTokens(text),
				Categories: []string{string(extract.CategoryUncategorized)},
			})
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

// splitSemantic groups elements into sections delimited by titles. A section
// that exceeds the chunk size is flushed early so chunks stay bounded.
func (c *Chunker) splitSemantic(res *extract.Result) []Chunk {
	var out []Chunk
	var (
		b       strings.Builder
		cats    []string
		pages   []int
		section string
	)

	flush := func() {
		text := strings.TrimSpace(b.String())
		b.Reset()
		if text == "" {
			cats, pages = nil, nil
			return
		}
		out = append(out, Chunk{
			Text:       text,
			TokenCount: EstimateTokens(text),
			Categories: dedupe(cats),
			Pages:      dedupeInts(pages),
			Section:    section,
		})
		cats, pages = nil, nil
	}

	for _, el := range res.Elements {
		text := strings.TrimSpace(el.Text)
		if text == "" {
			continue
		}
		if el.Category == extract.CategoryTitle {
			flush()
			section = text
		}
		if b.Len() > 0 && b.Len()+len(text)+1 > c.ChunkSize {
			flush()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
		cats = append(cats, string(el.Category))
		if el.Page > 0 {
			pages = append(pages, el.Page)
		}
	}
	flush()
	return out
}

// EstimateTokens approximates the token count of text. Without a tokenizer
// the usual ~4 characters per token heuristic is close enough for sizing.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	t := n / 4
	if t == 0 {
		t = 1
	}
	return t
}

func pageList(page int) []int {
	if page <= 0 {
		return nil
	}
	return []int{page}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func dedupeInts(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := in[:0]
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
