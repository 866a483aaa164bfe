package model

import "time"

// Chunk is a text segment extracted from a document, read-only once stored.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Index      int    `json:"index"`

	Text       string `json:"text"`
	TextLength int    `json:"text_length"`
	TokenCount int    `json:"token_count"`

	// ChunkType records the strategy that produced the chunk ("fixed", "semantic", "none").
	ChunkType       string `json:"chunk_type"`
	ElementCategory string `json:"element_category,omitempty"`

	SourcePage    int    `json:"source_page,omitempty"`
	SourceSection string `json:"source_section,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// LLMChunk is the projection of a chunk used by the LLM-ready export.
type LLMChunk struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Index      int            `json:"index"`
	Text       string         `json:"text"`
	TokenCount int            `json:"token_count"`
	Metadata   map[string]any `json:"metadata"`
}

// ToLLMFormat converts the chunk to its LLM-ready projection.
func (c *Chunk) ToLLMFormat() LLMChunk {
	md := map[string]any{
		"chunk_type": c.ChunkType,
	}
	if c.ElementCategory != "" {
		md["element_category"] = c.ElementCategory
	}
	if c.SourcePage > 0 {
		md["source_page"] = c.SourcePage
	}
	if c.SourceSection != "" {
		md["source_section"] = c.SourceSection
	}
	return LLMChunk{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		Index:      c.Index,
		Text:       c.Text,
		TokenCount: c.TokenCount,
		Metadata:   md,
	}
}
