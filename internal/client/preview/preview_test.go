package preview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_TextPreview(t *testing.T) {
	d := NewDispatcher()

	m := d.Preview("notes.md", []byte("# Title\n\nFirst paragraph.\n\nSecond paragraph.\n"))

	assert.Equal(t, KindText, m.Kind)
	assert.Empty(t, m.Note)
	require.NotEmpty(t, m.Pages)
	assert.Equal(t, "Title", m.Pages[0].Title)
	assert.Contains(t, m.Pages[0].Lines, "First paragraph.")
	assert.Contains(t, m.Pages[0].Lines, "Second paragraph.")
}

func TestDispatcher_GridPreview(t *testing.T) {
	d := NewDispatcher()

	m := d.Preview("data.csv", []byte("name,age\nalice,30\nbob,25\n"))

	assert.Equal(t, KindGrid, m.Kind)
	require.NotEmpty(t, m.Pages)
	assert.Equal(t, "name\tage", m.Pages[0].Title)
	assert.Contains(t, m.Pages[0].Lines, "alice\t30")
}

func TestDispatcher_UnknownExtensionFallsBack(t *testing.T) {
	d := NewDispatcher()

	m := d.Preview("image.png", []byte{0x89, 0x50, 0x4e, 0x47})

	assert.Equal(t, KindNone, m.Kind)
	assert.Empty(t, m.Pages)
	assert.Contains(t, m.Note, "preview not available")
}

func TestDispatcher_DecoderFailureIsLocal(t *testing.T) {
	d := NewDispatcher()

	// Not a ZIP archive, so the DOCX decoder fails.
	broken := d.Preview("broken.docx", []byte("not a zip"))
	assert.Equal(t, KindNone, broken.Kind)
	assert.Contains(t, broken.Note, "preview failed")

	// The dispatcher still previews other files afterwards.
	ok := d.Preview("notes.txt", []byte("still works"))
	assert.Equal(t, KindText, ok.Kind)
	assert.Empty(t, ok.Note)
}

func TestDispatcher_PreviewFile(t *testing.T) {
	d := NewDispatcher()

	t.Run("reads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello from disk"), 0o600))

		m := d.PreviewFile(path)

		assert.Equal(t, KindText, m.Kind)
		require.NotEmpty(t, m.Pages)
	})

	t.Run("missing file degrades to a note", func(t *testing.T) {
		m := d.PreviewFile(filepath.Join(t.TempDir(), "missing.txt"))

		assert.Equal(t, KindNone, m.Kind)
		assert.Contains(t, m.Note, "preview failed")
	})
}
