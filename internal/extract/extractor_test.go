package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()

	t.Run("known extensions", func(t *testing.T) {
		for _, name := range []string{"a.pdf", "b.DOCX", "c.xlsx", "d.csv", "e.pptx", "f.txt", "g.md"} {
			e, err := r.Lookup(name)
			assert.NoError(t, err, name)
			assert.NotNil(t, e, name)
			assert.True(t, r.Supported(name), name)
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := r.Lookup("image.png")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.False(t, r.Supported("image.png"))
	})

	t.Run("no extension", func(t *testing.T) {
		_, err := r.Lookup("README")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestRegistry_Extensions(t *testing.T) {
	exts := NewRegistry().Extensions()

	assert.Contains(t, exts, ".pdf")
	assert.Contains(t, exts, ".md")
	assert.IsIncreasing(t, exts)
}

func TestFileType(t *testing.T) {
	assert.Equal(t, "pdf", FileType("report.PDF"))
	assert.Equal(t, "txt", FileType("notes.txt"))
	assert.Equal(t, "", FileType("README"))
}

func TestTextExtractor(t *testing.T) {
	e := NewTextExtractor()

	t.Run("markdown headings become titles", func(t *testing.T) {
		res, err := e.Extract([]byte("# Overview\n\nSome narrative text here.\n\n## Details\n\nMore text follows here.\n"))
		require.NoError(t, err)

		require.Len(t, res.Elements, 4)
		assert.Equal(t, CategoryTitle, res.Elements[0].Category)
		assert.Equal(t, "Overview", res.Elements[0].Text)
		assert.Equal(t, CategoryNarrativeText, res.Elements[1].Category)
		assert.Equal(t, "Overview", res.Elements[1].Section)
		assert.Equal(t, "Details", res.Elements[3].Section)
	})

	t.Run("empty input fails", func(t *testing.T) {
		_, err := e.Extract([]byte("   \n  "))
		assert.Error(t, err)
	})

	t.Run("invalid utf8 fails", func(t *testing.T) {
		_, err := e.Extract([]byte{0xff, 0xfe, 0xfd})
		assert.Error(t, err)
	})
}

func TestCSVExtractor(t *testing.T) {
	e := NewCSVExtractor()

	t.Run("comma separated", func(t *testing.T) {
		res, err := e.Extract([]byte("name,age\nalice,30\nbob,25\n"))
		require.NoError(t, err)

		require.Len(t, res.Elements, 2)
		assert.Equal(t, CategoryTitle, res.Elements[0].Category)
		assert.Equal(t, "name\tage", res.Elements[0].Text)
		assert.Equal(t, CategoryTable, res.Elements[1].Category)
		assert.Equal(t, "alice\t30\nbob\t25", res.Elements[1].Text)
		assert.Equal(t, "name\tage", res.Elements[1].Section)
	})

	t.Run("semicolon sniffing", func(t *testing.T) {
		res, err := e.Extract([]byte("name;age\nalice;30\n"))
		require.NoError(t, err)
		assert.Equal(t, "name\tage", res.Elements[0].Text)
	})

	t.Run("empty input fails", func(t *testing.T) {
		_, err := e.Extract([]byte("  \n"))
		assert.Error(t, err)
	})
}

func TestClassifyLine(t *testing.T) {
	assert.Equal(t, CategoryTitle, classifyLine("Short heading"))
	assert.Equal(t, CategoryNarrativeText, classifyLine("A full sentence ends with punctuation."))
	assert.Equal(t, CategoryListItem, classifyLine("- bullet point"))
	assert.Equal(t, CategoryListItem, classifyLine("* starred item"))
	assert.Equal(t, CategoryUncategorized, classifyLine("   "))
}

func TestResult_RawText(t *testing.T) {
	res := &Result{Elements: []Element{{Text: "one"}, {Text: "two"}}}
	assert.Equal(t, "one\ntwo", res.RawText())
	assert.Empty(t, (&Result{}).RawText())
}

func TestPDFExtractor_RejectsGarbage(t *testing.T) {
	e := NewPDFExtractor()

	_, err := e.Extract(nil)
	assert.Error(t, err)

	_, err = e.Extract([]byte("this is not a pdf"))
	assert.Error(t, err)
}
