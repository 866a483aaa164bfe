package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Introduction</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>The first</w:t></w:r>
      <w:r><w:t xml:space="preserve"> paragraph.</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>Line one</w:t></w:r>
      <w:r><w:br/><w:t>line two</w:t></w:r>
    </w:p>
    <w:p></w:p>
  </w:body>
</w:document>`

func TestDOCXExtractor(t *testing.T) {
	e := NewDOCXExtractor()

	t.Run("paragraphs and headings", func(t *testing.T) {
		data := buildZip(t, map[string]string{"word/document.xml": docxBody})

		res, err := e.Extract(data)
		require.NoError(t, err)

		require.Len(t, res.Elements, 3, "empty paragraphs are dropped")
		assert.Equal(t, CategoryTitle, res.Elements[0].Category)
		assert.Equal(t, "Introduction", res.Elements[0].Text)
		assert.Equal(t, "The first paragraph.", res.Elements[1].Text)
		assert.Equal(t, "Introduction", res.Elements[1].Section)
		assert.Equal(t, "Line one\nline two", res.Elements[2].Text)
	})

	t.Run("not a zip archive", func(t *testing.T) {
		_, err := e.Extract([]byte("plain text"))
		assert.Error(t, err)
	})

	t.Run("archive without document.xml", func(t *testing.T) {
		data := buildZip(t, map[string]string{"other.xml": "<x/>"})
		_, err := e.Extract(data)
		assert.ErrorContains(t, err, "document.xml")
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := e.Extract(nil)
		assert.Error(t, err)
	})
}
