package extract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slideXML(title, body string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
       xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree>
    <p:sp><p:txBody><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp>
    <p:sp><p:txBody><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp>
  </p:spTree></p:cSld>
</p:sld>`, title, body)
}

func TestPPTXExtractor(t *testing.T) {
	e := NewPPTXExtractor()

	t.Run("slides in numeric order", func(t *testing.T) {
		data := buildZip(t, map[string]string{
			"ppt/slides/slide2.xml":  slideXML("Second slide", "More content"),
			"ppt/slides/slide1.xml":  slideXML("First slide", "Some content"),
			"ppt/slides/slide10.xml": slideXML("Tenth slide", "Last content"),
			"ppt/notes/notes1.xml":   "<x/>",
		})

		res, err := e.Extract(data)
		require.NoError(t, err)

		assert.Equal(t, 3, res.Pages)
		require.Len(t, res.Elements, 6)

		assert.Equal(t, CategoryTitle, res.Elements[0].Category)
		assert.Equal(t, "First slide", res.Elements[0].Text)
		assert.Equal(t, 1, res.Elements[0].Page)
		assert.Equal(t, "slide 1", res.Elements[0].Section)

		assert.Equal(t, CategoryNarrativeText, res.Elements[1].Category)
		assert.Equal(t, "Some content", res.Elements[1].Text)

		// slide10 sorts after slide2 numerically, not lexically.
		assert.Equal(t, "Second slide", res.Elements[2].Text)
		assert.Equal(t, "Tenth slide", res.Elements[4].Text)
		assert.Equal(t, 10, res.Elements[4].Page)
	})

	t.Run("no slides", func(t *testing.T) {
		data := buildZip(t, map[string]string{"ppt/other.xml": "<x/>"})
		_, err := e.Extract(data)
		assert.ErrorContains(t, err, "no slides")
	})

	t.Run("not a zip archive", func(t *testing.T) {
		_, err := e.Extract([]byte("nope"))
		assert.Error(t, err)
	})
}
