package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lian/codecopy/internal/models"
)

func TestDefaultFormatTwoEntries(t *testing.T) {
	f, err := New("")
	require.NoError(t, err)

	got := f.Format([]models.Entry{
		{RelativePath: "a.ts", Content: "x"},
		{RelativePath: "b.ts", Content: "y"},
	})

	want := "a.ts\n```\nx\n```\n\nb.ts\n```\ny\n```"
	assert.Equal(t, want, got)
}

func TestFormatKeepsInputOrder(t *testing.T) {
	got := Default().Format([]models.Entry{
		{RelativePath: "z.go", Content: "1"},
		{RelativePath: "a.go", Content: "2"},
	})
	assert.Less(t, strings.Index(got, "z.go"), strings.Index(got, "a.go"))
}

func TestFormatEmpty(t *testing.T) {
	assert.Equal(t, "", Default().Format(nil))
}

func TestCustomTemplateReplacesAllOccurrences(t *testing.T) {
	f, err := New("// {filepath}\n{content}\n// end {filepath}")
	require.NoError(t, err)

	got := f.FormatEntry(models.Entry{RelativePath: "main.go", Content: "package main"})
	assert.Equal(t, "// main.go\npackage main\n// end main.go", got)
}

func TestPlaceholderInsideContentStaysLiteral(t *testing.T) {
	got := Default().FormatEntry(models.Entry{
		RelativePath: "tpl.txt",
		Content:      "path={filepath} body={content}",
	})
	assert.Equal(t, "tpl.txt\n```\npath={filepath} body={content}\n```", got)
}

func TestMalformedTemplate(t *testing.T) {
	for _, tpl := range []string{"{filepath} only", "only {content}", "neither"} {
		_, err := New(tpl)
		assert.ErrorIs(t, err, ErrMalformedTemplate, tpl)
	}
}

