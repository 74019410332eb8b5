package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextPlainFormats(t *testing.T) {
	parser := NewDocumentParser()

	text, err := parser.ExtractText("jd.txt", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)

	text, err = parser.ExtractText("board.CSV", []byte("a,b,c"))
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", text)
}

func TestExtractTextUnsupportedType(t *testing.T) {
	parser := NewDocumentParser()

	_, err := parser.ExtractText("resume.docx", []byte("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestExtractFromFile(t *testing.T) {
	parser := NewDocumentParser()

	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe\nGo Engineer"), 0644))

	text, err := parser.ExtractFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo Engineer", text)

	_, err = parser.ExtractFromFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "trims lines and drops blanks",
			input:    "  Senior Engineer  \n\n\n  Acme Corp\t\n",
			expected: "Senior Engineer\nAcme Corp",
		},
		{
			name:     "already clean",
			input:    "one\ntwo",
			expected: "one\ntwo",
		},
		{
			name:     "empty",
			input:    "   \n \n ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestHashContentIgnoresFormattingDifferences(t *testing.T) {
	a := HashContent("Senior Engineer\nAcme Corp")
	b := HashContent("  Senior Engineer  \n\n  Acme Corp  ")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c := HashContent("Senior Engineer\nAcme GmbH")
	assert.NotEqual(t, a, c)
}
