package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DocumentParser extracts plain text from job descriptions and resumes.
// Drive downloads arrive as byte slices, uploads as files on disk.
type DocumentParser interface {
	ExtractText(filename string, data []byte) (string, error)
	ExtractFromFile(path string) (string, error)
}

type documentParser struct{}

func NewDocumentParser() DocumentParser {
	return &documentParser{}
}

// ExtractText implements DocumentParser.
func (p *documentParser) ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt", ".csv":
		return string(data), nil
	case ".pdf":
		return p.extractPDF(data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

// ExtractFromFile implements DocumentParser.
func (p *documentParser) ExtractFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return p.ExtractText(path, data)
}

func (p *documentParser) extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Log error but continue with other pages
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}

	return text, nil
}

// CleanText normalizes whitespace so that formatting differences do not
// change the content hash.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}

// HashContent returns the content fingerprint used as the extraction cache
// key: sha256 of the cleaned text, hex encoded.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(CleanText(text)))
	return hex.EncodeToString(sum[:])
}
