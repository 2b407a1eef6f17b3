// Package extract pulls plain text out of corpus files for indexing.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

var (
	// ErrNoText indicates a file opened fine but yielded no usable text.
	ErrNoText = errors.New("extract: no extractable text")

	// ErrUnsupportedType indicates the file extension is not handled.
	ErrUnsupportedType = errors.New("extract: unsupported file type")
)

// SupportedExtensions lists the file extensions the extractor handles.
var SupportedExtensions = []string{".txt", ".md", ".pdf", ".html", ".htm"}

// Supported reports whether the file name has an extractable extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// FromFile extracts plain text from a file on disk. Returns ErrNoText
// when extraction succeeds but produces nothing usable, and
// ErrUnsupportedType for unknown extensions.
func FromFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var text string
	var err error

	switch ext {
	case ".txt", ".md":
		text, err = fromPlainFile(path)
	case ".pdf":
		text, err = fromPDF(path)
	case ".html", ".htm":
		text, err = fromHTML(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, filepath.Base(path))
	}
	return text, nil
}

func fromPlainFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("extract: read file: %w", err)
	}
	return string(data), nil
}

func fromPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("extract: open pdf: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract: read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("extract: copy pdf text: %w", err)
	}
	return buf.String(), nil
}

func fromHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("extract: open html: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("extract: parse html: %w", err)
	}

	// Drop script/style noise before flattening to text.
	doc.Find("script, style, noscript").Remove()
	return doc.Find("body").Text(), nil
}
