package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrEmpty is returned when the loaded text is empty after trimming.
var ErrEmpty = errors.New("provide a document to review, either from a file or from stdin")

// supportedExtensions are the file types accepted for review input.
var supportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// Load reads a design document from path. Only plain-text formats are
// accepted; unsupported extensions are rejected by name so the user knows
// why the file was refused.
func Load(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return "", fmt.Errorf("unsupported document type %q (supported: .txt, .md, .markdown)", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return validate(data)
}

// FromReader reads a design document from r (typically stdin).
func FromReader(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return validate(data)
}

func validate(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document is not valid UTF-8 text")
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	return text, nil
}
