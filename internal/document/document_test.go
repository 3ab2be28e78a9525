package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_SupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"design.txt", "design.md", "design.markdown", "DESIGN.MD"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("# Design\nbody"), 0o644); err != nil {
			t.Fatal(err)
		}
		text, err := Load(path)
		if err != nil {
			t.Errorf("Load(%s) error: %v", name, err)
			continue
		}
		if !strings.Contains(text, "body") {
			t.Errorf("Load(%s) = %q", name, text)
		}
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "design.docx")
	if err := os.WriteFile(path, []byte("binary-ish"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for unsupported extension")
	}
	if !strings.Contains(err.Error(), "design.docx") {
		t.Errorf("error %q should name the rejected file", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.md"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFromReader_Empty(t *testing.T) {
	_, err := FromReader(strings.NewReader("   \n\t  "))
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("error = %v, want ErrEmpty", err)
	}
}

func TestFromReader_InvalidUTF8(t *testing.T) {
	_, err := FromReader(strings.NewReader(string([]byte{0xff, 0xfe, 0xfd})))
	if err == nil {
		t.Error("Expected error for invalid UTF-8")
	}
}

func TestFromReader_PreservesWhitespace(t *testing.T) {
	in := "  # Title\n\nbody  \n"
	text, err := FromReader(strings.NewReader(in))
	if err != nil {
		t.Fatalf("FromReader error: %v", err)
	}
	if text != in {
		t.Errorf("text = %q, want input preserved verbatim", text)
	}
}
