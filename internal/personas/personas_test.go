package personas

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePersonasFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "personas.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsOnly(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	all := reg.All()
	if len(all) != 4 {
		t.Fatalf("got %d personas, want 4 built-ins", len(all))
	}
	wantOrder := []string{"security", "integration", "data", "scalability"}
	for i, id := range wantOrder {
		if all[i].ID != id {
			t.Errorf("all[%d].ID = %q, want %q", i, all[i].ID, id)
		}
	}
}

func TestLoad_FileOverridesAndAppends(t *testing.T) {
	path := writePersonasFile(t, `
- id: security
  label: Paranoid Security Architect
  prompt: Assume every input is hostile.
- id: cost
  label: Cost Architect
  prompt: Flag designs whose run cost grows faster than their value.
`)

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	all := reg.All()
	if len(all) != 5 {
		t.Fatalf("got %d personas, want 4 built-ins + 1 new", len(all))
	}

	// Override keeps registry position
	if all[0].ID != "security" || all[0].Label != "Paranoid Security Architect" {
		t.Errorf("all[0] = %+v, want overridden security persona in place", all[0])
	}
	// New id appended last
	if all[4].ID != "cost" {
		t.Errorf("all[4].ID = %q, want appended %q", all[4].ID, "cost")
	}
}

func TestLoad_InvalidEntry(t *testing.T) {
	path := writePersonasFile(t, `
- id: broken
  label: ""
  prompt: something
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for persona with empty label")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %q should name the broken persona", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("Expected error for missing personas file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writePersonasFile(t, "{not valid yaml: [")
	_, err := Load(path)
	if err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestSelect_OrderFollowsIDs(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	specs, err := reg.Select([]string{"data", "security"})
	if err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("got %d specializations, want 2", len(specs))
	}
	if specs[0].ID != "data" || specs[1].ID != "security" {
		t.Errorf("run order = %s,%s, want data,security (id order, not registry order)",
			specs[0].ID, specs[1].ID)
	}
	if specs[0].Label != "Data Architect" {
		t.Errorf("specs[0].Label = %q", specs[0].Label)
	}
	if specs[0].Prompt == "" {
		t.Error("specialization prompt should carry over")
	}
}

func TestSelect_UnknownID(t *testing.T) {
	reg, _ := Load("")
	_, err := reg.Select([]string{"security", "astrology"})
	if err == nil {
		t.Fatal("Expected error for unknown reviewer id")
	}
	if !strings.Contains(err.Error(), "astrology") {
		t.Errorf("error %q should name the unknown id", err)
	}
}

func TestSelect_Empty(t *testing.T) {
	reg, _ := Load("")
	if _, err := reg.Select(nil); err == nil {
		t.Error("Expected error for empty reviewer list")
	}
}
