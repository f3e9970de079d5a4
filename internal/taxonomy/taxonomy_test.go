package taxonomy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default taxonomy invalid: %v", err)
	}
}

func TestValidateRejectsBadTaxonomies(t *testing.T) {
	cases := []struct {
		name string
		tax  Taxonomy
	}{
		{"empty", Taxonomy{}},
		{"zero category weight", Taxonomy{Categories: []Category{
			{Name: "Skills", Weight: 0, Keywords: []Keyword{{Term: "git", Weight: 1}}},
		}}},
		{"no keywords", Taxonomy{Categories: []Category{
			{Name: "Skills", Weight: 10},
		}}},
		{"empty keyword term", Taxonomy{Categories: []Category{
			{Name: "Skills", Weight: 10, Keywords: []Keyword{{Term: "  ", Weight: 1}}},
		}}},
		{"zero keyword weight", Taxonomy{Categories: []Category{
			{Name: "Skills", Weight: 10, Keywords: []Keyword{{Term: "git", Weight: 0}}},
		}}},
		{"duplicate keyword", Taxonomy{Categories: []Category{
			{Name: "Skills", Weight: 10, Keywords: []Keyword{
				{Term: "git", Weight: 1},
				{Term: "Git", Weight: 1},
			}},
		}}},
		{"duplicate category", Taxonomy{Categories: []Category{
			{Name: "Skills", Weight: 10, Keywords: []Keyword{{Term: "git", Weight: 1}}},
			{Name: "Skills", Weight: 10, Keywords: []Keyword{{Term: "sql", Weight: 1}}},
		}}},
		{"weights exceed 100", Taxonomy{Categories: []Category{
			{Name: "A", Weight: 60, Keywords: []Keyword{{Term: "git", Weight: 1}}},
			{Name: "B", Weight: 60, Keywords: []Keyword{{Term: "sql", Weight: 1}}},
		}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.tax.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tax := Taxonomy{Categories: []Category{
		{Name: "Software Engineer", Weight: 34, Keywords: []Keyword{
			{Term: "git", Weight: 1},
			{Term: "python", Weight: 1},
			{Term: "docker", Weight: 1},
		}},
	}}
	raw, err := json.Marshal(tax)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "taxonomy.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Categories) != 1 || loaded.Categories[0].Name != "Software Engineer" {
		t.Fatalf("unexpected taxonomy: %+v", loaded)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	tax, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tax.Categories) != len(Default().Categories) {
		t.Fatalf("expected default taxonomy")
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.json")
	if err := os.WriteFile(path, []byte(`{"categories":[]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty taxonomy")
	}
}
