package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Keyword is a single scored term within a category.
type Keyword struct {
	Term   string `json:"term"`
	Weight int    `json:"weight"`
}

// Category groups weighted keywords under a job-category name. Weight is the
// category's share of the overall score, in points out of 100.
type Category struct {
	Name     string    `json:"name"`
	Weight   int       `json:"weight"`
	Keywords []Keyword `json:"keywords"`
}

// Taxonomy is the ordered set of categories used for scoring. It is loaded
// once at startup and read-only at request time.
type Taxonomy struct {
	Categories []Category `json:"categories"`
}

// Load reads a taxonomy from a JSON file and validates it. An empty path
// returns the built-in default taxonomy.
func Load(path string) (Taxonomy, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	var t Taxonomy
	if err := json.Unmarshal(raw, &t); err != nil {
		return Taxonomy{}, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Taxonomy{}, fmt.Errorf("validate taxonomy %s: %w", path, err)
	}
	return t, nil
}

// Validate checks structural invariants. A malformed taxonomy is a
// configuration error and must be rejected at load time, never per request.
func (t Taxonomy) Validate() error {
	if len(t.Categories) == 0 {
		return fmt.Errorf("taxonomy has no categories")
	}
	totalWeight := 0
	seenNames := make(map[string]struct{}, len(t.Categories))
	for _, cat := range t.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return fmt.Errorf("category with empty name")
		}
		if _, dup := seenNames[name]; dup {
			return fmt.Errorf("duplicate category %q", name)
		}
		seenNames[name] = struct{}{}
		if cat.Weight <= 0 {
			return fmt.Errorf("category %q has non-positive weight %d", name, cat.Weight)
		}
		totalWeight += cat.Weight
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("category %q has no keywords", name)
		}
		seenTerms := make(map[string]struct{}, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			term := strings.TrimSpace(kw.Term)
			if term == "" {
				return fmt.Errorf("category %q has an empty keyword", name)
			}
			if kw.Weight <= 0 {
				return fmt.Errorf("keyword %q in category %q has non-positive weight %d", term, name, kw.Weight)
			}
			lowered := strings.ToLower(term)
			if _, dup := seenTerms[lowered]; dup {
				return fmt.Errorf("duplicate keyword %q in category %q", term, name)
			}
			seenTerms[lowered] = struct{}{}
		}
	}
	if totalWeight > 100 {
		return fmt.Errorf("category weights sum to %d, must not exceed 100", totalWeight)
	}
	return nil
}
