package scoring

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"ats-backend/internal/taxonomy"
)

// CategoryKeywords lists keywords from one category, in the taxonomy's
// category order.
type CategoryKeywords struct {
	Category string
	Weight   int
	Keywords []string
}

// Result is the outcome of scoring extracted text against a taxonomy.
// Strong and Missing follow category order, alphabetical within a category.
type Result struct {
	Score             int
	Strong            []string
	Missing           []string
	MissingByCategory []CategoryKeywords
}

// Score computes a 0-100 ATS score. It is a pure function of its inputs:
// no I/O, no clock, no randomness, so the same text and taxonomy always
// reproduce the same result.
func Score(text string, tax taxonomy.Taxonomy) Result {
	tokens := tokenize(text)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = struct{}{}
	}

	res := Result{
		Strong:  []string{},
		Missing: []string{},
	}

	total := 0.0
	for _, cat := range tax.Categories {
		var strong, missing []string
		matchedWeight, totalWeight := 0, 0
		for _, kw := range cat.Keywords {
			totalWeight += kw.Weight
			if matchKeyword(kw.Term, tokens, tokenSet) {
				matchedWeight += kw.Weight
				strong = append(strong, strings.ToLower(kw.Term))
			} else {
				missing = append(missing, strings.ToLower(kw.Term))
			}
		}
		sort.Strings(strong)
		sort.Strings(missing)
		res.Strong = append(res.Strong, strong...)
		res.Missing = append(res.Missing, missing...)
		if len(missing) > 0 {
			res.MissingByCategory = append(res.MissingByCategory, CategoryKeywords{
				Category: cat.Name,
				Weight:   cat.Weight,
				Keywords: missing,
			})
		}
		if totalWeight > 0 {
			total += float64(cat.Weight) * float64(matchedWeight) / float64(totalWeight)
		}
	}

	res.Score = roundHalfUp(total)
	return res
}

// matchKeyword reports whether the keyword occurs in the text as whole
// tokens. Multi-word keywords must appear as a contiguous token phrase.
func matchKeyword(term string, tokens []string, tokenSet map[string]struct{}) bool {
	kwTokens := tokenize(term)
	switch len(kwTokens) {
	case 0:
		return false
	case 1:
		_, ok := tokenSet[kwTokens[0]]
		return ok
	}
	for i := 0; i+len(kwTokens) <= len(tokens); i++ {
		matched := true
		for j, kt := range kwTokens {
			if tokens[i+j] != kt {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// tokenize case-folds the text and splits on anything that is not a letter
// or digit, which collapses whitespace and strips punctuation in one pass.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// roundHalfUp rounds to the nearest integer with ties away from zero upward.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
