package scoring

import (
	"fmt"
	"sort"
	"strings"
)

const (
	suggestionLowBracket  = "Your resume needs significant keyword optimization. Tailor it to the role before applying."
	suggestionMidBracket  = "Your resume is on the right track. Add the missing keywords above to push your score higher."
	suggestionHighBracket = "Your resume is well optimized. Keep it current as job requirements evolve."
)

// Suggest derives improvement suggestions from the missing-keyword groups
// and the overall score. Category suggestions come first, ordered by
// category weight descending (ties keep taxonomy order), followed by one
// score-bracket message. Pure and deterministic.
func Suggest(missing []CategoryKeywords, score int) []string {
	groups := make([]CategoryKeywords, len(missing))
	copy(groups, missing)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Weight > groups[j].Weight
	})

	out := make([]string, 0, len(groups)+1)
	for _, g := range groups {
		if len(g.Keywords) == 0 {
			continue
		}
		out = append(out, fmt.Sprintf("Add these %s keywords to your resume: %s",
			g.Category, strings.Join(g.Keywords, ", ")))
	}

	switch {
	case score < 60:
		out = append(out, suggestionLowBracket)
	case score < 80:
		out = append(out, suggestionMidBracket)
	default:
		out = append(out, suggestionHighBracket)
	}
	return out
}
