package scoring

import (
	"reflect"
	"strings"
	"testing"
)

func TestSuggestOrdersCategoriesByWeightDescending(t *testing.T) {
	missing := []CategoryKeywords{
		{Category: "Education", Weight: 15, Keywords: []string{"degree"}},
		{Category: "Technical Skills", Weight: 40, Keywords: []string{"docker", "sql"}},
		{Category: "Experience", Weight: 30, Keywords: []string{"managed"}},
	}

	got := Suggest(missing, 45)
	want := []string{
		"Add these Technical Skills keywords to your resume: docker, sql",
		"Add these Experience keywords to your resume: managed",
		"Add these Education keywords to your resume: degree",
		suggestionLowBracket,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected suggestions:\ngot:  %v\nwant: %v", got, want)
	}
}

func TestSuggestScoreBrackets(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, suggestionLowBracket},
		{59, suggestionLowBracket},
		{60, suggestionMidBracket},
		{79, suggestionMidBracket},
		{80, suggestionHighBracket},
		{100, suggestionHighBracket},
	}
	for _, tc := range cases {
		got := Suggest(nil, tc.score)
		if len(got) != 1 || got[0] != tc.want {
			t.Fatalf("score %d: got %v, want [%s]", tc.score, got, tc.want)
		}
	}
}

func TestSuggestEqualWeightsKeepTaxonomyOrder(t *testing.T) {
	missing := []CategoryKeywords{
		{Category: "First", Weight: 20, Keywords: []string{"a"}},
		{Category: "Second", Weight: 20, Keywords: []string{"b"}},
	}
	got := Suggest(missing, 85)
	if !strings.Contains(got[0], "First") || !strings.Contains(got[1], "Second") {
		t.Fatalf("equal-weight categories must keep taxonomy order, got %v", got)
	}
}

func TestSuggestIsDeterministic(t *testing.T) {
	missing := []CategoryKeywords{
		{Category: "Technical Skills", Weight: 40, Keywords: []string{"docker"}},
		{Category: "Experience", Weight: 30, Keywords: []string{"led", "managed"}},
	}
	first := Suggest(missing, 62)
	second := Suggest(missing, 62)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("suggestions not deterministic")
	}
}
