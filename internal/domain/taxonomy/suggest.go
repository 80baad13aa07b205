package taxonomy

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggestion is a ranked category candidate for a free-text description.
type Suggestion struct {
	Key   string
	Score int // 0-100, higher is better
}

// SuggestCategories ranks the set's keys by similarity to the description.
// It backs the suggestion endpoint that the expense form uses for typeahead;
// the hard resolution path stays in FindBestCategory.
func SuggestCategories(description string, set *CategorySet, limit int) []Suggestion {
	if set == nil || set.Len() == 0 {
		return nil
	}

	search := strings.ToUpper(strings.TrimSpace(description))
	if search == "" {
		return nil
	}

	results := make([]Suggestion, 0, set.Len())
	for _, key := range set.Keys() {
		results = append(results, Suggestion{
			Key:   key,
			Score: similarityScore(search, strings.ToUpper(key)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}

// similarityScore combines containment, Levenshtein distance and subsequence
// ranking into a 0-100 score.
func similarityScore(s1, s2 string) int {
	if s1 == s2 {
		return 100
	}

	if strings.Contains(s1, s2) {
		return 75 + (25 * len(s2) / len(s1))
	}
	if strings.Contains(s2, s1) {
		return 75 + (25 * len(s1) / len(s2))
	}

	distance := fuzzy.LevenshteinDistance(s1, s2)
	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}
	if maxLen == 0 {
		return 0
	}
	levScore := 100 * (maxLen - distance) / maxLen

	subseqScore := 0
	if rank := fuzzy.RankMatch(s2, s1); rank >= 0 && rank < len(s1) {
		subseqScore = 60 - (rank * 40 / len(s1))
	}

	if levScore > subseqScore {
		return levScore
	}
	return subseqScore
}
