package command

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestions bounds the "did you mean" list.
const maxSuggestions = 3

// Suggest returns the built-in verbs closest to an unknown name.
func Suggest(name string) []string {
	name = strings.ToUpper(name)
	if name == "" {
		return nil
	}

	seen := map[string]bool{}
	var out []string

	ranks := fuzzy.RankFindFold(name, Names())
	sort.Sort(ranks)
	for _, r := range ranks {
		if len(out) == maxSuggestions {
			return out
		}
		seen[r.Target] = true
		out = append(out, r.Target)
	}

	for _, candidate := range Names() {
		if len(out) == maxSuggestions {
			break
		}
		if seen[candidate] {
			continue
		}
		if fuzzy.LevenshteinDistance(name, candidate) <= 2 {
			out = append(out, candidate)
		}
	}
	return out
}
