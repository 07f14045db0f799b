package cards

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// Suggest returns up to n card names close to query: prefix matches first,
// then by edit distance.
func Suggest(query string, n int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || n <= 0 {
		return nil
	}
	type scored struct {
		name string
		dist int
	}
	var results []scored
	for _, e := range catalogue {
		cand := strings.ToLower(e.Name)
		switch {
		case cand == query:
			results = append(results, scored{e.Name, -2})
		case strings.HasPrefix(cand, query) && len(query) >= 2:
			results = append(results, scored{e.Name, -1})
		default:
			dist := levenshtein.ComputeDistance(query, cand)
			if dist > suggestLimit(len(cand)) {
				continue
			}
			results = append(results, scored{e.Name, dist})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].dist == results[j].dist {
			return results[i].name < results[j].name
		}
		return results[i].dist < results[j].dist
	})
	if len(results) > n {
		results = results[:n]
	}
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.name
	}
	return out
}
