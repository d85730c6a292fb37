// Package rank totally orders scored tokens and applies the frequency
// threshold and top-k cut. The same routine serves the global corpus and
// each per-key coverage group, so the tie-break and filter semantics can
// never drift apart between the two arms.
package rank

import "sort"

// Entry is one scored token. Count carries the raw occurrence count so the
// frequency threshold applies to counts even when Score is a mutual
// information value or a weighted frequency.
type Entry struct {
	Token string  `json:"token"`
	Score float64 `json:"score"`
	Count uint64  `json:"count"`
}

// Options are the filters applied before the cut. Zero values disable a
// filter; negative values are rejected by configuration validation before
// any aggregation happens.
type Options struct {
	TopK               int
	FrequencyThreshold int
}

// Apply filters entries by frequency threshold, sorts them into the total
// order, and truncates to the top k. The input slice is not modified.
//
// The order is score descending, ties broken by reverse-lexicographic byte
// order: among equal scores the lexicographically larger token comes first.
// This makes the result independent of input iteration order.
func Apply(entries []Entry, opts Options) []Entry {
	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if opts.FrequencyThreshold > 0 && e.Count < uint64(opts.FrequencyThreshold) {
			continue
		}
		result = append(result, e)
	}
	Sort(result)
	if opts.TopK > 0 && len(result) > opts.TopK {
		result = result[:opts.TopK]
	}
	return result
}

// Sort orders entries in place by the total order used across both arms.
func Sort(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Token > entries[j].Token
	})
}
