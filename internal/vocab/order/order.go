// Package order controls the final on-disk ordering of the vocabulary.
// By default the rank order is preserved; the fingerprint shuffle replaces
// it with a deterministic pseudo-random permutation so that consumers which
// assign ids by line number do not concentrate the hottest tokens in one
// region of the id space.
package order

import (
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/feature-prep/vocab-builder/internal/vocab/rank"
)

// Fingerprint returns the stable 64-bit hash used for shuffled ordering.
func Fingerprint(token string) uint64 {
	return xxhash.Sum64String(token)
}

// FingerprintShuffle reorders entries in place by token fingerprint. It is
// applied strictly after all filtering, so it changes only the order of the
// final list, never its membership. The permutation is reproducible across
// runs and processes.
func FingerprintShuffle(entries []rank.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		fi, fj := Fingerprint(entries[i].Token), Fingerprint(entries[j].Token)
		if fi != fj {
			return fi < fj
		}
		return entries[i].Token < entries[j].Token
	})
}
