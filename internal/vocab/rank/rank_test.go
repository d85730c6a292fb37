package rank

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tokens a(5), c(3), b(3): the b/c tie breaks reverse-lexicographically,
// so "c" precedes "b".
func corpusEntries() []Entry {
	return []Entry{
		{Token: "a", Score: 5, Count: 5},
		{Token: "c", Score: 3, Count: 3},
		{Token: "b", Score: 3, Count: 3},
	}
}

func TestApplyTotalOrder(t *testing.T) {
	got := Apply(corpusEntries(), Options{})
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Token)
	assert.Equal(t, "c", got[1].Token)
	assert.Equal(t, "b", got[2].Token)
}

func TestApplyTopK(t *testing.T) {
	got := Apply(corpusEntries(), Options{TopK: 1})
	require.Len(t, got, 1)
	assert.Equal(t, Entry{Token: "a", Score: 5, Count: 5}, got[0])
}

func TestApplyFrequencyThreshold(t *testing.T) {
	got := Apply(corpusEntries(), Options{FrequencyThreshold: 4})
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Token)
}

func TestApplyThresholdIsStrict(t *testing.T) {
	// Entries exactly at the threshold survive; below it they are dropped.
	got := Apply(corpusEntries(), Options{FrequencyThreshold: 3})
	assert.Len(t, got, 3)
}

func TestApplyFiltersBeforeCut(t *testing.T) {
	entries := []Entry{
		{Token: "rare-high", Score: 100, Count: 1},
		{Token: "common", Score: 10, Count: 10},
		{Token: "other", Score: 5, Count: 5},
	}
	// The threshold removes rare-high before the top-k cut, so the cut
	// keeps the highest-scoring survivor rather than the raw leader.
	got := Apply(entries, Options{TopK: 1, FrequencyThreshold: 2})
	require.Len(t, got, 1)
	assert.Equal(t, "common", got[0].Token)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	entries := corpusEntries()
	Apply(entries, Options{TopK: 1})
	assert.Equal(t, corpusEntries(), entries)
}

// The order must not depend on input iteration order: any permutation of
// the same entries sorts identically.
func TestApplyOrderIndependentOfInput(t *testing.T) {
	entries := []Entry{
		{Token: "aa", Score: 2, Count: 2},
		{Token: "ab", Score: 2, Count: 2},
		{Token: "ba", Score: 2, Count: 2},
		{Token: "z", Score: 9, Count: 9},
		{Token: "m", Score: 1, Count: 1},
	}
	want := Apply(entries, Options{})

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]Entry, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		assert.Equal(t, want, Apply(shuffled, Options{}))
	}
}

func TestSortTieBreakIsReverseLexicographic(t *testing.T) {
	entries := []Entry{
		{Token: "apple", Score: 1},
		{Token: "banana", Score: 1},
		{Token: "cherry", Score: 1},
	}
	Sort(entries)
	assert.Equal(t, "cherry", entries[0].Token)
	assert.Equal(t, "banana", entries[1].Token)
	assert.Equal(t, "apple", entries[2].Token)
}
