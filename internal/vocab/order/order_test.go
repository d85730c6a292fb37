package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feature-prep/vocab-builder/internal/vocab/rank"
)

func TestFingerprintIsStable(t *testing.T) {
	assert.Equal(t, Fingerprint("hello"), Fingerprint("hello"))
	assert.NotEqual(t, Fingerprint("hello"), Fingerprint("world"))
}

func TestFingerprintShuffleDeterministic(t *testing.T) {
	entries := func() []rank.Entry {
		return []rank.Entry{
			{Token: "a", Score: 5},
			{Token: "b", Score: 4},
			{Token: "c", Score: 3},
			{Token: "d", Score: 2},
			{Token: "e", Score: 1},
		}
	}

	first := entries()
	second := entries()
	FingerprintShuffle(first)
	FingerprintShuffle(second)
	assert.Equal(t, first, second, "the permutation must be reproducible")
}

func TestFingerprintShufflePreservesMembership(t *testing.T) {
	entries := []rank.Entry{
		{Token: "alpha", Score: 9},
		{Token: "beta", Score: 7},
		{Token: "gamma", Score: 5},
		{Token: "delta", Score: 3},
	}
	before := make(map[string]float64, len(entries))
	for _, e := range entries {
		before[e.Token] = e.Score
	}

	FingerprintShuffle(entries)

	require.Len(t, entries, len(before))
	for _, e := range entries {
		score, ok := before[e.Token]
		require.True(t, ok, "token %q appeared from nowhere", e.Token)
		assert.Equal(t, score, e.Score)
	}
}

func TestFingerprintShuffleIndependentOfInputOrder(t *testing.T) {
	a := []rank.Entry{{Token: "x"}, {Token: "y"}, {Token: "z"}}
	b := []rank.Entry{{Token: "z"}, {Token: "x"}, {Token: "y"}}

	FingerprintShuffle(a)
	FingerprintShuffle(b)
	assert.Equal(t, a, b)
}
