// Package benchmark contains Go benchmarks for the accumulation, scoring,
// ranking, and ordering stages of the vocabulary pipeline, measuring
// throughput and allocation behaviour.
package benchmark

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/feature-prep/vocab-builder/internal/vocab/coverage"
	"github.com/feature-prep/vocab-builder/internal/vocab/order"
	"github.com/feature-prep/vocab-builder/internal/vocab/rank"
)

func makeEntries(n int) []rank.Entry {
	rng := rand.New(rand.NewSource(1))
	entries := make([]rank.Entry, n)
	for i := range entries {
		count := rng.Intn(1000) + 1
		entries[i] = rank.Entry{
			Token: fmt.Sprintf("token-%06d", i),
			Score: float64(count),
			Count: uint64(count),
		}
	}
	return entries
}

// BenchmarkRankApply measures the full filter-sort-cut pass at various
// vocabulary sizes.
func BenchmarkRankApply(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		entries := makeEntries(size)
		b.Run(fmt.Sprintf("entries_%d", size), func(b *testing.B) {
			opts := rank.Options{TopK: size / 10, FrequencyThreshold: 5}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				selected := rank.Apply(entries, opts)
				_ = selected
			}
		})
	}
}

// BenchmarkRankSort isolates the comparison cost of score-descending order
// with the reverse-lexicographic tie break.
func BenchmarkRankSort(b *testing.B) {
	entries := makeEntries(50000)
	scratch := make([]rank.Entry, len(entries))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(scratch, entries)
		rank.Sort(scratch)
	}
}

// BenchmarkCoverageBuild measures grouped per-key selection over a corpus
// with a realistic key cardinality.
func BenchmarkCoverageBuild(b *testing.B) {
	entries := makeEntries(20000)
	for i := range entries {
		entries[i].Token = fmt.Sprintf("key%02d:%s", i%50, entries[i].Token)
	}
	keyFn := coverage.KeyBySeparator(":")
	opts := rank.Options{TopK: 10}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		selected := coverage.Build(entries, keyFn, opts)
		_ = selected
	}
}

// BenchmarkFingerprintShuffle measures the deterministic output reorder.
func BenchmarkFingerprintShuffle(b *testing.B) {
	entries := makeEntries(50000)
	scratch := make([]rank.Entry, len(entries))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(scratch, entries)
		order.FingerprintShuffle(scratch)
	}
}

// BenchmarkFingerprint measures single-token hashing.
func BenchmarkFingerprint(b *testing.B) {
	tokens := []string{"a", "medium-length-token", "a-rather-longer-token-with-many-segments:and:keys"}
	for _, token := range tokens {
		b.Run(fmt.Sprintf("len_%d", len(token)), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(token)))
			for i := 0; i < b.N; i++ {
				fp := order.Fingerprint(token)
				_ = fp
			}
		})
	}
}
