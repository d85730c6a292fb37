package benchmark

import (
	"fmt"
	"testing"

	"github.com/feature-prep/vocab-builder/internal/ingest"
	"github.com/feature-prep/vocab-builder/internal/vocab/accumulate"
	"github.com/feature-prep/vocab-builder/internal/vocab/score"
)

// BenchmarkMapObserve measures single-threaded accumulation throughput over
// a rotating token set.
func BenchmarkMapObserve(b *testing.B) {
	cardinalities := []int{100, 10000}
	for _, card := range cardinalities {
		tokens := make([]string, card)
		for i := range tokens {
			tokens[i] = fmt.Sprintf("token-%06d", i)
		}
		b.Run(fmt.Sprintf("distinct_%d", card), func(b *testing.B) {
			m := accumulate.NewMap(accumulate.Profile{})
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				m.Observe(tokens[i%card], 1.0)
			}
		})
	}
}

// BenchmarkPoolObserveParallel measures sharded accumulation under
// concurrent writers.
func BenchmarkPoolObserveParallel(b *testing.B) {
	shardCounts := []int{1, 8, 32}
	for _, shards := range shardCounts {
		b.Run(fmt.Sprintf("shards_%d", shards), func(b *testing.B) {
			pool := ingest.NewPool(shards, accumulate.Profile{})
			b.ReportAllocs()
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					pool.Observe(ingest.Normalized{
						Token:  fmt.Sprintf("token-%04d", i%5000),
						Weight: 1.0,
					})
					i++
				}
			})
		})
	}
}

// BenchmarkMapMerge measures the fold cost of combining two partial maps.
func BenchmarkMapMerge(b *testing.B) {
	build := func() *accumulate.Map {
		m := accumulate.NewMap(accumulate.Profile{})
		for i := 0; i < 10000; i++ {
			m.Observe(fmt.Sprintf("token-%05d", i), 1.0)
		}
		return m
	}
	other := build()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		m := build()
		b.StartTimer()
		if err := m.Merge(other); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMutualInformation measures per-token scoring cost, with and
// without the expected mutual information adjustment.
func BenchmarkMutualInformation(b *testing.B) {
	acc := accumulate.Accumulator{
		TotalCount:     120,
		WeightedCount:  120,
		PositiveWeight: 90,
		NegativeWeight: 30,
	}
	totals := accumulate.Totals{
		TotalCount:     100000,
		Weight:         100000,
		PositiveWeight: 40000,
	}

	b.Run("raw", func(b *testing.B) {
		scorer := score.MutualInformation{}
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			s := scorer.Score(acc, totals)
			_ = s
		}
	})
	b.Run("adjusted", func(b *testing.B) {
		scorer := score.MutualInformation{Adjusted: true}
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			s := scorer.Score(acc, totals)
			_ = s
		}
	})
}
