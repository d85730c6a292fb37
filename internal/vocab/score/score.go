// Package score converts merged accumulators into the single comparable
// value the ranker orders by. Two regimes exist: plain (possibly weighted)
// frequency, and mutual information against a binary label. The regime is
// fixed once at configuration time.
package score

import "github.com/feature-prep/vocab-builder/internal/vocab/accumulate"

// Scorer maps one token's merged accumulator, together with the corpus-wide
// totals, to its ranking score.
type Scorer interface {
	Score(acc accumulate.Accumulator, totals accumulate.Totals) float64
}

// Frequency scores tokens by occurrence count, or by summed weight when the
// input carries per-occurrence weights.
type Frequency struct {
	Weighted bool
}

func (f Frequency) Score(acc accumulate.Accumulator, _ accumulate.Totals) float64 {
	if f.Weighted {
		return acc.WeightedCount
	}
	return float64(acc.TotalCount)
}

// MutualInformation scores tokens by the mutual information between "this
// token is present" and "label is positive".
//
// With x the token's summed weight, n1/n0 its positive/negative weight,
// N the corpus weight and y1/y0 the corpus positive/negative weight:
//
//	MI = n1/N * log2(n1*N / (x*y1)) + n0/N * log2(n0*N / (x*y0))
//
// Terms with a zero co-occurrence weight contribute zero.
type MutualInformation struct {
	// Adjusted subtracts the expected mutual information under the
	// hypergeometric independence null, correcting the finite-sample bias
	// that inflates scores of rare tokens.
	Adjusted bool
	// MinDiffFromAvg forces the score to exactly zero when the observed
	// positive co-occurrence weight deviates from its expected value under
	// independence (x*y1/N) by less than this threshold. Suppresses spurious
	// correlations in low-count tokens.
	MinDiffFromAvg float64
}

func (s MutualInformation) Score(acc accumulate.Accumulator, totals accumulate.Totals) float64 {
	x := acc.PositiveWeight + acc.NegativeWeight
	n1 := acc.PositiveWeight
	n := totals.Weight
	y1 := totals.PositiveWeight
	if n == 0 || x == 0 {
		return 0
	}

	if s.MinDiffFromAvg > 0 {
		expected := x * y1 / n
		if diff := n1 - expected; diff < s.MinDiffFromAvg && diff > -s.MinDiffFromAvg {
			return 0
		}
	}

	mi := mutualInformation(n, x, y1, n1)
	if !s.Adjusted {
		return mi
	}
	y0 := n - y1
	return mi - expectedMutualInformation(n, x, y1) - expectedMutualInformation(n, x, y0)
}
