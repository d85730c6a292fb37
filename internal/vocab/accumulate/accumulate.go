// Package accumulate implements the mergeable per-token statistics that form
// the unit of distributed aggregation. An Accumulator is a monoid: field-wise
// addition with an all-zero identity, so partial results computed on disjoint
// partitions fold into the same final value regardless of merge order or
// tree shape.
package accumulate

import (
	"fmt"

	"github.com/feature-prep/vocab-builder/internal/vocab/validate"
)

// Accumulator holds the running statistics for one distinct token.
type Accumulator struct {
	// TotalCount is the raw number of occurrences.
	TotalCount uint64
	// WeightedCount is the sum of per-occurrence weights (1.0 each when the
	// input carries no weights).
	WeightedCount float64
	// PositiveWeight and NegativeWeight split WeightedCount by label when
	// the input is labeled; both stay zero otherwise.
	PositiveWeight float64
	NegativeWeight float64
}

// Add returns the field-wise sum of a and b.
func (a Accumulator) Add(b Accumulator) Accumulator {
	return Accumulator{
		TotalCount:     a.TotalCount + b.TotalCount,
		WeightedCount:  a.WeightedCount + b.WeightedCount,
		PositiveWeight: a.PositiveWeight + b.PositiveWeight,
		NegativeWeight: a.NegativeWeight + b.NegativeWeight,
	}
}

// Profile describes which optional record fields are present. Presence is
// all-or-nothing across the whole input; maps with different profiles must
// never be merged.
type Profile struct {
	Weighted bool
	Labeled  bool
}

// Totals are the corpus-wide sums needed by the mutual-information scorer,
// computed once after the global merge.
type Totals struct {
	TotalCount     uint64
	Weight         float64
	PositiveWeight float64
}

// Map is a partition-local collection of accumulators. It is not safe for
// concurrent use; each worker owns one and the results are merged afterwards.
type Map struct {
	profile Profile
	accs    map[string]Accumulator
}

// NewMap creates an empty Map for the given input profile.
func NewMap(profile Profile) *Map {
	return &Map{
		profile: profile,
		accs:    make(map[string]Accumulator),
	}
}

// Profile returns the input profile this map was created for.
func (m *Map) Profile() Profile { return m.profile }

// Len returns the number of distinct tokens observed so far.
func (m *Map) Len() int { return len(m.accs) }

// Observe records one unlabeled occurrence of token with the given weight.
// It returns false when the token fails validation and was skipped.
func (m *Map) Observe(token string, weight float64) bool {
	if !validate.Token(token) {
		return false
	}
	acc := m.accs[token]
	acc.TotalCount++
	acc.WeightedCount += weight
	m.accs[token] = acc
	return true
}

// ObserveLabeled records one labeled occurrence of token. The weight is
// attributed to the positive or negative side according to positive.
// It returns false when the token fails validation and was skipped.
func (m *Map) ObserveLabeled(token string, weight float64, positive bool) bool {
	if !validate.Token(token) {
		return false
	}
	acc := m.accs[token]
	acc.TotalCount++
	acc.WeightedCount += weight
	if positive {
		acc.PositiveWeight += weight
	} else {
		acc.NegativeWeight += weight
	}
	m.accs[token] = acc
	return true
}

// Merge folds other into m field-wise. Merging is commutative and
// associative; the only failure mode is a profile mismatch, which indicates
// partitions were produced from inconsistently-shaped inputs.
func (m *Map) Merge(other *Map) error {
	if other == nil {
		return nil
	}
	if m.profile != other.profile {
		return fmt.Errorf("merging accumulator maps with mismatched profiles: %+v vs %+v", m.profile, other.profile)
	}
	for token, acc := range other.accs {
		m.accs[token] = m.accs[token].Add(acc)
	}
	return nil
}

// Get returns the accumulator for token and whether it was observed.
func (m *Map) Get(token string) (Accumulator, bool) {
	acc, ok := m.accs[token]
	return acc, ok
}

// Each calls fn for every (token, accumulator) pair in unspecified order.
func (m *Map) Each(fn func(token string, acc Accumulator)) {
	for token, acc := range m.accs {
		fn(token, acc)
	}
}

// Totals computes the corpus-wide sums over all accumulated tokens.
func (m *Map) Totals() Totals {
	var t Totals
	for _, acc := range m.accs {
		t.TotalCount += acc.TotalCount
		t.Weight += acc.WeightedCount
		t.PositiveWeight += acc.PositiveWeight
	}
	return t
}
