// Package ingest turns the host dataflow's partitioned record stream into
// partition-local accumulators. Records arrive either from Kafka (streaming
// service) or from newline-delimited JSON files (offline CLI); both paths
// share the same normalisation and the same sharded accumulator pool.
package ingest

import (
	"fmt"

	"github.com/feature-prep/vocab-builder/internal/vocab/accumulate"
	"github.com/feature-prep/vocab-builder/pkg/errors"
)

// Record is one input occurrence: a token with an optional per-occurrence
// weight and an optional binary label. Field presence must be uniform across
// the whole input.
type Record struct {
	Token  string   `json:"token"`
	Weight *float64 `json:"weight,omitempty"`
	Label  *int64   `json:"label,omitempty"`
}

// Normalized is a record checked against the input profile, ready to be
// observed into an accumulator map.
type Normalized struct {
	Token    string
	Weight   float64
	Labeled  bool
	Positive bool
}

// Normalize validates r against the declared profile. A label outside {0,1}
// or a field presence deviating from the profile aborts the run: these are
// input-contract violations, not skippable records.
func Normalize(r Record, profile accumulate.Profile) (Normalized, error) {
	if profile.Weighted != (r.Weight != nil) {
		return Normalized{}, fmt.Errorf("%w: weight presence is not uniform (profile weighted=%t)",
			errors.ErrShapeMismatch, profile.Weighted)
	}
	if profile.Labeled != (r.Label != nil) {
		return Normalized{}, fmt.Errorf("%w: label presence is not uniform (profile labeled=%t)",
			errors.ErrShapeMismatch, profile.Labeled)
	}

	n := Normalized{Token: r.Token, Weight: 1.0}
	if r.Weight != nil {
		n.Weight = *r.Weight
	}
	if r.Label != nil {
		if *r.Label != 0 && *r.Label != 1 {
			return Normalized{}, fmt.Errorf("%w: got %d, want 0 or 1", errors.ErrLabelNotBinary, *r.Label)
		}
		n.Labeled = true
		n.Positive = *r.Label == 1
	}
	return n, nil
}

// Sniff infers the input profile from the first record of a stream.
func Sniff(r Record) accumulate.Profile {
	return accumulate.Profile{
		Weighted: r.Weight != nil,
		Labeled:  r.Label != nil,
	}
}
