package vocab

import (
	"context"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feature-prep/vocab-builder/internal/vocab/accumulate"
	"github.com/feature-prep/vocab-builder/internal/vocab/coverage"
	"github.com/feature-prep/vocab-builder/internal/vocab/order"
	"github.com/feature-prep/vocab-builder/pkg/errors"
)

func buildParams(t *testing.T) Params {
	t.Helper()
	return Params{
		OutputDir:  t.TempDir(),
		OutputName: "vocab",
	}
}

func observeAll(m *accumulate.Map, tokens ...string) {
	for _, token := range tokens {
		m.Observe(token, 1.0)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestBuildFrequencyOrdering(t *testing.T) {
	m := accumulate.NewMap(accumulate.Profile{})
	observeAll(m, "a", "a", "a", "a", "a", "c", "c", "c", "b", "b", "b")

	b, err := New(buildParams(t))
	require.NoError(t, err)
	result, err := b.Build(context.Background(), m)
	require.NoError(t, err)

	// Tie between b and c breaks reverse-lexicographically: c precedes b.
	assert.Equal(t, []string{"a", "c", "b"}, readLines(t, result.Path))
	assert.Equal(t, 3, result.Stats.StandardArm)
	assert.Equal(t, 0, result.Stats.CoverageArm)
}

func TestBuildTopK(t *testing.T) {
	m := accumulate.NewMap(accumulate.Profile{})
	observeAll(m, "a", "a", "a", "a", "a", "c", "c", "c", "b", "b", "b")

	params := buildParams(t)
	params.TopK = 1
	b, err := New(params)
	require.NoError(t, err)
	result, err := b.Build(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, readLines(t, result.Path))
}

func TestBuildFrequencyThreshold(t *testing.T) {
	m := accumulate.NewMap(accumulate.Profile{})
	observeAll(m, "a", "a", "a", "a", "a", "c", "c", "c", "b", "b", "b")

	params := buildParams(t)
	params.FrequencyThreshold = 4
	b, err := New(params)
	require.NoError(t, err)
	result, err := b.Build(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, readLines(t, result.Path))
}

func TestBuildStoreFrequency(t *testing.T) {
	m := accumulate.NewMap(accumulate.Profile{})
	observeAll(m, "a", "a", "b")

	params := buildParams(t)
	params.StoreFrequency = true
	b, err := New(params)
	require.NoError(t, err)
	result, err := b.Build(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, []string{"2 a", "1 b"}, readLines(t, result.Path))
}

func TestBuildExcludesInvalidTokens(t *testing.T) {
	m := accumulate.NewMap(accumulate.Profile{})
	observeAll(m, "x\n", "ok", "")

	b, err := New(buildParams(t))
	require.NoError(t, err)
	result, err := b.Build(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, []string{"ok"}, readLines(t, result.Path))
}

func TestBuildCoverageArm(t *testing.T) {
	m := accumulate.NewMap(accumulate.Profile{})
	observeAll(m,
		"en:the", "en:the", "en:the", "en:the",
		"en:of", "en:of", "en:of",
		"fr:le", "fr:le",
		"de:der",
	)

	params := buildParams(t)
	params.TopK = 2
	params.CoverageTopK = 1
	params.KeyFunc = coverage.KeyBySeparator(":")
	b, err := New(params)
	require.NoError(t, err)
	result, err := b.Build(context.Background(), m)
	require.NoError(t, err)

	// Standard arm keeps the two english tokens; coverage guarantees
	// fr and de representation without repeating anything.
	lines := readLines(t, result.Path)
	assert.Equal(t, []string{"en:the", "en:of", "fr:le", "de:der"}, lines)
	assert.Equal(t, 2, result.Stats.StandardArm)
	assert.Equal(t, 2, result.Stats.CoverageArm)

	seen := make(map[string]int)
	for _, e := range result.Entries {
		seen[e.Token]++
	}
	for token, n := range seen {
		assert.Equal(t, 1, n, "token %q selected into both arms", token)
	}
}

func TestBuildFingerprintShuffleKeepsMembership(t *testing.T) {
	tokens := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}

	plain := accumulate.NewMap(accumulate.Profile{})
	shuffled := accumulate.NewMap(accumulate.Profile{})
	for i, token := range tokens {
		for n := 0; n <= i; n++ {
			plain.Observe(token, 1.0)
			shuffled.Observe(token, 1.0)
		}
	}

	p1 := buildParams(t)
	b1, err := New(p1)
	require.NoError(t, err)
	r1, err := b1.Build(context.Background(), plain)
	require.NoError(t, err)

	p2 := buildParams(t)
	p2.FingerprintShuffle = true
	b2, err := New(p2)
	require.NoError(t, err)
	r2, err := b2.Build(context.Background(), shuffled)
	require.NoError(t, err)

	lines1 := readLines(t, r1.Path)
	lines2 := readLines(t, r2.Path)
	assert.ElementsMatch(t, lines1, lines2, "shuffle must never change membership")

	want := make([]string, len(lines1))
	copy(want, lines1)
	sort.Slice(want, func(i, j int) bool {
		return order.Fingerprint(want[i]) < order.Fingerprint(want[j])
	})
	assert.Equal(t, want, lines2, "shuffled order must follow token fingerprints")
}

func TestBuildLabeledUsesMutualInformation(t *testing.T) {
	m := accumulate.NewMap(accumulate.Profile{Labeled: true})
	// "pos" perfectly predicts the positive label, "neutral" is split.
	m.ObserveLabeled("pos", 1.0, true)
	m.ObserveLabeled("pos", 1.0, true)
	m.ObserveLabeled("neutral", 1.0, true)
	m.ObserveLabeled("neutral", 1.0, false)

	params := buildParams(t)
	params.StoreFrequency = true
	b, err := New(params)
	require.NoError(t, err)
	result, err := b.Build(context.Background(), m)
	require.NoError(t, err)

	lines := readLines(t, result.Path)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], " pos"), "informative token first, got %q", lines[0])
	// The emitted second column is the MI score, not the raw count.
	assert.NotEqual(t, "2 pos", lines[0])
}

func TestBuildEmptyInput(t *testing.T) {
	b, err := New(buildParams(t))
	require.NoError(t, err)
	_, err = b.Build(context.Background(), accumulate.NewMap(accumulate.Profile{}))
	assert.ErrorIs(t, err, errors.ErrEmptyInput)
}

func TestBuildAutoName(t *testing.T) {
	m := accumulate.NewMap(accumulate.Profile{})
	observeAll(m, "a")

	params := buildParams(t)
	params.OutputName = ""
	b, err := New(params)
	require.NoError(t, err)
	result, err := b.Build(context.Background(), m)
	require.NoError(t, err)
	assert.Contains(t, result.Path, "vocab_")
}

func TestParamsValidate(t *testing.T) {
	base := Params{OutputDir: "out"}

	valid := base
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"negative top_k", func(p *Params) { p.TopK = -1 }},
		{"negative frequency_threshold", func(p *Params) { p.FrequencyThreshold = -5 }},
		{"negative coverage_top_k", func(p *Params) { p.CoverageTopK = -1; p.KeyFunc = coverage.KeyByPrefix(1) }},
		{"negative coverage_frequency_threshold", func(p *Params) { p.CoverageFrequencyThreshold = -1; p.KeyFunc = coverage.KeyByPrefix(1) }},
		{"negative min_diff_from_avg", func(p *Params) { p.MinDiffFromAvg = -0.1 }},
		{"coverage filters without key function", func(p *Params) { p.CoverageTopK = 3 }},
		{"key function without coverage filters", func(p *Params) { p.KeyFunc = coverage.KeyByPrefix(1) }},
		{"empty output dir", func(p *Params) { p.OutputDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
		})
	}
}

func TestNewRejectsBadParams(t *testing.T) {
	_, err := New(Params{OutputDir: "out", TopK: -1})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}
