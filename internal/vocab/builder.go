// Package vocab orchestrates the vocabulary build: scoring the globally
// merged accumulators, ranking and filtering the standard arm, building the
// per-key coverage arm, applying the output ordering, and publishing the
// artifact.
package vocab

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/feature-prep/vocab-builder/internal/vocab/accumulate"
	"github.com/feature-prep/vocab-builder/internal/vocab/coverage"
	"github.com/feature-prep/vocab-builder/internal/vocab/order"
	"github.com/feature-prep/vocab-builder/internal/vocab/rank"
	"github.com/feature-prep/vocab-builder/internal/vocab/score"
	"github.com/feature-prep/vocab-builder/internal/vocab/vocabfile"
	"github.com/feature-prep/vocab-builder/pkg/errors"
	"github.com/feature-prep/vocab-builder/pkg/logger"
)

// Arm identifies which result set a vocabulary entry was selected into.
type Arm string

const (
	ArmStandard Arm = "standard"
	ArmCoverage Arm = "coverage"
)

// Entry is one unit of the final vocabulary, annotated with its arm.
type Entry struct {
	Token string  `json:"token"`
	Score float64 `json:"score"`
	Arm   Arm     `json:"arm"`
}

// Params is the full configuration surface of a build. Zero values disable
// the optional filters.
type Params struct {
	TopK                       int
	FrequencyThreshold         int
	StoreFrequency             bool
	UseAdjustedMutualInfo      bool
	MinDiffFromAvg             float64
	CoverageTopK               int
	CoverageFrequencyThreshold int
	KeyFunc                    coverage.KeyFunc
	FingerprintShuffle         bool
	OutputName                 string
	OutputDir                  string
}

// Validate performs every fail-fast configuration check. It must pass before
// any aggregation work begins.
func (p Params) Validate() error {
	if p.TopK < 0 {
		return errors.NewConfig("top_k", "must not be negative, got %d", p.TopK)
	}
	if p.FrequencyThreshold < 0 {
		return errors.NewConfig("frequency_threshold", "must not be negative, got %d", p.FrequencyThreshold)
	}
	if p.CoverageTopK < 0 {
		return errors.NewConfig("coverage_top_k", "must not be negative, got %d", p.CoverageTopK)
	}
	if p.CoverageFrequencyThreshold < 0 {
		return errors.NewConfig("coverage_frequency_threshold", "must not be negative, got %d", p.CoverageFrequencyThreshold)
	}
	if p.MinDiffFromAvg < 0 {
		return errors.NewConfig("min_diff_from_avg", "must not be negative, got %g", p.MinDiffFromAvg)
	}
	coverageFilters := p.CoverageTopK > 0 || p.CoverageFrequencyThreshold > 0
	if coverageFilters && p.KeyFunc == nil {
		return errors.NewConfig("coverage_top_k", "coverage filters require a key function")
	}
	if p.KeyFunc != nil && !coverageFilters {
		return errors.NewConfig("key_fn", "a key function requires coverage_top_k or coverage_frequency_threshold")
	}
	if p.OutputDir == "" {
		return errors.NewConfig("output_dir", "must not be empty")
	}
	return nil
}

// Stats summarises one completed build.
type Stats struct {
	DistinctTokens int           `json:"distinct_tokens"`
	StandardArm    int           `json:"standard_arm"`
	CoverageArm    int           `json:"coverage_arm"`
	TotalCount     uint64        `json:"total_count"`
	TotalWeight    float64       `json:"total_weight"`
	Duration       time.Duration `json:"duration"`
}

// Result is the outcome of a build. Path is the published artifact and the
// sole value downstream pipelines need.
type Result struct {
	Path    string  `json:"path"`
	Entries []Entry `json:"entries"`
	Stats   Stats   `json:"stats"`
}

// Builder runs vocabulary builds with a fixed parameter set.
type Builder struct {
	params Params
	writer *vocabfile.Writer
	logger *slog.Logger
}

// New validates params and creates a Builder. Configuration errors are
// reported here, before any data is touched.
func New(params Params) (*Builder, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Builder{
		params: params,
		writer: vocabfile.NewWriter(params.OutputDir),
		logger: logger.WithComponent("vocab-builder"),
	}, nil
}

// Build scores, ranks, orders, and writes the vocabulary from the globally
// merged accumulator map under the configured or an auto-generated name.
// The map must be fully merged; Build does not mutate it.
func (b *Builder) Build(ctx context.Context, m *accumulate.Map) (*Result, error) {
	name := b.params.OutputName
	if name == "" {
		name = vocabfile.AutoName()
	}
	return b.BuildAs(ctx, name, m)
}

// BuildAs builds under an explicit output name, for callers that reserve the
// name with the workspace registry before writing.
func (b *Builder) BuildAs(ctx context.Context, name string, m *accumulate.Map) (*Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Len() == 0 {
		return nil, errors.ErrEmptyInput
	}

	totals := m.Totals()
	scorer := b.scorer(m.Profile())

	scored := make([]rank.Entry, 0, m.Len())
	m.Each(func(token string, acc accumulate.Accumulator) {
		scored = append(scored, rank.Entry{
			Token: token,
			Score: scorer.Score(acc, totals),
			Count: acc.TotalCount,
		})
	})

	standard := rank.Apply(scored, rank.Options{
		TopK:               b.params.TopK,
		FrequencyThreshold: b.params.FrequencyThreshold,
	})

	var coverageArm []rank.Entry
	if b.params.KeyFunc != nil {
		selected := make(map[string]struct{}, len(standard))
		for _, e := range standard {
			selected[e.Token] = struct{}{}
		}
		rest := make([]rank.Entry, 0, len(scored)-len(standard))
		for _, e := range scored {
			if _, ok := selected[e.Token]; !ok {
				rest = append(rest, e)
			}
		}
		coverageArm = coverage.Build(rest, b.params.KeyFunc, rank.Options{
			TopK:               b.params.CoverageTopK,
			FrequencyThreshold: b.params.CoverageFrequencyThreshold,
		})
	}

	entries := make([]Entry, 0, len(standard)+len(coverageArm))
	for _, e := range standard {
		entries = append(entries, Entry{Token: e.Token, Score: e.Score, Arm: ArmStandard})
	}
	for _, e := range coverageArm {
		entries = append(entries, Entry{Token: e.Token, Score: e.Score, Arm: ArmCoverage})
	}

	final := append(append(make([]rank.Entry, 0, len(entries)), standard...), coverageArm...)
	if b.params.FingerprintShuffle {
		order.FingerprintShuffle(final)
	}

	lines := make([]vocabfile.Entry, len(final))
	for i, e := range final {
		lines[i] = vocabfile.Entry{Token: e.Token, Score: e.Score}
	}
	path, err := b.writer.Write(name, lines, b.params.StoreFrequency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrWriteFailed, err)
	}

	stats := Stats{
		DistinctTokens: m.Len(),
		StandardArm:    len(standard),
		CoverageArm:    len(coverageArm),
		TotalCount:     totals.TotalCount,
		TotalWeight:    totals.Weight,
		Duration:       time.Since(start),
	}
	b.logger.Info("vocabulary published",
		"path", path,
		"distinct_tokens", stats.DistinctTokens,
		"standard_arm", stats.StandardArm,
		"coverage_arm", stats.CoverageArm,
		"shuffled", b.params.FingerprintShuffle,
		"duration", stats.Duration,
	)
	return &Result{Path: path, Entries: entries, Stats: stats}, nil
}

// scorer selects the scoring regime once per build: mutual information when
// the input is labeled, otherwise raw or weighted frequency.
func (b *Builder) scorer(profile accumulate.Profile) score.Scorer {
	if profile.Labeled {
		return score.MutualInformation{
			Adjusted:       b.params.UseAdjustedMutualInfo,
			MinDiffFromAvg: b.params.MinDiffFromAvg,
		}
	}
	return score.Frequency{Weighted: profile.Weighted}
}
