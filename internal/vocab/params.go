package vocab

import (
	"github.com/feature-prep/vocab-builder/internal/vocab/coverage"
	"github.com/feature-prep/vocab-builder/pkg/config"
	"github.com/feature-prep/vocab-builder/pkg/errors"
)

// ParamsFromConfig translates the configuration surface into build Params,
// resolving the coverage key-function spec. Validation still happens in New.
func ParamsFromConfig(cfg config.BuilderConfig) (Params, error) {
	keyFn, err := coverage.ParseKeyFunc(cfg.CoverageKey)
	if err != nil {
		return Params{}, errors.NewConfig("coverage_key", "%v", err)
	}
	return Params{
		TopK:                       cfg.TopK,
		FrequencyThreshold:         cfg.FrequencyThreshold,
		StoreFrequency:             cfg.StoreFrequency,
		UseAdjustedMutualInfo:      cfg.UseAdjustedMutualInfo,
		MinDiffFromAvg:             cfg.MinDiffFromAvg,
		CoverageTopK:               cfg.CoverageTopK,
		CoverageFrequencyThreshold: cfg.CoverageFrequencyThreshold,
		KeyFunc:                    keyFn,
		FingerprintShuffle:         cfg.FingerprintShuffle,
		OutputName:                 cfg.OutputName,
		OutputDir:                  cfg.OutputDir,
	}, nil
}
