package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/feature-prep/vocab-builder/internal/vocab/accumulate"
	"github.com/feature-prep/vocab-builder/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// AccumulateFiles reads newline-delimited JSON record files in parallel, one
// worker per file, each building its own partition-local map, and merges the
// partials into one global map. The merge is a pure fold over a commutative
// operation, so the completion order of workers does not affect the result.
func AccumulateFiles(ctx context.Context, paths []string, profile accumulate.Profile) (*accumulate.Map, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files given")
	}
	log := logger.WithComponent("file-ingest")

	partials := make([]*accumulate.Map, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			m, err := accumulateFile(gctx, path, profile)
			if err != nil {
				return fmt.Errorf("accumulating %s: %w", path, err)
			}
			partials[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	global := accumulate.NewMap(profile)
	for _, partial := range partials {
		if err := global.Merge(partial); err != nil {
			return nil, err
		}
	}
	log.Info("files accumulated", "files", len(paths), "distinct_tokens", global.Len())
	return global, nil
}

func accumulateFile(ctx context.Context, path string, profile accumulate.Profile) (*accumulate.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := accumulate.NewMap(profile)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var record Record
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		normalized, err := Normalize(record, profile)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if normalized.Labeled {
			m.ObserveLabeled(normalized.Token, normalized.Weight, normalized.Positive)
		} else {
			m.Observe(normalized.Token, normalized.Weight)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
