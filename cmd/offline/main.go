package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/feature-prep/vocab-builder/internal/ingest"
	"github.com/feature-prep/vocab-builder/internal/vocab"
	"github.com/feature-prep/vocab-builder/internal/vocab/accumulate"
	"github.com/feature-prep/vocab-builder/pkg/config"
	"github.com/feature-prep/vocab-builder/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	outputName := flag.String("name", "", "destination name (auto-derived when empty)")
	weighted := flag.Bool("weighted", false, "records carry per-occurrence weights")
	labeled := flag.Bool("labeled", false, "records carry binary labels")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: offline [flags] <records.jsonl>...")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if *outputName != "" {
		cfg.Builder.OutputName = *outputName
	}
	params, err := vocab.ParamsFromConfig(cfg.Builder)
	if err != nil {
		slog.Error("invalid builder configuration", "error", err)
		os.Exit(1)
	}
	builder, err := vocab.New(params)
	if err != nil {
		slog.Error("invalid builder configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile := accumulate.Profile{
		Weighted: *weighted || cfg.Input.Weighted,
		Labeled:  *labeled || cfg.Input.Labeled,
	}
	global, err := ingest.AccumulateFiles(ctx, flag.Args(), profile)
	if err != nil {
		slog.Error("accumulation failed", "error", err)
		os.Exit(1)
	}

	result, err := builder.Build(ctx, global)
	if err != nil {
		slog.Error("vocabulary build failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(result.Path)
}
