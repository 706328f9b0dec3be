package main

import (
	"flag"
	"log/slog"
	"os"

	"l3gen/internal/app"
	"l3gen/internal/feed"
	"l3gen/internal/gen"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	outputPath := flag.String("out", "", "output CSV path (overrides config)")
	flag.Parse()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	cfg := bootstrap.Config
	out := cfg.Generator.OutputPath
	if *outputPath != "" {
		out = *outputPath
	}

	params := cfg.GeneratorParams()
	slog.Info("Generating L3 event log",
		slog.Int64("seed", params.Seed),
		slog.String("output", out))

	g := gen.New(params, slog.Default())
	events, err := g.Run()
	if err != nil {
		// A generation or validation failure is a logic defect; nothing to retry.
		slog.Error("❌ Generation failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := feed.WriteFile(out, events); err != nil {
		slog.Error("❌ Writing output failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("✨ Done",
		slog.String("output", out),
		slog.Int("rows", len(events)),
		slog.Int("active_buys", g.Tracker().BuyCount()),
		slog.Int("active_sells", g.Tracker().SellCount()))
}
