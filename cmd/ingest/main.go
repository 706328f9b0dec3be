package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"l3gen/internal/app"
	"l3gen/internal/infra/storage"
	"l3gen/internal/ingest"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	csvPath := flag.String("csv", "", "path to analytics CSV time series")
	jsonPath := flag.String("json", "", "path to analytics JSON summary")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	if *csvPath == "" && *jsonPath == "" {
		fmt.Fprintln(os.Stderr, "at least one of -csv or -json is required")
		fmt.Fprintln(os.Stderr, "run the replay first:")
		fmt.Fprintln(os.Stderr, "  replay --input data/btcusdt_l3_sample.csv --analytics"+
			" --analytics-csv data/analytics.csv --analytics-json data/analytics.json")
		os.Exit(2)
	}

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	cfg := bootstrap.Config
	db := cfg.Ingest.DBPath
	if *dbPath != "" {
		db = *dbPath
	}

	store, err := storage.NewStorage(db)
	if err != nil {
		slog.Error("❌ Opening storage failed", slog.Any("error", err))
		os.Exit(1)
	}

	runID := uuid.NewString()
	loader := ingest.NewLoader(store, cfg.Ingest.BatchSize, slog.Default())
	slog.Info("Ingesting analytics data", slog.String("run_id", runID), slog.String("db", db))

	total := 0
	if *csvPath != "" {
		n, err := loader.LoadCSV(runID, *csvPath)
		if err != nil {
			slog.Error("❌ CSV ingest failed", slog.Any("error", err))
			os.Exit(1)
		}
		total += n
	}
	if *jsonPath != "" {
		if err := loader.LoadJSON(runID, *jsonPath); err != nil {
			slog.Error("❌ JSON ingest failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	slog.Info("✨ Done", slog.String("run_id", runID), slog.Int("trade_points", total))
}
