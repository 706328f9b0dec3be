// Package ingest loads the analytics engine's exported CSV and JSON
// summaries into the local SQLite store. It computes nothing itself; the
// metrics are produced by the external replay/analytics pipeline.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"l3gen/internal/domain"
	"l3gen/internal/infra/storage"
)

// Loader parses analytics exports and writes them to storage under one
// run id per invocation.
type Loader struct {
	store     *storage.Storage
	batchSize int
	log       *slog.Logger
}

// NewLoader creates a loader writing batches of batchSize rows.
func NewLoader(store *storage.Storage, batchSize int, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, batchSize: batchSize, log: logger}
}

// LoadCSV ingests the per-trade analytics time series. Returns the number
// of rows loaded.
func (l *Loader) LoadCSV(runID, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", domain.ErrInputNotFound, path)
		}
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header of %s: %w", path, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	if _, ok := col["timestamp"]; !ok {
		return 0, fmt.Errorf("%s: missing timestamp column", path)
	}

	var (
		ticks []domain.TradeTick
		total int
	)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("read %s row %d: %w", path, total+1, err)
		}

		ts, err := strconv.ParseInt(record[col["timestamp"]], 10, 64)
		if err != nil {
			return total, fmt.Errorf("%s row %d: bad timestamp %q", path, total+1, record[col["timestamp"]])
		}

		tick := domain.TradeTick{
			RunID:          runID,
			Timestamp:      ts,
			SequenceNum:    intField(record, col, "sequence_num"),
			TradePrice:     floatField(record, col, "trade_price"),
			TradeQuantity:  intField(record, col, "trade_quantity"),
			Spread:         floatField(record, col, "spread"),
			SpreadBps:      floatField(record, col, "spread_bps"),
			Microprice:     floatField(record, col, "microprice"),
			Imbalance:      floatField(record, col, "imbalance"),
			TickVol:        floatField(record, col, "tick_vol"),
			DepthImbalance: floatField(record, col, "depth_imbalance"),
			AggressorSide:  stringField(record, col, "aggressor_side"),
		}
		ticks = append(ticks, tick)
		total++

		if len(ticks) >= l.batchSize {
			if err := l.store.SaveTicks(ticks, l.batchSize); err != nil {
				return total, fmt.Errorf("save ticks: %w", err)
			}
			ticks = ticks[:0]
		}
	}

	if err := l.store.SaveTicks(ticks, l.batchSize); err != nil {
		return total, fmt.Errorf("save ticks: %w", err)
	}

	l.log.Info("csv ingested", slog.String("path", path), slog.Int("rows", total))
	return total, nil
}

// summaryDoc mirrors the analytics engine's JSON export layout.
type summaryDoc struct {
	TradeCount int64 `json:"trade_count"`

	Spread struct {
		CurrentSpreadBps      float64 `json:"current_spread_bps"`
		AvgSpreadBps          float64 `json:"avg_spread_bps"`
		MinSpreadBps          float64 `json:"min_spread_bps"`
		MaxSpreadBps          float64 `json:"max_spread_bps"`
		AvgEffectiveSpreadBps float64 `json:"avg_effective_spread_bps"`
		SpreadSamples         int64   `json:"spread_samples"`
	} `json:"spread"`

	Microprice struct {
		Microprice float64 `json:"microprice"`
	} `json:"microprice"`

	OrderFlowImbalance struct {
		CurrentImbalance float64 `json:"current_imbalance"`
		BuyVolume        float64 `json:"buy_volume"`
		SellVolume       float64 `json:"sell_volume"`
	} `json:"order_flow_imbalance"`

	RealizedVolatility struct {
		TickVolatility    float64 `json:"tick_volatility"`
		TickReturnCount   int64   `json:"tick_return_count"`
		TimeBarVolatility float64 `json:"time_bar_volatility"`
		TimeBarCount      int64   `json:"time_bar_count"`
	} `json:"realized_volatility"`

	PriceImpact struct {
		KyleLambda            float64 `json:"kyle_lambda"`
		AvgTemporaryImpactBps float64 `json:"avg_temporary_impact_bps"`
		AvgPermanentImpactBps float64 `json:"avg_permanent_impact_bps"`
		SampleCount           int64   `json:"sample_count"`
	} `json:"price_impact"`

	DepthProfile struct {
		CurrentBidDepth []float64 `json:"current_bid_depth"`
		CurrentAskDepth []float64 `json:"current_ask_depth"`
		AvgBidDepth     []float64 `json:"avg_bid_depth"`
		AvgAskDepth     []float64 `json:"avg_ask_depth"`
	} `json:"depth_profile"`
}

// LoadJSON ingests the aggregate summary and the depth profile.
func (l *Loader) LoadJSON(runID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrInputNotFound, path)
		}
		return err
	}

	var doc summaryDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	sum := &domain.RunSummary{
		RunID:     runID,
		CreatedAt: time.Now(),

		TradeCount: doc.TradeCount,

		CurrentSpreadBps:      doc.Spread.CurrentSpreadBps,
		AvgSpreadBps:          doc.Spread.AvgSpreadBps,
		MinSpreadBps:          doc.Spread.MinSpreadBps,
		MaxSpreadBps:          doc.Spread.MaxSpreadBps,
		AvgEffectiveSpreadBps: doc.Spread.AvgEffectiveSpreadBps,
		SpreadSamples:         doc.Spread.SpreadSamples,

		Microprice: doc.Microprice.Microprice,

		CurrentImbalance: doc.OrderFlowImbalance.CurrentImbalance,
		BuyVolume:        doc.OrderFlowImbalance.BuyVolume,
		SellVolume:       doc.OrderFlowImbalance.SellVolume,

		TickVolatility:    doc.RealizedVolatility.TickVolatility,
		TickReturnCount:   doc.RealizedVolatility.TickReturnCount,
		TimeBarVolatility: doc.RealizedVolatility.TimeBarVolatility,
		TimeBarCount:      doc.RealizedVolatility.TimeBarCount,

		KyleLambda:            doc.PriceImpact.KyleLambda,
		AvgTemporaryImpactBps: doc.PriceImpact.AvgTemporaryImpactBps,
		AvgPermanentImpactBps: doc.PriceImpact.AvgPermanentImpactBps,
		ImpactSamples:         doc.PriceImpact.SampleCount,
	}
	if err := l.store.SaveSummary(sum); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}

	levels := depthLevels(runID, "bid", doc.DepthProfile.CurrentBidDepth, doc.DepthProfile.AvgBidDepth)
	levels = append(levels, depthLevels(runID, "ask", doc.DepthProfile.CurrentAskDepth, doc.DepthProfile.AvgAskDepth)...)
	if err := l.store.SaveDepth(levels); err != nil {
		return fmt.Errorf("save depth profile: %w", err)
	}

	l.log.Info("json ingested",
		slog.String("path", path),
		slog.Int64("trade_count", doc.TradeCount),
		slog.Int("depth_levels", len(levels)))
	return nil
}

func depthLevels(runID, side string, current, avg []float64) []domain.DepthLevel {
	levels := make([]domain.DepthLevel, 0, len(current))
	for i, qty := range current {
		dl := domain.DepthLevel{
			RunID:           runID,
			Side:            side,
			Level:           i,
			CurrentQuantity: qty,
		}
		if i < len(avg) {
			dl.AvgQuantity = avg[i]
		}
		levels = append(levels, dl)
	}
	return levels
}

func floatField(record []string, col map[string]int, name string) float64 {
	i, ok := col[name]
	if !ok || i >= len(record) || record[i] == "" {
		return 0
	}
	v, err := strconv.ParseFloat(record[i], 64)
	if err != nil {
		return 0
	}
	return v
}

func intField(record []string, col map[string]int, name string) int64 {
	i, ok := col[name]
	if !ok || i >= len(record) || record[i] == "" {
		return 0
	}
	v, err := strconv.ParseInt(record[i], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func stringField(record []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
