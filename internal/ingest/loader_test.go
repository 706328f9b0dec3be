package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"l3gen/internal/domain"
	"l3gen/internal/infra/storage"
)

const sampleCSV = `timestamp,event_type,sequence_num,trade_price,trade_quantity,aggressor_side,spread,spread_bps,microprice,imbalance,tick_vol,depth_imbalance
1704067200050000000,TRADE,501,42000.50,3,BUY,1.00,0.24,42000.12,0.31,0.0002,0.12
1704067200050100000,TRADE,502,42000.00,1,SELL,1.00,0.24,42000.08,,0.0002,0.10
1704067200050200000,TRADE,503,42001.50,7,BUY,0.50,0.12,42001.22,0.28,0.0003,
`

const sampleJSON = `{
  "trade_count": 523,
  "spread": {
    "current_spread_bps": 0.24,
    "avg_spread_bps": 0.31,
    "min_spread_bps": 0.12,
    "max_spread_bps": 1.19,
    "avg_effective_spread_bps": 0.27,
    "spread_samples": 4981
  },
  "microprice": {"microprice": 42050.12},
  "order_flow_imbalance": {"current_imbalance": 0.18, "buy_volume": 3120, "sell_volume": 2170},
  "realized_volatility": {"tick_volatility": 0.00021, "tick_return_count": 522, "time_bar_volatility": 0.00035, "time_bar_count": 51},
  "price_impact": {"kyle_lambda": 0.0013, "avg_temporary_impact_bps": 0.8, "avg_permanent_impact_bps": 0.3, "sample_count": 523},
  "depth_profile": {
    "current_bid_depth": [12, 20, 8],
    "current_ask_depth": [10, 14],
    "avg_bid_depth": [11.5, 19.0, 8.2],
    "avg_ask_depth": [9.8]
  }
}`

func setupLoader(t *testing.T) (*Loader, *storage.Storage) {
	t.Helper()
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return NewLoader(store, 2, nil), store
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	loader, store := setupLoader(t)
	path := writeFixture(t, "analytics.csv", sampleCSV)

	n, err := loader.LoadCSV("run-1", path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows loaded, got %d", n)
	}

	stored, err := store.CountTicks("run-1")
	if err != nil {
		t.Fatalf("CountTicks failed: %v", err)
	}
	if stored != 3 {
		t.Errorf("expected 3 stored ticks, got %d", stored)
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	loader, _ := setupLoader(t)

	_, err := loader.LoadCSV("run-1", filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, domain.ErrInputNotFound) {
		t.Errorf("expected ErrInputNotFound, got %v", err)
	}
}

func TestLoadCSV_MissingTimestampColumn(t *testing.T) {
	loader, _ := setupLoader(t)
	path := writeFixture(t, "bad.csv", "trade_price,spread\n42000.0,1.0\n")

	if _, err := loader.LoadCSV("run-1", path); err == nil {
		t.Error("expected error for missing timestamp column")
	}
}

func TestLoadJSON(t *testing.T) {
	loader, store := setupLoader(t)
	path := writeFixture(t, "analytics.json", sampleJSON)

	if err := loader.LoadJSON("run-1", path); err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}

	sum, err := store.GetSummary("run-1")
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if sum == nil {
		t.Fatal("summary not stored")
	}
	if sum.TradeCount != 523 {
		t.Errorf("expected trade count 523, got %d", sum.TradeCount)
	}
	if sum.KyleLambda != 0.0013 {
		t.Errorf("expected kyle lambda 0.0013, got %f", sum.KyleLambda)
	}
	if sum.SpreadSamples != 4981 {
		t.Errorf("expected 4981 spread samples, got %d", sum.SpreadSamples)
	}

	levels, err := store.GetDepth("run-1")
	if err != nil {
		t.Fatalf("GetDepth failed: %v", err)
	}
	if len(levels) != 5 {
		t.Fatalf("expected 5 depth levels (3 bid + 2 ask), got %d", len(levels))
	}
	// ask level 1 has no avg sample; the field stays zero
	for _, dl := range levels {
		if dl.Side == "ask" && dl.Level == 1 && dl.AvgQuantity != 0 {
			t.Errorf("expected zero avg for ask level 1, got %f", dl.AvgQuantity)
		}
	}
}

func TestLoadJSON_MissingFile(t *testing.T) {
	loader, _ := setupLoader(t)

	err := loader.LoadJSON("run-1", filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, domain.ErrInputNotFound) {
		t.Errorf("expected ErrInputNotFound, got %v", err)
	}
}
