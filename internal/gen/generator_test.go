package gen

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"l3gen/internal/domain"
	"l3gen/internal/feed"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func runDefault(t *testing.T) ([]domain.Event, *Generator) {
	t.Helper()
	g := New(DefaultParams(), discardLogger())
	events, err := g.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return events, g
}

func TestGenerator_RowCountWithinToleranceBand(t *testing.T) {
	events, _ := runDefault(t)

	if len(events) < 4900 || len(events) > 5100 {
		t.Errorf("expected row count in [4900, 5100], got %d", len(events))
	}
}

func TestGenerator_SeedingPhaseIsPureAdds(t *testing.T) {
	events, _ := runDefault(t)

	if len(events) < 500 {
		t.Fatalf("expected at least 500 rows, got %d", len(events))
	}
	for i := 0; i < 500; i++ {
		if events[i].Type != domain.EventAdd {
			t.Fatalf("row %d: expected ADD during seeding, got %s", i, events[i].Type)
		}
	}
}

func TestGenerator_MixedEventsAfterSeeding(t *testing.T) {
	events, _ := runDefault(t)

	counts := Tabulate(events[500:])
	if counts.Cancels == 0 {
		t.Error("expected CANCEL rows in phases 2-4")
	}
	if counts.Trades == 0 {
		t.Error("expected TRADE rows in phases 2-4")
	}
}

func TestGenerator_FinalBookHasBothSides(t *testing.T) {
	_, g := runDefault(t)

	if g.Tracker().BuyCount() == 0 {
		t.Error("expected at least one resting BUY order")
	}
	if g.Tracker().SellCount() == 0 {
		t.Error("expected at least one resting SELL order")
	}
}

func TestGenerator_TimestampGrid(t *testing.T) {
	events, _ := runDefault(t)
	params := DefaultParams()

	if events[0].Timestamp != params.StartTimestamp {
		t.Errorf("expected first timestamp %d, got %d", params.StartTimestamp, events[0].Timestamp)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp != events[i-1].Timestamp+params.TimestampStep {
			t.Fatalf("row %d: timestamp delta %d, want %d",
				i, events[i].Timestamp-events[i-1].Timestamp, params.TimestampStep)
		}
	}
}

func TestGenerator_AddIDsAreSequential(t *testing.T) {
	events, _ := runDefault(t)

	var want int64 = 1
	for i := range events {
		if events[i].Type != domain.EventAdd {
			continue
		}
		if events[i].OrderID != want {
			t.Fatalf("row %d: add id %d, want %d", i, events[i].OrderID, want)
		}
		want++
	}
}

func TestGenerator_CancelsReferenceOpenOrders(t *testing.T) {
	events, _ := runDefault(t)

	open := make(map[int64]bool)
	for i := range events {
		switch events[i].Type {
		case domain.EventAdd:
			open[events[i].OrderID] = true
		case domain.EventCancel:
			if !open[events[i].OrderID] {
				t.Fatalf("row %d: cancel of order %d which is not open", i, events[i].OrderID)
			}
			delete(open, events[i].OrderID)
		}
	}
}

func TestGenerator_FieldPresenceRules(t *testing.T) {
	events, _ := runDefault(t)

	for i := range events {
		ev := &events[i]
		switch ev.Type {
		case domain.EventTrade:
			if ev.OrderID != 0 {
				t.Fatalf("row %d: TRADE carries order id %d", i, ev.OrderID)
			}
			if ev.Side == "" {
				t.Fatalf("row %d: TRADE missing side", i)
			}
		case domain.EventCancel:
			if ev.Side != "" {
				t.Fatalf("row %d: CANCEL carries side %q", i, ev.Side)
			}
			if ev.OrderID == 0 {
				t.Fatalf("row %d: CANCEL missing order id", i)
			}
		case domain.EventAdd:
			if ev.OrderID == 0 || ev.Side == "" {
				t.Fatalf("row %d: ADD missing order id or side", i)
			}
		}
		if ev.Quantity <= 0 {
			t.Fatalf("row %d: non-positive quantity %d", i, ev.Quantity)
		}
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	params := DefaultParams()

	var first, second bytes.Buffer
	for i, buf := range []*bytes.Buffer{&first, &second} {
		g := New(params, discardLogger())
		events, err := g.Run()
		if err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
		if err := feed.Write(buf, events); err != nil {
			t.Fatalf("run %d serialization failed: %v", i+1, err)
		}
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("two runs with the same seed produced different output")
	}
}

func TestGenerator_SeedChangesStream(t *testing.T) {
	params := DefaultParams()
	a, err := New(params, discardLogger()).Run()
	if err != nil {
		t.Fatalf("seed 42 run failed: %v", err)
	}

	params.Seed = 7
	b, err := New(params, discardLogger()).Run()
	if err != nil {
		t.Fatalf("seed 7 run failed: %v", err)
	}

	var bufA, bufB bytes.Buffer
	if err := feed.Write(&bufA, a); err != nil {
		t.Fatal(err)
	}
	if err := feed.Write(&bufB, b); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(bufA.Bytes(), bufB.Bytes()) {
		t.Error("different seeds produced identical streams")
	}
}

func TestGenerator_StatsMatchTabulation(t *testing.T) {
	events, g := runDefault(t)

	counts := Tabulate(events)
	stats := g.Stats()
	if stats.Adds != counts.Adds || stats.Cancels != counts.Cancels || stats.Trades != counts.Trades {
		t.Errorf("stats %+v disagree with tabulation %+v", stats, counts)
	}
	if stats.Adds+stats.Cancels+stats.Trades != len(events) {
		t.Errorf("stats sum %d != row count %d",
			stats.Adds+stats.Cancels+stats.Trades, len(events))
	}
}

func TestGenerator_SkipBudgetExhaustion(t *testing.T) {
	params := DefaultParams()
	params.MaxSkips = 3
	g := New(params, discardLogger())

	var consecutive int
	for i := 0; i < 2; i++ {
		if err := g.skip(&consecutive); err != nil {
			t.Fatalf("skip %d should be within budget: %v", i, err)
		}
	}
	err := g.skip(&consecutive)
	if !errors.Is(err, domain.ErrNoActiveOrders) {
		t.Errorf("expected ErrNoActiveOrders after budget exhaustion, got %v", err)
	}
	if g.Stats().Skips != 3 {
		t.Errorf("expected 3 recorded skips, got %d", g.Stats().Skips)
	}
}

func BenchmarkGeneratorRun(b *testing.B) {
	params := DefaultParams()
	logger := discardLogger()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := New(params, logger).Run(); err != nil {
			b.Fatal(err)
		}
	}
}
