package gen

import (
	"fmt"

	"github.com/shopspring/decimal"

	"l3gen/internal/domain"
)

// Counts tabulates rows by event type.
type Counts struct {
	Adds    int
	Cancels int
	Trades  int
}

// Tabulate counts ADD/CANCEL/TRADE rows in the event log.
func Tabulate(events []domain.Event) Counts {
	var c Counts
	for i := range events {
		switch events[i].Type {
		case domain.EventAdd:
			c.Adds++
		case domain.EventCancel:
			c.Cancels++
		case domain.EventTrade:
			c.Trades++
		}
	}
	return c
}

// Validate runs the post-generation self-consistency checks over the full
// event sequence and the final tracker state. Checks run in a fixed order:
// total count within the tolerance band, both side sets non-empty, prices
// within bounds, no duplicate cancel, every cancel referencing an earlier
// add, add ids forming the exact sequence 1..K, and the timestamp grid.
// Any violation is a generator defect and is returned as *InvariantError.
func Validate(events []domain.Event, tracker *Tracker, params Params) error {
	total := len(events)
	if total < params.ToleranceMin || total > params.ToleranceMax {
		return &domain.InvariantError{
			Check: "event_count",
			Detail: fmt.Sprintf("total %d outside tolerance band [%d, %d]",
				total, params.ToleranceMin, params.ToleranceMax),
		}
	}

	if tracker.BuyCount() == 0 || tracker.SellCount() == 0 {
		return &domain.InvariantError{
			Check: "resting_liquidity",
			Detail: fmt.Sprintf("final active sets buy=%d sell=%d, both must be non-empty",
				tracker.BuyCount(), tracker.SellCount()),
		}
	}

	minPrice := decimal.NewFromFloat(params.MinPrice)
	maxPrice := decimal.NewFromFloat(params.MaxPrice)
	for i := range events {
		p := events[i].Price
		if p.LessThan(minPrice) || p.GreaterThan(maxPrice) {
			return &domain.InvariantError{
				Check: "price_bounds",
				Detail: fmt.Sprintf("row %d price %s outside [%s, %s]",
					i, p.StringFixed(2), minPrice.StringFixed(2), maxPrice.StringFixed(2)),
			}
		}
	}

	cancelled := make(map[int64]struct{})
	for i := range events {
		if events[i].Type != domain.EventCancel {
			continue
		}
		id := events[i].OrderID
		if _, dup := cancelled[id]; dup {
			return &domain.InvariantError{
				Check:  "duplicate_cancel",
				Detail: fmt.Sprintf("row %d cancels order %d twice", i, id),
			}
		}
		cancelled[id] = struct{}{}
	}

	added := make(map[int64]struct{})
	for i := range events {
		switch events[i].Type {
		case domain.EventAdd:
			added[events[i].OrderID] = struct{}{}
		case domain.EventCancel:
			if _, ok := added[events[i].OrderID]; !ok {
				return &domain.InvariantError{
					Check:  "cancel_without_add",
					Detail: fmt.Sprintf("row %d cancels order %d never added", i, events[i].OrderID),
				}
			}
		}
	}

	var wantID int64 = 1
	for i := range events {
		if events[i].Type != domain.EventAdd {
			continue
		}
		if events[i].OrderID != wantID {
			return &domain.InvariantError{
				Check:  "add_id_sequence",
				Detail: fmt.Sprintf("row %d has add id %d, want %d", i, events[i].OrderID, wantID),
			}
		}
		wantID++
	}

	for i := 1; i < len(events); i++ {
		if events[i].Timestamp != events[i-1].Timestamp+params.TimestampStep {
			return &domain.InvariantError{
				Check: "timestamp_grid",
				Detail: fmt.Sprintf("row %d timestamp %d, want %d",
					i, events[i].Timestamp, events[i-1].Timestamp+params.TimestampStep),
			}
		}
	}

	return nil
}
