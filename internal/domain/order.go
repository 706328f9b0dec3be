package domain

import "github.com/shopspring/decimal"

const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	EventAdd    = "ADD"
	EventCancel = "CANCEL"
	EventTrade  = "TRADE"
)

// Order is one resting limit order. Ids are assigned by a strictly
// increasing sequence starting at 1 and are never reused.
type Order struct {
	ID       int64
	Side     string // "BUY", "SELL"
	Price    decimal.Decimal
	Quantity int
}

// Event is one row of the L3 event log.
// OrderID is 0 for TRADE rows; Side is "" for CANCEL rows.
type Event struct {
	Timestamp int64  // nanoseconds, strictly increasing by a fixed step
	Type      string // "ADD", "CANCEL", "TRADE"
	OrderID   int64
	Side      string
	Price     decimal.Decimal
	Quantity  int
}

// HasOrderID reports whether this event type carries an order id.
func (e *Event) HasOrderID() bool {
	return e.Type == EventAdd || e.Type == EventCancel
}

// HasSide reports whether this event type carries a side.
func (e *Event) HasSide() bool {
	return e.Type == EventAdd || e.Type == EventTrade
}
