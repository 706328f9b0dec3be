package gen

import (
	"fmt"

	"github.com/shopspring/decimal"

	"l3gen/internal/domain"
)

// Tracker is the authoritative record of currently resting orders. It owns
// order-id allocation and the per-side active-id sets. Single logical
// owner for the whole run; no concurrent access.
type Tracker struct {
	nextID int64
	orders map[int64]*domain.Order

	// Active ids in selection order. Removal is swap-with-last, which is
	// deterministic given a deterministic operation sequence.
	ids []int64
	idx map[int64]int // id -> position in ids

	buys  map[int64]struct{}
	sells map[int64]struct{}
}

// NewTracker creates an empty tracker. The first allocated id is 1.
func NewTracker() *Tracker {
	return &Tracker{
		nextID: 1,
		orders: make(map[int64]*domain.Order),
		idx:    make(map[int64]int),
		buys:   make(map[int64]struct{}),
		sells:  make(map[int64]struct{}),
	}
}

func (t *Tracker) allocateID() int64 {
	id := t.nextID
	t.nextID++
	return id
}

// Add registers a new resting order under a freshly allocated id.
func (t *Tracker) Add(side string, price decimal.Decimal, quantity int) *domain.Order {
	o := &domain.Order{
		ID:       t.allocateID(),
		Side:     side,
		Price:    price,
		Quantity: quantity,
	}
	t.orders[o.ID] = o
	t.idx[o.ID] = len(t.ids)
	t.ids = append(t.ids, o.ID)
	if side == domain.SideBuy {
		t.buys[o.ID] = struct{}{}
	} else {
		t.sells[o.ID] = struct{}{}
	}
	return o
}

// Cancel removes an active order and returns it. Canceling an id that is
// not active is a defect in the calling phase driver: halt immediately,
// same policy as a sequence gap.
func (t *Tracker) Cancel(id int64) *domain.Order {
	o, ok := t.orders[id]
	if !ok {
		panic(fmt.Sprintf("CANCEL_ON_INACTIVE_ORDER: id %d", id))
	}
	delete(t.orders, id)

	pos := t.idx[id]
	last := len(t.ids) - 1
	t.ids[pos] = t.ids[last]
	t.idx[t.ids[pos]] = pos
	t.ids = t.ids[:last]
	delete(t.idx, id)

	delete(t.buys, id)
	delete(t.sells, id)
	return o
}

// Get returns the active order with the given id, if any.
func (t *Tracker) Get(id int64) (*domain.Order, bool) {
	o, ok := t.orders[id]
	return o, ok
}

// ActiveIDs returns the active order ids in selection order. The returned
// slice is the tracker's own storage; callers must not mutate or retain it.
func (t *Tracker) ActiveIDs() []int64 {
	return t.ids
}

// ActiveCount returns the number of currently resting orders.
func (t *Tracker) ActiveCount() int {
	return len(t.ids)
}

// BuyCount returns the number of resting BUY orders.
func (t *Tracker) BuyCount() int {
	return len(t.buys)
}

// SellCount returns the number of resting SELL orders.
func (t *Tracker) SellCount() int {
	return len(t.sells)
}
