// Package table owns the in-memory shared order of one seated table: a pair
// of product/promotion ledgers per participant, the table-wide detail
// aggregate, and the running total.
//
// The package is pure state and update rules. Locking and broadcast belong
// to the order app layer, which serializes all mutations of one table.
package table

// Kind selects which ledger of an order a mutation targets.
type Kind int

const (
	KindProduct Kind = iota
	KindPromotion
)

// Order is one owner's pair of ledgers. Owners are either a single
// participant or the table-wide detail aggregate.
type Order struct {
	Products   Ledger `json:"products"`
	Promotions Ledger `json:"promotions"`
}

// NewOrder returns an empty order with initialized ledgers.
func NewOrder() Order {
	return Order{Products: make(Ledger), Promotions: make(Ledger)}
}

// Empty reports whether the order holds no products and no promotions.
func (o Order) Empty() bool {
	return len(o.Products) == 0 && len(o.Promotions) == 0
}

func (o Order) ledger(kind Kind) Ledger {
	if kind == KindPromotion {
		return o.Promotions
	}
	return o.Products
}

func cloneOrder(o Order) Order {
	return Order{Products: cloneLedger(o.Products), Promotions: cloneLedger(o.Promotions)}
}

// State is the shared order of one table.
//
// Invariants maintained by Add and Remove: every item id held by any
// participant appears in Detail with at least that participant's quantity,
// and Total equals the sum of price*quantity over all Detail items. Total is
// adjusted incrementally by the delta of the single item touched, never
// recomputed by rescanning.
type State struct {
	Total        float64
	Participants map[string]Order
	Detail       Order
}

// NewState returns a zero-valued table state.
func NewState() *State {
	return &State{
		Participants: make(map[string]Order),
		Detail:       NewOrder(),
	}
}

// Participant returns the named participant's order, creating an empty one on
// first join. Re-joining never resets an already accumulated order.
func (s *State) Participant(name string) Order {
	order, ok := s.Participants[name]
	if !ok {
		order = NewOrder()
		s.Participants[name] = order
	}
	return order
}

// Add applies one unit of item to both the table detail and the named
// participant's ledger for the given kind. Both updates use the same
// id/name/price so the two views never diverge.
func (s *State) Add(participant string, kind Kind, item Item) {
	order := s.Participant(participant)
	delta := s.Detail.ledger(kind).AddOne(item)
	order.ledger(kind).AddOne(item)
	s.Total += delta
}

// Remove takes one unit of the item out of the table detail and, when the
// participant individually holds the id, out of their ledger too. A remove
// issued by a participant who does not hold the item is a shared removal and
// only touches the detail side. An id absent from the detail ledger fails
// with ErrItemNotFound and leaves the state untouched.
func (s *State) Remove(participant string, kind Kind, id int64) error {
	detail := s.Detail.ledger(kind)
	if _, ok := detail[id]; !ok {
		return ErrItemNotFound
	}
	delta, err := detail.RemoveOne(id)
	if err != nil {
		return err
	}
	personal := s.Participant(participant).ledger(kind)
	if _, ok := personal[id]; ok {
		if _, err := personal.RemoveOne(id); err != nil {
			return err
		}
	}
	s.Total += delta
	return nil
}
