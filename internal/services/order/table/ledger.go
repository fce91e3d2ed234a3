package table

import "errors"

// ErrItemNotFound indicates a remove referenced an item id absent from a ledger.
var ErrItemNotFound = errors.New("item not found")

// Item is one product or promotion line with a unit price and a quantity.
type Item struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// Ledger maps item ids to line items for a single owner. An id present in a
// ledger always has quantity >= 1; removing the last unit evicts the entry.
type Ledger map[int64]Item

// AddOne adds one unit of item to the ledger. A first add inserts the entry
// with quantity 1 using the supplied name and price; later adds increment the
// quantity and keep the originally stored name and price. The returned delta
// is the unit price to add to the owner's running total.
func (l Ledger) AddOne(item Item) float64 {
	existing, ok := l[item.ID]
	if !ok {
		l[item.ID] = Item{ID: item.ID, Name: item.Name, Price: item.Price, Quantity: 1}
		return item.Price
	}
	existing.Quantity++
	l[item.ID] = existing
	return existing.Price
}

// RemoveOne takes one unit of the item with the given id out of the ledger,
// evicting the entry when its quantity reaches zero. The returned delta is
// the negated unit price to add to the owner's running total.
func (l Ledger) RemoveOne(id int64) (float64, error) {
	existing, ok := l[id]
	if !ok {
		return 0, ErrItemNotFound
	}
	existing.Quantity--
	if existing.Quantity == 0 {
		delete(l, id)
	} else {
		l[id] = existing
	}
	return -existing.Price, nil
}

func cloneLedger(l Ledger) Ledger {
	out := make(Ledger, len(l))
	for id, item := range l {
		out[id] = item
	}
	return out
}
