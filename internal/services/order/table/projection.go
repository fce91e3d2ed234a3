package table

// View is the snapshot broadcast to a whole table after any mutation. The
// participant map is serialized as "users" on the wire.
type View struct {
	Total  float64          `json:"total"`
	Detail Order            `json:"detail"`
	Users  map[string]Order `json:"users"`
}

// JoinView is the private snapshot sent to a participant that just joined:
// everyone else's in-progress orders plus the joiner's own.
type JoinView struct {
	Total   float64          `json:"total"`
	Detail  Order            `json:"detail"`
	Users   map[string]Order `json:"users"`
	MyOrder Order            `json:"myOrder"`
}

// PruneEmpty returns a detached copy of participants that still hold at
// least one product or promotion. The source map is never mutated.
func PruneEmpty(participants map[string]Order) map[string]Order {
	out := make(map[string]Order)
	for name, order := range participants {
		if order.Empty() {
			continue
		}
		out[name] = cloneOrder(order)
	}
	return out
}

// Project derives the table-wide broadcast snapshot. All ledgers are deep
// copies so the caller can release the table lock before serializing.
func Project(s *State) View {
	return View{
		Total:  s.Total,
		Detail: cloneOrder(s.Detail),
		Users:  PruneEmpty(s.Participants),
	}
}

// ProjectJoin derives the snapshot sent privately to a joining participant.
// The users map excludes the joiner's own entry; their order is carried
// separately as myOrder, empty if the participant has not been seen yet.
func ProjectJoin(s *State, participant string) JoinView {
	users := PruneEmpty(s.Participants)
	delete(users, participant)

	myOrder := NewOrder()
	if order, ok := s.Participants[participant]; ok {
		myOrder = cloneOrder(order)
	}

	return JoinView{
		Total:   s.Total,
		Detail:  cloneOrder(s.Detail),
		Users:   users,
		MyOrder: myOrder,
	}
}
