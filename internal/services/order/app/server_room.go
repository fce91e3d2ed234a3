package server

import (
	"encoding/json"
	"sync"

	"github.com/louisbranch/tableside/internal/services/order/table"
)

type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(encoder *json.Encoder) *wsPeer {
	return &wsPeer{encoder: encoder}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

type wsSession struct {
	mu   sync.Mutex
	room *tableRoom
	peer *wsPeer
}

func newWSSession(peer *wsPeer) *wsSession {
	return &wsSession{peer: peer}
}

func (s *wsSession) setRoom(next *tableRoom) *tableRoom {
	s.mu.Lock()
	previous := s.room
	s.room = next
	s.mu.Unlock()
	return previous
}

func (s *wsSession) currentRoom() *tableRoom {
	s.mu.Lock()
	room := s.room
	s.mu.Unlock()
	return room
}

// roomHub is the table registry: one room per table id, created lazily on
// first join and kept for the process lifetime.
type roomHub struct {
	mu    sync.Mutex
	rooms map[string]*tableRoom
}

func newRoomHub() *roomHub {
	return &roomHub{rooms: make(map[string]*tableRoom)}
}

func (h *roomHub) room(tableID string) *tableRoom {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[tableID]
	if ok {
		return room
	}

	room = newTableRoom(tableID)
	h.rooms[tableID] = room
	return room
}

// lookup returns an existing room without creating one. Add and remove
// events require a prior join to have created the table.
func (h *roomHub) lookup(tableID string) (*tableRoom, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[tableID]
	return room, ok
}

// tableRoom pairs one table's shared order state with the connections
// subscribed to it. The mutex serializes every event for the table:
// mutation, projection and the subscriber snapshot happen under it, so two
// devices can never interleave their reads and writes of one order.
type tableRoom struct {
	mu          sync.Mutex
	tableID     string
	state       *table.State
	subscribers map[*wsPeer]struct{}
}

func newTableRoom(tableID string) *tableRoom {
	return &tableRoom{
		tableID:     tableID,
		state:       table.NewState(),
		subscribers: make(map[*wsPeer]struct{}),
	}
}

// join subscribes the peer to the room, ensures the participant exists, and
// returns the joiner's private snapshot.
func (r *tableRoom) join(peer *wsPeer, participant string) table.JoinView {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers[peer] = struct{}{}
	r.state.Participant(participant)
	return table.ProjectJoin(r.state, participant)
}

func (r *tableRoom) leave(peer *wsPeer) {
	r.mu.Lock()
	delete(r.subscribers, peer)
	r.mu.Unlock()
}

// apply runs one mutation and projects the resulting table view while the
// lock is held. A failed mutation leaves the state untouched and returns no
// subscribers, so nothing is ever broadcast for a rejected event. Writing
// the frames happens outside the lock against the returned snapshot.
func (r *tableRoom) apply(mutate func(*table.State) error) (table.View, []*wsPeer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := mutate(r.state); err != nil {
		return table.View{}, nil, err
	}

	view := table.Project(r.state)
	subscribers := make([]*wsPeer, 0, len(r.subscribers))
	for subscriber := range r.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	return view, subscribers, nil
}
