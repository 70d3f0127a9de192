package feed

import (
	"sort"
	"sync"

	"matchctl/internal/model"
)

type Handler func(model.Snapshot)

// Subscription identifies one registered handler. The zero value is not a
// valid subscription and unsubscribing it is a no-op.
type Subscription struct {
	id    uint64
	event string
}

func (s Subscription) Valid() bool {
	return s.id != 0
}

// Cell holds the latest snapshot received from the feed and fans it out to
// subscribers. Publish is the only writer.
type Cell struct {
	mu      sync.Mutex
	current model.Snapshot
	subs    map[uint64]subscriber
	nextID  uint64
}

type subscriber struct {
	event   string
	handler Handler
}

func NewCell(initial model.Snapshot) *Cell {
	return &Cell{
		current: initial.Normalize(),
		subs:    make(map[uint64]subscriber),
	}
}

func (c *Cell) CurrentValue() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Normalize()
}

func (c *Cell) Subscribe(event string, handler Handler) Subscription {
	if handler == nil {
		return Subscription{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.subs[c.nextID] = subscriber{event: event, handler: handler}
	return Subscription{id: c.nextID, event: event}
}

func (c *Cell) Unsubscribe(s Subscription) {
	if !s.Valid() {
		return
	}
	c.mu.Lock()
	delete(c.subs, s.id)
	c.mu.Unlock()
}

func (c *Cell) Publish(snapshot model.Snapshot) {
	snapshot = snapshot.Normalize()

	c.mu.Lock()
	c.current = snapshot
	ids := make([]uint64, 0, len(c.subs))
	for id, sub := range c.subs {
		if sub.event == EventUpdate {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, c.subs[id].handler)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(snapshot.Normalize())
	}
}

func (c *Cell) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}
