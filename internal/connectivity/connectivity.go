// Package connectivity tracks whether the remote store is reachable and
// broadcasts the edges. The sync layer only ever reacts to became-online
// transitions; level reads answer the "queue or write through" question.
package connectivity

import (
	"sync"
	"time"
)

// Event is one connectivity transition.
type Event struct {
	Online bool
	At     time.Time
}

// Monitor reports the current connectivity level and its transitions.
type Monitor interface {
	Online() bool
	Subscribe() <-chan Event
}

// Manual is a Monitor driven entirely by Set calls. The app layer flips it
// from platform callbacks; tests flip it directly.
type Manual struct {
	mu     sync.Mutex
	online bool
	subs   []chan Event
}

// NewManual returns a monitor starting at the given level.
func NewManual(online bool) *Manual {
	return &Manual{online: online}
}

// Online reports the current level.
func (m *Manual) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe returns a channel of future transitions. The channel is
// buffered and sends never block: a subscriber that falls far behind loses
// intermediate edges. Consumers must re-check the level and the queue on
// every wakeup rather than trust the event payload alone.
func (m *Manual) Subscribe() <-chan Event {
	ch := make(chan Event, 8)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Set updates the level and, on a change, broadcasts the edge.
func (m *Manual) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	ev := Event{Online: online, At: time.Now()}
	subs := make([]chan Event, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

var _ Monitor = (*Manual)(nil)
