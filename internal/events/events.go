// Package events notifies downstream consumers (activity feed, cache
// invalidation) about create and update operations. Dispatch is
// fire-and-forget; no result flows back into the core.
package events

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/marksrv/marksrv/internal/model"
)

// Kind is the event kind.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
)

// Event describes a change to a single tree node.
type Event struct {
	Kind     Kind
	NodeType model.NodeType
	NodeID   string
}

// Dispatcher receives events from the folder service.
type Dispatcher interface {
	Dispatch(Event)
}

// LogDispatcher writes events to the log. It is the default sink when
// no consumer is wired in.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(e Event) {
	log.Debug().
		Str("kind", string(e.Kind)).
		Str("node_type", string(e.NodeType)).
		Str("node_id", e.NodeID).
		Msg("event dispatched")
}

// Recorder collects events in memory. Used in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Dispatch(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything dispatched so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
