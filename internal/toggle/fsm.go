// Package toggle applies check-in toggles optimistically and reconciles them
// with the server.
package toggle

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitvault/internal/models"
)

// State is the lifecycle of one (habit, date) entry
type State int

const (
	// Idle entries hold server data (or nothing) and accept a toggle
	Idle State = iota
	// Pending entries show an optimistic status while the mutation is in flight
	Pending
	// Reconciling entries failed their mutation and wait for ground truth
	Reconciling
	// Settled entries were confirmed by the server
	Settled
	// RolledBack entries had their optimistic status replaced by ground truth
	RolledBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Reconciling:
		return "reconciling"
	case Settled:
		return "settled"
	case RolledBack:
		return "rolled-back"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// InFlight reports whether a mutation for the entry has not resolved yet
func (s State) InFlight() bool {
	return s == Pending || s == Reconciling
}

// EventKind is what happened to an entry
type EventKind int

const (
	EventToggle EventKind = iota
	EventServerOK
	EventServerFailed
	EventGroundTruth
	EventRefresh
)

func (k EventKind) String() string {
	switch k {
	case EventToggle:
		return "toggle"
	case EventServerOK:
		return "server-ok"
	case EventServerFailed:
		return "server-failed"
	case EventGroundTruth:
		return "ground-truth"
	case EventRefresh:
		return "refresh"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event drives an entry. Seq orders writes into the same entry; Checkin is
// the value the event carries (nil means no check-in exists).
type Event struct {
	Kind    EventKind
	Seq     uint64
	Checkin *models.Checkin
}

// Entry is the local view of one (habit, date)
type Entry struct {
	State   State
	Seq     uint64
	Checkin *models.Checkin
	// Previous is the value before the optimistic write, restored when ground truth is unavailable
	Previous *models.Checkin
}

var (
	// ErrInFlight rejects a toggle while an earlier one for the same habit is unresolved
	ErrInFlight = errors.New("toggle already in flight")
	// ErrCoolingDown rejects a toggle right after an earlier one settled
	ErrCoolingDown = errors.New("toggle cooling down")
	// ErrStale marks an event older than the entry's latest write
	ErrStale = errors.New("stale event")
	// ErrTransition marks an event that does not apply in the entry's state
	ErrTransition = errors.New("invalid transition")
)

// Reduce applies ev to e. It never mutates e; a non-nil error means the event
// was discarded and e is still current.
func Reduce(e Entry, ev Event) (Entry, error) {
	if ev.Seq < e.Seq {
		return e, fmt.Errorf("%s seq %d behind %d: %w", ev.Kind, ev.Seq, e.Seq, ErrStale)
	}

	switch ev.Kind {
	case EventToggle:
		if e.State.InFlight() {
			return e, ErrInFlight
		}
		if ev.Seq == e.Seq && e.Seq != 0 {
			return e, fmt.Errorf("toggle reuses seq %d: %w", ev.Seq, ErrStale)
		}
		return Entry{State: Pending, Seq: ev.Seq, Checkin: ev.Checkin, Previous: e.Checkin}, nil

	case EventServerOK:
		if err := expect(e, ev, Pending); err != nil {
			return e, err
		}
		next := Entry{State: Settled, Seq: e.Seq, Checkin: e.Checkin}
		if ev.Checkin != nil {
			next.Checkin = ev.Checkin
		}
		return next, nil

	case EventServerFailed:
		if err := expect(e, ev, Pending); err != nil {
			return e, err
		}
		return Entry{State: Reconciling, Seq: e.Seq, Checkin: e.Checkin, Previous: e.Previous}, nil

	case EventGroundTruth:
		if err := expect(e, ev, Reconciling); err != nil {
			return e, err
		}
		return Entry{State: RolledBack, Seq: e.Seq, Checkin: ev.Checkin}, nil

	case EventRefresh:
		if e.State.InFlight() {
			return e, fmt.Errorf("refresh during %s: %w", e.State, ErrStale)
		}
		if ev.Seq == e.Seq && e.Seq != 0 {
			return e, fmt.Errorf("refresh reuses seq %d: %w", ev.Seq, ErrStale)
		}
		return Entry{State: Idle, Seq: ev.Seq, Checkin: ev.Checkin}, nil
	}

	return e, fmt.Errorf("unknown event %s: %w", ev.Kind, ErrTransition)
}

func expect(e Entry, ev Event, want State) error {
	if ev.Seq != e.Seq {
		return fmt.Errorf("%s seq %d does not match %d: %w", ev.Kind, ev.Seq, e.Seq, ErrStale)
	}
	if e.State != want {
		return fmt.Errorf("%s in state %s: %w", ev.Kind, e.State, ErrTransition)
	}
	return nil
}

// NextStatus is the status a toggle writes. Anything that is not completed
// becomes completed; completed becomes missed.
func NextStatus(current models.DayState) models.Status {
	if current == models.DayCompleted {
		return models.StatusMissed
	}
	return models.StatusCompleted
}
