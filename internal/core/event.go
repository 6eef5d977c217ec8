package core

import "time"

type EventKind string

const (
	EventStarted EventKind = "started"
	EventEntry   EventKind = "entry"
	EventExit    EventKind = "exit"
	EventSkip    EventKind = "skip"
	EventStatus  EventKind = "status"
)

// Event is emitted by the simulation loop after each transition. Consumers
// (notifier, web push hub) receive it asynchronously; emitting is
// fire-and-forget and must never block the loop.
type Event struct {
	Kind EventKind `json:"kind"`
	TS   time.Time `json:"ts"`

	Position *Position    `json:"position,omitempty"`
	Trade    *ClosedTrade `json:"trade,omitempty"`

	Price     float64 `json:"price,omitempty"`
	Capital   float64 `json:"capital,omitempty"`
	OpenCount int     `json:"open_count,omitempty"`
	Detail    string  `json:"detail,omitempty"`
}
