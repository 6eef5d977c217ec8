// Package notify delivers loop events to external channels. Delivery is
// best-effort and fully decoupled from the loop: publishing never blocks,
// and a failing sink is logged and skipped.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"breakoutbot/internal/core"
)

type Sink interface {
	Name() string
	Send(evt core.Event) error
}

type Service struct {
	sinks []Sink
	ch    chan core.Event
}

func NewService(sinks ...Sink) *Service {
	return &Service{sinks: sinks, ch: make(chan core.Event, 64)}
}

// Publish queues an event for delivery. Drops on a full queue rather than
// stalling the caller.
func (s *Service) Publish(evt core.Event) {
	select {
	case s.ch <- evt:
	default:
		log.Warn().Str("kind", string(evt.Kind)).Msg("notify queue full, event dropped")
	}
}

// Run drains the queue until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-s.ch:
			for _, sink := range s.sinks {
				if err := sink.Send(evt); err != nil {
					log.Warn().Err(err).Str("sink", sink.Name()).Str("kind", string(evt.Kind)).Msg("notification failed")
				}
			}
		}
	}
}
