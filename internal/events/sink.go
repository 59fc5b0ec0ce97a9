package events

import "BasketMint/internal/model"

// Sink receives engine events.
type Sink interface {
	Publish(evt model.Event)
}

// Noop discards every event. Used when nothing is configured.
type Noop struct{}

func (Noop) Publish(model.Event) {}

// Multi fans an event out to several sinks in order.
type Multi []Sink

func (m Multi) Publish(evt model.Event) {
	for _, s := range m {
		s.Publish(evt)
	}
}

// Func adapts a plain function into a Sink.
type Func func(evt model.Event)

func (f Func) Publish(evt model.Event) { f(evt) }
