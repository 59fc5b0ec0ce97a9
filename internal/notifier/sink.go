package notifier

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"BasketMint/internal/model"
)

// Sender delivers one formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// EventSink queues engine events and delivers them from a single worker, so
// a slow chat never holds up a fund operation. When the queue is full the
// event is dropped and logged.
type EventSink struct {
	sender  Sender
	queue   chan model.Event
	retries int
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewEventSink creates a sink with the given queue size.
func NewEventSink(sender Sender, queueSize, retries int, log *zap.Logger) *EventSink {
	if log == nil {
		log = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &EventSink{
		sender:  sender,
		queue:   make(chan model.Event, queueSize),
		retries: retries,
		log:     log,
	}
}

// Publish implements events.Sink. It never blocks.
func (s *EventSink) Publish(evt model.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- evt:
	default:
		s.log.Warn("notification queue full, dropping event",
			zap.String("kind", string(evt.Kind)), zap.String("fund_id", evt.FundID))
	}
}

// Run delivers queued events until ctx is cancelled.
func (s *EventSink) Run(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("notification worker stopped")
			return
		case evt := <-s.queue:
			if err := s.sender.SendWithRetry(ctx, FormatEvent(evt), s.retries); err != nil {
				s.log.Error("send notification", zap.String("kind", string(evt.Kind)), zap.Error(err))
			}
		}
	}
}
