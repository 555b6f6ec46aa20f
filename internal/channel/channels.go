package channel

import (
	"context"
	"sync"

	"marketfeed/logger"
	"marketfeed/models"
)

type Stats struct {
	Sent    int64
	Dropped int64
}

// Events is the buffered channel bundle carrying normalized market events
// from the adapters to the orchestrator.
type Events struct {
	C chan models.MarketEvent

	stats      Stats
	statsMutex sync.RWMutex
	closeOnce  sync.Once
	log        *logger.Log
}

func NewEvents(bufferSize int) *Events {
	log := logger.GetLogger()
	e := &Events{
		C:   make(chan models.MarketEvent, bufferSize),
		log: log,
	}

	log.WithComponent("event_channel").WithFields(logger.Fields{
		"buffer_size": bufferSize,
	}).Info("event channel initialized")

	return e
}

func (e *Events) Close() {
	e.closeOnce.Do(func() {
		close(e.C)
		e.log.WithComponent("event_channel").Info("event channel closed")
	})
}

// Send forwards an event without blocking. A full buffer drops the event;
// the status events that feed outage detection must therefore never be the
// only signal a consumer relies on when buffers are undersized.
func (e *Events) Send(ctx context.Context, evt models.MarketEvent) bool {
	select {
	case e.C <- evt:
		e.statsMutex.Lock()
		e.stats.Sent++
		e.statsMutex.Unlock()
		return true
	case <-ctx.Done():
		return false
	default:
		e.statsMutex.Lock()
		e.stats.Dropped++
		e.statsMutex.Unlock()
		return false
	}
}

func (e *Events) GetStats() Stats {
	e.statsMutex.RLock()
	defer e.statsMutex.RUnlock()
	return e.stats
}
