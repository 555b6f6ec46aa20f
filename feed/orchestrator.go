// Package feed wires exchange adapters to the broadcast hub: it consumes
// normalized events from the shared channel, wraps them into the outbound
// envelope and hands them to the hub.
package feed

import (
	"context"
	"sync"

	"marketfeed/internal/channel"
	"marketfeed/logger"
	"marketfeed/models"
	"marketfeed/normalizer"
)

// Broadcaster is the downstream fan-out surface the orchestrator publishes
// to.
type Broadcaster interface {
	Broadcast(env models.Envelope)
}

// Adapter is one upstream exchange feed.
type Adapter interface {
	Exchange() models.Exchange
	Connect(ctx context.Context) error
	Disconnect()
}

// Orchestrator owns the adapter lifecycles and the dispatch loop.
type Orchestrator struct {
	hub      Broadcaster
	events   *channel.Events
	adapters []Adapter
	log      *logger.Entry

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(hub Broadcaster, events *channel.Events, adapters ...Adapter) *Orchestrator {
	return &Orchestrator{
		hub:      hub,
		events:   events,
		adapters: adapters,
		log:      logger.GetLogger().WithComponent("feed"),
	}
}

// Start launches the dispatch loop and connects every adapter. An adapter
// that fails to connect is logged and skipped; the rest keep running.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.running = true
	o.cancel = cancel
	o.mu.Unlock()

	o.wg.Add(1)
	go o.dispatch(runCtx)

	for _, adapter := range o.adapters {
		if err := adapter.Connect(runCtx); err != nil {
			o.log.WithError(err).WithFields(logger.Fields{
				"exchange": adapter.Exchange(),
			}).Error("Failed to start adapter")
			continue
		}
	}
	o.log.WithFields(logger.Fields{"adapters": len(o.adapters)}).Info("Feed orchestrator started")
	return nil
}

// Stop disconnects every adapter and waits for the dispatch loop to drain.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	cancel := o.cancel
	o.mu.Unlock()

	for _, adapter := range o.adapters {
		adapter.Disconnect()
	}
	cancel()
	o.wg.Wait()
	o.log.Info("Feed orchestrator stopped")
}

func (o *Orchestrator) dispatch(ctx context.Context) {
	defer o.wg.Done()
	sent := 0
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-o.events.C:
			if !ok {
				return
			}
			if !o.publishable(evt) {
				continue
			}
			env, err := models.NewEnvelope(evt)
			if err != nil {
				o.log.WithError(err).Warn("Dropping malformed event")
				continue
			}
			o.hub.Broadcast(env)
			sent++
			if sent%10000 == 0 {
				logger.LogDataFlowEntry(o.log, "adapters", "hub", sent, string(evt.Kind()))
			}
		}
	}
}

// publishable filters events that should not reach subscribers. OKX book
// snapshots thinner than the full depth are suppressed so clients never see
// a partially filled book.
func (o *Orchestrator) publishable(evt models.MarketEvent) bool {
	if !evt.Valid() {
		return false
	}
	if evt.Book != nil && evt.Book.Exchange == models.ExchangeOkx &&
		len(evt.Book.Bids) < normalizer.OkxBookDepth {
		return false
	}
	return true
}
