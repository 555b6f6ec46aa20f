package reader

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"marketfeed/config"
	"marketfeed/logger"
)

// SubscribeRequest is one pending channel subscription. ID is a correlation
// id carried through logs; Arg is the venue-specific argument placed into
// the subscribe envelope.
type SubscribeRequest struct {
	ID    string
	Topic string
	Arg   interface{}
}

// subscriptionQueue holds pending subscribe requests in order and hands them
// out in fixed-size batches. Batches that fail to send go back to the front
// so ordering is preserved across retries.
type subscriptionQueue struct {
	mu        sync.Mutex
	pending   []SubscribeRequest
	batchSize int
	limiter   *rate.Limiter
}

func newSubscriptionQueue(cfg config.SubscriptionConfig) *subscriptionQueue {
	return &subscriptionQueue{
		batchSize: cfg.BatchSize,
		limiter:   rate.NewLimiter(rate.Every(cfg.BatchInterval), 1),
	}
}

func (q *subscriptionQueue) enqueue(reqs ...SubscribeRequest) {
	q.mu.Lock()
	q.pending = append(q.pending, reqs...)
	q.mu.Unlock()
}

func (q *subscriptionQueue) requeueFront(reqs []SubscribeRequest) {
	q.mu.Lock()
	q.pending = append(reqs, q.pending...)
	q.mu.Unlock()
}

func (q *subscriptionQueue) nextBatch() []SubscribeRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.batchSize
	if n > len(q.pending) {
		n = len(q.pending)
	}
	if n == 0 {
		return nil
	}
	batch := make([]SubscribeRequest, n)
	copy(batch, q.pending[:n])
	q.pending = q.pending[n:]
	return batch
}

func (q *subscriptionQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// drain sends queued subscriptions one batch per limiter tick until the
// queue empties or ctx is cancelled. Failed batches are requeued at the
// front and retried on the next tick.
func (q *subscriptionQueue) drain(ctx context.Context, ep Endpoint, send func([]byte) error, log *logger.Entry) {
	for {
		if err := q.limiter.Wait(ctx); err != nil {
			return
		}
		batch := q.nextBatch()
		if len(batch) == 0 {
			log.Info("All subscriptions processed")
			return
		}
		frame, err := ep.Envelope(batch)
		if err != nil {
			log.WithError(err).Error("Failed to build subscription request")
			return
		}
		if err := send(frame); err != nil {
			q.requeueFront(batch)
			log.WithError(err).WithFields(logger.Fields{
				"batch_size": len(batch),
			}).Warn("Failed to send subscription batch, requeued")
			continue
		}
		topics := make([]string, len(batch))
		for i, req := range batch {
			topics[i] = req.Topic
		}
		log.WithFields(logger.Fields{
			"batch_size": len(batch),
			"topics":     topics,
			"remaining":  q.len(),
		}).Info("Sent subscription batch")
	}
}
