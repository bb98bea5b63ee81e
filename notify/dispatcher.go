package notify

import (
	"context"
	"sync"
	"time"

	"github.com/mbolis/promo-forms/log"
	"github.com/mbolis/promo-forms/metrics"
	"golang.org/x/time/rate"
)

const sendTimeout = 15 * time.Second

// Dispatcher queues messages and sends them from a fixed set of workers,
// throttled by a shared rate limiter.
type Dispatcher struct {
	notifier Notifier
	limiter  *rate.Limiter
	queue    chan Message

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(notifier Notifier, rps float64, workers, queueSize int) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Limit(rps), workers),
		queue:    make(chan Message, queueSize),
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

// Dispatch enqueues msg without blocking. It reports false when the message
// was dropped because the queue is full or the dispatcher is closed.
func (d *Dispatcher) Dispatch(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.Notification("dropped")
		log.Warnf("notify.dispatch: dispatcher closed, dropping message for %s", msg.Phone)
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		metrics.Notification("dropped")
		log.Warnf("notify.dispatch: queue full, dropping message for %s", msg.Phone)
		return false
	}
}

// Close stops accepting messages and waits for queued ones to be sent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()

	for msg := range d.queue {
		d.send(msg)
	}
}

func (d *Dispatcher) send(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.limiter.Wait(ctx); err != nil {
		metrics.Notification("failed")
		log.Errorf("notify.send.rate_limit: %s", err)
		return
	}

	if err := d.notifier.Notify(ctx, msg); err != nil {
		metrics.Notification("failed")
		log.WithFields(log.Fields{
			"phone":   msg.Phone,
			"program": msg.ProgramName,
		}).Errorf("notify.send: %s", err)
		return
	}
	metrics.Notification("sent")
}
