package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/speaky/gateway/internal/api/metrics"
	"github.com/speaky/gateway/internal/core/domain"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Sink receives events in the order they were published for a client.
type Sink interface {
	Deliver(event domain.Event)
}

// Dispatcher fans workspace events out to a fixed set of workers, sharded by
// client id so that every client sees its events in publish order.
type Dispatcher struct {
	workers []chan domain.Event
	sink    Sink
	log     zerolog.Logger
	stopped atomic.Bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink Sink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Event, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Event, channelBuffer)
	}
	return d
}

// Start launches the workers. They stop when ctx is cancelled, after which
// Publish drops everything.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		d.stopped.Store(true)
	}()
}

// Publish queues event on its client's worker. It never blocks: a full
// worker channel drops the event.
func (d *Dispatcher) Publish(event domain.Event) {
	if d.stopped.Load() {
		metrics.EventsDroppedTotal.WithLabelValues("stopped").Inc()
		return
	}
	idx := d.shardIndex(event.ClientID)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.EventsDroppedTotal.WithLabelValues("queue_full").Inc()
		d.log.Warn().
			Str("client_id", event.ClientID).
			Str("type", string(event.Type)).
			Int("worker_id", idx).
			Msg("event queue full, dropping event")
	}
}

// shardIndex maps a client id deterministically to a worker index.
func (d *Dispatcher) shardIndex(clientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(clientID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Event) {
	depth := metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.sink.Deliver(event)
		}
	}
}
