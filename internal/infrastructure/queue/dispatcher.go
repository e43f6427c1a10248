package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cascadeforum/portal/internal/api/metrics"
	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// Dispatcher routes checkout journal entries to a fixed set of workers using
// consistent hashing on the registration id, preserving per-registration
// ordering.
type Dispatcher struct {
	workers []chan *domain.CheckoutJournalEntry
	repo    ports.JournalRepository
	log     zerolog.Logger
	done    chan struct{}

	// mu orders Record against shutdown: once stopped is set no entry
	// reaches a queue the workers have stopped reading.
	mu       sync.RWMutex
	stopped  bool
	stopping chan struct{}
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.JournalRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan *domain.CheckoutJournalEntry, numWorkers),
		repo:    repo,
		log:      log,
		done:     make(chan struct{}),
		stopping: make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan *domain.CheckoutJournalEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Once ctx is cancelled Record stops
// accepting entries, workers drain what is already queued and Done is closed
// when all have returned. Cancel ctx only after the last Record caller is
// gone.
func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		d.mu.Lock()
		d.stopped = true
		d.mu.Unlock()
		close(d.stopping)
	}()

	finished := make(chan struct{}, len(d.workers))
	for i, ch := range d.workers {
		go func(id int, ch <-chan *domain.CheckoutJournalEntry) {
			d.runWorker(ctx, id, ch)
			finished <- struct{}{}
		}(i, ch)
	}
	go func() {
		for range d.workers {
			<-finished
		}
		close(d.done)
	}()
}

// Done is closed once every worker has stopped.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Record queues an entry for the worker owning its registration. It never
// blocks: when that worker's queue is full, or the dispatcher has stopped,
// the entry is dropped and counted.
func (d *Dispatcher) Record(entry *domain.CheckoutJournalEntry) {
	metrics.CheckoutTransitionsTotal.WithLabelValues(string(entry.To)).Inc()

	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := d.shardIndex(entry.RegistrationID)
	if d.stopped {
		metrics.JournalEntriesTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("registration_id", entry.RegistrationID).
			Str("to", string(entry.To)).
			Msg("journal stopped, entry dropped")
		return
	}

	select {
	case d.workers[idx] <- entry:
		metrics.JournalQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.JournalEntriesTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("registration_id", entry.RegistrationID).
			Str("to", string(entry.To)).
			Int("worker_id", idx).
			Msg("journal queue full, entry dropped")
	}
}

// shardIndex maps a registration id deterministically to a worker index.
func (d *Dispatcher) shardIndex(registrationID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(registrationID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan *domain.CheckoutJournalEntry) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-d.stopping:
			d.drain(id, ch)
			return
		case entry := <-ch:
			metrics.JournalQueueDepth.WithLabelValues(label).Dec()
			d.write(context.WithoutCancel(ctx), id, entry)
		}
	}
}

// drain writes whatever is still buffered after shutdown began.
func (d *Dispatcher) drain(id int, ch <-chan *domain.CheckoutJournalEntry) {
	label := strconv.Itoa(id)
	for {
		select {
		case entry := <-ch:
			metrics.JournalQueueDepth.WithLabelValues(label).Dec()
			d.write(context.Background(), id, entry)
		default:
			return
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, entry *domain.CheckoutJournalEntry) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	start := time.Now()
	err := d.repo.Append(ctx, entry)
	metrics.JournalWriteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.JournalEntriesTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("registration_id", entry.RegistrationID).
			Str("to", string(entry.To)).
			Int("worker_id", id).
			Msg("journal write failed")
		return
	}
	metrics.JournalEntriesTotal.WithLabelValues("written").Inc()
}
