// Package dispatcher implements WriteDispatcher (spec §4.4): a bounded
// in-memory queue, per-partition batches with size/time/jitter triggers,
// a worker pool, retry with jittered exponential backoff, and
// success/retry/error callbacks.
package dispatcher

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

// Submitter is the dependency WriteDispatcher hands closed batches to.
// internal/httpwrite.Submitter is adapted to this interface by the root
// client package.
type Submitter interface {
	Submit(ctx context.Context, key model.PartitionKey, payload []byte) error
}

// Stats are the close-time counters this module supplements beyond the
// distilled spec (SPEC_FULL.md §3 "Close-time stats").
type Stats struct {
	Enqueued  int64
	Submitted int64
	Retried   int64
	Dropped   int64
}

type openBatch struct {
	batch *model.Batch
	timer *time.Timer
}

// Dispatcher is the WriteDispatcher of spec §4.4.
type Dispatcher struct {
	opts      Options
	submitter Submitter
	Callbacks *Callbacks

	mu         sync.Mutex
	open       map[model.PartitionKey]*openBatch
	queue      chan *model.Batch
	inFlight   sync.WaitGroup
	workersCtx context.Context
	cancel     context.CancelFunc
	closed     atomic.Bool
	closeOnce  sync.Once

	stats Stats
}

func New(opts Options, submitter Submitter) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		opts:       opts,
		submitter:  submitter,
		Callbacks:  NewCallbacks(),
		open:       make(map[model.PartitionKey]*openBatch),
		queue:      make(chan *model.Batch, opts.QueueDepth),
		workersCtx: ctx,
		cancel:     cancel,
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Enqueued:  atomic.LoadInt64(&d.stats.Enqueued),
		Submitted: atomic.LoadInt64(&d.stats.Submitted),
		Retried:   atomic.LoadInt64(&d.stats.Retried),
		Dropped:   atomic.LoadInt64(&d.stats.Dropped),
	}
}

// Write appends payload (already-serialized lines, possibly more than
// one joined by "\n") to the open batch for key, per spec §4.4.
//
// In Synchronous mode the record bypasses batching entirely: it is
// submitted (with full retry) as its own single-record batch and Write
// blocks until that submission reaches a terminal outcome.
//
// In Batching/Asynchronous mode the record joins the partition's open
// batch; Write returns once the append (and any trigger it causes) is
// queued. Asynchronous differs only in that the enqueue itself is
// offloaded to a goroutine so Write never blocks on backpressure.
func (d *Dispatcher) Write(ctx context.Context, key model.PartitionKey, payload []byte) error {
	if d.closed.Load() {
		return model.Misuse("write called after close")
	}
	if len(payload) == 0 {
		return nil
	}

	switch d.opts.WriteType {
	case Synchronous:
		return d.writeSynchronous(ctx, key, payload)
	case Asynchronous:
		go func() {
			if err := d.writeBatching(context.Background(), key, payload); err != nil {
				cclog.Warnf("async write enqueue failed: %s", err.Error())
			}
		}()
		return nil
	default:
		return d.writeBatching(ctx, key, payload)
	}
}

// WriteBatching forces the batching path for one write regardless of the
// Dispatcher's configured WriteType, for callers that want per-call
// control over scheduling (e.g. the root Client's WriteBatching method).
func (d *Dispatcher) WriteBatching(ctx context.Context, key model.PartitionKey, payload []byte) error {
	if d.closed.Load() {
		return model.Misuse("write called after close")
	}
	if len(payload) == 0 {
		return nil
	}
	return d.writeBatching(ctx, key, payload)
}

func (d *Dispatcher) writeSynchronous(ctx context.Context, key model.PartitionKey, payload []byte) error {
	b := &model.Batch{Key: key, ID: uuid.NewString()}
	b.Append(payload)
	atomic.AddInt64(&d.stats.Enqueued, 1)
	return d.submitWithRetry(ctx, b)
}

func (d *Dispatcher) writeBatching(ctx context.Context, key model.PartitionKey, payload []byte) error {
	d.mu.Lock()
	ob, ok := d.open[key]
	if !ok {
		ob = &openBatch{batch: &model.Batch{Key: key, ID: uuid.NewString(), FirstTry: time.Now()}}
		jitter := jitterDuration(d.opts.JitterInterval)
		ob.timer = time.AfterFunc(d.opts.FlushInterval+jitter, func() { d.flushKey(key) })
		ob.batch.Deadline = time.Now().Add(d.opts.FlushInterval + jitter)
		d.open[key] = ob
	}
	ob.batch.Append(payload)
	full := ob.batch.Size() >= d.opts.BatchSize
	var toSend *model.Batch
	if full {
		toSend = ob.batch
		ob.timer.Stop()
		delete(d.open, key)
	}
	d.mu.Unlock()

	if toSend != nil {
		return d.enqueue(ctx, toSend)
	}
	return nil
}

// flushKey is invoked by a partition's flush-interval timer or by an
// explicit Flush call.
func (d *Dispatcher) flushKey(key model.PartitionKey) {
	d.mu.Lock()
	ob, ok := d.open[key]
	if !ok || ob.batch.Size() == 0 {
		if ok {
			delete(d.open, key)
		}
		d.mu.Unlock()
		return
	}
	delete(d.open, key)
	d.mu.Unlock()

	if err := d.enqueue(context.Background(), ob.batch); err != nil {
		cclog.Warnf("flush enqueue failed for partition %+v: %s", key, err.Error())
	}
}

// enqueue hands a closed batch to the queue, blocking while it is full
// (spec §4.4 backpressure). inFlight.Add happens before the send so
// Flush/Close's Wait() always happens-after every batch it needs to
// observe.
func (d *Dispatcher) enqueue(ctx context.Context, b *model.Batch) error {
	atomic.AddInt64(&d.stats.Enqueued, 1)
	d.inFlight.Add(1)
	select {
	case d.queue <- b:
		return nil
	case <-ctx.Done():
		d.inFlight.Done()
		return model.Misuse("write queue full: %v", ctx.Err())
	}
}

func (d *Dispatcher) worker() {
	for {
		select {
		case b, ok := <-d.queue:
			if !ok {
				return
			}
			_ = d.submitWithRetry(d.workersCtx, b)
			d.inFlight.Done()
		case <-d.workersCtx.Done():
			return
		}
	}
}

// submitWithRetry runs the retry state machine of spec §4.4 for a single
// batch. The timeout configured on the submitter applies per HTTP
// attempt, not to the whole retry sequence (spec §5); the sequence itself
// is bounded by MaxRetries and MaxRetryTime.
func (d *Dispatcher) submitWithRetry(ctx context.Context, b *model.Batch) error {
	start := time.Now()
	attempt := 0

	for {
		if d.opts.Debug {
			cclog.Debugf("submitting batch %s for partition %+v (%d bytes, attempt %d)", b.ID, b.Key, len(b.Payload), attempt+1)
		}
		err := d.submitter.Submit(ctx, b.Key, b.Payload)
		if err == nil {
			atomic.AddInt64(&d.stats.Submitted, 1)
			d.sendSuccess(SuccessEvent{Key: b.Key, ID: b.ID})
			return nil
		}

		attempt++
		domainErr, _ := err.(*model.Error)
		retryable := domainErr == nil || domainErr.Kind.Retryable()

		stop := !retryable ||
			attempt > d.opts.MaxRetries ||
			time.Since(start) > d.opts.MaxRetryTime

		if stop {
			atomic.AddInt64(&d.stats.Dropped, 1)
			d.sendError(ErrorEvent{Key: b.Key, Err: err})
			return err
		}

		atomic.AddInt64(&d.stats.Retried, 1)
		d.sendRetry(RetryEvent{Key: b.Key, Payload: b.Payload, Err: err, Attempt: attempt})

		delay := retryDelay(d.opts, attempt, domainErr)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			atomic.AddInt64(&d.stats.Dropped, 1)
			d.sendError(ErrorEvent{Key: b.Key, Err: ctx.Err()})
			return ctx.Err()
		}
	}
}

// retryDelay computes the backoff for attempt k (1-indexed) per spec
// §4.4's formula, using backoff.ExponentialBackOff (with randomization
// disabled) purely to derive the capped-exponential base delay — the
// additive jitter and Retry-After override are applied on top, since
// the library's own multiplicative jitter does not match the spec's
// additive uniform(0, jitter_interval) term.
func retryDelay(opts Options, attempt int, domainErr *model.Error) time.Duration {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = opts.RetryInterval
	eb.Multiplier = opts.ExponentialBase
	eb.MaxInterval = opts.MaxRetryDelay
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	eb.Reset()

	var base time.Duration
	for i := 0; i < attempt; i++ {
		base = eb.NextBackOff()
		if base == backoff.Stop {
			base = opts.MaxRetryDelay
		}
	}

	actual := base + jitterDuration(opts.JitterInterval)
	if domainErr != nil && domainErr.RetryAfter > actual {
		actual = domainErr.RetryAfter
	}
	return actual
}

func jitterDuration(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}

// Flush blocks until all previously-enqueued work (including anything
// currently sitting in an open batch) reaches a terminal outcome. A
// second call to Flush with no writes in between is a no-op beyond
// waiting on an already-empty inFlight count (spec §8 idempotence law).
func (d *Dispatcher) Flush(ctx context.Context) error {
	d.mu.Lock()
	var toSend []*model.Batch
	for key, ob := range d.open {
		if ob.batch.Size() > 0 {
			ob.timer.Stop()
			toSend = append(toSend, ob.batch)
		}
		delete(d.open, key)
	}
	d.mu.Unlock()

	for _, b := range toSend {
		if err := d.enqueue(ctx, b); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		d.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return model.Wrap(model.KindTimeout, "flush did not complete before context was done", ctx.Err())
	}
}

// Close stops accepting new writes, flushes all open batches, waits up
// to MaxCloseWait for the queue to drain, then drops and logs anything
// left. A second Close is a no-op (spec §8 idempotence law).
func (d *Dispatcher) Close() error {
	var flushErr error
	d.closeOnce.Do(func() {
		d.closed.Store(true)

		flushCtx, cancel := context.WithTimeout(context.Background(), d.opts.MaxCloseWait)
		defer cancel()
		flushErr = d.Flush(flushCtx)

		remaining := len(d.queue)
		if remaining > 0 {
			cclog.Warnf("close: dropping %d batches still queued after max_close_wait", remaining)
			atomic.AddInt64(&d.stats.Dropped, int64(remaining))
		}

		d.cancel()
		close(d.queue)
	})
	return flushErr
}

func (d *Dispatcher) sendSuccess(e SuccessEvent) {
	select {
	case d.Callbacks.Success <- e:
	default:
		cclog.Debugf("success callback channel full, dropping event for partition %+v", e.Key)
	}
}

func (d *Dispatcher) sendRetry(e RetryEvent) {
	select {
	case d.Callbacks.Retry <- e:
	default:
		cclog.Debugf("retry callback channel full, dropping event for partition %+v", e.Key)
	}
}

func (d *Dispatcher) sendError(e ErrorEvent) {
	select {
	case d.Callbacks.Error <- e:
	default:
		cclog.Warnf("error callback channel full, dropping terminal error for partition %+v: %s", e.Key, e.Err)
	}
}
