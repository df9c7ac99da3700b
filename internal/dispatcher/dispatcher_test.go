package dispatcher

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	calls    int
	payloads [][]byte
	fail     func(attempt int) error // nil means always succeed
}

func (f *fakeSubmitter) Submit(_ context.Context, _ model.PartitionKey, payload []byte) error {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.payloads = append(f.payloads, append([]byte(nil), payload...))
	f.mu.Unlock()
	if f.fail != nil {
		return f.fail(n)
	}
	return nil
}

func testOptions() Options {
	o := DefaultOptions()
	o.FlushInterval = 50 * time.Millisecond
	o.QueueDepth = 8
	o.WriteType = Batching
	return o
}

func TestWrite_EmptyPayloadNoSubmission(t *testing.T) {
	fs := &fakeSubmitter{}
	d := New(testOptions(), fs)
	defer d.Close()

	err := d.Write(context.Background(), model.PartitionKey{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, fs.calls)
}

func TestWrite_SynchronousBlocksUntilSubmitted(t *testing.T) {
	fs := &fakeSubmitter{}
	opts := testOptions()
	opts.WriteType = Synchronous
	d := New(opts, fs)
	defer d.Close()

	err := d.Write(context.Background(), model.PartitionKey{Database: "d"}, []byte("m v=1"))
	require.NoError(t, err)
	assert.Equal(t, 1, fs.calls)
}

func TestWrite_BatchSizeTriggerFlushesImmediately(t *testing.T) {
	fs := &fakeSubmitter{}
	opts := testOptions()
	opts.BatchSize = 5
	opts.FlushInterval = time.Hour
	d := New(opts, fs)
	defer d.Close()

	err := d.Write(context.Background(), model.PartitionKey{}, []byte("abcdef"))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return fs.calls == 1 }, time.Second, time.Millisecond)
}

func TestWrite_FlushIntervalTriggersFlush(t *testing.T) {
	fs := &fakeSubmitter{}
	opts := testOptions()
	opts.BatchSize = 100000
	opts.FlushInterval = 20 * time.Millisecond
	d := New(opts, fs)
	defer d.Close()

	require.NoError(t, d.Write(context.Background(), model.PartitionKey{}, []byte("x")))
	require.Eventually(t, func() bool { return fs.calls == 1 }, time.Second, time.Millisecond)
}

func TestFlush_IsIdempotent(t *testing.T) {
	fs := &fakeSubmitter{}
	d := New(testOptions(), fs)
	defer d.Close()

	require.NoError(t, d.Write(context.Background(), model.PartitionKey{}, []byte("x")))
	require.NoError(t, d.Flush(context.Background()))
	calls := fs.calls
	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, calls, fs.calls)
}

func TestClose_IsIdempotent(t *testing.T) {
	fs := &fakeSubmitter{}
	d := New(testOptions(), fs)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
}

func TestClose_MaxCloseWaitZeroReturnsImmediately(t *testing.T) {
	fs := &fakeSubmitter{fail: func(int) error { time.Sleep(time.Hour); return nil }}
	opts := testOptions()
	opts.MaxCloseWait = 0
	d := New(opts, fs)

	require.NoError(t, d.Write(context.Background(), model.PartitionKey{}, []byte("x")))

	start := time.Now()
	_ = d.Close()
	assert.Less(t, time.Since(start), time.Second)
}

func TestWriteBatching_ForcesBatchingPathEvenWhenSynchronousConfigured(t *testing.T) {
	fs := &fakeSubmitter{}
	opts := testOptions()
	opts.WriteType = Synchronous
	opts.BatchSize = 100000
	opts.FlushInterval = time.Hour
	d := New(opts, fs)
	defer d.Close()

	require.NoError(t, d.WriteBatching(context.Background(), model.PartitionKey{}, []byte("x")))
	assert.Equal(t, 0, fs.calls) // still sitting in the open batch, not yet flushed

	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, 1, fs.calls)
}

func TestRetry_StopsAfterMaxRetriesAndFiresCallbacksCorrectly(t *testing.T) {
	var attempts int32
	fs := &fakeSubmitter{fail: func(n int) error {
		atomic.StoreInt32(&attempts, int32(n))
		return model.NewError(model.KindServer, "boom")
	}}
	opts := testOptions()
	opts.WriteType = Synchronous
	opts.RetryInterval = time.Millisecond
	opts.JitterInterval = 0
	opts.MaxRetries = 3
	opts.MaxRetryDelay = 5 * time.Millisecond
	d := New(opts, fs)
	defer d.Close()

	var retryCount, errorCount int32
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-d.Callbacks.Retry:
				atomic.AddInt32(&retryCount, 1)
			case <-d.Callbacks.Error:
				atomic.AddInt32(&errorCount, 1)
				close(done)
				return
			}
		}
	}()

	err := d.Write(context.Background(), model.PartitionKey{}, []byte("m v=1"))
	require.Error(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for terminal error callback")
	}

	assert.Equal(t, int32(4), atomic.LoadInt32(&attempts)) // 1 initial + 3 retries
	assert.Equal(t, int32(3), atomic.LoadInt32(&retryCount))
	assert.Equal(t, int32(1), atomic.LoadInt32(&errorCount))
}

func TestRetry_NonRetryableStopsAfterOneAttempt(t *testing.T) {
	fs := &fakeSubmitter{fail: func(int) error { return model.NewError(model.KindAuth, "bad token") }}
	opts := testOptions()
	opts.WriteType = Synchronous
	d := New(opts, fs)
	defer d.Close()

	err := d.Write(context.Background(), model.PartitionKey{}, []byte("m v=1"))
	require.Error(t, err)
	assert.Equal(t, 1, fs.calls)
}

func TestRetry_MaxRetriesZeroMeansOneAttempt(t *testing.T) {
	fs := &fakeSubmitter{fail: func(int) error { return model.NewError(model.KindServer, "boom") }}
	opts := testOptions()
	opts.WriteType = Synchronous
	opts.MaxRetries = 0
	d := New(opts, fs)
	defer d.Close()

	err := d.Write(context.Background(), model.PartitionKey{}, []byte("m v=1"))
	require.Error(t, err)
	assert.Equal(t, 1, fs.calls)
}

func TestRetryDelay_MatchesExponentialFormula(t *testing.T) {
	opts := testOptions()
	opts.RetryInterval = 100 * time.Millisecond
	opts.ExponentialBase = 2
	opts.MaxRetryDelay = 30 * time.Second
	opts.JitterInterval = 0

	assert.Equal(t, 100*time.Millisecond, retryDelay(opts, 1, nil))
	assert.Equal(t, 200*time.Millisecond, retryDelay(opts, 2, nil))
	assert.Equal(t, 400*time.Millisecond, retryDelay(opts, 3, nil))
}

func TestRetryDelay_HonorsRetryAfterOverride(t *testing.T) {
	opts := testOptions()
	opts.RetryInterval = 10 * time.Millisecond
	opts.ExponentialBase = 2
	opts.MaxRetryDelay = time.Second
	opts.JitterInterval = 0

	domainErr := model.NewError(model.KindRateLimit, "slow down")
	domainErr.RetryAfter = 5 * time.Second

	assert.Equal(t, 5*time.Second, retryDelay(opts, 1, domainErr))
}
