package influxdb3

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InfluxCommunity/influxdb3-go/internal/httpwrite"
)

type fakeExecutor struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeExecutor) Do(_ context.Context, method, path string, query url.Values, _ http.Header, _ []byte) (*httpwrite.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, method+" "+path+"?"+query.Encode())
	f.mu.Unlock()
	return &httpwrite.Response{Status: 204, Reason: "No Content"}, nil
}

func (f *fakeExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testClient(t *testing.T, exec httpwrite.Executor) *Client {
	t.Helper()
	opts := DefaultWriteOptions()
	opts.FlushInterval = 20 * time.Millisecond
	opts.WriteType = Batching
	c, err := New(ClientOptions{
		Host:     "http://localhost:8086",
		Token:    "tok",
		Database: "mydb",
		Executor: exec,
	}, opts)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsMissingHost(t *testing.T) {
	_, err := New(ClientOptions{Token: "t", Database: "d"}, DefaultWriteOptions())
	assert.Error(t, err)
}

func TestNew_RejectsMissingToken(t *testing.T) {
	_, err := New(ClientOptions{Host: "http://h", Database: "d"}, DefaultWriteOptions())
	assert.Error(t, err)
}

func TestNew_DefaultsOrgToDefault(t *testing.T) {
	c, err := New(ClientOptions{Host: "http://h", Token: "t", Database: "d"}, DefaultWriteOptions())
	require.NoError(t, err)
	assert.Equal(t, "default", c.opts.Org)
}

func TestWrite_EmptyBatchPerformsNoHTTPCall(t *testing.T) {
	exec := &fakeExecutor{}
	c := testClient(t, exec)
	defer c.Close()

	require.NoError(t, c.Write(context.Background(), RawRecord(nil)))
	assert.Equal(t, 0, exec.callCount())
}

func TestWrite_SynchronousSubmitsImmediately(t *testing.T) {
	exec := &fakeExecutor{}
	opts := DefaultWriteOptions()
	opts.WriteType = Synchronous
	c, err := New(ClientOptions{Host: "http://localhost:8086", Token: "tok", Database: "mydb", Executor: exec}, opts)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Write(context.Background(), StringRecord("cpu,host=a value=1")))
	assert.Equal(t, 1, exec.callCount())
}

func TestWrite_PointRecordFlushesOnClose(t *testing.T) {
	exec := &fakeExecutor{}
	c := testClient(t, exec)

	p := NewPoint("cpu").AddTag("host", "a").AddField("value", FloatField(1.5))
	require.NoError(t, c.Write(context.Background(), PointRecord(p)))
	require.NoError(t, c.Close())

	assert.Equal(t, 1, exec.callCount())
}

func TestWriteBatching_ForcesBatchingEvenOnSynchronousClient(t *testing.T) {
	exec := &fakeExecutor{}
	opts := DefaultWriteOptions()
	opts.WriteType = Synchronous
	opts.BatchSize = 100000
	opts.FlushInterval = time.Hour
	c, err := New(ClientOptions{Host: "http://localhost:8086", Token: "tok", Database: "mydb", Executor: exec}, opts)
	require.NoError(t, err)

	require.NoError(t, c.WriteBatching(context.Background(), StringRecord("cpu,host=a value=1")))
	assert.Equal(t, 0, exec.callCount())

	require.NoError(t, c.Close())
	assert.Equal(t, 1, exec.callCount())
}

func TestClose_IsIdempotent(t *testing.T) {
	exec := &fakeExecutor{}
	c := testClient(t, exec)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestFlightConfigFromHost_HTTPSIsTLS(t *testing.T) {
	cfg, err := flightConfigFromHost(ClientOptions{Host: "https://h:443", Token: "t"})
	require.NoError(t, err)
	assert.True(t, cfg.TLS)
	assert.Equal(t, "h:443", cfg.Address)
}

func TestFlightConfigFromHost_HTTPIsCleartext(t *testing.T) {
	cfg, err := flightConfigFromHost(ClientOptions{Host: "http://h:8086", Token: "t"})
	require.NoError(t, err)
	assert.False(t, cfg.TLS)
}
