package influxdb3

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncQueryResult_ResultReturnsOnceDone(t *testing.T) {
	a := &AsyncQueryResult{done: make(chan struct{})}
	a.res = &QueryResult{Mode: ModeAll}
	close(a.done)

	res, err := a.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeAll, res.Mode)
}

func TestAsyncQueryResult_ResultHonorsContextTimeout(t *testing.T) {
	a := &AsyncQueryResult{done: make(chan struct{})} // never closed
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := a.Result(ctx)
	require.Error(t, err)
}

func TestFlightConfigFromHost_RejectsUnknownScheme(t *testing.T) {
	_, err := flightConfigFromHost(ClientOptions{Host: "ftp://h:21", Token: "t"})
	require.Error(t, err)
}

func TestResolveCallTimeout_PerCallOverrideWins(t *testing.T) {
	got := resolveCallTimeout(CallOptions{Timeout: 5 * time.Second}, 30*time.Second)
	assert.Equal(t, 5*time.Second, got)
}

func TestResolveCallTimeout_FallsBackToClientDefault(t *testing.T) {
	got := resolveCallTimeout(CallOptions{}, 30*time.Second)
	assert.Equal(t, 30*time.Second, got)
}

func TestResolveCallTimeout_NoDefaultMeansNoDeadline(t *testing.T) {
	got := resolveCallTimeout(CallOptions{}, 0)
	assert.Equal(t, time.Duration(0), got)
}
