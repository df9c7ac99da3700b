package dispatcher

import "github.com/InfluxCommunity/influxdb3-go/internal/model"

// Events are delivered as three outbound channels rather than function
// pointers (spec §9 design note, reified from the teacher's
// channel-oriented NATS subscription pattern in
// internal/memorystore.ReceiveNats): this decouples user code from the
// dispatcher's worker goroutines and removes the self-deadlock hazard of
// calling back into Write from a callback while the queue is full.
type SuccessEvent struct {
	Key model.PartitionKey
	ID  string
}

type RetryEvent struct {
	Key     model.PartitionKey
	Payload []byte
	Err     error
	Attempt int
}

type ErrorEvent struct {
	Key model.PartitionKey
	Err error
}

// Callbacks holds the three event channels a Dispatcher sends to. Readers
// own draining them; the dispatcher sends without blocking and logs and
// drops the event when a channel's buffer (64 events) is full, rather
// than stalling the worker
// pool (spec §5: "callbacks run on the dispatcher worker; they must not
// perform long blocking work").
type Callbacks struct {
	Success chan SuccessEvent
	Retry   chan RetryEvent
	Error   chan ErrorEvent
}

func NewCallbacks() *Callbacks {
	return &Callbacks{
		Success: make(chan SuccessEvent, 64),
		Retry:   make(chan RetryEvent, 64),
		Error:   make(chan ErrorEvent, 64),
	}
}
