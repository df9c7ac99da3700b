package model

import "time"

// PartitionKey is the exact partitioning key a batch never mixes across
// (spec §3 invariant, §4.4 "Batch keying").
type PartitionKey struct {
	Database  string
	Org       string
	Precision Precision
}

// Batch is a contiguous byte buffer of newline-joined lines destined for
// one partition, plus the bookkeeping the dispatcher's retry state
// machine needs (spec §3 Batch, §4.4).
type Batch struct {
	Key      PartitionKey
	Payload  []byte
	Deadline time.Time
	Attempt  int
	FirstTry time.Time
	ID       string
}

// Size returns the buffered byte count.
func (b *Batch) Size() int { return len(b.Payload) }

// Append adds a line to the batch, inserting the `\n` separator the
// invariant in spec §3 requires ("the payload does not end with \n").
func (b *Batch) Append(line []byte) {
	if len(b.Payload) > 0 {
		b.Payload = append(b.Payload, '\n')
	}
	b.Payload = append(b.Payload, line...)
}
