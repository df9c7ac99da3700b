// Package influxdb3 is the core of a client library for a time-series
// database that speaks line-protocol HTTP writes and Arrow Flight (gRPC)
// queries. It exposes a single Client type: New constructs one from
// ClientOptions and WriteOptions (built by hand or by FromEnv),
// Write/WriteBatching/Flush/Close drive the ingest
// pipeline, and Query/QueryAsync drive the Flight query client.
//
// The heavy lifting lives in internal packages — internal/lineprotocol,
// internal/frame, internal/normalize, internal/dispatcher,
// internal/httpwrite, internal/flightquery, and internal/errtax — each
// implementing one component of the write or query pipeline. This
// package wires them together behind a small public surface.
package influxdb3
