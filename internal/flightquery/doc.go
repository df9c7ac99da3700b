// Package flightquery provides FlightQueryClient, the Arrow Flight/gRPC
// query side of the client (spec §4.6). It is consumed by the root
// package's Query/QueryAsync and is not imported by application code
// directly.
package flightquery
