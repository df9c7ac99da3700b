package influxdb3

import "github.com/InfluxCommunity/influxdb3-go/internal/model"

// Kind discriminates the terminal classification of an Error (spec §3,
// §7). It is a type alias so callers can switch on the same constants
// internal packages use, with no boundary conversion.
type Kind = model.Kind

const (
	KindAuth             = model.KindAuth
	KindBadRequest       = model.KindBadRequest
	KindRateLimit        = model.KindRateLimit
	KindServer           = model.KindServer
	KindRetryableNetwork = model.KindRetryableNetwork
	KindTimeout          = model.KindTimeout
	KindClientMisuse     = model.KindClientMisuse
	KindQueryError       = model.KindQueryError
)

// Error is the single domain error type returned by every public
// operation of this module (spec §3 Error, §7 Error handling design).
type Error = model.Error

// IsRetryable reports whether err, if it is an *Error, is a kind the
// WriteDispatcher's retry state machine would re-queue (spec §4.4, §7).
// A non-Error is treated as non-retryable.
func IsRetryable(err error) bool {
	domainErr, ok := err.(*Error)
	if !ok {
		return false
	}
	return domainErr.Kind.Retryable()
}
