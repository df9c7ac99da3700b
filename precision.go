package influxdb3

import "github.com/InfluxCommunity/influxdb3-go/internal/model"

// Precision is the unit of a point's timestamp (spec §9 design note:
// "represent precision as an enum with methods as_short_name,
// as_long_name, and nanos_per_unit"). It is a type alias over
// internal/model.Precision so the same enum is shared end-to-end without
// a conversion layer at the public boundary.
type Precision = model.Precision

const (
	Nanosecond  = model.Nanosecond
	Microsecond = model.Microsecond
	Millisecond = model.Millisecond
	Second      = model.Second
)

// ParsePrecision accepts both short (ns, us, ms, s) and long (nanosecond,
// microsecond, millisecond, second) names.
func ParsePrecision(s string) (Precision, error) {
	return model.ParsePrecision(s)
}
