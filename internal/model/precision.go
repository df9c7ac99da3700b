package model

import "fmt"

// Precision is the unit of a point's or batch's timestamps. It is kept as a
// closed enum with conversion helpers rather than scattering short/long
// name tables and nanos-per-unit constants across the codebase (write
// endpoints use the short names, the v3 endpoint uses the long ones, and
// the frame serializer needs the scale factor — see
// internal/httpwrite and internal/frame).
type Precision int

const (
	Nanosecond Precision = iota
	Microsecond
	Millisecond
	Second
)

// ParsePrecision accepts both short (ns, us, ms, s) and long (nanosecond,
// microsecond, millisecond, second) names, matching INFLUX_PRECISION's
// documented accepted values.
func ParsePrecision(s string) (Precision, error) {
	switch s {
	case "ns", "nanosecond":
		return Nanosecond, nil
	case "us", "microsecond":
		return Microsecond, nil
	case "ms", "millisecond":
		return Millisecond, nil
	case "s", "second":
		return Second, nil
	default:
		return Nanosecond, NewError(KindClientMisuse, fmt.Sprintf("unrecognized precision %q", s))
	}
}

// ShortName returns the v2 write-endpoint precision query parameter value.
func (p Precision) ShortName() string {
	switch p {
	case Microsecond:
		return "us"
	case Millisecond:
		return "ms"
	case Second:
		return "s"
	default:
		return "ns"
	}
}

// LongName returns the v3 write-endpoint precision query parameter value.
func (p Precision) LongName() string {
	switch p {
	case Microsecond:
		return "microsecond"
	case Millisecond:
		return "millisecond"
	case Second:
		return "second"
	default:
		return "nanosecond"
	}
}

// NanosPerUnit returns how many nanoseconds one tick of this precision
// represents, used to scale a parsed instant down to the target precision.
func (p Precision) NanosPerUnit() int64 {
	switch p {
	case Microsecond:
		return 1e3
	case Millisecond:
		return 1e6
	case Second:
		return 1e9
	default:
		return 1
	}
}

func (p Precision) String() string {
	return p.LongName()
}
