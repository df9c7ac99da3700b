// Package lineprotocol encodes model.Point values into InfluxDB line
// protocol. It runs the encoder half of the same library the teacher uses
// for decoding (github.com/influxdata/line-protocol/v2/lineprotocol) —
// cc-backend's internal/memorystore and pkg/metricstore decode lines off
// NATS with this package's Decoder; this is the inverse operation.
package lineprotocol

import (
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"

	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

func toLPPrecision(p model.Precision) lineprotocol.Precision {
	switch p {
	case model.Microsecond:
		return lineprotocol.Microsecond
	case model.Millisecond:
		return lineprotocol.Millisecond
	case model.Second:
		return lineprotocol.Second
	default:
		return lineprotocol.Nanosecond
	}
}

func toLPValue(f model.FieldValue) (lineprotocol.Value, bool) {
	switch f.Kind {
	case model.FieldInt:
		return lineprotocol.MustNewValue(f.Int), true
	case model.FieldUint:
		return lineprotocol.MustNewValue(f.Uint), true
	case model.FieldFloat:
		return lineprotocol.MustNewValue(f.Float), true
	case model.FieldBool:
		return lineprotocol.MustNewValue(f.Bool), true
	case model.FieldString:
		return lineprotocol.MustNewValue(f.String), true
	default:
		return lineprotocol.Value{}, false
	}
}

// Encode renders a single point as one line-protocol line, in the given
// effective precision. Tags and fields are put in key order here (via
// SortedTags and StableFields); escaping (spec §4.1) is delegated to the
// underlying encoder, which implements the same bit-exact escape table.
func Encode(p *model.Point, precision model.Precision) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var enc lineprotocol.Encoder
	enc.SetPrecision(toLPPrecision(precision))
	enc.StartLine(p.Measurement)

	for _, tag := range p.SortedTags() {
		enc.AddTag(tag.Key, tag.Value)
	}

	fields := p.StableFields()
	for _, f := range fields {
		val, ok := toLPValue(f.Value)
		if !ok {
			continue
		}
		enc.AddField(f.Key, val)
	}

	// The encoder writes no timestamp at all when handed the zero Time
	// (spec §4.1: "Timestamp: ... omitted if absent"); a set timestamp is
	// reconstructed from the point's precision-scaled integer into an
	// absolute instant so the encoder can re-render it in the encoder's
	// own configured precision.
	var when time.Time
	if p.Timestamp != nil {
		when = time.Unix(0, *p.Timestamp*precision.NanosPerUnit())
	}
	enc.EndLine(when)

	if err := enc.Err(); err != nil {
		return nil, model.Wrap(model.KindClientMisuse, "encode point", err)
	}
	return enc.Bytes(), nil
}
