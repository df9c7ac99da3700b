package influxdb3

import "github.com/InfluxCommunity/influxdb3-go/internal/model"

// Point is the structured record shape of spec §3: a measurement, an
// ordered tag set, a non-empty field set, and an optional timestamp.
// NewPoint returns a builder; chain AddTag/AddField/SetTimestamp and pass
// the result to Client.Write.
type Point = model.Point

// NewPoint constructs an empty point for the given measurement. Use
// AddTag/AddField to build it up, then SetTimestamp if the caller (not
// the server) assigns the timestamp.
func NewPoint(measurement string) *Point {
	return model.NewPoint(measurement)
}

func IntField(v int64) model.FieldValue     { return model.IntField(v) }
func UintField(v uint64) model.FieldValue   { return model.UintField(v) }
func FloatField(v float64) model.FieldValue { return model.FloatField(v) }
func BoolField(v bool) model.FieldValue     { return model.BoolField(v) }
func StringField(v string) model.FieldValue { return model.StringField(v) }
