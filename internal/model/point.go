package model

import (
	"math"
	"sort"
	"strings"
)

// FieldValue holds one typed field value. Only one of the typed fields is
// meaningful, selected by Kind — modeled as a small tagged struct instead
// of `any` so the codec (internal/lineprotocol) can switch without a type
// assertion per field per line, which matters on the hot ingest path.
type FieldValue struct {
	Kind   FieldKind
	Int    int64
	Uint   uint64
	Float  float64
	Bool   bool
	String string
}

type FieldKind int

const (
	FieldInt FieldKind = iota
	FieldUint
	FieldFloat
	FieldBool
	FieldString
)

func IntField(v int64) FieldValue    { return FieldValue{Kind: FieldInt, Int: v} }
func UintField(v uint64) FieldValue  { return FieldValue{Kind: FieldUint, Uint: v} }
func FloatField(v float64) FieldValue { return FieldValue{Kind: FieldFloat, Float: v} }
func BoolField(v bool) FieldValue    { return FieldValue{Kind: FieldBool, Bool: v} }
func StringField(v string) FieldValue { return FieldValue{Kind: FieldString, String: v} }

// finite reports whether a float field value may be encoded; NaN and ±Inf
// fields are dropped per spec §3's invariant, not encoded as-is.
func (f FieldValue) finite() bool {
	if f.Kind != FieldFloat {
		return true
	}
	return !math.IsNaN(f.Float) && !math.IsInf(f.Float, 0)
}

// Point is the structured record shape described in spec §3. Tags and
// Fields preserve insertion order; ordering is resolved at serialization
// time (internal/lineprotocol sorts tag keys, stabilizes field keys).
type Point struct {
	Measurement string
	Tags        []KV
	Fields      []FieldKV
	Timestamp   *int64
	Precision   Precision
	HasPrecision bool
}

type KV struct {
	Key   string
	Value string
}

type FieldKV struct {
	Key   string
	Value FieldValue
}

// NewPoint constructs an empty point for the given measurement. Use
// AddTag/AddField to build it up; the zero-field state is only valid
// until Validate is called (codec and frame serializer call it at
// encode time).
func NewPoint(measurement string) *Point {
	return &Point{Measurement: measurement}
}

func (p *Point) AddTag(key, value string) *Point {
	p.Tags = append(p.Tags, KV{Key: key, Value: value})
	return p
}

func (p *Point) AddField(key string, value FieldValue) *Point {
	p.Fields = append(p.Fields, FieldKV{Key: key, Value: value})
	return p
}

func (p *Point) SetTimestamp(ts int64, precision Precision) *Point {
	p.Timestamp = &ts
	p.Precision = precision
	p.HasPrecision = true
	return p
}

// SortedTags returns a copy of Tags sorted lexicographically by key, with
// null/empty/whitespace-only values dropped, per spec §3 and §4.1/§4.2.
func (p *Point) SortedTags() []KV {
	out := make([]KV, 0, len(p.Tags))
	for _, kv := range p.Tags {
		if strings.TrimSpace(kv.Value) == "" {
			continue
		}
		out = append(out, kv)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// StableFields returns Fields with NaN/±Inf floats dropped and the
// remainder sorted by key (spec §4.1: "may choose to stabilize by key" —
// SPEC_FULL.md §4 resolves this ambiguity by always stabilizing).
func (p *Point) StableFields() []FieldKV {
	out := make([]FieldKV, 0, len(p.Fields))
	for _, kv := range p.Fields {
		if !kv.Value.finite() {
			continue
		}
		out = append(out, kv)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Validate enforces the non-empty-measurement and non-empty-field-set
// invariants (spec §3, §4.1 "Errors").
func (p *Point) Validate() error {
	if strings.TrimSpace(p.Measurement) == "" {
		return Misuse("point measurement must not be empty")
	}
	if len(p.StableFields()) == 0 {
		return Misuse("point %q has no fields after dropping NaN/Inf values", p.Measurement)
	}
	return nil
}
