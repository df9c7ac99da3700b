package influxdb3

import "github.com/InfluxCommunity/influxdb3-go/internal/model"

// Record is the tagged union write accepts (spec §3): a raw string, raw
// bytes, a Point, a Dict (map with recognized keys "measurement", "tags",
// "fields", "time"), a Frame, or a slice of any of those, flattened
// recursively. Go has no native sum type, so construct one of these with
// the typed helpers below rather than populating the struct directly.
type Record = model.Record

// Frame is the minimal capability trait a tabular input must satisfy to
// be written directly, without being converted into individual Points
// first (spec §9: "frames are a polymorphic trait whose minimal
// capability set is {columns(), iter_rows(), column_type(name)}").
type Frame = model.Frame

// RecordKind discriminates which variant of the Record union is
// populated (spec §3 Record).
type RecordKind = model.RecordKind

const (
	RecordRaw   = model.RecordRaw
	RecordPoint = model.RecordPoint
	RecordDict  = model.RecordDict
	RecordFrame = model.RecordFrame
	RecordSlice = model.RecordSlice
)

// ColumnType is the semantic type of a Frame column (spec §3 Frame).
type ColumnType = model.ColumnType

const (
	ColumnInt       = model.ColumnInt
	ColumnUint      = model.ColumnUint
	ColumnFloat     = model.ColumnFloat
	ColumnBool      = model.ColumnBool
	ColumnString    = model.ColumnString
	ColumnTimestamp = model.ColumnTimestamp
)

func RawRecord(b []byte) Record          { return model.RawRecord(b) }
func StringRecord(s string) Record       { return model.StringRecord(s) }
func PointRecord(p *Point) Record        { return model.PointRecord(p) }
func DictRecord(d map[string]any) Record { return model.DictRecord(d) }
func FrameRecord(f Frame) Record         { return model.FrameRecord(f) }
func SliceRecord(rs []Record) Record     { return model.SliceRecord(rs) }
