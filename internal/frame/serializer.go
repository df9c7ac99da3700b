// Package frame projects a model.Frame (columns + index) into a stream of
// line-protocol lines, per spec §4.2. It knows nothing about how a frame
// was produced — CSV, Parquet, pandas-via-cgo, or a hand-rolled struct —
// only the model.Frame capability trait (columns/rows/value/nullable),
// matching spec §9's "minimal capability set" design note.
package frame

import (
	"strings"
	"time"

	"github.com/InfluxCommunity/influxdb3-go/internal/lineprotocol"
	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

// Options configures one FrameSerializer instance.
type Options struct {
	// Measurement, if set, is used for every row. If empty, the
	// serializer looks for a "measurement" column instead (spec §4.2).
	Measurement string
	// TagColumns names the columns treated as tags; everything else
	// (minus the measurement and timestamp columns) is a field.
	TagColumns []string
	// TimestampColumn names the column supplying each row's timestamp.
	// If empty, the serializer looks for a column of type
	// model.ColumnTimestamp (SPEC_FULL.md §4 decision: no silent
	// epoch-0 fallback).
	TimestampColumn string
	Precision       model.Precision
}

// Serializer projects frames sharing the same shape (tag columns,
// timestamp column, measurement) into line-protocol lines.
//
// Column classification is hoisted out of the row loop: New builds the
// tag-column set once, and each Lines call sorts the remaining columns
// into measurement, timestamp and field columns once before iterating
// rows. The byte-level escaping of each name happens inside
// lineprotocol.Encode, which every row already calls; there is no
// separate escape pass.
type Serializer struct {
	opts   Options
	tagSet map[string]bool
}

func New(opts Options) *Serializer {
	tagSet := make(map[string]bool, len(opts.TagColumns))
	for _, c := range opts.TagColumns {
		tagSet[c] = true
	}
	return &Serializer{opts: opts, tagSet: tagSet}
}

// resolveMeasurementColumn finds the "measurement" column when no
// explicit measurement was configured.
func resolveMeasurementColumn(f model.Frame) (string, bool) {
	for _, c := range f.Columns() {
		if c == "measurement" {
			return c, true
		}
	}
	return "", false
}

// resolveTimestampColumn finds a model.ColumnTimestamp-typed column when
// none was configured explicitly.
func resolveTimestampColumn(f model.Frame) (string, bool) {
	for _, c := range f.Columns() {
		if f.ColumnType(c) == model.ColumnTimestamp {
			return c, true
		}
	}
	return "", false
}

// Lines serializes every row of f that has at least one non-null field
// into a line-protocol line, in row order, skipping rows with no fields
// at all (spec §4.2).
func (s *Serializer) Lines(f model.Frame) ([][]byte, error) {
	measurementCol := ""
	measurement := s.opts.Measurement
	if measurement == "" {
		col, ok := resolveMeasurementColumn(f)
		if !ok {
			return nil, model.Misuse("frame has no declared measurement and no \"measurement\" column")
		}
		measurementCol = col
	}

	timestampCol := s.opts.TimestampColumn
	if timestampCol == "" {
		col, ok := resolveTimestampColumn(f)
		if !ok {
			return nil, model.Misuse("frame has no declared timestamp column and no time-typed column to fall back to")
		}
		timestampCol = col
	}

	fieldCols := make([]string, 0, len(f.Columns()))
	anyFieldNullable := false
	for _, c := range f.Columns() {
		if c == measurementCol || c == timestampCol || s.tagSet[c] {
			continue
		}
		fieldCols = append(fieldCols, c)
		if f.Nullable(c) {
			anyFieldNullable = true
		}
	}

	anyTagNullable := false
	for _, c := range s.opts.TagColumns {
		if f.Nullable(c) {
			anyTagNullable = true
		}
	}

	lines := make([][]byte, 0, f.Rows())
	for row := 0; row < f.Rows(); row++ {
		rowMeasurement := measurement
		if measurementCol != "" {
			v, isNull := f.Value(row, measurementCol)
			if isNull {
				return nil, model.Misuse("row %d has a null measurement", row)
			}
			rowMeasurement, _ = v.(string)
		}

		ts, err := s.rowTimestamp(f, row, timestampCol)
		if err != nil {
			return nil, err
		}

		p := model.NewPoint(rowMeasurement)
		if anyTagNullable {
			s.appendTagsChecked(f, row, p)
		} else {
			s.appendTagsFast(f, row, p)
		}

		if anyFieldNullable {
			s.appendFieldsChecked(f, row, fieldCols, p)
		} else {
			s.appendFieldsFast(f, row, fieldCols, p)
		}

		if len(p.Fields) == 0 {
			continue
		}
		p.SetTimestamp(ts, s.opts.Precision)

		line, err := lineprotocol.Encode(p, s.opts.Precision)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Chunks groups Lines(f) into newline-joined payloads of at most
// chunkSize rows each; chunkSize <= 0 means a single chunk. The number of
// chunks is ⌈rows/chunkSize⌉ per spec §4.2.
func (s *Serializer) Chunks(f model.Frame, chunkSize int) ([][]byte, error) {
	lines, err := s.Lines(f)
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		return [][]byte{joinLines(lines)}, nil
	}
	var chunks [][]byte
	for i := 0; i < len(lines); i += chunkSize {
		end := i + chunkSize
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, joinLines(lines[i:end]))
	}
	if len(chunks) == 0 {
		chunks = [][]byte{{}}
	}
	return chunks, nil
}

func joinLines(lines [][]byte) []byte {
	return []byte(strings.Join(byteSlicesToStrings(lines), "\n"))
}

func byteSlicesToStrings(lines [][]byte) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = string(l)
	}
	return out
}

func (s *Serializer) appendTagsFast(f model.Frame, row int, p *model.Point) {
	for _, c := range s.opts.TagColumns {
		v, _ := f.Value(row, c)
		p.AddTag(c, toTagString(v))
	}
}

func (s *Serializer) appendTagsChecked(f model.Frame, row int, p *model.Point) {
	for _, c := range s.opts.TagColumns {
		v, isNull := f.Value(row, c)
		if isNull {
			continue
		}
		p.AddTag(c, toTagString(v))
	}
}

func (s *Serializer) appendFieldsFast(f model.Frame, row int, cols []string, p *model.Point) {
	for _, c := range cols {
		v, _ := f.Value(row, c)
		if fv, ok := toFieldValue(f.ColumnType(c), v); ok {
			p.AddField(c, fv)
		}
	}
}

func (s *Serializer) appendFieldsChecked(f model.Frame, row int, cols []string, p *model.Point) {
	for _, c := range cols {
		v, isNull := f.Value(row, c)
		if isNull {
			continue
		}
		if fv, ok := toFieldValue(f.ColumnType(c), v); ok {
			p.AddField(c, fv)
		}
	}
}

func toTagString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		return ""
	}
}

func toFieldValue(ct model.ColumnType, v any) (model.FieldValue, bool) {
	switch ct {
	case model.ColumnInt:
		if i, ok := v.(int64); ok {
			return model.IntField(i), true
		}
	case model.ColumnUint:
		if u, ok := v.(uint64); ok {
			return model.UintField(u), true
		}
	case model.ColumnFloat:
		if fl, ok := v.(float64); ok {
			return model.FloatField(fl), true
		}
	case model.ColumnBool:
		if b, ok := v.(bool); ok {
			return model.BoolField(b), true
		}
	case model.ColumnString:
		if s, ok := v.(string); ok {
			return model.StringField(s), true
		}
	}
	return model.FieldValue{}, false
}

// rowTimestamp resolves a row's timestamp into the serializer's target
// precision. int64 values are assumed already in the target precision
// (spec §4.2); time.Time values are scaled by truncating integer division
// toward negative infinity. Any other value type is CLIENT_MISUSE.
func (s *Serializer) rowTimestamp(f model.Frame, row int, col string) (int64, error) {
	v, isNull := f.Value(row, col)
	if isNull {
		return 0, model.Misuse("row %d has a null timestamp", row)
	}
	switch t := v.(type) {
	case int64:
		return t, nil
	case time.Time:
		return floorDiv(t.UnixNano(), s.opts.Precision.NanosPerUnit()), nil
	default:
		return 0, model.Misuse("row %d: unsupported timestamp value type %T", row, v)
	}
}

// floorDiv performs integer division truncating toward negative infinity,
// unlike Go's native `/` which truncates toward zero.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
