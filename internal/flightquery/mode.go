package flightquery

// Mode selects the return shape of a query (spec §4.6).
type Mode int

const (
	ModeAll Mode = iota
	ModePandas
	ModePolars
	ModeChunk
	ModeReader
	ModeSchema
)

// ParseMode maps a user-supplied mode string onto a Mode. An unrecognized
// value falls back to ModeAll rather than failing (spec §4.6: "Unknown
// mode falls back to all" — SPEC_FULL.md §4 decision 3 treats this as a
// silent, non-fatal fallback since the spec defines no error path here).
func ParseMode(s string) (m Mode, recognized bool) {
	switch s {
	case "", "all":
		return ModeAll, true
	case "pandas":
		return ModePandas, true
	case "polars":
		return ModePolars, true
	case "chunk":
		return ModeChunk, true
	case "reader":
		return ModeReader, true
	case "schema":
		return ModeSchema, true
	default:
		return ModeAll, false
	}
}
