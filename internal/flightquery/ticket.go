package flightquery

// Ticket is the UTF-8 JSON document sent as the Arrow Flight ticket body
// (spec §4.6).
type Ticket struct {
	Database  string         `json:"database"`
	SQLQuery  string         `json:"sql_query"`
	QueryType string         `json:"query_type"`
	Params    map[string]any `json:"params,omitempty"`
}

const (
	QueryTypeSQL      = "sql"
	QueryTypeInfluxQL = "influxql"
)
