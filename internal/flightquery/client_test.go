package flightquery

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

func TestParseMode_KnownValues(t *testing.T) {
	cases := map[string]Mode{
		"":       ModeAll,
		"all":    ModeAll,
		"pandas": ModePandas,
		"polars": ModePolars,
		"chunk":  ModeChunk,
		"reader": ModeReader,
		"schema": ModeSchema,
	}
	for input, want := range cases {
		got, ok := ParseMode(input)
		assert.True(t, ok, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestParseMode_UnknownFallsBackToAll(t *testing.T) {
	m, ok := ParseMode("dask")
	assert.False(t, ok)
	assert.Equal(t, ModeAll, m)
}

func TestTicket_JSONShape(t *testing.T) {
	ticket := Ticket{
		Database:  "telemetry",
		SQLQuery:  "select * from cpu",
		QueryType: QueryTypeSQL,
		Params:    map[string]any{"host": "srv01"},
	}
	body, err := json.Marshal(ticket)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "telemetry", decoded["database"])
	assert.Equal(t, "select * from cpu", decoded["sql_query"])
	assert.Equal(t, "sql", decoded["query_type"])
	assert.Equal(t, map[string]any{"host": "srv01"}, decoded["params"])
}

func TestTicket_ParamsOmittedWhenNil(t *testing.T) {
	ticket := Ticket{Database: "d", SQLQuery: "select 1", QueryType: QueryTypeInfluxQL}
	body, err := json.Marshal(ticket)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "params")
}

func TestQuery_PandasModeFailsClientMisuse(t *testing.T) {
	c := &Client{cfg: Config{Token: "tok"}}
	_, err := c.Query(context.Background(), Ticket{}, ModePandas, CallOptions{})
	require.Error(t, err)
	domainErr, ok := err.(*model.Error)
	require.True(t, ok)
	assert.Equal(t, model.KindClientMisuse, domainErr.Kind)
}

func TestQuery_PolarsModeFailsClientMisuse(t *testing.T) {
	c := &Client{cfg: Config{Token: "tok"}}
	_, err := c.Query(context.Background(), Ticket{}, ModePolars, CallOptions{})
	require.Error(t, err)
	domainErr, ok := err.(*model.Error)
	require.True(t, ok)
	assert.Equal(t, model.KindClientMisuse, domainErr.Kind)
}

func TestAuthScheme_DefaultsToBearer(t *testing.T) {
	c := &Client{cfg: Config{}}
	assert.Equal(t, "Bearer", c.authScheme())
}

func TestAuthScheme_HonorsOverride(t *testing.T) {
	c := &Client{cfg: Config{AuthScheme: "Token"}}
	assert.Equal(t, "Token", c.authScheme())
}

func TestWrapFlightError_DeadlineExceededBecomesTimeout(t *testing.T) {
	err := wrapFlightError(context.DeadlineExceeded)
	assert.Equal(t, model.KindTimeout, err.Kind)
}

func TestWrapFlightError_OtherBecomesQueryError(t *testing.T) {
	err := wrapFlightError(assert.AnError)
	assert.Equal(t, model.KindQueryError, err.Kind)
}
