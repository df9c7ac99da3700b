package errtax

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

func TestParse_MultiLineBody(t *testing.T) {
	body := []byte(`{"error":"partial write","data":[{"error_message":"invalid field","line_number":3,"original_line":"m v=bad"}]}`)
	e := Parse(400, "Bad Request", http.Header{}, body)
	assert.Equal(t, model.KindBadRequest, e.Kind)
	assert.Contains(t, e.Message, "partial write")
	assert.Contains(t, e.Message, "Line 3: invalid field")
	assert.Contains(t, e.Message, "Original: m v=bad")
}

func TestParse_GenericMessageKey(t *testing.T) {
	e := Parse(401, "Unauthorized", http.Header{}, []byte(`{"message":"invalid token"}`))
	assert.Equal(t, model.KindAuth, e.Kind)
	assert.Equal(t, "invalid token", e.Message)
}

func TestParse_GenericErrorKey(t *testing.T) {
	e := Parse(500, "Internal Server Error", http.Header{}, []byte(`{"error":"db down"}`))
	assert.Equal(t, model.KindServer, e.Kind)
	assert.Equal(t, "db down", e.Message)
}

func TestParse_BodyVerbatim(t *testing.T) {
	e := Parse(500, "Internal Server Error", http.Header{}, []byte("boom"))
	assert.Equal(t, "boom", e.Message)
}

func TestParse_HeaderFallback(t *testing.T) {
	h := http.Header{}
	h.Set("X-Influx-Error", "bad bucket")
	e := Parse(400, "Bad Request", h, []byte(""))
	assert.Equal(t, "bad bucket", e.Message)
}

func TestParse_ReasonPhraseFallback(t *testing.T) {
	e := Parse(429, "Too Many Requests", http.Header{}, []byte(""))
	assert.Equal(t, model.KindRateLimit, e.Kind)
	assert.Equal(t, "Too Many Requests", e.Message)
}

func TestParse_RetryAfterSeconds(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "5")
	e := Parse(429, "Too Many Requests", h, []byte(""))
	assert.Equal(t, int64(5), int64(e.RetryAfter.Seconds()))
}
