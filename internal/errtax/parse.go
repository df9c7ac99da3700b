// Package errtax parses server error responses into a single
// model.Error, trying several known body shapes in order (spec §4.7).
package errtax

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

// lineError is one entry of the multi-line-protocol-error body shape
// emitted by the v3 write endpoint on a partially-rejected batch.
type lineError struct {
	ErrorMessage string  `json:"error_message"`
	LineNumber   *int    `json:"line_number,omitempty"`
	OriginalLine *string `json:"original_line,omitempty"`
}

type multiLineBody struct {
	Error string      `json:"error"`
	Data  []lineError `json:"data"`
}

type genericBody struct {
	Message *string `json:"message"`
	Error   *string `json:"error"`
}

// headerCandidates are tried in order when the body yields nothing usable
// (spec §4.7 step 4).
var headerCandidates = []string{"X-Platform-Error-Code", "X-Influx-Error", "X-InfluxDb-Error"}

// Classify maps a non-2xx HTTP status code to a model.Kind (spec §4.5's
// error classification table, reused here so HttpSubmitter and
// ErrorTaxonomy agree on one mapping). Callers must check for a 2xx
// success status themselves before calling Classify or Parse.
func Classify(status int) model.Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return model.KindAuth
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		return model.KindBadRequest
	case status == http.StatusTooManyRequests:
		return model.KindRateLimit
	case status >= 500:
		return model.KindServer
	default:
		return model.KindBadRequest
	}
}

// Parse builds a model.Error from a non-2xx HTTP response, following the
// ordered fallback chain in spec §4.7 and always capturing Retry-After.
func Parse(status int, reasonPhrase string, headers http.Header, body []byte) *model.Error {
	kind := Classify(status)
	message := extractMessage(body, headers, reasonPhrase)

	err := model.NewError(kind, message)
	retryAfter := parseRetryAfter(headers.Get("Retry-After"))
	err.WithHTTP(status, map[string][]string(headers), retryAfter)
	return err
}

func extractMessage(body []byte, headers http.Header, reasonPhrase string) string {
	if msg, ok := tryMultiLineBody(body); ok {
		return msg
	}
	if msg, ok := tryGenericJSONBody(body); ok {
		return msg
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		return strings.TrimSpace(string(body))
	}
	for _, h := range headerCandidates {
		if v := headers.Get(h); v != "" {
			return v
		}
	}
	return reasonPhrase
}

func tryMultiLineBody(body []byte) (string, bool) {
	var mb multiLineBody
	if err := json.Unmarshal(body, &mb); err != nil {
		return "", false
	}
	if mb.Error == "" || len(mb.Data) == 0 {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString(mb.Error)
	for _, entry := range mb.Data {
		lineNo := 0
		if entry.LineNumber != nil {
			lineNo = *entry.LineNumber
		}
		sb.WriteString(fmt.Sprintf("\nLine %d: %s", lineNo, entry.ErrorMessage))
		if entry.OriginalLine != nil {
			sb.WriteString(fmt.Sprintf("\n  Original: %s", *entry.OriginalLine))
		}
	}
	return sb.String(), true
}

func tryGenericJSONBody(body []byte) (string, bool) {
	var gb genericBody
	if err := json.Unmarshal(body, &gb); err != nil {
		return "", false
	}
	if gb.Message != nil {
		return *gb.Message, true
	}
	if gb.Error != nil {
		return *gb.Error, true
	}
	return "", false
}

// parseRetryAfter accepts both the seconds-delta and HTTP-date forms
// defined by RFC 7231, matching what a real reverse proxy in front of an
// InfluxDB server may emit.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d > 0 {
			return d
		}
	}
	return 0
}
