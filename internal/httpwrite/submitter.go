// Package httpwrite implements HttpSubmitter (spec §4.5): endpoint
// selection, gzip gating, header composition, and error classification
// for one batch submission.
package httpwrite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/InfluxCommunity/influxdb3-go/internal/errtax"
	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

// Config is the subset of client/write options HttpSubmitter needs per
// call (spec §4.5, §8 Write options).
type Config struct {
	Token         string
	AuthScheme    string // default "Token"
	Org           string
	Database      string
	NoSync        bool
	EnableGzip    bool
	GzipThreshold int
	Timeout       time.Duration
	UserAgent     string
	Debug         bool // gates verbose per-request Debugf lines (SPEC_FULL.md §3)
}

const defaultUserAgent = "influxdb3-go/1.0"

// Submitter submits one batch's payload over HTTP, classifying the
// response (or transport error) into a model.Error when it is not a
// plain success.
type Submitter struct {
	exec Executor
}

func New(exec Executor) *Submitter {
	return &Submitter{exec: exec}
}

// Submit sends payload for the given partition key. On success it
// returns nil. On failure it always returns a *model.Error so the
// dispatcher's retry state machine can switch on Kind.
func (s *Submitter) Submit(ctx context.Context, cfg Config, key model.PartitionKey, payload []byte) error {
	requestID := uuid.NewString()

	path, query := endpoint(cfg, key)

	body := payload
	headers := http.Header{}
	headers.Set("Content-Type", "text/plain; charset=utf-8")
	headers.Set("Authorization", fmt.Sprintf("%s %s", authScheme(cfg.AuthScheme), cfg.Token))
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	headers.Set("User-Agent", ua)
	headers.Set("X-Request-Id", requestID)

	// Gzip gating is the intersection of enabled-at-configuration AND
	// over-threshold (SPEC_FULL.md §4 decision 2) — neither alone is
	// sufficient.
	if cfg.EnableGzip && len(payload) >= cfg.GzipThreshold {
		compressed, err := gzipCompress(payload)
		if err != nil {
			return model.Wrap(model.KindClientMisuse, "gzip compression failed", err)
		}
		body = compressed
		headers.Set("Content-Encoding", "gzip")
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if cfg.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if cfg.Debug {
		cclog.Debugf("write request %s: %s %s (%d bytes)", requestID, path, query.Encode(), len(body))
	}

	resp, err := s.exec.Do(callCtx, http.MethodPost, path, query, headers, body)
	if err != nil {
		return classifyTransportFailure(err)
	}

	if resp.Status >= 200 && resp.Status < 300 {
		return nil
	}

	if resp.Status == http.StatusMethodNotAllowed && cfg.NoSync {
		return model.NewError(model.KindClientMisuse,
			"no_sync write requested but the server does not support /api/v3/write_lp (v3-only feature unavailable)")
	}

	domainErr := errtax.Parse(resp.Status, resp.Reason, resp.Headers, resp.Body)
	cclog.Errorf("write request %s failed: %s", requestID, domainErr.Error())
	return domainErr
}

// Ping performs an unauthenticated health-check GET, one of this
// module's supplemented features (SPEC_FULL.md §3).
func (s *Submitter) Ping(ctx context.Context) error {
	resp, err := s.exec.Do(ctx, http.MethodGet, "/health", nil, http.Header{}, nil)
	if err != nil {
		return classifyTransportFailure(err)
	}
	if resp.Status >= 200 && resp.Status < 300 {
		return nil
	}
	return errtax.Parse(resp.Status, resp.Reason, resp.Headers, resp.Body)
}

func authScheme(scheme string) string {
	if scheme == "" {
		return "Token"
	}
	return scheme
}

// endpoint selects between the v3 and v2 write endpoints per spec §4.5
// and §6.
func endpoint(cfg Config, key model.PartitionKey) (string, url.Values) {
	q := url.Values{}
	if cfg.NoSync {
		q.Set("db", cfg.Database)
		q.Set("precision", key.Precision.LongName())
		q.Set("no_sync", "true")
		return "/api/v3/write_lp", q
	}
	q.Set("org", key.Org)
	q.Set("bucket", cfg.Database)
	q.Set("precision", key.Precision.ShortName())
	return "/api/v2/write", q
}

func gzipCompress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// classifyTransportFailure distinguishes timeouts, TLS verification
// failures, and generic connect/read failures per spec §4.5.
func classifyTransportFailure(err error) *model.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.Wrap(model.KindTimeout, "request timed out", err)
	}
	if classifyTransportError(err) {
		return model.Wrap(model.KindAuth, "TLS verification failed", err)
	}
	return model.Wrap(model.KindRetryableNetwork, "transport error", err)
}
