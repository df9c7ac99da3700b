package httpwrite

import (
	"bytes"
	"context"
	"crypto/x509"
	"errors"
	"io"
	"net/http"
	"net/url"
)

// Executor is the opaque "HTTP executor" collaborator described in
// spec.md §1: a POST/GET round trip, with everything above it (retry,
// batching, endpoint selection) layered on top. Treating it as an
// interface lets callers substitute their own connection-pooled client
// (spec §5's "shared-resource policy": the executor's connection pool is
// shared across all writes) without HttpSubmitter knowing anything about
// transport details.
type Executor interface {
	Do(ctx context.Context, method, path string, query url.Values, headers http.Header, body []byte) (*Response, error)
}

// Response is the opaque executor's result shape per spec §1:
// "POST(path, query, headers, body) → (status, headers, body)".
type Response struct {
	Status  int
	Reason  string
	Headers http.Header
	Body    []byte
}

// DefaultExecutor is a net/http-backed Executor, grounded on
// internal/metricstoreclient.CCMetricStore's doRequest: build the
// request, set headers, run it through a shared http.Client, read and
// close the body.
type DefaultExecutor struct {
	BaseURL string
	Client  *http.Client
}

func NewDefaultExecutor(baseURL string, client *http.Client) *DefaultExecutor {
	if client == nil {
		client = &http.Client{}
	}
	return &DefaultExecutor{BaseURL: baseURL, Client: client}
}

func (e *DefaultExecutor) Do(ctx context.Context, method, path string, query url.Values, headers http.Header, body []byte) (*Response, error) {
	u := e.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	res, err := e.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		Status:  res.StatusCode,
		Reason:  res.Status,
		Headers: res.Header,
		Body:    respBody,
	}, nil
}

// classifyTransportError distinguishes a TLS verification failure (AUTH,
// non-retryable per spec §4.5) from every other connect/read failure
// (RETRYABLE_NETWORK). context.DeadlineExceeded is handled separately by
// the caller before this is consulted.
func classifyTransportError(err error) bool {
	var certErr x509.CertificateInvalidError
	var unknownAuthErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuthErr) || errors.As(err, &hostnameErr) {
		return true // TLS verification failure
	}
	return false
}
