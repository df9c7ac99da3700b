package influxdb3

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

// FromEnv builds ClientOptions and WriteOptions from the INFLUX_* environment variables
// (spec §6 Configuration keys), grounded on the teacher's os.Getenv /
// os.LookupEnv usage in internal/auth for reading secrets out of the
// environment (no env-var-binding library appears anywhere in the
// reference corpus, so this stays on the standard library — see
// DESIGN.md). Missing required keys are aggregated into a single
// CLIENT_MISUSE listing every absent key, per spec §6.
func FromEnv() (ClientOptions, WriteOptions, error) {
	var missing []string

	host, ok := os.LookupEnv("INFLUX_HOST")
	if !ok || host == "" {
		missing = append(missing, "INFLUX_HOST")
	}
	token, ok := os.LookupEnv("INFLUX_TOKEN")
	if !ok || token == "" {
		missing = append(missing, "INFLUX_TOKEN")
	}
	database, ok := os.LookupEnv("INFLUX_DATABASE")
	if !ok || database == "" {
		missing = append(missing, "INFLUX_DATABASE")
	}

	if len(missing) > 0 {
		return ClientOptions{}, WriteOptions{}, model.Misuse(
			"missing required configuration keys: %s", strings.Join(missing, ", "))
	}

	org := os.Getenv("INFLUX_ORG")
	if org == "" {
		org = "default"
	}

	clientOpts := ClientOptions{
		Host:     host,
		Token:    token,
		Database: database,
		Org:      org,
	}
	if scheme := os.Getenv("INFLUX_AUTH_SCHEME"); scheme != "" {
		clientOpts.AuthScheme = scheme
	}

	writeOpts := DefaultWriteOptions()

	if p := os.Getenv("INFLUX_PRECISION"); p != "" {
		precision, err := model.ParsePrecision(p)
		if err != nil {
			return ClientOptions{}, WriteOptions{}, err
		}
		writeOpts.WritePrecision = precision
	}

	if g := os.Getenv("INFLUX_GZIP_THRESHOLD"); g != "" {
		threshold, err := strconv.Atoi(g)
		if err != nil || threshold < 0 {
			return ClientOptions{}, WriteOptions{}, model.Misuse(
				"INFLUX_GZIP_THRESHOLD must be a non-negative integer, got %q", g)
		}
		writeOpts.GzipThreshold = threshold
		writeOpts.EnableGzip = true
	}

	if ns := os.Getenv("INFLUX_WRITE_NO_SYNC"); ns != "" {
		writeOpts.NoSync = strings.EqualFold(ns, "true")
	}

	if wt := os.Getenv("INFLUX_WRITE_TIMEOUT"); wt != "" {
		ms, err := strconv.Atoi(wt)
		if err != nil || ms < 0 {
			return ClientOptions{}, WriteOptions{}, model.Misuse(
				"INFLUX_WRITE_TIMEOUT must be a non-negative integer, got %q", wt)
		}
		writeOpts.Timeout = time.Duration(ms) * time.Millisecond
	}

	if qt := os.Getenv("INFLUX_QUERY_TIMEOUT"); qt != "" {
		ms, err := strconv.Atoi(qt)
		if err != nil || ms < 0 {
			return ClientOptions{}, WriteOptions{}, model.Misuse(
				"INFLUX_QUERY_TIMEOUT must be a non-negative integer, got %q", qt)
		}
		clientOpts.Timeout = time.Duration(ms) * time.Millisecond
	}

	return clientOpts, writeOpts, nil
}
