// Package catalog loads the assessment catalog from a local file or an S3 object.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/recommender/internal/domain"
	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
)

// maxDuration caps assessment length in minutes.
const maxDuration = 24 * 60

// Source yields the raw catalog document.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Location() string
}

// Open picks a Source for location: s3://bucket/key goes to S3, anything else is a local path.
func Open(ctx context.Context, location string, s3cfg S3Config) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("empty catalog location: %w", domain.ErrCatalogNotFound)
	}
	if strings.HasPrefix(location, "s3://") {
		bucket, key, ok := parseS3URI(location)
		if !ok {
			return nil, fmt.Errorf("malformed s3 location %q: %w", location, domain.ErrCatalogNotFound)
		}
		return NewS3Source(ctx, bucket, key, s3cfg)
	}
	return NewFileSource(location), nil
}

// Load reads and decodes every record of src.
func Load(ctx context.Context, src Source) ([]domassess.Record, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	records, err := Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", src.Location(), err)
	}
	return records, nil
}

type rawRecord struct {
	URL             string          `json:"url"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Duration        json.RawMessage `json:"duration"`
	TestType        json.RawMessage `json:"test_type"`
	AdaptiveSupport string          `json:"adaptive_support"`
	RemoteSupport   string          `json:"remote_support"`
}

// Decode parses a JSON array of records, or an object wrapping it under "assessments".
func Decode(r io.Reader) ([]domassess.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document: %w", domain.ErrInvalidCatalog)
	}

	var raws []rawRecord
	if data[0] == '{' {
		var wrapped struct {
			Assessments []rawRecord `json:"assessments"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode catalog: %w: %w", domain.ErrInvalidCatalog, err)
		}
		raws = wrapped.Assessments
	} else if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode catalog: %w: %w", domain.ErrInvalidCatalog, err)
	}

	records := make([]domassess.Record, 0, len(raws))
	for i, raw := range raws {
		rec, err := raw.toRecord()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w: %w", i, domain.ErrInvalidCatalog, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r rawRecord) toRecord() (domassess.Record, error) {
	duration, err := parseDuration(r.Duration)
	if err != nil {
		return domassess.Record{}, err
	}
	testTypes, err := parseTestTypes(r.TestType)
	if err != nil {
		return domassess.Record{}, err
	}
	adaptive, err := domassess.ParseSupport(r.AdaptiveSupport)
	if err != nil {
		return domassess.Record{}, err
	}
	remote, err := domassess.ParseSupport(r.RemoteSupport)
	if err != nil {
		return domassess.Record{}, err
	}
	return domassess.New(r.URL, r.Name, r.Description, duration, testTypes, adaptive, remote)
}

// parseDuration accepts a number, a numeric string or nothing (0 minutes).
func parseDuration(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n != math.Trunc(n) || n < 0 || n > maxDuration {
			return 0, fmt.Errorf("duration %v: %w", n, domain.ErrInvalidCatalog)
		}
		return int(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("duration: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("duration %q is not a number", s)
	}
	if d < 0 || d > maxDuration {
		return 0, fmt.Errorf("duration %d: %w", d, domain.ErrInvalidCatalog)
	}
	return d, nil
}

// parseTestTypes accepts an array of strings or a comma-separated string.
// A type containing "|" is rejected: the index stores types joined on it.
func parseTestTypes(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("test_type: %w", err)
		}
		list = strings.Split(s, ",")
	}
	out := compact(list)
	for _, t := range out {
		if strings.Contains(t, "|") {
			return nil, fmt.Errorf("test_type %q contains '|': %w", t, domain.ErrInvalidCatalog)
		}
	}
	return out, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
