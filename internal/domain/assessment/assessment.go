// Package assessment holds the catalog entry returned by the vector index.
package assessment

import (
	"fmt"
	"slices"
	"strings"
)

// Support is a Yes/No capability flag of an assessment.
type Support string

const (
	// SupportYes marks a supported capability.
	SupportYes Support = "Yes"
	// SupportNo marks an unsupported capability.
	SupportNo Support = "No"
)

// ParseSupport accepts Yes/No (any case) and true/false. Empty means No.
func ParseSupport(s string) (Support, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return SupportYes, nil
	case "no", "n", "false", "0", "":
		return SupportNo, nil
	default:
		return "", fmt.Errorf("unknown support value %q", s)
	}
}

// Valid reports whether s is one of the enumerated values.
func (s Support) Valid() bool {
	return s == SupportYes || s == SupportNo
}

// Record is one catalog entry (immutable value object). The url is its identity.
type Record struct {
	url             string
	name            string
	description     string
	duration        int
	testTypes       []string
	adaptiveSupport Support
	remoteSupport   Support
	score           float64
}

// New validates and creates a Record with a zero score.
func New(
	url, name, description string, duration int, testTypes []string,
	adaptive, remote Support,
) (Record, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Record{}, fmt.Errorf("url is required")
	}
	if duration < 0 {
		return Record{}, fmt.Errorf("duration must be non-negative, got %d", duration)
	}
	if !adaptive.Valid() {
		return Record{}, fmt.Errorf("invalid adaptive_support %q", adaptive)
	}
	if !remote.Valid() {
		return Record{}, fmt.Errorf("invalid remote_support %q", remote)
	}

	return Record{
		url:             url,
		name:            name,
		description:     description,
		duration:        duration,
		testTypes:       slices.Clone(testTypes),
		adaptiveSupport: adaptive,
		remoteSupport:   remote,
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(
	url, name, description string, duration int, testTypes []string,
	adaptive, remote Support, score float64,
) Record {
	return Record{
		url:             url,
		name:            name,
		description:     description,
		duration:        duration,
		testTypes:       testTypes,
		adaptiveSupport: adaptive,
		remoteSupport:   remote,
		score:           score,
	}
}

// WithScore returns a copy carrying the given search score.
func (r Record) WithScore(score float64) Record {
	r.score = score
	return r
}

// URL returns the catalog url (identity and dedup key).
func (r Record) URL() string { return r.url }

// Name returns the display title.
func (r Record) Name() string { return r.name }

// Description returns the free-text description.
func (r Record) Description() string { return r.description }

// Duration returns the assessment length in minutes.
func (r Record) Duration() int { return r.duration }

// TestTypes returns a copy of the category tags.
func (r Record) TestTypes() []string { return slices.Clone(r.testTypes) }

// AdaptiveSupport reports adaptive testing support.
func (r Record) AdaptiveSupport() Support { return r.adaptiveSupport }

// RemoteSupport reports remote testing support.
func (r Record) RemoteSupport() Support { return r.remoteSupport }

// Score returns the distance reported by the index; lower is closer.
func (r Record) Score() float64 { return r.score }

// EmbeddingText is the text the catalog entry is vectorized from.
func (r Record) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(r.name)
	if r.description != "" {
		b.WriteString(". ")
		b.WriteString(r.description)
	}
	if len(r.testTypes) > 0 {
		b.WriteString(". Test types: ")
		b.WriteString(strings.Join(r.testTypes, ", "))
	}
	return b.String()
}
