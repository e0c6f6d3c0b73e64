// Package query holds the keyword pair extracted from a job description.
package query

import "strings"

const (
	// DefaultBehavioral is used when no behavioral keywords could be extracted.
	DefaultBehavioral = "Personality"
	// FallbackTechnical is used when neither extraction nor the raw text yield a query.
	FallbackTechnical = "Skills"
)

// Pair is the technical/behavioral search query pair for one request.
type Pair struct {
	Technical  string
	Behavioral string
}

// Fallback builds the pair used when extraction fails: the raw text as the
// technical query and the default behavioral query.
func Fallback(text string) Pair {
	p := Pair{Technical: text, Behavioral: DefaultBehavioral}
	if strings.TrimSpace(text) == "" {
		p.Technical = FallbackTechnical
	}
	return p
}
