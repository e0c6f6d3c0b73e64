package assessment

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
)

// Hash field names of a stored assessment.
const (
	fieldURL         = "url"
	fieldName        = "name"
	fieldDescription = "description"
	fieldDuration    = "duration"
	fieldTestType    = "test_type"
	fieldAdaptive    = "adaptive_support"
	fieldRemote      = "remote_support"
	fieldVector      = "__vector"

	testTypeSeparator = "|"
)

// returnFields lists the fields fetched by KNN queries (the vector itself is never returned).
var returnFields = []string{
	fieldURL, fieldName, fieldDescription, fieldDuration,
	fieldTestType, fieldAdaptive, fieldRemote,
}

// buildHashFields converts a record and its embedding into a flat map for HSET.
func buildHashFields(r domassess.Record, vector []float32) map[string]string {
	return map[string]string{
		fieldURL:         r.URL(),
		fieldName:        r.Name(),
		fieldDescription: r.Description(),
		fieldDuration:    strconv.Itoa(r.Duration()),
		fieldTestType:    strings.Join(r.TestTypes(), testTypeSeparator),
		fieldAdaptive:    string(r.AdaptiveSupport()),
		fieldRemote:      string(r.RemoteSupport()),
		fieldVector:      vectorToBytes(vector),
	}
}

// parseHashFields rebuilds a record from stored hash fields. Unknown support values read as No.
func parseHashFields(m map[string]string) domassess.Record {
	duration, _ := strconv.Atoi(m[fieldDuration])

	var testTypes []string
	if raw := m[fieldTestType]; raw != "" {
		testTypes = strings.Split(raw, testTypeSeparator)
	}

	adaptive, err := domassess.ParseSupport(m[fieldAdaptive])
	if err != nil {
		adaptive = domassess.SupportNo
	}
	remote, err := domassess.ParseSupport(m[fieldRemote])
	if err != nil {
		remote = domassess.SupportNo
	}

	return domassess.Reconstruct(
		m[fieldURL], m[fieldName], m[fieldDescription], duration,
		testTypes, adaptive, remote, 0,
	)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
