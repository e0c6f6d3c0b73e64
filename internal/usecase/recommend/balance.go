package recommend

import domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"

// Balance interleaves the two ranked lists, technical first in every round, skipping
// urls already taken, until limit records are collected or both lists run out.
func Balance(technical, behavioral []domassess.Record, limit int) []domassess.Record {
	if limit < 1 {
		return []domassess.Record{}
	}

	out := make([]domassess.Record, 0, min(limit, len(technical)+len(behavioral)))
	seen := make(map[string]struct{}, cap(out))
	take := func(r domassess.Record) {
		if _, dup := seen[r.URL()]; dup {
			return
		}
		seen[r.URL()] = struct{}{}
		out = append(out, r)
	}

	ti, bi := 0, 0
	for len(out) < limit && (ti < len(technical) || bi < len(behavioral)) {
		if ti < len(technical) {
			take(technical[ti])
			ti++
		}
		if len(out) == limit {
			break
		}
		if bi < len(behavioral) {
			take(behavioral[bi])
			bi++
		}
	}
	return out
}
