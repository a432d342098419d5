package predicate

import "github.com/nullable-io/orcreader/orc/meta"

// MayMatch implements the core stripe/row-group rejection algorithm: for
// each column the predicate constrains, build an observed range (and
// "null allowed" flag) from statistics; if the intersection with the
// predicate's domain for that column is empty, the block can be
// rejected. Absent statistics, or a column id the predicate doesn't
// mention, never cause a rejection: rejecting must be sound and never
// drop a matching row, so the only approximation permitted is widening
// the observed range, never narrowing it.
//
// stats maps column id -> statistics for the block (a stripe or a row
// group) being considered.
func MayMatch(t TupleDomain, stats map[int]*meta.ColumnStatistics) bool {
	if t.IsAll() {
		return true
	}
	for columnID, domain := range t.Domains {
		if domain.IsNone() {
			return false
		}
		cs, ok := stats[columnID]
		if !ok || cs == nil {
			// No statistics for a constrained column: treat as "any
			// value", never reject on it.
			continue
		}
		if cs.NumberOfValues == 0 {
			// Every row in this block is null.
			if domain.Nullable {
				continue
			}
			return false
		}
		valueRange, present := domain.StatsRange(cs)
		if !present {
			// Column has a statistics entry but not for this family
			// (rare dialect mismatch): treat as "any value".
			continue
		}
		if domain.overlapsRange(valueRange) {
			continue
		}
		if cs.HasNull && domain.Nullable {
			// The block's non-null values don't overlap, but it may
			// still contain a satisfying null.
			continue
		}
		return false
	}
	return true
}
