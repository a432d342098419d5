// Package predicate implements the tuple-domain statistics matcher: it
// decides, from a predicate and a ColumnStatistics snapshot, whether a
// stripe or row group could contain a qualifying row.
package predicate

import "github.com/nullable-io/orcreader/orc/meta"

// Value is an orderable scalar: one of int64, float64, or string,
// matching the families ColumnStatistics carries a min/max for.
type Value interface{}

// Range is a closed interval [Low, High]; a nil bound means unbounded
// (±∞), matching "statistics absent => any value".
type Range struct {
	Low, High Value
}

// isEmpty reports whether the range can never be satisfied, i.e. its
// bounds are both present and out of order.
func (r Range) isEmpty(cmp compareFunc) bool {
	if r.Low == nil || r.High == nil {
		return false
	}
	return cmp(r.Low, r.High) > 0
}

func (r Range) overlaps(o Range, cmp compareFunc) bool {
	if r.Low != nil && o.High != nil && cmp(r.Low, o.High) > 0 {
		return false
	}
	if o.Low != nil && r.High != nil && cmp(o.Low, r.High) > 0 {
		return false
	}
	return true
}

type compareFunc func(a, b Value) int

func compareInt(a, b Value) int {
	x, y := a.(int64), b.(int64)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b Value) int {
	x, y := a.(float64), b.(float64)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func compareString(a, b Value) int {
	x, y := a.(string), b.(string)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// Kind selects which comparator a Domain uses; it mirrors the
// ColumnStatistics family the column belongs to.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindString
)

func (k Kind) compare() compareFunc {
	switch k {
	case KindFloat:
		return compareFloat
	case KindString:
		return compareString
	default:
		return compareInt
	}
}

// Domain is a union of ranges plus a nullable flag for one column, the
// unit a TupleDomain conjoins over columns.
type Domain struct {
	Kind     Kind
	Ranges   []Range
	Nullable bool
}

// AllDomain returns the unconstrained domain: any value, nulls allowed.
func AllDomain(kind Kind) Domain {
	return Domain{Kind: kind, Ranges: []Range{{}}, Nullable: true}
}

// NoneDomain returns the domain no value satisfies.
func NoneDomain(kind Kind) Domain {
	return Domain{Kind: kind}
}

// IsAll reports the "accept everything" fast path.
func (d Domain) IsAll() bool {
	if !d.Nullable || len(d.Ranges) != 1 {
		return false
	}
	r := d.Ranges[0]
	return r.Low == nil && r.High == nil
}

// IsNone reports the domain rejects every value, including null.
func (d Domain) IsNone() bool {
	return len(d.Ranges) == 0 && !d.Nullable
}

// overlapsRange reports whether d admits any value in r (ignoring
// nullability), used to intersect against a column's observed [min,max].
func (d Domain) overlapsRange(r Range) bool {
	cmp := d.Kind.compare()
	if r.isEmpty(cmp) {
		return false
	}
	for _, dr := range d.Ranges {
		if dr.overlaps(r, cmp) {
			return true
		}
	}
	return false
}

// StatsRange extracts the observed [min, max] from a ColumnStatistics
// entry for the family d.Kind expects. ok is false when statistics carry
// nothing for that family; absent statistics are treated as "any value".
func (d Domain) StatsRange(stats *meta.ColumnStatistics) (Range, bool) {
	if stats == nil {
		return Range{}, false
	}
	switch d.Kind {
	case KindInteger:
		if stats.Integer == nil {
			return Range{}, false
		}
		r := Range{}
		if stats.Integer.HasMinimum {
			r.Low = stats.Integer.Minimum
		}
		if stats.Integer.HasMaximum {
			r.High = stats.Integer.Maximum
		}
		return r, r.Low != nil || r.High != nil
	case KindFloat:
		if stats.Double == nil {
			return Range{}, false
		}
		r := Range{}
		if stats.Double.HasMinimum {
			r.Low = stats.Double.Minimum
		}
		if stats.Double.HasMaximum {
			r.High = stats.Double.Maximum
		}
		return r, r.Low != nil || r.High != nil
	case KindString:
		if stats.String == nil {
			return Range{}, false
		}
		r := Range{}
		if stats.String.HasMinimum {
			r.Low = stats.String.Minimum
		}
		if stats.String.HasMaximum {
			r.High = stats.String.Maximum
		}
		return r, r.Low != nil || r.High != nil
	default:
		return Range{}, false
	}
}
