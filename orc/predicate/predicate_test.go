package predicate

import (
	"testing"

	"github.com/nullable-io/orcreader/orc/meta"
	"github.com/stretchr/testify/assert"
)

func intStats(min, max int64) *meta.ColumnStatistics {
	return &meta.ColumnStatistics{
		NumberOfValues: 1,
		Integer:        &meta.IntegerStatistics{HasMinimum: true, Minimum: min, HasMaximum: true, Maximum: max},
	}
}

func TestMayMatchIsAllShortCircuits(t *testing.T) {
	assert.True(t, MayMatch(All(), map[int]*meta.ColumnStatistics{}))
}

func TestMayMatchRejectsDisjointRange(t *testing.T) {
	domain := Domain{Kind: KindInteger, Ranges: []Range{{Low: int64(100), High: int64(200)}}}
	tup := TupleDomain{Domains: map[int]Domain{1: domain}}
	stats := map[int]*meta.ColumnStatistics{1: intStats(0, 50)}
	assert.False(t, MayMatch(tup, stats))
}

func TestMayMatchAcceptsOverlappingRange(t *testing.T) {
	domain := Domain{Kind: KindInteger, Ranges: []Range{{Low: int64(10), High: int64(20)}}}
	tup := TupleDomain{Domains: map[int]Domain{1: domain}}
	stats := map[int]*meta.ColumnStatistics{1: intStats(15, 100)}
	assert.True(t, MayMatch(tup, stats))
}

func TestMayMatchMissingStatisticsNeverRejects(t *testing.T) {
	domain := Domain{Kind: KindInteger, Ranges: []Range{{Low: int64(10), High: int64(20)}}}
	tup := TupleDomain{Domains: map[int]Domain{1: domain}}
	assert.True(t, MayMatch(tup, map[int]*meta.ColumnStatistics{}))
}

func TestMayMatchUnconstrainedColumnIgnored(t *testing.T) {
	domain := Domain{Kind: KindInteger, Ranges: []Range{{Low: int64(10), High: int64(20)}}}
	tup := TupleDomain{Domains: map[int]Domain{1: domain}}
	// Column 2 has disjoint stats but isn't in the predicate at all.
	stats := map[int]*meta.ColumnStatistics{1: intStats(15, 16), 2: intStats(999, 1000)}
	assert.True(t, MayMatch(tup, stats))
}

func TestMayMatchAllNullBlockWithNullableDomain(t *testing.T) {
	domain := Domain{Kind: KindInteger, Ranges: []Range{{Low: int64(10), High: int64(20)}}, Nullable: true}
	tup := TupleDomain{Domains: map[int]Domain{1: domain}}
	stats := map[int]*meta.ColumnStatistics{1: {NumberOfValues: 0, HasNull: true}}
	assert.True(t, MayMatch(tup, stats))
}

func TestMayMatchAllNullBlockWithNonNullableDomain(t *testing.T) {
	domain := Domain{Kind: KindInteger, Ranges: []Range{{Low: int64(10), High: int64(20)}}, Nullable: false}
	tup := TupleDomain{Domains: map[int]Domain{1: domain}}
	stats := map[int]*meta.ColumnStatistics{1: {NumberOfValues: 0, HasNull: true}}
	assert.False(t, MayMatch(tup, stats))
}

func TestMayMatchDisjointButNullsAllowed(t *testing.T) {
	domain := Domain{Kind: KindInteger, Ranges: []Range{{Low: int64(10), High: int64(20)}}, Nullable: true}
	tup := TupleDomain{Domains: map[int]Domain{1: domain}}
	stats := map[int]*meta.ColumnStatistics{1: {
		NumberOfValues: 5, HasNull: true,
		Integer: &meta.IntegerStatistics{HasMinimum: true, Minimum: 1000, HasMaximum: true, Maximum: 2000},
	}}
	assert.True(t, MayMatch(tup, stats))
}

func TestMayMatchDisjointNoNulls(t *testing.T) {
	domain := Domain{Kind: KindInteger, Ranges: []Range{{Low: int64(10), High: int64(20)}}, Nullable: true}
	tup := TupleDomain{Domains: map[int]Domain{1: domain}}
	stats := map[int]*meta.ColumnStatistics{1: {
		NumberOfValues: 5, HasNull: false,
		Integer: &meta.IntegerStatistics{HasMinimum: true, Minimum: 1000, HasMaximum: true, Maximum: 2000},
	}}
	assert.False(t, MayMatch(tup, stats))
}

func TestDomainIsAllIsNone(t *testing.T) {
	assert.True(t, AllDomain(KindInteger).IsAll())
	assert.True(t, NoneDomain(KindInteger).IsNone())
	assert.False(t, AllDomain(KindInteger).IsNone())
}

func TestTupleDomainIsAllIsNone(t *testing.T) {
	assert.True(t, TupleDomain{}.IsAll())
	assert.False(t, TupleDomain{}.IsNone())
	assert.True(t, None().IsNone())
}

func TestStatsRangeMissingFamily(t *testing.T) {
	d := Domain{Kind: KindString}
	_, ok := d.StatsRange(intStats(1, 2))
	assert.False(t, ok)
}
