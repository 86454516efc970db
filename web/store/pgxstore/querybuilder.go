package pgxstore

import (
	"fmt"

	"github.com/screwyprof/airdrop/web/snapshots"
)

// SQL queries
const (
	baseSnapshotsQuery = "SELECT address, sequence, airdrop_amount::text, staked_amount::text, taken_at FROM airdrop_snapshots"
)

// SnapshotsQueryBuilder provides a domain-specific language for building snapshot queries
type SnapshotsQueryBuilder struct {
	sql   string
	args  []any
	where bool
}

// NewSnapshotsQuery creates a new snapshot query builder
func NewSnapshotsQuery() *SnapshotsQueryBuilder {
	return &SnapshotsQueryBuilder{
		sql: baseSnapshotsQuery,
	}
}

// ForCriteria applies the snapshot criteria to the query in one fluent call
func (q *SnapshotsQueryBuilder) ForCriteria(criteria snapshots.SnapshotsCriteria) *SnapshotsQueryBuilder {
	return q.
		filterByAddress(criteria.Address).
		orderByTakenAtDesc().
		paginateWithDetection(criteria)
}

// filterByAddress adds an exact address match if the filter is set
func (q *SnapshotsQueryBuilder) filterByAddress(address snapshots.Address) *SnapshotsQueryBuilder {
	if address.IsSet() {
		q.addWhereCondition("address = $%d", address.String())
	}
	return q
}

// orderByTakenAtDesc orders the most recent snapshots first, address breaking ties
func (q *SnapshotsQueryBuilder) orderByTakenAtDesc() *SnapshotsQueryBuilder {
	q.sql += " ORDER BY taken_at DESC, address ASC"
	return q
}

// paginateWithDetection adds pagination with "has more" detection using LIMIT n+1
func (q *SnapshotsQueryBuilder) paginateWithDetection(criteria snapshots.SnapshotsCriteria) *SnapshotsQueryBuilder {
	limit := criteria.ItemsPerPage() + 1
	offset := criteria.ItemsToSkip()

	q.addParameter("LIMIT $%d", limit)

	if offset > 0 {
		q.addParameter("OFFSET $%d", offset)
	}

	return q
}

// Build returns the final SQL query and arguments
func (q *SnapshotsQueryBuilder) Build() (string, []any) {
	return q.sql, q.args
}

// addWhereCondition adds a WHERE condition, handling AND logic automatically
func (q *SnapshotsQueryBuilder) addWhereCondition(sqlClause string, value any) {
	keyword := " WHERE "
	if q.where {
		keyword = " AND "
	}
	q.where = true
	q.sql += keyword + fmt.Sprintf(sqlClause, q.nextPlaceholder())
	q.args = append(q.args, value)
}

// addParameter adds a SQL clause with a parameter
func (q *SnapshotsQueryBuilder) addParameter(sqlClause string, value any) {
	q.sql += " " + fmt.Sprintf(sqlClause, q.nextPlaceholder())
	q.args = append(q.args, value)
}

// nextPlaceholder returns the next PostgreSQL placeholder ($1, $2, etc.)
func (q *SnapshotsQueryBuilder) nextPlaceholder() int {
	return len(q.args) + 1
}
