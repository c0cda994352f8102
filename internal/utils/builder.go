package querybuilder

import (
	"fmt"
	"strings"
)

// QueryBuilder assembles SQL with "?" placeholders; callers rebind to the
// driver's placeholder style with sqlx.Rebind.
type QueryBuilder interface {
	Select(cols ...string) QueryBuilder
	From(table string) QueryBuilder
	Where(clause string, args ...interface{}) QueryBuilder
	And(clause string, args ...interface{}) QueryBuilder
	OrderBy(col string, asc bool) QueryBuilder

	Insert(cols ...string) QueryBuilder
	Into(table string) QueryBuilder
	Values(values ...interface{}) QueryBuilder
	OnConflict(cols ...string) QueryBuilder
	DoNothing() QueryBuilder

	Update(table string) QueryBuilder
	Set(col string, value interface{}) QueryBuilder

	Build() (string, []interface{})
}

type condition struct {
	clause string
	args   []interface{}
}

type assignment struct {
	col   string
	value interface{}
}

type queryBuilder struct {
	schema       string
	table        string
	cols         []string
	conditions   []condition
	orderBy      []string
	values       [][]interface{}
	isInsert     bool
	isUpdate     bool
	assignments  []assignment
	onConflict   []string
	conflictNoop bool
}

func NewQueryBuilder(schema string) QueryBuilder {
	return &queryBuilder{schema: schema}
}

func (q *queryBuilder) Select(cols ...string) QueryBuilder {
	q.cols = append(q.cols, cols...)
	return q
}

func (q *queryBuilder) From(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Where(clause string, args ...interface{}) QueryBuilder {
	q.conditions = append(q.conditions, condition{clause: clause, args: args})
	return q
}

func (q *queryBuilder) And(clause string, args ...interface{}) QueryBuilder {
	return q.Where(clause, args...)
}

func (q *queryBuilder) OrderBy(col string, asc bool) QueryBuilder {
	direction := "ASC"
	if !asc {
		direction = "DESC"
	}
	q.orderBy = append(q.orderBy, fmt.Sprintf("%s %s", col, direction))
	return q
}

func (q *queryBuilder) Insert(cols ...string) QueryBuilder {
	q.isInsert = true
	q.cols = cols
	return q
}

func (q *queryBuilder) Into(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Values(values ...interface{}) QueryBuilder {
	q.values = append(q.values, values)
	return q
}

func (q *queryBuilder) OnConflict(cols ...string) QueryBuilder {
	q.onConflict = cols
	return q
}

func (q *queryBuilder) DoNothing() QueryBuilder {
	q.conflictNoop = true
	return q
}

func (q *queryBuilder) Update(table string) QueryBuilder {
	q.isUpdate = true
	q.table = table
	return q
}

func (q *queryBuilder) Set(col string, value interface{}) QueryBuilder {
	q.assignments = append(q.assignments, assignment{col: col, value: value})
	return q
}

func (q *queryBuilder) Build() (string, []interface{}) {
	switch {
	case q.isInsert:
		return q.buildInsert()
	case q.isUpdate:
		return q.buildUpdate()
	default:
		return q.buildSelect()
	}
}

func (q *queryBuilder) qualified() string {
	if q.schema == "" {
		return q.table
	}
	return q.schema + "." + q.table
}

func (q *queryBuilder) whereClause() (string, []interface{}) {
	if len(q.conditions) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(q.conditions))
	var args []interface{}
	for _, cond := range q.conditions {
		parts = append(parts, cond.clause)
		args = append(args, cond.args...)
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func (q *queryBuilder) buildSelect() (string, []interface{}) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(q.cols, ", "), q.qualified())
	where, args := q.whereClause()
	query += where
	if len(q.orderBy) > 0 {
		query += " ORDER BY " + strings.Join(q.orderBy, ", ")
	}
	return query, args
}

func (q *queryBuilder) buildInsert() (string, []interface{}) {
	if len(q.values) == 0 {
		return "", nil
	}
	var args []interface{}
	tuples := make([]string, 0, len(q.values))
	for _, row := range q.values {
		if len(row) != len(q.cols) {
			return "", nil
		}
		marks := make([]string, len(row))
		for i, val := range row {
			marks[i] = "?"
			args = append(args, val)
		}
		tuples = append(tuples, "("+strings.Join(marks, ", ")+")")
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		q.qualified(), strings.Join(q.cols, ", "), strings.Join(tuples, ", "))
	if len(q.onConflict) > 0 && q.conflictNoop {
		query += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(q.onConflict, ", "))
	}
	return query, args
}

func (q *queryBuilder) buildUpdate() (string, []interface{}) {
	if len(q.assignments) == 0 {
		return "", nil
	}
	sets := make([]string, 0, len(q.assignments))
	var args []interface{}
	for _, a := range q.assignments {
		sets = append(sets, fmt.Sprintf("%s = ?", a.col))
		args = append(args, a.value)
	}
	query := fmt.Sprintf("UPDATE %s SET %s", q.qualified(), strings.Join(sets, ", "))
	where, whereArgs := q.whereClause()
	query += where
	args = append(args, whereArgs...)
	return query, args
}
