// Package resultrepository contains the PostgreSQL implementation of the
// result store. The one-entry-per-email invariant is enforced by the unique
// index on (result_id, email); every concurrent appender funnels through
// ON CONFLICT DO NOTHING rather than read-modify-write.
package resultrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/domain"
	"gitlab.com/assess-2025.net/internal/static/errs"
	querybuilder "gitlab.com/assess-2025.net/internal/utils"
)

var _ secondary.ResultRepository = (*ResultRepository)(nil)

// ResultRepository implements the ResultRepository interface with PostgreSQL.
type ResultRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

// New creates a new PostgreSQL result repository.
func New(db *sqlx.DB, logger primary.Logger, schema string) *ResultRepository {
	return &ResultRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

// CreateForTest inserts the empty result record for a new test.
func (r *ResultRepository) CreateForTest(ctx context.Context, result *domain.Result) error {
	tbl := domain.GetResultTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Insert(tbl.ID, tbl.TestID, tbl.TestKey, tbl.CreatedBy).
		Into(tbl.TableName()).
		Values(result.ID, result.TestID, result.TestKey, result.CreatedBy).
		Build()

	query = sqlx.Rebind(sqlx.DOLLAR, query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to create result record", "testId", result.TestID, "error", err)
		return fmt.Errorf("failed to create result record: %w", err)
	}
	return nil
}

type resultRow struct {
	ID        uuid.UUID `db:"id"`
	TestID    uuid.UUID `db:"test_id"`
	TestKey   string    `db:"test_key"`
	CreatedBy uuid.UUID `db:"created_by"`
}

// FindByTestID retrieves a result with its candidate entries in commit order.
func (r *ResultRepository) FindByTestID(ctx context.Context, testID uuid.UUID) (*domain.Result, error) {
	tbl := domain.GetResultTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(tbl.ID, tbl.TestID, tbl.TestKey, tbl.CreatedBy).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.TestID), testID).
		Build()

	var row resultRow
	if err := r.db.GetContext(ctx, &row, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ResultNotFound
		}
		return nil, fmt.Errorf("failed to load result: %w", err)
	}

	result := &domain.Result{ID: row.ID, TestID: row.TestID, TestKey: row.TestKey, CreatedBy: row.CreatedBy}
	if err := r.loadCandidates(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ResultRepository) loadCandidates(ctx context.Context, result *domain.Result) error {
	tbl := domain.GetCandidateTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(tbl.Name, tbl.Email, tbl.Score).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.ResultID), result.ID).
		OrderBy("id", true).
		Build()

	if err := r.db.SelectContext(ctx, &result.Candidates, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		return fmt.Errorf("failed to load candidate entries: %w", err)
	}
	return nil
}

// FindCandidate looks up one candidate's committed entry for a test.
func (r *ResultRepository) FindCandidate(ctx context.Context, testID uuid.UUID, email string) (*domain.CandidateEntry, error) {
	query := sqlx.Rebind(sqlx.DOLLAR, `
		SELECT c.name, c.email, c.score
		FROM `+r.qualified("result_candidates")+` c
		JOIN `+r.qualified("results")+` r ON c.result_id = r.id
		WHERE r.test_id = ? AND c.email = ?
	`)

	var entry domain.CandidateEntry
	if err := r.db.GetContext(ctx, &entry, query, testID, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up candidate entry: %w", err)
	}
	return &entry, nil
}

// AppendCandidateIfAbsent commits one entry. The unique index decides races:
// zero affected rows means another appender already holds the slot.
func (r *ResultRepository) AppendCandidateIfAbsent(ctx context.Context, testID uuid.UUID, entry domain.CandidateEntry) error {
	var resultID uuid.UUID
	idQuery := sqlx.Rebind(sqlx.DOLLAR,
		"SELECT id FROM "+r.qualified("results")+" WHERE test_id = ?")
	if err := r.db.GetContext(ctx, &resultID, idQuery, testID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ResultNotFound
		}
		return fmt.Errorf("failed to resolve result record: %w", err)
	}

	tbl := domain.GetCandidateTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Insert(tbl.ResultID, tbl.Name, tbl.Email, tbl.Score).
		Into(tbl.TableName()).
		Values(resultID, entry.Name, entry.Email, entry.Score).
		OnConflict(tbl.ResultID, tbl.Email).
		DoNothing().
		Build()

	res, err := r.db.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	if err != nil {
		r.logger.Error("Failed to append candidate entry", "testId", testID, "email", entry.Email, "error", err)
		return fmt.Errorf("failed to append candidate entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return errs.PersistenceConflict
	}
	return nil
}

// FindAllByOwner retrieves every result created by one owner.
func (r *ResultRepository) FindAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Result, error) {
	tbl := domain.GetResultTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(tbl.ID, tbl.TestID, tbl.TestKey, tbl.CreatedBy).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.CreatedBy), ownerID).
		Build()

	var rows []resultRow
	if err := r.db.SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	results := make([]*domain.Result, 0, len(rows))
	for _, row := range rows {
		result := &domain.Result{ID: row.ID, TestID: row.TestID, TestKey: row.TestKey, CreatedBy: row.CreatedBy}
		if err := r.loadCandidates(ctx, result); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *ResultRepository) qualified(table string) string {
	if r.schema == "" {
		return table
	}
	return r.schema + "." + table
}
