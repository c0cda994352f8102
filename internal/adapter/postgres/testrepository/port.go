// Package testrepository contains the PostgreSQL implementation of the
// assessment store.
package testrepository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/domain"
	"gitlab.com/assess-2025.net/internal/static/errs"
	querybuilder "gitlab.com/assess-2025.net/internal/utils"
)

var _ secondary.TestRepository = (*TestRepository)(nil)

// TestRepository implements the TestRepository interface with PostgreSQL.
type TestRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

// New creates a new PostgreSQL test repository.
func New(db *sqlx.DB, logger primary.Logger, schema string) *TestRepository {
	return &TestRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

// Create persists the test, its questions and their test cases in one
// transaction. Question and test case order is the authored order.
func (r *TestRepository) Create(ctx context.Context, test *domain.Test) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertTest := sqlx.Rebind(sqlx.DOLLAR, `
		INSERT INTO `+r.qualified("tests")+` (
			id, name, email, company, key_hash, start_time, end_time,
			duration_seconds, created_by, active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = tx.ExecContext(ctx, insertTest,
		test.ID, test.Name, test.Email, test.Company, test.Key,
		test.StartTime, test.EndTime, int(test.Duration.Seconds()),
		test.CreatedBy, test.Active, test.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert test", "testId", test.ID, "error", err)
		return fmt.Errorf("failed to insert test: %w", err)
	}

	insertQuestion := sqlx.Rebind(sqlx.DOLLAR, `
		INSERT INTO `+r.qualified("questions")+` (
			id, test_id, position, name, statement, constraints, predefined_structure
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	insertCase := sqlx.Rebind(sqlx.DOLLAR, `
		INSERT INTO `+r.qualified("test_cases")+` (
			id, question_id, position, input, expected, command
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	for qi, q := range test.Questions {
		if _, err := tx.ExecContext(ctx, insertQuestion,
			q.ID, test.ID, qi, q.Name, q.Statement, q.Constraints, q.PredefinedStructure,
		); err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
		for ci, tc := range q.TestCases {
			input, err := json.Marshal(tc.Input)
			if err != nil {
				return fmt.Errorf("failed to marshal test case input: %w", err)
			}
			if _, err := tx.ExecContext(ctx, insertCase,
				tc.ID, q.ID, ci, input, tc.Expected, tc.Command,
			); err != nil {
				return fmt.Errorf("failed to insert test case: %w", err)
			}
		}
	}
	return tx.Commit()
}

type testRow struct {
	ID              uuid.UUID `db:"id"`
	Name            string    `db:"name"`
	Email           string    `db:"email"`
	Company         string    `db:"company"`
	KeyHash         string    `db:"key_hash"`
	StartTime       time.Time `db:"start_time"`
	EndTime         time.Time `db:"end_time"`
	DurationSeconds int       `db:"duration_seconds"`
	CreatedBy       uuid.UUID `db:"created_by"`
	Active          bool      `db:"active"`
	CreatedAt       time.Time `db:"created_at"`
}

type questionRow struct {
	ID                  uuid.UUID `db:"id"`
	Name                string    `db:"name"`
	Statement           string    `db:"statement"`
	Constraints         string    `db:"constraints"`
	PredefinedStructure string    `db:"predefined_structure"`
}

type testCaseRow struct {
	ID       uuid.UUID `db:"id"`
	Input    []byte    `db:"input"`
	Expected string    `db:"expected"`
	Command  string    `db:"command"`
}

// FindByID retrieves an active test. Inactive (soft-deleted) tests are
// indistinguishable from absent ones.
func (r *TestRepository) FindByID(ctx context.Context, testID uuid.UUID) (*domain.Test, error) {
	query := sqlx.Rebind(sqlx.DOLLAR, `
		SELECT id, name, email, company, key_hash, start_time, end_time,
		       duration_seconds, created_by, active, created_at
		FROM `+r.qualified("tests")+`
		WHERE id = ? AND active = TRUE
	`)

	var row testRow
	if err := r.db.GetContext(ctx, &row, query, testID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.TestNotFound
		}
		return nil, fmt.Errorf("failed to load test: %w", err)
	}

	test := rowToTest(row)
	if err := r.loadQuestions(ctx, test); err != nil {
		return nil, err
	}
	return test, nil
}

func rowToTest(row testRow) *domain.Test {
	return &domain.Test{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Company:   row.Company,
		Key:       row.KeyHash,
		StartTime: row.StartTime,
		EndTime:   row.EndTime,
		Duration:  time.Duration(row.DurationSeconds) * time.Second,
		CreatedBy: row.CreatedBy,
		Active:    row.Active,
		CreatedAt: row.CreatedAt,
	}
}

func (r *TestRepository) loadQuestions(ctx context.Context, test *domain.Test) error {
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select("id", "name", "statement", "constraints", "predefined_structure").
		From("questions").
		Where("test_id = ?", test.ID).
		OrderBy("position", true).
		Build()

	var rows []questionRow
	if err := r.db.SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}

	test.Questions = make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		question := domain.Question{
			ID:                  row.ID,
			Name:                row.Name,
			Statement:           row.Statement,
			Constraints:         row.Constraints,
			PredefinedStructure: row.PredefinedStructure,
		}
		if err := r.loadTestCases(ctx, &question); err != nil {
			return err
		}
		test.Questions = append(test.Questions, question)
	}
	return nil
}

func (r *TestRepository) loadTestCases(ctx context.Context, question *domain.Question) error {
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select("id", "input", "expected", "command").
		From("test_cases").
		Where("question_id = ?", question.ID).
		OrderBy("position", true).
		Build()

	var rows []testCaseRow
	if err := r.db.SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		return fmt.Errorf("failed to load test cases: %w", err)
	}

	question.TestCases = make([]domain.TestCase, 0, len(rows))
	for _, row := range rows {
		var input []string
		if err := json.Unmarshal(row.Input, &input); err != nil {
			return fmt.Errorf("failed to unmarshal test case input: %w", err)
		}
		question.TestCases = append(question.TestCases, domain.TestCase{
			ID:       row.ID,
			Input:    input,
			Expected: row.Expected,
			Command:  row.Command,
		})
	}
	return nil
}

// FindQuestion retrieves one question of an active test.
func (r *TestRepository) FindQuestion(ctx context.Context, testID, questionID uuid.UUID) (*domain.Question, error) {
	query := sqlx.Rebind(sqlx.DOLLAR, `
		SELECT q.id, q.name, q.statement, q.constraints, q.predefined_structure
		FROM `+r.qualified("questions")+` q
		JOIN `+r.qualified("tests")+` t ON q.test_id = t.id
		WHERE q.id = ? AND t.id = ? AND t.active = TRUE
	`)

	var row questionRow
	if err := r.db.GetContext(ctx, &row, query, questionID, testID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.QuestionNotFound
		}
		return nil, fmt.Errorf("failed to load question: %w", err)
	}

	question := &domain.Question{
		ID:                  row.ID,
		Name:                row.Name,
		Statement:           row.Statement,
		Constraints:         row.Constraints,
		PredefinedStructure: row.PredefinedStructure,
	}
	if err := r.loadTestCases(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// Deactivate soft-deletes a test; committed results stay queryable.
func (r *TestRepository) Deactivate(ctx context.Context, testID uuid.UUID) error {
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Update("tests").
		Set("active", false).
		Where("id = ?", testID).
		Build()

	res, err := r.db.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	if err != nil {
		return fmt.Errorf("failed to deactivate test: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return errs.TestNotFound
	}
	return nil
}

// DeactivateExpired retires every active test whose window closed before the
// cutoff. Used by the background sweeper.
func (r *TestRepository) DeactivateExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Update("tests").
		Set("active", false).
		Where("active = TRUE").
		And("end_time <= ?", cutoff).
		Build()

	res, err := r.db.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired tests: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (r *TestRepository) qualified(table string) string {
	if r.schema == "" {
		return table
	}
	return r.schema + "." + table
}
