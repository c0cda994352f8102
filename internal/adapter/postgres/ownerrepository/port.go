package ownerrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/domain"
	"gitlab.com/assess-2025.net/internal/static/errs"
	querybuilder "gitlab.com/assess-2025.net/internal/utils"
)

var _ secondary.OwnerRepository = (*OwnerRepository)(nil)

// OwnerRepository implements the OwnerRepository interface with PostgreSQL.
type OwnerRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

// New creates a new PostgreSQL owner repository.
func New(db *sqlx.DB, logger primary.Logger, schema string) *OwnerRepository {
	return &OwnerRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

// Create inserts a new owner account. The unique index on email turns a
// duplicate registration into errs.EmailTaken.
func (r *OwnerRepository) Create(ctx context.Context, owner *domain.Owner) error {
	tbl := domain.GetOwnerTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Insert(tbl.ID, tbl.Name, tbl.Email, tbl.PasswordHash, tbl.Role, tbl.CreatedAt).
		Into(tbl.TableName()).
		Values(owner.ID, owner.Name, owner.Email, owner.PasswordHash, owner.Role, owner.CreatedAt).
		Build()

	query = sqlx.Rebind(sqlx.DOLLAR, query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return errs.EmailTaken
		}
		r.logger.Error("Failed to create owner", "email", owner.Email, "error", err)
		return fmt.Errorf("failed to create owner: %w", err)
	}
	return nil
}

// FindByEmail returns (nil, nil) when no account exists for the email.
func (r *OwnerRepository) FindByEmail(ctx context.Context, email string) (*domain.Owner, error) {
	tbl := domain.GetOwnerTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(tbl.ID, tbl.Name, tbl.Email, tbl.PasswordHash, tbl.Role, tbl.CreatedAt).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.Email), email).
		Build()

	var owner domain.Owner
	if err := r.db.GetContext(ctx, &owner, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}
	return &owner, nil
}
