package domain

import (
	"time"

	"github.com/google/uuid"
)

// Owner is an account that creates tests and reads their results.
// Candidates never have accounts; they are identified by email only.
type Owner struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

func (o *Owner) Principal() Principal {
	return Principal{ID: o.ID, Role: o.Role}
}

type OwnerTable struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    string
}

func GetOwnerTable() OwnerTable {
	return OwnerTable{
		ID:           "id",
		Name:         "name",
		Email:        "email",
		PasswordHash: "password_hash",
		Role:         "role",
		CreatedAt:    "created_at",
	}
}

func (OwnerTable) TableName() string {
	return "owners"
}
