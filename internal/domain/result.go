package domain

import (
	"github.com/google/uuid"
)

// CandidateEntry is one candidate's committed score for a test.
// Entries are append-only; a score is never re-graded after submission.
type CandidateEntry struct {
	Name  string  `db:"name"`
	Email string  `db:"email"`
	Score float64 `db:"score"`
}

// Result is the persisted record of all candidates' scores for one test.
// There is exactly one Result per Test, created alongside the test itself.
// At most one CandidateEntry may exist per distinct email.
type Result struct {
	ID         uuid.UUID
	TestID     uuid.UUID
	TestKey    string
	CreatedBy  uuid.UUID
	Candidates []CandidateEntry
}

// NewResult creates the empty result record for a freshly created test.
func NewResult(testID uuid.UUID, testKey string, createdBy uuid.UUID) *Result {
	return &Result{
		ID:        uuid.New(),
		TestID:    testID,
		TestKey:   testKey,
		CreatedBy: createdBy,
	}
}

type ResultTable struct {
	ID        string
	TestID    string
	TestKey   string
	CreatedBy string
}

func GetResultTable() ResultTable {
	return ResultTable{
		ID:        "id",
		TestID:    "test_id",
		TestKey:   "test_key",
		CreatedBy: "created_by",
	}
}

func (ResultTable) TableName() string {
	return "results"
}

type CandidateTable struct {
	ResultID string
	Name     string
	Email    string
	Score    string
}

func GetCandidateTable() CandidateTable {
	return CandidateTable{
		ResultID: "result_id",
		Name:     "name",
		Email:    "email",
		Score:    "score",
	}
}

func (CandidateTable) TableName() string {
	return "result_candidates"
}
