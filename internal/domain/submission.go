package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Candidate identifies the person submitting code. Name and email together
// identify a candidate uniquely within one test.
type Candidate struct {
	Name  string
	Email string
}

// NormalizedEmail returns the email in the canonical form used for
// the one-entry-per-email idempotency check.
func (c Candidate) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(c.Email))
}

// Answer is one candidate code blob for one question.
type Answer struct {
	QuestionID uuid.UUID
	Code       string
}

// Submission is a candidate's full attempt at a test. It exists only for the
// duration of one evaluation call and is never persisted directly.
type Submission struct {
	TestID      uuid.UUID
	Candidate   Candidate
	Answers     []Answer
	SubmittedAt time.Time
}

// NewSubmission creates a submission stamped with the current time.
func NewSubmission(testID uuid.UUID, candidate Candidate, answers []Answer) *Submission {
	return &Submission{
		TestID:      testID,
		Candidate:   candidate,
		Answers:     answers,
		SubmittedAt: time.Now(),
	}
}

// Validate reports whether the submission carries the fields evaluation
// requires. At most one answer may target any given question.
func (s *Submission) Validate() bool {
	if s.TestID == uuid.Nil || s.Candidate.Name == "" || s.Candidate.Email == "" {
		return false
	}
	if len(s.Answers) == 0 {
		return false
	}
	seen := make(map[uuid.UUID]bool, len(s.Answers))
	for _, a := range s.Answers {
		if a.QuestionID == uuid.Nil || strings.TrimSpace(a.Code) == "" {
			return false
		}
		if seen[a.QuestionID] {
			return false
		}
		seen[a.QuestionID] = true
	}
	return true
}

// Principal is the resolved identity of an authenticated platform user,
// supplied by the identity collaborator. The engine never performs the
// authentication check itself.
type Principal struct {
	ID   uuid.UUID
	Role string
}

const (
	RoleAdmin = "admin"
	RoleOwner = "owner"
)
