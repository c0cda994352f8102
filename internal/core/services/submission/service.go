package submission

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/assess-2025.net/internal/domain"
)

// ISubmissionService is the top-level submission evaluation orchestrator.
type ISubmissionService interface {
	// Submit evaluates a candidate's full attempt and commits exactly one
	// result entry. A candidate can never end up with more than one entry
	// per test, no matter how many concurrent attempts they race.
	Submit(ctx context.Context, sub *domain.Submission) (*domain.CandidateEntry, error)

	// RunTestCases evaluates a single question's code against its test
	// cases without persisting anything.
	RunTestCases(ctx context.Context, testID, questionID uuid.UUID, code string) ([]bool, error)

	// SubmitScored appends one pre-scored candidate entry to a test's
	// result, enforcing the same one-entry-per-email rule.
	SubmitScored(ctx context.Context, testID uuid.UUID, entry domain.CandidateEntry) error
}

// QuestionRunner evaluates one question's code. Satisfied by runner.Runner.
type QuestionRunner interface {
	RunQuestion(ctx context.Context, question *domain.Question, program domain.Program) domain.QuestionResult
}
