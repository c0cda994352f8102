// Package runner evaluates one question's candidate code against its
// hidden test cases.
package runner

import (
	"context"
	"time"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/core/services/comparator"
	"gitlab.com/assess-2025.net/internal/domain"
)

// Runner drives the execution backend per test case and judges each output.
type Runner struct {
	executor       secondary.CodeExecutor
	perCaseTimeout time.Duration
	logger         primary.Logger
}

// New creates a runner with a fixed per-test-case timeout.
func New(executor secondary.CodeExecutor, perCaseTimeout time.Duration, logger primary.Logger) *Runner {
	return &Runner{
		executor:       executor,
		perCaseTimeout: perCaseTimeout,
		logger:         logger,
	}
}

// RunQuestion loads the candidate code once and invokes it per test case.
// The loaded program is private to this call: candidate state may carry
// across the question's test cases but is discarded before returning, so
// nothing leaks across questions or candidates.
//
// A code blob that cannot be loaded at all fails every test case; the load
// diagnostic is kept for logs but scoring never sees it as a distinct state.
// TimedOut, RuntimeFailure and Unavailable outcomes fail only the test case
// they occurred on.
func (r *Runner) RunQuestion(ctx context.Context, question *domain.Question, program domain.Program) domain.QuestionResult {
	result := domain.QuestionResult{Passed: make([]bool, len(question.TestCases))}

	loaded, err := r.executor.Load(ctx, program)
	if err != nil {
		r.logger.Warn("Candidate code failed to load",
			"questionId", question.ID,
			"error", err)
		result.LoadFailure = err.Error()
		return result
	}
	defer loaded.Close()

	for i, tc := range question.TestCases {
		outcome := loaded.Invoke(ctx, domain.Tokenize(tc.Input), r.perCaseTimeout)
		switch outcome.Kind {
		case domain.OutcomeProduced:
			result.Passed[i] = comparator.EqualRaw(outcome.Output, tc.Expected)
		case domain.OutcomeUnavailable:
			result.Unavailable++
			r.logger.Error("Execution backend unavailable for test case",
				"questionId", question.ID,
				"testCaseId", tc.ID,
				"diagnostic", outcome.Diagnostic)
		case domain.OutcomeTimedOut:
			r.logger.Debug("Test case timed out",
				"questionId", question.ID,
				"testCaseId", tc.ID)
		case domain.OutcomeRuntimeFailure:
			r.logger.Debug("Test case raised a runtime failure",
				"questionId", question.ID,
				"testCaseId", tc.ID,
				"diagnostic", outcome.Diagnostic)
		}
	}
	return result
}
