package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/core/services/scoring"
	"gitlab.com/assess-2025.net/internal/domain"
	"gitlab.com/assess-2025.net/internal/static/errs"
)

var _ ISubmissionService = (*SubmissionService)(nil)

// Config carries the evaluation parameters for one deployment.
type Config struct {
	// Language and Version select the sandbox runtime for candidate code.
	Language string
	Version  string
	// OverallDeadline bounds one whole submission evaluation.
	OverallDeadline time.Duration
}

// SubmissionService implements the ISubmissionService interface.
type SubmissionService struct {
	testRepo   secondary.TestRepository
	resultRepo secondary.ResultRepository
	lock       secondary.SubmissionLock
	runner     QuestionRunner
	cfg        Config
	logger     primary.Logger
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(
	testRepo secondary.TestRepository,
	resultRepo secondary.ResultRepository,
	lock secondary.SubmissionLock,
	runner QuestionRunner,
	cfg Config,
	logger primary.Logger,
) *SubmissionService {
	return &SubmissionService{
		testRepo:   testRepo,
		resultRepo: resultRepo,
		lock:       lock,
		runner:     runner,
		cfg:        cfg,
		logger:     logger,
	}
}

// Submit runs the full check-reserve-evaluate-commit sequence.
//
// The duplicate check and the Redis reservation short-circuit before any
// sandbox work, so a rejected submission never burns executor capacity. The
// reservation narrows the check-then-commit window; the store's atomic
// append-if-absent closes it entirely.
func (s *SubmissionService) Submit(ctx context.Context, sub *domain.Submission) (*domain.CandidateEntry, error) {
	if sub == nil || !sub.Validate() {
		return nil, errs.InvalidRequest
	}
	email := sub.Candidate.NormalizedEmail()

	test, err := s.testRepo.FindByID(ctx, sub.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test: %w", err)
	}
	if !test.Open(time.Now()) {
		return nil, errs.TestOver
	}

	questions := make([]*domain.Question, len(sub.Answers))
	for i, answer := range sub.Answers {
		q := test.Question(answer.QuestionID)
		if q == nil {
			return nil, errs.InvalidRequest
		}
		questions[i] = q
	}

	existing, err := s.resultRepo.FindCandidate(ctx, sub.TestID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check for an existing entry: %w", err)
	}
	if existing != nil {
		return nil, errs.DuplicateSubmission
	}

	reserved, err := s.lock.Reserve(ctx, sub.TestID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve submission slot: %w", err)
	}
	if !reserved {
		return nil, errs.DuplicateSubmission
	}

	results, err := s.evaluate(ctx, sub, questions)
	if err != nil {
		// The candidate may retry after a failed evaluation.
		if relErr := s.lock.Release(context.WithoutCancel(ctx), sub.TestID, email); relErr != nil {
			s.logger.Warn("Failed to release submission reservation",
				"testId", sub.TestID, "email", email, "error", relErr)
		}
		return nil, err
	}

	// Questions the candidate never answered count as failed: the score
	// denominator is always the test's full question count.
	for len(results) < len(test.Questions) {
		results = append(results, domain.QuestionResult{})
	}

	entry := domain.CandidateEntry{
		Name:  sub.Candidate.Name,
		Email: email,
		Score: scoring.Score(results),
	}

	if err := s.resultRepo.AppendCandidateIfAbsent(ctx, sub.TestID, entry); err != nil {
		if errors.Is(err, errs.PersistenceConflict) {
			s.logger.Warn("Concurrent submission won the commit race",
				"testId", sub.TestID, "email", email)
			return nil, errs.PersistenceConflict
		}
		if relErr := s.lock.Release(context.WithoutCancel(ctx), sub.TestID, email); relErr != nil {
			s.logger.Warn("Failed to release submission reservation",
				"testId", sub.TestID, "email", email, "error", relErr)
		}
		return nil, fmt.Errorf("failed to commit result entry: %w", err)
	}

	s.logger.Info("Submission committed",
		"testId", sub.TestID,
		"email", email,
		"score", entry.Score)
	return &entry, nil
}

// evaluate fans out one goroutine per question and waits for all of them.
// No question evaluation ever outlives the submission: a blown overall
// deadline cancels the remaining backend calls and fails the whole attempt.
func (s *SubmissionService) evaluate(ctx context.Context, sub *domain.Submission, questions []*domain.Question) ([]domain.QuestionResult, error) {
	evalCtx, cancel := context.WithTimeout(ctx, s.cfg.OverallDeadline)
	defer cancel()

	results := make([]domain.QuestionResult, len(questions))
	var wg sync.WaitGroup
	for i := range questions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := questions[i]
			program := domain.Program{
				Language: s.cfg.Language,
				Version:  s.cfg.Version,
				Code:     sub.Answers[i].Code,
				Command:  q.TestCases[0].Command,
			}
			results[i] = s.runner.RunQuestion(evalCtx, q, program)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if evalCtx.Err() != nil {
		return nil, errs.EvaluationTimeout
	}

	// Every single case failing on infrastructure means there is no signal
	// about the candidate's code at all; committing a zero would misgrade.
	if systemicOutage(results) {
		return nil, errs.BackendUnavailable
	}
	return results, nil
}

func systemicOutage(results []domain.QuestionResult) bool {
	total := 0
	unavailable := 0
	for _, r := range results {
		if r.LoadFailure != "" {
			continue
		}
		total += len(r.Passed)
		unavailable += r.Unavailable
	}
	return total > 0 && unavailable == total
}

// RunTestCases evaluates one question without touching the result store.
func (s *SubmissionService) RunTestCases(ctx context.Context, testID, questionID uuid.UUID, code string) ([]bool, error) {
	question, err := s.testRepo.FindQuestion(ctx, testID, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question: %w", err)
	}
	program := domain.Program{
		Language: s.cfg.Language,
		Version:  s.cfg.Version,
		Code:     code,
		Command:  question.TestCases[0].Command,
	}
	result := s.runner.RunQuestion(ctx, question, program)
	if result.Unavailable == len(question.TestCases) && result.LoadFailure == "" {
		return nil, errs.BackendUnavailable
	}
	return result.Passed, nil
}

// SubmitScored appends an externally scored entry, used by the per-question
// incremental submission path.
func (s *SubmissionService) SubmitScored(ctx context.Context, testID uuid.UUID, entry domain.CandidateEntry) error {
	candidate := domain.Candidate{Name: entry.Name, Email: entry.Email}
	if testID == uuid.Nil || candidate.Name == "" || candidate.Email == "" {
		return errs.InvalidRequest
	}
	entry.Email = candidate.NormalizedEmail()

	existing, err := s.resultRepo.FindCandidate(ctx, testID, entry.Email)
	if err != nil {
		return fmt.Errorf("failed to check for an existing entry: %w", err)
	}
	if existing != nil {
		return errs.DuplicateSubmission
	}
	return s.resultRepo.AppendCandidateIfAbsent(ctx, testID, entry)
}
