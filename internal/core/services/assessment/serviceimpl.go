package assessment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/domain"
	"gitlab.com/assess-2025.net/internal/static/errs"
)

var _ IAssessmentService = (*AssessmentService)(nil)

// AssessmentService implements the IAssessmentService interface.
type AssessmentService struct {
	testRepo   secondary.TestRepository
	resultRepo secondary.ResultRepository
	attempts   secondary.AttemptTracker
	identity   primary.IdentityService
	logger     primary.Logger
}

// NewAssessmentService creates a new assessment service.
func NewAssessmentService(
	testRepo secondary.TestRepository,
	resultRepo secondary.ResultRepository,
	attempts secondary.AttemptTracker,
	identity primary.IdentityService,
	logger primary.Logger,
) *AssessmentService {
	return &AssessmentService{
		testRepo:   testRepo,
		resultRepo: resultRepo,
		attempts:   attempts,
		identity:   identity,
		logger:     logger,
	}
}

// CreateTest stores the test and its empty result record. The access key is
// returned exactly once; only its hash is persisted.
func (s *AssessmentService) CreateTest(ctx context.Context, principal domain.Principal, test *domain.Test) (string, error) {
	if err := validateTest(test); err != nil {
		return "", err
	}

	test.ID = uuid.New()
	test.CreatedBy = principal.ID
	test.Active = true
	test.CreatedAt = time.Now()
	for i := range test.Questions {
		test.Questions[i].ID = uuid.New()
		for j := range test.Questions[i].TestCases {
			test.Questions[i].TestCases[j].ID = uuid.New()
		}
	}

	accessKey := newAccessKey()
	keyHash, err := s.identity.HashKey(ctx, accessKey)
	if err != nil {
		return "", fmt.Errorf("failed to hash access key: %w", err)
	}
	test.Key = keyHash

	if err := s.testRepo.Create(ctx, test); err != nil {
		return "", fmt.Errorf("failed to create test: %w", err)
	}
	if err := s.resultRepo.CreateForTest(ctx, domain.NewResult(test.ID, keyHash, principal.ID)); err != nil {
		return "", fmt.Errorf("failed to create result record: %w", err)
	}

	s.logger.Info("Test created", "testId", test.ID, "owner", principal.ID)
	return accessKey, nil
}

// StartTest enforces the attempt window and the access key before handing
// the questions to a candidate, and starts the candidate's attempt clock.
// Re-entering a started test resumes the running clock instead of resetting
// it.
func (s *AssessmentService) StartTest(ctx context.Context, testID uuid.UUID, accessKey, email string, at time.Time) (*domain.Test, time.Duration, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, 0, errs.InvalidRequest
	}

	test, err := s.testRepo.FindByID(ctx, testID)
	if err != nil {
		return nil, 0, err
	}

	ok, err := s.identity.VerifyKey(ctx, test.Key, accessKey)
	if err != nil || !ok {
		return nil, 0, errs.NotOwner
	}

	if at.Before(test.StartTime) {
		return nil, 0, errs.TestNotStarted
	}
	if !test.Open(at) {
		return nil, 0, errs.TestOver
	}

	// The attempt budget never extends past the test window.
	budget := test.EndTime.Sub(at)
	if test.Duration > 0 && test.Duration < budget {
		budget = test.Duration
	}
	remaining, err := s.attempts.Begin(ctx, testID, email, budget)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to start attempt: %w", err)
	}
	if remaining <= 0 {
		return nil, 0, errs.TestOver
	}
	return test, remaining, nil
}

// DeleteTest soft-deletes; the test's result and committed scores survive.
func (s *AssessmentService) DeleteTest(ctx context.Context, principal domain.Principal, testID uuid.UUID) error {
	test, err := s.testRepo.FindByID(ctx, testID)
	if err != nil {
		return err
	}
	if test.CreatedBy != principal.ID && principal.Role != domain.RoleAdmin {
		return errs.NotOwner
	}
	return s.testRepo.Deactivate(ctx, testID)
}

func (s *AssessmentService) GetResult(ctx context.Context, principal domain.Principal, testID uuid.UUID) (*domain.Result, error) {
	result, err := s.resultRepo.FindByTestID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if result.CreatedBy != principal.ID && principal.Role != domain.RoleAdmin {
		return nil, errs.NotOwner
	}
	return result, nil
}

func (s *AssessmentService) ListMyResults(ctx context.Context, principal domain.Principal) ([]*domain.Result, error) {
	return s.resultRepo.FindAllByOwner(ctx, principal.ID)
}

func validateTest(test *domain.Test) error {
	if test == nil || strings.TrimSpace(test.Name) == "" {
		return errs.InvalidRequest
	}
	if len(test.Questions) == 0 {
		return errs.InvalidRequest
	}
	for _, q := range test.Questions {
		if len(q.TestCases) == 0 {
			return errs.InvalidRequest
		}
	}
	if !test.EndTime.After(test.StartTime) {
		return errs.InvalidRequest
	}
	return nil
}

func newAccessKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}
