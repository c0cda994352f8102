package submission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"gitlab.com/assess-2025.net/internal/adapter/logging"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/domain"
	"gitlab.com/assess-2025.net/internal/static/errs"
)

type fakeTestRepo struct {
	test *domain.Test
}

func (f *fakeTestRepo) Create(ctx context.Context, test *domain.Test) error { return nil }

func (f *fakeTestRepo) FindByID(ctx context.Context, testID uuid.UUID) (*domain.Test, error) {
	if f.test == nil || f.test.ID != testID {
		return nil, errs.TestNotFound
	}
	return f.test, nil
}

func (f *fakeTestRepo) FindQuestion(ctx context.Context, testID, questionID uuid.UUID) (*domain.Question, error) {
	test, err := f.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if q := test.Question(questionID); q != nil {
		return q, nil
	}
	return nil, errs.QuestionNotFound
}

func (f *fakeTestRepo) Deactivate(ctx context.Context, testID uuid.UUID) error { return nil }

func (f *fakeTestRepo) DeactivateExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// fakeResultRepo simulates the store's atomic append-if-absent primitive with
// a mutex so concurrent submitters genuinely interleave.
type fakeResultRepo struct {
	mu      sync.Mutex
	entries map[string]domain.CandidateEntry
	// preCheckHook runs inside FindCandidate to widen the TOCTOU window.
	preCheckHook func()
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{entries: map[string]domain.CandidateEntry{}}
}

func (f *fakeResultRepo) CreateForTest(ctx context.Context, result *domain.Result) error { return nil }

func (f *fakeResultRepo) FindByTestID(ctx context.Context, testID uuid.UUID) (*domain.Result, error) {
	return nil, errs.ResultNotFound
}

func (f *fakeResultRepo) FindCandidate(ctx context.Context, testID uuid.UUID, email string) (*domain.CandidateEntry, error) {
	if f.preCheckHook != nil {
		f.preCheckHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry, ok := f.entries[testID.String()+email]; ok {
		return &entry, nil
	}
	return nil, nil
}

func (f *fakeResultRepo) AppendCandidateIfAbsent(ctx context.Context, testID uuid.UUID, entry domain.CandidateEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := testID.String() + entry.Email
	if _, ok := f.entries[key]; ok {
		return errs.PersistenceConflict
	}
	f.entries[key] = entry
	return nil
}

func (f *fakeResultRepo) FindAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Result, error) {
	return nil, nil
}

func (f *fakeResultRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// noopLock accepts every reservation, leaving the store as the only guard.
type noopLock struct{}

func (noopLock) Reserve(ctx context.Context, testID uuid.UUID, email string) (bool, error) {
	return true, nil
}

func (noopLock) Release(ctx context.Context, testID uuid.UUID, email string) error { return nil }

type countingLock struct {
	mu       sync.Mutex
	held     map[string]bool
	releases int
}

func newCountingLock() *countingLock {
	return &countingLock{held: map[string]bool{}}
}

func (l *countingLock) Reserve(ctx context.Context, testID uuid.UUID, email string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := testID.String() + email
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *countingLock) Release(ctx context.Context, testID uuid.UUID, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, testID.String()+email)
	l.releases++
	return nil
}

// scriptedRunner returns canned verdicts keyed by question name.
type scriptedRunner struct {
	mu       sync.Mutex
	verdicts map[string]domain.QuestionResult
	calls    int
	block    bool
}

func (r *scriptedRunner) RunQuestion(ctx context.Context, question *domain.Question, program domain.Program) domain.QuestionResult {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.block {
		<-ctx.Done()
		return domain.QuestionResult{Passed: make([]bool, len(question.TestCases))}
	}
	return r.verdicts[question.Name]
}

func (r *scriptedRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func twoQuestionTest() *domain.Test {
	return &domain.Test{
		ID:        uuid.New(),
		Name:      "backend screen",
		Active:    true,
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
		Questions: []domain.Question{
			{
				ID:   uuid.New(),
				Name: "alpha",
				TestCases: []domain.TestCase{
					{Input: []string{"1"}, Expected: "1", Command: "id(args[0])"},
					{Input: []string{"2"}, Expected: "2", Command: "id(args[0])"},
					{Input: []string{"3"}, Expected: "3", Command: "id(args[0])"},
				},
			},
			{
				ID:   uuid.New(),
				Name: "beta",
				TestCases: []domain.TestCase{
					{Input: []string{"1"}, Expected: "2", Command: "inc(args[0])"},
					{Input: []string{"2"}, Expected: "3", Command: "inc(args[0])"},
					{Input: []string{"3"}, Expected: "4", Command: "inc(args[0])"},
				},
			},
		},
	}
}

func submissionFor(test *domain.Test, email string) *domain.Submission {
	answers := make([]domain.Answer, 0, len(test.Questions))
	for _, q := range test.Questions {
		answers = append(answers, domain.Answer{QuestionID: q.ID, Code: "function id(x){return x}"})
	}
	return domain.NewSubmission(test.ID, domain.Candidate{Name: "Ada", Email: email}, answers)
}

func newService(test *domain.Test, repo *fakeResultRepo, lock secondary.SubmissionLock, r QuestionRunner) *SubmissionService {
	return NewSubmissionService(
		&fakeTestRepo{test: test},
		repo,
		lock,
		r,
		Config{Language: "javascript", Version: "18.15.0", OverallDeadline: 200 * time.Millisecond},
		logging.NewDevelopmentLogger(),
	)
}

func TestSubmitFullCreditRule(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	repo := newFakeResultRepo()
	r := &scriptedRunner{verdicts: map[string]domain.QuestionResult{
		"alpha": {Passed: []bool{true, true, true}},
		"beta":  {Passed: []bool{true, true, false}},
	}}
	svc := newService(test, repo, noopLock{}, r)

	entry, err := svc.Submit(context.Background(), submissionFor(test, "ada@example.com"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if entry.Score != 50.0 {
		t.Errorf("score = %v, want 50.0 (no partial credit)", entry.Score)
	}
	if repo.count() != 1 {
		t.Errorf("committed entries = %d, want 1", repo.count())
	}
}

func TestSubmitDuplicateAnswerRejected(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	repo := newFakeResultRepo()
	r := &scriptedRunner{verdicts: map[string]domain.QuestionResult{
		"alpha": {Passed: []bool{true, true, true}},
	}}
	svc := newService(test, repo, noopLock{}, r)

	// Two answers for the easy question, none for the hard one.
	easy := test.Questions[0].ID
	sub := domain.NewSubmission(test.ID, domain.Candidate{Name: "Ada", Email: "ada@example.com"}, []domain.Answer{
		{QuestionID: easy, Code: "function id(x){return x}"},
		{QuestionID: easy, Code: "function id(x){return x}"},
	})

	_, err := svc.Submit(context.Background(), sub)
	if !errors.Is(err, errs.InvalidRequest) {
		t.Fatalf("Submit() error = %v, want InvalidRequest", err)
	}
	if r.callCount() != 0 {
		t.Errorf("runner ran %d times for a rejected submission, want 0", r.callCount())
	}
	if repo.count() != 0 {
		t.Errorf("committed entries = %d, want 0", repo.count())
	}
}

func TestSubmitOmittedQuestionScoresZero(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	repo := newFakeResultRepo()
	r := &scriptedRunner{verdicts: map[string]domain.QuestionResult{
		"alpha": {Passed: []bool{true, true, true}},
	}}
	svc := newService(test, repo, noopLock{}, r)

	// Only the first of two questions is answered; a perfect answer to it
	// is still worth half the test.
	sub := domain.NewSubmission(test.ID, domain.Candidate{Name: "Ada", Email: "ada@example.com"}, []domain.Answer{
		{QuestionID: test.Questions[0].ID, Code: "function id(x){return x}"},
	})

	entry, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if entry.Score != 50.0 {
		t.Errorf("score = %v, want 50.0 (denominator is the test's question count)", entry.Score)
	}
}

func TestSubmitDuplicateShortCircuits(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	repo := newFakeResultRepo()
	repo.entries[test.ID.String()+"ada@example.com"] = domain.CandidateEntry{Email: "ada@example.com", Score: 70}
	r := &scriptedRunner{verdicts: map[string]domain.QuestionResult{}}
	svc := newService(test, repo, noopLock{}, r)

	_, err := svc.Submit(context.Background(), submissionFor(test, "Ada@Example.com"))
	if !errors.Is(err, errs.DuplicateSubmission) {
		t.Fatalf("Submit() error = %v, want DuplicateSubmission", err)
	}
	if r.callCount() != 0 {
		t.Errorf("runner ran %d times for a rejected submission, want 0", r.callCount())
	}
	if repo.count() != 1 {
		t.Errorf("committed entries = %d, want the original 1", repo.count())
	}
}

func TestSubmitAfterWindowCloses(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	test.StartTime = time.Now().Add(-2 * time.Hour)
	test.EndTime = time.Now().Add(-time.Hour)
	repo := newFakeResultRepo()
	r := &scriptedRunner{verdicts: map[string]domain.QuestionResult{}}
	svc := newService(test, repo, noopLock{}, r)

	_, err := svc.Submit(context.Background(), submissionFor(test, "ada@example.com"))
	if !errors.Is(err, errs.TestOver) {
		t.Fatalf("Submit() error = %v, want TestOver", err)
	}
	if r.callCount() != 0 {
		t.Errorf("runner ran %d times after the window closed, want 0", r.callCount())
	}
}

func TestSubmitConcurrentRace(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	repo := newFakeResultRepo()
	barrier := make(chan struct{})
	repo.preCheckHook = func() { <-barrier }
	r := &scriptedRunner{verdicts: map[string]domain.QuestionResult{
		"alpha": {Passed: []bool{true, true, true}},
		"beta":  {Passed: []bool{true, true, true}},
	}}
	svc := newService(test, repo, noopLock{}, r)

	const attempts = 8
	errsCh := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), submissionFor(test, "ada@example.com"))
			errsCh <- err
		}()
	}
	close(barrier)
	wg.Wait()
	close(errsCh)

	succeeded, rejected := 0, 0
	for err := range errsCh {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, errs.DuplicateSubmission), errors.Is(err, errs.PersistenceConflict):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("successful submissions = %d, want exactly 1", succeeded)
	}
	if rejected != attempts-1 {
		t.Errorf("rejected submissions = %d, want %d", rejected, attempts-1)
	}
	if repo.count() != 1 {
		t.Errorf("committed entries = %d, want exactly 1", repo.count())
	}
}

func TestSubmitOverallDeadline(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	repo := newFakeResultRepo()
	lock := newCountingLock()
	r := &scriptedRunner{block: true}
	svc := newService(test, repo, lock, r)

	start := time.Now()
	_, err := svc.Submit(context.Background(), submissionFor(test, "ada@example.com"))
	if !errors.Is(err, errs.EvaluationTimeout) {
		t.Fatalf("Submit() error = %v, want EvaluationTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("deadline not enforced, took %v", elapsed)
	}
	if repo.count() != 0 {
		t.Error("a partial score was committed after a blown deadline")
	}
	if lock.releases != 1 {
		t.Errorf("reservation releases = %d, want 1 so the candidate may retry", lock.releases)
	}
}

func TestSubmitSystemicOutage(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	repo := newFakeResultRepo()
	lock := newCountingLock()
	r := &scriptedRunner{verdicts: map[string]domain.QuestionResult{
		"alpha": {Passed: []bool{false, false, false}, Unavailable: 3},
		"beta":  {Passed: []bool{false, false, false}, Unavailable: 3},
	}}
	svc := newService(test, repo, lock, r)

	_, err := svc.Submit(context.Background(), submissionFor(test, "ada@example.com"))
	if !errors.Is(err, errs.BackendUnavailable) {
		t.Fatalf("Submit() error = %v, want BackendUnavailable", err)
	}
	if repo.count() != 0 {
		t.Error("an infrastructure outage was committed as a zero score")
	}
	if lock.releases != 1 {
		t.Errorf("reservation releases = %d, want 1", lock.releases)
	}
}

func TestSubmitPartialOutageStillScores(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	repo := newFakeResultRepo()
	r := &scriptedRunner{verdicts: map[string]domain.QuestionResult{
		"alpha": {Passed: []bool{true, true, true}},
		"beta":  {Passed: []bool{false, false, false}, Unavailable: 3},
	}}
	svc := newService(test, repo, noopLock{}, r)

	entry, err := svc.Submit(context.Background(), submissionFor(test, "ada@example.com"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if entry.Score != 50.0 {
		t.Errorf("score = %v, want 50.0", entry.Score)
	}
}

func TestSubmitInvalidRequests(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	svc := newService(test, newFakeResultRepo(), noopLock{}, &scriptedRunner{})

	tests := []struct {
		name string
		sub  *domain.Submission
	}{
		{name: "nil submission", sub: nil},
		{name: "missing email", sub: domain.NewSubmission(test.ID, domain.Candidate{Name: "Ada"}, []domain.Answer{{QuestionID: test.Questions[0].ID, Code: "x"}})},
		{name: "no answers", sub: domain.NewSubmission(test.ID, domain.Candidate{Name: "Ada", Email: "a@b.c"}, nil)},
		{name: "unknown question", sub: domain.NewSubmission(test.ID, domain.Candidate{Name: "Ada", Email: "a@b.c"}, []domain.Answer{{QuestionID: uuid.New(), Code: "x"}})},
		{name: "blank code", sub: domain.NewSubmission(test.ID, domain.Candidate{Name: "Ada", Email: "a@b.c"}, []domain.Answer{{QuestionID: test.Questions[0].ID, Code: "  "}})},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.Submit(context.Background(), tt.sub); !errors.Is(err, errs.InvalidRequest) {
				t.Errorf("Submit() error = %v, want InvalidRequest", err)
			}
		})
	}
}

func TestSubmitDeterministicScore(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	r := &scriptedRunner{verdicts: map[string]domain.QuestionResult{
		"alpha": {Passed: []bool{true, true, true}},
		"beta":  {Passed: []bool{false, true, true}},
	}}

	var scores []float64
	for i := 0; i < 5; i++ {
		repo := newFakeResultRepo()
		svc := newService(test, repo, noopLock{}, r)
		entry, err := svc.Submit(context.Background(), submissionFor(test, "ada@example.com"))
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		scores = append(scores, entry.Score)
	}
	for _, s := range scores {
		if s != scores[0] {
			t.Fatalf("scores varied across identical evaluations: %v", scores)
		}
	}
}

func TestRunTestCases(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	r := &scriptedRunner{verdicts: map[string]domain.QuestionResult{
		"alpha": {Passed: []bool{true, false, true}},
	}}
	svc := newService(test, newFakeResultRepo(), noopLock{}, r)

	got, err := svc.RunTestCases(context.Background(), test.ID, test.Questions[0].ID, "code")
	if err != nil {
		t.Fatalf("RunTestCases() error = %v", err)
	}
	want := []bool{true, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("verdicts = %v, want %v", got, want)
		}
	}

	if _, err := svc.RunTestCases(context.Background(), test.ID, uuid.New(), "code"); !errors.Is(err, errs.QuestionNotFound) {
		t.Errorf("unknown question error = %v, want QuestionNotFound", err)
	}
}

func TestSubmitScored(t *testing.T) {
	t.Parallel()
	test := twoQuestionTest()
	repo := newFakeResultRepo()
	svc := newService(test, repo, noopLock{}, &scriptedRunner{})

	entry := domain.CandidateEntry{Name: "Ada", Email: "Ada@Example.com", Score: 87.5}
	if err := svc.SubmitScored(context.Background(), test.ID, entry); err != nil {
		t.Fatalf("SubmitScored() error = %v", err)
	}
	if err := svc.SubmitScored(context.Background(), test.ID, entry); !errors.Is(err, errs.DuplicateSubmission) {
		t.Errorf("second SubmitScored() error = %v, want DuplicateSubmission", err)
	}
	if repo.count() != 1 {
		t.Errorf("committed entries = %d, want 1", repo.count())
	}
}
