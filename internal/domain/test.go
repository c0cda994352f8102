package domain

import (
	"time"

	"github.com/google/uuid"
)

// TestCase is one hidden input/expected-output pair used to judge a Question.
// Input arity is fixed at authoring time and not revalidated at evaluation time.
type TestCase struct {
	ID       uuid.UUID
	Input    []string
	Expected string
	// Command is the authored invocation hint, e.g. "add(args[0], args[1])".
	Command string
}

// Question is a single coding problem with its hidden test cases.
type Question struct {
	ID          uuid.UUID
	Name        string
	Statement   string
	Constraints string
	// PredefinedStructure is the code scaffold candidates fill in.
	PredefinedStructure string
	TestCases           []TestCase
}

// Test is a timed assessment containing one or more questions.
type Test struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Company   string
	Key       string
	Questions []Question
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	CreatedBy uuid.UUID
	Active    bool
	CreatedAt time.Time
}

// Question returns the question with the given ID, or nil.
func (t *Test) Question(id uuid.UUID) *Question {
	for i := range t.Questions {
		if t.Questions[i].ID == id {
			return &t.Questions[i]
		}
	}
	return nil
}

// Open reports whether the test accepts attempts at the given instant.
// The window is [StartTime, EndTime).
func (t *Test) Open(at time.Time) bool {
	return !at.Before(t.StartTime) && at.Before(t.EndTime)
}
