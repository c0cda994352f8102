package domain

// OutcomeKind classifies the result of running one code snippet against one input.
type OutcomeKind string

const (
	// OutcomeProduced means the code ran to completion and produced output.
	OutcomeProduced OutcomeKind = "PRODUCED"
	// OutcomeRuntimeFailure means the code raised an error while running.
	OutcomeRuntimeFailure OutcomeKind = "RUNTIME_FAILURE"
	// OutcomeTimedOut means the code exceeded its wall-clock budget.
	OutcomeTimedOut OutcomeKind = "TIMED_OUT"
	// OutcomeUnavailable means the execution backend itself failed; this is
	// infrastructure, not candidate code.
	OutcomeUnavailable OutcomeKind = "BACKEND_UNAVAILABLE"
)

// Outcome is the typed result of one execution. No language-level error ever
// crosses the backend boundary in any other shape.
type Outcome struct {
	Kind       OutcomeKind
	Output     string
	Diagnostic string
}

func Produced(output string) *Outcome {
	return &Outcome{Kind: OutcomeProduced, Output: output}
}

func RuntimeFailure(diagnostic string) *Outcome {
	return &Outcome{Kind: OutcomeRuntimeFailure, Diagnostic: diagnostic}
}

func TimedOut() *Outcome {
	return &Outcome{Kind: OutcomeTimedOut}
}

func Unavailable(diagnostic string) *Outcome {
	return &Outcome{Kind: OutcomeUnavailable, Diagnostic: diagnostic}
}

// QuestionResult is the per-test-case verdict sequence for one question.
// When the candidate code cannot be loaded at all, LoadFailure carries the
// diagnostic, every case is false, and scoring treats the question exactly
// like one that failed every case.
type QuestionResult struct {
	Passed      []bool
	LoadFailure string
	// Unavailable counts how many cases failed because the backend itself was
	// unreachable rather than because the candidate code was wrong.
	Unavailable int
}

// AllPassed reports whether every test case of the question passed.
func (r QuestionResult) AllPassed() bool {
	if len(r.Passed) == 0 {
		return false
	}
	for _, ok := range r.Passed {
		if !ok {
			return false
		}
	}
	return true
}

// Program is one candidate code blob plus the language it must run under.
type Program struct {
	Language string
	Version  string
	Code     string
	// Command is the authored expression invoking the candidate's entry point,
	// with "args" bound to the test case input, e.g. "add(args[0], args[1])".
	Command string
}
