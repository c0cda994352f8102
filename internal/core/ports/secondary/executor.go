package secondary

import (
	"context"
	"time"

	"gitlab.com/assess-2025.net/internal/domain"
)

// LoadedProgram is one candidate code blob loaded into a fresh execution
// context. The context is private to a single question evaluation; candidate
// state may persist across Invoke calls within it, never beyond Close.
type LoadedProgram interface {
	// Invoke runs the program's entry point against one test case input.
	// It never returns a language-level error: every failure mode surfaces
	// as a typed Outcome, and it never blocks past the given timeout.
	Invoke(ctx context.Context, input []domain.Token, timeout time.Duration) *domain.Outcome

	// Close discards the execution context and any state the candidate
	// code accumulated.
	Close()
}

// CodeExecutor loads candidate code for evaluation. A program is loaded once
// per question, not once per test case.
type CodeExecutor interface {
	Load(ctx context.Context, program domain.Program) (LoadedProgram, error)
}

// SourceFile is one file sent to the remote sandbox.
type SourceFile struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

// SandboxRunner is the raw interface to the remote execution service: one
// batch of source files in, captured output text out. Transport failures and
// malformed responses come back as errors, never as fabricated output.
type SandboxRunner interface {
	RunFiles(ctx context.Context, language, version string, files []SourceFile) (string, error)
}
