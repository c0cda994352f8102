// Package local executes scripts in an interpreter subprocess on the
// evaluator host. It is strictly an internal-tooling convenience for fully
// trusted code: there is no sandboxing here, so candidate submissions must
// always go through the remote sandbox client instead.
package local

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/domain"
)

var _ secondary.CodeExecutor = (*Runner)(nil)

const (
	readyMarker = "__LOADED__"
	errMarker   = "__FAULT__ "
)

// languageSpec knows how to start an interpreter and wrap a program into a
// line-oriented driver: one JSON input line per invocation, one output line
// back.
type languageSpec struct {
	argv    []string
	compose func(program domain.Program) string
}

// Runner implements the local restricted execution backend.
type Runner struct {
	languages   map[string]languageSpec
	loadTimeout time.Duration
	logger      primary.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLanguage registers or overrides an interpreter. compose receives the
// trusted program and must emit a driver script that prints the ready marker
// once loaded, then answers one line per input line.
func WithLanguage(name string, argv []string, compose func(domain.Program) string) Option {
	return func(r *Runner) {
		r.languages[name] = languageSpec{argv: argv, compose: compose}
	}
}

// WithLoadTimeout bounds how long Load waits for the interpreter to come up.
func WithLoadTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.loadTimeout = d
	}
}

// New creates a local runner with node and python3 interpreters preconfigured.
func New(logger primary.Logger, opts ...Option) *Runner {
	r := &Runner{
		languages: map[string]languageSpec{
			"javascript": {argv: []string{"node", "-e"}, compose: composeNode},
			"python":     {argv: []string{"python3", "-c"}, compose: composePython},
		},
		loadTimeout: 5 * time.Second,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load starts one interpreter process for the program and waits for its
// ready marker. A process that exits or stays silent instead is a load
// failure carrying whatever the interpreter wrote to stderr.
func (r *Runner) Load(ctx context.Context, program domain.Program) (secondary.LoadedProgram, error) {
	spec, ok := r.languages[strings.ToLower(program.Language)]
	if !ok {
		return nil, fmt.Errorf("no local interpreter for language %q", program.Language)
	}

	cmd := exec.Command(spec.argv[0], append(spec.argv[1:], spec.compose(program))...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start interpreter: %w", err)
	}

	p := &process{
		cmd:    cmd,
		stdin:  stdin,
		stderr: &stderr,
		lines:  make(chan string),
		done:   make(chan struct{}),
		logger: r.logger,
	}
	go p.pump(stdout)

	select {
	case line, ok := <-p.lines:
		if !ok || line != readyMarker {
			p.Close()
			return nil, loadError(&stderr)
		}
	case <-time.After(r.loadTimeout):
		p.Close()
		return nil, fmt.Errorf("interpreter did not become ready within %s", r.loadTimeout)
	case <-ctx.Done():
		p.Close()
		return nil, ctx.Err()
	}
	return p, nil
}

func loadError(stderr *bytes.Buffer) error {
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		msg = "interpreter exited before loading the program"
	}
	return fmt.Errorf("failed to load program: %s", msg)
}

// process is one loaded program bound to a live interpreter. State the
// program accumulates persists across Invoke calls until Close.
type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	lines  chan string
	// done is closed by kill so the pump never blocks sending a line the
	// interpreter emitted after nobody was left to receive it.
	done   chan struct{}
	logger primary.Logger

	mu   sync.Mutex
	dead bool
}

func (p *process) pump(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case p.lines <- scanner.Text():
		case <-p.done:
			return
		}
	}
	close(p.lines)
}

// Invoke writes one JSON-encoded input line and waits for one output line.
// A timeout kills the interpreter: its state is gone, so every later call
// on this program fails fast.
func (p *process) Invoke(ctx context.Context, input []domain.Token, timeout time.Duration) *domain.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return domain.RuntimeFailure("interpreter terminated")
	}

	line, err := encodeInput(input)
	if err != nil {
		return domain.RuntimeFailure(err.Error())
	}
	if _, err := p.stdin.Write(append(line, '\n')); err != nil {
		p.kill()
		return domain.RuntimeFailure(fmt.Sprintf("failed to write input: %v", err))
	}

	select {
	case out, ok := <-p.lines:
		if !ok {
			p.kill()
			return domain.RuntimeFailure(strings.TrimSpace(p.stderr.String()))
		}
		if strings.HasPrefix(out, errMarker) {
			return domain.RuntimeFailure(strings.TrimPrefix(out, errMarker))
		}
		return domain.Produced(out)
	case <-time.After(timeout):
		p.kill()
		return domain.TimedOut()
	case <-ctx.Done():
		p.kill()
		return domain.TimedOut()
	}
}

func (p *process) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kill()
}

// kill must be called with mu held (or before the process is shared).
func (p *process) kill() {
	if p.dead {
		return
	}
	p.dead = true
	close(p.done)
	_ = p.stdin.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.cmd.Wait()
}

func encodeInput(input []domain.Token) ([]byte, error) {
	values := make([]interface{}, 0, len(input))
	for _, tok := range input {
		if tok.IsNumber {
			values = append(values, tok.Number)
		} else {
			values = append(values, tok.Text)
		}
	}
	return json.Marshal(values)
}

func composeNode(program domain.Program) string {
	var b strings.Builder
	b.WriteString(program.Code)
	b.WriteString("\n")
	fmt.Fprintf(&b, "console.log(%q);\n", readyMarker)
	b.WriteString("const __rl = require('readline').createInterface({ input: process.stdin });\n")
	b.WriteString("__rl.on('line', (l) => {\n")
	b.WriteString("  const args = JSON.parse(l);\n")
	fmt.Fprintf(&b, "  try { console.log(%s); } catch (e) { console.log(%q + e.message); }\n", program.Command, errMarker)
	b.WriteString("});\n")
	return b.String()
}

func composePython(program domain.Program) string {
	var b strings.Builder
	b.WriteString(program.Code)
	b.WriteString("\n")
	b.WriteString("import sys, json\n")
	fmt.Fprintf(&b, "print(%q, flush=True)\n", readyMarker)
	b.WriteString("for __line in sys.stdin:\n")
	b.WriteString("    args = json.loads(__line)\n")
	b.WriteString("    try:\n")
	fmt.Fprintf(&b, "        print(%s, flush=True)\n", program.Command)
	b.WriteString("    except Exception as e:\n")
	fmt.Fprintf(&b, "        print(%q + str(e), flush=True)\n", errMarker)
	return b.String()
}
