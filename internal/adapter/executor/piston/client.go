// Package piston is the client for the remote, network-isolated code
// execution service. Every execution happens in a fresh sandbox; candidate
// code never runs in this process.
package piston

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/domain"
)

var (
	_ secondary.CodeExecutor  = (*Client)(nil)
	_ secondary.SandboxRunner = (*Client)(nil)
)

// Client talks to the remote execution service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     primary.Logger
}

// NewClient creates a new remote sandbox client.
func NewClient(baseURL string, logger primary.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

type executeRequest struct {
	Language string                 `json:"language"`
	Version  string                 `json:"version"`
	Files    []secondary.SourceFile `json:"files"`
}

type executeResponse struct {
	Run struct {
		Stdout string `json:"stdout"`
		Stderr string `json:"stderr"`
		Code   int    `json:"code"`
		Output string `json:"output"`
	} `json:"run"`
	Message string `json:"message"`
}

// RunFiles issues one raw execution request and returns the captured output.
func (c *Client) RunFiles(ctx context.Context, language, version string, files []secondary.SourceFile) (string, error) {
	resp, err := c.post(ctx, executeRequest{Language: language, Version: version, Files: files})
	if err != nil {
		return "", err
	}
	return resp.Run.Output, nil
}

func (c *Client) post(ctx context.Context, req executeRequest) (*executeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execute request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build execute request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execution service unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, fmt.Errorf("execution service returned %d: %s", httpResp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var resp executeResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("invalid execution service response: %w", err)
	}
	return &resp, nil
}

// Load prepares a remote program. The remote service holds no session state,
// so loading only validates the program; each Invoke runs the code in a
// brand-new sandbox.
func (c *Client) Load(ctx context.Context, program domain.Program) (secondary.LoadedProgram, error) {
	if strings.TrimSpace(program.Code) == "" {
		return nil, fmt.Errorf("empty program")
	}
	if _, err := printExpr(program.Language, "0"); err != nil {
		return nil, err
	}
	return &remoteProgram{client: c, program: program}, nil
}

type remoteProgram struct {
	client  *Client
	program domain.Program
}

// Invoke composes a one-shot harness around the candidate code and runs it
// remotely. Failure classification: client-side deadline means the candidate
// code (or sandbox) overran; transport and service errors are infrastructure;
// a nonzero exit is the candidate's runtime failure.
func (p *remoteProgram) Invoke(ctx context.Context, input []domain.Token, timeout time.Duration) *domain.Outcome {
	source, err := composeHarness(p.program, input)
	if err != nil {
		return domain.RuntimeFailure(err.Error())
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.post(callCtx, executeRequest{
		Language: p.program.Language,
		Version:  p.program.Version,
		Files:    []secondary.SourceFile{{Name: sourceName(p.program.Language), Content: source}},
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return domain.TimedOut()
		}
		return domain.Unavailable(err.Error())
	}

	if resp.Run.Code != 0 {
		diagnostic := strings.TrimSpace(resp.Run.Stderr)
		if diagnostic == "" {
			diagnostic = fmt.Sprintf("exit status %d", resp.Run.Code)
		}
		return domain.RuntimeFailure(diagnostic)
	}

	output := resp.Run.Output
	if output == "" {
		output = resp.Run.Stdout
	}
	return domain.Produced(strings.TrimRight(output, "\n"))
}

func (p *remoteProgram) Close() {}

// composeHarness appends a driver that binds the test case input to "args"
// and prints the authored invocation expression.
func composeHarness(program domain.Program, input []domain.Token) (string, error) {
	literals := make([]string, 0, len(input))
	for _, tok := range input {
		literals = append(literals, tok.Literal())
	}
	argsList := strings.Join(literals, ", ")

	var b strings.Builder
	b.WriteString(program.Code)
	b.WriteString("\n")
	switch normalizeLanguage(program.Language) {
	case "javascript":
		fmt.Fprintf(&b, "const args = [%s];\n", argsList)
	case "python":
		fmt.Fprintf(&b, "args = [%s]\n", argsList)
	}
	line, err := printExpr(program.Language, program.Command)
	if err != nil {
		return "", err
	}
	b.WriteString(line)
	b.WriteString("\n")
	return b.String(), nil
}

func printExpr(language, expr string) (string, error) {
	switch normalizeLanguage(language) {
	case "javascript":
		return fmt.Sprintf("console.log(%s);", expr), nil
	case "python":
		return fmt.Sprintf("print(%s)", expr), nil
	default:
		return "", fmt.Errorf("unsupported language %q", language)
	}
}

func normalizeLanguage(language string) string {
	switch strings.ToLower(language) {
	case "javascript", "js", "node":
		return "javascript"
	case "python", "python3", "py":
		return "python"
	default:
		return strings.ToLower(language)
	}
}

func sourceName(language string) string {
	if normalizeLanguage(language) == "python" {
		return "main.py"
	}
	return "main.js"
}
