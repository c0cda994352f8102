package piston

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gitlab.com/assess-2025.net/internal/adapter/logging"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/domain"
)

func sandbox(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, logging.NewDevelopmentLogger())
}

func program() domain.Program {
	return domain.Program{
		Language: "javascript",
		Version:  "18.15.0",
		Code:     "function add(a, b) { return a + b }",
		Command:  "add(args[0], args[1])",
	}
}

func TestInvokeProduced(t *testing.T) {
	t.Parallel()
	var gotReq executeRequest
	c := sandbox(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/execute" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"run": map[string]interface{}{"output": "7\n", "code": 0},
		})
	})

	loaded, err := c.Load(context.Background(), program())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer loaded.Close()

	out := loaded.Invoke(context.Background(), domain.Tokenize([]string{"3", "4"}), time.Second)
	if out.Kind != domain.OutcomeProduced {
		t.Fatalf("outcome = %s (%s), want PRODUCED", out.Kind, out.Diagnostic)
	}
	if out.Output != "7" {
		t.Errorf("output = %q, want 7", out.Output)
	}

	if gotReq.Language != "javascript" || gotReq.Version != "18.15.0" {
		t.Errorf("runtime = %s/%s", gotReq.Language, gotReq.Version)
	}
	if len(gotReq.Files) != 1 {
		t.Fatalf("files = %d, want 1", len(gotReq.Files))
	}
	source := gotReq.Files[0].Content
	for _, want := range []string{"function add", "const args = [3, 4];", "console.log(add(args[0], args[1]));"} {
		if !strings.Contains(source, want) {
			t.Errorf("harness missing %q:\n%s", want, source)
		}
	}
}

func TestInvokeHarnessQuotesTextTokens(t *testing.T) {
	t.Parallel()
	var gotReq executeRequest
	c := sandbox(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"run": map[string]interface{}{"output": "ok"}})
	})

	loaded, _ := c.Load(context.Background(), program())
	loaded.Invoke(context.Background(), domain.Tokenize([]string{"abc", "2.5"}), time.Second)

	if !strings.Contains(gotReq.Files[0].Content, `const args = ["abc", 2.5];`) {
		t.Errorf("harness args malformed:\n%s", gotReq.Files[0].Content)
	}
}

func TestInvokeRuntimeFailure(t *testing.T) {
	t.Parallel()
	c := sandbox(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"run": map[string]interface{}{"stderr": "ReferenceError: add is not defined", "code": 1},
		})
	})

	loaded, _ := c.Load(context.Background(), program())
	out := loaded.Invoke(context.Background(), nil, time.Second)
	if out.Kind != domain.OutcomeRuntimeFailure {
		t.Fatalf("outcome = %s, want RUNTIME_FAILURE", out.Kind)
	}
	if !strings.Contains(out.Diagnostic, "ReferenceError") {
		t.Errorf("diagnostic = %q", out.Diagnostic)
	}
}

func TestInvokeBackendFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "service error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "queue full", http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>not json</html>"))
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := sandbox(t, tt.handler)
			loaded, _ := c.Load(context.Background(), program())
			out := loaded.Invoke(context.Background(), nil, time.Second)
			if out.Kind != domain.OutcomeUnavailable {
				t.Errorf("outcome = %s, want BACKEND_UNAVAILABLE", out.Kind)
			}
		})
	}
}

func TestInvokeUnreachableHost(t *testing.T) {
	t.Parallel()
	c := NewClient("http://127.0.0.1:1", logging.NewDevelopmentLogger())
	loaded, _ := c.Load(context.Background(), program())
	out := loaded.Invoke(context.Background(), nil, time.Second)
	if out.Kind != domain.OutcomeUnavailable {
		t.Errorf("outcome = %s, want BACKEND_UNAVAILABLE", out.Kind)
	}
}

func TestInvokeTimeout(t *testing.T) {
	t.Parallel()
	c := sandbox(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	loaded, _ := c.Load(context.Background(), program())
	out := loaded.Invoke(context.Background(), nil, 50*time.Millisecond)
	if out.Kind != domain.OutcomeTimedOut {
		t.Errorf("outcome = %s, want TIMED_OUT", out.Kind)
	}
}

func TestLoadRejectsEmptyAndUnsupported(t *testing.T) {
	t.Parallel()
	c := NewClient("http://localhost:2000", logging.NewDevelopmentLogger())

	if _, err := c.Load(context.Background(), domain.Program{Language: "javascript"}); err == nil {
		t.Error("Load accepted an empty program")
	}
	p := program()
	p.Language = "cobol"
	if _, err := c.Load(context.Background(), p); err == nil {
		t.Error("Load accepted an unsupported language")
	}
}

func TestRunFiles(t *testing.T) {
	t.Parallel()
	c := sandbox(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"run": map[string]interface{}{"output": "hello\n"},
		})
	})

	out, err := c.RunFiles(context.Background(), "python", "3.10.0", []secondary.SourceFile{{Content: "print('hello')"}})
	if err != nil {
		t.Fatalf("RunFiles() error = %v", err)
	}
	if out != "hello\n" {
		t.Errorf("output = %q", out)
	}
}
