package execute

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/handlers/response"
)

// ExecuteHandler exposes the raw remote execution endpoint.
type ExecuteHandler struct {
	sandbox secondary.SandboxRunner
	logger  primary.Logger
}

// NewHandler creates a new execute handler.
func NewHandler(sandbox secondary.SandboxRunner, logger primary.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		sandbox: sandbox,
		logger:  logger,
	}
}

// RegisterRoutes registers the API routes for ExecuteHandler.
func (h *ExecuteHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/execute", h.Execute).Methods("POST")
}

// ExecuteRequest represents a raw execution request.
type ExecuteRequest struct {
	Language string                 `json:"language"`
	Version  string                 `json:"version"`
	Files    []secondary.SourceFile `json:"files"`
}

// Execute runs a batch of source files on the remote sandbox and returns the
// captured output.
func (h *ExecuteHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode execute request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}
	if req.Language == "" || req.Version == "" || len(req.Files) == 0 {
		response.WriteError(w, response.ErrorMessage{Message: "language, version and files are required", StatusCode: http.StatusBadRequest})
		return
	}
	for _, f := range req.Files {
		if f.Content == "" {
			response.WriteError(w, response.ErrorMessage{Message: "every file needs content", StatusCode: http.StatusBadRequest})
			return
		}
	}

	output, err := h.sandbox.RunFiles(r.Context(), req.Language, req.Version, req.Files)
	if err != nil {
		h.logger.Error("Remote execution failed", "language", req.Language, "error", err)
		response.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	response.WriteSuccess(w, map[string]string{"output": output})
}
