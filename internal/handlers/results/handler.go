package results

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/services/assessment"
	"gitlab.com/assess-2025.net/internal/handlers"
	"gitlab.com/assess-2025.net/internal/handlers/response"
)

// ResultHandler exposes owner-facing result reads.
type ResultHandler struct {
	assessmentService assessment.IAssessmentService
	logger            primary.Logger
}

// NewHandler creates a new result handler.
func NewHandler(assessmentService assessment.IAssessmentService, logger primary.Logger) *ResultHandler {
	return &ResultHandler{
		assessmentService: assessmentService,
		logger:            logger,
	}
}

// RegisterRoutes registers the API routes for ResultHandler.
func (h *ResultHandler) RegisterRoutes(router *mux.Router, mw *handlers.MiddlewareProvider) {
	router.Handle("/api/results", mw.RequirePrincipal(http.HandlerFunc(h.ListResults))).Methods("GET")
	router.Handle("/api/results/{id}", mw.RequirePrincipal(http.HandlerFunc(h.GetResult))).Methods("GET")
}

// ListResults returns every result the caller owns.
func (h *ResultHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	principal, ok := handlers.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	results, err := h.assessmentService.ListMyResults(r.Context(), principal)
	if err != nil {
		h.logger.Error("Failed to list results", "owner", principal.ID, "error", err)
		response.WriteError(w, response.FromError(err))
		return
	}

	response.WriteSuccess(w, map[string]interface{}{
		"message": "Results fetched successfully",
		"data":    map[string]interface{}{"results": results},
	})
}

// GetResult returns the scoreboard for one test.
func (h *ResultHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	principal, ok := handlers.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	testID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid test ID", StatusCode: http.StatusBadRequest})
		return
	}

	result, err := h.assessmentService.GetResult(r.Context(), principal, testID)
	if err != nil {
		response.WriteError(w, response.FromError(err))
		return
	}

	response.WriteSuccess(w, map[string]interface{}{
		"message": "Result fetched successfully",
		"data":    map[string]interface{}{"result": result},
	})
}
