package tests

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/services/assessment"
	"gitlab.com/assess-2025.net/internal/domain"
	"gitlab.com/assess-2025.net/internal/handlers"
	"gitlab.com/assess-2025.net/internal/handlers/response"
)

// TestHandler handles the test lifecycle routes around the engine.
type TestHandler struct {
	assessmentService assessment.IAssessmentService
	logger            primary.Logger
}

// NewHandler creates a new test handler.
func NewHandler(assessmentService assessment.IAssessmentService, logger primary.Logger) *TestHandler {
	return &TestHandler{
		assessmentService: assessmentService,
		logger:            logger,
	}
}

// RegisterRoutes registers the API routes for TestHandler. Creation and
// deletion are owner operations; starting a test is the candidate's entry
// point and needs only the access key.
func (h *TestHandler) RegisterRoutes(router *mux.Router, mw *handlers.MiddlewareProvider) {
	router.Handle("/api/tests", mw.RequirePrincipal(http.HandlerFunc(h.CreateTest))).Methods("POST")
	router.Handle("/api/tests/{id}", mw.RequirePrincipal(http.HandlerFunc(h.DeleteTest))).Methods("DELETE")
	router.HandleFunc("/api/tests/{id}/start", h.StartTest).Methods("GET")
}

// CreateTestRequest represents a test creation request.
type CreateTestRequest struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	// DurationMinutes is the per-candidate time budget inside the window.
	DurationMinutes int `json:"duration"`
	Questions       []struct {
		Name                string `json:"name"`
		Statement           string `json:"statement"`
		Constraints         string `json:"constraints"`
		PredefinedStructure string `json:"predefinedStructure"`
		TestCases           []struct {
			Input   []string `json:"input"`
			Output  string   `json:"output"`
			Command string   `json:"testCaseCommand"`
		} `json:"testcases"`
	} `json:"questions"`
}

// CreateTest persists a test and returns its one-time access key.
func (h *TestHandler) CreateTest(w http.ResponseWriter, r *http.Request) {
	principal, ok := handlers.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	test := &domain.Test{
		Name:      req.Name,
		Email:     req.Email,
		Company:   req.Company,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Duration:  time.Duration(req.DurationMinutes) * time.Minute,
	}
	for _, q := range req.Questions {
		question := domain.Question{
			Name:                q.Name,
			Statement:           q.Statement,
			Constraints:         q.Constraints,
			PredefinedStructure: q.PredefinedStructure,
		}
		for _, tc := range q.TestCases {
			question.TestCases = append(question.TestCases, domain.TestCase{
				Input:    tc.Input,
				Expected: tc.Output,
				Command:  tc.Command,
			})
		}
		test.Questions = append(test.Questions, question)
	}

	accessKey, err := h.assessmentService.CreateTest(r.Context(), principal, test)
	if err != nil {
		h.logger.Error("Failed to create test", "owner", principal.ID, "error", err)
		response.WriteError(w, response.FromError(err))
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Test created successfully",
		"testID":    test.ID,
		"accessKey": accessKey,
	})
}

// StartTest hands the questions to a candidate once the window is open and
// the access key checks out.
func (h *TestHandler) StartTest(w http.ResponseWriter, r *http.Request) {
	testID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid test ID", StatusCode: http.StatusBadRequest})
		return
	}
	accessKey := r.URL.Query().Get("key")
	if accessKey == "" {
		response.WriteError(w, response.ErrorMessage{Message: "access key is required", StatusCode: http.StatusBadRequest})
		return
	}
	email := r.URL.Query().Get("email")
	if email == "" {
		response.WriteError(w, response.ErrorMessage{Message: "email is required", StatusCode: http.StatusBadRequest})
		return
	}

	test, remaining, err := h.assessmentService.StartTest(r.Context(), testID, accessKey, email, time.Now())
	if err != nil {
		response.WriteError(w, response.FromError(err))
		return
	}

	response.WriteSuccess(w, map[string]interface{}{
		"message": "Test started successfully",
		"data": map[string]interface{}{
			"test":             testView(test),
			"remainingSeconds": int(remaining.Seconds()),
		},
	})
}

// DeleteTest soft-deletes an owner's test.
func (h *TestHandler) DeleteTest(w http.ResponseWriter, r *http.Request) {
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

	if err := h.assessmentService.DeleteTest(r.Context(), principal, testID); err != nil {
		response.WriteError(w, response.FromError(err))
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "Test deleted successfully"})
}

// testView strips everything a candidate must not see: expected outputs and
// the stored key hash.
func testView(test *domain.Test) map[string]interface{} {
	questions := make([]map[string]interface{}, 0, len(test.Questions))
	for _, q := range test.Questions {
		questions = append(questions, map[string]interface{}{
			"id":                  q.ID,
			"name":                q.Name,
			"statement":           q.Statement,
			"constraints":         q.Constraints,
			"predefinedStructure": q.PredefinedStructure,
		})
	}
	return map[string]interface{}{
		"id":        test.ID,
		"name":      test.Name,
		"company":   test.Company,
		"startTime": test.StartTime,
		"endTime":   test.EndTime,
		"duration":  int(test.Duration.Minutes()),
		"questions": questions,
	}
}
