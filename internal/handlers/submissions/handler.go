package submissions

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/services/submission"
	"gitlab.com/assess-2025.net/internal/domain"
	"gitlab.com/assess-2025.net/internal/handlers/response"
)

// SubmissionHandler handles candidate submission requests.
type SubmissionHandler struct {
	submissionService submission.ISubmissionService
	logger            primary.Logger
}

// NewHandler creates a new submission handler.
func NewHandler(submissionService submission.ISubmissionService, logger primary.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		logger:            logger,
	}
}

// RegisterRoutes registers the API routes for SubmissionHandler. Submission
// routes are public: candidates are not platform users.
func (h *SubmissionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/run-testcases", h.RunTestCases).Methods("POST")
	router.HandleFunc("/api/submit/test", h.SubmitTest).Methods("POST")
	router.HandleFunc("/api/submit/{id}", h.SubmitScored).Methods("PATCH")
}

// RunTestCasesRequest represents a single-question evaluation request.
type RunTestCasesRequest struct {
	TestID     uuid.UUID `json:"testID"`
	QuestionID uuid.UUID `json:"questionID"`
	Code       string    `json:"code"`
}

// RunTestCases evaluates one question's code without persisting anything.
func (h *SubmissionHandler) RunTestCases(w http.ResponseWriter, r *http.Request) {
	var req RunTestCasesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}
	if req.TestID == uuid.Nil || req.QuestionID == uuid.Nil || req.Code == "" {
		response.WriteError(w, response.ErrorMessage{Message: "testID, questionID and code are required", StatusCode: http.StatusBadRequest})
		return
	}

	results, err := h.submissionService.RunTestCases(r.Context(), req.TestID, req.QuestionID, req.Code)
	if err != nil {
		h.logger.Error("Failed to run test cases", "testId", req.TestID, "questionId", req.QuestionID, "error", err)
		response.WriteError(w, response.FromError(err))
		return
	}

	response.WriteSuccess(w, map[string]interface{}{
		"message": "Evaluation Done!",
		"results": results,
	})
}

// SubmitTestRequest represents a full test submission.
type SubmitTestRequest struct {
	TestID uuid.UUID `json:"testID"`
	User   struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	Code []struct {
		QuestionID uuid.UUID `json:"questionID"`
		Code       string    `json:"code"`
	} `json:"code"`
}

// SubmitTest evaluates a whole submission and commits exactly one result entry.
func (h *SubmissionHandler) SubmitTest(w http.ResponseWriter, r *http.Request) {
	var req SubmitTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	answers := make([]domain.Answer, 0, len(req.Code))
	for _, c := range req.Code {
		answers = append(answers, domain.Answer{QuestionID: c.QuestionID, Code: c.Code})
	}
	sub := domain.NewSubmission(req.TestID, domain.Candidate{Name: req.User.Name, Email: req.User.Email}, answers)

	entry, err := h.submissionService.Submit(r.Context(), sub)
	if err != nil {
		h.logger.Warn("Submission rejected", "testId", req.TestID, "email", req.User.Email, "error", err)
		response.WriteError(w, response.FromError(err))
		return
	}

	response.WriteSuccess(w, map[string]interface{}{
		"message": "Your Test Submitted Successfully",
		"data": map[string]interface{}{
			"testID": req.TestID,
			"email":  entry.Email,
			"score":  entry.Score,
		},
	})
}

// SubmitScoredRequest represents the per-question incremental path where the
// score was computed elsewhere.
type SubmitScoredRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Score float64 `json:"score"`
}

// SubmitScored appends one pre-scored candidate entry.
func (h *SubmissionHandler) SubmitScored(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	testID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid test ID", StatusCode: http.StatusBadRequest})
		return
	}

	var req SubmitScoredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	entry := domain.CandidateEntry{Name: req.Name, Email: req.Email, Score: req.Score}
	if err := h.submissionService.SubmitScored(r.Context(), testID, entry); err != nil {
		h.logger.Warn("Scored submission rejected", "testId", testID, "email", req.Email, "error", err)
		response.WriteError(w, response.FromError(err))
		return
	}

	response.WriteSuccess(w, map[string]string{"message": "Result added successfully"})
}
