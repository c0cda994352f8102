package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"gitlab.com/assess-2025.net/internal/static/errs"
)

type ErrorMessage struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func WriteError(w http.ResponseWriter, err ErrorMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(err)
}

func WriteSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// FromError maps engine errors onto the HTTP surface. Per-test-case failures
// never reach here; only submission-level outcomes do.
func FromError(err error) ErrorMessage {
	var status int
	switch {
	case errors.Is(err, errs.InvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, errs.DuplicateSubmission), errors.Is(err, errs.PersistenceConflict):
		// A lost commit race reads the same as a plain duplicate.
		status = http.StatusBadRequest
	case errors.Is(err, errs.TestNotStarted), errors.Is(err, errs.TestOver):
		status = http.StatusBadRequest
	case errors.Is(err, errs.TestNotFound), errors.Is(err, errs.QuestionNotFound), errors.Is(err, errs.ResultNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.NotOwner):
		status = http.StatusForbidden
	case errors.Is(err, errs.EvaluationTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, errs.BackendUnavailable):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	return ErrorMessage{Message: err.Error(), StatusCode: status}
}
