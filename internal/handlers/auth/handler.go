package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/services/auth"
	"gitlab.com/assess-2025.net/internal/handlers/response"
	"gitlab.com/assess-2025.net/internal/static/errs"
)

// AuthHandler exposes owner registration and login.
type AuthHandler struct {
	authService auth.IAuthService
	logger      primary.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(authService auth.IAuthService, logger primary.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the API routes for AuthHandler.
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", h.Login).Methods("POST")
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	token, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Account created successfully",
		"token":   token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	response.WriteSuccess(w, map[string]string{
		"message": "Logged in successfully",
		"token":   token,
	})
}

func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.InvalidCredentials):
		response.WriteError(w, response.ErrorMessage{Message: err.Error(), StatusCode: http.StatusUnauthorized})
	case errors.Is(err, errs.EmailRequired), errors.Is(err, errs.EmailTaken):
		response.WriteError(w, response.ErrorMessage{Message: err.Error(), StatusCode: http.StatusBadRequest})
	default:
		h.logger.Error("Auth request failed", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "internal error", StatusCode: http.StatusInternalServerError})
	}
}
