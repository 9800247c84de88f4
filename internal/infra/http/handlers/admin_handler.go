package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/xavierca1/nesthome-leads/internal/infra/http/middleware"
	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

type AdminHandler struct {
	AuthUC *usecase.AdminAuthUseCase
	Logger *slog.Logger
}

func NewAdminHandler(uc *usecase.AdminAuthUseCase) *AdminHandler {
	return &AdminHandler{AuthUC: uc, Logger: slog.Default()}
}

type LoginResponse struct {
	Success   bool       `json:"success"`
	SessionID string     `json:"sessionId,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Error     string     `json:"error,omitempty"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Login exchanges the shared admin password for a session token.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, LoginResponse{Error: "Invalid JSON"})
		return
	}

	session, err := h.AuthUC.Login(r.Context(), input.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, LoginResponse{Error: "Invalid password"})
			return
		}
		writeUsecaseError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		SessionID: session.Token,
		ExpiresAt: &session.ExpiresAt,
	})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthUC.Logout(r.Context(), middleware.SessionToken(r.Context())); err != nil {
		writeUsecaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Verify only runs behind RequireSession, so reaching it means the session is live.
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true, "valid": true})
}

func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, successResponse{Error: "Invalid JSON"})
		return
	}

	err := h.AuthUC.ChangePassword(r.Context(), middleware.SessionToken(r.Context()), input.CurrentPassword, input.NewPassword)
	if err != nil {
		var de *usecase.DomainError
		switch {
		case errors.As(err, &de):
			writeJSON(w, http.StatusBadRequest, successResponse{Error: de.Message})
		case errors.Is(err, usecase.ErrInvalidCredentials):
			writeJSON(w, http.StatusBadRequest, successResponse{Error: "Current password is incorrect"})
		default:
			writeUsecaseError(w, h.Logger, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
