package handlers

import (
	"log/slog"
	"net/http"

	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

type ContactHandler struct {
	SendContactUC *usecase.SendContactUseCase
	Logger        *slog.Logger
}

func NewContactHandler(uc *usecase.SendContactUseCase) *ContactHandler {
	return &ContactHandler{SendContactUC: uc, Logger: slog.Default()}
}

func (h *ContactHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendContactInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON")
		return
	}

	out, err := h.SendContactUC.Execute(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true, "emailSent": out.EmailSent})
}
