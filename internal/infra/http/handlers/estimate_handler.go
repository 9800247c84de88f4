package handlers

import (
	"log/slog"
	"net/http"

	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

type EstimateHandler struct {
	Logger *slog.Logger
}

func NewEstimateHandler() *EstimateHandler {
	return &EstimateHandler{Logger: slog.Default()}
}

type EstimateResponse struct {
	Success bool `json:"success"`
	*usecase.EstimateOutput
}

func (h *EstimateHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.EstimateInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON")
		return
	}

	out, err := usecase.EstimateCost(input)
	if err != nil {
		writeUsecaseError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, EstimateResponse{Success: true, EstimateOutput: out})
}
