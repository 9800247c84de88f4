package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

type AnalyticsHandler struct {
	ReportUC *usecase.ReportLeadsUseCase
	Logger   *slog.Logger
}

func NewAnalyticsHandler(uc *usecase.ReportLeadsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{ReportUC: uc, Logger: slog.Default()}
}

type AnalyticsResponse struct {
	Success bool `json:"success"`
	*usecase.ReportOutput
}

// Handle serves GET /api/admin/analytics?days=30.
func (h *AnalyticsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeErrorResponse(w, http.StatusBadRequest, "INVALID_DAYS", "days must be a positive integer")
			return
		}
		days = n
	}

	out, err := h.ReportUC.Report(r.Context(), days)
	if err != nil {
		writeUsecaseError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AnalyticsResponse{Success: true, ReportOutput: out})
}
