package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/xavierca1/nesthome-leads/internal/entity"
	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

type SyncHandler struct {
	SyncLeadsUC    *usecase.SyncLeadsUseCase
	SpreadsheetURL string
	Logger         *slog.Logger
}

func NewSyncHandler(uc *usecase.SyncLeadsUseCase, spreadsheetURL string) *SyncHandler {
	return &SyncHandler{SyncLeadsUC: uc, SpreadsheetURL: spreadsheetURL, Logger: slog.Default()}
}

type SyncResponse struct {
	Success bool   `json:"success"`
	Synced  int    `json:"synced"`
	Total   int    `json:"total"`
	Error   string `json:"error,omitempty"`
}

// SyncAll upserts leads into the spreadsheet. An empty body or an empty list means
// every lead the service knows about.
func (h *SyncHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Leads []entity.Lead `json:"leads"`
	}
	if err := decodeJSON(w, r, &input); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, SyncResponse{Error: "Invalid JSON"})
		return
	}

	res, err := h.SyncLeadsUC.Execute(r.Context(), input.Leads)
	if err != nil {
		if errors.Is(err, usecase.ErrNotConfigured) {
			writeJSON(w, http.StatusServiceUnavailable, SyncResponse{Error: "Google Sheets webhook is not configured"})
			return
		}
		h.Logger.Error("bulk spreadsheet sync failed", "error", err)
		out := SyncResponse{Error: err.Error()}
		if res != nil {
			out.Synced, out.Total = res.Synced, res.Total
		}
		writeJSON(w, http.StatusBadGateway, out)
		return
	}

	writeJSON(w, http.StatusOK, SyncResponse{Success: true, Synced: res.Synced, Total: res.Total})
}

func (h *SyncHandler) GetSpreadsheetURL(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		URL string `json:"url,omitempty"`
	}{URL: h.SpreadsheetURL})
}
