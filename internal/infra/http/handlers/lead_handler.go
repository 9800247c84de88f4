package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/nesthome-leads/internal/analytics"
	"github.com/xavierca1/nesthome-leads/internal/entity"
	"github.com/xavierca1/nesthome-leads/internal/infra/http/middleware"
	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

type LeadHandler struct {
	SubmitLeadUC  *usecase.SubmitLeadUseCase
	ManageLeadsUC *usecase.ManageLeadsUseCase
	Location      *time.Location
	Logger        *slog.Logger
}

func NewLeadHandler(submit *usecase.SubmitLeadUseCase, manage *usecase.ManageLeadsUseCase, loc *time.Location) *LeadHandler {
	return &LeadHandler{
		SubmitLeadUC:  submit,
		ManageLeadsUC: manage,
		Location:      loc,
		Logger:        slog.Default(),
	}
}

type SubmitLeadResponse struct {
	Success            bool        `json:"success"`
	ID                 string      `json:"id"`
	RemoteKey          string      `json:"remoteKey,omitempty"`
	GoogleSheetsSynced bool        `json:"googleSheetsSynced"`
	Lead               entity.Lead `json:"lead"`
}

type LeadListResponse struct {
	Success bool          `json:"success"`
	Leads   []entity.Lead `json:"leads"`
	Source  string        `json:"source"`
}

type MutationResponse struct {
	Success bool `json:"success"`
	usecase.MutationResult
}

// Submit handles the public form (POST /api/leads).
func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input usecase.SubmitLeadInput
	if err := decodeJSON(w, r, &input); err != nil {
		middleware.RecordLeadSubmission("invalid")
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON")
		return
	}

	out, err := h.SubmitLeadUC.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsDomainError(err) {
			middleware.RecordLeadSubmission("invalid")
		} else {
			middleware.RecordLeadSubmission("failed")
		}
		writeUsecaseError(w, h.Logger, err)
		return
	}

	middleware.RecordLeadSubmission("accepted")
	writeJSON(w, http.StatusCreated, SubmitLeadResponse{
		Success:            true,
		ID:                 out.Lead.ID,
		RemoteKey:          out.RemoteKey,
		GoogleSheetsSynced: out.GoogleSheetsSynced,
		Lead:               out.Lead,
	})
}

// List handles GET /api/leads?q=&status=&city=.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.ManageLeadsUC.List(r.Context(), queryFromRequest(r))
	if err != nil {
		writeUsecaseError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LeadListResponse{Success: true, Leads: out.Leads, Source: out.Source})
}

func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status entity.LeadStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON")
		return
	}

	res, err := h.ManageLeadsUC.UpdateStatus(r.Context(), chi.URLParam(r, "id"), input.Status)
	h.writeMutation(w, res, err)
}

func (h *LeadHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateDetailsInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON")
		return
	}

	res, err := h.ManageLeadsUC.UpdateDetails(r.Context(), chi.URLParam(r, "id"), input)
	h.writeMutation(w, res, err)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.ManageLeadsUC.Delete(r.Context(), chi.URLParam(r, "id"))
	h.writeMutation(w, res, err)
}

func (h *LeadHandler) writeMutation(w http.ResponseWriter, res *usecase.MutationResult, err error) {
	if err != nil {
		writeUsecaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, MutationResult: *res})
}

// ExportCSV streams the filtered lead list as a CSV attachment.
func (h *LeadHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	out, err := h.ManageLeadsUC.List(r.Context(), queryFromRequest(r))
	if err != nil {
		writeUsecaseError(w, h.Logger, err)
		return
	}

	filename := fmt.Sprintf("nesthome-leads-%s.csv", time.Now().In(h.Location).Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := analytics.WriteCSV(w, out.Leads, h.Location); err != nil {
		// headers are gone by now
		h.Logger.Error("csv export failed", "error", err)
	}
}

func queryFromRequest(r *http.Request) analytics.Query {
	q := r.URL.Query()
	return analytics.Query{
		Search: q.Get("q"),
		Status: entity.LeadStatus(q.Get("status")),
		City:   q.Get("city"),
	}
}
