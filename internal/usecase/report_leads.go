package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/xavierca1/nesthome-leads/internal/analytics"
)

const (
	DefaultReportDays = 30
	maxReportDays     = 366
)

type ReportOutput struct {
	analytics.Report
	Sources []string `json:"sources"`
}

// ReportLeadsUseCase computes dashboard aggregates over every lead this node can see.
type ReportLeadsUseCase struct {
	Local    LocalLeadStore
	Remote   RemoteLeadSink
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

func NewReportLeadsUseCase(local LocalLeadStore, remote RemoteLeadSink, loc *time.Location) *ReportLeadsUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &ReportLeadsUseCase{
		Local:    local,
		Remote:   remote,
		Location: loc,
		Now:      time.Now,
		Logger:   slog.Default(),
	}
}

func (uc *ReportLeadsUseCase) Report(ctx context.Context, days int) (*ReportOutput, error) {
	if days <= 0 {
		days = DefaultReportDays
	}
	if days > maxReportDays {
		return nil, newValidationError(ValidationErrors{{Field: "days", Message: "must not exceed 366"}})
	}

	view := analytics.NewView().Apply(analytics.LocalLoaded(uc.Local.ReadAll(ctx)))
	sources := []string{analytics.SourceLocal.String()}

	if uc.Remote != nil {
		remote, err := uc.Remote.List(ctx)
		if err != nil {
			uc.Logger.Warn("remote lead list failed, reporting on local copy", "error", err)
		} else {
			view = view.Apply(analytics.RemoteSnapshot(remote))
			sources = append(sources, analytics.SourceRemote.String())
		}
	}

	report := analytics.BuildReport(view.Leads(), days, uc.Now(), uc.Location)
	return &ReportOutput{Report: report, Sources: sources}, nil
}
