package sheets

import "github.com/xavierca1/nesthome-leads/internal/entity"

const (
	ActionAppend = "append"
	ActionUpsert = "upsert"
)

// Row is one spreadsheet line. Column order on the sheet follows field order here.
type Row struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	City        string `json:"city"`
	Timeline    string `json:"timeline"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submittedAt"`
	PlotSize    string `json:"plotSize,omitempty"`
	Budget      string `json:"budget,omitempty"`
	ProjectType string `json:"projectType,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type appendRequest struct {
	Action string `json:"action"`
	Lead   Row    `json:"lead"`
}

type upsertRequest struct {
	Action string `json:"action"`
	Leads  []Row  `json:"leads"`
}

type upsertResponse struct {
	Success *bool  `json:"success,omitempty"`
	Synced  *int   `json:"synced,omitempty"`
	Total   *int   `json:"total,omitempty"`
	Error   string `json:"error,omitempty"`
}

func toRow(l entity.Lead) Row {
	return Row{
		ID:          l.ID,
		Name:        l.Name,
		Mobile:      l.Mobile,
		City:        l.City,
		Timeline:    l.Timeline,
		Status:      string(l.EffectiveStatus()),
		SubmittedAt: l.SubmittedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		PlotSize:    l.PlotSize,
		Budget:      l.Budget,
		ProjectType: l.ProjectType,
		Notes:       l.Notes,
	}
}
