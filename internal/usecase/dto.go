package usecase

import "github.com/xavierca1/nesthome-leads/internal/entity"

// SubmitLeadInput is the public form payload. ID and SubmittedAt are optional: a client that
// already stored the lead locally may send the values it minted.
type SubmitLeadInput struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	City        string `json:"city"`
	Timeline    string `json:"timeline"`
	SubmittedAt string `json:"submittedAt,omitempty"`
}

type SubmitLeadOutput struct {
	Lead               entity.Lead  `json:"lead"`
	RemoteKey          string       `json:"remoteKey,omitempty"`
	GoogleSheetsSynced bool         `json:"googleSheetsSynced"`
	Steps              []StepResult `json:"-"`
}

// UpdateDetailsInput carries only the fields the admin changed.
type UpdateDetailsInput = entity.LeadDetailsPatch

// MutationResult reports how far an admin edit got. The local copy is always updated first.
type MutationResult struct {
	LocalUpdated bool   `json:"localUpdated"`
	RemoteSynced bool   `json:"remoteSynced"`
	Warning      string `json:"warning,omitempty"`
}

type LeadListOutput struct {
	Leads  []entity.Lead `json:"leads"`
	Source string        `json:"source"`
}

type SyncResult struct {
	Synced int `json:"synced"`
	Total  int `json:"total"`
}

type ContactOutput struct {
	EmailSent bool `json:"emailSent"`
}

type EstimateInput struct {
	PlotSize int    `json:"plotSize"`
	Floors   string `json:"floors"`
	Quality  string `json:"quality"`
}

type EstimateOutput struct {
	BuiltUpArea  int     `json:"builtUpArea"`
	MinCost      int     `json:"minCost"`
	MaxCost      int     `json:"maxCost"`
	TotalCost    float64 `json:"totalCost"`
	CostPerSqft  float64 `json:"costPerSqft"`
	MinFormatted string  `json:"minFormatted"`
	MaxFormatted string  `json:"maxFormatted"`
}
