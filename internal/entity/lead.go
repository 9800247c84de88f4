package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrDuplicateLeadID = errors.New("lead id already stored")
)

type LeadStatus string

const (
	StatusNew         LeadStatus = "New"
	StatusContacted   LeadStatus = "Contacted"
	StatusQualified   LeadStatus = "Qualified"
	StatusProposal    LeadStatus = "Proposal"
	StatusNegotiation LeadStatus = "Negotiation"
	StatusWon         LeadStatus = "Won"
	StatusLost        LeadStatus = "Lost"
)

// Statuses lists every status in pipeline order.
var Statuses = []LeadStatus{
	StatusNew,
	StatusContacted,
	StatusQualified,
	StatusProposal,
	StatusNegotiation,
	StatusWon,
	StatusLost,
}

func (s LeadStatus) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Cities served by the business. The public form only offers these.
var Cities = []string{"Indore"}

type Timeline struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var Timelines = []Timeline{
	{Value: "within-1-month", Label: "Within 1 month"},
	{Value: "1-3-months", Label: "1-3 months"},
	{Value: "3-6-months", Label: "3-6 months"},
	{Value: "exploring", Label: "Just exploring"},
}

func IsKnownCity(city string) bool {
	for _, c := range Cities {
		if c == city {
			return true
		}
	}
	return false
}

func IsKnownTimeline(value string) bool {
	for _, t := range Timelines {
		if t.Value == value {
			return true
		}
	}
	return false
}

// LeadDetails holds the enrichment fields that only admin edits populate.
type LeadDetails struct {
	PlotSize    string `json:"plotSize,omitempty"`
	Budget      string `json:"budget,omitempty"`
	ProjectType string `json:"projectType,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// LeadDetailsPatch is a partial edit of LeadDetails: nil fields are left untouched.
type LeadDetailsPatch struct {
	PlotSize    *string `json:"plotSize,omitempty"`
	Budget      *string `json:"budget,omitempty"`
	ProjectType *string `json:"projectType,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (p LeadDetailsPatch) Apply(d *LeadDetails) {
	if p.PlotSize != nil {
		d.PlotSize = *p.PlotSize
	}
	if p.Budget != nil {
		d.Budget = *p.Budget
	}
	if p.ProjectType != nil {
		d.ProjectType = *p.ProjectType
	}
	if p.Notes != nil {
		d.Notes = *p.Notes
	}
}

type Lead struct {
	ID          string     `json:"id"`
	RemoteKey   string     `json:"remoteKey,omitempty"`
	Name        string     `json:"name"`
	Mobile      string     `json:"mobile"`
	City        string     `json:"city"`
	Timeline    string     `json:"timeline"`
	SubmittedAt time.Time  `json:"submittedAt"`
	Status      LeadStatus `json:"status"`

	LeadDetails
}

// NewLead builds a fresh lead. Callers validate the fields beforehand.
func NewLead(name, mobile, city, timeline string, now time.Time) *Lead {
	return &Lead{
		ID:          uuid.New().String(),
		Name:        name,
		Mobile:      mobile,
		City:        city,
		Timeline:    timeline,
		SubmittedAt: now.UTC(),
		Status:      StatusNew,
	}
}

// EffectiveStatus maps an empty status to New, as stored records may predate the field.
func (l Lead) EffectiveStatus() LeadStatus {
	if l.Status == "" {
		return StatusNew
	}
	return l.Status
}
