package whatsapp

import (
	"context"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

const DefaultLeadAlertTemplate = "new_lead_alert"

// LeadAlerter pings the sales team's number whenever a lead comes in.
type LeadAlerter struct {
	client    *Client
	salesTo   string
	template  string
	indiaCode string
}

func NewLeadAlerter(client *Client, salesNumber, template string) *LeadAlerter {
	if template == "" {
		template = DefaultLeadAlertTemplate
	}
	return &LeadAlerter{client: client, salesTo: salesNumber, template: template, indiaCode: "91"}
}

// NotifyNewLead sends name, mobile, city and timeline as template parameters.
func (a *LeadAlerter) NotifyNewLead(ctx context.Context, lead entity.Lead) error {
	return a.client.SendMessage(ctx, SendMessageInput{
		PhoneNumber:  a.salesTo,
		TemplateName: a.template,
		Language:     "en",
		Parameters: []string{
			lead.Name,
			"+" + a.indiaCode + lead.Mobile,
			lead.City,
			timelineLabel(lead.Timeline),
		},
	})
}

func timelineLabel(value string) string {
	for _, t := range entity.Timelines {
		if t.Value == value {
			return t.Label
		}
	}
	return value
}
