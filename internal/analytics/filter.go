package analytics

import (
	"strings"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

// Query narrows the admin lead table. Empty fields match everything.
type Query struct {
	Search string
	Status entity.LeadStatus
	City   string
}

func (q Query) IsZero() bool {
	return q.Search == "" && q.Status == "" && q.City == ""
}

// Filter keeps leads whose name, mobile or city contains the search text and whose status
// and city match exactly. Order is preserved.
func Filter(leads []entity.Lead, q Query) []entity.Lead {
	if q.IsZero() {
		return leads
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		if q.Status != "" && l.EffectiveStatus() != q.Status {
			continue
		}
		if q.City != "" && !strings.EqualFold(l.City, q.City) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(l.Name), search) &&
			!strings.Contains(l.Mobile, search) &&
			!strings.Contains(strings.ToLower(l.City), search) {
			continue
		}
		out = append(out, l)
	}
	return out
}
