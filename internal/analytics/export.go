package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

var csvHeader = []string{
	"ID", "Name", "Mobile", "City", "Timeline", "Status", "Submitted At",
	"Plot Size", "Budget", "Project Type", "Notes",
}

// WriteCSV writes one row per lead with timestamps rendered in loc.
func WriteCSV(w io.Writer, leads []entity.Lead, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, l := range leads {
		row := []string{
			l.ID,
			cell(l.Name),
			l.Mobile,
			l.City,
			timelineLabel(l.Timeline),
			string(l.EffectiveStatus()),
			l.SubmittedAt.In(loc).Format("2006-01-02 15:04"),
			cell(l.PlotSize),
			cell(l.Budget),
			cell(l.ProjectType),
			cell(l.Notes),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", l.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// cell quotes free text that a spreadsheet would otherwise evaluate as a formula.
func cell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func timelineLabel(value string) string {
	for _, t := range entity.Timelines {
		if t.Value == value {
			return t.Label
		}
	}
	return value
}
