// Package analytics holds the pure reporting functions behind the admin dashboard.
package analytics

import (
	"sort"
	"time"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

const (
	UnknownCity    = "Unknown"
	trendMonths    = 6
	dayLayout      = "2006-01-02"
	monthLabelForm = "Jan 2006"
)

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type MonthCount struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Label string     `json:"label"`
	Count int        `json:"count"`
}

type FunnelStage struct {
	Status entity.LeadStatus `json:"status"`
	Count  int               `json:"count"`
}

type Summary struct {
	Total      int `json:"total"`
	Today      int `json:"today"`
	Last7Days  int `json:"last7Days"`
	Last30Days int `json:"last30Days"`
}

// FunnelOrder is the presentation order of the sales funnel. Lost leave the funnel.
var FunnelOrder = []entity.LeadStatus{
	entity.StatusNew,
	entity.StatusContacted,
	entity.StatusQualified,
	entity.StatusProposal,
	entity.StatusNegotiation,
	entity.StatusWon,
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DailyCounts returns exactly days entries, oldest first, ending with the local day of now.
func DailyCounts(leads []entity.Lead, days int, now time.Time, loc *time.Location) []DayCount {
	if days <= 0 {
		return []DayCount{}
	}
	if loc == nil {
		loc = time.Local
	}

	today := startOfDay(now, loc)
	first := today.AddDate(0, 0, -(days - 1))

	series := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := first.AddDate(0, 0, i).Format(dayLayout)
		series[i] = DayCount{Date: d}
		index[d] = i
	}

	for _, l := range leads {
		if i, ok := index[l.SubmittedAt.In(loc).Format(dayLayout)]; ok {
			series[i].Count++
		}
	}
	return series
}

// ByCity counts leads per city, most frequent first. Ties keep first-seen order.
func ByCity(leads []entity.Lead) []Bucket {
	buckets := groupBy(leads, func(l entity.Lead) string {
		if l.City == "" {
			return UnknownCity
		}
		return l.City
	})
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	return buckets
}

// ByStatus counts leads per status in first-seen order. Counts always sum to len(leads).
func ByStatus(leads []entity.Lead) []Bucket {
	return groupBy(leads, func(l entity.Lead) string {
		return string(l.EffectiveStatus())
	})
}

func TopN(buckets []Bucket, n int) []Bucket {
	if n < 0 || len(buckets) <= n {
		return buckets
	}
	return buckets[:n]
}

func groupBy(leads []entity.Lead, key func(entity.Lead) string) []Bucket {
	buckets := []Bucket{}
	index := map[string]int{}
	for _, l := range leads {
		k := key(l)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, Bucket{Key: k})
		}
		buckets[i].Count++
	}
	return buckets
}

// MonthlyTrend keeps the most recent populated months, in chronological order.
func MonthlyTrend(leads []entity.Lead, loc *time.Location) []MonthCount {
	if loc == nil {
		loc = time.Local
	}

	type ym struct {
		year  int
		month time.Month
	}
	counts := map[ym]int{}
	for _, l := range leads {
		t := l.SubmittedAt.In(loc)
		counts[ym{t.Year(), t.Month()}]++
	}

	out := make([]MonthCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, MonthCount{
			Year:  k.year,
			Month: k.month,
			Label: time.Date(k.year, k.month, 1, 0, 0, 0, 0, loc).Format(monthLabelForm),
			Count: c,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})

	if len(out) > trendMonths {
		out = out[len(out)-trendMonths:]
	}
	return out
}

func Funnel(leads []entity.Lead) []FunnelStage {
	counts := map[entity.LeadStatus]int{}
	for _, l := range leads {
		counts[l.EffectiveStatus()]++
	}

	stages := make([]FunnelStage, len(FunnelOrder))
	for i, s := range FunnelOrder {
		stages[i] = FunnelStage{Status: s, Count: counts[s]}
	}
	return stages
}

// Summarize counts leads received today and over the trailing 7 and 30 local days.
func Summarize(leads []entity.Lead, now time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.Local
	}
	today := startOfDay(now, loc)
	week := today.AddDate(0, 0, -6)
	month := today.AddDate(0, 0, -29)

	s := Summary{Total: len(leads)}
	for _, l := range leads {
		t := l.SubmittedAt.In(loc)
		if !t.Before(today) {
			s.Today++
		}
		if !t.Before(week) {
			s.Last7Days++
		}
		if !t.Before(month) {
			s.Last30Days++
		}
	}
	return s
}

type Report struct {
	Summary  Summary       `json:"summary"`
	Daily    []DayCount    `json:"daily"`
	ByCity   []Bucket      `json:"byCity"`
	ByStatus []Bucket      `json:"byStatus"`
	Monthly  []MonthCount  `json:"monthly"`
	Funnel   []FunnelStage `json:"funnel"`
}

const topCities = 10

func BuildReport(leads []entity.Lead, days int, now time.Time, loc *time.Location) Report {
	return Report{
		Summary:  Summarize(leads, now, loc),
		Daily:    DailyCounts(leads, days, now, loc),
		ByCity:   TopN(ByCity(leads), topCities),
		ByStatus: ByStatus(leads),
		Monthly:  MonthlyTrend(leads, loc),
		Funnel:   Funnel(leads),
	}
}
