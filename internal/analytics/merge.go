package analytics

import (
	"sort"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

// Source identifies where a set of leads was loaded from. Higher values win on conflict.
type Source int

const (
	SourceLocal Source = iota
	SourceBackend
	SourceRemote
)

func (s Source) String() string {
	switch s {
	case SourceLocal:
		return "local"
	case SourceBackend:
		return "backend"
	case SourceRemote:
		return "remote"
	}
	return "unknown"
}

// Event replaces the full set of leads known from one source.
type Event struct {
	Source Source
	Leads  []entity.Lead
}

func LocalLoaded(leads []entity.Lead) Event    { return Event{Source: SourceLocal, Leads: leads} }
func BackendFetched(leads []entity.Lead) Event { return Event{Source: SourceBackend, Leads: leads} }
func RemoteSnapshot(leads []entity.Lead) Event { return Event{Source: SourceRemote, Leads: leads} }

// View is the admin's merged lead list. It is immutable: Apply returns a new View.
type View struct {
	sets map[Source][]entity.Lead
}

func NewView() View {
	return View{sets: map[Source][]entity.Lead{}}
}

func (v View) Apply(ev Event) View {
	next := View{sets: make(map[Source][]entity.Lead, len(v.sets)+1)}
	for s, leads := range v.sets {
		next.sets[s] = leads
	}
	next.sets[ev.Source] = append([]entity.Lead(nil), ev.Leads...)
	return next
}

// Leads merges every source by lead id, remote over backend over local, newest first.
func (v View) Leads() []entity.Lead {
	byID := map[string]entity.Lead{}
	for _, s := range []Source{SourceLocal, SourceBackend, SourceRemote} {
		for _, l := range v.sets[s] {
			byID[l.ID] = l
		}
	}

	out := make([]entity.Lead, 0, len(byID))
	for _, l := range byID {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len reports how many distinct leads the view holds.
func (v View) Len() int {
	seen := map[string]struct{}{}
	for _, leads := range v.sets {
		for _, l := range leads {
			seen[l.ID] = struct{}{}
		}
	}
	return len(seen)
}
