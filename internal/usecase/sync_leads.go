package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xavierca1/nesthome-leads/internal/analytics"
	"github.com/xavierca1/nesthome-leads/internal/entity"
)

// SyncLeadsUseCase pushes a full lead list to the spreadsheet in one upsert call.
type SyncLeadsUseCase struct {
	Local  LocalLeadStore
	Remote RemoteLeadSink
	Sheets SheetBatchSync
	Logger *slog.Logger
}

func NewSyncLeadsUseCase(local LocalLeadStore, remote RemoteLeadSink, sheets SheetBatchSync) *SyncLeadsUseCase {
	return &SyncLeadsUseCase{
		Local:  local,
		Remote: remote,
		Sheets: sheets,
		Logger: slog.Default(),
	}
}

// Execute syncs the given leads. With an empty list it syncs everything this node knows:
// the local slot merged with the remote collection.
func (uc *SyncLeadsUseCase) Execute(ctx context.Context, leads []entity.Lead) (*SyncResult, error) {
	if uc.Sheets == nil {
		return nil, ErrNotConfigured
	}

	if len(leads) == 0 {
		leads = uc.knownLeads(ctx)
	}

	res, err := uc.Sheets.SyncBatch(ctx, leads)
	if err != nil {
		return &SyncResult{Synced: 0, Total: len(leads)}, fmt.Errorf("spreadsheet batch sync: %w", err)
	}

	uc.Logger.Info("spreadsheet batch sync finished", "synced", res.Synced, "total", res.Total)
	return &res, nil
}

func (uc *SyncLeadsUseCase) knownLeads(ctx context.Context) []entity.Lead {
	view := analytics.NewView().Apply(analytics.LocalLoaded(uc.Local.ReadAll(ctx)))

	if uc.Remote != nil {
		remote, err := uc.Remote.List(ctx)
		if err != nil {
			uc.Logger.Warn("remote lead list failed, syncing local copy only", "error", err)
		} else {
			view = view.Apply(analytics.RemoteSnapshot(remote))
		}
	}
	return view.Leads()
}
