package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xavierca1/nesthome-leads/internal/analytics"
	"github.com/xavierca1/nesthome-leads/internal/entity"
)

const (
	SourceRemote = "remote"
	SourceLocal  = "local"
)

// ManageLeadsUseCase backs the admin lead table. Edits are applied to the local copy first
// and then pushed to the remote collection; a remote failure is reported, never rolled back.
type ManageLeadsUseCase struct {
	Local  LocalLeadStore
	Remote RemoteLeadSink
	Logger *slog.Logger
}

func NewManageLeadsUseCase(local LocalLeadStore, remote RemoteLeadSink) *ManageLeadsUseCase {
	return &ManageLeadsUseCase{
		Local:  local,
		Remote: remote,
		Logger: slog.Default(),
	}
}

// List returns the remote collection, or the local slot when the remote sink is down.
func (uc *ManageLeadsUseCase) List(ctx context.Context, q analytics.Query) (*LeadListOutput, error) {
	if uc.Remote != nil {
		leads, err := uc.Remote.List(ctx)
		if err == nil {
			return &LeadListOutput{Leads: analytics.Filter(leads, q), Source: SourceRemote}, nil
		}
		uc.Logger.Warn("remote lead list failed, serving local copy", "error", err)
	}

	leads := uc.Local.ReadAll(ctx)
	return &LeadListOutput{Leads: analytics.Filter(leads, q), Source: SourceLocal}, nil
}

func (uc *ManageLeadsUseCase) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) (*MutationResult, error) {
	if !status.Valid() {
		return nil, newValidationError(ValidationErrors{{Field: "status", Message: "is not a valid status"}})
	}

	return uc.mutate(ctx, id,
		func(l *entity.Lead) { l.Status = status },
		func(ctx context.Context) error { return uc.Remote.UpdateStatus(ctx, id, status) },
	)
}

// UpdateDetails sends only the changed fields to the remote collection, so edits made
// elsewhere to the other fields survive a stale local copy.
func (uc *ManageLeadsUseCase) UpdateDetails(ctx context.Context, id string, input UpdateDetailsInput) (*MutationResult, error) {
	return uc.mutate(ctx, id,
		func(l *entity.Lead) { input.Apply(&l.LeadDetails) },
		func(ctx context.Context) error { return uc.Remote.UpdateDetails(ctx, id, input) },
	)
}

func (uc *ManageLeadsUseCase) Delete(ctx context.Context, id string) (*MutationResult, error) {
	localOK, err := uc.Local.Remove(ctx, id)
	if err != nil {
		return nil, &TechnicalError{Code: "LOCAL_STORE_ERROR", Message: "failed to delete lead", Err: err}
	}

	return uc.syncRemote(ctx, id, localOK, func(ctx context.Context) error {
		return uc.Remote.Remove(ctx, id)
	})
}

func (uc *ManageLeadsUseCase) mutate(
	ctx context.Context,
	id string,
	local func(*entity.Lead),
	remote func(context.Context) error,
) (*MutationResult, error) {
	localOK, err := uc.Local.Update(ctx, id, local)
	if err != nil {
		return nil, &TechnicalError{Code: "LOCAL_STORE_ERROR", Message: "failed to update lead", Err: err}
	}
	return uc.syncRemote(ctx, id, localOK, remote)
}

func (uc *ManageLeadsUseCase) syncRemote(
	ctx context.Context,
	id string,
	localOK bool,
	remote func(context.Context) error,
) (*MutationResult, error) {
	res := &MutationResult{LocalUpdated: localOK}

	if uc.Remote == nil {
		if !localOK {
			return nil, ErrLeadNotFound
		}
		res.Warning = "remote sink unavailable"
		return res, nil
	}

	if err := remote(ctx); err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			if !localOK {
				return nil, ErrLeadNotFound
			}
			res.Warning = "lead exists only in the local store"
			return res, nil
		}
		uc.Logger.Warn("remote lead mutation failed", "lead_id", id, "error", err)
		res.Warning = "saved locally, remote sync failed"
		return res, nil
	}

	res.RemoteSynced = true
	return res, nil
}
