package usecase

import (
	"context"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

// LocalLeadStore is the node-local durable slot. It is authoritative for submissions.
type LocalLeadStore interface {
	Append(ctx context.Context, lead entity.Lead) error
	ReadAll(ctx context.Context) []entity.Lead
	Update(ctx context.Context, id string, fn func(*entity.Lead)) (bool, error)
	Remove(ctx context.Context, id string) (bool, error)
}

// RemoteLeadSink is the shared realtime collection. ref is the remote key or the lead id.
type RemoteLeadSink interface {
	Push(ctx context.Context, lead entity.Lead) (string, error)
	List(ctx context.Context) ([]entity.Lead, error)
	Remove(ctx context.Context, ref string) error
	UpdateStatus(ctx context.Context, ref string, status entity.LeadStatus) error
	UpdateDetails(ctx context.Context, ref string, patch entity.LeadDetailsPatch) error
	Subscribe(onChange func([]entity.Lead)) (unsubscribe func())
}

type SheetSync interface {
	SyncOne(ctx context.Context, lead entity.Lead) error
}

type SheetBatchSync interface {
	SyncBatch(ctx context.Context, leads []entity.Lead) (SyncResult, error)
}

type IngestForwarder interface {
	Forward(ctx context.Context, lead entity.Lead) error
}

type LeadAlerter interface {
	NotifyNewLead(ctx context.Context, lead entity.Lead) error
}

type SessionStore interface {
	Save(ctx context.Context, session *entity.Session) error
	Find(ctx context.Context, token string) (*entity.Session, error)
	Delete(ctx context.Context, token string) error
}

// CredentialStore holds the single shared admin secret as a bcrypt hash.
// PasswordHash returns a nil hash and no error when nothing is stored yet.
type CredentialStore interface {
	PasswordHash(ctx context.Context) ([]byte, error)
	SetPasswordHash(ctx context.Context, hash []byte) error
}

type ContactMailer interface {
	SendContact(msg *entity.ContactMessage) error
}
