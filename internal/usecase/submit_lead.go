package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/nesthome-leads/internal/entity"
)

const (
	StepLocalSink       = "local_sink"
	StepIngestForward   = "ingest_forward"
	StepRemoteSink      = "remote_sink"
	StepSpreadsheetSync = "spreadsheet_sync"
	StepLeadAlert       = "lead_alert"

	DefaultRemoteWriteTimeout = 3 * time.Second

	clientClockSkew     = time.Minute
	clientTimestampSpan = 24 * time.Hour
)

// FailureRecorder counts best-effort step failures per step name.
type FailureRecorder func(step string)

type SubmitLeadUseCase struct {
	Local     LocalLeadStore
	Remote    RemoteLeadSink
	Sheets    SheetSync
	Forwarder IngestForwarder
	Alerter   LeadAlerter

	RemoteTimeout time.Duration
	RecordFailure FailureRecorder
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewSubmitLeadUseCase wires the pipeline. Only local is required; nil collaborators are
// skipped at submission time.
func NewSubmitLeadUseCase(
	local LocalLeadStore,
	remote RemoteLeadSink,
	sheets SheetSync,
	forwarder IngestForwarder,
	alerter LeadAlerter,
	remoteTimeout time.Duration,
) *SubmitLeadUseCase {
	if remoteTimeout <= 0 {
		remoteTimeout = DefaultRemoteWriteTimeout
	}
	return &SubmitLeadUseCase{
		Local:         local,
		Remote:        remote,
		Sheets:        sheets,
		Forwarder:     forwarder,
		Alerter:       alerter,
		RemoteTimeout: remoteTimeout,
		RecordFailure: func(string) {},
		Now:           time.Now,
		Logger:        slog.Default(),
	}
}

func (uc *SubmitLeadUseCase) Execute(ctx context.Context, input SubmitLeadInput) (*SubmitLeadOutput, error) {
	input = NormalizeSubmitLeadInput(input)

	if errs := ValidateSubmitLeadInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	now := uc.Now()
	lead := entity.NewLead(input.Name, input.Mobile, input.City, input.Timeline, now)

	// A client that stored the lead on its side first sends the id and timestamp it minted.
	if _, err := uuid.Parse(input.ID); err == nil {
		lead.ID = input.ID
	}
	if ts, err := time.Parse(time.RFC3339, input.SubmittedAt); err == nil && withinClientWindow(ts, now) {
		lead.SubmittedAt = ts.UTC()
	}

	var (
		keyMu     sync.Mutex
		remoteKey string
	)

	saga := NewSaga()
	saga.OnStepFailure(func(step string, err error) {
		uc.Logger.Warn("lead sink step failed", "step", step, "lead_id", lead.ID, "error", err)
		uc.RecordFailure(step)
	})

	// Runs before every other step, so they all see the final id.
	saga.AddMandatory(StepLocalSink, func(ctx context.Context) error {
		err := uc.Local.Append(ctx, *lead)
		if errors.Is(err, entity.ErrDuplicateLeadID) {
			uc.Logger.Info("client lead id already stored, minting a new one", "client_id", lead.ID)
			lead.ID = uuid.NewString()
			err = uc.Local.Append(ctx, *lead)
		}
		return err
	})

	if uc.Forwarder != nil {
		saga.AddBestEffort(Step{
			Name:     StepIngestForward,
			Detached: true,
			Fn: func(ctx context.Context) error {
				return uc.Forwarder.Forward(ctx, *lead)
			},
		})
	}

	if uc.Remote != nil {
		saga.AddBestEffort(Step{
			Name:    StepRemoteSink,
			Timeout: uc.RemoteTimeout,
			Fn: func(ctx context.Context) error {
				key, err := uc.Remote.Push(ctx, *lead)
				if err != nil {
					return err
				}
				uc.Logger.Debug("lead pushed to remote sink", "lead_id", lead.ID, "key", key)
				keyMu.Lock()
				remoteKey = key
				keyMu.Unlock()
				return nil
			},
		})
	}

	if uc.Sheets != nil {
		saga.AddBestEffort(Step{
			Name: StepSpreadsheetSync,
			Fn: func(ctx context.Context) error {
				return uc.Sheets.SyncOne(ctx, *lead)
			},
		})
	}

	if uc.Alerter != nil {
		saga.AddBestEffort(Step{
			Name:     StepLeadAlert,
			Detached: true,
			Fn: func(ctx context.Context) error {
				return uc.Alerter.NotifyNewLead(ctx, *lead)
			},
		})
	}

	results, err := saga.Execute(ctx)
	if err != nil {
		return nil, &TechnicalError{
			Code:    "LOCAL_STORE_ERROR",
			Message: "failed to store lead",
			Err:     err,
		}
	}

	out := &SubmitLeadOutput{Lead: *lead}

	for _, r := range results {
		switch r.Name {
		case StepSpreadsheetSync:
			out.GoogleSheetsSynced = r.OK()
		case StepRemoteSink:
			// a push that lost the race may still land later; its key is not reported
			if r.OK() {
				keyMu.Lock()
				out.RemoteKey = remoteKey
				keyMu.Unlock()
			}
		}
	}
	out.Steps = results

	uc.Logger.Info("lead submitted",
		"lead_id", lead.ID,
		"city", lead.City,
		"timeline", lead.Timeline,
		"sheets_synced", out.GoogleSheetsSynced,
	)

	return out, nil
}

func withinClientWindow(ts, now time.Time) bool {
	return ts.After(now.Add(-clientTimestampSpan)) && ts.Before(now.Add(clientClockSkew))
}
