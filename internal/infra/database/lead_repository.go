package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/xavierca1/nesthome-leads/internal/entity"
	"github.com/xavierca1/nesthome-leads/internal/infra/realtime"
)

const leadColumns = `key, lead_id, name, mobile, city, timeline, status, submitted_at,
	plot_size, budget, project_type, notes`

// LeadRepository is the shared lead collection. Rows are keyed by a ULID assigned on
// insert, so key order is insertion order.
type LeadRepository struct {
	DB  *sql.DB
	Hub *realtime.Hub
}

func NewLeadRepository(db *sql.DB, hub *realtime.Hub) *LeadRepository {
	return &LeadRepository{DB: db, Hub: hub}
}

func (r *LeadRepository) Push(ctx context.Context, lead entity.Lead) (string, error) {
	key := ulid.Make().String()

	query := `
		INSERT INTO leads (key, lead_id, name, mobile, city, timeline, status, submitted_at,
			plot_size, budget, project_type, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.DB.ExecContext(ctx, query,
		key,
		lead.ID,
		lead.Name,
		lead.Mobile,
		lead.City,
		lead.Timeline,
		string(lead.EffectiveStatus()),
		lead.SubmittedAt,
		lead.PlotSize,
		lead.Budget,
		lead.ProjectType,
		lead.Notes,
	)
	if err != nil {
		return "", fmt.Errorf("insert lead %s: %w", lead.ID, err)
	}

	return key, nil
}

// List returns the whole collection, newest first.
func (r *LeadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY submitted_at DESC, key DESC`)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		var (
			l      entity.Lead
			status string
		)
		if err := rows.Scan(
			&l.RemoteKey,
			&l.ID,
			&l.Name,
			&l.Mobile,
			&l.City,
			&l.Timeline,
			&status,
			&l.SubmittedAt,
			&l.PlotSize,
			&l.Budget,
			&l.ProjectType,
			&l.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		l.Status = entity.LeadStatus(status)
		l.SubmittedAt = l.SubmittedAt.UTC()
		leads = append(leads, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

// Remove deletes by remote key or by lead id.
func (r *LeadRepository) Remove(ctx context.Context, ref string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE key = $1 OR lead_id = $1`, ref)
	if err != nil {
		return fmt.Errorf("delete lead %s: %w", ref, err)
	}
	return expectAffected(res)
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, ref string, status entity.LeadStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET status = $2, updated_at = NOW() WHERE key = $1 OR lead_id = $1`,
		ref, string(status),
	)
	if err != nil {
		return fmt.Errorf("update lead status %s: %w", ref, err)
	}
	return expectAffected(res)
}

// UpdateDetails writes only the non-nil fields of the patch.
func (r *LeadRepository) UpdateDetails(ctx context.Context, ref string, p entity.LeadDetailsPatch) error {
	query := `
		UPDATE leads
		SET plot_size    = COALESCE($2, plot_size),
		    budget       = COALESCE($3, budget),
		    project_type = COALESCE($4, project_type),
		    notes        = COALESCE($5, notes),
		    updated_at   = NOW()
		WHERE key = $1 OR lead_id = $1
	`

	res, err := r.DB.ExecContext(ctx, query, ref,
		nullable(p.PlotSize), nullable(p.Budget), nullable(p.ProjectType), nullable(p.Notes))
	if err != nil {
		return fmt.Errorf("update lead details %s: %w", ref, err)
	}
	return expectAffected(res)
}

// Subscribe delivers the current snapshot, then one snapshot per change.
func (r *LeadRepository) Subscribe(onChange func([]entity.Lead)) func() {
	return r.Hub.Subscribe(onChange)
}

// Refresh reloads the collection and publishes it to subscribers.
func (r *LeadRepository) Refresh(ctx context.Context) error {
	leads, err := r.List(ctx)
	if err != nil {
		return err
	}
	r.Hub.Publish(leads)
	return nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}
