package database

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/nesthome-leads/internal/entity"
	"github.com/xavierca1/nesthome-leads/internal/infra/realtime"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := NewDBConnection(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(ctx, db))

	t.Cleanup(func() {
		db.Exec(`DELETE FROM leads`)
		db.Exec(`DELETE FROM admin_credentials`)
		db.Close()
	})
	return db
}

func TestLeadRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewLeadRepository(openTestDB(t), realtime.NewHub())

	lead := *entity.NewLead("Asha Rao", "9876543210", "Indore", "within-1-month", time.Now())

	key, err := repo.Push(ctx, lead)
	require.NoError(t, err)
	assert.Len(t, key, 26)

	leads, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, key, leads[0].RemoteKey)
	assert.Equal(t, lead.ID, leads[0].ID)
	assert.Equal(t, entity.StatusNew, leads[0].Status)

	// both the key and the lead id address the row
	require.NoError(t, repo.UpdateStatus(ctx, lead.ID, entity.StatusContacted))
	budget, notes := "40 lakhs", "site visit"
	require.NoError(t, repo.UpdateDetails(ctx, key, entity.LeadDetailsPatch{Budget: &budget}))
	require.NoError(t, repo.UpdateDetails(ctx, lead.ID, entity.LeadDetailsPatch{Notes: &notes}))

	leads, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusContacted, leads[0].Status)
	assert.Equal(t, "40 lakhs", leads[0].Budget, "a notes-only patch keeps the budget")
	assert.Equal(t, "site visit", leads[0].Notes)

	_, err = repo.Push(ctx, lead)
	assert.Error(t, err, "lead ids are unique in the collection")

	require.NoError(t, repo.Remove(ctx, key))
	assert.ErrorIs(t, repo.Remove(ctx, key), entity.ErrLeadNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.NewString(), entity.StatusWon), entity.ErrLeadNotFound)
}

func TestLeadRepositoryRefreshPublishes(t *testing.T) {
	ctx := context.Background()
	hub := realtime.NewHub()
	repo := NewLeadRepository(openTestDB(t), hub)

	got := make(chan []entity.Lead, 4)
	unsubscribe := repo.Subscribe(func(leads []entity.Lead) { got <- leads })
	defer unsubscribe()

	_, err := repo.Push(ctx, *entity.NewLead("Asha Rao", "9876543210", "Indore", "exploring", time.Now()))
	require.NoError(t, err)
	require.NoError(t, repo.Refresh(ctx))

	select {
	case leads := <-got:
		assert.Len(t, leads, 1)
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
}

func TestCredentialRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCredentialRepository(openTestDB(t))

	hash, err := repo.PasswordHash(ctx)
	require.NoError(t, err)
	assert.Nil(t, hash)

	require.NoError(t, repo.SetPasswordHash(ctx, []byte("first")))
	require.NoError(t, repo.SetPasswordHash(ctx, []byte("second")))

	hash, err = repo.PasswordHash(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), hash)
}
