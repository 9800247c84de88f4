package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/nesthome-leads/internal/entity"
	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

// TestSyncAllLeadsReportsCounts - five stored leads, webhook confirms all five
func TestSyncAllLeadsReportsCounts(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	local := &memLocalStore{}
	for i := 0; i < 5; i++ {
		require.NoError(t, local.Append(ctx, seedLead(fmt.Sprintf("lead-%d", i), "Lead", now.Add(time.Duration(i)*time.Minute))))
	}

	sheets := new(MockSheets)
	sheets.On("SyncBatch", mock.Anything, mock.MatchedBy(func(leads []entity.Lead) bool {
		return len(leads) == 5
	})).Return(usecase.SyncResult{Synced: 5, Total: 5}, nil)

	uc := usecase.NewSyncLeadsUseCase(local, nil, sheets)
	res, err := uc.Execute(ctx, nil)

	require.NoError(t, err)
	assert.Equal(t, 5, res.Synced)
	assert.Equal(t, 5, res.Total)
}

func TestSyncAllLeadsMergesRemote(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	local := &memLocalStore{}
	require.NoError(t, local.Append(ctx, seedLead("shared", "Old name", now)))

	updated := seedLead("shared", "New name", now)
	updated.Status = entity.StatusQualified
	remote := new(MockRemoteSink)
	remote.On("List", mock.Anything).Return([]entity.Lead{updated, seedLead("remote-only", "R", now)}, nil)

	var sent []entity.Lead
	sheets := new(MockSheets)
	sheets.On("SyncBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]entity.Lead) }).
		Return(usecase.SyncResult{Synced: 2, Total: 2}, nil)

	uc := usecase.NewSyncLeadsUseCase(local, remote, sheets)
	_, err := uc.Execute(ctx, nil)

	require.NoError(t, err)
	require.Len(t, sent, 2)
	for _, l := range sent {
		if l.ID == "shared" {
			assert.Equal(t, "New name", l.Name)
			assert.Equal(t, entity.StatusQualified, l.Status)
		}
	}
}

func TestSyncAllLeadsUsesProvidedList(t *testing.T) {
	provided := []entity.Lead{seedLead("x", "X", time.Now())}

	sheets := new(MockSheets)
	sheets.On("SyncBatch", mock.Anything, provided).Return(usecase.SyncResult{Synced: 1, Total: 1}, nil)

	local := new(MockLocalStore)
	uc := usecase.NewSyncLeadsUseCase(local, nil, sheets)
	res, err := uc.Execute(context.Background(), provided)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	local.AssertNotCalled(t, "ReadAll", mock.Anything)
}

func TestSyncAllLeadsFailure(t *testing.T) {
	sheets := new(MockSheets)
	sheets.On("SyncBatch", mock.Anything, mock.Anything).Return(usecase.SyncResult{}, errors.New("webhook returned 502"))

	uc := usecase.NewSyncLeadsUseCase(&memLocalStore{}, nil, sheets)
	res, err := uc.Execute(context.Background(), []entity.Lead{seedLead("x", "X", time.Now())})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook returned 502")
	assert.Equal(t, 0, res.Synced)
	assert.Equal(t, 1, res.Total)
}

func TestSyncAllLeadsNotConfigured(t *testing.T) {
	uc := usecase.NewSyncLeadsUseCase(&memLocalStore{}, nil, nil)

	_, err := uc.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, usecase.ErrNotConfigured)
}
