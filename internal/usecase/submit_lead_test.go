package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/nesthome-leads/internal/entity"
	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

func validInput() usecase.SubmitLeadInput {
	return usecase.SubmitLeadInput{
		Name:     "Asha Rao",
		Mobile:   "9876543210",
		City:     "Indore",
		Timeline: "within-1-month",
	}
}

// TestSubmitLeadStoresLocallyAndSyncs - happy path through every sink
func TestSubmitLeadStoresLocallyAndSyncs(t *testing.T) {
	ctx := context.Background()

	local := &memLocalStore{}
	remote := new(MockRemoteSink)
	sheets := new(MockSheets)

	remote.On("Push", mock.Anything, mock.AnythingOfType("entity.Lead")).Return("01HZY3Q7W8K9M2N4P5R6S7T8V9", nil)
	sheets.On("SyncOne", mock.Anything, mock.AnythingOfType("entity.Lead")).Return(nil)

	uc := usecase.NewSubmitLeadUseCase(local, remote, sheets, nil, nil, 0)

	before := time.Now()
	out, err := uc.Execute(ctx, validInput())

	require.NoError(t, err)
	require.NotNil(t, out)
	assert.NotEmpty(t, out.Lead.ID)
	assert.Equal(t, entity.StatusNew, out.Lead.Status)
	assert.Equal(t, "Asha Rao", out.Lead.Name)
	assert.WithinDuration(t, before, out.Lead.SubmittedAt, 2*time.Second)
	assert.True(t, out.GoogleSheetsSynced)
	assert.Equal(t, "01HZY3Q7W8K9M2N4P5R6S7T8V9", out.RemoteKey)

	stored := local.ReadAll(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, out.Lead.ID, stored[0].ID)

	remote.AssertNumberOfCalls(t, "Push", 1)
	sheets.AssertNumberOfCalls(t, "SyncOne", 1)
}

// TestSubmitLeadRejectsInvalidMobile - no sink is touched on validation failure
func TestSubmitLeadRejectsInvalidMobile(t *testing.T) {
	cases := map[string]string{
		"too short":         "98765",
		"too long":          "98765432101",
		"leading digit 5":   "5876543210",
		"leading digit 0":   "0876543210",
		"non digit":         "98765x3210",
		"country code":      "+919876543210",
		"inner whitespace":  "98765 43210",
		"empty after trims": "   ",
	}

	for name, mobile := range cases {
		t.Run(name, func(t *testing.T) {
			local := new(MockLocalStore)
			remote := new(MockRemoteSink)
			sheets := new(MockSheets)

			uc := usecase.NewSubmitLeadUseCase(local, remote, sheets, nil, nil, 0)

			input := validInput()
			input.Mobile = mobile
			out, err := uc.Execute(context.Background(), input)

			assert.Nil(t, out)
			require.Error(t, err)
			assert.True(t, usecase.IsDomainError(err))

			var de *usecase.DomainError
			require.True(t, errors.As(err, &de))
			assert.Contains(t, de.Fields, "mobile")

			local.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
			remote.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
			sheets.AssertNotCalled(t, "SyncOne", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitLeadRejectsOtherFields(t *testing.T) {
	input := usecase.SubmitLeadInput{Name: "A", Mobile: "9876543210", City: "Mumbai", Timeline: "someday"}

	uc := usecase.NewSubmitLeadUseCase(&memLocalStore{}, nil, nil, nil, nil, 0)
	_, err := uc.Execute(context.Background(), input)

	var de *usecase.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "VALIDATION_ERROR", de.Code)
	assert.Contains(t, de.Fields, "name")
	assert.Contains(t, de.Fields, "city")
	assert.Contains(t, de.Fields, "timeline")
	assert.NotContains(t, de.Fields, "mobile")
}

// TestSubmitLeadLocalFailureFailsRequest - the local slot is the only mandatory sink
func TestSubmitLeadLocalFailureFailsRequest(t *testing.T) {
	local := new(MockLocalStore)
	remote := new(MockRemoteSink)

	local.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	uc := usecase.NewSubmitLeadUseCase(local, remote, nil, nil, nil, 0)
	out, err := uc.Execute(context.Background(), validInput())

	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, usecase.IsTechnicalError(err))
	remote.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}

// TestSubmitLeadRemoteTimeoutIsNonFatal - a slow remote write loses the race but the lead is kept
func TestSubmitLeadRemoteTimeoutIsNonFatal(t *testing.T) {
	local := &memLocalStore{}
	remote := new(MockRemoteSink)
	sheets := new(MockSheets)

	remote.On("Push", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(300 * time.Millisecond) }).
		Return("late-key", nil)
	sheets.On("SyncOne", mock.Anything, mock.Anything).Return(nil)

	var failures atomic.Int32
	uc := usecase.NewSubmitLeadUseCase(local, remote, sheets, nil, nil, 20*time.Millisecond)
	uc.RecordFailure = func(step string) {
		if step == usecase.StepRemoteSink {
			failures.Add(1)
		}
	}

	start := time.Now()
	out, err := uc.Execute(context.Background(), validInput())

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.Empty(t, out.RemoteKey)
	assert.True(t, out.GoogleSheetsSynced)
	assert.Equal(t, int32(1), failures.Load())
	assert.Len(t, local.ReadAll(context.Background()), 1)

	var timedOut bool
	for _, s := range out.Steps {
		if s.Name == usecase.StepRemoteSink {
			timedOut = s.TimedOut
		}
	}
	assert.True(t, timedOut)
}

func TestSubmitLeadSheetsFailureReported(t *testing.T) {
	local := &memLocalStore{}
	remote := new(MockRemoteSink)
	sheets := new(MockSheets)

	remote.On("Push", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))
	sheets.On("SyncOne", mock.Anything, mock.Anything).Return(errors.New("webhook returned 500"))

	uc := usecase.NewSubmitLeadUseCase(local, remote, sheets, nil, nil, 0)
	out, err := uc.Execute(context.Background(), validInput())

	require.NoError(t, err)
	assert.False(t, out.GoogleSheetsSynced)
	assert.Empty(t, out.RemoteKey)
	assert.Len(t, local.ReadAll(context.Background()), 1)
}

// TestSubmitLeadForwardsDetached - the ingest forward runs after the response is built
func TestSubmitLeadForwardsDetached(t *testing.T) {
	local := &memLocalStore{}
	forwarder := new(MockForwarder)

	called := make(chan entity.Lead, 1)
	forwarder.On("Forward", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { called <- args.Get(1).(entity.Lead) }).
		Return(nil)

	uc := usecase.NewSubmitLeadUseCase(local, nil, nil, forwarder, nil, 0)
	out, err := uc.Execute(context.Background(), validInput())
	require.NoError(t, err)

	select {
	case lead := <-called:
		assert.Equal(t, out.Lead.ID, lead.ID)
	case <-time.After(time.Second):
		t.Fatal("forwarder was not called")
	}
}

func TestSubmitLeadMintsUniqueIDs(t *testing.T) {
	local := &memLocalStore{}
	uc := usecase.NewSubmitLeadUseCase(local, nil, nil, nil, nil, 0)

	first, err := uc.Execute(context.Background(), validInput())
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.Lead.ID, second.Lead.ID)

	stored := local.ReadAll(context.Background())
	require.Len(t, stored, 2)
	assert.Equal(t, second.Lead.ID, stored[0].ID)
	assert.Equal(t, first.Lead.ID, stored[1].ID)
}

func TestSubmitLeadKeepsClientIdentity(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	id := uuid.NewString()

	uc := usecase.NewSubmitLeadUseCase(&memLocalStore{}, nil, nil, nil, nil, 0)
	uc.Now = func() time.Time { return now }

	input := validInput()
	input.ID = id
	input.SubmittedAt = now.Add(-5 * time.Minute).Format(time.RFC3339)

	out, err := uc.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, id, out.Lead.ID)
	assert.Equal(t, now.Add(-5*time.Minute), out.Lead.SubmittedAt)

	// stale or malformed client values are replaced
	input.ID = "not-a-uuid"
	input.SubmittedAt = now.Add(-72 * time.Hour).Format(time.RFC3339)

	out, err = uc.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", out.Lead.ID)
	assert.Equal(t, now, out.Lead.SubmittedAt)
}

func TestSubmitLeadReusedClientIDGetsFreshID(t *testing.T) {
	ctx := context.Background()
	local := &memLocalStore{}
	remote := new(MockRemoteSink)
	remote.On("Push", mock.Anything, mock.AnythingOfType("entity.Lead")).Return("01HZKEY", nil)

	uc := usecase.NewSubmitLeadUseCase(local, remote, nil, nil, nil, 0)

	input := validInput()
	input.ID = uuid.NewString()

	first, err := uc.Execute(ctx, input)
	require.NoError(t, err)
	second, err := uc.Execute(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, input.ID, first.Lead.ID)
	assert.NotEqual(t, input.ID, second.Lead.ID)

	stored := local.ReadAll(ctx)
	require.Len(t, stored, 2)
	assert.NotEqual(t, stored[0].ID, stored[1].ID)
	assert.Equal(t, second.Lead.ID, stored[0].ID)

	// the remote push carries the replacement id too
	remote.AssertCalled(t, "Push", mock.Anything, mock.MatchedBy(func(l entity.Lead) bool { return l.ID == second.Lead.ID }))
}

func TestSubmitLeadNormalizesName(t *testing.T) {
	uc := usecase.NewSubmitLeadUseCase(&memLocalStore{}, nil, nil, nil, nil, 0)

	input := validInput()
	input.Name = "  Asha    Rao "
	out, err := uc.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", out.Lead.Name)
}
