//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enroll/pkg/testutil/containers"
)

func TestPostgresStoreAppendAndList(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	ctx := context.Background()

	store := NewPostgresStore(pc.DB)
	require.NoError(t, store.Migrate(ctx))

	runID := uuid.NewString()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: uuid.New(), Timestamp: base, RunID: runID, Action: ActionRunStarted, Stage: "SEED_REQUIRED", Device: "Chrome/120.0 on Linux"},
		{ID: uuid.New(), Timestamp: base.Add(time.Second), RunID: runID, Action: ActionStageAdvanced, Stage: "KYC_PENDING"},
		{ID: uuid.New(), Timestamp: base.Add(2 * time.Second), RunID: runID, Action: ActionValidationRejected, Stage: "KYC_PENDING", Reason: "Enter a valid Aadhar number"},
	}
	for _, ev := range events {
		require.NoError(t, store.Append(ctx, ev))
	}

	// Another run's events must not bleed in.
	require.NoError(t, store.Append(ctx, Event{
		ID: uuid.New(), Timestamp: base, RunID: uuid.NewString(), Action: ActionRunStarted, Stage: "SEED_REQUIRED",
	}))

	got, err := store.ListByRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ActionRunStarted, got[0].Action)
	assert.Equal(t, "Chrome/120.0 on Linux", got[0].Device)
	assert.Equal(t, ActionStageAdvanced, got[1].Action)
	assert.Equal(t, "Enter a valid Aadhar number", got[2].Reason)
}

func TestPostgresStoreMigrateIdempotent(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	ctx := context.Background()

	store := NewPostgresStore(pc.DB)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))
}
