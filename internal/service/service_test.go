package service

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/datastore/internal/dispatch"
	"github.com/roach88/datastore/internal/fault"
	"github.com/roach88/datastore/internal/model"
	"github.com/roach88/datastore/internal/store"
	"github.com/roach88/datastore/internal/testutil"
)

func newTestService(t *testing.T, opts ...Option) (*EventService, *store.Store) {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewEventService(st.Sessions(), st.Events(), opts...), st
}

func TestEventService_SaveLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	e := testutil.SampleEvent()

	outcome, err := svc.Save(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, dispatch.OutcomeInserted, outcome)

	outcome, err = svc.Save(ctx, testutil.SampleEvent())
	require.NoError(t, err)
	assert.Equal(t, dispatch.OutcomeUnchanged, outcome)

	changed, err := model.EventBuilderFrom(e).
		AddSlot(model.Slot{ID: model.NewID(), Title: "Closing"}).
		Build()
	require.NoError(t, err)
	outcome, err = svc.Save(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, dispatch.OutcomeUpdated, outcome)

	got, found, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, changed.Equal(got))
	assert.Len(t, got.Slots, 3)
}

func TestEventService_SaveObject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	saved, err := svc.SaveObject(ctx, nil)
	require.NoError(t, err)
	assert.False(t, saved)

	saved, err = svc.SaveObject(ctx, testutil.SampleEvent())
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = svc.SaveObject(ctx, testutil.SampleEvent())
	require.NoError(t, err)
	assert.True(t, saved, "unchanged still reports saved")
}

func TestEventService_GetMissing(t *testing.T) {
	svc, _ := newTestService(t)

	got, found, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestEventService_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc, _ := newTestService(t, WithLogger(logger))
	e := testutil.SampleEvent()

	_, err := svc.Save(ctx, e)
	require.NoError(t, err)

	ids, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{e.ID}, ids)

	deleted, err := svc.Delete(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Contains(t, logs.String(), "msg=deleting")

	deleted, err = svc.Delete(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	ids, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEventService_DeleteFailureIsDeleteKind(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	_, err := st.DB().ExecContext(ctx, "DROP TABLE event_slots")
	require.NoError(t, err)

	_, err = svc.Delete(ctx, testutil.EventID)
	require.Error(t, err)
	assert.True(t, fault.IsDelete(err))
	assert.Contains(t, err.Error(), "failed to delete Event with id "+testutil.EventID.String())
}

func TestEventService_RoleFailure(t *testing.T) {
	// SQLite has no SET ROLE; the session cannot be scoped.
	svc, _ := newTestService(t, WithRole("reader"))

	_, err := svc.Save(context.Background(), testutil.SampleEvent())
	require.Error(t, err)
	assert.True(t, fault.IsSession(err))
}

func TestEventService_LogsAndMetrics(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := prometheus.NewRegistry()
	metrics := dispatch.NewMetrics(reg)
	svc, _ := newTestService(t, WithLogger(logger), WithMetrics(metrics))

	_, err := svc.Save(ctx, testutil.SampleEvent())
	require.NoError(t, err)
	_, err = svc.Save(ctx, testutil.SampleEvent())
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "outcome=inserted")
	assert.Contains(t, logs.String(), "outcome=unchanged")
	series, err := promtest.GatherAndCount(reg, "datastore_save_outcomes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "one series per observed outcome")
}

func TestEventService_UpdateSlots(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	e := testutil.SampleEvent()
	_, err := svc.Save(ctx, e)
	require.NoError(t, err)

	closing := model.Slot{ID: model.NewID(), Title: "Closing", Offset: 2 * time.Hour}
	changed, err := model.EventBuilderFrom(e).
		SetName("Renamed").
		SetSlots([]model.Slot{e.Slots[1], closing}).
		Build()
	require.NoError(t, err)

	persisted, err := svc.UpdateSlots(ctx, changed)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "Spring meetup", persisted.Name, "event row is untouched")
	assert.Equal(t, []model.Slot{e.Slots[1], closing}, persisted.Slots)

	got, found, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, persisted.Equal(got))
}

func TestEventService_UpdateSlotsMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateSlots(context.Background(), testutil.SampleEvent())
	require.Error(t, err)
	assert.True(t, fault.IsSave(err))
	assert.Contains(t, err.Error(), "event not found")

	_, err = svc.UpdateSlots(context.Background(), nil)
	assert.True(t, fault.IsSave(err))
}
