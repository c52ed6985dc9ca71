package dispatch

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/datastore/internal/fault"
	"github.com/roach88/datastore/internal/model"
	"github.com/roach88/datastore/internal/testutil"
)

type testSession struct {
	name string
}

func newRecordingGroup(t *testing.T) (*testutil.Recorder[*model.Event, *testSession], *OperationGroup[*model.Event, *testSession]) {
	t.Helper()
	rec := testutil.NewRecorder[*model.Event, *testSession]()
	ops, err := NewCascadingOperationGroup(rec.Store, rec.Update, rec.Cascade, rec.Retrieve)
	require.NoError(t, err)
	return rec, ops
}

func paramsFor(e *model.Event) ParamGroup[*model.Event] {
	if e == nil {
		return NewParamGroup[*model.Event](nil, model.NewEventBuilder())
	}
	return NewParamGroup(e, model.Builder[*model.Event](model.EventBuilderFrom(e)))
}

func TestSave_AbsentCandidateIsNoOp(t *testing.T) {
	rec, ops := newRecordingGroup(t)

	saved, err := SaveObject(context.Background(), paramsFor(nil), ops, &testSession{})
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Empty(t, rec.Calls(), "no callback may run for an absent candidate")
}

func TestSave_InsertWhenAbsent(t *testing.T) {
	rec, ops := newRecordingGroup(t)
	e := testutil.SampleEvent()

	outcome, err := Save(context.Background(), paramsFor(e), ops, &testSession{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)
	assert.Equal(t, []string{testutil.OpRetrieve, testutil.OpStore}, rec.Ops())
	assert.Equal(t, e.ID, rec.Calls()[1].ID)
}

func TestSave_UpdateWhenDifferent(t *testing.T) {
	rec, ops := newRecordingGroup(t)
	existing := testutil.SampleEvent()
	rec.Seed(existing)

	changed, err := model.EventBuilderFrom(existing).SetName("Renamed").Build()
	require.NoError(t, err)

	var gotUpdated, gotExisting *model.Event
	update := func(ctx context.Context, updated, prior *model.Event, sess *testSession) error {
		gotUpdated, gotExisting = updated, prior
		return rec.Update(ctx, updated, prior, sess)
	}
	ops, err = NewOperationGroup(rec.Store, update, rec.Retrieve)
	require.NoError(t, err)

	saved, err := SaveObject(context.Background(), paramsFor(changed), ops, &testSession{})
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, []string{testutil.OpRetrieve, testutil.OpUpdate}, rec.Ops())
	assert.Same(t, changed, gotUpdated)
	assert.Same(t, existing, gotExisting)
}

func TestSave_NoOpWhenEqual(t *testing.T) {
	rec, ops := newRecordingGroup(t)
	rec.Seed(testutil.SampleEvent())

	outcome, err := Save(context.Background(), paramsFor(testutil.SampleEvent()), ops, &testSession{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
	assert.True(t, outcome.Saved(), "equal state is reported as saved")
	assert.Equal(t, []string{testutil.OpRetrieve}, rec.Ops())
}

func TestSave_Idempotent(t *testing.T) {
	rec, ops := newRecordingGroup(t)
	ctx := context.Background()
	sess := &testSession{}
	e := testutil.SampleEvent()

	saved, err := SaveObject(ctx, paramsFor(e), ops, sess)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1, rec.Count(testutil.OpStore))
	assert.Equal(t, 0, rec.Count(testutil.OpUpdate))

	rec.ResetCalls()
	saved, err = SaveObject(ctx, paramsFor(e), ops, sess)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 0, rec.Count(testutil.OpStore))
	assert.Equal(t, 0, rec.Count(testutil.OpUpdate))
}

func TestSave_NeverCallsCascade(t *testing.T) {
	rec, ops := newRecordingGroup(t)
	rec.Seed(testutil.SampleEvent())
	changed, err := model.EventBuilderFrom(testutil.SampleEvent()).SetSlots(nil).Build()
	require.NoError(t, err)

	_, err = Save(context.Background(), paramsFor(changed), ops, &testSession{})
	require.NoError(t, err)
	assert.Zero(t, rec.Count(testutil.OpCascade))
}

func TestSave_PassesSessionThrough(t *testing.T) {
	rec, ops := newRecordingGroup(t)
	sess := &testSession{name: "request-42"}

	_, err := Save(context.Background(), paramsFor(testutil.SampleEvent()), ops, sess)
	require.NoError(t, err)
	for _, got := range rec.Sessions() {
		assert.Same(t, sess, got)
	}
}

func TestSave_RetrieveFailure(t *testing.T) {
	rec, ops := newRecordingGroup(t)
	cause := errors.New("connection reset")
	rec.FailOn(testutil.OpRetrieve, cause)
	e := testutil.SampleEvent()

	saved, err := SaveObject(context.Background(), paramsFor(e), ops, &testSession{})
	require.Error(t, err)
	assert.False(t, saved)
	assert.True(t, fault.IsRetrieve(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to retrieve Event with id "+e.ID.String()+": connection reset", err.Error())
	assert.Equal(t, []string{testutil.OpRetrieve}, rec.Ops(), "no write after a failed retrieve")
}

func TestSave_StoreFailure(t *testing.T) {
	rec, ops := newRecordingGroup(t)
	cause := errors.New("disk full")
	rec.FailOn(testutil.OpStore, cause)
	e := testutil.SampleEvent()

	_, err := Save(context.Background(), paramsFor(e), ops, &testSession{})
	require.Error(t, err)
	assert.True(t, fault.IsSave(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save Event with id "+e.ID.String()+": disk full", err.Error())
	assert.Equal(t, 1, rec.Count(testutil.OpStore), "no retry")
}

func TestSave_UpdateFailure(t *testing.T) {
	rec, ops := newRecordingGroup(t)
	rec.Seed(testutil.SampleEvent())
	rec.FailOn(testutil.OpUpdate, errors.New("constraint violated"))
	changed, err := model.EventBuilderFrom(testutil.SampleEvent()).SetSeats([]int{1}).Build()
	require.NoError(t, err)

	_, err = Save(context.Background(), paramsFor(changed), ops, &testSession{})
	require.Error(t, err)
	assert.True(t, fault.IsSave(err))
	assert.Contains(t, err.Error(), "failed to update Event with id")
	assert.Zero(t, rec.Count(testutil.OpStore))
}

func TestSave_FaultErrorsPassThrough(t *testing.T) {
	rec, ops := newRecordingGroup(t)
	codecErr := fault.Codec("uuid list", "parse element %q", "nope")
	rec.FailOn(testutil.OpRetrieve, codecErr)

	_, err := Save(context.Background(), paramsFor(testutil.SampleEvent()), ops, &testSession{})
	assert.Same(t, codecErr, err)
	assert.True(t, fault.IsCodec(err))
}

func TestOperationGroup_RequiredCallbacks(t *testing.T) {
	rec := testutil.NewRecorder[*model.Event, *testSession]()

	_, err := NewOperationGroup(nil, rec.Update, rec.Retrieve)
	assert.ErrorIs(t, err, ErrMissingCallback)
	_, err = NewOperationGroup(rec.Store, nil, rec.Retrieve)
	assert.ErrorIs(t, err, ErrMissingCallback)
	_, err = NewOperationGroup[*model.Event, *testSession](rec.Store, rec.Update, nil)
	assert.ErrorIs(t, err, ErrMissingCallback)
	_, err = NewCascadingOperationGroup(rec.Store, rec.Update, nil, rec.Retrieve)
	assert.ErrorIs(t, err, ErrMissingCallback)

	plain, err := NewOperationGroup(rec.Store, rec.Update, rec.Retrieve)
	require.NoError(t, err)
	assert.False(t, plain.HasCascadeUpdate())
	assert.Nil(t, plain.CascadeUpdate())
	assert.NotNil(t, plain.Store())
	assert.NotNil(t, plain.Update())
	assert.NotNil(t, plain.Retrieve())

	cascading, err := NewCascadingOperationGroup(rec.Store, rec.Update, rec.Cascade, rec.Retrieve)
	require.NoError(t, err)
	assert.True(t, cascading.HasCascadeUpdate())
}

func TestParamGroup(t *testing.T) {
	e := testutil.SampleEvent()
	p := paramsFor(e)

	obj, ok := p.Object()
	assert.True(t, ok)
	assert.Same(t, e, obj)
	assert.Equal(t, reflect.TypeFor[*model.Event](), p.Class())
	assert.Equal(t, "Event", p.ClassName())

	built, err := p.Builder().Build()
	require.NoError(t, err)
	assert.True(t, built.Equal(e))
	assert.NotSame(t, e, built)

	_, ok = paramsFor(nil).Object()
	assert.False(t, ok)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "inserted", OutcomeInserted.String())
	assert.Equal(t, "updated", OutcomeUpdated.String())
	assert.Equal(t, "unchanged", OutcomeUnchanged.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
