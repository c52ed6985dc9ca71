package dispatch

import (
	"context"

	"github.com/roach88/datastore/internal/fault"
	"github.com/roach88/datastore/internal/model"
)

// Outcome is the decision taken by Save.
type Outcome int

const (
	// OutcomeSkipped means the candidate was absent and nothing was called.
	OutcomeSkipped Outcome = iota

	// OutcomeInserted means nothing was persisted and store ran.
	OutcomeInserted

	// OutcomeUpdated means the persisted state differed and update ran.
	OutcomeUpdated

	// OutcomeUnchanged means the persisted state already equals the candidate.
	OutcomeUnchanged
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	case OutcomeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Saved reports whether the outcome leaves the candidate correctly persisted.
// Only OutcomeSkipped reports false.
func (o Outcome) Saved() bool {
	return o != OutcomeSkipped
}

// Save performs exactly one of {no-op, store, update} for the candidate in
// params and reports which.
//
// Retrieve errors are returned as fault.KindRetrieve and store/update errors
// as fault.KindSave; a callback error that already carries a fault kind is
// returned unchanged. No retry happens and whatever the failed callback left
// behind stays as it is.
func Save[T model.Object[T], S any](ctx context.Context, params ParamGroup[T], ops *OperationGroup[T, S], sess S) (Outcome, error) {
	obj, ok := params.Object()
	if !ok {
		return OutcomeSkipped, nil
	}

	class := params.ClassName()
	id := obj.GetID()

	existing, found, err := ops.retrieve(ctx, id, sess)
	if err != nil {
		return OutcomeSkipped, fault.Wrap(fault.KindRetrieve, "", class, id.String(), err)
	}

	if !found {
		if err := ops.store(ctx, obj, sess); err != nil {
			return OutcomeSkipped, fault.Wrap(fault.KindSave, "save", class, id.String(), err)
		}
		return OutcomeInserted, nil
	}

	if obj.Equal(existing) {
		return OutcomeUnchanged, nil
	}

	if err := ops.update(ctx, obj, existing, sess); err != nil {
		return OutcomeSkipped, fault.Wrap(fault.KindSave, "update", class, id.String(), err)
	}
	return OutcomeUpdated, nil
}

// SaveObject is Save reduced to whether the candidate is now persisted. It
// returns false only for an absent candidate; a candidate equal to its
// persisted state reports true without writing.
func SaveObject[T model.Object[T], S any](ctx context.Context, params ParamGroup[T], ops *OperationGroup[T, S], sess S) (bool, error) {
	outcome, err := Save(ctx, params, ops, sess)
	if err != nil {
		return false, err
	}
	return outcome.Saved(), nil
}
