// Package dispatch decides whether a domain object must be inserted, updated
// or left untouched, and performs that single operation through
// caller-supplied callbacks.
//
// The caller owns the object-to-SQL mapping: it binds store, update,
// retrieve and (optionally) cascade-update callbacks into an OperationGroup
// and describes the object to save with a ParamGroup. Save then:
//
//  1. Returns OutcomeSkipped without calling anything when the candidate is absent
//  2. Retrieves the persisted state by the candidate's id
//  3. Stores the candidate when nothing is persisted (OutcomeInserted)
//  4. Does nothing when the persisted state equals the candidate (OutcomeUnchanged)
//  5. Otherwise updates it, passing both new and existing state (OutcomeUpdated)
//
// Retrieve always happens before the decision and at most one of store and
// update runs per call. The dispatcher never invokes the cascade-update
// callback; it rides on the group for update callbacks that reconcile nested
// collections.
//
// Nothing here holds locks. Groups are immutable and may be shared across
// goroutines; sessions are passed through untouched and must not be shared.
package dispatch
