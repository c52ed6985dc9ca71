// Package service composes sessions, the event repository and the save
// executor into a per-entity API.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/datastore/internal/dispatch"
	"github.com/roach88/datastore/internal/fault"
	"github.com/roach88/datastore/internal/model"
	"github.com/roach88/datastore/internal/session"
	"github.com/roach88/datastore/internal/store"
)

// EventService saves, loads and deletes events. Each call runs in its own
// session scoped to the configured role.
type EventService struct {
	sessions *session.Factory
	events   *store.Events
	executor *dispatch.Executor[*model.Event, *session.Session]
	role     string
	logger   *slog.Logger
}

// Option configures an EventService.
type Option func(*options)

type options struct {
	role    string
	logger  *slog.Logger
	metrics *dispatch.Metrics
}

// WithRole runs every session as role.
func WithRole(role string) Option {
	return func(o *options) { o.role = role }
}

// WithLogger sets the logger for the service and its executor.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records save outcomes in m.
func WithMetrics(m *dispatch.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// NewEventService creates an EventService.
func NewEventService(sessions *session.Factory, events *store.Events, opts ...Option) *EventService {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &EventService{
		sessions: sessions,
		events:   events,
		executor: dispatch.NewExecutor[*model.Event, *session.Session](
			dispatch.WithLogger(o.logger),
			dispatch.WithMetrics(o.metrics),
		),
		role:   o.role,
		logger: o.logger,
	}
}

// Save persists e, inserting or updating as needed, and reports the
// outcome. A nil e is OutcomeSkipped.
func (s *EventService) Save(ctx context.Context, e *model.Event) (outcome dispatch.Outcome, err error) {
	var builder model.Builder[*model.Event]
	if e != nil {
		builder = model.EventBuilderFrom(e)
	}
	params := dispatch.NewParamGroup(e, builder)

	err = s.sessions.WithSession(ctx, s.role, func(sess *session.Session) error {
		outcome, err = s.executor.Save(ctx, params, s.events.Operations(), sess)
		return err
	})
	return outcome, err
}

// SaveObject persists e and reports whether it is now stored; false only for
// a nil e.
func (s *EventService) SaveObject(ctx context.Context, e *model.Event) (bool, error) {
	outcome, err := s.Save(ctx, e)
	if err != nil {
		return false, err
	}
	return outcome.Saved(), nil
}

// UpdateSlots reconciles the stored slots of e's event with e.Slots through
// the cascade update, leaving the event row untouched, and returns the event
// as now persisted. A missing event is a KindSave failure.
func (s *EventService) UpdateSlots(ctx context.Context, e *model.Event) (persisted *model.Event, err error) {
	if e == nil {
		return nil, fault.New(fault.KindSave, "Event", "", errors.New("nil event"))
	}
	id := e.ID.String()
	err = s.sessions.WithSession(ctx, s.role, func(sess *session.Session) error {
		ops := s.events.Operations()
		existing, found, err := s.executor.Retrieve(ctx, ops, e.ID, sess)
		if err != nil {
			return err
		}
		if !found {
			return fault.New(fault.KindSave, "Event", id, errors.New("event not found"))
		}
		persisted, err = ops.CascadeUpdate()(ctx, e, existing, sess)
		return fault.Wrap(fault.KindSave, "cascade update", "Event", id, err)
	})
	return persisted, err
}

// Get loads the event with the given id.
func (s *EventService) Get(ctx context.Context, id uuid.UUID) (e *model.Event, found bool, err error) {
	err = s.sessions.WithSession(ctx, s.role, func(sess *session.Session) error {
		e, found, err = s.executor.Retrieve(ctx, s.events.Operations(), id, sess)
		return err
	})
	return e, found, err
}

// Delete removes the event with the given id and reports whether it
// existed. Failures are fault.KindDelete.
func (s *EventService) Delete(ctx context.Context, id uuid.UUID) (deleted bool, err error) {
	s.logger.DebugContext(ctx, "deleting", "class", "Event", "id", id)
	err = s.sessions.WithSession(ctx, s.role, func(sess *session.Session) error {
		deleted, err = s.events.DeleteEvent(ctx, id, sess)
		return fault.Wrap(fault.KindDelete, "", "Event", id.String(), err)
	})
	return deleted, err
}

// List returns the ids of all stored events.
func (s *EventService) List(ctx context.Context) (ids []uuid.UUID, err error) {
	err = s.sessions.WithSession(ctx, s.role, func(sess *session.Session) error {
		ids, err = s.events.ListEventIDs(ctx, sess)
		return fault.Wrap(fault.KindRetrieve, "list", "Event", "", err)
	})
	return ids, err
}
