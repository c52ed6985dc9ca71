package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/datastore/internal/codec"
	"github.com/roach88/datastore/internal/dispatch"
	"github.com/roach88/datastore/internal/model"
	"github.com/roach88/datastore/internal/session"
)

// querier is satisfied by *session.Session and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// EventOperations is the dispatch group for events.
type EventOperations = dispatch.OperationGroup[*model.Event, *session.Session]

// Events maps model.Event to the events and event_slots tables.
//
// Every method runs on the session it is given; the repository holds no
// connection of its own and is safe for concurrent use with distinct
// sessions.
type Events struct {
	dialect Dialect
	logger  *slog.Logger
	seats   codec.Codec[[]int]
	ops     *EventOperations
}

// EventsOption configures an Events repository.
type EventsOption func(*Events)

// WithEventsLogger sets the logger for repository records and for integer
// list elements skipped while decoding.
func WithEventsLogger(logger *slog.Logger) EventsOption {
	return func(r *Events) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewEvents creates an event repository for dialect.
func NewEvents(dialect Dialect, opts ...EventsOption) *Events {
	r := &Events{
		dialect: dialect,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.seats = codec.NewIntList(r.logger)

	ops, err := dispatch.NewCascadingOperationGroup(r.StoreEvent, r.UpdateEvent, r.CascadeSlots, r.RetrieveEvent)
	if err != nil {
		// Method values are never nil.
		panic(err)
	}
	r.ops = ops
	return r
}

// Operations returns the dispatch group bound to this repository.
func (r *Events) Operations() *EventOperations {
	return r.ops
}

// StoreEvent inserts e and its slots in one transaction.
func (r *Events) StoreEvent(ctx context.Context, e *model.Event, sess *session.Session) error {
	tx, err := sess.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store event: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`
		INSERT INTO events
		(id, name, day, starts_at, doors_open, deadline, length, organizer_id, attendee_ids, seats, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), r.eventArgs(e)...); err != nil {
		return fmt.Errorf("store event: %w", err)
	}

	for i, slot := range e.Slots {
		if err := r.insertSlot(ctx, tx, e.ID, i, slot); err != nil {
			return fmt.Errorf("store event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store event: commit: %w", err)
	}
	r.logger.DebugContext(ctx, "event stored", "id", e.ID, "slots", len(e.Slots))
	return nil
}

// UpdateEvent overwrites the event row with updated and reconciles its slots
// against existing, in one transaction.
func (r *Events) UpdateEvent(ctx context.Context, updated, existing *model.Event, sess *session.Session) error {
	tx, err := sess.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update event: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	args := r.eventArgs(updated)
	// id moves from first to last for the WHERE clause.
	args = append(args[1:], args[0])
	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`
		UPDATE events SET
		name = ?, day = ?, starts_at = ?, doors_open = ?, deadline = ?, length = ?,
		organizer_id = ?, attendee_ids = ?, seats = ?, tags = ?
		WHERE id = ?
	`), args...); err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	if err := r.reconcileSlots(ctx, tx, updated, existing); err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update event: commit: %w", err)
	}
	return nil
}

// CascadeSlots inserts slots new in updated, rewrites slots whose title,
// offset or position changed, deletes slots missing from updated, and
// returns the event as now persisted.
func (r *Events) CascadeSlots(ctx context.Context, updated, existing *model.Event, sess *session.Session) (*model.Event, error) {
	tx, err := sess.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("cascade slots: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := r.reconcileSlots(ctx, tx, updated, existing); err != nil {
		return nil, fmt.Errorf("cascade slots: %w", err)
	}

	persisted, found, err := r.retrieve(ctx, tx, updated.ID)
	if err != nil {
		return nil, fmt.Errorf("cascade slots: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("cascade slots: event %s not found", updated.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("cascade slots: commit: %w", err)
	}
	return persisted, nil
}

// RetrieveEvent loads the event with the given id. A missing event returns
// found == false and a nil error.
func (r *Events) RetrieveEvent(ctx context.Context, id uuid.UUID, sess *session.Session) (*model.Event, bool, error) {
	return r.retrieve(ctx, sess, id)
}

// DeleteEvent removes the event and its slots. Returns false if no event had
// the given id.
func (r *Events) DeleteEvent(ctx context.Context, id uuid.UUID, sess *session.Session) (bool, error) {
	tx, err := sess.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("delete event: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	key := codec.UUID.Encode(id)
	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM event_slots WHERE event_id = ?`), key); err != nil {
		return false, fmt.Errorf("delete event slots: %w", err)
	}
	result, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM events WHERE id = ?`), key)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete event: rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("delete event: commit: %w", err)
	}
	return n > 0, nil
}

// ListEventIDs returns every stored event id in ascending text order.
// Returns an empty slice (not nil) when no events are stored.
func (r *Events) ListEventIDs(ctx context.Context, sess *session.Session) ([]uuid.UUID, error) {
	rows, err := sess.QueryContext(ctx, `SELECT id FROM events ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(codec.UUID.Scanner(&id)); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return ids, nil
}

// eventArgs returns the column values of e in schema order, id first.
func (r *Events) eventArgs(e *model.Event) []any {
	return []any{
		codec.UUID.Encode(e.ID),
		e.Name,
		codec.LocalDate.Encode(e.Day),
		codec.LocalDateTime.Encode(e.StartsAt),
		codec.LocalTime.Encode(e.DoorsOpen),
		codec.ZonedDateTime.NullValuer(sql.Null[time.Time]{V: e.Deadline, Valid: !e.Deadline.IsZero()}),
		codec.Duration.Encode(e.Length),
		codec.UUID.Encode(e.OrganizerID),
		codec.UUIDList.Encode(e.AttendeeIDs),
		r.seats.Encode(e.Seats),
		codec.StringList.Encode(e.Tags),
	}
}

func (r *Events) retrieve(ctx context.Context, q querier, id uuid.UUID) (*model.Event, bool, error) {
	row := q.QueryRowContext(ctx, r.dialect.Rebind(`
		SELECT id, name, day, starts_at, doors_open, deadline, length, organizer_id, attendee_ids, seats, tags
		FROM events
		WHERE id = ?
	`), codec.UUID.Encode(id))

	var (
		e        model.Event
		deadline sql.Null[time.Time]
	)
	err := row.Scan(
		codec.UUID.Scanner(&e.ID),
		&e.Name,
		codec.LocalDate.Scanner(&e.Day),
		codec.LocalDateTime.Scanner(&e.StartsAt),
		codec.LocalTime.Scanner(&e.DoorsOpen),
		codec.ZonedDateTime.NullScanner(&deadline),
		codec.Duration.Scanner(&e.Length),
		codec.UUID.Scanner(&e.OrganizerID),
		codec.UUIDList.Scanner(&e.AttendeeIDs),
		r.seats.Scanner(&e.Seats),
		codec.StringList.Scanner(&e.Tags),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("retrieve event: %w", err)
	}
	if deadline.Valid {
		e.Deadline = deadline.V
	}

	slots, err := r.readSlots(ctx, q, id)
	if err != nil {
		return nil, false, err
	}
	e.Slots = slots
	return &e, true, nil
}

func (r *Events) readSlots(ctx context.Context, q querier, eventID uuid.UUID) ([]model.Slot, error) {
	rows, err := q.QueryContext(ctx, r.dialect.Rebind(`
		SELECT id, title, offset_duration
		FROM event_slots
		WHERE event_id = ?
		ORDER BY position ASC
	`), codec.UUID.Encode(eventID))
	if err != nil {
		return nil, fmt.Errorf("read slots: %w", err)
	}
	defer rows.Close()

	slots := []model.Slot{}
	for rows.Next() {
		var s model.Slot
		if err := rows.Scan(codec.UUID.Scanner(&s.ID), &s.Title, codec.Duration.Scanner(&s.Offset)); err != nil {
			return nil, fmt.Errorf("read slots: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read slots: %w", err)
	}
	return slots, nil
}

// reconcileSlots brings the slot rows of existing in line with updated.
func (r *Events) reconcileSlots(ctx context.Context, q querier, updated, existing *model.Event) error {
	type placed struct {
		slot     model.Slot
		position int
	}
	prior := make(map[uuid.UUID]placed, len(existing.Slots))
	for i, s := range existing.Slots {
		prior[s.ID] = placed{slot: s, position: i}
	}

	var inserted, rewritten, deleted int
	keep := make(map[uuid.UUID]bool, len(updated.Slots))
	for i, s := range updated.Slots {
		keep[s.ID] = true
		old, ok := prior[s.ID]
		switch {
		case !ok:
			if err := r.insertSlot(ctx, q, updated.ID, i, s); err != nil {
				return err
			}
			inserted++
		case old.slot != s || old.position != i:
			if _, err := q.ExecContext(ctx, r.dialect.Rebind(`
				UPDATE event_slots SET position = ?, title = ?, offset_duration = ?
				WHERE id = ?
			`), i, s.Title, codec.Duration.Encode(s.Offset), codec.UUID.Encode(s.ID)); err != nil {
				return fmt.Errorf("update slot %s: %w", s.ID, err)
			}
			rewritten++
		}
	}

	for _, s := range existing.Slots {
		if keep[s.ID] {
			continue
		}
		if _, err := q.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM event_slots WHERE id = ?`), codec.UUID.Encode(s.ID)); err != nil {
			return fmt.Errorf("delete slot %s: %w", s.ID, err)
		}
		deleted++
	}

	r.logger.DebugContext(ctx, "slots reconciled",
		"event", updated.ID,
		"inserted", inserted,
		"updated", rewritten,
		"deleted", deleted,
	)
	return nil
}

func (r *Events) insertSlot(ctx context.Context, q querier, eventID uuid.UUID, position int, s model.Slot) error {
	if _, err := q.ExecContext(ctx, r.dialect.Rebind(`
		INSERT INTO event_slots (id, event_id, position, title, offset_duration)
		VALUES (?, ?, ?, ?, ?)
	`), codec.UUID.Encode(s.ID), codec.UUID.Encode(eventID), position, s.Title, codec.Duration.Encode(s.Offset)); err != nil {
		return fmt.Errorf("insert slot %s: %w", s.ID, err)
	}
	return nil
}
