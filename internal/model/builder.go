package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
)

// EventBuilder assembles Events. The zero value is not usable; use
// NewEventBuilder or EventBuilderFrom.
type EventBuilder struct {
	e Event
}

var _ Builder[*Event] = (*EventBuilder)(nil)

// NewEventBuilder returns an empty builder.
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{}
}

// EventBuilderFrom returns a builder seeded with a copy of e, used to produce
// a revised instance of an existing event.
func EventBuilderFrom(e *Event) *EventBuilder {
	b := &EventBuilder{}
	if e != nil {
		b.e = copyEvent(*e)
	}
	return b
}

func (b *EventBuilder) SetID(id uuid.UUID) *EventBuilder { b.e.ID = id; return b }
func (b *EventBuilder) SetName(name string) *EventBuilder { b.e.Name = name; return b }
func (b *EventBuilder) SetDay(d civil.Date) *EventBuilder { b.e.Day = d; return b }
func (b *EventBuilder) SetStartsAt(dt civil.DateTime) *EventBuilder { b.e.StartsAt = dt; return b }
func (b *EventBuilder) SetDoorsOpen(t civil.Time) *EventBuilder { b.e.DoorsOpen = t; return b }
func (b *EventBuilder) SetDeadline(t time.Time) *EventBuilder { b.e.Deadline = t; return b }
func (b *EventBuilder) SetLength(d time.Duration) *EventBuilder { b.e.Length = d; return b }
func (b *EventBuilder) SetOrganizerID(id uuid.UUID) *EventBuilder { b.e.OrganizerID = id; return b }
func (b *EventBuilder) SetAttendeeIDs(ids []uuid.UUID) *EventBuilder { b.e.AttendeeIDs = slices.Clone(ids); return b }
func (b *EventBuilder) SetSeats(seats []int) *EventBuilder { b.e.Seats = slices.Clone(seats); return b }
func (b *EventBuilder) SetTags(tags []string) *EventBuilder { b.e.Tags = slices.Clone(tags); return b }
func (b *EventBuilder) SetSlots(slots []Slot) *EventBuilder { b.e.Slots = slices.Clone(slots); return b }

// AddSlot appends a slot to the agenda.
func (b *EventBuilder) AddSlot(s Slot) *EventBuilder {
	b.e.Slots = append(b.e.Slots, s)
	return b
}

// Build returns a new Event. It fails with ErrMissingID when the event or any
// of its slots has no id.
func (b *EventBuilder) Build() (*Event, error) {
	if b.e.ID == uuid.Nil {
		return nil, fmt.Errorf("build event: %w", ErrMissingID)
	}
	for i, s := range b.e.Slots {
		if s.ID == uuid.Nil {
			return nil, fmt.Errorf("build event: slot %d: %w", i, ErrMissingID)
		}
	}
	e := copyEvent(b.e)
	return &e, nil
}

func copyEvent(e Event) Event {
	e.AttendeeIDs = slices.Clone(e.AttendeeIDs)
	e.Seats = slices.Clone(e.Seats)
	e.Tags = slices.Clone(e.Tags)
	e.Slots = slices.Clone(e.Slots)
	return e
}
