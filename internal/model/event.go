package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
)

// Event is a scheduled event with a nested collection of slots.
//
// Event carries one field of every scalar kind the codec package supports so
// the storage layer exercises each of them.
type Event struct {
	ID          uuid.UUID
	Name        string
	Day         civil.Date
	StartsAt    civil.DateTime
	DoorsOpen   civil.Time
	Deadline    time.Time // zoned; zero means unset
	Length      time.Duration
	OrganizerID uuid.UUID
	AttendeeIDs []uuid.UUID
	Seats       []int
	Tags        []string
	Slots       []Slot
}

// Slot is an element of an event's agenda, persisted in its own table.
type Slot struct {
	ID     uuid.UUID
	Title  string
	Offset time.Duration
}

// GetID returns the event id.
func (e *Event) GetID() uuid.UUID {
	return e.ID
}

// Equal reports whether e and other hold the same persisted state.
//
// Deadlines compare by instant and UTC offset. Nil and empty slices are equal.
func (e *Event) Equal(other *Event) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.ID == other.ID &&
		e.Name == other.Name &&
		e.Day == other.Day &&
		e.StartsAt == other.StartsAt &&
		e.DoorsOpen == other.DoorsOpen &&
		sameZoned(e.Deadline, other.Deadline) &&
		e.Length == other.Length &&
		e.OrganizerID == other.OrganizerID &&
		slices.Equal(e.AttendeeIDs, other.AttendeeIDs) &&
		slices.Equal(e.Seats, other.Seats) &&
		slices.Equal(e.Tags, other.Tags) &&
		slices.Equal(e.Slots, other.Slots)
}

// String renders the event for diagnostics.
func (e *Event) String() string {
	if e == nil {
		return "Event<nil>"
	}
	return fmt.Sprintf("Event{id=%s name=%q day=%s slots=%d}", e.ID, e.Name, e.Day, len(e.Slots))
}

// SlotByID returns the slot with the given id.
func (e *Event) SlotByID(id uuid.UUID) (Slot, bool) {
	for _, s := range e.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

func sameZoned(a, b time.Time) bool {
	if !a.Equal(b) {
		return false
	}
	_, aOff := a.Zone()
	_, bOff := b.Zone()
	return aOff == bOff
}
