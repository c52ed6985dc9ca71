package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roach88/datastore/internal/codec"
	"github.com/roach88/datastore/internal/model"
)

// EventDocument is the YAML (and JSON) form of an event, as read by save
// and printed by get.
//
// Temporal fields use the column formats of the codec package; durations
// may also be written in Go notation ("2h30m"). An omitted event or slot id
// is generated, so a document without ids inserts a new event every time.
type EventDocument struct {
	ID        string         `yaml:"id,omitempty" json:"id"`
	Name      string         `yaml:"name" json:"name"`
	Day       string         `yaml:"day" json:"day"`
	StartsAt  string         `yaml:"starts_at" json:"starts_at"`
	DoorsOpen string         `yaml:"doors_open" json:"doors_open"`
	Deadline  string         `yaml:"deadline,omitempty" json:"deadline,omitempty"`
	Length    string         `yaml:"length" json:"length"`
	Organizer string         `yaml:"organizer,omitempty" json:"organizer,omitempty"`
	Attendees []string       `yaml:"attendees,omitempty" json:"attendees"`
	Seats     []int          `yaml:"seats,omitempty" json:"seats"`
	Tags      []string       `yaml:"tags,omitempty" json:"tags"`
	Slots     []SlotDocument `yaml:"slots,omitempty" json:"slots"`
}

// SlotDocument is one agenda slot of an EventDocument.
type SlotDocument struct {
	ID     string `yaml:"id,omitempty" json:"id"`
	Title  string `yaml:"title" json:"title"`
	Offset string `yaml:"offset" json:"offset"`
}

// ReadEventDocument decodes a single YAML document. Unknown fields are
// rejected.
func ReadEventDocument(r io.Reader) (EventDocument, error) {
	var doc EventDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return EventDocument{}, errors.New("empty event document")
		}
		return EventDocument{}, fmt.Errorf("parse event document: %w", err)
	}
	return doc, nil
}

// Event converts the document to a model event.
func (d EventDocument) Event() (*model.Event, error) {
	b := model.NewEventBuilder().SetName(d.Name).SetSeats(d.Seats).SetTags(d.Tags)

	id, err := parseOptionalID(d.ID)
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	b.SetID(id)

	if d.Day != "" {
		day, err := civil.ParseDate(d.Day)
		if err != nil {
			return nil, fmt.Errorf("day: %w", err)
		}
		b.SetDay(day)
	}
	if d.StartsAt != "" {
		startsAt, err := civil.ParseDateTime(d.StartsAt)
		if err != nil {
			return nil, fmt.Errorf("starts_at: %w", err)
		}
		b.SetStartsAt(startsAt)
	}
	if d.DoorsOpen != "" {
		doors, err := codec.ParseLocalTime(d.DoorsOpen)
		if err != nil {
			return nil, fmt.Errorf("doors_open: %w", err)
		}
		b.SetDoorsOpen(doors)
	}
	if d.Deadline != "" {
		deadline, err := codec.ParseZonedInput(d.Deadline)
		if err != nil {
			return nil, fmt.Errorf("deadline: %w", err)
		}
		b.SetDeadline(deadline)
	}
	if d.Length != "" {
		length, err := codec.ParseDurationInput(d.Length)
		if err != nil {
			return nil, fmt.Errorf("length: %w", err)
		}
		b.SetLength(length)
	}
	if d.Organizer != "" {
		organizer, err := uuid.Parse(d.Organizer)
		if err != nil {
			return nil, fmt.Errorf("organizer: %w", err)
		}
		b.SetOrganizerID(organizer)
	}

	attendees := make([]uuid.UUID, 0, len(d.Attendees))
	for i, s := range d.Attendees {
		a, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("attendees[%d]: %w", i, err)
		}
		attendees = append(attendees, a)
	}
	b.SetAttendeeIDs(attendees)

	for i, s := range d.Slots {
		slot, err := s.slot()
		if err != nil {
			return nil, fmt.Errorf("slots[%d]: %w", i, err)
		}
		b.AddSlot(slot)
	}
	return b.Build()
}

func (s SlotDocument) slot() (model.Slot, error) {
	id, err := parseOptionalID(s.ID)
	if err != nil {
		return model.Slot{}, fmt.Errorf("id: %w", err)
	}
	slot := model.Slot{ID: id, Title: s.Title}
	if s.Offset != "" {
		if slot.Offset, err = codec.ParseDurationInput(s.Offset); err != nil {
			return model.Slot{}, fmt.Errorf("offset: %w", err)
		}
	}
	return slot, nil
}

func parseOptionalID(s string) (uuid.UUID, error) {
	if s == "" {
		return model.NewID(), nil
	}
	return uuid.Parse(s)
}

// DocumentFor renders e as a document using the column formats.
func DocumentFor(e *model.Event) EventDocument {
	d := EventDocument{
		ID:        e.ID.String(),
		Name:      e.Name,
		Day:       e.Day.String(),
		StartsAt:  e.StartsAt.String(),
		DoorsOpen: codec.FormatLocalTime(e.DoorsOpen),
		Length:    codec.FormatDuration(e.Length),
		Attendees: make([]string, len(e.AttendeeIDs)),
		Seats:     e.Seats,
		Tags:      e.Tags,
		Slots:     make([]SlotDocument, len(e.Slots)),
	}
	if !e.Deadline.IsZero() {
		d.Deadline = codec.FormatZoned(e.Deadline)
	}
	if e.OrganizerID != uuid.Nil {
		d.Organizer = e.OrganizerID.String()
	}
	for i, a := range e.AttendeeIDs {
		d.Attendees[i] = a.String()
	}
	for i, s := range e.Slots {
		d.Slots[i] = SlotDocument{ID: s.ID.String(), Title: s.Title, Offset: codec.FormatDuration(s.Offset)}
	}
	if d.Seats == nil {
		d.Seats = []int{}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return d
}

// YAML renders the document as YAML.
func (d EventDocument) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
