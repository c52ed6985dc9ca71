package testutil

import (
	"time"
	_ "time/tzdata"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"

	"github.com/roach88/datastore/internal/model"
)

// Fixed ids used by fixtures.
var (
	EventID     = uuid.MustParse("0190e0f4-4a4f-7c66-9a55-5a3b1c0e7f10")
	OrganizerID = uuid.MustParse("7b1d6c1e-2f0a-4a53-9a1b-0c9e3f1f2a11")
	AttendeeA   = uuid.MustParse("3f2e1d0c-9b8a-4765-8432-10fedcba9876")
	AttendeeB   = uuid.MustParse("a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d")
	SlotOpenID  = uuid.MustParse("11111111-2222-4333-8444-555555555555")
	SlotTalkID  = uuid.MustParse("66666666-7777-4888-9999-aaaaaaaaaaaa")
)

// SampleEvent returns a fully populated event exercising every scalar kind.
// Each call returns a fresh value.
func SampleEvent() *model.Event {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		panic(err)
	}
	e, err := model.NewEventBuilder().
		SetID(EventID).
		SetName("Spring meetup").
		SetDay(civil.Date{Year: 2026, Month: time.March, Day: 14}).
		SetStartsAt(civil.DateTime{
			Date: civil.Date{Year: 2026, Month: time.March, Day: 14},
			Time: civil.Time{Hour: 18, Minute: 30},
		}).
		SetDoorsOpen(civil.Time{Hour: 17, Minute: 45}).
		SetDeadline(time.Date(2026, time.March, 1, 12, 0, 0, 0, paris)).
		SetLength(2*time.Hour + 30*time.Minute).
		SetOrganizerID(OrganizerID).
		SetAttendeeIDs([]uuid.UUID{AttendeeA, AttendeeB}).
		SetSeats([]int{12, 14, 15}).
		SetTags([]string{"go", "storage, sql"}).
		AddSlot(model.Slot{ID: SlotOpenID, Title: "Welcome", Offset: 0}).
		AddSlot(model.Slot{ID: SlotTalkID, Title: "Codecs in practice", Offset: 15 * time.Minute}).
		Build()
	if err != nil {
		panic(err)
	}
	return e
}
