// Package codec converts native scalar values to column-safe database values
// and back.
//
// Nine kinds are supported, each exposed as a Codec value:
//
//	Duration       time.Duration   <-> ISO-8601 duration text ("PT1H30M")
//	LocalDate      civil.Date      <-> timestamp at midnight UTC
//	LocalDateTime  civil.DateTime  <-> timestamp (wall clock in UTC)
//	LocalTime      civil.Time      <-> time-of-day text ("17:30:00")
//	ZonedDateTime  time.Time       <-> ISO-8601 zoned text ("2026-03-01T12:00+01:00[Europe/Paris]")
//	UUID           uuid.UUID       <-> canonical UUID text
//	UUIDList       []uuid.UUID     <-> comma-joined UUID text
//	IntList        []int           <-> comma-joined decimal text (lenient decode)
//	StringList     []string        <-> comma-joined text, element commas escaped as "%;"
//
// The text formats are the on-disk contract for stores already populated by
// this layer; testdata/golden pins them.
//
// # Null handling
//
// Strict methods (Encode, Decode) treat the value as always present: a NULL
// column decodes to the zero value, and to an empty non-nil slice for list
// kinds. Nullable methods (EncodeNullable, DecodeNullable) use sql.Null and
// map NULL to Valid == false in both directions. Blank zoned date-time text is
// treated as NULL.
//
// # Limitations
//
// StringList escaping is only reversible for elements that do not already
// contain the "%;" sentinel; such elements decode with a comma in its place.
package codec
