package codec

import (
	"database/sql/driver"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/datastore/internal/fault"
)

// UUID stores uuid.UUID as canonical lowercase text. Raw 16-byte column
// values are also accepted on decode.
var UUID = Codec[uuid.UUID]{
	name: "uuid",
	encode: func(id uuid.UUID) driver.Value {
		return id.String()
	},
	decode: func(src any) (uuid.UUID, bool, error) {
		if b, ok := src.([]byte); ok && len(b) == 16 {
			id, err := uuid.FromBytes(b)
			if err != nil {
				return uuid.Nil, false, fault.Codec("uuid", "from bytes: %w", err)
			}
			return id, true, nil
		}
		s, err := columnText("uuid", src)
		if err != nil {
			return uuid.Nil, false, err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, false, fault.Codec("uuid", "parse %q: %w", s, err)
		}
		return id, true, nil
	},
}

// UUIDList stores []uuid.UUID as comma-joined canonical text. Blank text
// decodes to an empty list; any unparsable element fails the whole value.
var UUIDList = Codec[[]uuid.UUID]{
	name: "uuid list",
	encode: func(ids []uuid.UUID) driver.Value {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = id.String()
		}
		return strings.Join(parts, listSeparator)
	},
	decode: func(src any) ([]uuid.UUID, bool, error) {
		s, err := columnText("uuid list", src)
		if err != nil {
			return nil, false, err
		}
		ids := []uuid.UUID{}
		if isBlank(s) {
			return ids, true, nil
		}
		for _, part := range strings.Split(s, listSeparator) {
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, false, fault.Codec("uuid list", "parse element %q: %w", part, err)
			}
			ids = append(ids, id)
		}
		return ids, true, nil
	},
	empty: func() []uuid.UUID { return []uuid.UUID{} },
}
