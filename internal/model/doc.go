// Package model defines the domain object contract the datastore core works
// against, plus the Event entity used by the bundled storage layer.
//
// This package imports nothing internal; every other package may
// import model.
//
// Key constraints:
//   - Every persisted object has a stable UUID identity (GetID)
//   - Equality is structural over all persisted fields, never identity only
//   - Builders copy their slices so built objects never alias builder state
package model
