package models

import "github.com/google/uuid"

// PrincipalID identifies the authenticated caller of an operation. It is
// resolved exactly once, by the auth middleware from a validated token, and
// passed explicitly into every service method that touches owned records.
type PrincipalID uuid.UUID

// UUID returns the underlying identifier for comparison and persistence.
func (p PrincipalID) UUID() uuid.UUID { return uuid.UUID(p) }

func (p PrincipalID) String() string { return uuid.UUID(p).String() }
