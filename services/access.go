package services

import "notelock/models"

// CheckNoteOwnership is the sole authorization rule for notes: the caller
// must be the owner. It runs before any decryption or mutation so requests
// against someone else's note fail without observable side effects.
func CheckNoteOwnership(principal models.PrincipalID, note *models.Note) error {
	if note.OwnerID != principal.UUID() {
		return ErrAccessDenied
	}
	return nil
}

// CheckCalendarOwnership applies the same owner-only rule to calendars.
func CheckCalendarOwnership(principal models.PrincipalID, calendar *models.Calendar) error {
	if calendar.OwnerID != principal.UUID() {
		return ErrAccessDenied
	}
	return nil
}
