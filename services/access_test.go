package services

import (
	"testing"

	"notelock/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCheckNoteOwnership(t *testing.T) {
	owner := models.PrincipalID(uuid.New())
	note := &models.Note{ID: uuid.New(), OwnerID: owner.UUID()}

	assert.NoError(t, CheckNoteOwnership(owner, note))
	assert.ErrorIs(t, CheckNoteOwnership(models.PrincipalID(uuid.New()), note), ErrAccessDenied)
}

func TestCheckCalendarOwnership(t *testing.T) {
	owner := models.PrincipalID(uuid.New())
	calendar := &models.Calendar{ID: uuid.New(), OwnerID: owner.UUID()}

	assert.NoError(t, CheckCalendarOwnership(owner, calendar))
	assert.ErrorIs(t, CheckCalendarOwnership(models.PrincipalID(uuid.New()), calendar), ErrAccessDenied)
}
