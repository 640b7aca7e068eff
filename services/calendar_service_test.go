package services

import (
	"context"
	"testing"
	"time"

	"notelock/models"
	"notelock/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCreateCalendar(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	service := NewCalendarService()
	owner := testPrincipal()

	calendar, err := service.CreateCalendar(context.Background(), db, owner, "Work")
	assert.NoError(t, err)
	assert.Equal(t, "Work", calendar.Name)
	assert.Equal(t, owner.UUID(), calendar.OwnerID)

	_, err = service.CreateCalendar(context.Background(), db, owner, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetCalendarById_OwnershipAndNotFound(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	service := NewCalendarService()
	owner := testPrincipal()

	calendar, err := service.CreateCalendar(context.Background(), db, owner, "Personal")
	assert.NoError(t, err)

	got, err := service.GetCalendarById(context.Background(), db, owner, calendar.ID)
	assert.NoError(t, err)
	assert.Equal(t, calendar.ID, got.ID)

	_, err = service.GetCalendarById(context.Background(), db, testPrincipal(), calendar.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = service.GetCalendarById(context.Background(), db, owner, uuid.New())
	assert.ErrorIs(t, err, ErrCalendarNotFound)
}

func TestListCalendarsByUser(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	service := NewCalendarService()
	owner := testPrincipal()

	_, err := service.CreateCalendar(context.Background(), db, owner, "Work")
	assert.NoError(t, err)
	_, err = service.CreateCalendar(context.Background(), db, owner, "Personal")
	assert.NoError(t, err)
	_, err = service.CreateCalendar(context.Background(), db, testPrincipal(), "Other")
	assert.NoError(t, err)

	calendars, err := service.ListCalendarsByUser(context.Background(), db, owner)
	assert.NoError(t, err)
	assert.Len(t, calendars, 2)
}

func TestDeleteCalendar_RefusedWhileNotesRemain(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	service := NewCalendarService()
	owner := testPrincipal()

	calendar, err := service.CreateCalendar(context.Background(), db, owner, "Work")
	assert.NoError(t, err)

	note := models.Note{
		ID:               uuid.New(),
		OwnerID:          owner.UUID(),
		EncryptedTitle:   []byte{0x01},
		EncryptedSubject: []byte{0x02},
		AssignedDate:     time.Now().UTC(),
		CalendarID:       calendar.ID,
		Version:          1,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	assert.NoError(t, db.DB.Create(&note).Error)

	err = service.DeleteCalendar(context.Background(), db, owner, calendar.ID)
	assert.ErrorIs(t, err, ErrValidation)

	assert.NoError(t, db.DB.Delete(&note).Error)
	assert.NoError(t, service.DeleteCalendar(context.Background(), db, owner, calendar.ID))

	_, err = service.GetCalendarById(context.Background(), db, owner, calendar.ID)
	assert.ErrorIs(t, err, ErrCalendarNotFound)
}
