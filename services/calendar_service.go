package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notelock/database"
	"notelock/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CalendarServiceInterface interface {
	CreateCalendar(ctx context.Context, db *database.Database, principal models.PrincipalID, name string) (models.Calendar, error)
	GetCalendarById(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) (models.Calendar, error)
	ListCalendarsByUser(ctx context.Context, db *database.Database, principal models.PrincipalID) ([]models.Calendar, error)
	DeleteCalendar(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) error
}

type CalendarService struct{}

func (s *CalendarService) CreateCalendar(ctx context.Context, db *database.Database, principal models.PrincipalID, name string) (models.Calendar, error) {
	if name == "" {
		return models.Calendar{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	now := time.Now().UTC()
	calendar := models.Calendar{
		ID:        uuid.New(),
		OwnerID:   principal.UUID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.DB.WithContext(ctx).Create(&calendar).Error; err != nil {
		return models.Calendar{}, wrapStoreErr(err)
	}
	return calendar, nil
}

func (s *CalendarService) GetCalendarById(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) (models.Calendar, error) {
	var calendar models.Calendar
	if err := db.DB.WithContext(ctx).First(&calendar, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Calendar{}, ErrCalendarNotFound
		}
		return models.Calendar{}, wrapStoreErr(err)
	}

	if err := CheckCalendarOwnership(principal, &calendar); err != nil {
		return models.Calendar{}, err
	}
	return calendar, nil
}

func (s *CalendarService) ListCalendarsByUser(ctx context.Context, db *database.Database, principal models.PrincipalID) ([]models.Calendar, error) {
	var calendars []models.Calendar
	err := db.DB.WithContext(ctx).
		Where("owner_id = ?", principal.UUID()).
		Order("created_at ASC").
		Find(&calendars).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return calendars, nil
}

func (s *CalendarService) DeleteCalendar(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) error {
	tx := db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return wrapStoreErr(tx.Error)
	}

	var calendar models.Calendar
	if err := tx.First(&calendar, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCalendarNotFound
		}
		return wrapStoreErr(err)
	}

	if err := CheckCalendarOwnership(principal, &calendar); err != nil {
		tx.Rollback()
		return err
	}

	// A calendar with notes still attached cannot be removed.
	var noteCount int64
	if err := tx.Model(&models.Note{}).Where("calendar_id = ?", id).Count(&noteCount).Error; err != nil {
		tx.Rollback()
		return wrapStoreErr(err)
	}
	if noteCount > 0 {
		tx.Rollback()
		return fmt.Errorf("%w: calendar still has %d notes", ErrValidation, noteCount)
	}

	if err := tx.Delete(&calendar).Error; err != nil {
		tx.Rollback()
		return wrapStoreErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return wrapStoreErr(err)
	}
	return nil
}

func NewCalendarService() CalendarServiceInterface {
	return &CalendarService{}
}

var CalendarServiceInstance CalendarServiceInterface
