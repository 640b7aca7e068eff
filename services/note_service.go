package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"notelock/broker"
	"notelock/crypto"
	"notelock/database"
	"notelock/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlockInput is one content block supplied by the caller, payload in
// plaintext JSON.
type BlockInput struct {
	Type models.BlockType `json:"type"`
	Data json.RawMessage  `json:"data"`
}

type CreateNoteInput struct {
	Title        string       `json:"title"`
	Subject      string       `json:"subject"`
	Blocks       []BlockInput `json:"content_blocks"`
	AssignedDate time.Time    `json:"assigned_date"`
	CalendarID   uuid.UUID    `json:"calendar_id"`
}

// UpdateNoteInput carries partial updates: nil fields are left untouched,
// a non-nil Blocks replaces the whole block list.
type UpdateNoteInput struct {
	Title        *string       `json:"title"`
	Subject      *string       `json:"subject"`
	Blocks       *[]BlockInput `json:"content_blocks"`
	AssignedDate *time.Time    `json:"assigned_date"`
}

type NoteServiceInterface interface {
	CreateNote(ctx context.Context, db *database.Database, principal models.PrincipalID, input CreateNoteInput) (models.NoteView, error)
	GetNoteById(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) (models.NoteView, error)
	UpdateNote(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID, input UpdateNoteInput) (models.NoteView, error)
	DeleteNote(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) error
	ListNotesByUser(ctx context.Context, db *database.Database, principal models.PrincipalID) ([]models.NoteSummary, error)
	ToggleDone(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) (bool, error)
	Reschedule(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID, newDate time.Time) (time.Time, error)
}

// NoteService orchestrates note persistence: it encrypts sensitive fields on
// the way in, decrypts them on the way out, and checks ownership before any
// other work on an existing record. The codec is constructed once at startup
// and passed in by reference.
type NoteService struct {
	codec     *crypto.Codec
	opTimeout time.Duration
}

func NewNoteService(codec *crypto.Codec, opTimeout time.Duration) *NoteService {
	return &NoteService{codec: codec, opTimeout: opTimeout}
}

func (s *NoteService) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *NoteService) CreateNote(ctx context.Context, db *database.Database, principal models.PrincipalID, input CreateNoteInput) (models.NoteView, error) {
	if input.CalendarID == uuid.Nil {
		return models.NoteView{}, fmt.Errorf("%w: calendar_id is required", ErrValidation)
	}
	if input.AssignedDate.IsZero() {
		return models.NoteView{}, fmt.Errorf("%w: assigned_date is required", ErrValidation)
	}
	for i, block := range input.Blocks {
		if !models.ValidBlockType(block.Type) {
			return models.NoteView{}, fmt.Errorf("%w: unknown block type %q", ErrValidation, block.Type)
		}
		if len(block.Data) == 0 {
			return models.NoteView{}, fmt.Errorf("%w: block %d has no data", ErrValidation, i)
		}
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	now := time.Now().UTC()
	note := models.Note{
		ID:           uuid.New(),
		OwnerID:      principal.UUID(),
		AssignedDate: input.AssignedDate,
		CalendarID:   input.CalendarID,
		IsDone:       false,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var err error
	if note.EncryptedTitle, err = s.codec.EncryptString(input.Title); err != nil {
		return models.NoteView{}, err
	}
	if note.EncryptedSubject, err = s.codec.EncryptString(input.Subject); err != nil {
		return models.NoteView{}, err
	}
	if note.ContentBlocks, err = s.encryptBlocks(note.ID, input.Blocks, now); err != nil {
		return models.NoteView{}, err
	}

	tx := db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return models.NoteView{}, wrapStoreErr(tx.Error)
	}

	if err := tx.Create(&note).Error; err != nil {
		tx.Rollback()
		return models.NoteView{}, wrapStoreErr(err)
	}

	if err := s.recordEvent(tx, broker.NoteCreated, "create", principal, &note); err != nil {
		tx.Rollback()
		return models.NoteView{}, wrapStoreErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.NoteView{}, wrapStoreErr(err)
	}

	return s.decryptNote(&note)
}

func (s *NoteService) GetNoteById(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) (models.NoteView, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	note, err := loadNote(db.DB.WithContext(ctx), id, true)
	if err != nil {
		return models.NoteView{}, err
	}

	if err := CheckNoteOwnership(principal, note); err != nil {
		return models.NoteView{}, err
	}

	return s.decryptNote(note)
}

func (s *NoteService) UpdateNote(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID, input UpdateNoteInput) (models.NoteView, error) {
	if input.Blocks != nil {
		for i, block := range *input.Blocks {
			if !models.ValidBlockType(block.Type) {
				return models.NoteView{}, fmt.Errorf("%w: unknown block type %q", ErrValidation, block.Type)
			}
			if len(block.Data) == 0 {
				return models.NoteView{}, fmt.Errorf("%w: block %d has no data", ErrValidation, i)
			}
		}
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	tx := db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return models.NoteView{}, wrapStoreErr(tx.Error)
	}

	note, err := loadNote(tx, id, true)
	if err != nil {
		tx.Rollback()
		return models.NoteView{}, err
	}

	if err := CheckNoteOwnership(principal, note); err != nil {
		tx.Rollback()
		return models.NoteView{}, err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"updated_at": now,
		"version":    note.Version + 1,
	}

	if input.Title != nil {
		ct, err := s.codec.EncryptString(*input.Title)
		if err != nil {
			tx.Rollback()
			return models.NoteView{}, err
		}
		updates["encrypted_title"] = ct
		note.EncryptedTitle = ct
	}
	if input.Subject != nil {
		ct, err := s.codec.EncryptString(*input.Subject)
		if err != nil {
			tx.Rollback()
			return models.NoteView{}, err
		}
		updates["encrypted_subject"] = ct
		note.EncryptedSubject = ct
	}
	if input.AssignedDate != nil {
		updates["assigned_date"] = *input.AssignedDate
		note.AssignedDate = *input.AssignedDate
	}

	if input.Blocks != nil {
		// Blocks are replaced wholesale when supplied.
		if err := tx.Where("note_id = ?", note.ID).Delete(&models.ContentBlock{}).Error; err != nil {
			tx.Rollback()
			return models.NoteView{}, wrapStoreErr(err)
		}

		newBlocks, err := s.encryptBlocks(note.ID, *input.Blocks, now)
		if err != nil {
			tx.Rollback()
			return models.NoteView{}, err
		}
		if len(newBlocks) > 0 {
			if err := tx.Create(&newBlocks).Error; err != nil {
				tx.Rollback()
				return models.NoteView{}, wrapStoreErr(err)
			}
		}
		note.ContentBlocks = newBlocks
	}

	if err := applyVersioned(tx, note.ID, note.Version, updates); err != nil {
		tx.Rollback()
		return models.NoteView{}, err
	}
	note.Version++
	note.UpdatedAt = now

	if err := s.recordEvent(tx, broker.NoteUpdated, "update", principal, note); err != nil {
		tx.Rollback()
		return models.NoteView{}, wrapStoreErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.NoteView{}, wrapStoreErr(err)
	}

	return s.decryptNote(note)
}

func (s *NoteService) DeleteNote(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	tx := db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return wrapStoreErr(tx.Error)
	}

	note, err := loadNote(tx, id, false)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := CheckNoteOwnership(principal, note); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Where("note_id = ?", note.ID).Delete(&models.ContentBlock{}).Error; err != nil {
		tx.Rollback()
		return wrapStoreErr(err)
	}

	if err := tx.Delete(note).Error; err != nil {
		tx.Rollback()
		return wrapStoreErr(err)
	}

	if err := s.recordEvent(tx, broker.NoteDeleted, "delete", principal, note); err != nil {
		tx.Rollback()
		return wrapStoreErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return wrapStoreErr(err)
	}
	return nil
}

func (s *NoteService) ListNotesByUser(ctx context.Context, db *database.Database, principal models.PrincipalID) ([]models.NoteSummary, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	var notes []models.Note
	err := db.DB.WithContext(ctx).
		Where("owner_id = ?", principal.UUID()).
		Order("assigned_date ASC").
		Find(&notes).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	summaries := make([]models.NoteSummary, 0, len(notes))
	for i := range notes {
		summary, err := s.decryptSummary(&notes[i])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *NoteService) ToggleDone(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) (bool, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	tx := db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return false, wrapStoreErr(tx.Error)
	}

	note, err := loadNote(tx, id, false)
	if err != nil {
		tx.Rollback()
		return false, err
	}

	if err := CheckNoteOwnership(principal, note); err != nil {
		tx.Rollback()
		return false, err
	}

	newValue := !note.IsDone
	now := time.Now().UTC()
	err = applyVersioned(tx, note.ID, note.Version, map[string]interface{}{
		"is_done":    newValue,
		"updated_at": now,
		"version":    note.Version + 1,
	})
	if err != nil {
		tx.Rollback()
		return false, err
	}
	note.IsDone = newValue

	if err := s.recordEvent(tx, broker.NoteCompletionToggled, "update", principal, note); err != nil {
		tx.Rollback()
		return false, wrapStoreErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return false, wrapStoreErr(err)
	}

	return newValue, nil
}

func (s *NoteService) Reschedule(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID, newDate time.Time) (time.Time, error) {
	if newDate.IsZero() {
		return time.Time{}, fmt.Errorf("%w: assigned_date is required", ErrValidation)
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	tx := db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return time.Time{}, wrapStoreErr(tx.Error)
	}

	note, err := loadNote(tx, id, false)
	if err != nil {
		tx.Rollback()
		return time.Time{}, err
	}

	if err := CheckNoteOwnership(principal, note); err != nil {
		tx.Rollback()
		return time.Time{}, err
	}

	now := time.Now().UTC()
	err = applyVersioned(tx, note.ID, note.Version, map[string]interface{}{
		"assigned_date": newDate,
		"updated_at":    now,
		"version":       note.Version + 1,
	})
	if err != nil {
		tx.Rollback()
		return time.Time{}, err
	}
	note.AssignedDate = newDate

	if err := s.recordEvent(tx, broker.NoteRescheduled, "update", principal, note); err != nil {
		tx.Rollback()
		return time.Time{}, wrapStoreErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return time.Time{}, wrapStoreErr(err)
	}

	return newDate, nil
}

// loadNote fetches a note by id, optionally with its blocks in display
// order. gorm's not-found is mapped to ErrNoteNotFound here so callers only
// ever see the service taxonomy.
func loadNote(tx *gorm.DB, id uuid.UUID, withBlocks bool) (*models.Note, error) {
	query := tx
	if withBlocks {
		query = query.Preload("ContentBlocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	}

	var note models.Note
	if err := query.First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &note, nil
}

// applyVersioned performs the optimistic write: the update only lands if the
// version read at load time is still current. A losing writer gets
// ErrConcurrentModification and should reload and retry.
func applyVersioned(tx *gorm.DB, id uuid.UUID, version int, updates map[string]interface{}) error {
	result := tx.Model(&models.Note{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if result.Error != nil {
		return wrapStoreErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (s *NoteService) encryptBlocks(noteID uuid.UUID, blocks []BlockInput, now time.Time) ([]models.ContentBlock, error) {
	encrypted := make([]models.ContentBlock, 0, len(blocks))
	for i, block := range blocks {
		data, err := s.codec.EncryptJSON(block.Data)
		if err != nil {
			return nil, err
		}
		encrypted = append(encrypted, models.ContentBlock{
			ID:        uuid.New(),
			NoteID:    noteID,
			Type:      block.Type,
			Data:      data,
			Position:  i + 1,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return encrypted, nil
}

func (s *NoteService) decryptNote(note *models.Note) (models.NoteView, error) {
	title, err := s.codec.DecryptString(note.EncryptedTitle)
	if err != nil {
		return models.NoteView{}, err
	}
	subject, err := s.codec.DecryptString(note.EncryptedSubject)
	if err != nil {
		return models.NoteView{}, err
	}

	blocks := make([]models.BlockView, 0, len(note.ContentBlocks))
	for i := range note.ContentBlocks {
		var data json.RawMessage
		if err := s.codec.DecryptJSON(note.ContentBlocks[i].Data, &data); err != nil {
			return models.NoteView{}, err
		}
		blocks = append(blocks, models.BlockView{
			Type: note.ContentBlocks[i].Type,
			Data: data,
		})
	}

	return models.NoteView{
		ID:            note.ID,
		Title:         title,
		Subject:       subject,
		ContentBlocks: blocks,
		AssignedDate:  note.AssignedDate,
		CalendarID:    note.CalendarID,
		IsDone:        note.IsDone,
		CreatedAt:     note.CreatedAt,
		UpdatedAt:     note.UpdatedAt,
	}, nil
}

func (s *NoteService) decryptSummary(note *models.Note) (models.NoteSummary, error) {
	title, err := s.codec.DecryptString(note.EncryptedTitle)
	if err != nil {
		return models.NoteSummary{}, err
	}
	subject, err := s.codec.DecryptString(note.EncryptedSubject)
	if err != nil {
		return models.NoteSummary{}, err
	}

	return models.NoteSummary{
		ID:           note.ID,
		Title:        title,
		Subject:      subject,
		AssignedDate: note.AssignedDate,
		CalendarID:   note.CalendarID,
		IsDone:       note.IsDone,
		UpdatedAt:    note.UpdatedAt,
	}, nil
}

// recordEvent writes an outbox row inside the mutation's transaction. Event
// payloads carry identifiers and unencrypted metadata only.
func (s *NoteService) recordEvent(tx *gorm.DB, eventType broker.EventType, operation string, principal models.PrincipalID, note *models.Note) error {
	event, err := models.NewEvent(
		string(eventType),
		"note",
		operation,
		principal.String(),
		map[string]interface{}{
			"note_id":       note.ID.String(),
			"owner_id":      note.OwnerID.String(),
			"calendar_id":   note.CalendarID.String(),
			"assigned_date": note.AssignedDate,
			"is_done":       note.IsDone,
		},
	)
	if err != nil {
		return err
	}
	return tx.Create(event).Error
}

// Don't initialize here, will be set properly in main.go
var NoteServiceInstance NoteServiceInterface
