package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Note is the persisted record. Title, subject and block payloads are stored
// as ciphertext only; the plaintext shapes live in NoteView and NoteSummary.
type Note struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	EncryptedTitle   []byte         `gorm:"type:bytea;not null" json:"-"`
	EncryptedSubject []byte         `gorm:"type:bytea;not null" json:"-"`
	ContentBlocks    []ContentBlock `gorm:"foreignKey:NoteID;constraint:OnDelete:CASCADE" json:"-"`
	AssignedDate     time.Time      `gorm:"not null;index" json:"assigned_date"`
	CalendarID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"calendar_id"`
	IsDone           bool           `gorm:"not null;default:false" json:"is_done"`
	Version          int            `gorm:"not null;default:1" json:"-"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

// NoteView is the decrypted representation returned to the owner.
type NoteView struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Subject       string      `json:"subject"`
	ContentBlocks []BlockView `json:"content_blocks"`
	AssignedDate  time.Time   `json:"assigned_date"`
	CalendarID    uuid.UUID   `json:"calendar_id"`
	IsDone        bool        `json:"is_done"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// NoteSummary is the list representation: title and subject decrypted,
// content blocks omitted.
type NoteSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Subject      string    `json:"subject"`
	AssignedDate time.Time `json:"assigned_date"`
	CalendarID   uuid.UUID `json:"calendar_id"`
	IsDone       bool      `json:"is_done"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (v *NoteView) FromJSON(data []byte) error {
	return json.Unmarshal(data, v)
}

func (v *NoteView) ToJSON() ([]byte, error) {
	return json.Marshal(v)
}
