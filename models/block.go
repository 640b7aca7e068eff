package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type BlockType string

const (
	TextBlock     BlockType = "text"
	CodeBlock     BlockType = "code"
	PageBlock     BlockType = "page"
	BirthdayBlock BlockType = "birthday"
)

// ValidBlockType reports whether t is one of the supported block types.
func ValidBlockType(t BlockType) bool {
	switch t {
	case TextBlock, CodeBlock, PageBlock, BirthdayBlock:
		return true
	}
	return false
}

// ContentBlock is one ordered unit of a note's body. Data holds the
// ciphertext of the block's serialized payload; the type tag is stored in the
// clear for calendar filtering.
type ContentBlock struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NoteID    uuid.UUID `gorm:"type:uuid;not null;index;constraint:OnDelete:CASCADE" json:"note_id"`
	Type      BlockType `gorm:"type:varchar(20);not null" json:"type"`
	Data      []byte    `gorm:"type:bytea;not null" json:"-"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// BlockView is the decrypted representation of a content block.
type BlockView struct {
	Type BlockType       `json:"type"`
	Data json.RawMessage `json:"data"`
}
