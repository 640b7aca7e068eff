package models

import (
	"time"

	"github.com/google/uuid"
)

// Calendar groups notes for display. Names are not sensitive and are stored
// in the clear.
type Calendar struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name      string    `gorm:"not null" json:"name"`
	Notes     []Note    `gorm:"foreignKey:CalendarID" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
