package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNoteViewToJSON(t *testing.T) {
	view := NoteView{
		ID:      uuid.New(),
		Title:   "Quarterly planning",
		Subject: "Work",
		ContentBlocks: []BlockView{
			{Type: TextBlock, Data: json.RawMessage(`{"text":"draft agenda"}`)},
		},
		AssignedDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CalendarID:   uuid.New(),
		IsDone:       false,
	}

	data, err := view.ToJSON()
	assert.NoError(t, err)

	var result NoteView
	err = json.Unmarshal(data, &result)
	assert.NoError(t, err)
	assert.Equal(t, view.ID, result.ID)
	assert.Equal(t, view.Title, result.Title)
	assert.Len(t, result.ContentBlocks, 1)
	assert.JSONEq(t, `{"text":"draft agenda"}`, string(result.ContentBlocks[0].Data))
}

func TestNoteViewFromJSON(t *testing.T) {
	data := `{
		"id": "550e8400-e29b-41d4-a716-446655440000",
		"title": "Dentist",
		"subject": "Health",
		"assigned_date": "2024-03-01T00:00:00Z",
		"calendar_id": "550e8400-e29b-41d4-a716-446655440001",
		"is_done": true
	}`

	var view NoteView
	err := view.FromJSON([]byte(data))
	assert.NoError(t, err)
	assert.Equal(t, "Dentist", view.Title)
	assert.Equal(t, "Health", view.Subject)
	assert.True(t, view.IsDone)
	assert.Equal(t, 2024, view.AssignedDate.Year())
}

func TestNoteJSONHidesCiphertext(t *testing.T) {
	note := Note{
		ID:               uuid.New(),
		OwnerID:          uuid.New(),
		EncryptedTitle:   []byte{0x01, 0x02, 0x03},
		EncryptedSubject: []byte{0x04, 0x05, 0x06},
	}

	data, err := json.Marshal(note)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "EncryptedTitle")
	assert.NotContains(t, string(data), "encrypted_title")
	assert.NotContains(t, string(data), "version")
}
