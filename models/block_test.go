package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidBlockType(t *testing.T) {
	for _, valid := range []BlockType{TextBlock, CodeBlock, PageBlock, BirthdayBlock} {
		assert.True(t, ValidBlockType(valid), "expected %s to be valid", valid)
	}
	assert.False(t, ValidBlockType("task"))
	assert.False(t, ValidBlockType(""))
}

func TestContentBlockJSONHidesCiphertext(t *testing.T) {
	block := ContentBlock{
		ID:       uuid.New(),
		NoteID:   uuid.New(),
		Type:     TextBlock,
		Data:     []byte{0xde, 0xad, 0xbe, 0xef},
		Position: 1,
	}

	data, err := json.Marshal(block)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"type":"text"`)
	assert.Contains(t, string(data), `"position":1`)
	assert.NotContains(t, string(data), "Data")
	assert.NotContains(t, string(data), `"data"`)
}

func TestBlockViewJSON(t *testing.T) {
	view := BlockView{Type: BirthdayBlock, Data: json.RawMessage(`{"name":"Marta","date":"1990-06-12"}`)}

	data, err := json.Marshal(view)
	assert.NoError(t, err)

	var result BlockView
	err = json.Unmarshal(data, &result)
	assert.NoError(t, err)
	assert.Equal(t, BirthdayBlock, result.Type)
	assert.JSONEq(t, string(view.Data), string(result.Data))
}
