package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notelock/database"
	"notelock/models"
	"notelock/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var (
	knownNoteID   = uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	foreignNoteID = uuid.MustParse("123e4567-e89b-12d3-a456-426614174111")
	testOwner     = models.PrincipalID(uuid.MustParse("90a12345-f12a-98c4-a456-513432930000"))
)

type MockNoteService struct{}

func (m *MockNoteService) CreateNote(ctx context.Context, db *database.Database, principal models.PrincipalID, input services.CreateNoteInput) (models.NoteView, error) {
	if input.CalendarID == uuid.Nil {
		return models.NoteView{}, services.ErrValidation
	}
	return models.NoteView{
		ID:           knownNoteID,
		Title:        input.Title,
		Subject:      input.Subject,
		AssignedDate: input.AssignedDate,
		CalendarID:   input.CalendarID,
	}, nil
}

func (m *MockNoteService) GetNoteById(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) (models.NoteView, error) {
	switch id {
	case knownNoteID:
		return models.NoteView{ID: id, Title: "Test Note", Subject: "Testing"}, nil
	case foreignNoteID:
		return models.NoteView{}, services.ErrAccessDenied
	}
	return models.NoteView{}, services.ErrNoteNotFound
}

func (m *MockNoteService) UpdateNote(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID, input services.UpdateNoteInput) (models.NoteView, error) {
	if id != knownNoteID {
		return models.NoteView{}, services.ErrNoteNotFound
	}
	view := models.NoteView{ID: id, Title: "Test Note"}
	if input.Title != nil {
		view.Title = *input.Title
	}
	return view, nil
}

func (m *MockNoteService) DeleteNote(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) error {
	if id != knownNoteID {
		return services.ErrNoteNotFound
	}
	return nil
}

func (m *MockNoteService) ListNotesByUser(ctx context.Context, db *database.Database, principal models.PrincipalID) ([]models.NoteSummary, error) {
	if principal == testOwner {
		return []models.NoteSummary{{ID: knownNoteID, Title: "Test Note"}}, nil
	}
	return []models.NoteSummary{}, nil
}

func (m *MockNoteService) ToggleDone(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID) (bool, error) {
	if id != knownNoteID {
		return false, services.ErrNoteNotFound
	}
	return true, nil
}

func (m *MockNoteService) Reschedule(ctx context.Context, db *database.Database, principal models.PrincipalID, id uuid.UUID, newDate time.Time) (time.Time, error) {
	if id == foreignNoteID {
		return time.Time{}, services.ErrConcurrentModification
	}
	if id != knownNoteID {
		return time.Time{}, services.ErrNoteNotFound
	}
	return newDate, nil
}

func setupNoteRouter(principal *models.PrincipalID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		if principal != nil {
			c.Set("principalID", *principal)
		}
		c.Next()
	})
	RegisterNoteRoutes(group, &database.Database{}, &MockNoteService{})
	return router
}

func TestCreateNoteRoute(t *testing.T) {
	owner := testOwner
	router := setupNoteRouter(&owner)

	t.Run("Invalid JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/notes", bytes.NewBufferString("invalid json"))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing assigned date", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/notes", bytes.NewBufferString(`{"title":"Plan","calendar_id":"123e4567-e89b-12d3-a456-426614174000"}`))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unparsable date", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/notes", bytes.NewBufferString(`{"title":"Plan","assigned_date":"next tuesday","calendar_id":"123e4567-e89b-12d3-a456-426614174000"}`))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Valid", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"title":"Plan","subject":"Q1","assigned_date":"2024-03-01","calendar_id":"123e4567-e89b-12d3-a456-426614174000","content_blocks":[{"type":"text","data":{"text":"buy milk"}}]}`
		req, _ := http.NewRequest("POST", "/api/v1/notes", bytes.NewBufferString(body))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Plan")
	})
}

func TestGetNoteRoute(t *testing.T) {
	owner := testOwner
	router := setupNoteRouter(&owner)

	t.Run("Not authenticated", func(t *testing.T) {
		unauthRouter := setupNoteRouter(nil)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/notes/"+knownNoteID.String(), nil)
		unauthRouter.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/notes/"+knownNoteID.String(), nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Test Note")
	})

	t.Run("Invalid id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/notes/not-a-uuid", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing and foreign notes are indistinguishable", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/notes/"+uuid.NewString(), nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
		missingBody := w.Body.String()

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/api/v1/notes/"+foreignNoteID.String(), nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, missingBody, w.Body.String())
	})
}

func TestUpdateNoteRoute(t *testing.T) {
	owner := testOwner
	router := setupNoteRouter(&owner)

	t.Run("Not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/notes/"+uuid.NewString(), bytes.NewBufferString(`{"title":"Updated"}`))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Updated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/notes/"+knownNoteID.String(), bytes.NewBufferString(`{"title":"Updated"}`))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Updated")
	})
}

func TestDeleteNoteRoute(t *testing.T) {
	owner := testOwner
	router := setupNoteRouter(&owner)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/v1/notes/"+knownNoteID.String(), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/v1/notes/"+uuid.NewString(), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListNotesRoute(t *testing.T) {
	owner := testOwner
	router := setupNoteRouter(&owner)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/notes", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Test Note")

	stranger := models.PrincipalID(uuid.New())
	strangerRouter := setupNoteRouter(&stranger)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/notes", nil)
	strangerRouter.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "[]")
}

func TestToggleNoteRoute(t *testing.T) {
	owner := testOwner
	router := setupNoteRouter(&owner)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/notes/"+knownNoteID.String()+"/toggle", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_done":true`)
}

func TestRescheduleNoteRoute(t *testing.T) {
	owner := testOwner
	router := setupNoteRouter(&owner)

	t.Run("Missing date", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/notes/"+knownNoteID.String()+"/reschedule", bytes.NewBufferString(`{}`))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Rescheduled", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/notes/"+knownNoteID.String()+"/reschedule", bytes.NewBufferString(`{"assigned_date":"2024-04-15"}`))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "2024-04-15")
	})

	t.Run("Concurrent modification", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/notes/"+foreignNoteID.String()+"/reschedule", bytes.NewBufferString(`{"assigned_date":"2024-04-15"}`))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
