package routes

import (
	"errors"
	"log"
	"net/http"
	"time"

	"notelock/crypto"
	"notelock/database"
	"notelock/models"
	"notelock/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createNoteRequest struct {
	Title         string                `json:"title"`
	Subject       string                `json:"subject"`
	ContentBlocks []services.BlockInput `json:"content_blocks"`
	AssignedDate  string                `json:"assigned_date" binding:"required"`
	CalendarID    uuid.UUID             `json:"calendar_id" binding:"required"`
}

type updateNoteRequest struct {
	Title         *string                `json:"title"`
	Subject       *string                `json:"subject"`
	ContentBlocks *[]services.BlockInput `json:"content_blocks"`
	AssignedDate  *string                `json:"assigned_date"`
}

type rescheduleRequest struct {
	AssignedDate string `json:"assigned_date" binding:"required"`
}

func RegisterNoteRoutes(group *gin.RouterGroup, db *database.Database, noteService services.NoteServiceInterface) {
	group.GET("/notes", func(c *gin.Context) { ListNotes(c, db, noteService) })
	group.POST("/notes", func(c *gin.Context) { CreateNote(c, db, noteService) })

	group.GET("/notes/:id", func(c *gin.Context) { GetNoteById(c, db, noteService) })
	group.PUT("/notes/:id", func(c *gin.Context) { UpdateNote(c, db, noteService) })
	group.DELETE("/notes/:id", func(c *gin.Context) { DeleteNote(c, db, noteService) })
	group.POST("/notes/:id/toggle", func(c *gin.Context) { ToggleNoteDone(c, db, noteService) })
	group.PUT("/notes/:id/reschedule", func(c *gin.Context) { RescheduleNote(c, db, noteService) })
}

// principalFromContext reads the identity placed by the auth middleware.
func principalFromContext(c *gin.Context) (models.PrincipalID, bool) {
	value, exists := c.Get("principalID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return models.PrincipalID{}, false
	}
	principal, ok := value.(models.PrincipalID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid principal in context"})
		return models.PrincipalID{}, false
	}
	return principal, true
}

func noteIDFromPath(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note id"})
		return uuid.Nil, false
	}
	return id, true
}

// parseDate accepts both a bare calendar date and a full timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// respondNoteError maps service errors onto HTTP statuses. Not-found and
// access-denied deliberately share one neutral response so callers cannot
// probe whether a note exists under another owner.
func respondNoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoteNotFound), errors.Is(err, services.ErrAccessDenied):
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not accessible"})
	case errors.Is(err, services.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": "Note was modified concurrently, reload and retry"})
	case errors.Is(err, services.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage temporarily unavailable"})
	case errors.Is(err, crypto.ErrDecryptionFailed), errors.Is(err, crypto.ErrMalformedPayload):
		// Key mismatch or data corruption. Log the kind, never the bytes.
		log.Printf("Note payload unreadable: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func CreateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}

	var request createNoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignedDate, err := parseDate(request.AssignedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assigned_date"})
		return
	}

	view, err := noteService.CreateNote(c.Request.Context(), db, principal, services.CreateNoteInput{
		Title:        request.Title,
		Subject:      request.Subject,
		Blocks:       request.ContentBlocks,
		AssignedDate: assignedDate,
		CalendarID:   request.CalendarID,
	})
	if err != nil {
		respondNoteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func GetNoteById(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	id, ok := noteIDFromPath(c)
	if !ok {
		return
	}

	view, err := noteService.GetNoteById(c.Request.Context(), db, principal, id)
	if err != nil {
		respondNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func UpdateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	id, ok := noteIDFromPath(c)
	if !ok {
		return
	}

	var request updateNoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateNoteInput{
		Title:   request.Title,
		Subject: request.Subject,
		Blocks:  request.ContentBlocks,
	}
	if request.AssignedDate != nil {
		assignedDate, err := parseDate(*request.AssignedDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assigned_date"})
			return
		}
		input.AssignedDate = &assignedDate
	}

	view, err := noteService.UpdateNote(c.Request.Context(), db, principal, id, input)
	if err != nil {
		respondNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func DeleteNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	id, ok := noteIDFromPath(c)
	if !ok {
		return
	}

	if err := noteService.DeleteNote(c.Request.Context(), db, principal, id); err != nil {
		respondNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}

func ListNotes(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}

	summaries, err := noteService.ListNotesByUser(c.Request.Context(), db, principal)
	if err != nil {
		respondNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func ToggleNoteDone(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	id, ok := noteIDFromPath(c)
	if !ok {
		return
	}

	isDone, err := noteService.ToggleDone(c.Request.Context(), db, principal, id)
	if err != nil {
		respondNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_done": isDone})
}

func RescheduleNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	id, ok := noteIDFromPath(c)
	if !ok {
		return
	}

	var request rescheduleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignedDate, err := parseDate(request.AssignedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assigned_date"})
		return
	}

	newDate, err := noteService.Reschedule(c.Request.Context(), db, principal, id, assignedDate)
	if err != nil {
		respondNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned_date": newDate})
}
