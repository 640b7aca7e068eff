package routes

import (
	"errors"
	"net/http"

	"notelock/database"
	"notelock/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createCalendarRequest struct {
	Name string `json:"name" binding:"required"`
}

func RegisterCalendarRoutes(group *gin.RouterGroup, db *database.Database, calendarService services.CalendarServiceInterface) {
	group.GET("/calendars", func(c *gin.Context) { ListCalendars(c, db, calendarService) })
	group.POST("/calendars", func(c *gin.Context) { CreateCalendar(c, db, calendarService) })
	group.GET("/calendars/:id", func(c *gin.Context) { GetCalendarById(c, db, calendarService) })
	group.DELETE("/calendars/:id", func(c *gin.Context) { DeleteCalendar(c, db, calendarService) })
}

func respondCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrCalendarNotFound), errors.Is(err, services.ErrAccessDenied):
		c.JSON(http.StatusNotFound, gin.H{"error": "Calendar not accessible"})
	case errors.Is(err, services.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func CreateCalendar(c *gin.Context, db *database.Database, calendarService services.CalendarServiceInterface) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}

	var request createCalendarRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	calendar, err := calendarService.CreateCalendar(c.Request.Context(), db, principal, request.Name)
	if err != nil {
		respondCalendarError(c, err)
		return
	}
	c.JSON(http.StatusCreated, calendar)
}

func GetCalendarById(c *gin.Context, db *database.Database, calendarService services.CalendarServiceInterface) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid calendar id"})
		return
	}

	calendar, err := calendarService.GetCalendarById(c.Request.Context(), db, principal, id)
	if err != nil {
		respondCalendarError(c, err)
		return
	}
	c.JSON(http.StatusOK, calendar)
}

func ListCalendars(c *gin.Context, db *database.Database, calendarService services.CalendarServiceInterface) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}

	calendars, err := calendarService.ListCalendarsByUser(c.Request.Context(), db, principal)
	if err != nil {
		respondCalendarError(c, err)
		return
	}
	c.JSON(http.StatusOK, calendars)
}

func DeleteCalendar(c *gin.Context, db *database.Database, calendarService services.CalendarServiceInterface) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid calendar id"})
		return
	}

	if err := calendarService.DeleteCalendar(c.Request.Context(), db, principal, id); err != nil {
		respondCalendarError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Calendar deleted"})
}
