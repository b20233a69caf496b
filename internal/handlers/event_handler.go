package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kalilynx/embededticketautomation/config"
	"github.com/kalilynx/embededticketautomation/internal/helpers"
)

// EventHandler describes the current event instance. The event is not a
// stored entity; its date is derived from the calendar.
type EventHandler struct {
	event *config.EventConfig
	now   func() time.Time
}

func NewEventHandler(event *config.EventConfig, now func() time.Time) *EventHandler {
	return &EventHandler{event: event, now: now}
}

func (h *EventHandler) CurrentEvent(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":       h.event.Name,
		"event_date": helpers.CurrentSaturday(h.now()),
		"venue":      h.event.Venue,
		"price":      h.event.TicketPrice,
	})
}
