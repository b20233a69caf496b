package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kalilynx/embededticketautomation/internal/helpers"
	"github.com/kalilynx/embededticketautomation/internal/ledger"
)

// StatsHandler serves the sold/scanned/remaining view. Purely derived; safe
// at any concurrency level.
type StatsHandler struct {
	ledger ledger.Ledger
	now    func() time.Time
}

func NewStatsHandler(l ledger.Ledger, now func() time.Time) *StatsHandler {
	return &StatsHandler{ledger: l, now: now}
}

func (h *StatsHandler) Stats(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = helpers.CurrentSaturday(h.now())
	}

	stats, err := h.ledger.Aggregate(date)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to load stats.")
		return
	}
	c.JSON(http.StatusOK, stats)
}
