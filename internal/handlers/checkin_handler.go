package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kalilynx/embededticketautomation/internal/helpers"
	"github.com/kalilynx/embededticketautomation/internal/ledger"
	"github.com/kalilynx/embededticketautomation/internal/qr"
	"github.com/kalilynx/embededticketautomation/internal/redemption"
	"github.com/kalilynx/embededticketautomation/internal/ticketcode"
)

type CheckInRequest struct {
	TicketCode string `json:"ticket_code" binding:"required"`
	EventDate  string `json:"event_date"`
}

// CheckInHandler serves the door: staff check-in, the public scan page, the
// QR image for a ticket and the offline code list.
type CheckInHandler struct {
	gate     *redemption.Gate
	ledger   ledger.Ledger
	renderer *qr.Renderer
	now      func() time.Time
}

func NewCheckInHandler(gate *redemption.Gate, l ledger.Ledger, renderer *qr.Renderer, now func() time.Time) *CheckInHandler {
	return &CheckInHandler{gate: gate, ledger: l, renderer: renderer, now: now}
}

func (h *CheckInHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Ticket code required.")
		return
	}

	eventDate := req.EventDate
	if eventDate == "" {
		eventDate = helpers.CurrentSaturday(h.now())
	}

	result, err := h.gate.CheckIn(req.TicketCode, eventDate)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Check-in failed.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  result,
		"message": checkInMessage(result),
	})
}

func checkInMessage(result redemption.Result) string {
	switch result {
	case redemption.Valid:
		return "Entry allowed"
	case redemption.AlreadyUsed:
		return "Already checked in"
	default:
		return "Invalid ticket"
	}
}

// Verify is the page a scanned QR code lands on. It runs the same redeeming
// state machine as staff check-in against the current event instance.
func (h *CheckInHandler) Verify(c *gin.Context) {
	result, err := h.gate.Verify(c.Param("code"))
	if err != nil {
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(verifyErrorPage))
		return
	}

	var page string
	switch result {
	case redemption.Valid:
		page = verifyValidPage
	case redemption.AlreadyUsed:
		page = verifyUsedPage
	default:
		page = verifyInvalidPage
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// TicketQR renders the scannable image for a code. Presentation only; it
// never touches the redeemed flag.
func (h *CheckInHandler) TicketQR(c *gin.Context) {
	png, err := h.renderer.PNG(ticketcode.Normalize(c.Param("code")))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// OfflineTickets exports every code for a date as a flat list, for door use
// without connectivity.
func (h *CheckInHandler) OfflineTickets(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = helpers.CurrentSaturday(h.now())
	}

	codes, err := h.ledger.CodesByDate(date)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to load tickets.")
		return
	}
	if codes == nil {
		codes = []string{}
	}
	c.JSON(http.StatusOK, codes)
}

const (
	verifyValidPage = `<html>
  <body style="font-family: sans-serif; text-align: center; padding: 50px;">
    <h1 style="color: green;">✅ Valid Ticket</h1>
    <p>Entry allowed. Welcome!</p>
  </body>
</html>`

	verifyUsedPage = `<html>
  <body style="font-family: sans-serif; text-align: center; padding: 50px;">
    <h1 style="color: orange;">⚠️ Already Used</h1>
    <p>This ticket has already been checked in.</p>
  </body>
</html>`

	verifyInvalidPage = `<html>
  <body style="font-family: sans-serif; text-align: center; padding: 50px;">
    <h1 style="color: red;">❌ Invalid Ticket</h1>
    <p>This ticket code is not valid.</p>
  </body>
</html>`

	verifyErrorPage = `<html>
  <body style="font-family: sans-serif; text-align: center; padding: 50px;">
    <h1>Something went wrong</h1>
    <p>Please try again or ask staff for a manual check-in.</p>
  </body>
</html>`
)
