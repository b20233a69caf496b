package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"github.com/kalilynx/embededticketautomation/config"
	"github.com/kalilynx/embededticketautomation/internal/helpers"
)

type CheckoutRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// CheckoutHandler creates Stripe checkout sessions for ticket purchases.
// Fulfillment happens later, from the webhook, once Stripe confirms payment.
type CheckoutHandler struct {
	event *config.EventConfig
	now   func() time.Time
}

func NewCheckoutHandler(event *config.EventConfig, now func() time.Time) *CheckoutHandler {
	return &CheckoutHandler{event: event, now: now}
}

func (h *CheckoutHandler) CreateCheckoutSession(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Email and quantity required.")
		return
	}

	eventDate := helpers.CurrentSaturday(h.now())

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:      stripe.String(req.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(h.event.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%s – %s", h.event.Name, eventDate)),
					},
					UnitAmount: stripe.Int64(int64(h.event.TicketPrice)),
				},
				Quantity: stripe.Int64(int64(req.Quantity)),
			},
		},
		SuccessURL: stripe.String(h.event.BaseURL + "/success.html"),
		CancelURL:  stripe.String(h.event.BaseURL + "/cancel.html"),
	}

	s, err := session.New(params)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create payment session.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL})
}
