package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/kalilynx/embededticketautomation/internal/fulfillment"
	"github.com/kalilynx/embededticketautomation/internal/helpers"
)

const maxWebhookBody = int64(65536)

// WebhookHandler receives Stripe's payment confirmations. Stripe delivers
// at least once and retries on non-2xx, so a ledger failure here answers
// 500 and relies on redelivery; the payment reference keeps that safe.
type WebhookHandler struct {
	orchestrator  *fulfillment.Orchestrator
	webhookSecret string
	unitPrice     int
}

func NewWebhookHandler(orchestrator *fulfillment.Orchestrator, webhookSecret string, unitPrice int) *WebhookHandler {
	return &WebhookHandler{
		orchestrator:  orchestrator,
		webhookSecret: webhookSecret,
		unitPrice:     unitPrice,
	}
}

func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Failed to read request body.")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid webhook signature.")
		return
	}

	if event.Type != "checkout.session.completed" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Malformed event payload.")
		return
	}

	buyerEmail := session.CustomerEmail
	if buyerEmail == "" && session.CustomerDetails != nil {
		buyerEmail = session.CustomerDetails.Email
	}

	_, err = h.orchestrator.Fulfill(fulfillment.PaymentEvent{
		PaymentRef: session.ID,
		BuyerEmail: buyerEmail,
		AmountPaid: int(session.AmountTotal),
		UnitPrice:  h.unitPrice,
	})
	if err != nil {
		log.Printf("fulfillment failed for session %s: %v", session.ID, err)
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to fulfill order.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
