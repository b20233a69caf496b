package fulfillment

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/kalilynx/embededticketautomation/internal/ledger"
)

// ErrGenerationFailure reports that a unique set of ticket codes could not
// be produced within the retry budget. With a 2^48 code space this means
// something is wrong with the random source, not the event volume.
var ErrGenerationFailure = errors.New("could not generate unique ticket codes")

const maxCodeRetries = 5

// PaymentEvent is the authenticated "payment confirmed" notification from
// the payment gateway. Delivery is at-least-once; the payment reference is
// the idempotency key.
type PaymentEvent struct {
	PaymentRef string
	BuyerEmail string
	AmountPaid int
	UnitPrice  int
}

// Notifier delivers minted tickets to the buyer. Failures are the
// collaborator's to retry; tickets stay valid either way.
type Notifier interface {
	SendTickets(buyerEmail string, tickets []ledger.TicketSpec) error
}

// Orchestrator turns a confirmed payment into a recorded order, minted
// tickets and a notification, in that strict sequence.
type Orchestrator struct {
	ledger    ledger.Ledger
	notifier  Notifier
	generate  func() (string, error)
	eventDate func() string
}

func New(l ledger.Ledger, n Notifier, generate func() (string, error), eventDate func() string) *Orchestrator {
	return &Orchestrator{ledger: l, notifier: n, generate: generate, eventDate: eventDate}
}

// Fulfill processes one payment event. Redelivered events are acknowledged
// without minting anything. The order and its tickets commit in a single
// transaction, so a failure part-way leaves no record and the gateway's
// redelivery starts from a clean slate; notification failures do not abort.
func (o *Orchestrator) Fulfill(event PaymentEvent) ([]ledger.TicketSpec, error) {
	if event.UnitPrice <= 0 {
		return nil, fmt.Errorf("unit price must be positive, got %d", event.UnitPrice)
	}

	quantity := event.AmountPaid / event.UnitPrice
	if event.AmountPaid%event.UnitPrice != 0 {
		log.Printf("reconciliation warning: payment %s amount %d is not a multiple of unit price %d",
			event.PaymentRef, event.AmountPaid, event.UnitPrice)
	}

	var tickets []ledger.TicketSpec
	duplicate := false
	err := o.ledger.WithTx(func(tx ledger.Ledger) error {
		orderID, err := tx.RecordOrder(event.BuyerEmail, event.PaymentRef, event.AmountPaid)
		if errors.Is(err, ledger.ErrDuplicatePayment) {
			duplicate = true
			return nil
		}
		if err != nil {
			return err
		}

		if quantity == 0 {
			log.Printf("reconciliation warning: payment %s amount %d below unit price, no tickets minted",
				event.PaymentRef, event.AmountPaid)
			return nil
		}

		tickets, err = o.mint(tx, orderID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	if duplicate {
		log.Printf("payment %s already fulfilled, skipping", event.PaymentRef)
		return nil, nil
	}
	if len(tickets) == 0 {
		return nil, nil
	}

	// Strictly after the transaction has committed, and never fatal: the
	// scan and door-lookup flows cover a lost email.
	if err := o.notifier.SendTickets(event.BuyerEmail, tickets); err != nil {
		log.Printf("notification failure for payment %s: %v (tickets remain valid)", event.PaymentRef, err)
	}
	return tickets, nil
}

// mint inserts quantity tickets for the order on the given transactional
// ledger, regenerating only the codes it reports as collided, up to
// maxCodeRetries rounds.
func (o *Orchestrator) mint(tx ledger.Ledger, orderID uuid.UUID, quantity int) ([]ledger.TicketSpec, error) {
	eventDate := o.eventDate()

	pending, err := o.freshSpecs(quantity, eventDate)
	if err != nil {
		return nil, err
	}

	minted := make([]ledger.TicketSpec, 0, quantity)
	for attempt := 1; ; attempt++ {
		err := tx.AddTickets(orderID, pending)
		if err == nil {
			return append(minted, pending...), nil
		}

		var collision *ledger.CodeCollisionError
		if !errors.As(err, &collision) {
			return nil, err
		}

		collided := make(map[string]bool, len(collision.Codes))
		for _, code := range collision.Codes {
			collided[code] = true
		}
		for _, spec := range pending {
			if !collided[spec.Code] {
				minted = append(minted, spec)
			}
		}

		if attempt >= maxCodeRetries {
			return nil, fmt.Errorf("%w: %d codes still colliding after %d attempts",
				ErrGenerationFailure, len(collision.Codes), attempt)
		}

		pending, err = o.freshSpecs(len(collision.Codes), eventDate)
		if err != nil {
			return nil, err
		}
	}
}

func (o *Orchestrator) freshSpecs(n int, eventDate string) ([]ledger.TicketSpec, error) {
	specs := make([]ledger.TicketSpec, 0, n)
	for i := 0; i < n; i++ {
		code, err := o.generate()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailure, err)
		}
		specs = append(specs, ledger.TicketSpec{Code: code, EventDate: eventDate})
	}
	return specs, nil
}
