package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kalilynx/embededticketautomation/internal/models"
)

var (
	// ErrDuplicatePayment reports that the payment reference has already
	// been recorded. Callers treat this as "already fulfilled, skip".
	ErrDuplicatePayment = errors.New("payment reference already recorded")

	// ErrTicketNotFound reports that no ticket matches the code and event
	// date. Redemption callers surface this as an invalid ticket.
	ErrTicketNotFound = errors.New("ticket not found")
)

// CodeCollisionError reports which generated codes hit the unique
// constraint, so the caller can regenerate just those entries.
type CodeCollisionError struct {
	Codes []string
}

func (e *CodeCollisionError) Error() string {
	return fmt.Sprintf("ticket codes already exist: %s", strings.Join(e.Codes, ", "))
}

// TicketSpec is one ticket to mint: the code and the event instance it
// admits to.
type TicketSpec struct {
	Code      string `json:"code"`
	EventDate string `json:"event_date"`
}

// Stats is the derived sold/scanned/remaining view for one event date.
type Stats struct {
	Sold      int64 `json:"sold"`
	Scanned   int64 `json:"scanned"`
	Remaining int64 `json:"remaining"`
}

// Ledger is the durable record of paid orders and the tickets they minted.
// It is the single arbiter of payment idempotency, code uniqueness and the
// at-most-once redeemed transition.
type Ledger interface {
	// WithTx runs fn against a ledger bound to a single transaction. Any
	// error from fn rolls the whole transaction back, so a multi-write
	// sequence leaves nothing behind when it fails part-way.
	WithTx(fn func(tx Ledger) error) error

	// RecordOrder atomically creates the order for a payment. A duplicate
	// payment reference returns ErrDuplicatePayment and writes nothing.
	RecordOrder(buyerEmail, paymentRef string, amount int) (uuid.UUID, error)

	// AddTickets inserts the given tickets for an order. Codes that collide
	// with existing tickets are reported via *CodeCollisionError; the
	// remaining entries are still inserted.
	AddTickets(orderID uuid.UUID, tickets []TicketSpec) error

	// FindTicket looks a ticket up by its stored (normalized) code and
	// event date. A miss returns ErrTicketNotFound.
	FindTicket(code, eventDate string) (*models.Ticket, error)

	// MarkRedeemed flips the redeemed flag in a single conditional update.
	// It reports true only for the caller that performed the transition; a
	// ticket already redeemed reports false with no error.
	MarkRedeemed(ticketID uuid.UUID) (bool, error)

	// Aggregate derives the sold/scanned/remaining counts for a date.
	Aggregate(eventDate string) (Stats, error)

	// CodesByDate returns every ticket code for a date, for the offline
	// door list.
	CodesByDate(eventDate string) ([]string, error)
}
