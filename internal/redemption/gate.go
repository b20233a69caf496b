package redemption

import (
	"errors"

	"github.com/kalilynx/embededticketautomation/internal/ledger"
	"github.com/kalilynx/embededticketautomation/internal/ticketcode"
)

// Result is the outcome of a redemption attempt. Outcomes are values, not
// errors, so door-side callers branch without special-casing failures.
type Result string

const (
	Valid       Result = "valid"
	AlreadyUsed Result = "used"
	Invalid     Result = "invalid"
)

// Gate enforces at-most-once entry per ticket. Both the staff check-in flow
// and the public scan flow run the same state machine; the atomicity of the
// unredeemed-to-redeemed transition lives in the ledger's conditional
// update, so concurrent attempts on one ticket admit exactly one caller.
type Gate struct {
	ledger      ledger.Ledger
	currentDate func() string
}

// NewGate builds a gate over the given ledger. currentDate supplies the
// event instance used when a scan does not name one.
func NewGate(l ledger.Ledger, currentDate func() string) *Gate {
	return &Gate{ledger: l, currentDate: currentDate}
}

// CheckIn redeems the ticket identified by code and event date. An unknown
// ticket is Invalid, a spent one AlreadyUsed; only the first caller to reach
// the transition ever sees Valid.
func (g *Gate) CheckIn(code, eventDate string) (Result, error) {
	code = ticketcode.Normalize(code)
	if code == "" {
		return Invalid, nil
	}

	ticket, err := g.ledger.FindTicket(code, eventDate)
	if errors.Is(err, ledger.ErrTicketNotFound) {
		return Invalid, nil
	}
	if err != nil {
		return "", err
	}

	// Repeat scans of a spent ticket take this path without touching the
	// row. Correctness does not depend on it: a stale read falls through to
	// the conditional update below and loses there.
	if ticket.Redeemed {
		return AlreadyUsed, nil
	}

	won, err := g.ledger.MarkRedeemed(ticket.ID)
	if err != nil {
		return "", err
	}
	if !won {
		return AlreadyUsed, nil
	}
	return Valid, nil
}

// Verify is the QR-scan entry point: same state machine, event date
// defaulted to the current event instance.
func (g *Gate) Verify(code string) (Result, error) {
	return g.CheckIn(code, g.currentDate())
}
