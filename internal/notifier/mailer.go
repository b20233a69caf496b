package notifier

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/kalilynx/embededticketautomation/internal/ledger"
	"github.com/kalilynx/embededticketautomation/internal/qr"
)

const sendTimeout = 10 * time.Second

type Options struct {
	APIKey    string
	FromName  string
	FromEmail string
	EventName string
	VenueName string
}

// Mailer delivers ticket emails through MailerSend, one block per ticket
// with the code, the event date and an embedded QR image.
type Mailer struct {
	client   *mailersend.Mailersend
	renderer *qr.Renderer
	opts     Options
}

func NewMailer(opts Options, renderer *qr.Renderer) *Mailer {
	return &Mailer{
		client:   mailersend.NewMailersend(opts.APIKey),
		renderer: renderer,
		opts:     opts,
	}
}

func (m *Mailer) SendTickets(buyerEmail string, tickets []ledger.TicketSpec) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	html, err := m.buildTicketEmail(tickets)
	if err != nil {
		return err
	}

	message := m.client.Email.NewMessage()
	message.SetFrom(mailersend.From{Name: m.opts.FromName, Email: m.opts.FromEmail})
	message.SetRecipients([]mailersend.Recipient{{Email: buyerEmail}})
	message.SetSubject(fmt.Sprintf("Your %s Tickets 🎶", m.opts.EventName))
	message.SetHTML(html)

	res, err := m.client.Email.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send ticket email: %w", err)
	}

	log.Printf("tickets sent to %s (message id %s)", buyerEmail, res.Header.Get("X-Message-Id"))
	return nil
}

func (m *Mailer) buildTicketEmail(tickets []ledger.TicketSpec) (string, error) {
	var blocks strings.Builder
	for _, t := range tickets {
		image, err := m.renderer.DataURL(t.Code)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&blocks, `
      <div style="margin-bottom:30px; padding: 20px; border: 2px solid #0A1A33; border-radius: 10px;">
        <h3 style="color: #0A1A33;">🎟️ Ticket Code: %s</h3>
        <p style="color: #666;">Event Date: %s</p>
        <img src="%s" width="200" height="200" alt="QR Code" style="margin: 10px 0;"/>
        <p style="font-size: 12px; color: #999;">Present this QR code at the door for entry</p>
      </div>`, t.Code, t.EventDate, image)
	}

	html := fmt.Sprintf(`
    <div style="font-family: system-ui, -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #0A1A33;">🎶 %s</h2>
      <p style="font-size: 16px;">Thank you for your purchase!</p>
      <p style="font-size: 14px; color: #666;">Doors open at 7:00 PM at %s</p>
      <hr style="border: 1px solid #eee; margin: 20px 0;">
      %s
      <hr style="border: 1px solid #eee; margin: 20px 0;">
      <p style="font-size: 12px; color: #999;">
        Save this email or take a screenshot. You'll need to show the QR code at the door.
      </p>
    </div>`, m.opts.EventName, m.opts.VenueName, blocks.String())

	return html, nil
}
