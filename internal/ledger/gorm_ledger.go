package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kalilynx/embededticketautomation/internal/models"
)

// GormLedger implements Ledger on a gorm database. The database must be
// opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) WithTx(fn func(tx Ledger) error) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewGormLedger(tx))
	})
}

func (l *GormLedger) RecordOrder(buyerEmail, paymentRef string, amount int) (uuid.UUID, error) {
	order := models.Order{
		Email:      buyerEmail,
		PaymentRef: paymentRef,
		Amount:     amount,
	}

	if err := l.db.Create(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return uuid.Nil, ErrDuplicatePayment
		}
		return uuid.Nil, fmt.Errorf("record order: %w", err)
	}
	return order.ID, nil
}

func (l *GormLedger) AddTickets(orderID uuid.UUID, tickets []TicketSpec) error {
	var collided []string

	for _, spec := range tickets {
		ticket := models.Ticket{
			OrderID:   orderID,
			Code:      spec.Code,
			EventDate: spec.EventDate,
		}
		// Each insert gets its own scope (a savepoint when the ledger is
		// already inside WithTx), so one duplicate code cannot poison the
		// surrounding transaction or the remaining entries.
		err := l.db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&ticket).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				collided = append(collided, spec.Code)
				continue
			}
			return fmt.Errorf("add ticket: %w", err)
		}
	}

	if len(collided) > 0 {
		return &CodeCollisionError{Codes: collided}
	}
	return nil
}

func (l *GormLedger) FindTicket(code, eventDate string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := l.db.Where("ticket_code = ? AND event_date = ?", code, eventDate).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	return &ticket, nil
}

// MarkRedeemed is the only mutation tickets ever see. The redeemed guard in
// the WHERE clause makes the check and the transition one atomic statement,
// so two racing redemptions can never both win.
func (l *GormLedger) MarkRedeemed(ticketID uuid.UUID) (bool, error) {
	res := l.db.Model(&models.Ticket{}).
		Where("id = ? AND redeemed = ?", ticketID, false).
		Update("redeemed", true)
	if res.Error != nil {
		return false, fmt.Errorf("mark redeemed: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (l *GormLedger) Aggregate(eventDate string) (Stats, error) {
	var stats Stats

	err := l.db.Model(&models.Ticket{}).
		Where("event_date = ?", eventDate).
		Count(&stats.Sold).Error
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate sold: %w", err)
	}

	err = l.db.Model(&models.Ticket{}).
		Where("event_date = ? AND redeemed = ?", eventDate, true).
		Count(&stats.Scanned).Error
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate scanned: %w", err)
	}

	stats.Remaining = stats.Sold - stats.Scanned
	return stats, nil
}

func (l *GormLedger) CodesByDate(eventDate string) ([]string, error) {
	var codes []string
	err := l.db.Model(&models.Ticket{}).
		Where("event_date = ?", eventDate).
		Order("ticket_code").
		Pluck("ticket_code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("codes by date: %w", err)
	}
	return codes, nil
}
