package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ticket is one unit of admission. The code is immutable once assigned and
// the redeemed flag only ever transitions false to true.
type Ticket struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Order     *Order    `gorm:"foreignKey:OrderID"`
	Code      string    `gorm:"column:ticket_code;uniqueIndex;not null"`
	EventDate string    `gorm:"not null;index"`
	Redeemed  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}
