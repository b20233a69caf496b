package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is the durable record of one successful payment. Orders are never
// updated or deleted; the unique payment reference doubles as the
// idempotency key for webhook redelivery.
type Order struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Email      string    `gorm:"not null"`
	PaymentRef string    `gorm:"uniqueIndex;not null"`
	Amount     int       `gorm:"not null"`
	Tickets    []Ticket  `gorm:"foreignKey:OrderID"`
	CreatedAt  time.Time
}

func (order *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return
}
