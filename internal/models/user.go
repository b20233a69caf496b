package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a door-staff or admin account. Ticket buyers have no account;
// they are identified only by the email on their order.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Email     string    `gorm:"unique;not null"`
	Password  string    `gorm:"not null"`
	RoleID    uuid.UUID `gorm:"type:uuid;not null"`
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return
}
