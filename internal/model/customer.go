package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is a retail client billed directly. Customers hold a single
// deposit pool; every change to DepositBalance has a matching
// DepositTransaction row.
type Customer struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Phone          string          `gorm:"type:varchar(50)" json:"phone"`
	Email          string          `gorm:"type:varchar(255)" json:"email"`
	DepositBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"deposit_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
