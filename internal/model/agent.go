package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Agent is a sub-agency that resells on our behalf. Agents carry two
// pools: CreditBalance (credit we extend to them) and DepositBalance
// (money they prepaid us).
type Agent struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Phone          string          `gorm:"type:varchar(50)" json:"phone"`
	Email          string          `gorm:"type:varchar(255)" json:"email"`
	CreditBalance  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"credit_balance"`
	DepositBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"deposit_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
