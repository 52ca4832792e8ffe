package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Vendor is an airline consolidator or supplier we buy tickets from.
// CreditBalance is what we currently owe the vendor; DepositBalance is
// money we prepaid the vendor.
type Vendor struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Phone          string          `gorm:"type:varchar(50)" json:"phone"`
	Email          string          `gorm:"type:varchar(255)" json:"email"`
	CreditBalance  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"credit_balance"`
	DepositBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"deposit_balance"`
	Airlines       []VendorAirline `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE" json:"airlines"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// VendorAirline is an airline the vendor can issue for
type VendorAirline struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VendorID uuid.UUID `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Code     string    `gorm:"type:varchar(10)" json:"code"`
}

func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (a *VendorAirline) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
