package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PartyType enum constants name which account table a ledger row belongs to
const (
	PartyTypeCustomer = "customer"
	PartyTypeAgent    = "agent"
	PartyTypeVendor   = "vendor"
)

// Ledger direction (`type` column): credit increases a pool, debit
// decreases it. deposit_debit marks a decrease of an agent/vendor
// deposit pool so statements can separate the two debit kinds.
const (
	TxTypeCredit       = "credit"
	TxTypeDebit        = "debit"
	TxTypeDepositDebit = "deposit_debit"
)

// Ledger pool (`transaction_type` column), orthogonal to direction
const (
	TxPoolCredit  = "credit"
	TxPoolDeposit = "deposit"
)

// ReferenceType enum constants for ledger rows
const (
	RefTypeInvoice = "invoice"
	RefTypeTicket  = "ticket"
	RefTypeManual  = "manual"
	RefTypeOpening = "opening"
)

// DepositTransaction is one immutable change to a customer's deposit
// pool. BalanceAfter snapshots the customer balance the row produced;
// the two are always written in the same database transaction.
type DepositTransaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Type          string          `gorm:"type:varchar(20);not null" json:"type"` // credit, debit
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Description   string          `gorm:"type:varchar(255)" json:"description"`
	PaymentMethod string          `gorm:"type:varchar(20)" json:"payment_method"`
	ReferenceID   *uuid.UUID      `gorm:"type:uuid;index" json:"reference_id"`
	ReferenceType string          `gorm:"type:varchar(20)" json:"reference_type"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_after"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

// AgentTransaction is one immutable change to an agent pool.
// TransactionType records which pool was touched; Type records the
// direction. BalanceAfter snapshots that pool's balance.
type AgentTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AgentID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"agent_id"`
	Type            string          `gorm:"type:varchar(20);not null" json:"type"`             // credit, debit, deposit_debit
	TransactionType string          `gorm:"type:varchar(20);not null" json:"transaction_type"` // credit, deposit
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Description     string          `gorm:"type:varchar(255)" json:"description"`
	PaymentMethod   string          `gorm:"type:varchar(20)" json:"payment_method"`
	ReferenceID     *uuid.UUID      `gorm:"type:uuid;index" json:"reference_id"`
	ReferenceType   string          `gorm:"type:varchar(20)" json:"reference_type"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_after"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
}

// VendorTransaction is one immutable change to a vendor pool, same
// shape as AgentTransaction.
type VendorTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	VendorID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Type            string          `gorm:"type:varchar(20);not null" json:"type"`
	TransactionType string          `gorm:"type:varchar(20);not null" json:"transaction_type"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Description     string          `gorm:"type:varchar(255)" json:"description"`
	PaymentMethod   string          `gorm:"type:varchar(20)" json:"payment_method"`
	ReferenceID     *uuid.UUID      `gorm:"type:uuid;index" json:"reference_id"`
	ReferenceType   string          `gorm:"type:varchar(20)" json:"reference_type"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_after"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
}

func (t *DepositTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *AgentTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *VendorTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
