package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerType enum constants name who the document is billed to
const (
	CustomerTypeCustomer = "customer"
	CustomerTypeAgent    = "agent"
)

// VendorBalanceUse enum constants name which vendor pool an issuance draws from
const (
	VendorBalanceNone    = "none"
	VendorBalanceCredit  = "credit"
	VendorBalanceDeposit = "deposit"
)

// InvoiceStatus enum constants
const (
	InvoiceStatusIssued    = "issued"
	InvoiceStatusPartial   = "partial"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// PaymentMethod enum constants
const (
	PaymentMethodCash     = "cash"
	PaymentMethodBank     = "bank"
	PaymentMethodCard     = "card"
	PaymentMethodBalance  = "balance"
	PaymentMethodDeferred = "deferred"
)

// Invoice is an issued billing document. The balance-use flags record
// which pools were drawn at issuance time; the matching ledger rows
// reference the invoice id. PaidAmount moves only through explicit
// payment-status updates, never through balance mutations.
type Invoice struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber         string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_number"`
	CustomerType          string          `gorm:"type:varchar(20);not null;index" json:"customer_type"` // customer, agent
	CustomerID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	VendorID              uuid.UUID       `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Items                 []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal              decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	DiscountPercent       decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0" json:"discount_percent"`
	DiscountAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount_amount"`
	Total                 decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	VendorCost            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"vendor_cost"`
	PaymentMethod         string          `gorm:"type:varchar(20)" json:"payment_method"`
	UseCustomerDeposit    bool            `gorm:"not null;default:false" json:"use_customer_deposit"`
	DepositUsed           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"deposit_used"`
	UseAgentCredit        bool            `gorm:"not null;default:false" json:"use_agent_credit"`
	AgentCreditUsed       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"agent_credit_used"`
	UseVendorBalance      string          `gorm:"type:varchar(10);not null;default:'none'" json:"use_vendor_balance"` // none, credit, deposit
	VendorBalanceDeducted decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"vendor_balance_deducted"`
	Status                string          `gorm:"type:varchar(20);not null;default:'issued';index" json:"status"`
	PaidAmount            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"paid_amount"`
	CreatedAt             time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// InvoiceItem is a line item within an Invoice
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity    int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
