package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AgentBalanceUse enum constants name which agent pool a ticket draws from
const (
	AgentBalanceNone    = "none"
	AgentBalanceCredit  = "credit"
	AgentBalanceDeposit = "deposit"
)

// TicketStatus enum constants
const (
	TicketStatusIssued    = "issued"
	TicketStatusConfirmed = "confirmed"
	TicketStatusRefunded  = "refunded"
	TicketStatusVoided    = "voided"
)

// Ticket is an issued flight ticket. A ticket may stand alone or hang
// off an invoice; its balance-use flags mirror the invoice ones, with
// the extra vendor-cost accrual case (a ticket bought on account grows
// what we owe the vendor).
type Ticket struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TicketNumber          string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"ticket_number"`
	CustomerType          string          `gorm:"type:varchar(20);not null;index" json:"customer_type"` // customer, agent
	CustomerID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	VendorID              uuid.UUID       `gorm:"type:uuid;not null;index" json:"vendor_id"`
	InvoiceID             *uuid.UUID      `gorm:"type:uuid;index" json:"invoice_id"`
	PassengerName         string          `gorm:"type:varchar(255);not null" json:"passenger_name"`
	PNR                   string          `gorm:"type:varchar(20)" json:"pnr"`
	Airline               string          `gorm:"type:varchar(100)" json:"airline"`
	FlightNumber          string          `gorm:"type:varchar(20)" json:"flight_number"`
	DepartureAirport      string          `gorm:"type:varchar(10)" json:"departure_airport"`
	ArrivalAirport        string          `gorm:"type:varchar(10)" json:"arrival_airport"`
	TravelDate            *time.Time      `json:"travel_date"`
	FaceValue             decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"face_value"`
	VendorCost            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"vendor_cost"`
	AdditionalCost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"additional_cost"`
	DeductFromDeposit     bool            `gorm:"not null;default:false" json:"deduct_from_deposit"`
	DepositDeducted       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"deposit_deducted"`
	UseAgentBalance       string          `gorm:"type:varchar(10);not null;default:'none'" json:"use_agent_balance"` // none, credit, deposit
	AgentBalanceDeducted  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"agent_balance_deducted"`
	UseVendorBalance      string          `gorm:"type:varchar(10);not null;default:'none'" json:"use_vendor_balance"` // none, credit, deposit
	VendorBalanceDeducted decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"vendor_balance_deducted"`
	Status                string          `gorm:"type:varchar(20);not null;default:'issued';index" json:"status"`
	CreatedAt             time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
