package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateInvoice   = "CREATE_INVOICE"
	ActionUpdateInvoice   = "UPDATE_INVOICE_PAYMENT"
	ActionCreateTicket    = "CREATE_TICKET"
	ActionUpdateTicket    = "UPDATE_TICKET_STATUS"
	ActionPostTransaction = "POST_TRANSACTION"
	ActionCreateParty     = "CREATE_PARTY"
	ActionUpdateParty     = "UPDATE_PARTY"
	ActionDeleteParty     = "DELETE_PARTY"
	ActionResetFinance    = "RESET_FINANCE_DATA"
	ActionResetInvoices   = "RESET_INVOICES"
	ActionResetTickets    = "RESET_TICKETS"
	ActionCleanupAll      = "CLEANUP_ALL_DATA"
	ActionLogoutAllUsers  = "LOGOUT_ALL_USERS"
	ActionSendReport      = "SEND_REPORT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
