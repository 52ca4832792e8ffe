package database

import (
	"github.com/mclasstourism/travelbill-sub003/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate auto-migrates every persisted model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Customer{},
		&model.Agent{},
		&model.Vendor{},
		&model.VendorAirline{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.Ticket{},
		&model.DepositTransaction{},
		&model.AgentTransaction{},
		&model.VendorTransaction{},
		&model.NumberSequence{},
		&model.AuditLog{},
	)
}
