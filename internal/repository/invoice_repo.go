package repository

import (
	"context"

	"github.com/mclasstourism/travelbill-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceListFilter narrows List results
type InvoiceListFilter struct {
	Status       string
	CustomerType string
	CustomerID   *uuid.UUID
	Page         int
	Limit        int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	Update(ctx context.Context, invoice *model.Invoice) error
	// MaxAssignedNumber parses the numeric part out of every stored
	// invoice number and returns the largest, for seeding the counter.
	MaxAssignedNumber(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).Preload("Items").First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Invoice{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerType != "" {
		query = query.Where("customer_type = ?", filter.CustomerType)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Items").Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Omit("Items").Save(invoice).Error
}

func (r *invoiceRepository) MaxAssignedNumber(ctx context.Context) (int64, error) {
	var max int64
	// invoice_number is "INV-<n>"; SUBSTR works on both postgres and sqlite
	err := GetDB(ctx, r.db).Model(&model.Invoice{}).
		Select("COALESCE(MAX(CAST(SUBSTR(invoice_number, 5) AS INTEGER)), 0)").
		Scan(&max).Error
	return max, err
}

func (r *invoiceRepository) DeleteAll(ctx context.Context) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("1 = 1").Delete(&model.InvoiceItem{}).Error; err != nil {
		return err
	}
	return db.Where("1 = 1").Delete(&model.Invoice{}).Error
}
