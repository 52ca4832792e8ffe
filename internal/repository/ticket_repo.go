package repository

import (
	"context"

	"github.com/mclasstourism/travelbill-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketListFilter narrows List results
type TicketListFilter struct {
	Status       string
	CustomerType string
	CustomerID   *uuid.UUID
	VendorID     *uuid.UUID
	Page         int
	Limit        int
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *model.Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
	List(ctx context.Context, filter TicketListFilter) ([]model.Ticket, int64, error)
	Update(ctx context.Context, ticket *model.Ticket) error
	MaxAssignedNumber(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket) error {
	return GetDB(ctx, r.db).Create(ticket).Error
}

func (r *ticketRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := GetDB(ctx, r.db).First(&ticket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketListFilter) ([]model.Ticket, int64, error) {
	var tickets []model.Ticket
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Ticket{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerType != "" {
		query = query.Where("customer_type = ?", filter.CustomerType)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).Find(&tickets).Error; err != nil {
		return nil, 0, err
	}

	return tickets, total, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *model.Ticket) error {
	return GetDB(ctx, r.db).Save(ticket).Error
}

func (r *ticketRepository) MaxAssignedNumber(ctx context.Context) (int64, error) {
	var max int64
	err := GetDB(ctx, r.db).Model(&model.Ticket{}).
		Select("COALESCE(MAX(CAST(SUBSTR(ticket_number, 5) AS INTEGER)), 0)").
		Scan(&max).Error
	return max, err
}

func (r *ticketRepository) DeleteAll(ctx context.Context) error {
	return GetDB(ctx, r.db).Where("1 = 1").Delete(&model.Ticket{}).Error
}
