package repository

import (
	"context"

	"github.com/mclasstourism/travelbill-sub003/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	// FindByIDForUpdate locks the customer row for the remainder of the
	// ambient transaction so a balance read-modify-write cannot race.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error)
	Update(ctx context.Context, customer *model.Customer) error
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	ZeroBalances(ctx context.Context) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := forUpdate(GetDB(ctx, r.db)).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Customer{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Save(customer).Error
}

func (r *customerRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.Customer{}).Where("id = ?", id).
		Update("deposit_balance", balance).Error
}

func (r *customerRepository) ZeroBalances(ctx context.Context) error {
	return GetDB(ctx, r.db).Model(&model.Customer{}).Where("1 = 1").
		Update("deposit_balance", decimal.Zero).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Customer{}, "id = ?", id).Error
}

func (r *customerRepository) DeleteAll(ctx context.Context) error {
	return GetDB(ctx, r.db).Unscoped().Where("1 = 1").Delete(&model.Customer{}).Error
}
