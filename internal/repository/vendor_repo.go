package repository

import (
	"context"

	"github.com/mclasstourism/travelbill-sub003/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VendorRepository interface {
	Create(ctx context.Context, vendor *model.Vendor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Vendor, int64, error)
	Update(ctx context.Context, vendor *model.Vendor) error
	UpdateBalance(ctx context.Context, id uuid.UUID, pool string, balance decimal.Decimal) error
	ReplaceAirlines(ctx context.Context, vendorID uuid.UUID, airlines []model.VendorAirline) error
	ZeroBalances(ctx context.Context) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type vendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) Create(ctx context.Context, vendor *model.Vendor) error {
	return GetDB(ctx, r.db).Create(vendor).Error
}

func (r *vendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := GetDB(ctx, r.db).Preload("Airlines").First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := forUpdate(GetDB(ctx, r.db)).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) List(ctx context.Context, search string, page, limit int) ([]model.Vendor, int64, error) {
	var vendors []model.Vendor
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Vendor{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Airlines").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&vendors).Error; err != nil {
		return nil, 0, err
	}

	return vendors, total, nil
}

func (r *vendorRepository) Update(ctx context.Context, vendor *model.Vendor) error {
	return GetDB(ctx, r.db).Omit("Airlines").Save(vendor).Error
}

func (r *vendorRepository) UpdateBalance(ctx context.Context, id uuid.UUID, pool string, balance decimal.Decimal) error {
	column, err := poolColumn(pool)
	if err != nil {
		return err
	}
	return GetDB(ctx, r.db).Model(&model.Vendor{}).Where("id = ?", id).
		Update(column, balance).Error
}

func (r *vendorRepository) ReplaceAirlines(ctx context.Context, vendorID uuid.UUID, airlines []model.VendorAirline) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("vendor_id = ?", vendorID).Delete(&model.VendorAirline{}).Error; err != nil {
		return err
	}
	if len(airlines) == 0 {
		return nil
	}
	for i := range airlines {
		airlines[i].VendorID = vendorID
	}
	return db.Create(&airlines).Error
}

func (r *vendorRepository) ZeroBalances(ctx context.Context) error {
	return GetDB(ctx, r.db).Model(&model.Vendor{}).Where("1 = 1").
		Updates(map[string]interface{}{
			"credit_balance":  decimal.Zero,
			"deposit_balance": decimal.Zero,
		}).Error
}

func (r *vendorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("vendor_id = ?", id).Delete(&model.VendorAirline{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.Vendor{}, "id = ?", id).Error
}

func (r *vendorRepository) DeleteAll(ctx context.Context) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("1 = 1").Delete(&model.VendorAirline{}).Error; err != nil {
		return err
	}
	return db.Unscoped().Where("1 = 1").Delete(&model.Vendor{}).Error
}
