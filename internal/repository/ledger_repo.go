package repository

import (
	"context"

	"github.com/mclasstourism/travelbill-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerRepository persists the three append-only transaction
// histories. Rows are only ever created or bulk-deleted (party cascade
// and admin resets); there is no update path.
type LedgerRepository interface {
	CreateDeposit(ctx context.Context, txn *model.DepositTransaction) error
	CreateAgent(ctx context.Context, txn *model.AgentTransaction) error
	CreateVendor(ctx context.Context, txn *model.VendorTransaction) error

	ListByCustomer(ctx context.Context, customerID uuid.UUID, page, limit int) ([]model.DepositTransaction, int64, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, page, limit int) ([]model.AgentTransaction, int64, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, page, limit int) ([]model.VendorTransaction, int64, error)

	ListAllDeposit(ctx context.Context, page, limit int) ([]model.DepositTransaction, int64, error)
	ListAllAgent(ctx context.Context, page, limit int) ([]model.AgentTransaction, int64, error)
	ListAllVendor(ctx context.Context, page, limit int) ([]model.VendorTransaction, int64, error)

	DeleteByCustomer(ctx context.Context, customerID uuid.UUID) error
	DeleteByAgent(ctx context.Context, agentID uuid.UUID) error
	DeleteByVendor(ctx context.Context, vendorID uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateDeposit(ctx context.Context, txn *model.DepositTransaction) error {
	return GetDB(ctx, r.db).Create(txn).Error
}

func (r *ledgerRepository) CreateAgent(ctx context.Context, txn *model.AgentTransaction) error {
	return GetDB(ctx, r.db).Create(txn).Error
}

func (r *ledgerRepository) CreateVendor(ctx context.Context, txn *model.VendorTransaction) error {
	return GetDB(ctx, r.db).Create(txn).Error
}

func (r *ledgerRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, limit int) ([]model.DepositTransaction, int64, error) {
	var rows []model.DepositTransaction
	total, err := r.list(ctx, &rows, "customer_id = ?", []interface{}{customerID}, page, limit, &model.DepositTransaction{})
	return rows, total, err
}

func (r *ledgerRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, page, limit int) ([]model.AgentTransaction, int64, error) {
	var rows []model.AgentTransaction
	total, err := r.list(ctx, &rows, "agent_id = ?", []interface{}{agentID}, page, limit, &model.AgentTransaction{})
	return rows, total, err
}

func (r *ledgerRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, page, limit int) ([]model.VendorTransaction, int64, error) {
	var rows []model.VendorTransaction
	total, err := r.list(ctx, &rows, "vendor_id = ?", []interface{}{vendorID}, page, limit, &model.VendorTransaction{})
	return rows, total, err
}

func (r *ledgerRepository) ListAllDeposit(ctx context.Context, page, limit int) ([]model.DepositTransaction, int64, error) {
	var rows []model.DepositTransaction
	total, err := r.list(ctx, &rows, "", nil, page, limit, &model.DepositTransaction{})
	return rows, total, err
}

func (r *ledgerRepository) ListAllAgent(ctx context.Context, page, limit int) ([]model.AgentTransaction, int64, error) {
	var rows []model.AgentTransaction
	total, err := r.list(ctx, &rows, "", nil, page, limit, &model.AgentTransaction{})
	return rows, total, err
}

func (r *ledgerRepository) ListAllVendor(ctx context.Context, page, limit int) ([]model.VendorTransaction, int64, error) {
	var rows []model.VendorTransaction
	total, err := r.list(ctx, &rows, "", nil, page, limit, &model.VendorTransaction{})
	return rows, total, err
}

// list fetches one ledger table newest-first with a total count.
// Ties on created_at are broken by id so pagination stays stable.
func (r *ledgerRepository) list(ctx context.Context, dest interface{}, cond string, args []interface{}, page, limit int, mdl interface{}) (int64, error) {
	db := GetDB(ctx, r.db)
	query := db.Model(mdl)
	if cond != "" {
		query = query.Where(cond, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ledgerRepository) DeleteByCustomer(ctx context.Context, customerID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("customer_id = ?", customerID).Delete(&model.DepositTransaction{}).Error
}

func (r *ledgerRepository) DeleteByAgent(ctx context.Context, agentID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("agent_id = ?", agentID).Delete(&model.AgentTransaction{}).Error
}

func (r *ledgerRepository) DeleteByVendor(ctx context.Context, vendorID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("vendor_id = ?", vendorID).Delete(&model.VendorTransaction{}).Error
}

func (r *ledgerRepository) DeleteAll(ctx context.Context) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("1 = 1").Delete(&model.DepositTransaction{}).Error; err != nil {
		return err
	}
	if err := db.Where("1 = 1").Delete(&model.AgentTransaction{}).Error; err != nil {
		return err
	}
	return db.Where("1 = 1").Delete(&model.VendorTransaction{}).Error
}
