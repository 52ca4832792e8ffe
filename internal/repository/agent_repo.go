package repository

import (
	"context"

	"github.com/mclasstourism/travelbill-sub003/internal/apperr"
	"github.com/mclasstourism/travelbill-sub003/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AgentRepository interface {
	Create(ctx context.Context, agent *model.Agent) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Agent, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Agent, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Agent, int64, error)
	Update(ctx context.Context, agent *model.Agent) error
	// UpdateBalance writes one pool's balance; pool is model.TxPoolCredit
	// or model.TxPoolDeposit.
	UpdateBalance(ctx context.Context, id uuid.UUID, pool string, balance decimal.Decimal) error
	ZeroBalances(ctx context.Context) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type agentRepository struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) Create(ctx context.Context, agent *model.Agent) error {
	return GetDB(ctx, r.db).Create(agent).Error
}

func (r *agentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Agent, error) {
	var agent model.Agent
	if err := GetDB(ctx, r.db).First(&agent, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Agent, error) {
	var agent model.Agent
	if err := forUpdate(GetDB(ctx, r.db)).First(&agent, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) List(ctx context.Context, search string, page, limit int) ([]model.Agent, int64, error) {
	var agents []model.Agent
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Agent{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&agents).Error; err != nil {
		return nil, 0, err
	}

	return agents, total, nil
}

func (r *agentRepository) Update(ctx context.Context, agent *model.Agent) error {
	return GetDB(ctx, r.db).Save(agent).Error
}

func (r *agentRepository) UpdateBalance(ctx context.Context, id uuid.UUID, pool string, balance decimal.Decimal) error {
	column, err := poolColumn(pool)
	if err != nil {
		return err
	}
	return GetDB(ctx, r.db).Model(&model.Agent{}).Where("id = ?", id).
		Update(column, balance).Error
}

func (r *agentRepository) ZeroBalances(ctx context.Context) error {
	return GetDB(ctx, r.db).Model(&model.Agent{}).Where("1 = 1").
		Updates(map[string]interface{}{
			"credit_balance":  decimal.Zero,
			"deposit_balance": decimal.Zero,
		}).Error
}

func (r *agentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Agent{}, "id = ?", id).Error
}

func (r *agentRepository) DeleteAll(ctx context.Context) error {
	return GetDB(ctx, r.db).Unscoped().Where("1 = 1").Delete(&model.Agent{}).Error
}

func poolColumn(pool string) (string, error) {
	switch pool {
	case model.TxPoolCredit:
		return "credit_balance", nil
	case model.TxPoolDeposit:
		return "deposit_balance", nil
	default:
		return "", apperr.Validation("unknown balance pool %q", pool)
	}
}
