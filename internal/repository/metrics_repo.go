package repository

import (
	"context"

	"github.com/mclasstourism/travelbill-sub003/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MetricsRepository interface {
	GetDashboardMetrics(ctx context.Context) (model.DashboardMetrics, error)
}

type metricsRepository struct {
	db *gorm.DB
}

func NewMetricsRepository(db *gorm.DB) MetricsRepository {
	return &metricsRepository{db: db}
}

func (r *metricsRepository) GetDashboardMetrics(ctx context.Context) (model.DashboardMetrics, error) {
	var m model.DashboardMetrics
	db := GetDB(ctx, r.db)

	if err := r.sum(db.Model(&model.Invoice{}).Where("status <> ?", model.InvoiceStatusCancelled),
		"COALESCE(SUM(total), 0)", &m.TotalRevenue); err != nil {
		return m, err
	}
	if err := r.sum(db.Model(&model.Invoice{}).
		Where("status IN ?", []string{model.InvoiceStatusIssued, model.InvoiceStatusPartial}),
		"COALESCE(SUM(total - paid_amount), 0)", &m.PendingReceivables); err != nil {
		return m, err
	}
	if err := r.sum(db.Model(&model.Invoice{}).Where("status <> ?", model.InvoiceStatusCancelled),
		"COALESCE(SUM(vendor_cost), 0)", &m.TotalVendorCost); err != nil {
		return m, err
	}

	if err := r.sum(db.Model(&model.Customer{}), "COALESCE(SUM(deposit_balance), 0)", &m.CustomerDepositTotal); err != nil {
		return m, err
	}
	if err := r.sum(db.Model(&model.Agent{}), "COALESCE(SUM(credit_balance), 0)", &m.AgentCreditTotal); err != nil {
		return m, err
	}
	if err := r.sum(db.Model(&model.Agent{}), "COALESCE(SUM(deposit_balance), 0)", &m.AgentDepositTotal); err != nil {
		return m, err
	}
	if err := r.sum(db.Model(&model.Vendor{}), "COALESCE(SUM(credit_balance), 0)", &m.VendorCreditTotal); err != nil {
		return m, err
	}
	if err := r.sum(db.Model(&model.Vendor{}), "COALESCE(SUM(deposit_balance), 0)", &m.VendorDepositTotal); err != nil {
		return m, err
	}

	counts := []struct {
		mdl  interface{}
		dest *int64
	}{
		{&model.Customer{}, &m.CustomerCount},
		{&model.Agent{}, &m.AgentCount},
		{&model.Vendor{}, &m.VendorCount},
		{&model.Invoice{}, &m.InvoiceCount},
		{&model.Ticket{}, &m.TicketCount},
	}
	for _, c := range counts {
		if err := db.Model(c.mdl).Count(c.dest).Error; err != nil {
			return m, err
		}
	}

	return m, nil
}

func (r *metricsRepository) sum(query *gorm.DB, expr string, dest *decimal.Decimal) error {
	var result struct {
		Value decimal.Decimal
	}
	if err := query.Select(expr + " as value").Scan(&result).Error; err != nil {
		return err
	}
	*dest = result.Value
	return nil
}
