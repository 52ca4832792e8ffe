package service

import (
	"context"
	"fmt"

	"github.com/mclasstourism/travelbill-sub003/internal/model"
	"github.com/mclasstourism/travelbill-sub003/internal/repository"
)

type MetricsService interface {
	GetDashboardMetrics(ctx context.Context) (model.DashboardMetrics, error)
}

type metricsService struct {
	metricsRepo repository.MetricsRepository
}

func NewMetricsService(metricsRepo repository.MetricsRepository) MetricsService {
	return &metricsService{metricsRepo: metricsRepo}
}

func (s *metricsService) GetDashboardMetrics(ctx context.Context) (model.DashboardMetrics, error) {
	metrics, err := s.metricsRepo.GetDashboardMetrics(ctx)
	if err != nil {
		return model.DashboardMetrics{}, fmt.Errorf("failed to compute dashboard metrics: %w", err)
	}
	return metrics, nil
}
