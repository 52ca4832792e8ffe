package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mclasstourism/travelbill-sub003/internal/middleware"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
	"github.com/mclasstourism/travelbill-sub003/internal/service"
	"github.com/mclasstourism/travelbill-sub003/pkg/response"
)

type MetricsHandler struct {
	metricsService service.MetricsService
}

func NewMetricsHandler(metricsService service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metricsService: metricsService}
}

func (h *MetricsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/metrics",
		middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff),
		h.GetDashboardMetrics)
}

// GetDashboardMetrics returns the dashboard rollup
// @Summary      Dashboard metrics
// @Description  Returns revenue, receivables, balance totals and entity counts
// @Tags         metrics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.DashboardMetrics}
// @Failure      500  {object}  response.Response
// @Router       /api/metrics [get]
func (h *MetricsHandler) GetDashboardMetrics(c *gin.Context) {
	metrics, err := h.metricsService.GetDashboardMetrics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, metrics))
}
