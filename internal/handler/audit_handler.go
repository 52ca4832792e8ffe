package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mclasstourism/travelbill-sub003/internal/middleware"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
	"github.com/mclasstourism/travelbill-sub003/internal/service"
	"github.com/mclasstourism/travelbill-sub003/pkg/pagination"
	"github.com/mclasstourism/travelbill-sub003/pkg/response"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/audit-logs",
		middleware.RequireRole(model.RoleAdmin, model.RoleManager),
		h.ListAuditLogs)
}

// ListAuditLogs returns the audit trail, newest first
// @Summary      List audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action  query     string  false  "Filter by action"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)
	logs, total, err := h.auditService.ListAuditLogs(c.Request.Context(), c.Query("action"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
