package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mclasstourism/travelbill-sub003/internal/middleware"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
	"github.com/mclasstourism/travelbill-sub003/internal/service"
	"github.com/mclasstourism/travelbill-sub003/pkg/response"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/api/admin", middleware.RequireRole(model.RoleAdmin))
	{
		admin.POST("/reset-finance", h.ResetFinanceData)
		admin.POST("/reset-invoices", h.ResetInvoices)
		admin.POST("/reset-tickets", h.ResetTickets)
		admin.POST("/cleanup-all", h.CleanupAllData)
		admin.POST("/logout-all-users", h.LogoutAllUsers)
		admin.POST("/send-report", h.SendReport)
	}
}

// ResetFinanceData wipes all ledgers and zeroes every balance
// @Summary      Reset finance data
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/admin/reset-finance [post]
func (h *AdminHandler) ResetFinanceData(c *gin.Context) {
	if err := h.adminService.ResetFinanceData(c.Request.Context(), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"reset": "finance"}))
}

// ResetInvoices deletes all invoices and resets the number sequence
// @Summary      Reset invoices
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/admin/reset-invoices [post]
func (h *AdminHandler) ResetInvoices(c *gin.Context) {
	if err := h.adminService.ResetInvoices(c.Request.Context(), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"reset": "invoices"}))
}

// ResetTickets deletes all tickets and resets the number sequence
// @Summary      Reset tickets
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/admin/reset-tickets [post]
func (h *AdminHandler) ResetTickets(c *gin.Context) {
	if err := h.adminService.ResetTickets(c.Request.Context(), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"reset": "tickets"}))
}

// CleanupAllData performs the full data wipe
// @Summary      Cleanup all data
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/admin/cleanup-all [post]
func (h *AdminHandler) CleanupAllData(c *gin.Context) {
	if err := h.adminService.CleanupAllData(c.Request.Context(), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"reset": "all"}))
}

// LogoutAllUsers invalidates every refresh token
// @Summary      Logout all users
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/admin/logout-all-users [post]
func (h *AdminHandler) LogoutAllUsers(c *gin.Context) {
	if err := h.adminService.LogoutAllUsers(c.Request.Context(), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"logged_out": "all"}))
}

// SendReport snapshots dashboard metrics and logs the report
// @Summary      Send report
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.DashboardMetrics}
// @Failure      500  {object}  response.Response
// @Router       /api/admin/send-report [post]
func (h *AdminHandler) SendReport(c *gin.Context) {
	metrics, err := h.adminService.SendReport(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, metrics))
}
