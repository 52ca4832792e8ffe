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

type TicketHandler struct {
	ticketService service.TicketService
}

func NewTicketHandler(ticketService service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

func (h *TicketHandler) RegisterRoutes(router *gin.RouterGroup) {
	tickets := router.Group("/api/tickets")
	{
		tickets.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.CreateTicket)
		tickets.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.ListTickets)
		tickets.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.GetTicket)
		tickets.PUT("/:id/status", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.UpdateStatus)
	}
}

// CreateTicket issues a new ticket with its balance effects
// @Summary      Create ticket
// @Description  Issues a flight ticket; customer/agent deductions and the vendor-side effect run atomically with the insert
// @Tags         tickets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTicketRequest  true  "Create Ticket Payload"
// @Success      201      {object}  response.Response{data=service.TicketResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/tickets [post]
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req service.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ticket, err := h.ticketService.CreateTicket(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, ticket))
}

// GetTicket returns one ticket
// @Summary      Get ticket
// @Tags         tickets
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Ticket ID"
// @Success      200  {object}  response.Response{data=service.TicketResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/tickets/{id} [get]
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, err := h.ticketService.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ticket))
}

// ListTickets returns a paginated list of tickets
// @Summary      List tickets
// @Tags         tickets
// @Security     BearerAuth
// @Produce      json
// @Param        status         query     string  false  "Filter by status (issued, confirmed, refunded, voided)"
// @Param        customer_type  query     string  false  "Filter by customer type (customer, agent)"
// @Param        customer_id    query     string  false  "Filter by customer id"
// @Param        vendor_id      query     string  false  "Filter by vendor id"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/tickets [get]
func (h *TicketHandler) ListTickets(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.TicketFilter{
		Status:       c.Query("status"),
		CustomerType: c.Query("customer_type"),
		CustomerID:   c.Query("customer_id"),
		VendorID:     c.Query("vendor_id"),
		Page:         params.Page,
		Limit:        params.Limit,
	}

	tickets, total, err := h.ticketService.ListTickets(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"tickets": tickets,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// UpdateStatus moves a ticket between lifecycle states
// @Summary      Update ticket status
// @Tags         tickets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                             true  "Ticket ID"
// @Param        payload  body      service.UpdateTicketStatusRequest  true  "Status update"
// @Success      200      {object}  response.Response{data=service.TicketResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/tickets/{id}/status [put]
func (h *TicketHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ticket, err := h.ticketService.UpdateStatus(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ticket))
}
