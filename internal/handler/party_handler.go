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

// PartyHandler serves the customer, agent and vendor profile surfaces
type PartyHandler struct {
	partyService service.PartyService
}

func NewPartyHandler(partyService service.PartyService) *PartyHandler {
	return &PartyHandler{partyService: partyService}
}

func (h *PartyHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff)
	managers := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	customers := router.Group("/api/customers")
	{
		customers.POST("", managers, h.CreateCustomer)
		customers.GET("", staff, h.ListCustomers)
		customers.GET("/:id", staff, h.GetCustomer)
		customers.PUT("/:id", managers, h.UpdateCustomer)
		customers.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteCustomer)
	}

	agents := router.Group("/api/agents")
	{
		agents.POST("", managers, h.CreateAgent)
		agents.GET("", staff, h.ListAgents)
		agents.GET("/:id", staff, h.GetAgent)
		agents.PUT("/:id", managers, h.UpdateAgent)
		agents.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteAgent)
	}

	vendors := router.Group("/api/vendors")
	{
		vendors.POST("", managers, h.CreateVendor)
		vendors.GET("", staff, h.ListVendors)
		vendors.GET("/:id", staff, h.GetVendor)
		vendors.PUT("/:id", managers, h.UpdateVendor)
		vendors.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteVendor)
	}
}

// --- Customers ---

// CreateCustomer creates a customer profile
// @Summary      Create customer
// @Description  Creates a customer; an opening deposit is booked through the balance engine
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCustomerRequest  true  "Customer payload"
// @Success      201      {object}  response.Response{data=service.CustomerResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/customers [post]
func (h *PartyHandler) CreateCustomer(c *gin.Context) {
	var req service.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.partyService.CreateCustomer(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

// GetCustomer returns one customer
// @Summary      Get customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response{data=service.CustomerResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [get]
func (h *PartyHandler) GetCustomer(c *gin.Context) {
	customer, err := h.partyService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// ListCustomers returns a paginated customer list
// @Summary      List customers
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Filter by name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/customers [get]
func (h *PartyHandler) ListCustomers(c *gin.Context) {
	params := pagination.Parse(c)
	customers, total, err := h.partyService.ListCustomers(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// UpdateCustomer updates customer profile fields
// @Summary      Update customer
// @Description  Updates name/phone/email; balances only move through transactions
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Customer ID"
// @Param        payload  body      service.UpdateCustomerRequest  true  "Customer payload"
// @Success      200      {object}  response.Response{data=service.CustomerResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/customers/{id} [put]
func (h *PartyHandler) UpdateCustomer(c *gin.Context) {
	var req service.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.partyService.UpdateCustomer(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// DeleteCustomer deletes a customer and its transaction history
// @Summary      Delete customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [delete]
func (h *PartyHandler) DeleteCustomer(c *gin.Context) {
	if err := h.partyService.DeleteCustomer(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// --- Agents ---

// CreateAgent creates an agent profile
// @Summary      Create agent
// @Description  Creates an agent; opening credit/deposit balances are booked through the balance engine
// @Tags         agents
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateAgentRequest  true  "Agent payload"
// @Success      201      {object}  response.Response{data=service.AgentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/agents [post]
func (h *PartyHandler) CreateAgent(c *gin.Context) {
	var req service.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	agent, err := h.partyService.CreateAgent(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, agent))
}

// GetAgent returns one agent
// @Summary      Get agent
// @Tags         agents
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Agent ID"
// @Success      200  {object}  response.Response{data=service.AgentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/agents/{id} [get]
func (h *PartyHandler) GetAgent(c *gin.Context) {
	agent, err := h.partyService.GetAgent(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, agent))
}

// ListAgents returns a paginated agent list
// @Summary      List agents
// @Tags         agents
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Filter by name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/agents [get]
func (h *PartyHandler) ListAgents(c *gin.Context) {
	params := pagination.Parse(c)
	agents, total, err := h.partyService.ListAgents(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"agents": agents,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}

// UpdateAgent updates agent profile fields
// @Summary      Update agent
// @Tags         agents
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Agent ID"
// @Param        payload  body      service.UpdateAgentRequest  true  "Agent payload"
// @Success      200      {object}  response.Response{data=service.AgentResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/agents/{id} [put]
func (h *PartyHandler) UpdateAgent(c *gin.Context) {
	var req service.UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	agent, err := h.partyService.UpdateAgent(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, agent))
}

// DeleteAgent deletes an agent and its transaction history
// @Summary      Delete agent
// @Tags         agents
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Agent ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/agents/{id} [delete]
func (h *PartyHandler) DeleteAgent(c *gin.Context) {
	if err := h.partyService.DeleteAgent(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// --- Vendors ---

// CreateVendor creates a vendor profile
// @Summary      Create vendor
// @Description  Creates a vendor with its airlines; opening balances are booked through the balance engine
// @Tags         vendors
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateVendorRequest  true  "Vendor payload"
// @Success      201      {object}  response.Response{data=service.VendorResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/vendors [post]
func (h *PartyHandler) CreateVendor(c *gin.Context) {
	var req service.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vendor, err := h.partyService.CreateVendor(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, vendor))
}

// GetVendor returns one vendor with its airlines
// @Summary      Get vendor
// @Tags         vendors
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Vendor ID"
// @Success      200  {object}  response.Response{data=service.VendorResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/vendors/{id} [get]
func (h *PartyHandler) GetVendor(c *gin.Context) {
	vendor, err := h.partyService.GetVendor(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, vendor))
}

// ListVendors returns a paginated vendor list
// @Summary      List vendors
// @Tags         vendors
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Filter by name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/vendors [get]
func (h *PartyHandler) ListVendors(c *gin.Context) {
	params := pagination.Parse(c)
	vendors, total, err := h.partyService.ListVendors(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"vendors": vendors,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// UpdateVendor updates vendor profile fields and airlines
// @Summary      Update vendor
// @Tags         vendors
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Vendor ID"
// @Param        payload  body      service.UpdateVendorRequest  true  "Vendor payload"
// @Success      200      {object}  response.Response{data=service.VendorResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/vendors/{id} [put]
func (h *PartyHandler) UpdateVendor(c *gin.Context) {
	var req service.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vendor, err := h.partyService.UpdateVendor(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, vendor))
}

// DeleteVendor deletes a vendor, its airlines and its transaction history
// @Summary      Delete vendor
// @Tags         vendors
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Vendor ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/vendors/{id} [delete]
func (h *PartyHandler) DeleteVendor(c *gin.Context) {
	if err := h.partyService.DeleteVendor(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
