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

type TransactionHandler struct {
	transactionService service.TransactionService
}

func NewTransactionHandler(transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	transactions := router.Group("/api/transactions")
	{
		transactions.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.PostTransaction)
		transactions.GET("/:partyType", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.ListLedger)
		transactions.GET("/:partyType/:partyId", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.ListPartyTransactions)
	}
}

// PostTransaction records a manual balance mutation
// @Summary      Post manual transaction
// @Description  Applies a manual top-up, settlement or correction through the balance engine
// @Tags         transactions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PostTransactionRequest  true  "Transaction payload"
// @Success      201      {object}  response.Response{data=service.TransactionResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/transactions [post]
func (h *TransactionHandler) PostTransaction(c *gin.Context) {
	var req service.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.transactionService.PostTransaction(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// ListLedger returns all rows of one party-type ledger
// @Summary      List ledger
// @Tags         transactions
// @Security     BearerAuth
// @Produce      json
// @Param        partyType  path      string  true   "Party type (customer, agent, vendor)"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Router       /api/transactions/{partyType} [get]
func (h *TransactionHandler) ListLedger(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.transactionService.ListLedger(c.Request.Context(), c.Param("partyType"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"transactions": entries,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}

// ListPartyTransactions returns one party's history, newest first
// @Summary      List party transactions
// @Tags         transactions
// @Security     BearerAuth
// @Produce      json
// @Param        partyType  path      string  true   "Party type (customer, agent, vendor)"
// @Param        partyId    path      string  true   "Party ID"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      404  {object}  response.Response
// @Router       /api/transactions/{partyType}/{partyId} [get]
func (h *TransactionHandler) ListPartyTransactions(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.transactionService.ListPartyTransactions(
		c.Request.Context(), c.Param("partyType"), c.Param("partyId"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"transactions": entries,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}
