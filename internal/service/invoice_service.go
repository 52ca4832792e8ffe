package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mclasstourism/travelbill-sub003/internal/apperr"
	"github.com/mclasstourism/travelbill-sub003/internal/ledger"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
	"github.com/mclasstourism/travelbill-sub003/internal/repository"
	ws "github.com/mclasstourism/travelbill-sub003/internal/websocket"
	"github.com/mclasstourism/travelbill-sub003/pkg/prom"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type InvoiceItemRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	UnitPrice   string `json:"unit_price" binding:"required"`
}

type CreateInvoiceRequest struct {
	CustomerType          string               `json:"customer_type" binding:"required,oneof=customer agent"`
	CustomerID            string               `json:"customer_id" binding:"required"`
	VendorID              string               `json:"vendor_id" binding:"required"`
	Items                 []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	DiscountPercent       string               `json:"discount_percent"`
	PaymentMethod         string               `json:"payment_method"`
	VendorCost            string               `json:"vendor_cost"`
	UseCustomerDeposit    bool                 `json:"use_customer_deposit"`
	DepositUsed           string               `json:"deposit_used"`
	UseAgentCredit        bool                 `json:"use_agent_credit"`
	AgentCreditUsed       string               `json:"agent_credit_used"`
	UseVendorBalance      string               `json:"use_vendor_balance" binding:"omitempty,oneof=none credit deposit"`
	VendorBalanceDeducted string               `json:"vendor_balance_deducted"`
}

type UpdateInvoicePaymentRequest struct {
	Status     string `json:"status" binding:"required,oneof=issued partial paid cancelled"`
	PaidAmount string `json:"paid_amount"`
}

type InvoiceFilter struct {
	Status       string
	CustomerType string
	CustomerID   string
	Page         int
	Limit        int
}

type InvoiceItemResponse struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

type InvoiceResponse struct {
	ID                    string                `json:"id"`
	InvoiceNumber         string                `json:"invoice_number"`
	CustomerType          string                `json:"customer_type"`
	CustomerID            string                `json:"customer_id"`
	VendorID              string                `json:"vendor_id"`
	Items                 []InvoiceItemResponse `json:"items"`
	Subtotal              string                `json:"subtotal"`
	DiscountPercent       string                `json:"discount_percent"`
	DiscountAmount        string                `json:"discount_amount"`
	Total                 string                `json:"total"`
	VendorCost            string                `json:"vendor_cost"`
	PaymentMethod         string                `json:"payment_method"`
	UseCustomerDeposit    bool                  `json:"use_customer_deposit"`
	DepositUsed           string                `json:"deposit_used"`
	UseAgentCredit        bool                  `json:"use_agent_credit"`
	AgentCreditUsed       string                `json:"agent_credit_used"`
	UseVendorBalance      string                `json:"use_vendor_balance"`
	VendorBalanceDeducted string                `json:"vendor_balance_deducted"`
	Status                string                `json:"status"`
	PaidAmount            string                `json:"paid_amount"`
	CreatedAt             string                `json:"created_at"`
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, userID string, req CreateInvoiceRequest) (InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	UpdatePayment(ctx context.Context, userID, id string, req UpdateInvoicePaymentRequest) (InvoiceResponse, error)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	agentRepo    repository.AgentRepository
	vendorRepo   repository.VendorRepository
	seqRepo      repository.SequenceRepository
	auditRepo    repository.AuditRepository
	engine       *ledger.Engine
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	agentRepo repository.AgentRepository,
	vendorRepo repository.VendorRepository,
	seqRepo repository.SequenceRepository,
	auditRepo repository.AuditRepository,
	engine *ledger.Engine,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		agentRepo:    agentRepo,
		vendorRepo:   vendorRepo,
		seqRepo:      seqRepo,
		auditRepo:    auditRepo,
		engine:       engine,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Implementation ---

// CreateInvoice validates the request, then runs number allocation, the
// invoice insert, the zero-to-three dependent balance mutations and the
// audit row in a single database transaction: either the invoice and
// all its ledger effects land, or none of them do.
func (s *invoiceService) CreateInvoice(ctx context.Context, userID string, req CreateInvoiceRequest) (InvoiceResponse, error) {
	if len(req.Items) == 0 {
		return InvoiceResponse{}, apperr.Validation("invoice must have at least one item")
	}

	customerID, err := parseUUID(req.CustomerID, "customer_id")
	if err != nil {
		return InvoiceResponse{}, err
	}
	vendorID, err := parseUUID(req.VendorID, "vendor_id")
	if err != nil {
		return InvoiceResponse{}, err
	}

	discountPercent, err := parseAmount(req.DiscountPercent, "discount_percent")
	if err != nil {
		return InvoiceResponse{}, err
	}
	vendorCost, err := parseAmount(req.VendorCost, "vendor_cost")
	if err != nil {
		return InvoiceResponse{}, err
	}
	depositUsed, err := parseAmount(req.DepositUsed, "deposit_used")
	if err != nil {
		return InvoiceResponse{}, err
	}
	agentCreditUsed, err := parseAmount(req.AgentCreditUsed, "agent_credit_used")
	if err != nil {
		return InvoiceResponse{}, err
	}
	vendorDeducted, err := parseAmount(req.VendorBalanceDeducted, "vendor_balance_deducted")
	if err != nil {
		return InvoiceResponse{}, err
	}

	useVendorBalance := req.UseVendorBalance
	if useVendorBalance == "" {
		useVendorBalance = model.VendorBalanceNone
	}

	// Resolve both parties up front so a bad id fails before anything is written
	if _, err := s.vendorRepo.FindByID(ctx, vendorID); err != nil {
		return InvoiceResponse{}, notFoundOr(err, "vendor")
	}
	if req.CustomerType == model.CustomerTypeCustomer {
		if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
			return InvoiceResponse{}, notFoundOr(err, "customer")
		}
	} else {
		if _, err := s.agentRepo.FindByID(ctx, customerID); err != nil {
			return InvoiceResponse{}, notFoundOr(err, "agent")
		}
	}

	subtotal := decimal.Zero
	items := make([]model.InvoiceItem, 0, len(req.Items))
	for _, item := range req.Items {
		unitPrice, parseErr := parseAmount(item.UnitPrice, "unit_price")
		if parseErr != nil {
			return InvoiceResponse{}, parseErr
		}
		subtotal = subtotal.Add(unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		items = append(items, model.InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
		})
	}

	discountAmount := subtotal.Mul(discountPercent).Div(decimal.NewFromInt(100))
	total := subtotal.Sub(discountAmount)

	invoice := model.Invoice{
		CustomerType:          req.CustomerType,
		CustomerID:            customerID,
		VendorID:              vendorID,
		Items:                 items,
		Subtotal:              subtotal,
		DiscountPercent:       discountPercent,
		DiscountAmount:        discountAmount,
		Total:                 total,
		VendorCost:            vendorCost,
		PaymentMethod:         req.PaymentMethod,
		UseCustomerDeposit:    req.UseCustomerDeposit,
		DepositUsed:           depositUsed,
		UseAgentCredit:        req.UseAgentCredit,
		AgentCreditUsed:       agentCreditUsed,
		UseVendorBalance:      useVendorBalance,
		VendorBalanceDeducted: vendorDeducted,
		Status:                model.InvoiceStatusIssued,
		PaidAmount:            decimal.Zero,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, seqErr := s.seqRepo.Next(txCtx, model.SeqInvoice)
		if seqErr != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", seqErr)
		}
		invoice.InvoiceNumber = fmt.Sprintf("INV-%04d", number)

		if createErr := s.invoiceRepo.Create(txCtx, &invoice); createErr != nil {
			return fmt.Errorf("failed to create invoice: %w", createErr)
		}

		ref := &ledger.Reference{ID: invoice.ID, Type: model.RefTypeInvoice}

		if invoice.UseCustomerDeposit && invoice.DepositUsed.IsPositive() {
			partyType := model.PartyTypeCustomer
			if invoice.CustomerType == model.CustomerTypeAgent {
				partyType = model.PartyTypeAgent
			}
			if _, applyErr := s.engine.Apply(txCtx, ledger.Mutation{
				PartyType:     partyType,
				PartyID:       invoice.CustomerID,
				Pool:          model.TxPoolDeposit,
				Direction:     ledger.DirectionDecrease,
				Amount:        invoice.DepositUsed,
				Description:   "Deposit used for invoice " + invoice.InvoiceNumber,
				PaymentMethod: model.PaymentMethodBalance,
				Reference:     ref,
			}); applyErr != nil {
				return applyErr
			}
		}

		if invoice.UseVendorBalance != model.VendorBalanceNone && invoice.VendorBalanceDeducted.IsPositive() {
			if _, applyErr := s.engine.Apply(txCtx, ledger.Mutation{
				PartyType:     model.PartyTypeVendor,
				PartyID:       invoice.VendorID,
				Pool:          invoice.UseVendorBalance,
				Direction:     ledger.DirectionDecrease,
				Amount:        invoice.VendorBalanceDeducted,
				Description:   "Vendor balance used for invoice " + invoice.InvoiceNumber,
				PaymentMethod: model.PaymentMethodBalance,
				Reference:     ref,
			}); applyErr != nil {
				return applyErr
			}
		}

		if invoice.UseAgentCredit && invoice.AgentCreditUsed.IsPositive() &&
			invoice.CustomerType == model.CustomerTypeAgent {
			if _, applyErr := s.engine.Apply(txCtx, ledger.Mutation{
				PartyType:     model.PartyTypeAgent,
				PartyID:       invoice.CustomerID,
				Pool:          model.TxPoolCredit,
				Direction:     ledger.DirectionDecrease,
				Amount:        invoice.AgentCreditUsed,
				Description:   "Agent credit used for invoice " + invoice.InvoiceNumber,
				PaymentMethod: model.PaymentMethodBalance,
				Reference:     ref,
			}); applyErr != nil {
				return applyErr
			}
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateInvoice,
			invoice.ID.String(), invoice.InvoiceNumber, req)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	prom.InvoicesCreated.Inc()
	s.hub.Publish(ws.EventInvoiceCreated, map[string]interface{}{
		"id":             invoice.ID.String(),
		"invoice_number": invoice.InvoiceNumber,
		"total":          invoice.Total.StringFixed(2),
	})

	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := parseUUID(id, "invoice id")
	if err != nil {
		return InvoiceResponse{}, err
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, notFoundOr(err, "invoice")
	}
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.InvoiceListFilter{
		Status:       filter.Status,
		CustomerType: filter.CustomerType,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}
	if filter.CustomerID != "" {
		customerID, err := parseUUID(filter.CustomerID, "customer_id")
		if err != nil {
			return nil, 0, err
		}
		repoFilter.CustomerID = &customerID
	}

	invoices, total, err := s.invoiceRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

// UpdatePayment is the only path that moves PaidAmount, and it only
// moves it forward. Balance mutations never touch it.
func (s *invoiceService) UpdatePayment(ctx context.Context, userID, id string, req UpdateInvoicePaymentRequest) (InvoiceResponse, error) {
	invoiceID, err := parseUUID(id, "invoice id")
	if err != nil {
		return InvoiceResponse{}, err
	}

	paidAmount, err := parseAmount(req.PaidAmount, "paid_amount")
	if err != nil {
		return InvoiceResponse{}, err
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByID(txCtx, invoiceID)
		if findErr != nil {
			return notFoundOr(findErr, "invoice")
		}

		if paidAmount.LessThan(invoice.PaidAmount) {
			return apperr.Validation("paid_amount cannot decrease (current %s, requested %s)",
				invoice.PaidAmount.StringFixed(2), paidAmount.StringFixed(2))
		}

		invoice.Status = req.Status
		invoice.PaidAmount = paidAmount

		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionUpdateInvoice,
			invoice.ID.String(), invoice.InvoiceNumber, req)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	return toInvoiceResponse(*invoice), nil
}

// --- Mapping ---

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, InvoiceItemResponse{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
		})
	}

	return InvoiceResponse{
		ID:                    inv.ID.String(),
		InvoiceNumber:         inv.InvoiceNumber,
		CustomerType:          inv.CustomerType,
		CustomerID:            inv.CustomerID.String(),
		VendorID:              inv.VendorID.String(),
		Items:                 items,
		Subtotal:              inv.Subtotal.StringFixed(2),
		DiscountPercent:       inv.DiscountPercent.StringFixed(2),
		DiscountAmount:        inv.DiscountAmount.StringFixed(2),
		Total:                 inv.Total.StringFixed(2),
		VendorCost:            inv.VendorCost.StringFixed(2),
		PaymentMethod:         inv.PaymentMethod,
		UseCustomerDeposit:    inv.UseCustomerDeposit,
		DepositUsed:           inv.DepositUsed.StringFixed(2),
		UseAgentCredit:        inv.UseAgentCredit,
		AgentCreditUsed:       inv.AgentCreditUsed.StringFixed(2),
		UseVendorBalance:      inv.UseVendorBalance,
		VendorBalanceDeducted: inv.VendorBalanceDeducted.StringFixed(2),
		Status:                inv.Status,
		PaidAmount:            inv.PaidAmount.StringFixed(2),
		CreatedAt:             inv.CreatedAt.Format(time.RFC3339),
	}
}

