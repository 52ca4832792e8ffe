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

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateTicketRequest struct {
	CustomerType          string `json:"customer_type" binding:"required,oneof=customer agent"`
	CustomerID            string `json:"customer_id" binding:"required"`
	VendorID              string `json:"vendor_id" binding:"required"`
	InvoiceID             string `json:"invoice_id"`
	PassengerName         string `json:"passenger_name" binding:"required"`
	PNR                   string `json:"pnr"`
	Airline               string `json:"airline"`
	FlightNumber          string `json:"flight_number"`
	DepartureAirport      string `json:"departure_airport"`
	ArrivalAirport        string `json:"arrival_airport"`
	TravelDate            string `json:"travel_date"`
	FaceValue             string `json:"face_value" binding:"required"`
	VendorCost            string `json:"vendor_cost"`
	AdditionalCost        string `json:"additional_cost"`
	DeductFromDeposit     bool   `json:"deduct_from_deposit"`
	DepositDeducted       string `json:"deposit_deducted"`
	UseAgentBalance       string `json:"use_agent_balance" binding:"omitempty,oneof=none credit deposit"`
	AgentBalanceDeducted  string `json:"agent_balance_deducted"`
	UseVendorBalance      string `json:"use_vendor_balance" binding:"omitempty,oneof=none credit deposit"`
	VendorBalanceDeducted string `json:"vendor_balance_deducted"`
}

type UpdateTicketStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=issued confirmed refunded voided"`
}

type TicketFilter struct {
	Status       string
	CustomerType string
	CustomerID   string
	VendorID     string
	Page         int
	Limit        int
}

type TicketResponse struct {
	ID                    string  `json:"id"`
	TicketNumber          string  `json:"ticket_number"`
	CustomerType          string  `json:"customer_type"`
	CustomerID            string  `json:"customer_id"`
	VendorID              string  `json:"vendor_id"`
	InvoiceID             *string `json:"invoice_id"`
	PassengerName         string  `json:"passenger_name"`
	PNR                   string  `json:"pnr"`
	Airline               string  `json:"airline"`
	FlightNumber          string  `json:"flight_number"`
	DepartureAirport      string  `json:"departure_airport"`
	ArrivalAirport        string  `json:"arrival_airport"`
	TravelDate            *string `json:"travel_date"`
	FaceValue             string  `json:"face_value"`
	VendorCost            string  `json:"vendor_cost"`
	AdditionalCost        string  `json:"additional_cost"`
	DeductFromDeposit     bool    `json:"deduct_from_deposit"`
	DepositDeducted       string  `json:"deposit_deducted"`
	UseAgentBalance       string  `json:"use_agent_balance"`
	AgentBalanceDeducted  string  `json:"agent_balance_deducted"`
	UseVendorBalance      string  `json:"use_vendor_balance"`
	VendorBalanceDeducted string  `json:"vendor_balance_deducted"`
	Status                string  `json:"status"`
	CreatedAt             string  `json:"created_at"`
}

// --- Interface ---

type TicketService interface {
	CreateTicket(ctx context.Context, userID string, req CreateTicketRequest) (TicketResponse, error)
	GetTicket(ctx context.Context, id string) (TicketResponse, error)
	ListTickets(ctx context.Context, filter TicketFilter) ([]TicketResponse, int64, error)
	UpdateStatus(ctx context.Context, userID, id string, req UpdateTicketStatusRequest) (TicketResponse, error)
}

type ticketService struct {
	ticketRepo   repository.TicketRepository
	customerRepo repository.CustomerRepository
	agentRepo    repository.AgentRepository
	vendorRepo   repository.VendorRepository
	seqRepo      repository.SequenceRepository
	auditRepo    repository.AuditRepository
	engine       *ledger.Engine
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewTicketService(
	ticketRepo repository.TicketRepository,
	customerRepo repository.CustomerRepository,
	agentRepo repository.AgentRepository,
	vendorRepo repository.VendorRepository,
	seqRepo repository.SequenceRepository,
	auditRepo repository.AuditRepository,
	engine *ledger.Engine,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) TicketService {
	return &ticketService{
		ticketRepo:   ticketRepo,
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

// CreateTicket issues a ticket and its balance effects in one database
// transaction. The vendor side is applied exactly once: a vendor cost
// either accrues onto the vendor's credit balance or is settled from
// the named vendor pool, never both.
func (s *ticketService) CreateTicket(ctx context.Context, userID string, req CreateTicketRequest) (TicketResponse, error) {
	customerID, err := parseUUID(req.CustomerID, "customer_id")
	if err != nil {
		return TicketResponse{}, err
	}
	vendorID, err := parseUUID(req.VendorID, "vendor_id")
	if err != nil {
		return TicketResponse{}, err
	}

	var invoiceID *uuid.UUID
	if req.InvoiceID != "" {
		parsed, parseErr := parseUUID(req.InvoiceID, "invoice_id")
		if parseErr != nil {
			return TicketResponse{}, parseErr
		}
		invoiceID = &parsed
	}

	faceValue, err := parseAmount(req.FaceValue, "face_value")
	if err != nil {
		return TicketResponse{}, err
	}
	vendorCost, err := parseAmount(req.VendorCost, "vendor_cost")
	if err != nil {
		return TicketResponse{}, err
	}
	additionalCost, err := parseAmount(req.AdditionalCost, "additional_cost")
	if err != nil {
		return TicketResponse{}, err
	}
	depositDeducted, err := parseAmount(req.DepositDeducted, "deposit_deducted")
	if err != nil {
		return TicketResponse{}, err
	}
	agentDeducted, err := parseAmount(req.AgentBalanceDeducted, "agent_balance_deducted")
	if err != nil {
		return TicketResponse{}, err
	}
	vendorDeducted, err := parseAmount(req.VendorBalanceDeducted, "vendor_balance_deducted")
	if err != nil {
		return TicketResponse{}, err
	}

	useAgentBalance := req.UseAgentBalance
	if useAgentBalance == "" {
		useAgentBalance = model.AgentBalanceNone
	}
	useVendorBalance := req.UseVendorBalance
	if useVendorBalance == "" {
		useVendorBalance = model.VendorBalanceNone
	}

	var travelDate *time.Time
	if req.TravelDate != "" {
		parsed, parseErr := time.Parse("2006-01-02", req.TravelDate)
		if parseErr != nil {
			return TicketResponse{}, apperr.Validation("invalid travel_date: %q, expected YYYY-MM-DD", req.TravelDate)
		}
		travelDate = &parsed
	}

	if _, err := s.vendorRepo.FindByID(ctx, vendorID); err != nil {
		return TicketResponse{}, notFoundOr(err, "vendor")
	}
	if req.CustomerType == model.CustomerTypeCustomer {
		if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
			return TicketResponse{}, notFoundOr(err, "customer")
		}
	} else {
		if _, err := s.agentRepo.FindByID(ctx, customerID); err != nil {
			return TicketResponse{}, notFoundOr(err, "agent")
		}
	}

	ticket := model.Ticket{
		CustomerType:          req.CustomerType,
		CustomerID:            customerID,
		VendorID:              vendorID,
		InvoiceID:             invoiceID,
		PassengerName:         req.PassengerName,
		PNR:                   req.PNR,
		Airline:               req.Airline,
		FlightNumber:          req.FlightNumber,
		DepartureAirport:      req.DepartureAirport,
		ArrivalAirport:        req.ArrivalAirport,
		TravelDate:            travelDate,
		FaceValue:             faceValue,
		VendorCost:            vendorCost,
		AdditionalCost:        additionalCost,
		DeductFromDeposit:     req.DeductFromDeposit,
		DepositDeducted:       depositDeducted,
		UseAgentBalance:       useAgentBalance,
		AgentBalanceDeducted:  agentDeducted,
		UseVendorBalance:      useVendorBalance,
		VendorBalanceDeducted: vendorDeducted,
		Status:                model.TicketStatusIssued,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, seqErr := s.seqRepo.Next(txCtx, model.SeqTicket)
		if seqErr != nil {
			return fmt.Errorf("failed to allocate ticket number: %w", seqErr)
		}
		ticket.TicketNumber = fmt.Sprintf("TKT-%04d", number)

		if createErr := s.ticketRepo.Create(txCtx, &ticket); createErr != nil {
			return fmt.Errorf("failed to create ticket: %w", createErr)
		}

		ref := &ledger.Reference{ID: ticket.ID, Type: model.RefTypeTicket}

		if ticket.CustomerType == model.CustomerTypeCustomer &&
			ticket.DeductFromDeposit && ticket.DepositDeducted.IsPositive() {
			if _, applyErr := s.engine.Apply(txCtx, ledger.Mutation{
				PartyType:     model.PartyTypeCustomer,
				PartyID:       ticket.CustomerID,
				Pool:          model.TxPoolDeposit,
				Direction:     ledger.DirectionDecrease,
				Amount:        ticket.DepositDeducted,
				Description:   "Deposit used for ticket " + ticket.TicketNumber,
				PaymentMethod: model.PaymentMethodBalance,
				Reference:     ref,
			}); applyErr != nil {
				return applyErr
			}
		}

		if ticket.CustomerType == model.CustomerTypeAgent &&
			ticket.UseAgentBalance != model.AgentBalanceNone && ticket.AgentBalanceDeducted.IsPositive() {
			if _, applyErr := s.engine.Apply(txCtx, ledger.Mutation{
				PartyType:     model.PartyTypeAgent,
				PartyID:       ticket.CustomerID,
				Pool:          ticket.UseAgentBalance,
				Direction:     ledger.DirectionDecrease,
				Amount:        ticket.AgentBalanceDeducted,
				Description:   "Agent balance used for ticket " + ticket.TicketNumber,
				PaymentMethod: model.PaymentMethodBalance,
				Reference:     ref,
			}); applyErr != nil {
				return applyErr
			}
		}

		// Vendor side. The cost accrues onto the vendor's credit balance
		// when no vendor pool settles it; otherwise the named pool is
		// drawn down. Exactly one of these branches may run.
		switch {
		case ticket.UseVendorBalance == model.VendorBalanceNone && ticket.VendorCost.IsPositive():
			if _, applyErr := s.engine.Apply(txCtx, ledger.Mutation{
				PartyType:     model.PartyTypeVendor,
				PartyID:       ticket.VendorID,
				Pool:          model.TxPoolCredit,
				Direction:     ledger.DirectionIncrease,
				Amount:        ticket.VendorCost,
				Description:   "Vendor cost accrued for ticket " + ticket.TicketNumber,
				PaymentMethod: model.PaymentMethodBalance,
				Reference:     ref,
			}); applyErr != nil {
				return applyErr
			}
		case ticket.UseVendorBalance != model.VendorBalanceNone && ticket.VendorBalanceDeducted.IsPositive():
			if _, applyErr := s.engine.Apply(txCtx, ledger.Mutation{
				PartyType:     model.PartyTypeVendor,
				PartyID:       ticket.VendorID,
				Pool:          ticket.UseVendorBalance,
				Direction:     ledger.DirectionDecrease,
				Amount:        ticket.VendorBalanceDeducted,
				Description:   "Vendor balance used for ticket " + ticket.TicketNumber,
				PaymentMethod: model.PaymentMethodBalance,
				Reference:     ref,
			}); applyErr != nil {
				return applyErr
			}
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateTicket,
			ticket.ID.String(), ticket.TicketNumber, req)
	})
	if err != nil {
		return TicketResponse{}, err
	}

	prom.TicketsCreated.Inc()
	s.hub.Publish(ws.EventTicketCreated, map[string]interface{}{
		"id":            ticket.ID.String(),
		"ticket_number": ticket.TicketNumber,
		"passenger":     ticket.PassengerName,
	})

	return toTicketResponse(ticket), nil
}

func (s *ticketService) GetTicket(ctx context.Context, id string) (TicketResponse, error) {
	ticketID, err := parseUUID(id, "ticket id")
	if err != nil {
		return TicketResponse{}, err
	}

	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return TicketResponse{}, notFoundOr(err, "ticket")
	}
	return toTicketResponse(*ticket), nil
}

func (s *ticketService) ListTickets(ctx context.Context, filter TicketFilter) ([]TicketResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.TicketListFilter{
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
	if filter.VendorID != "" {
		vendorID, err := parseUUID(filter.VendorID, "vendor_id")
		if err != nil {
			return nil, 0, err
		}
		repoFilter.VendorID = &vendorID
	}

	tickets, total, err := s.ticketRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tickets: %w", err)
	}

	result := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		result = append(result, toTicketResponse(t))
	}
	return result, total, nil
}

func (s *ticketService) UpdateStatus(ctx context.Context, userID, id string, req UpdateTicketStatusRequest) (TicketResponse, error) {
	ticketID, err := parseUUID(id, "ticket id")
	if err != nil {
		return TicketResponse{}, err
	}

	var ticket *model.Ticket
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		ticket, findErr = s.ticketRepo.FindByID(txCtx, ticketID)
		if findErr != nil {
			return notFoundOr(findErr, "ticket")
		}

		ticket.Status = req.Status
		if updateErr := s.ticketRepo.Update(txCtx, ticket); updateErr != nil {
			return fmt.Errorf("failed to update ticket: %w", updateErr)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionUpdateTicket,
			ticket.ID.String(), ticket.TicketNumber, req)
	})
	if err != nil {
		return TicketResponse{}, err
	}

	return toTicketResponse(*ticket), nil
}

// --- Mapping ---

func toTicketResponse(t model.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:                    t.ID.String(),
		TicketNumber:          t.TicketNumber,
		CustomerType:          t.CustomerType,
		CustomerID:            t.CustomerID.String(),
		VendorID:              t.VendorID.String(),
		PassengerName:         t.PassengerName,
		PNR:                   t.PNR,
		Airline:               t.Airline,
		FlightNumber:          t.FlightNumber,
		DepartureAirport:      t.DepartureAirport,
		ArrivalAirport:        t.ArrivalAirport,
		FaceValue:             t.FaceValue.StringFixed(2),
		VendorCost:            t.VendorCost.StringFixed(2),
		AdditionalCost:        t.AdditionalCost.StringFixed(2),
		DeductFromDeposit:     t.DeductFromDeposit,
		DepositDeducted:       t.DepositDeducted.StringFixed(2),
		UseAgentBalance:       t.UseAgentBalance,
		AgentBalanceDeducted:  t.AgentBalanceDeducted.StringFixed(2),
		UseVendorBalance:      t.UseVendorBalance,
		VendorBalanceDeducted: t.VendorBalanceDeducted.StringFixed(2),
		Status:                t.Status,
		CreatedAt:             t.CreatedAt.Format(time.RFC3339),
	}
	if t.InvoiceID != nil {
		id := t.InvoiceID.String()
		resp.InvoiceID = &id
	}
	if t.TravelDate != nil {
		d := t.TravelDate.Format("2006-01-02")
		resp.TravelDate = &d
	}
	return resp
}
