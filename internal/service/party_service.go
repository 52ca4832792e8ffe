package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mclasstourism/travelbill-sub003/internal/ledger"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
	"github.com/mclasstourism/travelbill-sub003/internal/repository"
	ws "github.com/mclasstourism/travelbill-sub003/internal/websocket"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateCustomerRequest struct {
	Name           string `json:"name" binding:"required"`
	Phone          string `json:"phone"`
	Email          string `json:"email" binding:"omitempty,email"`
	OpeningDeposit string `json:"opening_deposit"`
}

type UpdateCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" binding:"omitempty,email"`
}

type CreateAgentRequest struct {
	Name           string `json:"name" binding:"required"`
	Phone          string `json:"phone"`
	Email          string `json:"email" binding:"omitempty,email"`
	OpeningCredit  string `json:"opening_credit"`
	OpeningDeposit string `json:"opening_deposit"`
}

type UpdateAgentRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" binding:"omitempty,email"`
}

type VendorAirlineRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code"`
}

type CreateVendorRequest struct {
	Name           string                 `json:"name" binding:"required"`
	Phone          string                 `json:"phone"`
	Email          string                 `json:"email" binding:"omitempty,email"`
	OpeningCredit  string                 `json:"opening_credit"`
	OpeningDeposit string                 `json:"opening_deposit"`
	Airlines       []VendorAirlineRequest `json:"airlines" binding:"omitempty,dive"`
}

type UpdateVendorRequest struct {
	Name     string                 `json:"name" binding:"required"`
	Phone    string                 `json:"phone"`
	Email    string                 `json:"email" binding:"omitempty,email"`
	Airlines []VendorAirlineRequest `json:"airlines" binding:"omitempty,dive"`
}

type CustomerResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	DepositBalance string `json:"deposit_balance"`
	CreatedAt      string `json:"created_at"`
}

type AgentResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	CreditBalance  string `json:"credit_balance"`
	DepositBalance string `json:"deposit_balance"`
	CreatedAt      string `json:"created_at"`
}

type VendorAirlineResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type VendorResponse struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Phone          string                  `json:"phone"`
	Email          string                  `json:"email"`
	CreditBalance  string                  `json:"credit_balance"`
	DepositBalance string                  `json:"deposit_balance"`
	Airlines       []VendorAirlineResponse `json:"airlines"`
	CreatedAt      string                  `json:"created_at"`
}

// --- Interface ---

type PartyService interface {
	CreateCustomer(ctx context.Context, userID string, req CreateCustomerRequest) (CustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (CustomerResponse, error)
	ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error)
	UpdateCustomer(ctx context.Context, userID, id string, req UpdateCustomerRequest) (CustomerResponse, error)
	DeleteCustomer(ctx context.Context, userID, id string) error

	CreateAgent(ctx context.Context, userID string, req CreateAgentRequest) (AgentResponse, error)
	GetAgent(ctx context.Context, id string) (AgentResponse, error)
	ListAgents(ctx context.Context, search string, page, limit int) ([]AgentResponse, int64, error)
	UpdateAgent(ctx context.Context, userID, id string, req UpdateAgentRequest) (AgentResponse, error)
	DeleteAgent(ctx context.Context, userID, id string) error

	CreateVendor(ctx context.Context, userID string, req CreateVendorRequest) (VendorResponse, error)
	GetVendor(ctx context.Context, id string) (VendorResponse, error)
	ListVendors(ctx context.Context, search string, page, limit int) ([]VendorResponse, int64, error)
	UpdateVendor(ctx context.Context, userID, id string, req UpdateVendorRequest) (VendorResponse, error)
	DeleteVendor(ctx context.Context, userID, id string) error
}

type partyService struct {
	customerRepo repository.CustomerRepository
	agentRepo    repository.AgentRepository
	vendorRepo   repository.VendorRepository
	ledgerRepo   repository.LedgerRepository
	auditRepo    repository.AuditRepository
	engine       *ledger.Engine
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewPartyService(
	customerRepo repository.CustomerRepository,
	agentRepo repository.AgentRepository,
	vendorRepo repository.VendorRepository,
	ledgerRepo repository.LedgerRepository,
	auditRepo repository.AuditRepository,
	engine *ledger.Engine,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) PartyService {
	return &partyService{
		customerRepo: customerRepo,
		agentRepo:    agentRepo,
		vendorRepo:   vendorRepo,
		ledgerRepo:   ledgerRepo,
		auditRepo:    auditRepo,
		engine:       engine,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Customers ---

// CreateCustomer inserts the profile and, when an opening deposit is
// given, books it through the engine so the ledger replays to the
// stored balance from day one.
func (s *partyService) CreateCustomer(ctx context.Context, userID string, req CreateCustomerRequest) (CustomerResponse, error) {
	opening, err := parseAmount(req.OpeningDeposit, "opening_deposit")
	if err != nil {
		return CustomerResponse{}, err
	}

	customer := model.Customer{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		DepositBalance: decimal.Zero,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.customerRepo.Create(txCtx, &customer); createErr != nil {
			return fmt.Errorf("failed to create customer: %w", createErr)
		}

		if opening.IsPositive() {
			entry, applyErr := s.engine.Apply(txCtx, ledger.Mutation{
				PartyType:   model.PartyTypeCustomer,
				PartyID:     customer.ID,
				Pool:        model.TxPoolDeposit,
				Direction:   ledger.DirectionIncrease,
				Amount:      opening,
				Description: "Opening balance",
				Reference:   &ledger.Reference{ID: customer.ID, Type: model.RefTypeOpening},
			})
			if applyErr != nil {
				return applyErr
			}
			customer.DepositBalance = entry.BalanceAfter
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateParty,
			customer.ID.String(), customer.Name, req)
	})
	if err != nil {
		return CustomerResponse{}, err
	}

	return toCustomerResponse(customer), nil
}

func (s *partyService) GetCustomer(ctx context.Context, id string) (CustomerResponse, error) {
	customerID, err := parseUUID(id, "customer id")
	if err != nil {
		return CustomerResponse{}, err
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return CustomerResponse{}, notFoundOr(err, "customer")
	}
	return toCustomerResponse(*customer), nil
}

func (s *partyService) ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	customers, total, err := s.customerRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}
	result := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		result = append(result, toCustomerResponse(c))
	}
	return result, total, nil
}

// UpdateCustomer touches profile fields only. Balances move through the
// engine, never through this path.
func (s *partyService) UpdateCustomer(ctx context.Context, userID, id string, req UpdateCustomerRequest) (CustomerResponse, error) {
	customerID, err := parseUUID(id, "customer id")
	if err != nil {
		return CustomerResponse{}, err
	}

	var customer *model.Customer
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		customer, findErr = s.customerRepo.FindByID(txCtx, customerID)
		if findErr != nil {
			return notFoundOr(findErr, "customer")
		}

		customer.Name = req.Name
		customer.Phone = req.Phone
		customer.Email = req.Email
		if updateErr := s.customerRepo.Update(txCtx, customer); updateErr != nil {
			return fmt.Errorf("failed to update customer: %w", updateErr)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionUpdateParty,
			customer.ID.String(), customer.Name, req)
	})
	if err != nil {
		return CustomerResponse{}, err
	}
	return toCustomerResponse(*customer), nil
}

// DeleteCustomer removes the party and its entire deposit history in
// one transaction.
func (s *partyService) DeleteCustomer(ctx context.Context, userID, id string) error {
	customerID, err := parseUUID(id, "customer id")
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, findErr := s.customerRepo.FindByID(txCtx, customerID)
		if findErr != nil {
			return notFoundOr(findErr, "customer")
		}

		if delErr := s.ledgerRepo.DeleteByCustomer(txCtx, customerID); delErr != nil {
			return fmt.Errorf("failed to delete customer transactions: %w", delErr)
		}
		if delErr := s.customerRepo.Delete(txCtx, customerID); delErr != nil {
			return fmt.Errorf("failed to delete customer: %w", delErr)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionDeleteParty,
			customer.ID.String(), customer.Name, nil)
	})
}

// --- Agents ---

func (s *partyService) CreateAgent(ctx context.Context, userID string, req CreateAgentRequest) (AgentResponse, error) {
	openingCredit, err := parseAmount(req.OpeningCredit, "opening_credit")
	if err != nil {
		return AgentResponse{}, err
	}
	openingDeposit, err := parseAmount(req.OpeningDeposit, "opening_deposit")
	if err != nil {
		return AgentResponse{}, err
	}

	agent := model.Agent{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		CreditBalance:  decimal.Zero,
		DepositBalance: decimal.Zero,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.agentRepo.Create(txCtx, &agent); createErr != nil {
			return fmt.Errorf("failed to create agent: %w", createErr)
		}

		ref := &ledger.Reference{ID: agent.ID, Type: model.RefTypeOpening}
		if openingCredit.IsPositive() {
			entry, applyErr := s.engine.Apply(txCtx, ledger.Mutation{
				PartyType:   model.PartyTypeAgent,
				PartyID:     agent.ID,
				Pool:        model.TxPoolCredit,
				Direction:   ledger.DirectionIncrease,
				Amount:      openingCredit,
				Description: "Opening credit balance",
				Reference:   ref,
			})
			if applyErr != nil {
				return applyErr
			}
			agent.CreditBalance = entry.BalanceAfter
		}
		if openingDeposit.IsPositive() {
			entry, applyErr := s.engine.Apply(txCtx, ledger.Mutation{
				PartyType:   model.PartyTypeAgent,
				PartyID:     agent.ID,
				Pool:        model.TxPoolDeposit,
				Direction:   ledger.DirectionIncrease,
				Amount:      openingDeposit,
				Description: "Opening deposit balance",
				Reference:   ref,
			})
			if applyErr != nil {
				return applyErr
			}
			agent.DepositBalance = entry.BalanceAfter
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateParty,
			agent.ID.String(), agent.Name, req)
	})
	if err != nil {
		return AgentResponse{}, err
	}

	return toAgentResponse(agent), nil
}

func (s *partyService) GetAgent(ctx context.Context, id string) (AgentResponse, error) {
	agentID, err := parseUUID(id, "agent id")
	if err != nil {
		return AgentResponse{}, err
	}
	agent, err := s.agentRepo.FindByID(ctx, agentID)
	if err != nil {
		return AgentResponse{}, notFoundOr(err, "agent")
	}
	return toAgentResponse(*agent), nil
}

func (s *partyService) ListAgents(ctx context.Context, search string, page, limit int) ([]AgentResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	agents, total, err := s.agentRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch agents: %w", err)
	}
	result := make([]AgentResponse, 0, len(agents))
	for _, a := range agents {
		result = append(result, toAgentResponse(a))
	}
	return result, total, nil
}

func (s *partyService) UpdateAgent(ctx context.Context, userID, id string, req UpdateAgentRequest) (AgentResponse, error) {
	agentID, err := parseUUID(id, "agent id")
	if err != nil {
		return AgentResponse{}, err
	}

	var agent *model.Agent
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		agent, findErr = s.agentRepo.FindByID(txCtx, agentID)
		if findErr != nil {
			return notFoundOr(findErr, "agent")
		}

		agent.Name = req.Name
		agent.Phone = req.Phone
		agent.Email = req.Email
		if updateErr := s.agentRepo.Update(txCtx, agent); updateErr != nil {
			return fmt.Errorf("failed to update agent: %w", updateErr)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionUpdateParty,
			agent.ID.String(), agent.Name, req)
	})
	if err != nil {
		return AgentResponse{}, err
	}
	return toAgentResponse(*agent), nil
}

func (s *partyService) DeleteAgent(ctx context.Context, userID, id string) error {
	agentID, err := parseUUID(id, "agent id")
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		agent, findErr := s.agentRepo.FindByID(txCtx, agentID)
		if findErr != nil {
			return notFoundOr(findErr, "agent")
		}

		if delErr := s.ledgerRepo.DeleteByAgent(txCtx, agentID); delErr != nil {
			return fmt.Errorf("failed to delete agent transactions: %w", delErr)
		}
		if delErr := s.agentRepo.Delete(txCtx, agentID); delErr != nil {
			return fmt.Errorf("failed to delete agent: %w", delErr)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionDeleteParty,
			agent.ID.String(), agent.Name, nil)
	})
}

// --- Vendors ---

func (s *partyService) CreateVendor(ctx context.Context, userID string, req CreateVendorRequest) (VendorResponse, error) {
	openingCredit, err := parseAmount(req.OpeningCredit, "opening_credit")
	if err != nil {
		return VendorResponse{}, err
	}
	openingDeposit, err := parseAmount(req.OpeningDeposit, "opening_deposit")
	if err != nil {
		return VendorResponse{}, err
	}

	vendor := model.Vendor{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		CreditBalance:  decimal.Zero,
		DepositBalance: decimal.Zero,
		Airlines:       toAirlineModels(req.Airlines),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.vendorRepo.Create(txCtx, &vendor); createErr != nil {
			return fmt.Errorf("failed to create vendor: %w", createErr)
		}

		ref := &ledger.Reference{ID: vendor.ID, Type: model.RefTypeOpening}
		if openingCredit.IsPositive() {
			entry, applyErr := s.engine.Apply(txCtx, ledger.Mutation{
				PartyType:   model.PartyTypeVendor,
				PartyID:     vendor.ID,
				Pool:        model.TxPoolCredit,
				Direction:   ledger.DirectionIncrease,
				Amount:      openingCredit,
				Description: "Opening credit balance",
				Reference:   ref,
			})
			if applyErr != nil {
				return applyErr
			}
			vendor.CreditBalance = entry.BalanceAfter
		}
		if openingDeposit.IsPositive() {
			entry, applyErr := s.engine.Apply(txCtx, ledger.Mutation{
				PartyType:   model.PartyTypeVendor,
				PartyID:     vendor.ID,
				Pool:        model.TxPoolDeposit,
				Direction:   ledger.DirectionIncrease,
				Amount:      openingDeposit,
				Description: "Opening deposit balance",
				Reference:   ref,
			})
			if applyErr != nil {
				return applyErr
			}
			vendor.DepositBalance = entry.BalanceAfter
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateParty,
			vendor.ID.String(), vendor.Name, req)
	})
	if err != nil {
		return VendorResponse{}, err
	}

	return toVendorResponse(vendor), nil
}

func (s *partyService) GetVendor(ctx context.Context, id string) (VendorResponse, error) {
	vendorID, err := parseUUID(id, "vendor id")
	if err != nil {
		return VendorResponse{}, err
	}
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return VendorResponse{}, notFoundOr(err, "vendor")
	}
	return toVendorResponse(*vendor), nil
}

func (s *partyService) ListVendors(ctx context.Context, search string, page, limit int) ([]VendorResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	vendors, total, err := s.vendorRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vendors: %w", err)
	}
	result := make([]VendorResponse, 0, len(vendors))
	for _, v := range vendors {
		result = append(result, toVendorResponse(v))
	}
	return result, total, nil
}

func (s *partyService) UpdateVendor(ctx context.Context, userID, id string, req UpdateVendorRequest) (VendorResponse, error) {
	vendorID, err := parseUUID(id, "vendor id")
	if err != nil {
		return VendorResponse{}, err
	}

	var vendor *model.Vendor
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		vendor, findErr = s.vendorRepo.FindByID(txCtx, vendorID)
		if findErr != nil {
			return notFoundOr(findErr, "vendor")
		}

		vendor.Name = req.Name
		vendor.Phone = req.Phone
		vendor.Email = req.Email
		if updateErr := s.vendorRepo.Update(txCtx, vendor); updateErr != nil {
			return fmt.Errorf("failed to update vendor: %w", updateErr)
		}

		if req.Airlines != nil {
			airlines := toAirlineModels(req.Airlines)
			if replaceErr := s.vendorRepo.ReplaceAirlines(txCtx, vendorID, airlines); replaceErr != nil {
				return fmt.Errorf("failed to replace vendor airlines: %w", replaceErr)
			}
			vendor.Airlines = airlines
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionUpdateParty,
			vendor.ID.String(), vendor.Name, req)
	})
	if err != nil {
		return VendorResponse{}, err
	}
	return toVendorResponse(*vendor), nil
}

func (s *partyService) DeleteVendor(ctx context.Context, userID, id string) error {
	vendorID, err := parseUUID(id, "vendor id")
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		vendor, findErr := s.vendorRepo.FindByID(txCtx, vendorID)
		if findErr != nil {
			return notFoundOr(findErr, "vendor")
		}

		if delErr := s.ledgerRepo.DeleteByVendor(txCtx, vendorID); delErr != nil {
			return fmt.Errorf("failed to delete vendor transactions: %w", delErr)
		}
		if delErr := s.vendorRepo.Delete(txCtx, vendorID); delErr != nil {
			return fmt.Errorf("failed to delete vendor: %w", delErr)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionDeleteParty,
			vendor.ID.String(), vendor.Name, nil)
	})
}

// --- Mapping ---

func toCustomerResponse(c model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID.String(),
		Name:           c.Name,
		Phone:          c.Phone,
		Email:          c.Email,
		DepositBalance: c.DepositBalance.StringFixed(2),
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
	}
}

func toAgentResponse(a model.Agent) AgentResponse {
	return AgentResponse{
		ID:             a.ID.String(),
		Name:           a.Name,
		Phone:          a.Phone,
		Email:          a.Email,
		CreditBalance:  a.CreditBalance.StringFixed(2),
		DepositBalance: a.DepositBalance.StringFixed(2),
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
}

func toVendorResponse(v model.Vendor) VendorResponse {
	airlines := make([]VendorAirlineResponse, 0, len(v.Airlines))
	for _, a := range v.Airlines {
		airlines = append(airlines, VendorAirlineResponse{
			ID:   a.ID.String(),
			Name: a.Name,
			Code: a.Code,
		})
	}
	return VendorResponse{
		ID:             v.ID.String(),
		Name:           v.Name,
		Phone:          v.Phone,
		Email:          v.Email,
		CreditBalance:  v.CreditBalance.StringFixed(2),
		DepositBalance: v.DepositBalance.StringFixed(2),
		Airlines:       airlines,
		CreatedAt:      v.CreatedAt.Format(time.RFC3339),
	}
}

func toAirlineModels(reqs []VendorAirlineRequest) []model.VendorAirline {
	airlines := make([]model.VendorAirline, 0, len(reqs))
	for _, a := range reqs {
		airlines = append(airlines, model.VendorAirline{Name: a.Name, Code: a.Code})
	}
	return airlines
}
