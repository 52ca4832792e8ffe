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

	"github.com/google/uuid"
)

// --- DTOs ---

type PostTransactionRequest struct {
	PartyType     string `json:"party_type" binding:"required,oneof=customer agent vendor"`
	PartyID       string `json:"party_id" binding:"required"`
	Pool          string `json:"pool" binding:"required,oneof=deposit credit"`
	Direction     string `json:"direction" binding:"required,oneof=increase decrease"`
	Amount        string `json:"amount" binding:"required"`
	Description   string `json:"description"`
	PaymentMethod string `json:"payment_method"`
}

// TransactionResponse is one ledger row, normalized across the three
// party-specific history tables.
type TransactionResponse struct {
	ID              string  `json:"id"`
	PartyType       string  `json:"party_type"`
	PartyID         string  `json:"party_id"`
	Type            string  `json:"type"`
	TransactionType string  `json:"transaction_type"`
	Amount          string  `json:"amount"`
	Description     string  `json:"description"`
	PaymentMethod   string  `json:"payment_method"`
	ReferenceID     *string `json:"reference_id"`
	ReferenceType   string  `json:"reference_type"`
	BalanceAfter    string  `json:"balance_after"`
	CreatedAt       string  `json:"created_at"`
}

// --- Interface ---

type TransactionService interface {
	PostTransaction(ctx context.Context, userID string, req PostTransactionRequest) (TransactionResponse, error)
	ListPartyTransactions(ctx context.Context, partyType, partyID string, page, limit int) ([]TransactionResponse, int64, error)
	ListLedger(ctx context.Context, partyType string, page, limit int) ([]TransactionResponse, int64, error)
}

type transactionService struct {
	ledgerRepo   repository.LedgerRepository
	customerRepo repository.CustomerRepository
	agentRepo    repository.AgentRepository
	vendorRepo   repository.VendorRepository
	auditRepo    repository.AuditRepository
	engine       *ledger.Engine
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewTransactionService(
	ledgerRepo repository.LedgerRepository,
	customerRepo repository.CustomerRepository,
	agentRepo repository.AgentRepository,
	vendorRepo repository.VendorRepository,
	auditRepo repository.AuditRepository,
	engine *ledger.Engine,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) TransactionService {
	return &transactionService{
		ledgerRepo:   ledgerRepo,
		customerRepo: customerRepo,
		agentRepo:    agentRepo,
		vendorRepo:   vendorRepo,
		auditRepo:    auditRepo,
		engine:       engine,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Implementation ---

// PostTransaction records a manual ledger entry (top-up, settlement,
// correction). The mutation and its audit row commit together.
func (s *transactionService) PostTransaction(ctx context.Context, userID string, req PostTransactionRequest) (TransactionResponse, error) {
	partyID, err := parseUUID(req.PartyID, "party_id")
	if err != nil {
		return TransactionResponse{}, err
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return TransactionResponse{}, err
	}

	var entry *ledger.Entry
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var applyErr error
		entry, applyErr = s.engine.Apply(txCtx, ledger.Mutation{
			PartyType:     req.PartyType,
			PartyID:       partyID,
			Pool:          req.Pool,
			Direction:     ledger.Direction(req.Direction),
			Amount:        amount,
			Description:   req.Description,
			PaymentMethod: req.PaymentMethod,
			Reference:     nil,
		})
		if applyErr != nil {
			return applyErr
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionPostTransaction,
			entry.ID.String(), req.PartyType, req)
	})
	if err != nil {
		return TransactionResponse{}, err
	}

	s.hub.Publish(ws.EventTransactionPosted, map[string]interface{}{
		"party_type":    entry.PartyType,
		"party_id":      entry.PartyID.String(),
		"balance_after": entry.BalanceAfter.StringFixed(2),
	})

	return fromEntry(entry), nil
}

// ListPartyTransactions returns one party's history newest-first. The
// party must exist; an unknown id is a not-found, not an empty page.
func (s *transactionService) ListPartyTransactions(ctx context.Context, partyType, partyID string, page, limit int) ([]TransactionResponse, int64, error) {
	id, err := parseUUID(partyID, "party id")
	if err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	switch partyType {
	case model.PartyTypeCustomer:
		if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
			return nil, 0, notFoundOr(err, "customer")
		}
		rows, total, err := s.ledgerRepo.ListByCustomer(ctx, id, page, limit)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fetch deposit transactions: %w", err)
		}
		return fromDepositRows(rows), total, nil

	case model.PartyTypeAgent:
		if _, err := s.agentRepo.FindByID(ctx, id); err != nil {
			return nil, 0, notFoundOr(err, "agent")
		}
		rows, total, err := s.ledgerRepo.ListByAgent(ctx, id, page, limit)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fetch agent transactions: %w", err)
		}
		return fromAgentRows(rows), total, nil

	case model.PartyTypeVendor:
		if _, err := s.vendorRepo.FindByID(ctx, id); err != nil {
			return nil, 0, notFoundOr(err, "vendor")
		}
		rows, total, err := s.ledgerRepo.ListByVendor(ctx, id, page, limit)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fetch vendor transactions: %w", err)
		}
		return fromVendorRows(rows), total, nil
	}

	return nil, 0, apperr.Validation("unknown party type %q", partyType)
}

func (s *transactionService) ListLedger(ctx context.Context, partyType string, page, limit int) ([]TransactionResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	switch partyType {
	case model.PartyTypeCustomer:
		rows, total, err := s.ledgerRepo.ListAllDeposit(ctx, page, limit)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fetch deposit ledger: %w", err)
		}
		return fromDepositRows(rows), total, nil
	case model.PartyTypeAgent:
		rows, total, err := s.ledgerRepo.ListAllAgent(ctx, page, limit)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fetch agent ledger: %w", err)
		}
		return fromAgentRows(rows), total, nil
	case model.PartyTypeVendor:
		rows, total, err := s.ledgerRepo.ListAllVendor(ctx, page, limit)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fetch vendor ledger: %w", err)
		}
		return fromVendorRows(rows), total, nil
	}

	return nil, 0, apperr.Validation("unknown party type %q", partyType)
}

// --- Mapping ---

func fromEntry(e *ledger.Entry) TransactionResponse {
	resp := TransactionResponse{
		ID:              e.ID.String(),
		PartyType:       e.PartyType,
		PartyID:         e.PartyID.String(),
		Type:            e.Type,
		TransactionType: e.TransactionType,
		Amount:          e.Amount.StringFixed(2),
		Description:     e.Description,
		PaymentMethod:   e.PaymentMethod,
		ReferenceType:   e.ReferenceType,
		BalanceAfter:    e.BalanceAfter.StringFixed(2),
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
	resp.ReferenceID = refString(e.ReferenceID)
	return resp
}

func fromDepositRows(rows []model.DepositTransaction) []TransactionResponse {
	result := make([]TransactionResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, TransactionResponse{
			ID:              row.ID.String(),
			PartyType:       model.PartyTypeCustomer,
			PartyID:         row.CustomerID.String(),
			Type:            row.Type,
			TransactionType: model.TxPoolDeposit,
			Amount:          row.Amount.StringFixed(2),
			Description:     row.Description,
			PaymentMethod:   row.PaymentMethod,
			ReferenceID:     refString(row.ReferenceID),
			ReferenceType:   row.ReferenceType,
			BalanceAfter:    row.BalanceAfter.StringFixed(2),
			CreatedAt:       row.CreatedAt.Format(time.RFC3339),
		})
	}
	return result
}

func fromAgentRows(rows []model.AgentTransaction) []TransactionResponse {
	result := make([]TransactionResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, TransactionResponse{
			ID:              row.ID.String(),
			PartyType:       model.PartyTypeAgent,
			PartyID:         row.AgentID.String(),
			Type:            row.Type,
			TransactionType: row.TransactionType,
			Amount:          row.Amount.StringFixed(2),
			Description:     row.Description,
			PaymentMethod:   row.PaymentMethod,
			ReferenceID:     refString(row.ReferenceID),
			ReferenceType:   row.ReferenceType,
			BalanceAfter:    row.BalanceAfter.StringFixed(2),
			CreatedAt:       row.CreatedAt.Format(time.RFC3339),
		})
	}
	return result
}

func fromVendorRows(rows []model.VendorTransaction) []TransactionResponse {
	result := make([]TransactionResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, TransactionResponse{
			ID:              row.ID.String(),
			PartyType:       model.PartyTypeVendor,
			PartyID:         row.VendorID.String(),
			Type:            row.Type,
			TransactionType: row.TransactionType,
			Amount:          row.Amount.StringFixed(2),
			Description:     row.Description,
			PaymentMethod:   row.PaymentMethod,
			ReferenceID:     refString(row.ReferenceID),
			ReferenceType:   row.ReferenceType,
			BalanceAfter:    row.BalanceAfter.StringFixed(2),
			CreatedAt:       row.CreatedAt.Format(time.RFC3339),
		})
	}
	return result
}

func refString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
