// Package ledger holds the balance mutation engine: the single write
// path through which party balances change. Every applied mutation
// updates exactly one pool on exactly one party and appends exactly one
// history row carrying the resulting balance, inside one database
// transaction.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/mclasstourism/travelbill-sub003/internal/apperr"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
	"github.com/mclasstourism/travelbill-sub003/internal/repository"
	"github.com/mclasstourism/travelbill-sub003/pkg/logger"
	"github.com/mclasstourism/travelbill-sub003/pkg/prom"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Direction says whether a mutation grows or shrinks the selected pool
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// Policy controls whether a decrease may push a pool below zero.
// Permissive mirrors the historical behavior (overdraft allowed);
// strict rejects with InsufficientFundsError.
type Policy string

const (
	PolicyPermissive Policy = "permissive"
	PolicyStrict     Policy = "strict"
)

// ParsePolicy maps a config string to a Policy, defaulting to permissive
func ParsePolicy(s string) Policy {
	if s == string(PolicyStrict) {
		return PolicyStrict
	}
	return PolicyPermissive
}

// Reference links a ledger row to the document that caused it
type Reference struct {
	ID   uuid.UUID
	Type string // model.RefTypeInvoice, model.RefTypeTicket, ...
}

// Mutation is one requested balance change
type Mutation struct {
	PartyType     string // model.PartyTypeCustomer, ...Agent, ...Vendor
	PartyID       uuid.UUID
	Pool          string // model.TxPoolDeposit or model.TxPoolCredit
	Direction     Direction
	Amount        decimal.Decimal
	Description   string
	PaymentMethod string
	Reference     *Reference
}

// Entry is the created ledger row, normalized across the three
// party-specific history tables.
type Entry struct {
	ID              uuid.UUID       `json:"id"`
	PartyType       string          `json:"party_type"`
	PartyID         uuid.UUID       `json:"party_id"`
	Type            string          `json:"type"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	PaymentMethod   string          `json:"payment_method"`
	ReferenceID     *uuid.UUID      `json:"reference_id"`
	ReferenceType   string          `json:"reference_type"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	CreatedAt       time.Time       `json:"created_at"`
}

type Engine struct {
	customers repository.CustomerRepository
	agents    repository.AgentRepository
	vendors   repository.VendorRepository
	ledger    repository.LedgerRepository
	txManager repository.TransactionManager
	policy    Policy
}

func NewEngine(
	customers repository.CustomerRepository,
	agents repository.AgentRepository,
	vendors repository.VendorRepository,
	ledgerRepo repository.LedgerRepository,
	txManager repository.TransactionManager,
	policy Policy,
) *Engine {
	return &Engine{
		customers: customers,
		agents:    agents,
		vendors:   vendors,
		ledger:    ledgerRepo,
		txManager: txManager,
		policy:    policy,
	}
}

// Apply performs one balance mutation. The party row is locked FOR
// UPDATE for the duration, so concurrent mutations against the same
// party serialize instead of losing updates. Called with a context
// already inside a transaction (issuance), it joins that transaction;
// called standalone it opens its own.
func (e *Engine) Apply(ctx context.Context, m Mutation) (*Entry, error) {
	if !m.Amount.IsPositive() {
		return nil, apperr.Validation("transaction amount must be positive, got %s", m.Amount.String())
	}
	if m.Pool != model.TxPoolDeposit && m.Pool != model.TxPoolCredit {
		return nil, apperr.Validation("unknown balance pool %q", m.Pool)
	}
	if m.Direction != DirectionIncrease && m.Direction != DirectionDecrease {
		return nil, apperr.Validation("unknown direction %q", m.Direction)
	}

	var entry *Entry
	err := e.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var applyErr error
		switch m.PartyType {
		case model.PartyTypeCustomer:
			entry, applyErr = e.applyCustomer(txCtx, m)
		case model.PartyTypeAgent:
			entry, applyErr = e.applyAgent(txCtx, m)
		case model.PartyTypeVendor:
			entry, applyErr = e.applyVendor(txCtx, m)
		default:
			return apperr.Validation("unknown party type %q", m.PartyType)
		}
		return applyErr
	})
	if err != nil {
		return nil, err
	}

	prom.LedgerMutations.WithLabelValues(m.PartyType, string(m.Direction)).Inc()
	logger.Debug("ledger mutation applied",
		"party_type", m.PartyType,
		"party_id", m.PartyID.String(),
		"pool", m.Pool,
		"direction", string(m.Direction),
		"amount", m.Amount.String(),
		"balance_after", entry.BalanceAfter.String(),
	)
	return entry, nil
}

func (e *Engine) applyCustomer(ctx context.Context, m Mutation) (*Entry, error) {
	if m.Pool != model.TxPoolDeposit {
		return nil, apperr.Validation("customers only hold a deposit pool")
	}

	customer, err := e.customers.FindByIDForUpdate(ctx, m.PartyID)
	if err != nil {
		return nil, notFoundOr(err, "customer")
	}

	newBalance, err := e.nextBalance(customer.DepositBalance, m)
	if err != nil {
		return nil, err
	}

	if err := e.customers.UpdateBalance(ctx, customer.ID, newBalance); err != nil {
		return nil, err
	}

	row := &model.DepositTransaction{
		CustomerID:    customer.ID,
		Type:          directionTag(m.PartyType, m.Pool, m.Direction),
		Amount:        m.Amount,
		Description:   m.Description,
		PaymentMethod: m.PaymentMethod,
		BalanceAfter:  newBalance,
	}
	applyReference(&row.ReferenceID, &row.ReferenceType, m.Reference)
	if err := e.ledger.CreateDeposit(ctx, row); err != nil {
		return nil, err
	}

	return &Entry{
		ID:              row.ID,
		PartyType:       model.PartyTypeCustomer,
		PartyID:         customer.ID,
		Type:            row.Type,
		TransactionType: model.TxPoolDeposit,
		Amount:          row.Amount,
		Description:     row.Description,
		PaymentMethod:   row.PaymentMethod,
		ReferenceID:     row.ReferenceID,
		ReferenceType:   row.ReferenceType,
		BalanceAfter:    row.BalanceAfter,
		CreatedAt:       row.CreatedAt,
	}, nil
}

func (e *Engine) applyAgent(ctx context.Context, m Mutation) (*Entry, error) {
	agent, err := e.agents.FindByIDForUpdate(ctx, m.PartyID)
	if err != nil {
		return nil, notFoundOr(err, "agent")
	}

	current := agent.CreditBalance
	if m.Pool == model.TxPoolDeposit {
		current = agent.DepositBalance
	}

	newBalance, err := e.nextBalance(current, m)
	if err != nil {
		return nil, err
	}

	if err := e.agents.UpdateBalance(ctx, agent.ID, m.Pool, newBalance); err != nil {
		return nil, err
	}

	row := &model.AgentTransaction{
		AgentID:         agent.ID,
		Type:            directionTag(m.PartyType, m.Pool, m.Direction),
		TransactionType: m.Pool,
		Amount:          m.Amount,
		Description:     m.Description,
		PaymentMethod:   m.PaymentMethod,
		BalanceAfter:    newBalance,
	}
	applyReference(&row.ReferenceID, &row.ReferenceType, m.Reference)
	if err := e.ledger.CreateAgent(ctx, row); err != nil {
		return nil, err
	}

	return &Entry{
		ID:              row.ID,
		PartyType:       model.PartyTypeAgent,
		PartyID:         agent.ID,
		Type:            row.Type,
		TransactionType: row.TransactionType,
		Amount:          row.Amount,
		Description:     row.Description,
		PaymentMethod:   row.PaymentMethod,
		ReferenceID:     row.ReferenceID,
		ReferenceType:   row.ReferenceType,
		BalanceAfter:    row.BalanceAfter,
		CreatedAt:       row.CreatedAt,
	}, nil
}

func (e *Engine) applyVendor(ctx context.Context, m Mutation) (*Entry, error) {
	vendor, err := e.vendors.FindByIDForUpdate(ctx, m.PartyID)
	if err != nil {
		return nil, notFoundOr(err, "vendor")
	}

	current := vendor.CreditBalance
	if m.Pool == model.TxPoolDeposit {
		current = vendor.DepositBalance
	}

	newBalance, err := e.nextBalance(current, m)
	if err != nil {
		return nil, err
	}

	if err := e.vendors.UpdateBalance(ctx, vendor.ID, m.Pool, newBalance); err != nil {
		return nil, err
	}

	row := &model.VendorTransaction{
		VendorID:        vendor.ID,
		Type:            directionTag(m.PartyType, m.Pool, m.Direction),
		TransactionType: m.Pool,
		Amount:          m.Amount,
		Description:     m.Description,
		PaymentMethod:   m.PaymentMethod,
		BalanceAfter:    newBalance,
	}
	applyReference(&row.ReferenceID, &row.ReferenceType, m.Reference)
	if err := e.ledger.CreateVendor(ctx, row); err != nil {
		return nil, err
	}

	return &Entry{
		ID:              row.ID,
		PartyType:       model.PartyTypeVendor,
		PartyID:         vendor.ID,
		Type:            row.Type,
		TransactionType: row.TransactionType,
		Amount:          row.Amount,
		Description:     row.Description,
		PaymentMethod:   row.PaymentMethod,
		ReferenceID:     row.ReferenceID,
		ReferenceType:   row.ReferenceType,
		BalanceAfter:    row.BalanceAfter,
		CreatedAt:       row.CreatedAt,
	}, nil
}

func (e *Engine) nextBalance(current decimal.Decimal, m Mutation) (decimal.Decimal, error) {
	if m.Direction == DirectionIncrease {
		return current.Add(m.Amount), nil
	}
	next := current.Sub(m.Amount)
	if e.policy == PolicyStrict && next.IsNegative() {
		return decimal.Decimal{}, &apperr.InsufficientFundsError{
			PartyType: m.PartyType,
			Pool:      m.Pool,
			Balance:   current,
			Requested: m.Amount,
		}
	}
	return next, nil
}

// directionTag maps (pool, direction) to the ledger `type` column.
// Agent/vendor deposit decreases carry the deposit_debit tag so
// statements can tell the two debit kinds apart.
func directionTag(partyType, pool string, d Direction) string {
	if d == DirectionIncrease {
		return model.TxTypeCredit
	}
	if pool == model.TxPoolDeposit && partyType != model.PartyTypeCustomer {
		return model.TxTypeDepositDebit
	}
	return model.TxTypeDebit
}

func applyReference(id **uuid.UUID, refType *string, ref *Reference) {
	if ref == nil {
		return
	}
	refID := ref.ID
	*id = &refID
	*refType = ref.Type
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what)
	}
	return err
}
