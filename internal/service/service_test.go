package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mclasstourism/travelbill-sub003/internal/database"
	"github.com/mclasstourism/travelbill-sub003/internal/ledger"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
	"github.com/mclasstourism/travelbill-sub003/internal/repository"
)

// testEnv wires the full service stack against an in-memory database
type testEnv struct {
	db *gorm.DB

	invoices     InvoiceService
	tickets      TicketService
	transactions TransactionService
	parties      PartyService
	metrics      MetricsService
	admin        AdminService
	users        UserService

	customerRepo repository.CustomerRepository
	agentRepo    repository.AgentRepository
	vendorRepo   repository.VendorRepository
	seqRepo      repository.SequenceRepository
}

func newTestEnv(t *testing.T, policy ledger.Policy) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	txManager := repository.NewTransactionManager(db)
	customerRepo := repository.NewCustomerRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	seqRepo := repository.NewSequenceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	metricsRepo := repository.NewMetricsRepository(db)
	userRepo := repository.NewUserRepository(db)

	engine := ledger.NewEngine(customerRepo, agentRepo, vendorRepo, ledgerRepo, txManager, policy)

	return &testEnv{
		db:           db,
		invoices:     NewInvoiceService(invoiceRepo, customerRepo, agentRepo, vendorRepo, seqRepo, auditRepo, engine, txManager, nil),
		tickets:      NewTicketService(ticketRepo, customerRepo, agentRepo, vendorRepo, seqRepo, auditRepo, engine, txManager, nil),
		transactions: NewTransactionService(ledgerRepo, customerRepo, agentRepo, vendorRepo, auditRepo, engine, txManager, nil),
		parties:      NewPartyService(customerRepo, agentRepo, vendorRepo, ledgerRepo, auditRepo, engine, txManager, nil),
		metrics:      NewMetricsService(metricsRepo),
		admin:        NewAdminService(customerRepo, agentRepo, vendorRepo, ledgerRepo, invoiceRepo, ticketRepo, seqRepo, userRepo, metricsRepo, auditRepo, txManager, nil),
		users:        NewUserService(userRepo),
		customerRepo: customerRepo,
		agentRepo:    agentRepo,
		vendorRepo:   vendorRepo,
		seqRepo:      seqRepo,
	}
}

func (e *testEnv) seedCustomer(t *testing.T, name, deposit string) *model.Customer {
	t.Helper()
	customer := &model.Customer{Name: name, DepositBalance: decimal.RequireFromString(deposit)}
	require.NoError(t, e.db.Create(customer).Error)
	return customer
}

func (e *testEnv) seedAgent(t *testing.T, name, credit, deposit string) *model.Agent {
	t.Helper()
	agent := &model.Agent{
		Name:           name,
		CreditBalance:  decimal.RequireFromString(credit),
		DepositBalance: decimal.RequireFromString(deposit),
	}
	require.NoError(t, e.db.Create(agent).Error)
	return agent
}

func (e *testEnv) seedVendor(t *testing.T, name, credit, deposit string) *model.Vendor {
	t.Helper()
	vendor := &model.Vendor{
		Name:           name,
		CreditBalance:  decimal.RequireFromString(credit),
		DepositBalance: decimal.RequireFromString(deposit),
	}
	require.NoError(t, e.db.Create(vendor).Error)
	return vendor
}

func (e *testEnv) customerBalance(t *testing.T, id interface{}) decimal.Decimal {
	t.Helper()
	var customer model.Customer
	require.NoError(t, e.db.First(&customer, "id = ?", id).Error)
	return customer.DepositBalance
}

func (e *testEnv) agentBalances(t *testing.T, id interface{}) (credit, deposit decimal.Decimal) {
	t.Helper()
	var agent model.Agent
	require.NoError(t, e.db.First(&agent, "id = ?", id).Error)
	return agent.CreditBalance, agent.DepositBalance
}

func (e *testEnv) vendorBalances(t *testing.T, id interface{}) (credit, deposit decimal.Decimal) {
	t.Helper()
	var vendor model.Vendor
	require.NoError(t, e.db.First(&vendor, "id = ?", id).Error)
	return vendor.CreditBalance, vendor.DepositBalance
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
