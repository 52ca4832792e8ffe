package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mclasstourism/travelbill-sub003/internal/apperr"
	"github.com/mclasstourism/travelbill-sub003/internal/ledger"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
)

// seedActivity issues one invoice and one ticket so the reset paths
// have real rows to remove.
func seedActivity(t *testing.T, env *testEnv) (*model.Customer, *model.Vendor) {
	t.Helper()
	ctx := context.Background()

	customer := env.seedCustomer(t, "Alice Tran", "500")
	vendor := env.seedVendor(t, "SkyWings", "0", "0")

	_, err := env.invoices.CreateInvoice(ctx, "", CreateInvoiceRequest{
		CustomerType:       model.CustomerTypeCustomer,
		CustomerID:         customer.ID.String(),
		VendorID:           vendor.ID.String(),
		Items:              []InvoiceItemRequest{{Description: "Ticket", Quantity: 1, UnitPrice: "100"}},
		UseCustomerDeposit: true,
		DepositUsed:        "100",
	})
	require.NoError(t, err)

	_, err = env.tickets.CreateTicket(ctx, "", CreateTicketRequest{
		CustomerType:  model.CustomerTypeCustomer,
		CustomerID:    customer.ID.String(),
		VendorID:      vendor.ID.String(),
		PassengerName: "TRAN/ALICE",
		FaceValue:     "100",
		VendorCost:    "80",
	})
	require.NoError(t, err)

	return customer, vendor
}

func TestResetFinanceData(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	customer, vendor := seedActivity(t, env)

	require.NoError(t, env.admin.ResetFinanceData(ctx, ""))

	// Ledgers emptied, balances zeroed, documents untouched
	for _, m := range []interface{}{
		&model.DepositTransaction{}, &model.AgentTransaction{}, &model.VendorTransaction{},
	} {
		var count int64
		require.NoError(t, env.db.Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}

	assert.True(t, env.customerBalance(t, customer.ID).IsZero())
	vendorCredit, vendorDeposit := env.vendorBalances(t, vendor.ID)
	assert.True(t, vendorCredit.IsZero())
	assert.True(t, vendorDeposit.IsZero())

	var invoiceCount, ticketCount int64
	require.NoError(t, env.db.Model(&model.Invoice{}).Count(&invoiceCount).Error)
	require.NoError(t, env.db.Model(&model.Ticket{}).Count(&ticketCount).Error)
	assert.EqualValues(t, 1, invoiceCount)
	assert.EqualValues(t, 1, ticketCount)
}

func TestResetInvoicesWindsSequenceBack(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	customer, vendor := seedActivity(t, env)

	require.NoError(t, env.admin.ResetInvoices(ctx, ""))

	var count int64
	require.NoError(t, env.db.Model(&model.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)

	// Numbering starts over from the base
	invoice, err := env.invoices.CreateInvoice(ctx, "", CreateInvoiceRequest{
		CustomerType: model.CustomerTypeCustomer,
		CustomerID:   customer.ID.String(),
		VendorID:     vendor.ID.String(),
		Items:        []InvoiceItemRequest{{Description: "Leg", Quantity: 1, UnitPrice: "10"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-1001", invoice.InvoiceNumber)

	// Tickets and their sequence are unaffected
	ticket, err := env.tickets.CreateTicket(ctx, "", CreateTicketRequest{
		CustomerType:  model.CustomerTypeCustomer,
		CustomerID:    customer.ID.String(),
		VendorID:      vendor.ID.String(),
		PassengerName: "TRAN/ALICE",
		FaceValue:     "50",
	})
	require.NoError(t, err)
	assert.Equal(t, "TKT-1002", ticket.TicketNumber)
}

func TestResetTicketsWindsSequenceBack(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	customer, vendor := seedActivity(t, env)

	require.NoError(t, env.admin.ResetTickets(ctx, ""))

	var count int64
	require.NoError(t, env.db.Model(&model.Ticket{}).Count(&count).Error)
	assert.Zero(t, count)

	ticket, err := env.tickets.CreateTicket(ctx, "", CreateTicketRequest{
		CustomerType:  model.CustomerTypeCustomer,
		CustomerID:    customer.ID.String(),
		VendorID:      vendor.ID.String(),
		PassengerName: "TRAN/ALICE",
		FaceValue:     "50",
	})
	require.NoError(t, err)
	assert.Equal(t, "TKT-1001", ticket.TicketNumber)
}

func TestCleanupAllData(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	seedActivity(t, env)

	require.NoError(t, env.admin.CleanupAllData(ctx, ""))

	for _, m := range []interface{}{
		&model.Invoice{}, &model.Ticket{},
		&model.DepositTransaction{}, &model.AgentTransaction{}, &model.VendorTransaction{},
		&model.Customer{}, &model.Agent{}, &model.Vendor{},
	} {
		var count int64
		require.NoError(t, env.db.Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}

	// Fresh parties start numbering from the base again
	customer := env.seedCustomer(t, "New Customer", "0")
	vendor := env.seedVendor(t, "New Vendor", "0", "0")
	invoice, err := env.invoices.CreateInvoice(ctx, "", CreateInvoiceRequest{
		CustomerType: model.CustomerTypeCustomer,
		CustomerID:   customer.ID.String(),
		VendorID:     vendor.ID.String(),
		Items:        []InvoiceItemRequest{{Description: "Leg", Quantity: 1, UnitPrice: "10"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-1001", invoice.InvoiceNumber)
}

func TestLogoutAllUsers(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	_, err := env.users.CreateUser(ctx, CreateUserRequest{
		Username: "staff01",
		Email:    "staff01@example.com",
		Password: "secret123",
		Role:     model.RoleStaff,
	})
	require.NoError(t, err)

	pair, _, err := env.users.Login(ctx, LoginUserRequest{
		Email:    "staff01@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, env.admin.LogoutAllUsers(ctx, ""))

	var count int64
	require.NoError(t, env.db.Model(&model.RefreshToken{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = env.users.Refresh(ctx, pair.RefreshToken)
	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestSendReport(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	seedActivity(t, env)

	metrics, err := env.admin.SendReport(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, metrics.InvoiceCount)
	assert.EqualValues(t, 1, metrics.TicketCount)

	// The snapshot is audit-logged
	var count int64
	require.NoError(t, env.db.Model(&model.AuditLog{}).
		Where("action = ?", model.ActionSendReport).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
