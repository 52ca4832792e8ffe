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

func TestCreateInvoiceCustomerDeposit(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	customer := env.seedCustomer(t, "Alice Tran", "500")
	vendor := env.seedVendor(t, "SkyWings", "0", "0")

	invoice, err := env.invoices.CreateInvoice(ctx, "", CreateInvoiceRequest{
		CustomerType:       model.CustomerTypeCustomer,
		CustomerID:         customer.ID.String(),
		VendorID:           vendor.ID.String(),
		Items: []InvoiceItemRequest{
			{Description: "SGN-HAN round trip", Quantity: 2, UnitPrice: "150"},
		},
		UseCustomerDeposit: true,
		DepositUsed:        "200",
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-1001", invoice.InvoiceNumber)
	assert.Equal(t, model.InvoiceStatusIssued, invoice.Status)
	assert.Equal(t, "300.00", invoice.Subtotal)
	assert.Equal(t, "300.00", invoice.Total)
	assert.Equal(t, "0.00", invoice.PaidAmount)

	// Deposit moved and left a history row referencing the invoice
	assert.True(t, env.customerBalance(t, customer.ID).Equal(dec("300")))

	var rows []model.DepositTransaction
	require.NoError(t, env.db.Where("customer_id = ?", customer.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, model.TxTypeDebit, rows[0].Type)
	assert.Equal(t, model.RefTypeInvoice, rows[0].ReferenceType)
	require.NotNil(t, rows[0].ReferenceID)
	assert.Equal(t, invoice.ID, rows[0].ReferenceID.String())
	assert.True(t, rows[0].BalanceAfter.Equal(dec("300")))
}

func TestCreateInvoiceAgentBothPools(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	agent := env.seedAgent(t, "GoTravel", "1000", "400")
	vendor := env.seedVendor(t, "AirLink", "600", "0")

	invoice, err := env.invoices.CreateInvoice(ctx, "", CreateInvoiceRequest{
		CustomerType:          model.CustomerTypeAgent,
		CustomerID:            agent.ID.String(),
		VendorID:              vendor.ID.String(),
		Items: []InvoiceItemRequest{
			{Description: "Group booking", Quantity: 10, UnitPrice: "100"},
		},
		DiscountPercent:       "10",
		UseCustomerDeposit:    true,
		DepositUsed:           "150",
		UseAgentCredit:        true,
		AgentCreditUsed:       "250",
		UseVendorBalance:      model.VendorBalanceCredit,
		VendorBalanceDeducted: "300",
	})
	require.NoError(t, err)

	assert.Equal(t, "1000.00", invoice.Subtotal)
	assert.Equal(t, "100.00", invoice.DiscountAmount)
	assert.Equal(t, "900.00", invoice.Total)

	credit, deposit := env.agentBalances(t, agent.ID)
	assert.True(t, credit.Equal(dec("750")))
	assert.True(t, deposit.Equal(dec("250")))

	vendorCredit, _ := env.vendorBalances(t, vendor.ID)
	assert.True(t, vendorCredit.Equal(dec("300")))

	var agentRows []model.AgentTransaction
	require.NoError(t, env.db.Where("agent_id = ?", agent.ID).Find(&agentRows).Error)
	assert.Len(t, agentRows, 2)
}

func TestCreateInvoiceRollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyStrict)
	ctx := context.Background()

	customer := env.seedCustomer(t, "Bao Nguyen", "50")
	vendor := env.seedVendor(t, "SkyWings", "0", "0")

	_, err := env.invoices.CreateInvoice(ctx, "", CreateInvoiceRequest{
		CustomerType:       model.CustomerTypeCustomer,
		CustomerID:         customer.ID.String(),
		VendorID:           vendor.ID.String(),
		Items: []InvoiceItemRequest{
			{Description: "Ticket", Quantity: 1, UnitPrice: "100"},
		},
		UseCustomerDeposit: true,
		DepositUsed:        "100", // more than the balance under strict policy
	})
	var fundsErr *apperr.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)

	// Nothing landed: no invoice, no ledger row, balance untouched
	var invoiceCount, ledgerCount int64
	require.NoError(t, env.db.Model(&model.Invoice{}).Count(&invoiceCount).Error)
	require.NoError(t, env.db.Model(&model.DepositTransaction{}).Count(&ledgerCount).Error)
	assert.Zero(t, invoiceCount)
	assert.Zero(t, ledgerCount)
	assert.True(t, env.customerBalance(t, customer.ID).Equal(dec("50")))
}

func TestCreateInvoiceNumbersAreSequential(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	customer := env.seedCustomer(t, "Alice Tran", "0")
	vendor := env.seedVendor(t, "SkyWings", "0", "0")

	for i, want := range []string{"INV-1001", "INV-1002", "INV-1003"} {
		invoice, err := env.invoices.CreateInvoice(ctx, "", CreateInvoiceRequest{
			CustomerType: model.CustomerTypeCustomer,
			CustomerID:   customer.ID.String(),
			VendorID:     vendor.ID.String(),
			Items: []InvoiceItemRequest{
				{Description: "Leg", Quantity: i + 1, UnitPrice: "10"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, want, invoice.InvoiceNumber)
	}
}

func TestCreateInvoiceValidation(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	customer := env.seedCustomer(t, "Alice Tran", "0")
	vendor := env.seedVendor(t, "SkyWings", "0", "0")

	t.Run("unknown vendor", func(t *testing.T) {
		_, err := env.invoices.CreateInvoice(ctx, "", CreateInvoiceRequest{
			CustomerType: model.CustomerTypeCustomer,
			CustomerID:   customer.ID.String(),
			VendorID:     customer.ID.String(),
			Items:        []InvoiceItemRequest{{Description: "x", Quantity: 1, UnitPrice: "1"}},
		})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := env.invoices.CreateInvoice(ctx, "", CreateInvoiceRequest{
			CustomerType: model.CustomerTypeCustomer,
			CustomerID:   customer.ID.String(),
			VendorID:     vendor.ID.String(),
			Items:        []InvoiceItemRequest{{Description: "x", Quantity: 1, UnitPrice: "1"}},
			DepositUsed:  "-5",
		})
		var validationErr *apperr.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestUpdatePayment(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	customer := env.seedCustomer(t, "Alice Tran", "0")
	vendor := env.seedVendor(t, "SkyWings", "0", "0")

	invoice, err := env.invoices.CreateInvoice(ctx, "", CreateInvoiceRequest{
		CustomerType: model.CustomerTypeCustomer,
		CustomerID:   customer.ID.String(),
		VendorID:     vendor.ID.String(),
		Items:        []InvoiceItemRequest{{Description: "Ticket", Quantity: 1, UnitPrice: "200"}},
	})
	require.NoError(t, err)

	t.Run("partial payment", func(t *testing.T) {
		updated, err := env.invoices.UpdatePayment(ctx, "", invoice.ID, UpdateInvoicePaymentRequest{
			Status:     model.InvoiceStatusPartial,
			PaidAmount: "80",
		})
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceStatusPartial, updated.Status)
		assert.Equal(t, "80.00", updated.PaidAmount)
	})

	t.Run("paid amount cannot decrease", func(t *testing.T) {
		_, err := env.invoices.UpdatePayment(ctx, "", invoice.ID, UpdateInvoicePaymentRequest{
			Status:     model.InvoiceStatusPartial,
			PaidAmount: "50",
		})
		var validationErr *apperr.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("settle in full", func(t *testing.T) {
		updated, err := env.invoices.UpdatePayment(ctx, "", invoice.ID, UpdateInvoicePaymentRequest{
			Status:     model.InvoiceStatusPaid,
			PaidAmount: "200",
		})
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceStatusPaid, updated.Status)
	})
}

func TestListInvoicesFilter(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	customer := env.seedCustomer(t, "Alice Tran", "0")
	other := env.seedCustomer(t, "Bao Nguyen", "0")
	vendor := env.seedVendor(t, "SkyWings", "0", "0")

	for _, c := range []*model.Customer{customer, customer, other} {
		_, err := env.invoices.CreateInvoice(ctx, "", CreateInvoiceRequest{
			CustomerType: model.CustomerTypeCustomer,
			CustomerID:   c.ID.String(),
			VendorID:     vendor.ID.String(),
			Items:        []InvoiceItemRequest{{Description: "Leg", Quantity: 1, UnitPrice: "10"}},
		})
		require.NoError(t, err)
	}

	all, total, err := env.invoices.ListInvoices(ctx, InvoiceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	filtered, total, err := env.invoices.ListInvoices(ctx, InvoiceFilter{CustomerID: customer.ID.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, filtered, 2)
}
