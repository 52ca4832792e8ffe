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

func TestCreateTicketVendorAccrual(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	customer := env.seedCustomer(t, "Alice Tran", "0")
	vendor := env.seedVendor(t, "SkyWings", "0", "0")

	ticket, err := env.tickets.CreateTicket(ctx, "", CreateTicketRequest{
		CustomerType:  model.CustomerTypeCustomer,
		CustomerID:    customer.ID.String(),
		VendorID:      vendor.ID.String(),
		PassengerName: "TRAN/ALICE",
		Airline:       "VN",
		FlightNumber:  "VN210",
		FaceValue:     "180",
		VendorCost:    "150",
	})
	require.NoError(t, err)
	assert.Equal(t, "TKT-1001", ticket.TicketNumber)
	assert.Equal(t, model.TicketStatusIssued, ticket.Status)

	// No vendor pool named: the cost accrues onto what we owe the vendor
	credit, deposit := env.vendorBalances(t, vendor.ID)
	assert.True(t, credit.Equal(dec("150")))
	assert.True(t, deposit.IsZero())

	// Exactly one vendor ledger row
	var rows []model.VendorTransaction
	require.NoError(t, env.db.Where("vendor_id = ?", vendor.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, model.TxTypeCredit, rows[0].Type)
	assert.True(t, rows[0].Amount.Equal(dec("150")))
	assert.Equal(t, model.RefTypeTicket, rows[0].ReferenceType)
}

func TestCreateTicketVendorPoolSettlement(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	customer := env.seedCustomer(t, "Alice Tran", "0")

	t.Run("credit pool drawdown, no accrual", func(t *testing.T) {
		vendor := env.seedVendor(t, "AirLink", "500", "0")

		_, err := env.tickets.CreateTicket(ctx, "", CreateTicketRequest{
			CustomerType:          model.CustomerTypeCustomer,
			CustomerID:            customer.ID.String(),
			VendorID:              vendor.ID.String(),
			PassengerName:         "TRAN/ALICE",
			FaceValue:             "180",
			VendorCost:            "150",
			UseVendorBalance:      model.VendorBalanceCredit,
			VendorBalanceDeducted: "150",
		})
		require.NoError(t, err)

		// The named pool settles the cost; it must not also accrue
		credit, _ := env.vendorBalances(t, vendor.ID)
		assert.True(t, credit.Equal(dec("350")))

		var count int64
		require.NoError(t, env.db.Model(&model.VendorTransaction{}).
			Where("vendor_id = ?", vendor.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("deposit pool drawdown tags deposit_debit", func(t *testing.T) {
		vendor := env.seedVendor(t, "JetSup", "0", "400")

		_, err := env.tickets.CreateTicket(ctx, "", CreateTicketRequest{
			CustomerType:          model.CustomerTypeCustomer,
			CustomerID:            customer.ID.String(),
			VendorID:              vendor.ID.String(),
			PassengerName:         "TRAN/ALICE",
			FaceValue:             "180",
			VendorCost:            "150",
			UseVendorBalance:      model.VendorBalanceDeposit,
			VendorBalanceDeducted: "150",
		})
		require.NoError(t, err)

		_, deposit := env.vendorBalances(t, vendor.ID)
		assert.True(t, deposit.Equal(dec("250")))

		var rows []model.VendorTransaction
		require.NoError(t, env.db.Where("vendor_id = ?", vendor.ID).Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.Equal(t, model.TxTypeDepositDebit, rows[0].Type)
	})
}

func TestCreateTicketCustomerAndAgentSides(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	t.Run("customer deposit deduction", func(t *testing.T) {
		customer := env.seedCustomer(t, "Bao Nguyen", "300")
		vendor := env.seedVendor(t, "SkyWings", "0", "0")

		_, err := env.tickets.CreateTicket(ctx, "", CreateTicketRequest{
			CustomerType:      model.CustomerTypeCustomer,
			CustomerID:        customer.ID.String(),
			VendorID:          vendor.ID.String(),
			PassengerName:     "NGUYEN/BAO",
			FaceValue:         "200",
			DeductFromDeposit: true,
			DepositDeducted:   "200",
		})
		require.NoError(t, err)
		assert.True(t, env.customerBalance(t, customer.ID).Equal(dec("100")))
	})

	t.Run("agent deposit pool deduction", func(t *testing.T) {
		agent := env.seedAgent(t, "GoTravel", "0", "500")
		vendor := env.seedVendor(t, "AirLink", "0", "0")

		_, err := env.tickets.CreateTicket(ctx, "", CreateTicketRequest{
			CustomerType:         model.CustomerTypeAgent,
			CustomerID:           agent.ID.String(),
			VendorID:             vendor.ID.String(),
			PassengerName:        "LE/MINH",
			FaceValue:            "220",
			UseAgentBalance:      model.AgentBalanceDeposit,
			AgentBalanceDeducted: "220",
		})
		require.NoError(t, err)

		_, deposit := env.agentBalances(t, agent.ID)
		assert.True(t, deposit.Equal(dec("280")))

		var rows []model.AgentTransaction
		require.NoError(t, env.db.Where("agent_id = ?", agent.ID).Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.Equal(t, model.TxTypeDepositDebit, rows[0].Type)
	})
}

func TestCreateTicketRollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyStrict)
	ctx := context.Background()

	agent := env.seedAgent(t, "GoTravel", "50", "0")
	vendor := env.seedVendor(t, "AirLink", "0", "0")

	_, err := env.tickets.CreateTicket(ctx, "", CreateTicketRequest{
		CustomerType:         model.CustomerTypeAgent,
		CustomerID:           agent.ID.String(),
		VendorID:             vendor.ID.String(),
		PassengerName:        "LE/MINH",
		FaceValue:            "220",
		VendorCost:           "100",
		UseAgentBalance:      model.AgentBalanceCredit,
		AgentBalanceDeducted: "220",
	})
	var fundsErr *apperr.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)

	var ticketCount, vendorRows int64
	require.NoError(t, env.db.Model(&model.Ticket{}).Count(&ticketCount).Error)
	require.NoError(t, env.db.Model(&model.VendorTransaction{}).Count(&vendorRows).Error)
	assert.Zero(t, ticketCount)
	assert.Zero(t, vendorRows)

	credit, _ := env.agentBalances(t, agent.ID)
	assert.True(t, credit.Equal(dec("50")))
	vendorCredit, _ := env.vendorBalances(t, vendor.ID)
	assert.True(t, vendorCredit.IsZero())
}

func TestUpdateTicketStatus(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	customer := env.seedCustomer(t, "Alice Tran", "0")
	vendor := env.seedVendor(t, "SkyWings", "0", "0")

	ticket, err := env.tickets.CreateTicket(ctx, "", CreateTicketRequest{
		CustomerType:  model.CustomerTypeCustomer,
		CustomerID:    customer.ID.String(),
		VendorID:      vendor.ID.String(),
		PassengerName: "TRAN/ALICE",
		FaceValue:     "100",
	})
	require.NoError(t, err)

	updated, err := env.tickets.UpdateStatus(ctx, "", ticket.ID, UpdateTicketStatusRequest{
		Status: model.TicketStatusConfirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusConfirmed, updated.Status)

	// Status changes never touch balances
	credit, _ := env.vendorBalances(t, vendor.ID)
	assert.True(t, credit.IsZero())

	_, err = env.tickets.UpdateStatus(ctx, "", customer.ID.String(), UpdateTicketStatusRequest{
		Status: model.TicketStatusVoided,
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
