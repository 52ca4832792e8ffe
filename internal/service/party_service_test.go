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

func TestCreatePartyOpeningBalances(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	t.Run("customer opening deposit is booked through the ledger", func(t *testing.T) {
		resp, err := env.parties.CreateCustomer(ctx, "", CreateCustomerRequest{
			Name:           "Alice Tran",
			OpeningDeposit: "250",
		})
		require.NoError(t, err)
		assert.Equal(t, "250.00", resp.DepositBalance)

		var rows []model.DepositTransaction
		require.NoError(t, env.db.Where("customer_id = ?", resp.ID).Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.Equal(t, model.TxTypeCredit, rows[0].Type)
		assert.Equal(t, model.RefTypeOpening, rows[0].ReferenceType)
		assert.True(t, rows[0].BalanceAfter.Equal(dec("250")))
	})

	t.Run("agent opening books both pools", func(t *testing.T) {
		resp, err := env.parties.CreateAgent(ctx, "", CreateAgentRequest{
			Name:           "GoTravel",
			OpeningCredit:  "1000",
			OpeningDeposit: "400",
		})
		require.NoError(t, err)
		assert.Equal(t, "1000.00", resp.CreditBalance)
		assert.Equal(t, "400.00", resp.DepositBalance)

		var rows []model.AgentTransaction
		require.NoError(t, env.db.Where("agent_id = ?", resp.ID).Find(&rows).Error)
		assert.Len(t, rows, 2)
	})

	t.Run("zero opening leaves the ledger empty", func(t *testing.T) {
		resp, err := env.parties.CreateVendor(ctx, "", CreateVendorRequest{
			Name: "SkyWings",
			Airlines: []VendorAirlineRequest{
				{Name: "Vietnam Airlines", Code: "VN"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "0.00", resp.CreditBalance)
		require.Len(t, resp.Airlines, 1)
		assert.Equal(t, "VN", resp.Airlines[0].Code)

		var count int64
		require.NoError(t, env.db.Model(&model.VendorTransaction{}).
			Where("vendor_id = ?", resp.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("negative opening is rejected", func(t *testing.T) {
		_, err := env.parties.CreateCustomer(ctx, "", CreateCustomerRequest{
			Name:           "Bad",
			OpeningDeposit: "-10",
		})
		var validationErr *apperr.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestUpdatePartyLeavesBalancesAlone(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	created, err := env.parties.CreateAgent(ctx, "", CreateAgentRequest{
		Name:          "GoTravel",
		OpeningCredit: "500",
	})
	require.NoError(t, err)

	updated, err := env.parties.UpdateAgent(ctx, "", created.ID, UpdateAgentRequest{
		Name:  "GoTravel Ltd",
		Phone: "0909000111",
	})
	require.NoError(t, err)
	assert.Equal(t, "GoTravel Ltd", updated.Name)
	assert.Equal(t, "500.00", updated.CreditBalance)
}

func TestUpdateVendorReplacesAirlines(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	created, err := env.parties.CreateVendor(ctx, "", CreateVendorRequest{
		Name: "SkyWings",
		Airlines: []VendorAirlineRequest{
			{Name: "Vietnam Airlines", Code: "VN"},
			{Name: "Bamboo Airways", Code: "QH"},
		},
	})
	require.NoError(t, err)

	updated, err := env.parties.UpdateVendor(ctx, "", created.ID, UpdateVendorRequest{
		Name: "SkyWings",
		Airlines: []VendorAirlineRequest{
			{Name: "Vietjet Air", Code: "VJ"},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Airlines, 1)
	assert.Equal(t, "VJ", updated.Airlines[0].Code)

	var count int64
	require.NoError(t, env.db.Model(&model.VendorAirline{}).
		Where("vendor_id = ?", created.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeletePartyCascadesLedger(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	created, err := env.parties.CreateAgent(ctx, "", CreateAgentRequest{
		Name:           "GoTravel",
		OpeningCredit:  "300",
		OpeningDeposit: "100",
	})
	require.NoError(t, err)

	require.NoError(t, env.parties.DeleteAgent(ctx, "", created.ID))

	_, err = env.parties.GetAgent(ctx, created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var count int64
	require.NoError(t, env.db.Model(&model.AgentTransaction{}).
		Where("agent_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)

	t.Run("deleting twice reports not found", func(t *testing.T) {
		err := env.parties.DeleteAgent(ctx, "", created.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestListCustomersSearch(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	for _, name := range []string{"Alice Tran", "Bao Nguyen", "Alina Pham"} {
		_, err := env.parties.CreateCustomer(ctx, "", CreateCustomerRequest{Name: name})
		require.NoError(t, err)
	}

	all, total, err := env.parties.ListCustomers(ctx, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	matched, total, err := env.parties.ListCustomers(ctx, "Ali", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, matched, 2)
}
