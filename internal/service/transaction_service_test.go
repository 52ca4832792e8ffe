package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mclasstourism/travelbill-sub003/internal/apperr"
	"github.com/mclasstourism/travelbill-sub003/internal/ledger"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
)

func TestPostTransaction(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	customer := env.seedCustomer(t, "Alice Tran", "100")

	t.Run("manual top-up", func(t *testing.T) {
		resp, err := env.transactions.PostTransaction(ctx, "", PostTransactionRequest{
			PartyType:     model.PartyTypeCustomer,
			PartyID:       customer.ID.String(),
			Pool:          model.TxPoolDeposit,
			Direction:     string(ledger.DirectionIncrease),
			Amount:        "50",
			Description:   "Cash deposit at counter",
			PaymentMethod: model.PaymentMethodCash,
		})
		require.NoError(t, err)
		assert.Equal(t, model.TxTypeCredit, resp.Type)
		assert.Equal(t, "150.00", resp.BalanceAfter)
		assert.Nil(t, resp.ReferenceID)
		assert.True(t, env.customerBalance(t, customer.ID).Equal(dec("150")))
	})

	t.Run("unknown party", func(t *testing.T) {
		_, err := env.transactions.PostTransaction(ctx, "", PostTransactionRequest{
			PartyType: model.PartyTypeAgent,
			PartyID:   uuid.NewString(),
			Pool:      model.TxPoolCredit,
			Direction: string(ledger.DirectionIncrease),
			Amount:    "10",
		})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		_, err := env.transactions.PostTransaction(ctx, "", PostTransactionRequest{
			PartyType: model.PartyTypeCustomer,
			PartyID:   customer.ID.String(),
			Pool:      model.TxPoolDeposit,
			Direction: string(ledger.DirectionIncrease),
			Amount:    "0",
		})
		var validationErr *apperr.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestListPartyTransactions(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	agent := env.seedAgent(t, "GoTravel", "0", "0")

	for _, amount := range []string{"100", "40", "25"} {
		_, err := env.transactions.PostTransaction(ctx, "", PostTransactionRequest{
			PartyType: model.PartyTypeAgent,
			PartyID:   agent.ID.String(),
			Pool:      model.TxPoolCredit,
			Direction: string(ledger.DirectionIncrease),
			Amount:    amount,
		})
		require.NoError(t, err)
	}

	rows, total, err := env.transactions.ListPartyTransactions(ctx, model.PartyTypeAgent, agent.ID.String(), 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, agent.ID.String(), row.PartyID)
		assert.Equal(t, model.PartyTypeAgent, row.PartyType)
	}

	_, _, err = env.transactions.ListPartyTransactions(ctx, model.PartyTypeVendor, agent.ID.String(), 1, 20)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
