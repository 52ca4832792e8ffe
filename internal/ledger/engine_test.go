package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mclasstourism/travelbill-sub003/internal/apperr"
	"github.com/mclasstourism/travelbill-sub003/internal/database"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
	"github.com/mclasstourism/travelbill-sub003/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and
	// serializes writers the way a row lock would.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestEngine(t *testing.T, policy Policy) (*Engine, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)

	engine := NewEngine(
		repository.NewCustomerRepository(db),
		repository.NewAgentRepository(db),
		repository.NewVendorRepository(db),
		repository.NewLedgerRepository(db),
		repository.NewTransactionManager(db),
		policy,
	)
	return engine, db
}

func seedCustomer(t *testing.T, db *gorm.DB, balance string) *model.Customer {
	t.Helper()
	customer := &model.Customer{
		Name:           "Test Customer",
		DepositBalance: decimal.RequireFromString(balance),
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func seedAgent(t *testing.T, db *gorm.DB, credit, deposit string) *model.Agent {
	t.Helper()
	agent := &model.Agent{
		Name:           "Test Agent",
		CreditBalance:  decimal.RequireFromString(credit),
		DepositBalance: decimal.RequireFromString(deposit),
	}
	require.NoError(t, db.Create(agent).Error)
	return agent
}

func seedVendor(t *testing.T, db *gorm.DB, credit, deposit string) *model.Vendor {
	t.Helper()
	vendor := &model.Vendor{
		Name:           "Test Vendor",
		CreditBalance:  decimal.RequireFromString(credit),
		DepositBalance: decimal.RequireFromString(deposit),
	}
	require.NoError(t, db.Create(vendor).Error)
	return vendor
}

func TestApplyCustomerDeposit(t *testing.T) {
	engine, db := newTestEngine(t, PolicyPermissive)
	ctx := context.Background()
	customer := seedCustomer(t, db, "100")

	t.Run("increase writes balance and history row", func(t *testing.T) {
		entry, err := engine.Apply(ctx, Mutation{
			PartyType: model.PartyTypeCustomer,
			PartyID:   customer.ID,
			Pool:      model.TxPoolDeposit,
			Direction: DirectionIncrease,
			Amount:    decimal.RequireFromString("50"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.TxTypeCredit, entry.Type)
		assert.True(t, entry.BalanceAfter.Equal(decimal.RequireFromString("150")))

		var stored model.Customer
		require.NoError(t, db.First(&stored, "id = ?", customer.ID).Error)
		assert.True(t, stored.DepositBalance.Equal(decimal.RequireFromString("150")))
	})

	t.Run("decrease tags debit and snapshots balance", func(t *testing.T) {
		entry, err := engine.Apply(ctx, Mutation{
			PartyType: model.PartyTypeCustomer,
			PartyID:   customer.ID,
			Pool:      model.TxPoolDeposit,
			Direction: DirectionDecrease,
			Amount:    decimal.RequireFromString("30"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.TxTypeDebit, entry.Type)
		assert.True(t, entry.BalanceAfter.Equal(decimal.RequireFromString("120")))
	})

	t.Run("customer credit pool is rejected", func(t *testing.T) {
		_, err := engine.Apply(ctx, Mutation{
			PartyType: model.PartyTypeCustomer,
			PartyID:   customer.ID,
			Pool:      model.TxPoolCredit,
			Direction: DirectionIncrease,
			Amount:    decimal.RequireFromString("10"),
		})
		var validationErr *apperr.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestApplyValidation(t *testing.T) {
	engine, db := newTestEngine(t, PolicyPermissive)
	ctx := context.Background()
	customer := seedCustomer(t, db, "0")

	cases := []struct {
		name     string
		mutation Mutation
	}{
		{"zero amount", Mutation{
			PartyType: model.PartyTypeCustomer, PartyID: customer.ID,
			Pool: model.TxPoolDeposit, Direction: DirectionIncrease, Amount: decimal.Zero,
		}},
		{"negative amount", Mutation{
			PartyType: model.PartyTypeCustomer, PartyID: customer.ID,
			Pool: model.TxPoolDeposit, Direction: DirectionIncrease,
			Amount: decimal.RequireFromString("-5"),
		}},
		{"unknown pool", Mutation{
			PartyType: model.PartyTypeCustomer, PartyID: customer.ID,
			Pool: "savings", Direction: DirectionIncrease,
			Amount: decimal.RequireFromString("5"),
		}},
		{"unknown direction", Mutation{
			PartyType: model.PartyTypeCustomer, PartyID: customer.ID,
			Pool: model.TxPoolDeposit, Direction: "sideways",
			Amount: decimal.RequireFromString("5"),
		}},
		{"unknown party type", Mutation{
			PartyType: "supplier", PartyID: customer.ID,
			Pool: model.TxPoolDeposit, Direction: DirectionIncrease,
			Amount: decimal.RequireFromString("5"),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Apply(ctx, tc.mutation)
			var validationErr *apperr.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	t.Run("missing party", func(t *testing.T) {
		_, err := engine.Apply(ctx, Mutation{
			PartyType: model.PartyTypeAgent,
			PartyID:   customer.ID, // no agent with this id
			Pool:      model.TxPoolCredit,
			Direction: DirectionIncrease,
			Amount:    decimal.RequireFromString("5"),
		})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestDirectionTags(t *testing.T) {
	engine, db := newTestEngine(t, PolicyPermissive)
	ctx := context.Background()
	agent := seedAgent(t, db, "100", "100")
	vendor := seedVendor(t, db, "100", "100")

	t.Run("agent deposit decrease tags deposit_debit", func(t *testing.T) {
		entry, err := engine.Apply(ctx, Mutation{
			PartyType: model.PartyTypeAgent, PartyID: agent.ID,
			Pool: model.TxPoolDeposit, Direction: DirectionDecrease,
			Amount: decimal.RequireFromString("10"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.TxTypeDepositDebit, entry.Type)
		assert.Equal(t, model.TxPoolDeposit, entry.TransactionType)
	})

	t.Run("agent credit decrease tags debit", func(t *testing.T) {
		entry, err := engine.Apply(ctx, Mutation{
			PartyType: model.PartyTypeAgent, PartyID: agent.ID,
			Pool: model.TxPoolCredit, Direction: DirectionDecrease,
			Amount: decimal.RequireFromString("10"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.TxTypeDebit, entry.Type)
	})

	t.Run("vendor deposit decrease tags deposit_debit", func(t *testing.T) {
		entry, err := engine.Apply(ctx, Mutation{
			PartyType: model.PartyTypeVendor, PartyID: vendor.ID,
			Pool: model.TxPoolDeposit, Direction: DirectionDecrease,
			Amount: decimal.RequireFromString("10"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.TxTypeDepositDebit, entry.Type)
	})

	t.Run("vendor increase tags credit", func(t *testing.T) {
		entry, err := engine.Apply(ctx, Mutation{
			PartyType: model.PartyTypeVendor, PartyID: vendor.ID,
			Pool: model.TxPoolCredit, Direction: DirectionIncrease,
			Amount: decimal.RequireFromString("25"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.TxTypeCredit, entry.Type)
	})
}

func TestBalancePolicy(t *testing.T) {
	t.Run("permissive allows overdraft", func(t *testing.T) {
		engine, db := newTestEngine(t, PolicyPermissive)
		customer := seedCustomer(t, db, "10")

		entry, err := engine.Apply(context.Background(), Mutation{
			PartyType: model.PartyTypeCustomer, PartyID: customer.ID,
			Pool: model.TxPoolDeposit, Direction: DirectionDecrease,
			Amount: decimal.RequireFromString("25"),
		})
		require.NoError(t, err)
		assert.True(t, entry.BalanceAfter.Equal(decimal.RequireFromString("-15")))
	})

	t.Run("strict rejects overdraft and keeps balance", func(t *testing.T) {
		engine, db := newTestEngine(t, PolicyStrict)
		customer := seedCustomer(t, db, "10")

		_, err := engine.Apply(context.Background(), Mutation{
			PartyType: model.PartyTypeCustomer, PartyID: customer.ID,
			Pool: model.TxPoolDeposit, Direction: DirectionDecrease,
			Amount: decimal.RequireFromString("25"),
		})
		var fundsErr *apperr.InsufficientFundsError
		require.ErrorAs(t, err, &fundsErr)
		assert.True(t, fundsErr.Balance.Equal(decimal.RequireFromString("10")))

		var stored model.Customer
		require.NoError(t, db.First(&stored, "id = ?", customer.ID).Error)
		assert.True(t, stored.DepositBalance.Equal(decimal.RequireFromString("10")))

		var count int64
		require.NoError(t, db.Model(&model.DepositTransaction{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("strict allows decrease to exactly zero", func(t *testing.T) {
		engine, db := newTestEngine(t, PolicyStrict)
		customer := seedCustomer(t, db, "10")

		entry, err := engine.Apply(context.Background(), Mutation{
			PartyType: model.PartyTypeCustomer, PartyID: customer.ID,
			Pool: model.TxPoolDeposit, Direction: DirectionDecrease,
			Amount: decimal.RequireFromString("10"),
		})
		require.NoError(t, err)
		assert.True(t, entry.BalanceAfter.IsZero())
	})
}

func TestConcurrentDecrements(t *testing.T) {
	engine, db := newTestEngine(t, PolicyPermissive)
	const workers = 20
	customer := seedCustomer(t, db, "20")

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Apply(context.Background(), Mutation{
				PartyType: model.PartyTypeCustomer, PartyID: customer.ID,
				Pool: model.TxPoolDeposit, Direction: DirectionDecrease,
				Amount: decimal.RequireFromString("1"),
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	var stored model.Customer
	require.NoError(t, db.First(&stored, "id = ?", customer.ID).Error)
	assert.True(t, stored.DepositBalance.IsZero(), "expected 0, got %s", stored.DepositBalance)

	var count int64
	require.NoError(t, db.Model(&model.DepositTransaction{}).Count(&count).Error)
	assert.EqualValues(t, workers, count)
}

// The ledger must replay to the stored balance: starting from zero and
// applying every row's signed amount in order lands on the party's
// current balance, and each row's snapshot matches the running total.
func TestLedgerReplay(t *testing.T) {
	engine, db := newTestEngine(t, PolicyPermissive)
	ctx := context.Background()
	agent := seedAgent(t, db, "0", "0")

	steps := []struct {
		direction Direction
		amount    string
	}{
		{DirectionIncrease, "100"},
		{DirectionDecrease, "40"},
		{DirectionIncrease, "15.50"},
		{DirectionDecrease, "75.25"},
	}
	for _, s := range steps {
		_, err := engine.Apply(ctx, Mutation{
			PartyType: model.PartyTypeAgent, PartyID: agent.ID,
			Pool: model.TxPoolCredit, Direction: s.direction,
			Amount: decimal.RequireFromString(s.amount),
		})
		require.NoError(t, err)
	}

	var rows []model.AgentTransaction
	require.NoError(t, db.Where("agent_id = ?", agent.ID).Order("created_at ASC, id ASC").Find(&rows).Error)
	require.Len(t, rows, len(steps))

	running := decimal.Zero
	for _, row := range rows {
		if row.Type == model.TxTypeCredit {
			running = running.Add(row.Amount)
		} else {
			running = running.Sub(row.Amount)
		}
		assert.True(t, row.BalanceAfter.Equal(running),
			"snapshot %s does not match running total %s", row.BalanceAfter, running)
	}

	var stored model.Agent
	require.NoError(t, db.First(&stored, "id = ?", agent.ID).Error)
	assert.True(t, stored.CreditBalance.Equal(running))
}
