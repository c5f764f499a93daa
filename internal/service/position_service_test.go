package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/testutil"
)

func openAAPL(t *testing.T, svc testutil.Services, owner string) model.PositionValuation {
	t.Helper()
	p, err := svc.Positions.OpenPosition(context.Background(), owner, request.CreatePositionRequest{
		Symbol:    "aapl",
		Name:      "Apple Inc.",
		AssetKind: "STOCK",
		Quantity:  10,
		Price:     100,
	})
	require.NoError(t, err)
	return p
}

func trade(t *testing.T, svc testutil.Services, owner, positionID, kind string, quantity, price float64) (model.TransactionResponse, error) {
	t.Helper()
	return svc.Positions.ApplyTransaction(context.Background(), owner, request.CreateTransactionRequest{
		PositionID:   positionID,
		Kind:         kind,
		Quantity:     quantity,
		PricePerUnit: price,
	})
}

func TestPositionService_OpenPosition(t *testing.T) {
	ctx := context.Background()

	t.Run("opens with a journaled BUY", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()

		p := openAAPL(t, svc, owner)
		assert.Equal(t, "AAPL", p.Symbol)
		assert.Equal(t, 10.0, p.Quantity)
		assert.Equal(t, 100.0, p.AverageCost)
		assert.Equal(t, 100.0, p.LastTradedPrice)
		assert.Equal(t, 1000.0, p.CurrentValue)
		assert.Zero(t, p.GainLoss)

		entries, err := svc.Store.Journal().ListForPosition(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, model.TransactionKindBuy, entries[0].Kind)
		assert.Equal(t, 10.0, entries[0].Quantity)
		assert.Equal(t, 1000.0, entries[0].TotalAmount)
	})

	t.Run("duplicate symbol conflicts regardless of case", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		openAAPL(t, svc, owner)

		_, err := svc.Positions.OpenPosition(ctx, owner, request.CreatePositionRequest{
			Symbol: " AAPL", AssetKind: "STOCK", Quantity: 1, Price: 1,
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)

		count, err := svc.Store.Journal().CountForOwner(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "a rejected open must not journal anything")
	})

	t.Run("other owners may hold the same symbol", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		openAAPL(t, svc, testutil.MakeID())
		openAAPL(t, svc, testutil.MakeID())
	})

	t.Run("concurrent opens of one symbol create exactly one position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded, conflicted := 0, 0
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Positions.OpenPosition(ctx, owner, request.CreatePositionRequest{
					Symbol: "msft", AssetKind: "STOCK", Quantity: 1, Price: 10,
				})
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					succeeded++
				} else if assert.ErrorIs(t, err, apperrors.ErrConflict) {
					conflicted++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 7, conflicted)
	})

	rejected := []struct {
		name string
		req  request.CreatePositionRequest
		want error
	}{
		{"blank symbol", request.CreatePositionRequest{Symbol: "  ", AssetKind: "STOCK", Quantity: 1, Price: 1}, apperrors.ErrInvalidSymbol},
		{"unknown asset kind", request.CreatePositionRequest{Symbol: "X", AssetKind: "CRYPTO", Quantity: 1, Price: 1}, apperrors.ErrInvalidAssetKind},
		{"zero quantity", request.CreatePositionRequest{Symbol: "X", AssetKind: "ETF", Quantity: 0, Price: 1}, apperrors.ErrNonPositiveQuantity},
		{"negative price", request.CreatePositionRequest{Symbol: "X", AssetKind: "BOND", Quantity: 1, Price: -5}, apperrors.ErrNonPositivePrice},
	}
	for _, tc := range rejected {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			svc := testutil.NewTestServices(t, db)

			_, err := svc.Positions.OpenPosition(ctx, testutil.MakeID(), tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		})
	}
}

func TestPositionService_ApplyTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("buy moves the weighted average and sell preserves it", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := openAAPL(t, svc, owner)

		_, err := trade(t, svc, owner, p.ID, "BUY", 10, 200)
		require.NoError(t, err)

		got, err := svc.Positions.GetPosition(ctx, owner, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 20.0, got.Quantity)
		assert.Equal(t, 150.0, got.AverageCost)

		entry, err := trade(t, svc, owner, p.ID, "sell", 5, 300)
		require.NoError(t, err)
		assert.Equal(t, model.TransactionKindSell, entry.Kind)
		assert.Equal(t, "AAPL", entry.Symbol)

		got, err = svc.Positions.GetPosition(ctx, owner, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 15.0, got.Quantity)
		assert.Equal(t, 150.0, got.AverageCost)
		assert.Equal(t, 300.0, got.LastTradedPrice)
	})

	t.Run("oversell changes neither position nor journal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := openAAPL(t, svc, owner)

		_, err := trade(t, svc, owner, p.ID, "SELL", 10.5, 120)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientHoldings)

		got, err := svc.Positions.GetPosition(ctx, owner, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 10.0, got.Quantity)
		assert.Equal(t, 100.0, got.LastTradedPrice)

		count, err := svc.Store.Journal().CountForOwner(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("selling everything leaves a zero position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := openAAPL(t, svc, owner)

		_, err := trade(t, svc, owner, p.ID, "SELL", 10, 90)
		require.NoError(t, err)

		got, err := svc.Positions.GetPosition(ctx, owner, p.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Quantity)
		assert.Zero(t, got.GainLossPercent)
	})

	t.Run("another owner's position is not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		p := openAAPL(t, svc, testutil.MakeID())

		_, err := trade(t, svc, testutil.MakeID(), p.ID, "BUY", 1, 1)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("entries are never dated before the newest journaled entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := testutil.NewPosition(owner).Build(t, db)
		future := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Microsecond)
		testutil.NewTransaction(p).WithTimestamp(future).Build(t, db)

		entry, err := trade(t, svc, owner, p.ID, "BUY", 1, 100)
		require.NoError(t, err)
		assert.False(t, entry.Timestamp.Before(future))
	})

	t.Run("concurrent buys lose no update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := openAAPL(t, svc, owner)

		const buyers = 20
		var wg sync.WaitGroup
		for i := 0; i < buyers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Positions.ApplyTransaction(ctx, owner, request.CreateTransactionRequest{
					PositionID: p.ID, Kind: "BUY", Quantity: 1, PricePerUnit: 100,
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := svc.Positions.GetPosition(ctx, owner, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 10.0+buyers, got.Quantity)

		count, err := svc.Store.Journal().CountForOwner(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, 1+buyers, count)
	})

	t.Run("journal replay reproduces the stored state", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := openAAPL(t, svc, owner)

		steps := []struct {
			kind     string
			quantity float64
			price    float64
		}{
			{"BUY", 3.25, 101.7}, {"SELL", 4, 99.1}, {"BUY", 0.5, 120.03}, {"SELL", 1.125, 130}, {"BUY", 7, 88.8},
		}
		for _, s := range steps {
			_, err := trade(t, svc, owner, p.ID, s.kind, s.quantity, s.price)
			require.NoError(t, err)
		}

		report, err := svc.Audit.ReconcilePosition(ctx, owner, p.ID)
		require.NoError(t, err)
		assert.True(t, report.Consistent)
		assert.Equal(t, report.StoredQuantity, report.ReplayedQuantity)
		assert.Equal(t, report.StoredAverageCost, report.ReplayedAverageCost)
		assert.Equal(t, len(steps)+1, report.EntryCount)
	})
}

func TestPositionService_UpdatePosition(t *testing.T) {
	ctx := context.Background()
	str := func(s string) *string { return &s }
	num := func(f float64) *float64 { return &f }

	t.Run("corrects fields without journaling", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := openAAPL(t, svc, owner)

		got, err := svc.Positions.UpdatePosition(ctx, owner, p.ID, request.UpdatePositionRequest{
			Symbol:          str("aapl.us"),
			Name:            str("Apple"),
			LastTradedPrice: num(125),
		})
		require.NoError(t, err)
		assert.Equal(t, "AAPL.US", got.Symbol)
		assert.Equal(t, "Apple", got.Name)
		assert.Equal(t, 125.0, got.LastTradedPrice)
		assert.Equal(t, 100.0, got.AverageCost)
		assert.Equal(t, 250.0, got.GainLoss)

		count, err := svc.Store.Journal().CountForOwner(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("symbol collision conflicts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := openAAPL(t, svc, owner)
		testutil.NewPosition(owner).WithSymbol("MSFT").Build(t, db)

		_, err := svc.Positions.UpdatePosition(ctx, owner, p.ID, request.UpdatePositionRequest{Symbol: str("msft")})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("keeping the own symbol is not a conflict", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := openAAPL(t, svc, owner)

		_, err := svc.Positions.UpdatePosition(ctx, owner, p.ID, request.UpdatePositionRequest{Symbol: str("AAPL")})
		assert.NoError(t, err)
	})

	t.Run("quantity override is reported by the audit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := openAAPL(t, svc, owner)

		_, err := svc.Positions.UpdatePosition(ctx, owner, p.ID, request.UpdatePositionRequest{Quantity: num(3)})
		require.NoError(t, err)

		reports, err := svc.Audit.Reconcile(ctx)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.False(t, reports[0].Consistent)
		assert.Equal(t, 3.0, reports[0].StoredQuantity)
		assert.Equal(t, 10.0, reports[0].ReplayedQuantity)
	})

	t.Run("invalid fields are rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := openAAPL(t, svc, owner)

		_, err := svc.Positions.UpdatePosition(ctx, owner, p.ID, request.UpdatePositionRequest{Quantity: num(-1)})
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

		_, err = svc.Positions.UpdatePosition(ctx, owner, p.ID, request.UpdatePositionRequest{LastTradedPrice: num(0)})
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

		got, err := svc.Positions.GetPosition(ctx, owner, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 10.0, got.Quantity)
	})
}

func TestPositionService_ClosePosition(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the position and its journal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := openAAPL(t, svc, owner)
		_, err := trade(t, svc, owner, p.ID, "BUY", 1, 1)
		require.NoError(t, err)

		require.NoError(t, svc.Positions.ClosePosition(ctx, owner, p.ID))

		_, err = svc.Positions.GetPosition(ctx, owner, p.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		count, err := svc.Store.Journal().CountForOwner(ctx, owner)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("another owner cannot close it", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		owner := testutil.MakeID()
		p := openAAPL(t, svc, owner)

		err := svc.Positions.ClosePosition(ctx, testutil.MakeID(), p.ID)
		assert.ErrorIs(t, err, apperrors.ErrPositionNotFound)

		_, err = svc.Positions.GetPosition(ctx, owner, p.ID)
		assert.NoError(t, err)
	})
}

func TestPositionService_ListPositions(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestServices(t, db)
	owner := testutil.MakeID()

	testutil.NewPosition(owner).WithSymbol("VTI").Build(t, db)
	testutil.NewPosition(owner).WithSymbol("AAPL").WithHolding(2, 50).WithLastTradedPrice(75).Build(t, db)
	testutil.NewPosition(testutil.MakeID()).WithSymbol("BND").Build(t, db)

	positions, err := svc.Positions.ListPositions(ctx, owner)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, "AAPL", positions[0].Symbol)
	assert.Equal(t, 50.0, positions[0].GainLoss)
	assert.Equal(t, "VTI", positions[1].Symbol)
}
