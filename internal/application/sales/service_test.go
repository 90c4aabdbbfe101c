package sales_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salesapp "github.com/retailerp/backend/internal/application/sales"
	"github.com/retailerp/backend/internal/domain/catalog"
	"github.com/retailerp/backend/internal/domain/inventory"
	"github.com/retailerp/backend/internal/domain/sales"
	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
	"github.com/retailerp/backend/internal/infrastructure/cache"
	"github.com/retailerp/backend/internal/testutil"
)

type fixture struct {
	svc      *salesapp.Service
	world    *testutil.World
	store    *catalog.Store
	loc      valueobject.Location
	productA *catalog.Product
	productB *catalog.Product
	cashier  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	world := testutil.NewWorld()

	store, err := catalog.NewStore(7, "Downtown", "")
	require.NoError(t, err)
	world.AddStore(store)
	loc := valueobject.StoreLocation(store.ID)

	productA, err := catalog.NewProduct("COFFEE-250", "Coffee 250g", decimal.NewFromFloat(10.00))
	require.NoError(t, err)
	productB, err := catalog.NewProduct("TEA-100", "Tea 100g", decimal.NewFromFloat(5.50))
	require.NoError(t, err)
	world.AddProduct(productA)
	world.AddProduct(productB)

	world.SetStock(productA.ID, loc, 10)
	world.SetStock(productB.ID, loc, 3)

	svc := salesapp.NewService(testutil.SalesScope{W: world}, world.ProductRepo(), world.StoreRepo())
	return &fixture{
		svc:      svc,
		world:    world,
		store:    store,
		loc:      loc,
		productA: productA,
		productB: productB,
		cashier:  uuid.New(),
	}
}

func (f *fixture) createInput(lines ...salesapp.CreateSaleLineInput) salesapp.CreateSaleInput {
	return salesapp.CreateSaleInput{
		Location:      f.loc,
		CashierID:     f.cashier,
		PaymentMethod: sales.PaymentMethodCash,
		Lines:         lines,
	}
}

func TestCreateSale(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path decrements stock and issues number", func(t *testing.T) {
		f := newFixture(t)

		sale, err := f.svc.CreateSale(ctx, f.createInput(
			salesapp.CreateSaleLineInput{ProductID: f.productA.ID, Quantity: 2},
			salesapp.CreateSaleLineInput{ProductID: f.productB.ID, Quantity: 1},
		))
		require.NoError(t, err)

		assert.Regexp(t, `^STR007-\d{8}-0001$`, sale.Number)
		assert.Equal(t, sales.SaleStatusCompleted, sale.Status)
		assert.True(t, decimal.NewFromFloat(25.50).Equal(sale.TotalAmount))

		assert.Equal(t, int64(8), f.world.StockQuantity(f.productA.ID, f.loc))
		assert.Equal(t, int64(2), f.world.StockQuantity(f.productB.ID, f.loc))

		// One outbound movement per line, referencing the sale number
		movements, err := f.world.MovementRepo().FindByReference(ctx, sale.Number)
		require.NoError(t, err)
		require.Len(t, movements, 2)
		for _, m := range movements {
			assert.Equal(t, inventory.MovementTypeSale, m.Type)
			assert.Negative(t, m.QuantityDelta)
		}

		actions, err := f.world.SaleActionRepo().FindBySale(ctx, sale.ID)
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, sales.ActionTypeCompleted, actions[0].Type)
	})

	t.Run("insufficient stock on any line rolls everything back", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateSale(ctx, f.createInput(
			salesapp.CreateSaleLineInput{ProductID: f.productA.ID, Quantity: 2},
			salesapp.CreateSaleLineInput{ProductID: f.productB.ID, Quantity: 4},
		))
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
		assert.Contains(t, domainErr.Message, "TEA-100")

		// No stock moved, no sale recorded, no number consumed
		assert.Equal(t, int64(10), f.world.StockQuantity(f.productA.ID, f.loc))
		assert.Equal(t, int64(3), f.world.StockQuantity(f.productB.ID, f.loc))
		assert.Empty(t, f.world.Sales)
		assert.Empty(t, f.world.Movements)

		sale, err := f.svc.CreateSale(ctx, f.createInput(
			salesapp.CreateSaleLineInput{ProductID: f.productA.ID, Quantity: 1},
		))
		require.NoError(t, err)
		assert.Regexp(t, `-0001$`, sale.Number, "failed sale must not consume a sequence value")
	})

	t.Run("selling the last unit works, one more does not", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateSale(ctx, f.createInput(
			salesapp.CreateSaleLineInput{ProductID: f.productB.ID, Quantity: 3},
		))
		require.NoError(t, err)
		assert.Equal(t, int64(0), f.world.StockQuantity(f.productB.ID, f.loc))

		_, err = f.svc.CreateSale(ctx, f.createInput(
			salesapp.CreateSaleLineInput{ProductID: f.productB.ID, Quantity: 1},
		))
		assert.Error(t, err)
	})

	t.Run("unknown product rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateSale(ctx, f.createInput(
			salesapp.CreateSaleLineInput{ProductID: uuid.New(), Quantity: 1},
		))
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("duplicate idempotency key rejected before any mutation", func(t *testing.T) {
		f := newFixture(t)
		f.svc.SetIdempotencyStore(cache.NewMemoryIdempotencyStore(), shared.DefaultIdempotencyConfig())

		input := f.createInput(salesapp.CreateSaleLineInput{ProductID: f.productA.ID, Quantity: 1})
		input.IdempotencyKey = "pos-1-receipt-77"

		_, err := f.svc.CreateSale(ctx, input)
		require.NoError(t, err)

		_, err = f.svc.CreateSale(ctx, input)
		assert.ErrorIs(t, err, shared.ErrDuplicateRequest)
		assert.Equal(t, int64(9), f.world.StockQuantity(f.productA.ID, f.loc))
	})
}

func TestRefundSale(t *testing.T) {
	ctx := context.Background()

	t.Run("partial refund restores stock for refunded lines only", func(t *testing.T) {
		f := newFixture(t)
		sale, err := f.svc.CreateSale(ctx, f.createInput(
			salesapp.CreateSaleLineInput{ProductID: f.productA.ID, Quantity: 5},
		))
		require.NoError(t, err)
		require.Equal(t, int64(5), f.world.StockQuantity(f.productA.ID, f.loc))

		refunded, err := f.svc.RefundSale(ctx, salesapp.RefundInput{
			SaleID:  sale.ID,
			ActorID: f.cashier,
			Lines:   []sales.LineRefund{{LineID: sale.Lines[0].ID, Quantity: 2}},
		})
		require.NoError(t, err)

		assert.Equal(t, sales.SaleStatusRefunded, refunded.Status)
		assert.Equal(t, int64(7), f.world.StockQuantity(f.productA.ID, f.loc))
		// Header total stays as originally charged
		assert.True(t, decimal.NewFromFloat(50.00).Equal(refunded.TotalAmount))

		actions, err := f.world.SaleActionRepo().FindBySale(ctx, sale.ID)
		require.NoError(t, err)
		require.Len(t, actions, 2)
		assert.Equal(t, sales.ActionTypeRefunded, actions[1].Type)
		assert.True(t, decimal.NewFromFloat(20.00).Equal(actions[1].Amount))
	})

	t.Run("no line list refunds every line in full", func(t *testing.T) {
		f := newFixture(t)
		sale, err := f.svc.CreateSale(ctx, f.createInput(
			salesapp.CreateSaleLineInput{ProductID: f.productA.ID, Quantity: 4},
			salesapp.CreateSaleLineInput{ProductID: f.productB.ID, Quantity: 2},
		))
		require.NoError(t, err)

		refunded, err := f.svc.RefundSale(ctx, salesapp.RefundInput{
			SaleID:  sale.ID,
			ActorID: f.cashier,
			Note:    "order placed twice",
		})
		require.NoError(t, err)

		assert.Equal(t, sales.SaleStatusRefunded, refunded.Status)
		assert.Equal(t, int64(10), f.world.StockQuantity(f.productA.ID, f.loc))
		assert.Equal(t, int64(3), f.world.StockQuantity(f.productB.ID, f.loc))
		for _, line := range refunded.Lines {
			assert.Equal(t, line.Quantity, line.RefundedQuantity)
		}

		actions, err := f.world.SaleActionRepo().FindBySale(ctx, sale.ID)
		require.NoError(t, err)
		require.Len(t, actions, 2)
		assert.True(t, sale.TotalAmount.Equal(actions[1].Amount))
	})

	t.Run("over-refund fails without touching stock", func(t *testing.T) {
		f := newFixture(t)
		sale, err := f.svc.CreateSale(ctx, f.createInput(
			salesapp.CreateSaleLineInput{ProductID: f.productA.ID, Quantity: 2},
		))
		require.NoError(t, err)

		_, err = f.svc.RefundSale(ctx, salesapp.RefundInput{
			SaleID:  sale.ID,
			ActorID: f.cashier,
			Lines:   []sales.LineRefund{{LineID: sale.Lines[0].ID, Quantity: 3}},
		})
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
		assert.Equal(t, int64(8), f.world.StockQuantity(f.productA.ID, f.loc))
	})

	t.Run("unknown sale", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.RefundSale(ctx, salesapp.RefundInput{SaleID: uuid.New(), ActorID: f.cashier})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCancelSale(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel restores the full quantity of every line", func(t *testing.T) {
		f := newFixture(t)
		sale, err := f.svc.CreateSale(ctx, f.createInput(
			salesapp.CreateSaleLineInput{ProductID: f.productA.ID, Quantity: 4},
			salesapp.CreateSaleLineInput{ProductID: f.productB.ID, Quantity: 2},
		))
		require.NoError(t, err)

		cancelled, err := f.svc.CancelSale(ctx, salesapp.CancelInput{
			SaleID: sale.ID, ActorID: f.cashier, Note: "customer walked out",
		})
		require.NoError(t, err)

		assert.Equal(t, sales.SaleStatusCancelled, cancelled.Status)
		assert.Equal(t, int64(10), f.world.StockQuantity(f.productA.ID, f.loc))
		assert.Equal(t, int64(3), f.world.StockQuantity(f.productB.ID, f.loc))
	})

	t.Run("cancel after refund rejected", func(t *testing.T) {
		f := newFixture(t)
		sale, err := f.svc.CreateSale(ctx, f.createInput(
			salesapp.CreateSaleLineInput{ProductID: f.productA.ID, Quantity: 1},
		))
		require.NoError(t, err)

		_, err = f.svc.RefundSale(ctx, salesapp.RefundInput{
			SaleID:  sale.ID,
			ActorID: f.cashier,
			Lines:   []sales.LineRefund{{LineID: sale.Lines[0].ID, Quantity: 1}},
		})
		require.NoError(t, err)

		_, err = f.svc.CancelSale(ctx, salesapp.CancelInput{SaleID: sale.ID, ActorID: f.cashier})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestGetSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sale, err := f.svc.CreateSale(ctx, f.createInput(
		salesapp.CreateSaleLineInput{ProductID: f.productA.ID, Quantity: 1},
	))
	require.NoError(t, err)

	details, err := f.svc.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.Number, details.Sale.Number)
	assert.Len(t, details.Actions, 1)
}
