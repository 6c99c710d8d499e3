package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/franciscosanchezn/trattoria-api/internal/events"
	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestOrderService(db *gorm.DB) (*orderService, *events.RecordingPublisher) {
	publisher := &events.RecordingPublisher{}
	svc := NewOrderService(db, publisher).(*orderService)
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC) }
	return svc, publisher
}

func assertTotalMatchesLines(t *testing.T, db *gorm.DB, orderID uint) {
	t.Helper()
	var order models.Order
	require.NoError(t, db.Preload("Lines").First(&order, orderID).Error)

	var sum float64
	for _, line := range order.Lines {
		sum += line.Subtotal
	}
	assert.InDelta(t, models.RoundMoney(sum), order.Total, 0.001)
}

func tableOccupied(t *testing.T, db *gorm.DB, id uint) bool {
	t.Helper()
	var table models.Table
	require.NoError(t, db.First(&table, id).Error)
	return table.Occupied
}

func TestCreateOrder(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc, publisher := newTestOrderService(db)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, actorFor(f.waiter), f.table1.ID, []OrderItem{
		{DishID: f.carbonara.ID, Quantity: 2},
		{DishID: f.lasagna.ID, Quantity: 1},
		{DishID: f.carbonara.ID, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusWaiting, order.Status)
	require.Len(t, order.Lines, 2, "repeated dishes are merged")
	assert.Equal(t, uint(3), order.Lines[0].Quantity)
	assert.InDelta(t, 37.50, order.Lines[0].Subtotal, 0.001)
	assert.InDelta(t, 47.49, order.Total, 0.001)
	require.NotNil(t, order.Table)
	assert.Equal(t, uint(1), order.Table.Number)
	assert.True(t, tableOccupied(t, db, f.table1.ID))
	assertTotalMatchesLines(t, db, order.ID)

	published := publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.OrderCreated, published[0].Type)
	assert.Equal(t, uint(1), published[0].TableNumber)
	assert.Equal(t, f.waiter.ID, published[0].WaiterID)
	assert.Len(t, published[0].Lines, 2)
}

func TestCreateOrderValidation(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc, publisher := newTestOrderService(db)
	ctx := context.Background()
	waiter := actorFor(f.waiter)

	testCases := []struct {
		name    string
		tableID uint
		items   []OrderItem
		err     error
	}{
		{"missing table", 0, []OrderItem{{DishID: f.carbonara.ID, Quantity: 1}}, ErrMissingTable},
		{"no dishes", f.table1.ID, nil, ErrMissingDishes},
		{"zero quantity", f.table1.ID, []OrderItem{{DishID: f.carbonara.ID, Quantity: 0}}, ErrInvalidQuantity},
		{"unknown table", 999, []OrderItem{{DishID: f.carbonara.ID, Quantity: 1}}, ErrTableNotFound},
		{"unknown dish", f.table1.ID, []OrderItem{{DishID: 999, Quantity: 1}}, ErrDishNotFound},
		{"unavailable dish", f.table1.ID, []OrderItem{{DishID: f.tiramisu.ID, Quantity: 1}}, ErrDishUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, waiter, tc.tableID, tc.items)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	// failed attempts leave the table free and publish nothing
	assert.False(t, tableOccupied(t, db, f.table1.ID))
	assert.Empty(t, publisher.Events())

	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
}

func TestCreateOrderRejectsOccupiedTable(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc, _ := newTestOrderService(db)
	ctx := context.Background()
	items := []OrderItem{{DishID: f.lasagna.ID, Quantity: 1}}

	_, err := svc.CreateOrder(ctx, actorFor(f.waiter), f.table1.ID, items)
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, actorFor(f.other), f.table1.ID, items)
	assert.ErrorIs(t, err, ErrTableOccupied)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAddAndRemoveLines(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc, _ := newTestOrderService(db)
	ctx := context.Background()
	waiter := actorFor(f.waiter)

	order, err := svc.CreateOrder(ctx, waiter, f.table1.ID, []OrderItem{{DishID: f.carbonara.ID, Quantity: 1}})
	require.NoError(t, err)

	order, err = svc.AddLine(ctx, waiter, order.ID, OrderItem{DishID: f.lasagna.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Len(t, order.Lines, 2)
	assert.InDelta(t, 32.48, order.Total, 0.001)

	order, err = svc.AddLine(ctx, waiter, order.ID, OrderItem{DishID: f.carbonara.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, order.Lines, 2, "same dish increases the existing line")
	assert.InDelta(t, 44.98, order.Total, 0.001)
	assertTotalMatchesLines(t, db, order.ID)

	lasagnaLine := order.Lines[1]
	order, err = svc.RemoveLine(ctx, waiter, order.ID, lasagnaLine.ID)
	require.NoError(t, err)
	assert.Len(t, order.Lines, 1)
	assert.InDelta(t, 25.00, order.Total, 0.001)
	assertTotalMatchesLines(t, db, order.ID)

	_, err = svc.RemoveLine(ctx, waiter, order.ID, lasagnaLine.ID)
	assert.ErrorIs(t, err, ErrOrderLineNotFound)

	_, err = svc.AddLine(ctx, waiter, order.ID, OrderItem{DishID: f.tiramisu.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrDishUnavailable)

	_, err = svc.AddLine(ctx, waiter, order.ID, OrderItem{DishID: f.lasagna.ID})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestOrderOwnership(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc, _ := newTestOrderService(db)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, actorFor(f.waiter), f.table1.ID, []OrderItem{{DishID: f.carbonara.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, actorFor(f.other), order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AddLine(ctx, actorFor(f.other), order.ID, OrderItem{DishID: f.lasagna.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CloseOrder(ctx, actorFor(f.other), order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.GetOrder(ctx, actorFor(f.admin), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.GetOrder(ctx, actorFor(f.admin), 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc, publisher := newTestOrderService(db)
	ctx := context.Background()
	waiter := actorFor(f.waiter)

	order, err := svc.CreateOrder(ctx, waiter, f.table1.ID, []OrderItem{{DishID: f.carbonara.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, waiter, order.ID, "served")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, waiter, order.ID, models.StatusWaiting)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	order, err = svc.UpdateStatus(ctx, waiter, order.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, order.Status)

	_, err = svc.UpdateStatus(ctx, waiter, order.ID, models.StatusWaiting)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	order, err = svc.UpdateStatus(ctx, waiter, order.ID, models.StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, order.Status)
	assert.False(t, tableOccupied(t, db, f.table1.ID))

	_, err = svc.UpdateStatus(ctx, waiter, order.ID, models.StatusInProgress)
	assert.ErrorIs(t, err, ErrOrderClosed)

	var types []string
	for _, e := range publisher.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{events.OrderCreated, events.OrderStatusChanged, events.OrderClosed}, types)
}

func TestCloseOrder(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc, _ := newTestOrderService(db)
	ctx := context.Background()
	waiter := actorFor(f.waiter)

	order, err := svc.CreateOrder(ctx, waiter, f.table2.ID, []OrderItem{{DishID: f.lasagna.ID, Quantity: 3}})
	require.NoError(t, err)
	require.True(t, tableOccupied(t, db, f.table2.ID))

	closed, err := svc.CloseOrder(ctx, waiter, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
	assert.True(t, closed.ClosedAt.Equal(svc.now()))
	assert.InDelta(t, 29.97, closed.Total, 0.001)
	assert.False(t, tableOccupied(t, db, f.table2.ID))

	_, err = svc.CloseOrder(ctx, waiter, order.ID)
	assert.ErrorIs(t, err, ErrOrderClosed)

	_, err = svc.AddLine(ctx, waiter, order.ID, OrderItem{DishID: f.carbonara.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrOrderClosed)

	// the freed table accepts a new order
	_, err = svc.CreateOrder(ctx, waiter, f.table2.ID, []OrderItem{{DishID: f.carbonara.ID, Quantity: 1}})
	assert.NoError(t, err)
}

func TestListOrders(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc, _ := newTestOrderService(db)
	ctx := context.Background()
	items := []OrderItem{{DishID: f.carbonara.ID, Quantity: 1}}

	first, err := svc.CreateOrder(ctx, actorFor(f.waiter), f.table1.ID, items)
	require.NoError(t, err)
	second, err := svc.CreateOrder(ctx, actorFor(f.other), f.table2.ID, items)
	require.NoError(t, err)
	_, err = svc.CloseOrder(ctx, actorFor(f.waiter), first.ID)
	require.NoError(t, err)

	all, err := svc.ListOrders(ctx, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	closed, err := svc.ListOrders(ctx, OrderFilter{Status: models.StatusClosed})
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, first.ID, closed[0].ID)

	byTable, err := svc.ListOrders(ctx, OrderFilter{TableID: f.table2.ID})
	require.NoError(t, err)
	require.Len(t, byTable, 1)

	mine, err := svc.ListWaiterOrders(ctx, f.other.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, second.ID, mine[0].ID)

	_, err = svc.ListOrders(ctx, OrderFilter{Status: "lost"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestMergeItems(t *testing.T) {
	merged, err := mergeItems([]OrderItem{{DishID: 2, Quantity: 1}, {DishID: 1, Quantity: 2}, {DishID: 2, Quantity: 4}})
	require.NoError(t, err)
	assert.Equal(t, []OrderItem{{DishID: 2, Quantity: 5}, {DishID: 1, Quantity: 2}}, merged)

	_, err = mergeItems([]OrderItem{{DishID: 0, Quantity: 1}})
	assert.ErrorIs(t, err, ErrMissingDishes)
}

func TestOrderMutationsLockTheOrderRow(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewOrderService(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE "orders"."id" = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "waiter_id"}).
			AddRow(3, models.StatusClosed, 2))
	mock.ExpectRollback()

	admin := Actor{UserID: 1, Role: models.RoleAdministrator}
	_, err := svc.AddLine(context.Background(), admin, 3, OrderItem{DishID: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrOrderClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
