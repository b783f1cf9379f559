package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mayacreations/boutique/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.Order{}, &models.OrderItem{},
	))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, status string) (*models.Order, models.Product, models.Product) {
	t.Helper()

	p1 := models.Product{Name: "bracelet", Price: 15, Stock: 3, CategoryID: 1}
	p2 := models.Product{Name: "collier", Price: 30, Stock: 5, CategoryID: 1}
	require.NoError(t, db.Create(&p1).Error)
	require.NoError(t, db.Create(&p2).Error)

	order := models.Order{
		Reference: uuid.NewString(),
		UserID:    1,
		Status:    status,
		Total:     60,
		Address:   "12 rue des Lilas",
		Items: []models.OrderItem{
			{ProductID: p1.ID, Quantity: 2, UnitPrice: 15},
			{ProductID: p2.ID, Quantity: 1, UnitPrice: 30},
		},
	}
	require.NoError(t, db.Create(&order).Error)
	return &order, p1, p2
}

func stockOf(t *testing.T, db *gorm.DB, id uint) uint {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func TestCancelRestoresStock(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	order, p1, p2 := seedOrder(t, db, models.OrderStatusProcessing)

	got, err := svc.Cancel(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, got.Status)

	require.Equal(t, uint(5), stockOf(t, db, p1.ID))
	require.Equal(t, uint(6), stockOf(t, db, p2.ID))
}

func TestCancelIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	order, p1, p2 := seedOrder(t, db, models.OrderStatusPending)

	_, err := svc.Cancel(context.Background(), order.ID)
	require.NoError(t, err)

	// Second cancel must not double-compensate.
	got, err := svc.Cancel(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, got.Status)

	require.Equal(t, uint(5), stockOf(t, db, p1.ID))
	require.Equal(t, uint(6), stockOf(t, db, p2.ID))
}

func TestCancelDeliveredDoesNotCompensate(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	order, p1, p2 := seedOrder(t, db, models.OrderStatusDelivered)

	got, err := svc.Cancel(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, got.Status)

	require.Equal(t, uint(3), stockOf(t, db, p1.ID))
	require.Equal(t, uint(5), stockOf(t, db, p2.ID))
}

func TestCancelUnknownOrder(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}

	_, err := svc.Cancel(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusValidation(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	order, _, _ := seedOrder(t, db, models.OrderStatusPending)

	_, err := svc.UpdateStatus(context.Background(), order.ID, "teleported")
	require.ErrorIs(t, err, ErrValidation)

	got, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusShipped, got.Status)

	_, err = svc.UpdateStatus(context.Background(), 999, models.OrderStatusShipped)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusCancelRoutesThroughCompensation(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	order, p1, _ := seedOrder(t, db, models.OrderStatusPending)

	got, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, got.Status)
	require.Equal(t, uint(5), stockOf(t, db, p1.ID))
}
