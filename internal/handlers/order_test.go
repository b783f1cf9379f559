package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mayacreations/boutique/internal/models"
)

func seedOrderWithItems(env *testEnv, status string) (*models.Order, *models.Product, *models.Product) {
	user := env.seedUser("Bob", "bob@x.com", "password", false)
	cat := env.seedCategory("Bijoux")
	p1 := env.seedProduct("Bracelet", 15, 3, cat.ID)
	p2 := env.seedProduct("Collier", 30, 5, cat.ID)

	order := models.Order{
		Reference: uuid.NewString(),
		UserID:    user.ID,
		Status:    status,
		Total:     60,
		Address:   "12 rue des Lilas",
		Items: []models.OrderItem{
			{ProductID: p1.ID, Quantity: 2, UnitPrice: 15},
			{ProductID: p2.ID, Quantity: 1, UnitPrice: 30},
		},
	}
	require.NoError(env.T, env.DB.Create(&order).Error)
	return &order, p1, p2
}

func TestCancelOrderCompensatesStock(t *testing.T) {
	env := newTestEnv(t)
	order, p1, p2 := seedOrderWithItems(env, models.OrderStatusProcessing)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/admin/orders/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(order.ID))
	require.NoError(t, env.Orders.CancelOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Product
	require.NoError(t, env.DB.First(&got, p1.ID).Error)
	require.Equal(t, uint(5), got.Stock)
	got = models.Product{}
	require.NoError(t, env.DB.First(&got, p2.ID).Error)
	require.Equal(t, uint(6), got.Stock)

	// Cancelling again must not compensate a second time.
	_, c = env.doJSONRequest(http.MethodDelete, "/api/admin/orders/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(order.ID))
	require.NoError(t, env.Orders.CancelOrder(c))

	got = models.Product{}
	require.NoError(t, env.DB.First(&got, p1.ID).Error)
	require.Equal(t, uint(5), got.Stock)
}

func TestCancelDeliveredOrderKeepsStock(t *testing.T) {
	env := newTestEnv(t)
	order, p1, _ := seedOrderWithItems(env, models.OrderStatusDelivered)

	_, c := env.doJSONRequest(http.MethodDelete, "/api/admin/orders/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(order.ID))
	require.NoError(t, env.Orders.CancelOrder(c))

	var got models.Product
	require.NoError(t, env.DB.First(&got, p1.ID).Error)
	require.Equal(t, uint(3), got.Stock)

	var o models.Order
	require.NoError(t, env.DB.First(&o, order.ID).Error)
	require.Equal(t, models.OrderStatusCancelled, o.Status)
}

func TestCancelOrderNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodDelete, "/api/admin/orders/999", nil)
	c.SetParamNames("id")
	c.SetParamValues("999")
	require.Equal(t, http.StatusNotFound, httpErrorCode(t, env.Orders.CancelOrder(c)))
}

func TestPatchOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	order, _, _ := seedOrderWithItems(env, models.OrderStatusPending)

	rec, c := env.doJSONRequest(http.MethodPatch, "/api/admin/orders/1", map[string]string{"status": "shipped"})
	c.SetParamNames("id")
	c.SetParamValues(itoa(order.ID))
	require.NoError(t, env.Orders.PatchStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var o models.Order
	require.NoError(t, env.DB.First(&o, order.ID).Error)
	require.Equal(t, models.OrderStatusShipped, o.Status)
}

func TestPatchOrderStatusValidation(t *testing.T) {
	env := newTestEnv(t)
	order, _, _ := seedOrderWithItems(env, models.OrderStatusPending)

	_, c := env.doJSONRequest(http.MethodPatch, "/api/admin/orders/1", map[string]string{"status": "teleported"})
	c.SetParamNames("id")
	c.SetParamValues(itoa(order.ID))
	require.Equal(t, http.StatusBadRequest, httpErrorCode(t, env.Orders.PatchStatus(c)))
}

func TestListOrdersFilterByStatus(t *testing.T) {
	env := newTestEnv(t)
	seedOrderWithItems(env, models.OrderStatusPending)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/admin/orders?status=pending", nil)
	require.NoError(t, env.Orders.ListOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []orderPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, "bob@x.com", resp[0].Customer.Email)
	require.Len(t, resp[0].Items, 2)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/admin/orders?status=shipped", nil)
	require.NoError(t, env.Orders.ListOrders(c))
	resp = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	seedOrderWithItems(env, models.OrderStatusPending)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/admin/stats?timeframe=monthly", nil)
	require.NoError(t, env.Orders.Stats(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Revenue   float64 `json:"revenue"`
		Orders    int     `json:"orders"`
		Customers int64   `json:"customers"`
		AvgOrder  float64 `json:"avg_order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 60.0, resp.Revenue)
	require.Equal(t, 1, resp.Orders)
	require.Equal(t, int64(1), resp.Customers)
	require.Equal(t, 60.0, resp.AvgOrder)
}

func TestExportOrders(t *testing.T) {
	env := newTestEnv(t)
	seedOrderWithItems(env, models.OrderStatusPending)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/admin/orders/export", nil)
	require.NoError(t, env.Orders.Export(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "commandes.xlsx")
	require.NotZero(t, rec.Body.Len())
}
