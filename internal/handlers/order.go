package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mayacreations/boutique/internal/events"
	"github.com/mayacreations/boutique/internal/export"
	"github.com/mayacreations/boutique/internal/logging"
	"github.com/mayacreations/boutique/internal/models"
	"github.com/mayacreations/boutique/internal/service"
)

type OrderHandler struct {
	DB       *gorm.DB
	Svc      *service.OrderService
	Producer *events.Producer
}

type orderItemPayload struct {
	ID        uint    `json:"id"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  uint    `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

type orderPayload struct {
	ID        uint               `json:"id"`
	Reference string             `json:"reference"`
	Date      time.Time          `json:"date"`
	Status    string             `json:"status"`
	Total     float64            `json:"total"`
	Customer  userPayload        `json:"customer"`
	Address   string             `json:"address"`
	Phone     string             `json:"phone"`
	Items     []orderItemPayload `json:"items"`
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicOrderEvents, fmt.Sprint(event["orderID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka publish error", "error", err)
	}
}

func (h *OrderHandler) formatOrder(order *models.Order) (*orderPayload, error) {
	var user models.User
	if err := h.DB.First(&user, order.UserID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	items := make([]orderItemPayload, 0, len(order.Items))
	for _, it := range order.Items {
		var p models.Product
		name := ""
		if err := h.DB.First(&p, it.ProductID).Error; err == nil {
			name = p.Name
		}
		items = append(items, orderItemPayload{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     float64(it.Quantity) * it.UnitPrice,
		})
	}

	return &orderPayload{
		ID:        order.ID,
		Reference: order.Reference,
		Date:      order.CreatedAt,
		Status:    order.Status,
		Total:     order.Total,
		Customer:  userToPayload(&user),
		Address:   order.Address,
		Phone:     order.Phone,
		Items:     items,
	}, nil
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	q := h.DB.Model(&models.Order{}).Preload("Items")

	if status := c.QueryParam("status"); status != "" && status != "all" {
		if !models.ValidOrderStatus(status) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status value")
		}
		q = q.Where("status = ?", status)
	}
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where(
			"reference LIKE ? OR user_id IN (?)",
			pattern,
			h.DB.Model(&models.User{}).Select("id").Where("name LIKE ? OR email LIKE ?", pattern, pattern),
		)
	}

	sort := "created_at DESC"
	if c.QueryParam("sort") == "asc" {
		sort = "created_at ASC"
	}
	q = q.Order(sort)

	if limit := parseIntDefault(c.QueryParam("limit"), 0); limit > 0 {
		q = q.Limit(limit)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	out := make([]*orderPayload, 0, len(orders))
	for i := range orders {
		p, err := h.formatOrder(&orders[i])
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		out = append(out, p)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	p, err := h.formatOrder(&order)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *OrderHandler) PatchStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	order, err := h.Svc.UpdateStatus(c.Request().Context(), uint(id), req.Status)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":     order.ID,
		"status": order.Status,
	})
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := h.Svc.Cancel(c.Request().Context(), uint(id))
	if err != nil {
		return serviceError(err)
	}

	h.publish(c, map[string]any{
		"type":    "order_cancelled",
		"orderID": order.ID,
		"userID":  order.UserID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "order cancelled",
	})
}

func (h *OrderHandler) Export(c echo.Context) error {
	var orders []models.Order
	if err := h.DB.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	customers := make(map[uint]models.User)
	for _, order := range orders {
		if _, ok := customers[order.UserID]; ok {
			continue
		}
		var user models.User
		if err := h.DB.First(&user, order.UserID).Error; err == nil {
			customers[order.UserID] = user
		}
	}

	f, err := export.OrdersWorkbook(orders, customers)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="commandes.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}

func (h *OrderHandler) Stats(c echo.Context) error {
	now := time.Now()
	start := now
	switch c.QueryParam("timeframe") {
	case "daily":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "weekly":
		start = now.AddDate(0, 0, -7)
	case "yearly":
		start = now.AddDate(-1, 0, 0)
	default: // monthly
		start = now.AddDate(0, -1, 0)
	}

	var orders []models.Order
	if err := h.DB.Where("created_at >= ?", start).Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var revenue float64
	for _, o := range orders {
		revenue += o.Total
	}
	avgOrder := 0.0
	if len(orders) > 0 {
		avgOrder = revenue / float64(len(orders))
	}

	var newCustomers int64
	if err := h.DB.Model(&models.User{}).Where("created_at >= ?", start).Count(&newCustomers).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	const lowStockThreshold = 5
	var lowStock []models.Product
	if err := h.DB.Where("stock <= ?", lowStockThreshold).Order("stock ASC").Limit(5).Find(&lowStock).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var recent []models.Order
	if err := h.DB.Order("created_at DESC").Limit(5).Find(&recent).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"revenue":            revenue,
		"orders":             len(orders),
		"customers":          newCustomers,
		"avg_order":          avgOrder,
		"low_stock_products": lowStock,
		"recent_orders":      recent,
	})
}

func serviceError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
