package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mayacreations/boutique/internal/events"
	"github.com/mayacreations/boutique/internal/logging"
	"github.com/mayacreations/boutique/internal/models"
)

type NewsletterHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

func (h *NewsletterHandler) Subscribe(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "a valid email is required")
	}

	var existing models.NewsletterSubscriber
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		// Already subscribed; keep the operation idempotent.
		return c.JSON(http.StatusOK, echo.Map{"message": "subscribed"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	sub := models.NewsletterSubscriber{Email: req.Email}
	if err := h.DB.Create(&sub).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	ctx := c.Request().Context()
	if err := h.Producer.PublishEvent(ctx, events.TopicNewsletterEvents, req.Email, map[string]any{
		"type":  "newsletter_subscribed",
		"email": req.Email,
	}); err != nil {
		logging.FromContext(ctx).Warn("kafka publish error", "error", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "subscribed"})
}
