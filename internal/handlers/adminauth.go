package handlers

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mayacreations/boutique/internal/events"
	"github.com/mayacreations/boutique/internal/hash"
	"github.com/mayacreations/boutique/internal/logging"
	"github.com/mayacreations/boutique/internal/middleware/gate"
	"github.com/mayacreations/boutique/internal/models"
	"github.com/mayacreations/boutique/internal/tokens"
)

type AdminAuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	AdminCode string
	Producer  *events.Producer
}

// Login issues an elevated session. Every failure mode (unknown email,
// wrong password, account without the privilege flag, wrong access code)
// resolves to the same generic 401, so a caller cannot tell which check
// failed.
func (h *AdminAuthHandler) Login(c echo.Context) error {
	// The login page posts this as a form; the SPA posts JSON.
	var req struct {
		Email     string `json:"email" form:"email"`
		Password  string `json:"password" form:"password"`
		AdminCode string `json:"adminCode" form:"adminCode"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	denied := echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return denied
	}
	if !user.IsAdmin {
		return denied
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return denied
	}
	if subtle.ConstantTimeCompare([]byte(req.AdminCode), []byte(h.AdminCode)) != 1 {
		return denied
	}

	token, err := tokens.Sign(user.ID, user.Email, user.Name, true, tokens.AdminTokenTTL, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// Advisory last-activity refresh; losing it is not an error.
	if err := h.DB.Model(&user).Update("updated_at", time.Now()).Error; err != nil {
		logging.FromContext(c.Request().Context()).Warn("last activity refresh failed", "error", err)
	}

	c.SetCookie(CreateCookie(gate.AdminCookie, token, "/", time.Now().Add(tokens.AdminTokenTTL)))

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":   "admin_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"user":  userToPayload(&user),
		"token": token,
	})
}

func (h *AdminAuthHandler) Logout(c echo.Context) error {
	c.SetCookie(expireCookie(gate.AdminCookie))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AdminAuthHandler) Verify(c echo.Context) error {
	cookie, err := c.Cookie(gate.AdminCookie)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	claims, err := tokens.Parse(cookie.Value, h.JWTSecret)
	if err != nil || !claims.IsAdmin {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	id, err := claims.UserID()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": userPayload{ID: id, Name: claims.Name, Email: claims.Email, IsAdmin: true},
	})
}

func (h *AdminAuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx := c.Request().Context()
	if err := h.Producer.PublishEvent(ctx, events.TopicUserEvents, key, event); err != nil {
		logging.FromContext(ctx).Warn("kafka publish error", "error", err)
	}
}
