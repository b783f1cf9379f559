package gate

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mayacreations/boutique/internal/tokens"
)

const (
	AdminCookie = "admin-token"
	UserCookie  = "user-token"

	LoginPagePath   = "/connexionAdmin"
	adminPagePrefix = "/admin"
	adminAPIPrefix  = "/api/admin"
	adminLoginAPI   = "/api/admin/auth"

	CtxUserID  = "user_id"
	CtxEmail   = "email"
	CtxIsAdmin = "is_admin"
)

// Middleware guards every path under the admin page and admin API
// prefixes: requests must carry a valid, unexpired admin-token whose
// privilege flag is set. The login page and the elevated login endpoint
// stay reachable while unauthenticated. Denials split by request class:
// API calls get a 401 JSON body, page navigations get redirected to the
// login page.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			isPage := strings.HasPrefix(path, adminPagePrefix)
			isAPI := strings.HasPrefix(path, adminAPIPrefix)
			if !isPage && !isAPI {
				return next(c)
			}
			if path == LoginPagePath || path == adminLoginAPI {
				return next(c)
			}

			cookie, err := c.Cookie(AdminCookie)
			if err != nil || cookie.Value == "" {
				return deny(c, isAPI)
			}

			claims, err := tokens.Parse(cookie.Value, secret)
			if err != nil || !claims.IsAdmin {
				return deny(c, isAPI)
			}

			setSessionContext(c, claims)
			return next(c)
		}
	}
}

func deny(c echo.Context, isAPI bool) error {
	if isAPI {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}
	return c.Redirect(http.StatusFound, LoginPagePath)
}

// RequireUser protects customer endpoints: a valid user-token is enough,
// no privilege flag needed. API only, so denial is always a 401.
func RequireUser(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(UserCookie)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			claims, err := tokens.Parse(cookie.Value, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			setSessionContext(c, claims)
			return next(c)
		}
	}
}

func setSessionContext(c echo.Context, claims *tokens.SessionClaims) {
	if id, err := claims.UserID(); err == nil {
		c.Set(CtxUserID, id)
	}
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxIsAdmin, claims.IsAdmin)
}

// UserID reads the authenticated identity the middleware stored on the
// request context.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(CtxUserID).(uint)
	return id, ok
}
