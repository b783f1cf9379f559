package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mayacreations/boutique/internal/handlers"
	"github.com/mayacreations/boutique/internal/middleware/gate"
)

type Deps struct {
	JWTSecret []byte

	AuthHandler       *handlers.AuthHandler
	AdminAuthHandler  *handlers.AdminAuthHandler
	ProductHandler    *handlers.ProductHandler
	CategoryHandler   *handlers.CategoryHandler
	CartHandler       *handlers.CartHandler
	OrderHandler      *handlers.OrderHandler
	UserHandler       *handlers.UserHandler
	SearchHandler     *handlers.SearchHandler
	NewsletterHandler *handlers.NewsletterHandler
	PagesHandler      *handlers.PagesHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	// The gate inspects every request; non-privileged paths pass through.
	e.Use(gate.Middleware(d.JWTSecret))

	e.GET(gate.LoginPagePath, d.PagesHandler.LoginPage)
	e.GET("/admin", d.PagesHandler.AdminShell)
	e.GET("/admin/*", d.PagesHandler.AdminShell)

	api := e.Group("/api")

	api.POST("/auth/register", d.AuthHandler.Register)
	api.POST("/auth/login", d.AuthHandler.Login)
	api.POST("/auth/logout", d.AuthHandler.Logout)
	api.GET("/auth/verify", d.AuthHandler.Verify)

	api.GET("/products", d.ProductHandler.GetProducts)
	api.GET("/products/:id", d.ProductHandler.GetProduct)
	api.GET("/categories", d.CategoryHandler.GetCategories)
	api.GET("/search", d.SearchHandler.Search)
	api.POST("/newsletter", d.NewsletterHandler.Subscribe)

	customer := api.Group("", gate.RequireUser(d.JWTSecret))
	customer.GET("/cart", d.CartHandler.GetCart)
	customer.POST("/cart", d.CartHandler.AddToCart)
	customer.DELETE("/cart/:id", d.CartHandler.DeleteFromCart)
	customer.POST("/checkout", d.CartHandler.Checkout)

	admin := api.Group("/admin")

	admin.POST("/auth", d.AdminAuthHandler.Login)
	admin.POST("/logout", d.AdminAuthHandler.Logout)
	admin.GET("/verify", d.AdminAuthHandler.Verify)

	admin.GET("/products", d.ProductHandler.GetProducts)
	admin.GET("/products/:id", d.ProductHandler.GetProduct)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	admin.GET("/categories", d.CategoryHandler.GetCategories)
	admin.GET("/categories/:id", d.CategoryHandler.GetCategory)
	admin.POST("/categories", d.CategoryHandler.CreateCategory)
	admin.PATCH("/categories/:id", d.CategoryHandler.PatchCategory)
	admin.DELETE("/categories/:id", d.CategoryHandler.DeleteCategory)

	admin.GET("/orders", d.OrderHandler.ListOrders)
	admin.GET("/orders/export", d.OrderHandler.Export)
	admin.GET("/orders/:id", d.OrderHandler.GetOrder)
	admin.PATCH("/orders/:id", d.OrderHandler.PatchStatus)
	admin.DELETE("/orders/:id", d.OrderHandler.CancelOrder)
	admin.GET("/stats", d.OrderHandler.Stats)

	admin.GET("/users", d.UserHandler.ListUsers)
	admin.GET("/users/:id", d.UserHandler.GetUser)
	admin.POST("/users", d.UserHandler.CreateUser)
	admin.PATCH("/users/:id", d.UserHandler.PatchUser)
	admin.DELETE("/users/:id", d.UserHandler.DeleteUser)
}
