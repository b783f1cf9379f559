package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mayacreations/boutique/internal/hash"
	"github.com/mayacreations/boutique/internal/models"
	"github.com/mayacreations/boutique/internal/service"
)

var testSecret = []byte("handlers-test-secret")

const testAdminCode = "MAYA-ADMIN-2024"

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Auth      *AuthHandler
	AdminAuth *AdminAuthHandler
	Products  *ProductHandler
	Cats      *CategoryHandler
	Cart      *CartHandler
	Orders    *OrderHandler
	Users     *UserHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.NewsletterSubscriber{},
	))

	return &testEnv{
		T:         t,
		E:         echo.New(),
		DB:        db,
		Auth:      &AuthHandler{DB: db, JWTSecret: testSecret},
		AdminAuth: &AdminAuthHandler{DB: db, JWTSecret: testSecret, AdminCode: testAdminCode},
		Products:  &ProductHandler{DB: db},
		Cats:      &CategoryHandler{DB: db},
		Cart:      &CartHandler{DB: db},
		Orders:    &OrderHandler{DB: db, Svc: &service.OrderService{DB: db}},
		Users:     &UserHandler{DB: db},
	}
}

func (env *testEnv) doJSONRequest(method, path string, payload any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(env.T, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *testEnv) seedUser(name, email, password string, isAdmin bool) *models.User {
	env.T.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)
	user := models.User{Name: name, Email: email, PasswordHash: pwHash, IsAdmin: isAdmin}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return &user
}

func (env *testEnv) seedCategory(name string) *models.Category {
	env.T.Helper()
	cat := models.Category{Name: name}
	require.NoError(env.T, env.DB.Create(&cat).Error)
	return &cat
}

func (env *testEnv) seedProduct(name string, price float64, stock uint, categoryID uint) *models.Product {
	env.T.Helper()
	p := models.Product{Name: name, Price: price, Stock: stock, CategoryID: categoryID}
	require.NoError(env.T, env.DB.Create(&p).Error)
	return &p
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	return he.Code
}
