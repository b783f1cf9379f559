package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mayacreations/boutique/internal/hash"
	"github.com/mayacreations/boutique/internal/models"
)

func TestListUsersRollups(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("Bob", "bob@x.com", "password", false)
	env.seedUser("Alice", "alice@x.com", "password", true)

	for _, total := range []float64{20, 35} {
		order := models.Order{
			Reference: uuid.NewString(),
			UserID:    user.ID,
			Status:    models.OrderStatusDelivered,
			Total:     total,
			Address:   "12 rue des Lilas",
		}
		require.NoError(t, env.DB.Create(&order).Error)
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/admin/users", nil)
	require.NoError(t, env.Users.ListUsers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		Email       string  `json:"email"`
		OrdersCount int64   `json:"orders_count"`
		TotalSpent  float64 `json:"total_spent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)

	byEmail := make(map[string]int64)
	for _, u := range resp {
		byEmail[u.Email] = u.OrdersCount
		if u.Email == "bob@x.com" {
			require.Equal(t, 55.0, u.TotalSpent)
		}
	}
	require.Equal(t, int64(2), byEmail["bob@x.com"])
	require.Equal(t, int64(0), byEmail["alice@x.com"])
}

func TestListUsersAdminFilter(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("Bob", "bob@x.com", "password", false)
	env.seedUser("Alice", "alice@x.com", "password", true)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/admin/users?isAdmin=true", nil)
	require.NoError(t, env.Users.ListUsers(c))

	var resp []struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, "alice@x.com", resp[0].Email)
}

func TestCreateUserHashesPassword(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/admin/users", map[string]any{
		"name":     "Bob",
		"email":    "bob@x.com",
		"password": "s3cret-pw",
		"is_admin": true,
	})
	require.NoError(t, env.Users.CreateUser(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, env.DB.Where("email = ?", "bob@x.com").First(&user).Error)
	require.True(t, user.IsAdmin)
	require.NotEqual(t, "s3cret-pw", user.PasswordHash)
	require.True(t, hash.CheckPassword(user.PasswordHash, "s3cret-pw"))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("Bob", "bob@x.com", "password", false)

	_, c := env.doJSONRequest(http.MethodPost, "/api/admin/users", map[string]any{
		"name":     "Other Bob",
		"email":    "bob@x.com",
		"password": "password",
	})
	require.Equal(t, http.StatusBadRequest, httpErrorCode(t, env.Users.CreateUser(c)))
}

func TestPatchUserTogglesAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("Bob", "bob@x.com", "password", false)

	rec, c := env.doJSONRequest(http.MethodPatch, "/api/admin/users/1", map[string]any{"is_admin": true})
	c.SetParamNames("id")
	c.SetParamValues(itoa(user.ID))
	require.NoError(t, env.Users.PatchUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.User
	require.NoError(t, env.DB.First(&got, user.ID).Error)
	require.True(t, got.IsAdmin)
	require.Equal(t, "Bob", got.Name)
}

func TestDeleteUserBlockedByOrders(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("Bob", "bob@x.com", "password", false)
	order := models.Order{
		Reference: uuid.NewString(),
		UserID:    user.ID,
		Status:    models.OrderStatusPending,
		Total:     20,
		Address:   "12 rue des Lilas",
	}
	require.NoError(t, env.DB.Create(&order).Error)

	_, c := env.doJSONRequest(http.MethodDelete, "/api/admin/users/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(user.ID))
	require.Equal(t, http.StatusConflict, httpErrorCode(t, env.Users.DeleteUser(c)))
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("Bob", "bob@x.com", "password", false)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/admin/users/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(user.ID))
	require.NoError(t, env.Users.DeleteUser(c))
	require.Equal(t, http.StatusNoContent, rec.Code)
}
