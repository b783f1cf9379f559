package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mayacreations/boutique/internal/middleware/gate"
	"github.com/mayacreations/boutique/internal/tokens"
)

func TestAdminLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("Alice", "a@x.com", "password", true)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/admin/auth", map[string]string{
		"email":     "a@x.com",
		"password":  "password",
		"adminCode": testAdminCode,
	})
	require.NoError(t, env.AdminAuth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User  userPayload `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.User.IsAdmin)
	require.NotEmpty(t, resp.Token)

	claims, err := tokens.Parse(resp.Token, testSecret)
	require.NoError(t, err)
	require.True(t, claims.IsAdmin)
	require.Equal(t, "a@x.com", claims.Email)

	var found bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == gate.AdminCookie && ck.Value == resp.Token {
			found = true
		}
	}
	require.True(t, found, "admin-token cookie not set")
}

func TestAdminLoginUniformDenial(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("Alice", "a@x.com", "password", true)
	env.seedUser("Bob", "b@x.com", "password", false)

	cases := []map[string]string{
		{"email": "nobody@x.com", "password": "password", "adminCode": testAdminCode},
		{"email": "a@x.com", "password": "wrong", "adminCode": testAdminCode},
		{"email": "a@x.com", "password": "password", "adminCode": "WRONG-CODE"},
		{"email": "b@x.com", "password": "password", "adminCode": testAdminCode},
	}

	var messages []string
	for _, payload := range cases {
		_, c := env.doJSONRequest(http.MethodPost, "/api/admin/auth", payload)
		err := env.AdminAuth.Login(c)
		require.Equal(t, http.StatusUnauthorized, httpErrorCode(t, err))
		messages = append(messages, err.Error())
	}

	// Every failure mode must be indistinguishable to the caller.
	for _, m := range messages[1:] {
		require.Equal(t, messages[0], m)
	}
}

func TestAdminLoginValidation(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/admin/auth", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusBadRequest, httpErrorCode(t, env.AdminAuth.Login(c)))
}

func TestAdminVerify(t *testing.T) {
	env := newTestEnv(t)

	raw, err := tokens.Sign(1, "a@x.com", "Alice", true, tokens.AdminTokenTTL, testSecret)
	require.NoError(t, err)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/admin/verify", nil,
		&http.Cookie{Name: gate.AdminCookie, Value: raw})
	require.NoError(t, env.AdminAuth.Verify(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, c = env.doJSONRequest(http.MethodGet, "/api/admin/verify", nil)
	require.Equal(t, http.StatusUnauthorized, httpErrorCode(t, env.AdminAuth.Verify(c)))

	nonAdmin, err := tokens.Sign(2, "b@x.com", "Bob", false, tokens.UserTokenTTL, testSecret)
	require.NoError(t, err)
	_, c = env.doJSONRequest(http.MethodGet, "/api/admin/verify", nil,
		&http.Cookie{Name: gate.AdminCookie, Value: nonAdmin})
	require.Equal(t, http.StatusUnauthorized, httpErrorCode(t, env.AdminAuth.Verify(c)))
}
