package handlers

import (
	"net/http"
	"strconv"
	"time"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func CreateCookie(name string, value string, path string, expTime time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}

	return cookie
}

func expireCookie(name string) *http.Cookie {
	return CreateCookie(name, "", "/", time.Now().Add(-1*time.Hour))
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
