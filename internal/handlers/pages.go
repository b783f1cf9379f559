package handlers

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

// PagesHandler serves the minimal browser surface of the back-office: the
// login page the access gate redirects to, and the admin shell behind it.
type PagesHandler struct{}

var loginPageTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>Connexion administrateur</title></head>
<body>
<h1>Connexion administrateur</h1>
<form method="post" action="/api/admin/auth" id="admin-login">
  <label>Email <input type="email" name="email" required></label>
  <label>Mot de passe <input type="password" name="password" required></label>
  <label>Code admin <input type="password" name="adminCode" required></label>
  <button type="submit">Se connecter</button>
</form>
</body>
</html>`))

var adminShellTmpl = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>Administration</title></head>
<body>
<h1>Tableau de bord</h1>
<nav>
  <a href="/admin/produits">Produits</a>
  <a href="/admin/categories">Catégories</a>
  <a href="/admin/commandes">Commandes</a>
  <a href="/admin/utilisateurs">Utilisateurs</a>
</nav>
</body>
</html>`))

func (h *PagesHandler) LoginPage(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return loginPageTmpl.Execute(c.Response(), nil)
}

func (h *PagesHandler) AdminShell(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return adminShellTmpl.Execute(c.Response(), nil)
}
