package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atelier-moda/fashion-shop/internal/domain"
	authsvc "github.com/atelier-moda/fashion-shop/internal/service/auth"
)

const identityKey = "identity"

type Middleware struct {
	Auth *authsvc.AuthService
}

func NewMiddleware(auth *authsvc.AuthService) *Middleware {
	return &Middleware{Auth: auth}
}

func (m *Middleware) identityFromRequest(c echo.Context) (domain.Identity, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	ident, err := m.Auth.ParseAccessToken(raw)
	if err != nil {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	return ident, nil
}

// RequireLogin admits any authenticated user and stores the identity on the
// request context.
func (m *Middleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, err := m.identityFromRequest(c)
		if err != nil {
			return err
		}
		c.Set(identityKey, ident)
		return next(c)
	}
}

// RequireAdmin admits only users with the ADMIN role.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, err := m.identityFromRequest(c)
		if err != nil {
			return err
		}
		if !ident.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		c.Set(identityKey, ident)
		return next(c)
	}
}

// IdentityFrom returns the identity stored by RequireLogin/RequireAdmin.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	ident, ok := c.Get(identityKey).(domain.Identity)
	return ident, ok
}
