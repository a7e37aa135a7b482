package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atelier-moda/fashion-shop/internal/logging"
	authsvc "github.com/atelier-moda/fashion-shop/internal/service/auth"
	"github.com/atelier-moda/fashion-shop/internal/transport"
)

type AuthHTTP struct {
	Svc *authsvc.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return validationError(l, "register", errs)
	}

	res, err := h.Svc.Register(ctx, req.Email, req.Password, req.Name, req.Phone)
	if err != nil {
		return serviceError(l, "register", err)
	}

	l.Info("register_success", "user_id", res.User.ID)
	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return validationError(l, "login", errs)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return serviceError(l, "login", err)
	}

	l.Info("login_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, res)
}
