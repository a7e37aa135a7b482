package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atelier-moda/fashion-shop/internal/logging"
	middleware "github.com/atelier-moda/fashion-shop/internal/middleware/auth"
	cartsvc "github.com/atelier-moda/fashion-shop/internal/service/cart"
	"github.com/atelier-moda/fashion-shop/internal/transport"
)

type CartHTTP struct {
	Svc *cartsvc.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	view, err := h.Svc.GetCart(ctx, ident.UserID)
	if err != nil {
		return serviceError(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return validationError(l, "add_item", errs)
	}

	view, err := h.Svc.AddItem(ctx, ident.UserID, req.VariantID, req.Quantity)
	if err != nil {
		return serviceError(l, "add_item", err)
	}

	l.Info("add_item_success", "variant_id", req.VariantID, "quantity", req.Quantity)
	return c.JSON(http.StatusCreated, view)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	itemID, err := pathID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_item_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return validationError(l, "update_item", errs)
	}

	view, err := h.Svc.UpdateItem(ctx, ident.UserID, itemID, req.Quantity)
	if err != nil {
		return serviceError(l, "update_item", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	itemID, err := pathID(c)
	if err != nil {
		return err
	}

	view, err := h.Svc.RemoveItem(ctx, ident.UserID, itemID)
	if err != nil {
		return serviceError(l, "remove_item", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	view, err := h.Svc.Clear(ctx, ident.UserID)
	if err != nil {
		return serviceError(l, "clear_cart", err)
	}
	return c.JSON(http.StatusOK, view)
}
