package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/atelier-moda/fashion-shop/internal/logging"
	middleware "github.com/atelier-moda/fashion-shop/internal/middleware/auth"
	"github.com/atelier-moda/fashion-shop/internal/models"
	"github.com/atelier-moda/fashion-shop/internal/mykafka"
	"github.com/atelier-moda/fashion-shop/internal/repo"
	ordersvc "github.com/atelier-moda/fashion-shop/internal/service/order"
	"github.com/atelier-moda/fashion-shop/internal/transport"
)

type OrderHTTP struct {
	Svc      *ordersvc.OrderService
	Producer *mykafka.Producer
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return validationError(l, "checkout", errs)
	}

	order, err := h.Svc.Checkout(ctx, ident.UserID, req.ToInput())
	if err != nil {
		return serviceError(l, "checkout", err)
	}

	l.Info("checkout_success", "order_id", order.ID, "order_number", order.OrderNumber)
	publish(c, h.Producer, "order_events", order.ID.String(), map[string]any{
		"type":         "order_created",
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"total":        order.Total,
	})
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	f := repo.OrderFilters{
		Status:        models.OrderStatus(c.QueryParam("status")),
		PaymentStatus: models.PaymentStatus(c.QueryParam("payment_status")),
	}
	if v := c.QueryParam("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "user_id is not a uuid")
		}
		f.UserID = id
	}

	orders, err := h.Svc.FindAll(ctx, f, ident)
	if err != nil {
		return serviceError(l, "list_orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.Svc.FindByUser(ctx, ident.UserID)
	if err != nil {
		return serviceError(l, "list_my_orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.FindOne(ctx, id, ident)
	if err != nil {
		return serviceError(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) PatchOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.patch")

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_order_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return validationError(l, "patch_order", errs)
	}

	order, err := h.Svc.Update(ctx, id, req.ToInput())
	if err != nil {
		return serviceError(l, "patch_order", err)
	}

	l.Info("patch_order_success", "order_id", order.ID, "order_status", order.Status)
	publish(c, h.Producer, "order_events", order.ID.String(), map[string]any{
		"type":         "order_updated",
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
	})
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.Cancel(ctx, id, ident)
	if err != nil {
		return serviceError(l, "cancel_order", err)
	}

	l.Info("cancel_order_success", "order_id", order.ID, "order_number", order.OrderNumber)
	publish(c, h.Producer, "order_events", order.ID.String(), map[string]any{
		"type":         "order_cancelled",
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return c.JSON(http.StatusOK, order)
}
