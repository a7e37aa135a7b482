package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/atelier-moda/fashion-shop/internal/logging"
	"github.com/atelier-moda/fashion-shop/internal/models"
	"github.com/atelier-moda/fashion-shop/internal/mykafka"
	"github.com/atelier-moda/fashion-shop/internal/repo"
	"github.com/atelier-moda/fashion-shop/internal/service/catalog"
	"github.com/atelier-moda/fashion-shop/internal/transport"
	"github.com/atelier-moda/fashion-shop/internal/util"
)

type ProductHTTP struct {
	Svc      *catalog.CatalogService
	Producer *mykafka.Producer
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}
	return id, nil
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	f := repo.ProductFilters{
		Category: models.ProductCategory(c.QueryParam("category")),
		Status:   models.ProductStatus(c.QueryParam("status")),
	}
	if v := c.QueryParam("is_featured"); v != "" {
		b := v == "true"
		f.IsFeatured = &b
	}
	if v := c.QueryParam("is_new"); v != "" {
		b := v == "true"
		f.IsNew = &b
	}
	if v := c.QueryParam("min_price"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			f.MinPrice = &d
		}
	}
	if v := c.QueryParam("max_price"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			f.MaxPrice = &d
		}
	}

	total, items, err := h.Svc.ListProducts(ctx, f, offset, limit)
	if err != nil {
		return serviceError(l, "get_products", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchProducts(ctx, query, offset, limit)
	if err != nil {
		return serviceError(l, "search_products", err)
	}

	return c.JSON(http.StatusOK, map[string]any{"data": items, "total": total})
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := pathID(c)
	if err != nil {
		return err
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return serviceError(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) GetProductBySlug(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_by_slug")

	product, err := h.Svc.GetProductBySlug(ctx, c.Param("slug"))
	if err != nil {
		return serviceError(l, "get_product_by_slug", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return validationError(l, "create_product", errs)
	}

	product, err := h.Svc.CreateProduct(ctx, req.ToInput())
	if err != nil {
		return serviceError(l, "create_product", err)
	}

	l.Info("create_product_success", "product_id", product.ID, "slug", product.Slug)
	publish(c, h.Producer, "product_events", product.ID.String(), map[string]any{
		"type": "product_created", "product_id": product.ID, "slug": product.Slug,
	})
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return validationError(l, "patch_product", errs)
	}

	product, err := h.Svc.UpdateProduct(ctx, id, req.ToInput())
	if err != nil {
		return serviceError(l, "patch_product", err)
	}

	l.Info("patch_product_success", "product_id", product.ID)
	publish(c, h.Producer, "product_events", product.ID.String(), map[string]any{
		"type": "product_updated", "product_id": product.ID, "slug": product.Slug,
	})
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return serviceError(l, "delete_product", err)
	}

	l.Info("delete_product_success", "product_id", id)
	publish(c, h.Producer, "product_events", id.String(), map[string]any{
		"type": "product_deleted", "product_id": id,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) RestoreProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.restore")

	id, err := pathID(c)
	if err != nil {
		return err
	}

	product, err := h.Svc.RestoreProduct(ctx, id)
	if err != nil {
		return serviceError(l, "restore_product", err)
	}

	l.Info("restore_product_success", "product_id", id)
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) AddVariant(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.add_variant")

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req transport.VariantRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_variant_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return validationError(l, "add_variant", errs)
	}

	variant, err := h.Svc.AddVariant(ctx, id, req.ToInput())
	if err != nil {
		return serviceError(l, "add_variant", err)
	}

	l.Info("add_variant_success", "variant_id", variant.ID, "sku", variant.SKU)
	return c.JSON(http.StatusCreated, variant)
}

func (h *ProductHTTP) PatchVariant(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_variant")

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateVariantRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_variant_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return validationError(l, "patch_variant", errs)
	}

	variant, err := h.Svc.UpdateVariant(ctx, id, req.ToInput())
	if err != nil {
		return serviceError(l, "patch_variant", err)
	}
	return c.JSON(http.StatusOK, variant)
}

func (h *ProductHTTP) DeleteVariant(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_variant")

	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteVariant(ctx, id); err != nil {
		return serviceError(l, "delete_variant", err)
	}
	return c.NoContent(http.StatusNoContent)
}
