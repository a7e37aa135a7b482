package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/atelier-moda/fashion-shop/internal/middleware/auth"
)

type Deps struct {
	Auth     *AuthHTTP
	Products *ProductHTTP
	Cart     *CartHTTP
	Orders   *OrderHTTP
	Search   *SearchHTTP
	Uploads  *UploadHTTP
	AuthMW   *middleware.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api/v1")

	api.POST("/auth/register", d.Auth.Register)
	api.POST("/auth/login", d.Auth.Login)

	products := api.Group("/products")
	products.GET("", d.Products.GetProducts)
	products.GET("/search", d.Products.SearchProducts)
	products.GET("/slug/:slug", d.Products.GetProductBySlug)
	products.GET("/:id", d.Products.GetProduct)

	adminProducts := products.Group("", d.AuthMW.RequireAdmin)
	adminProducts.POST("", d.Products.CreateProduct)
	adminProducts.PATCH("/:id", d.Products.PatchProduct)
	adminProducts.DELETE("/:id", d.Products.DeleteProduct)
	adminProducts.POST("/:id/restore", d.Products.RestoreProduct)
	adminProducts.POST("/:id/variants", d.Products.AddVariant)

	variants := api.Group("/variants", d.AuthMW.RequireAdmin)
	variants.PATCH("/:id", d.Products.PatchVariant)
	variants.DELETE("/:id", d.Products.DeleteVariant)

	api.GET("/search", d.Search.Search)

	uploads := api.Group("/uploads", d.AuthMW.RequireAdmin)
	uploads.POST("", d.Uploads.Upload)
	uploads.DELETE("/:id", d.Uploads.Delete)

	cart := api.Group("/cart", d.AuthMW.RequireLogin)
	cart.GET("", d.Cart.GetCart)
	cart.POST("/items", d.Cart.AddItem)
	cart.PATCH("/items/:id", d.Cart.UpdateItem)
	cart.DELETE("/items/:id", d.Cart.RemoveItem)
	cart.DELETE("", d.Cart.Clear)

	orders := api.Group("/orders")
	orders.POST("", d.Orders.Checkout, d.AuthMW.RequireLogin)
	orders.GET("/mine", d.Orders.GetMyOrders, d.AuthMW.RequireLogin)
	orders.GET("", d.Orders.GetOrders, d.AuthMW.RequireAdmin)
	orders.GET("/:id", d.Orders.GetOrder, d.AuthMW.RequireLogin)
	orders.POST("/:id/cancel", d.Orders.CancelOrder, d.AuthMW.RequireLogin)
	orders.PATCH("/:id", d.Orders.PatchOrder, d.AuthMW.RequireAdmin)
}
