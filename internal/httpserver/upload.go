package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atelier-moda/fashion-shop/internal/logging"
	"github.com/atelier-moda/fashion-shop/internal/storage"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type UploadHTTP struct {
	Uploader storage.Uploader
}

// Upload accepts a multipart "file" field and stores it, returning the public
// URL to reference from product images.
func (h *UploadHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload")

	if h.Uploader == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "uploads are not available")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		l.Warn("upload_failed", "status", 400, "reason", "missing file", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size > maxUploadBytes {
		l.Warn("upload_failed", "status", 400, "reason", "file too large", "size", fh.Size)
		return echo.NewHTTPError(http.StatusBadRequest, "file exceeds 10 MiB")
	}

	src, err := fh.Open()
	if err != nil {
		l.Error("upload_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read file")
	}
	defer src.Close()

	folder := c.FormValue("folder")
	if folder == "" {
		folder = "products"
	}

	res, err := h.Uploader.Upload(ctx, src, folder)
	if err != nil {
		l.Error("upload_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}

	l.Info("upload_success", "public_id", res.PublicID)
	return c.JSON(http.StatusCreated, res)
}

// Delete removes a previously uploaded file by its public id.
func (h *UploadHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload.delete")

	if h.Uploader == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "uploads are not available")
	}

	publicID := c.Param("id")
	if publicID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}
	if err := h.Uploader.Delete(ctx, publicID); err != nil {
		l.Error("upload_delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}
