package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadResult is what the rest of the system knows about a stored file: a
// public URL to embed in product images and an id for later deletion.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Uploader stores binary blobs and hands back public URLs.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cloudinaryURL string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryUploader{client: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, folder string) (*UploadResult, error) {
	res, err := u.client.Upload.Upload(ctx, file, uploader.UploadParams{Folder: folder})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	return &UploadResult{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (u *CloudinaryUploader) Delete(ctx context.Context, publicID string) error {
	_, err := u.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}
