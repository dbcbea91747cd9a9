// Package media is the boundary to the external image store. Clients submit
// images as base64 data URIs; the store returns a durable HTTPS URL that is
// what actually gets persisted in message and profile records.
package media

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Uploader uploads an image payload and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, dataURI, folder string) (string, error)
}

// CloudinaryUploader implements Uploader on top of Cloudinary.
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds an uploader from a cloudinary:// credentials URL.
func NewCloudinary(credentialsURL string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(credentialsURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

// Upload sends the data URI to Cloudinary and returns the secure URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, dataURI, folder string) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload: empty secure URL (error: %s)", resp.Error.Message)
	}
	return resp.SecureURL, nil
}
