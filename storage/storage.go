// Package storage holds announcement cover images in an object store.
package storage

// go generate: mockery --name ObjectStorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/config"
)

// ErrNotConfigured is returned by NewCloudinary when credentials are missing
var ErrNotConfigured = errors.New("object storage is not configured")

// ObjectStorage stores binary objects under a caller chosen key
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Cloudinary is the ObjectStorage backed by a Cloudinary account
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary builds the adapter from config
func NewCloudinary(conf config.CloudinaryConfig) (*Cloudinary, error) {
	if conf.CloudName == "" || conf.APIKey == "" || conf.APISecret == "" {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(conf.CloudName, conf.APIKey, conf.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, folder: conf.Folder}, nil
}

func (c *Cloudinary) publicID(key string) string {
	if c.folder == "" {
		return key
	}
	return path.Join(c.folder, key)
}

// Upload stores data under key, replacing any previous object, and returns its https url
func (c *Cloudinary) Upload(ctx context.Context, key string, data []byte) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:  c.publicID(key),
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", key, resp.Error.Message)
	}
	zap.S().Debugw("uploaded object", "key", key, "publicId", resp.PublicID, "bytes", resp.Bytes)
	return resp.SecureURL, nil
}

// Delete removes the object stored under key. A missing object is not an error.
func (c *Cloudinary) Delete(ctx context.Context, key string) error {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: c.publicID(key)})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("delete %s: %s", key, resp.Error.Message)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("delete %s: unexpected result %q", key, resp.Result)
	}
	return nil
}
