// Package images copies feed images into the platform object storage.
package images

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"

	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/services/ecom"
)

// Storage fetches source binaries and uploads them to object storage.
type Storage interface {
	Fetch(ctx context.Context, sourceURL string) ([]byte, error)
	Upload(ctx context.Context, storeID int64, auth ecom.Auth, filename string, data []byte) (map[string]*ecom.StoredVariant, error)
}

type Importer struct {
	storage Storage
	logger  *logger.Logger
}

func NewImporter(storage Storage, logger *logger.Logger) *Importer {
	return &Importer{
		storage: storage,
		logger:  logger,
	}
}

// Import copies one image. Failures are logged and reported as nil so a
// broken link never stops the rest of a product's images.
func (i *Importer) Import(ctx context.Context, storeID int64, auth ecom.Auth, sourceURL, productName string) *models.Picture {
	picture, err := i.importPicture(ctx, storeID, auth, sourceURL, productName)
	if err != nil {
		fields := ecom.ErrorFields(err)
		fields["store_id"] = storeID
		fields["image"] = sourceURL
		i.logger.WithFields(fields).Error("[images] import failed: %v", err)
		return nil
	}
	return picture
}

func (i *Importer) importPicture(ctx context.Context, storeID int64, auth ecom.Auth, sourceURL, productName string) (*models.Picture, error) {
	data, err := i.storage.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch source image: %w", err)
	}

	variants, err := i.storage.Upload(ctx, storeID, auth, fileName(sourceURL), data)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	sizes := make(map[string]models.PictureSize, len(variants))
	for name, variant := range variants {
		if variant == nil || variant.URL == "" {
			continue
		}
		sizes[name] = models.PictureSize{
			URL: variant.URL,
			Alt: fmt.Sprintf("%s (%s)", productName, name),
		}
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: no usable picture size among %v", ecom.ErrUnexpectedResponse, variantNames(variants))
	}

	return &models.Picture{ID: models.NewObjectID(), Sizes: sizes}, nil
}

// fileName is the last path segment of the source URL.
func fileName(sourceURL string) string {
	if u, err := url.Parse(sourceURL); err == nil && u.Path != "" {
		if base := path.Base(u.Path); base != "/" && base != "." {
			return base
		}
	}
	return "image"
}

func variantNames(variants map[string]*ecom.StoredVariant) []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
