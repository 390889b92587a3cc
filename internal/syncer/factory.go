package syncer

import (
	"context"

	"feedsync/internal/config"
	"feedsync/internal/images"
	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/services/ecom"
	"feedsync/internal/specs"
)

// Runner is what callers need from a store scoped Syncer.
type Runner interface {
	SyncProduct(ctx context.Context, req ProductRequest) (*Result, error)
	SyncImages(ctx context.Context, productID string, imageLinks []string) ([]models.Picture, error)
}

// Factory builds a Runner for a store and its credential.
type Factory func(storeID int64, auth ecom.Auth) Runner

// SettingsFor derives the sync defaults of a store from the configuration.
func SettingsFor(cfg *config.Config, storeID int64) Settings {
	return Settings{
		DefaultQuantity:     cfg.DefaultQuantity,
		UpdateProduct:       cfg.UpdateProduct,
		BackorderEnabled:    cfg.BackorderEnabled(storeID),
		BackorderDays:       cfg.BackorderProductionDays,
		TaxonomyMaxAttempts: cfg.TaxonomyMaxAttempts,
		TaxonomyRetryDelay:  cfg.TaxonomyRetryDelay,
	}
}

// NewFactory wires platform clients from the configuration. The storage
// client and the specification rules are shared by every store.
func NewFactory(cfg *config.Config, logger *logger.Logger) Factory {
	storage := ecom.NewStorageClient(cfg.EcomStorageURL, cfg.EcomRequestsPerSec)
	importer := images.NewImporter(storage, logger)
	mapper := specs.NewMapper(specs.DefaultRules())

	return func(storeID int64, auth ecom.Auth) Runner {
		client := ecom.NewClient(cfg.EcomAPIURL, storeID, auth, cfg.EcomRequestsPerSec, logger)
		return New(client, importer, mapper, SettingsFor(cfg, storeID), logger)
	}
}
