// Package taxonomy finds or creates the brand and category a feed record
// points at.
package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"feedsync/internal/feed"
	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/textutil"
)

// ErrNotResolved is returned when a node was created but never showed up in
// the lookups that followed.
var ErrNotResolved = errors.New("taxonomy node not resolved")

// Store is the subset of the platform API used for taxonomy nodes.
type Store interface {
	FindBrandsBySlug(ctx context.Context, slug string) ([]models.TaxonomyNode, error)
	CreateBrand(ctx context.Context, node models.TaxonomyNode) error
	FindCategoriesByName(ctx context.Context, name string) ([]models.TaxonomyNode, error)
	CreateCategory(ctx context.Context, node models.TaxonomyNode) error
}

type kind struct {
	label     string
	attribute string
	name      func(text string) string
	key       func(node models.TaxonomyNode) string
	find      func(ctx context.Context, s Store, node models.TaxonomyNode) ([]models.TaxonomyNode, error)
	create    func(ctx context.Context, s Store, node models.TaxonomyNode) error
}

// Brands are matched by slug, categories by exact name.
var (
	brandKind = kind{
		label:     "brand",
		attribute: "brand",
		name:      strings.TrimSpace,
		key:       func(n models.TaxonomyNode) string { return n.Slug },
		find: func(ctx context.Context, s Store, n models.TaxonomyNode) ([]models.TaxonomyNode, error) {
			return s.FindBrandsBySlug(ctx, n.Slug)
		},
		create: func(ctx context.Context, s Store, n models.TaxonomyNode) error {
			return s.CreateBrand(ctx, n)
		},
	}
	categoryKind = kind{
		label:     "category",
		attribute: "google_product_category",
		name:      LastSegment,
		key:       func(n models.TaxonomyNode) string { return n.Name },
		find: func(ctx context.Context, s Store, n models.TaxonomyNode) ([]models.TaxonomyNode, error) {
			return s.FindCategoriesByName(ctx, n.Name)
		},
		create: func(ctx context.Context, s Store, n models.TaxonomyNode) error {
			return s.CreateCategory(ctx, n)
		},
	}
)

// LastSegment returns the most specific entry of a "A > B > C" breadcrumb.
func LastSegment(path string) string {
	parts := strings.Split(path, ">")
	return strings.TrimSpace(parts[len(parts)-1])
}

// Resolver resolves taxonomy nodes for one synchronization run. Nodes found
// by lookup are cached for the lifetime of the resolver; create a new one per
// run.
type Resolver struct {
	store       Store
	logger      *logger.Logger
	maxAttempts int
	retryDelay  time.Duration

	mu    sync.Mutex
	cache map[string]models.TaxonomyNode
}

func NewResolver(store Store, maxAttempts int, retryDelay time.Duration, logger *logger.Logger) *Resolver {
	if maxAttempts < 2 {
		maxAttempts = 2
	}
	return &Resolver{
		store:       store,
		logger:      logger,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		cache:       make(map[string]models.TaxonomyNode),
	}
}

// Brand returns the brand referenced by the record, or nil when it has none.
func (r *Resolver) Brand(ctx context.Context, record feed.Record) (*models.TaxonomyNode, error) {
	return r.resolve(ctx, brandKind, record)
}

// Category returns the most specific category of the record's breadcrumb, or
// nil when it has none.
func (r *Resolver) Category(ctx context.Context, record feed.Record) (*models.TaxonomyNode, error) {
	return r.resolve(ctx, categoryKind, record)
}

func (r *Resolver) resolve(ctx context.Context, k kind, record feed.Record) (*models.TaxonomyNode, error) {
	name := k.name(textutil.PlainText(feed.Get(k.attribute, record)))
	slug := textutil.Slugify(name)
	if name == "" || slug == "" {
		return nil, nil
	}
	node := models.TaxonomyNode{Name: name, Slug: slug}
	cacheKey := k.label + ":" + k.key(node)

	r.mu.Lock()
	cached, ok := r.cache[cacheKey]
	r.mu.Unlock()
	if ok {
		return &cached, nil
	}

	log := r.logger.WithFields(map[string]interface{}{k.label: name, "slug": slug})
	created := false
	delay := r.retryDelay
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		found, err := k.find(ctx, r.store, node)
		if err != nil {
			log.Error("[taxonomy] %s lookup failed: %v", k.label, err)
			return nil, fmt.Errorf("find %s %q: %w", k.label, name, err)
		}
		if len(found) > 0 {
			result := models.TaxonomyNode{ID: found[0].ID, Name: found[0].Name, Slug: found[0].Slug}
			r.mu.Lock()
			r.cache[cacheKey] = result
			r.mu.Unlock()
			return &result, nil
		}
		if attempt == r.maxAttempts {
			break
		}

		if !created {
			log.Info("[taxonomy] creating %s", k.label)
			if err := k.create(ctx, r.store, node); err != nil {
				log.Error("[taxonomy] %s create failed: %v", k.label, err)
				return nil, fmt.Errorf("create %s %q: %w", k.label, name, err)
			}
			created = true
			continue
		}

		log.Warn("[taxonomy] %s not visible yet after create, retrying in %s", k.label, delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	log.Error("[taxonomy] %s still missing after %d lookups", k.label, r.maxAttempts)
	return nil, fmt.Errorf("%w: %s %q after %d lookups", ErrNotResolved, k.label, name, r.maxAttempts)
}
