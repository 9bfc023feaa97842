package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

// CatalogSource is the remote product catalog (see backend.Catalog).
type CatalogSource interface {
	AllProducts(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id domain.Nat) (*domain.Product, error)
	Search(ctx context.Context, term string) ([]domain.Product, error)
	ByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ByPrice(ctx context.Context, ascending bool) ([]domain.Product, error)
}

// Product list sort orders
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

type snapshot struct {
	catalog   *cart.Catalog
	fetchedAt time.Time
}

// CatalogService keeps the most recently fetched product list. Readers get an
// immutable snapshot; a refresh builds a new one and swaps it in.
type CatalogService struct {
	source CatalogSource
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *snapshot
	refresh singleflight.Group
}

// NewCatalogService creates a catalog service. A zero ttl refetches on every call.
func NewCatalogService(source CatalogSource, ttl time.Duration, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		source: source,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Snapshot returns the cached catalog, fetching it when missing or older than
// the ttl. If a refresh fails and a previous snapshot exists, the stale one is
// served.
func (s *CatalogService) Snapshot(ctx context.Context) (*cart.Catalog, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current != nil && s.now().Sub(current.fetchedAt) < s.ttl {
		return current.catalog, nil
	}

	v, err, _ := s.refresh.Do("products", func() (interface{}, error) {
		products, err := s.source.AllProducts(ctx)
		if err != nil {
			return nil, err
		}
		next := &snapshot{catalog: cart.NewCatalog(products), fetchedAt: s.now()}
		s.mu.Lock()
		s.current = next
		s.mu.Unlock()
		s.logger.Debug("Catalog snapshot refreshed", zap.Int("products", next.catalog.Len()))
		return next.catalog, nil
	})
	if err != nil {
		if current != nil {
			s.logger.Warn("Catalog refresh failed, serving stale snapshot", zap.Error(err))
			return current.catalog, nil
		}
		return nil, err
	}
	return v.(*cart.Catalog), nil
}

// Invalidate drops the cached snapshot so the next read refetches
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// ProductQuery filters the product list. At most one of Term and Category
// is applied, Term first; Sort applies only when both are empty.
type ProductQuery struct {
	Term     string `form:"q"`
	Category string `form:"category"`
	Sort     string `form:"sort"`
}

// List returns products matching q
func (s *CatalogService) List(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	term := strings.TrimSpace(q.Term)
	category := strings.TrimSpace(q.Category)

	switch {
	case term != "":
		return s.source.Search(ctx, term)
	case category != "":
		return s.source.ByCategory(ctx, category)
	}

	switch q.Sort {
	case "":
		catalog, err := s.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.Products(), nil
	case SortPriceAsc:
		return s.source.ByPrice(ctx, true)
	case SortPriceDesc:
		return s.source.ByPrice(ctx, false)
	default:
		return nil, &errors.ErrValidation{Fields: map[string]string{
			"sort": "Sort must be price_asc or price_desc",
		}}
	}
}

// Product returns a single product from the backend
func (s *CatalogService) Product(ctx context.Context, id domain.Nat) (*domain.Product, error) {
	return s.source.Product(ctx, id)
}
