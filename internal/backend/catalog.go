package backend

import (
	"context"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

// Catalog reads products from the backend
type Catalog struct {
	client *Client
}

func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

// AllProducts fetches the full catalog snapshot
func (c *Catalog) AllProducts(ctx context.Context) ([]domain.Product, error) {
	return c.list(ctx, "getAllProducts", ProductsQuery, "products", nil)
}

// Product fetches one product, ErrNotFound when the backend returns null
func (c *Catalog) Product(ctx context.Context, id domain.Nat) (*domain.Product, error) {
	resp, err := c.client.Execute(ctx, "getProduct", ProductQuery, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}

	var result struct {
		Product domain.Option[domain.Product] `json:"product"`
	}
	if err := decode("getProduct", resp, &result); err != nil {
		return nil, err
	}

	product, ok := result.Product.Get()
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	return &product, nil
}

func (c *Catalog) Search(ctx context.Context, term string) ([]domain.Product, error) {
	return c.list(ctx, "searchProducts", SearchProductsQuery, "searchProducts", map[string]any{"term": term})
}

func (c *Catalog) ByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return c.list(ctx, "filterByCategory", ProductsByCategoryQuery, "productsByCategory", map[string]any{"category": category})
}

func (c *Catalog) ByPrice(ctx context.Context, ascending bool) ([]domain.Product, error) {
	return c.list(ctx, "sortProductsByPrice", ProductsByPriceQuery, "productsByPrice", map[string]any{"ascending": ascending})
}

func (c *Catalog) list(ctx context.Context, operation, query, field string, variables map[string]any) ([]domain.Product, error) {
	resp, err := c.client.Execute(ctx, operation, query, variables)
	if err != nil {
		return nil, err
	}

	var result map[string][]domain.Product
	if err := decode(operation, resp, &result); err != nil {
		return nil, err
	}
	products := result[field]
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}
