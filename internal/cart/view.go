package cart

import (
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

// Catalog is an immutable snapshot of the product list indexed by id.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

// NewCatalog indexes products. The slice is copied.
func NewCatalog(products []domain.Product) *Catalog {
	c := &Catalog{
		products: append([]domain.Product(nil), products...),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range c.products {
		c.byID[p.ID.Key()] = i
	}
	return c
}

// Lookup resolves a product id in the snapshot.
func (c *Catalog) Lookup(id domain.Nat) domain.Option[domain.Product] {
	if c == nil {
		return domain.None[domain.Product]()
	}
	if i, ok := c.byID[id.Key()]; ok {
		return domain.Some(c.products[i])
	}
	return domain.None[domain.Product]()
}

// Products returns a copy of the snapshot in catalog order
func (c *Catalog) Products() []domain.Product {
	if c == nil {
		return []domain.Product{}
	}
	return append([]domain.Product(nil), c.products...)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// ItemView is a cart line joined with its product.
type ItemView struct {
	domain.CartLine
	Product   domain.Product `json:"product"`
	LineTotal domain.Nat     `json:"lineTotal"`
}

// View is the priced cart shown to the user.
type View struct {
	Items    []ItemView `json:"items"`
	Subtotal domain.Nat `json:"subtotal"`
}

// BuildView joins lines with the catalog. Lines whose product is missing from
// the snapshot are left out of both Items and Subtotal; they are not removed
// from the underlying cart.
func BuildView(lines []domain.CartLine, catalog *Catalog) View {
	view := View{Items: make([]ItemView, 0, len(lines))}
	for _, line := range lines {
		product, ok := catalog.Lookup(line.ProductID).Get()
		if !ok {
			continue
		}
		lineTotal := product.Price.Mul(line.Quantity)
		view.Items = append(view.Items, ItemView{
			CartLine:  line,
			Product:   product,
			LineTotal: lineTotal,
		})
		view.Subtotal = view.Subtotal.Add(lineTotal)
	}
	return view
}

func (v View) IsEmpty() bool {
	return len(v.Items) == 0
}

// ItemCount sums the quantities of the visible items
func (v View) ItemCount() domain.Nat {
	total := domain.Nat{}
	for _, item := range v.Items {
		total = total.Add(item.Quantity)
	}
	return total
}

// CheckQuantity validates a stepper request for product. Quantities below 1
// must go through removal instead; quantities above stock are refused.
func CheckQuantity(product domain.Product, requested domain.Nat) error {
	if requested.IsZero() {
		return &errors.ErrInvalidQuantity{
			ProductID: product.ID.String(),
			Quantity:  requested.String(),
			Reason:    "quantity must be at least 1, remove the item instead",
		}
	}
	if requested.Cmp(product.Stock) > 0 {
		return &errors.ErrStockExceeded{
			ProductID: product.ID.String(),
			Requested: requested.String(),
			Available: product.Stock.String(),
		}
	}
	return nil
}

// ClampQuantity pins requested to [1, stock]. ok is false when stock is zero.
func ClampQuantity(requested, stock domain.Nat) (domain.Nat, bool) {
	if stock.IsZero() {
		return domain.Nat{}, false
	}
	one := domain.NewNat(1)
	if requested.Cmp(one) < 0 {
		return one, true
	}
	return requested.Min(stock), true
}
