package checkout

import (
	"golang.org/x/sync/singleflight"

	"github.com/jafarshop/storefront/internal/domain"
)

// Guard collapses concurrent submissions with the same key into one call.
// A double-clicked "Place Order" therefore creates a single order, while a
// submission with different details gets its own call.
type Guard struct {
	group singleflight.Group
}

func NewGuard() *Guard {
	return &Guard{}
}

// Do runs fn unless a call for key is already in flight, in which case it
// waits for and returns that call's result. shared reports the latter.
func (g *Guard) Do(key string, fn func() (*domain.Order, error)) (order *domain.Order, shared bool, err error) {
	v, err, shared := g.group.Do(key, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return nil, shared, err
	}
	return v.(*domain.Order), shared, nil
}
