package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/localcart"
	"github.com/jafarshop/storefront/internal/storage"
	"github.com/jafarshop/storefront/pkg/errors"
)

func n(v uint64) domain.Nat {
	return domain.NewNat(v)
}

func line(id, qty uint64) domain.CartLine {
	return domain.CartLine{ProductID: n(id), Quantity: n(qty)}
}

// fakeRemote records every call and holds one cart per principal.
type fakeRemote struct {
	mu       sync.Mutex
	carts    map[domain.Principal][]domain.CartLine
	calls    map[string]int
	mergeErr error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		carts: map[domain.Principal][]domain.CartLine{},
		calls: map[string]int{},
	}
}

func (f *fakeRemote) principal(ctx context.Context, op string) (domain.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	p, ok := domain.PrincipalFromContext(ctx).Get()
	if !ok {
		return "", &errors.ErrUnauthorized{}
	}
	return p, nil
}

func (f *fakeRemote) Get(ctx context.Context) ([]domain.CartLine, error) {
	p, err := f.principal(ctx, "get")
	if err != nil {
		return nil, err
	}
	return f.cart(p), nil
}

func (f *fakeRemote) Add(ctx context.Context, productID, quantity domain.Nat) error {
	p, err := f.principal(ctx, "add")
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[p] = domain.MergeLines(f.carts[p], []domain.CartLine{{ProductID: productID, Quantity: quantity}})
	return nil
}

func (f *fakeRemote) SetQuantity(ctx context.Context, productID, quantity domain.Nat) error {
	p, err := f.principal(ctx, "set")
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.carts[p] {
		if l.ProductID.Equal(productID) {
			f.carts[p][i].Quantity = quantity
			return nil
		}
	}
	f.carts[p] = append(f.carts[p], domain.CartLine{ProductID: productID, Quantity: quantity})
	return nil
}

func (f *fakeRemote) Remove(ctx context.Context, productID domain.Nat) error {
	p, err := f.principal(ctx, "remove")
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := []domain.CartLine{}
	for _, l := range f.carts[p] {
		if !l.ProductID.Equal(productID) {
			kept = append(kept, l)
		}
	}
	f.carts[p] = kept
	return nil
}

func (f *fakeRemote) Clear(ctx context.Context) error {
	p, err := f.principal(ctx, "clear")
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, p)
	return nil
}

func (f *fakeRemote) Merge(ctx context.Context, lines []domain.CartLine) error {
	p, err := f.principal(ctx, "merge")
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.carts[p] = domain.MergeLines(f.carts[p], lines)
	return nil
}

func (f *fakeRemote) cart(p domain.Principal) []domain.CartLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.CartLine{}, f.carts[p]...)
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := 0
	for _, c := range f.calls {
		sum += c
	}
	return sum
}

type fixture struct {
	kv     *storage.Memory
	local  *localcart.Store
	remote *fakeRemote
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	kv := storage.NewMemory()
	t.Cleanup(func() { _ = kv.Close() })
	return fixture{
		kv:     kv,
		local:  localcart.NewStore(kv, localcart.StorageKey, zap.NewNop()),
		remote: newFakeRemote(),
	}
}

func (f fixture) rawLocal(t *testing.T) string {
	t.Helper()
	raw, _, err := f.kv.Get(context.Background(), localcart.StorageKey)
	require.NoError(t, err)
	return raw
}

// render flattens lines to "id:qty" for comparison
func render(lines []domain.CartLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ProductID.String()+":"+l.Quantity.String())
	}
	return out
}
