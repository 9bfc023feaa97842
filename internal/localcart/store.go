package localcart

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storage"
	"github.com/jafarshop/storefront/pkg/errors"
)

// StorageKey is the record the guest cart lives under
const StorageKey = "guest_cart"

// KeyFor scopes the storage key to one device when several devices share a backend.
func KeyFor(deviceID string) string {
	if deviceID == "" {
		return StorageKey
	}
	return StorageKey + ":" + deviceID
}

// Store is the unauthenticated, device-local cart. Every mutation is a full
// read-modify-write of the single stored record.
type Store struct {
	kv     storage.KV
	key    string
	logger *zap.Logger
}

// NewStore creates a store persisting under key
func NewStore(kv storage.KV, key string, logger *zap.Logger) *Store {
	return &Store{
		kv:     kv,
		key:    key,
		logger: logger,
	}
}

// Read returns the stored lines. A missing or unparseable record reads as an
// empty cart; only storage I/O failures are returned.
func (s *Store) Read(ctx context.Context) ([]domain.CartLine, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to load local cart: %w", err)
	}
	if !found || raw == "" {
		return []domain.CartLine{}, nil
	}

	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.logger.Warn("Discarding corrupt local cart",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return []domain.CartLine{}, nil
	}
	return domain.NormalizeLines(lines), nil
}

// Write replaces the stored cart
func (s *Store) Write(ctx context.Context, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal local cart: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to save local cart: %w", err)
	}
	return nil
}

// Add sums quantity into an existing line or appends a new one
func (s *Store) Add(ctx context.Context, productID, quantity domain.Nat) error {
	if quantity.IsZero() {
		return &errors.ErrInvalidQuantity{
			ProductID: productID.String(),
			Quantity:  quantity.String(),
			Reason:    "quantity to add must be at least 1",
		}
	}

	lines, err := s.Read(ctx)
	if err != nil {
		return err
	}
	return s.Write(ctx, domain.MergeLines(lines, []domain.CartLine{{ProductID: productID, Quantity: quantity}}))
}

// SetQuantity replaces the stored quantity; zero deletes the line. No stock
// clamping happens here.
func (s *Store) SetQuantity(ctx context.Context, productID, quantity domain.Nat) error {
	lines, err := s.Read(ctx)
	if err != nil {
		return err
	}

	if quantity.IsZero() {
		return s.Write(ctx, without(lines, productID))
	}

	replaced := false
	for i := range lines {
		if lines[i].ProductID.Equal(productID) {
			lines[i].Quantity = quantity
			replaced = true
		}
	}
	if !replaced {
		lines = append(lines, domain.CartLine{ProductID: productID, Quantity: quantity})
	}
	return s.Write(ctx, lines)
}

// Remove deletes the line if present
func (s *Store) Remove(ctx context.Context, productID domain.Nat) error {
	lines, err := s.Read(ctx)
	if err != nil {
		return err
	}
	return s.Write(ctx, without(lines, productID))
}

// Clear empties the store
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to clear local cart: %w", err)
	}
	return nil
}

// Count returns the total number of units in the cart
func (s *Store) Count(ctx context.Context) (domain.Nat, error) {
	lines, err := s.Read(ctx)
	if err != nil {
		return domain.Nat{}, err
	}
	return domain.TotalQuantity(lines), nil
}

func without(lines []domain.CartLine, productID domain.Nat) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	for _, line := range lines {
		if !line.ProductID.Equal(productID) {
			out = append(out, line)
		}
	}
	return out
}
