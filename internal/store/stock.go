package store

import (
	"context"
	"sync"
	"sync/atomic"

	"catalog-service/internal/apperror"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var errQuantity = apperror.Validation("quantity", "quantity must be at least 1")

// stockCell is the live stock counter of one product or variant. mu serializes mutations;
// readers load qty without locking.
type stockCell struct {
	mu      sync.Mutex
	qty     atomic.Int64
	removed atomic.Bool
}

func newStockCell(qty int) *stockCell {
	c := &stockCell{}
	c.qty.Store(int64(qty))
	return c
}

func (c *stockCell) load() int {
	return int(c.qty.Load())
}

// DecrementProductStock removes n units from a product and returns the new quantity
func (s *Store) DecrementProductStock(ctx context.Context, productID uint, n int) (int, error) {
	if n < 1 {
		return 0, errQuantity
	}
	return s.adjustStock(ctx, StockProduct, productID, -n)
}

// IncrementProductStock adds n units to a product and returns the new quantity
func (s *Store) IncrementProductStock(ctx context.Context, productID uint, n int) (int, error) {
	if n < 1 {
		return 0, errQuantity
	}
	return s.adjustStock(ctx, StockProduct, productID, n)
}

// DecrementVariantStock removes n units from a variant and returns the new quantity
func (s *Store) DecrementVariantStock(ctx context.Context, variantID uint, n int) (int, error) {
	if n < 1 {
		return 0, errQuantity
	}
	return s.adjustStock(ctx, StockVariant, variantID, -n)
}

// IncrementVariantStock adds n units to a variant and returns the new quantity
func (s *Store) IncrementVariantStock(ctx context.Context, variantID uint, n int) (int, error) {
	if n < 1 {
		return 0, errQuantity
	}
	return s.adjustStock(ctx, StockVariant, variantID, n)
}

func (s *Store) adjustStock(ctx context.Context, target StockTarget, id uint, delta int) (int, error) {
	cell, label := s.stockCellFor(target, id)
	if cell == nil {
		return 0, apperror.NotFound("%s %d not found", label, id)
	}

	cell.mu.Lock()
	defer cell.mu.Unlock()

	if cell.removed.Load() {
		return 0, apperror.NotFound("%s %d not found", label, id)
	}

	current := cell.load()
	next := current + delta
	if next < 0 {
		s.log.Warn("Stock decrement rejected",
			zap.String("target", label),
			zap.Uint("id", id),
			zap.Int("available", current),
			zap.Int("requested", -delta))
		return current, apperror.InsufficientStock(current, -delta)
	}

	cs := &Changeset{Stock: []StockChange{{Target: target, ID: id, Quantity: next}}}
	if err := s.persister.Apply(ctx, cs); err != nil {
		return current, errors.Wrapf(err, "persist %s %d stock", label, id)
	}
	cell.qty.Store(int64(next))

	s.log.Debug("Stock adjusted",
		zap.String("target", label),
		zap.Uint("id", id),
		zap.Int("old_quantity", current),
		zap.Int("new_quantity", next))
	return next, nil
}

func (s *Store) stockCellFor(target StockTarget, id uint) (*stockCell, string) {
	snap := s.current.Load()
	if target == StockVariant {
		return snap.variantStock[id], "variant"
	}
	return snap.productStock[id], "product"
}
