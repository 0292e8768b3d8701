// Package pricing derives read-time values from stored entity fields. Nothing here is
// persisted; every value is recomputed from the current record.
package pricing

import (
	"catalog-service/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// IsInStock reports whether a product can be sold. Untracked products are always in stock.
func IsInStock(p model.Product) bool {
	if !p.TrackInventory {
		return true
	}
	return p.StockQuantity > 0
}

// DiscountPercentage returns how far price sits below comparePrice as a whole percentage in
// [0, 100]. Halves round to even. Returns 0 when there is no compare price or it is not above
// price.
func DiscountPercentage(price decimal.Decimal, comparePrice decimal.NullDecimal) int {
	if !comparePrice.Valid || comparePrice.Decimal.Sign() <= 0 {
		return 0
	}
	if !comparePrice.Decimal.GreaterThan(price) {
		return 0
	}
	pct := comparePrice.Decimal.Sub(price).Div(comparePrice.Decimal).Mul(hundred).RoundBank(0).IntPart()
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return int(pct)
}

// ProductDiscount is DiscountPercentage applied to a product
func ProductDiscount(p model.Product) int {
	return DiscountPercentage(p.Price, p.ComparePrice)
}

// VariantDiscount is DiscountPercentage applied to a variant
func VariantDiscount(v model.ProductVariant) int {
	return DiscountPercentage(v.Price, v.ComparePrice)
}

// FeaturedImage picks the primary image among images flagged featured: lowest position,
// then lowest id. Returns nil when no image is flagged.
func FeaturedImage(images []model.ProductImage) *model.ProductImage {
	var best *model.ProductImage
	for i := range images {
		img := &images[i]
		if !img.IsFeatured {
			continue
		}
		if best == nil || img.Position < best.Position ||
			(img.Position == best.Position && img.ID < best.ID) {
			best = img
		}
	}
	return best
}
