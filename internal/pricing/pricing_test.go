package pricing

import (
	"testing"

	"catalog-service/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func compare(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestIsInStock(t *testing.T) {
	tracked := model.Product{TrackInventory: true, StockQuantity: 0}
	assert.False(t, IsInStock(tracked))

	tracked.StockQuantity = 3
	assert.True(t, IsInStock(tracked))

	untracked := model.Product{TrackInventory: false, StockQuantity: 0}
	assert.True(t, IsInStock(untracked))
}

func TestDiscountPercentage(t *testing.T) {
	cases := []struct {
		name    string
		price   decimal.Decimal
		compare decimal.NullDecimal
		want    int
	}{
		{"half off", price("10.00"), compare("20.00"), 50},
		{"no compare price", price("10.00"), decimal.NullDecimal{}, 0},
		{"compare equal to price", price("10.00"), compare("10.00"), 0},
		{"compare below price", price("12.00"), compare("10.00"), 0},
		{"zero compare price", price("10.00"), compare("0"), 0},
		{"rounds down", price("6.66"), compare("10.00"), 33},
		{"rounds up", price("3.33"), compare("10.00"), 67},
		{"half rounds to even", price("8.75"), compare("10.00"), 12},
		{"free item", price("0"), compare("10.00"), 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DiscountPercentage(tc.price, tc.compare))
		})
	}
}

func TestProductAndVariantDiscount(t *testing.T) {
	p := model.Product{Price: price("15.00"), ComparePrice: compare("20.00")}
	assert.Equal(t, 25, ProductDiscount(p))

	v := model.ProductVariant{Price: price("9.00"), ComparePrice: compare("10.00")}
	assert.Equal(t, 10, VariantDiscount(v))
}

func TestFeaturedImage(t *testing.T) {
	assert.Nil(t, FeaturedImage(nil))
	assert.Nil(t, FeaturedImage([]model.ProductImage{{ID: 1}, {ID: 2}}))

	images := []model.ProductImage{
		{ID: 5, Position: 2, IsFeatured: true},
		{ID: 3, Position: 0, IsFeatured: false},
		{ID: 7, Position: 1, IsFeatured: true},
		{ID: 4, Position: 1, IsFeatured: true},
	}
	img := FeaturedImage(images)
	require.NotNil(t, img)
	assert.Equal(t, uint(4), img.ID)
}
