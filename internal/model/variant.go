package model

import "github.com/shopspring/decimal"

// ProductVariant is a purchasable option of a product (size, grind, ...)
type ProductVariant struct {
	ID            uint                `json:"id" gorm:"primarykey"`
	ProductID     uint                `json:"product_id" gorm:"not null;uniqueIndex:idx_variant_product_name"`
	Name          string              `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_variant_product_name"`
	SKU           string              `json:"sku" gorm:"type:varchar(100);not null;uniqueIndex"`
	Price         decimal.Decimal     `json:"price" gorm:"type:numeric(10,2);not null"`
	ComparePrice  decimal.NullDecimal `json:"compare_price" gorm:"type:numeric(10,2)"`
	StockQuantity int                 `json:"stock_quantity" gorm:"not null"`
	Weight        decimal.NullDecimal `json:"weight" gorm:"type:numeric(8,2)"`
	Position      int                 `json:"position" gorm:"not null"`
	IsActive      bool                `json:"is_active" gorm:"not null"`
}

// VariantInput carries a variant write
type VariantInput struct {
	ProductID     *uint                     `json:"product_id"`
	Name          *string                   `json:"name"`
	SKU           *string                   `json:"sku"`
	Price         *decimal.Decimal          `json:"price"`
	ComparePrice  Optional[decimal.Decimal] `json:"compare_price"`
	StockQuantity *int                      `json:"stock_quantity"`
	Weight        Optional[decimal.Decimal] `json:"weight"`
	Position      *int                      `json:"position"`
	IsActive      *bool                     `json:"is_active"`
}
