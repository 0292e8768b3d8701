package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType classifies what kind of item a product is
type ProductType string

const (
	ProductTypeBean      ProductType = "bean"
	ProductTypeGround    ProductType = "ground"
	ProductTypePod       ProductType = "pod"
	ProductTypeEquipment ProductType = "equipment"
	ProductTypeAccessory ProductType = "accessory"
)

// Valid reports whether t is one of the known product types
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeBean, ProductTypeGround, ProductTypePod, ProductTypeEquipment, ProductTypeAccessory:
		return true
	}
	return false
}

// ProductStatus is the publication state of a product
type ProductStatus string

const (
	StatusActive   ProductStatus = "active"
	StatusDraft    ProductStatus = "draft"
	StatusArchived ProductStatus = "archived"
)

// Valid reports whether s is one of the known statuses
func (s ProductStatus) Valid() bool {
	switch s {
	case StatusActive, StatusDraft, StatusArchived:
		return true
	}
	return false
}

// Product represents the product master data. StockQuantity is only meaningful while
// TrackInventory is set.
type Product struct {
	ID               uint                `json:"id" gorm:"primarykey"`
	Name             string              `json:"name" gorm:"type:varchar(200);not null"`
	Slug             string              `json:"slug" gorm:"type:varchar(200);not null;uniqueIndex"`
	Description      string              `json:"description" gorm:"type:text"`
	ShortDescription string              `json:"short_description" gorm:"type:varchar(500)"`
	ProductType      ProductType         `json:"product_type" gorm:"type:varchar(20);not null"`
	CategoryID       uint                `json:"category_id" gorm:"index;not null"`
	Price            decimal.Decimal     `json:"price" gorm:"type:numeric(10,2);not null"`
	ComparePrice     decimal.NullDecimal `json:"compare_price" gorm:"type:numeric(10,2)"`
	CostPerUnit      decimal.NullDecimal `json:"cost_per_unit" gorm:"type:numeric(10,2)"`
	SKU              string              `json:"sku" gorm:"type:varchar(100);not null;uniqueIndex"`
	Barcode          *string             `json:"barcode" gorm:"type:varchar(50)"`
	TrackInventory   bool                `json:"track_inventory" gorm:"not null"`
	StockQuantity    int                 `json:"stock_quantity" gorm:"not null"`
	Weight           decimal.NullDecimal `json:"weight" gorm:"type:numeric(8,2)"`
	Dimensions       string              `json:"dimensions" gorm:"type:varchar(100)"`
	Origin           string              `json:"origin" gorm:"type:varchar(100)"`
	RoastLevel       string              `json:"roast_level" gorm:"type:varchar(50)"`
	FlavorNotes      string              `json:"flavor_notes" gorm:"type:text"`
	CaffeineContent  string              `json:"caffeine_content" gorm:"type:varchar(50)"`
	IsFeatured       bool                `json:"is_featured" gorm:"not null"`
	IsDigital        bool                `json:"is_digital" gorm:"not null"`
	RequiresShipping bool                `json:"requires_shipping" gorm:"not null"`
	TaxStatus        string              `json:"tax_status" gorm:"type:varchar(50);not null"`
	Status           ProductStatus       `json:"status" gorm:"type:varchar(20);index;not null"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ProductInput carries a product write. Nil pointers and unset optionals are left untouched
// on partial update.
type ProductInput struct {
	Name             *string                   `json:"name"`
	Slug             *string                   `json:"slug"`
	Description      *string                   `json:"description"`
	ShortDescription *string                   `json:"short_description"`
	ProductType      *ProductType              `json:"product_type"`
	CategoryID       *uint                     `json:"category_id"`
	Price            *decimal.Decimal          `json:"price"`
	ComparePrice     Optional[decimal.Decimal] `json:"compare_price"`
	CostPerUnit      Optional[decimal.Decimal] `json:"cost_per_unit"`
	SKU              *string                   `json:"sku"`
	Barcode          Optional[string]          `json:"barcode"`
	TrackInventory   *bool                     `json:"track_inventory"`
	StockQuantity    *int                      `json:"stock_quantity"`
	Weight           Optional[decimal.Decimal] `json:"weight"`
	Dimensions       *string                   `json:"dimensions"`
	Origin           *string                   `json:"origin"`
	RoastLevel       *string                   `json:"roast_level"`
	FlavorNotes      *string                   `json:"flavor_notes"`
	CaffeineContent  *string                   `json:"caffeine_content"`
	IsFeatured       *bool                     `json:"is_featured"`
	IsDigital        *bool                     `json:"is_digital"`
	RequiresShipping *bool                     `json:"requires_shipping"`
	TaxStatus        *string                   `json:"tax_status"`
	Status           *ProductStatus            `json:"status"`
}
