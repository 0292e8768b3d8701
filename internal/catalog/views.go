package catalog

import (
	"time"

	"catalog-service/internal/model"
	"catalog-service/internal/policy"
	"catalog-service/internal/pricing"
	"catalog-service/internal/store"

	"github.com/shopspring/decimal"
)

// MediaResolver turns a stored image reference into a retrievable URL
type MediaResolver interface {
	URL(ref string) string
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := money(d.Decimal)
	return &s
}

type CategoryView struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Image       *string   `json:"image"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ImageView struct {
	ID         uint   `json:"id"`
	ProductID  uint   `json:"product_id"`
	Image      string `json:"image"`
	AltText    string `json:"alt_text"`
	IsFeatured bool   `json:"is_featured"`
	Position   int    `json:"position"`
}

type VariantView struct {
	ID                 uint    `json:"id"`
	ProductID          uint    `json:"product_id"`
	Name               string  `json:"name"`
	SKU                string  `json:"sku"`
	Price              string  `json:"price"`
	ComparePrice       *string `json:"compare_price"`
	StockQuantity      int     `json:"stock_quantity"`
	Weight             *string `json:"weight"`
	Position           int     `json:"position"`
	IsActive           bool    `json:"is_active"`
	DiscountPercentage int     `json:"discount_percentage"`
}

// ProductListView is the lightweight shape used by listings
type ProductListView struct {
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	Slug               string  `json:"slug"`
	ShortDescription   string  `json:"short_description"`
	CategoryName       string  `json:"category_name"`
	Price              string  `json:"price"`
	ComparePrice       *string `json:"compare_price"`
	Image              *string `json:"image"`
	IsFeatured         bool    `json:"is_featured"`
	Status             string  `json:"status"`
	IsInStock          bool    `json:"is_in_stock"`
	DiscountPercentage int     `json:"discount_percentage"`
	StockQuantity      int     `json:"stock_quantity"`
}

// ProductDetailView carries every product field with its category, images and variants
type ProductDetailView struct {
	ID                 uint          `json:"id"`
	Name               string        `json:"name"`
	Slug               string        `json:"slug"`
	Description        string        `json:"description"`
	ShortDescription   string        `json:"short_description"`
	ProductType        string        `json:"product_type"`
	Category           *CategoryView `json:"category"`
	Price              string        `json:"price"`
	ComparePrice       *string       `json:"compare_price"`
	CostPerUnit        *string       `json:"cost_per_unit"`
	SKU                string        `json:"sku"`
	Barcode            *string       `json:"barcode"`
	TrackInventory     bool          `json:"track_inventory"`
	StockQuantity      int           `json:"stock_quantity"`
	Weight             *string       `json:"weight"`
	Dimensions         string        `json:"dimensions"`
	Origin             string        `json:"origin"`
	RoastLevel         string        `json:"roast_level"`
	FlavorNotes        string        `json:"flavor_notes"`
	CaffeineContent    string        `json:"caffeine_content"`
	IsFeatured         bool          `json:"is_featured"`
	IsDigital          bool          `json:"is_digital"`
	RequiresShipping   bool          `json:"requires_shipping"`
	TaxStatus          string        `json:"tax_status"`
	Status             string        `json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	Images             []ImageView   `json:"images"`
	Variants           []VariantView `json:"variants"`
	IsInStock          bool          `json:"is_in_stock"`
	DiscountPercentage int           `json:"discount_percentage"`
}

type PlanView struct {
	ID                uint              `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Price             string            `json:"price"`
	DeliveryFrequency string            `json:"delivery_frequency"`
	Products          []ProductListView `json:"products"`
	IsActive          bool              `json:"is_active"`
	CreatedAt         time.Time         `json:"created_at"`
}

// StockView is the result of a stock adjustment
type StockView struct {
	ID            uint `json:"id"`
	StockQuantity int  `json:"stock_quantity"`
	IsInStock     bool `json:"is_in_stock"`
}

// presenter renders records for one caller against one consistent view
type presenter struct {
	view  *store.View
	scope policy.Scope
	media MediaResolver
}

func (p presenter) mediaURL(ref string) *string {
	if ref == "" {
		return nil
	}
	url := p.media.URL(ref)
	return &url
}

func (p presenter) category(c model.Category) CategoryView {
	return CategoryView{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       p.mediaURL(c.Image),
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (p presenter) image(img model.ProductImage) ImageView {
	url := p.media.URL(img.Image)
	return ImageView{
		ID:         img.ID,
		ProductID:  img.ProductID,
		Image:      url,
		AltText:    img.AltText,
		IsFeatured: img.IsFeatured,
		Position:   img.Position,
	}
}

func (p presenter) variant(v model.ProductVariant) VariantView {
	return VariantView{
		ID:                 v.ID,
		ProductID:          v.ProductID,
		Name:               v.Name,
		SKU:                v.SKU,
		Price:              money(v.Price),
		ComparePrice:       nullMoney(v.ComparePrice),
		StockQuantity:      v.StockQuantity,
		Weight:             nullMoney(v.Weight),
		Position:           v.Position,
		IsActive:           v.IsActive,
		DiscountPercentage: pricing.VariantDiscount(v),
	}
}

func (p presenter) productList(prod model.Product) ProductListView {
	c, _ := p.view.Category(prod.CategoryID)
	var image *string
	if featured := pricing.FeaturedImage(p.view.ListImagesByProduct(prod.ID)); featured != nil {
		image = p.mediaURL(featured.Image)
	}
	return ProductListView{
		ID:                 prod.ID,
		Name:               prod.Name,
		Slug:               prod.Slug,
		ShortDescription:   prod.ShortDescription,
		CategoryName:       c.Name,
		Price:              money(prod.Price),
		ComparePrice:       nullMoney(prod.ComparePrice),
		Image:              image,
		IsFeatured:         prod.IsFeatured,
		Status:             string(prod.Status),
		IsInStock:          pricing.IsInStock(prod),
		DiscountPercentage: pricing.ProductDiscount(prod),
		StockQuantity:      prod.StockQuantity,
	}
}

func (p presenter) productLists(products []model.Product) []ProductListView {
	out := make([]ProductListView, 0, len(products))
	for _, prod := range products {
		out = append(out, p.productList(prod))
	}
	return out
}

// productDetail nests images and variants in position order; callers without full visibility
// only see active variants.
func (p presenter) productDetail(prod model.Product) ProductDetailView {
	var category *CategoryView
	if c, ok := p.view.Category(prod.CategoryID); ok {
		cv := p.category(c)
		category = &cv
	}

	images := make([]ImageView, 0)
	for _, img := range p.view.ListImagesByProduct(prod.ID) {
		images = append(images, p.image(img))
	}
	variants := make([]VariantView, 0)
	for _, v := range p.view.ListVariantsByProduct(prod.ID) {
		if v.IsActive || p.scope.Unrestricted() {
			variants = append(variants, p.variant(v))
		}
	}

	return ProductDetailView{
		ID:                 prod.ID,
		Name:               prod.Name,
		Slug:               prod.Slug,
		Description:        prod.Description,
		ShortDescription:   prod.ShortDescription,
		ProductType:        string(prod.ProductType),
		Category:           category,
		Price:              money(prod.Price),
		ComparePrice:       nullMoney(prod.ComparePrice),
		CostPerUnit:        nullMoney(prod.CostPerUnit),
		SKU:                prod.SKU,
		Barcode:            prod.Barcode,
		TrackInventory:     prod.TrackInventory,
		StockQuantity:      prod.StockQuantity,
		Weight:             nullMoney(prod.Weight),
		Dimensions:         prod.Dimensions,
		Origin:             prod.Origin,
		RoastLevel:         prod.RoastLevel,
		FlavorNotes:        prod.FlavorNotes,
		CaffeineContent:    prod.CaffeineContent,
		IsFeatured:         prod.IsFeatured,
		IsDigital:          prod.IsDigital,
		RequiresShipping:   prod.RequiresShipping,
		TaxStatus:          prod.TaxStatus,
		Status:             string(prod.Status),
		CreatedAt:          prod.CreatedAt,
		UpdatedAt:          prod.UpdatedAt,
		Images:             images,
		Variants:           variants,
		IsInStock:          pricing.IsInStock(prod),
		DiscountPercentage: pricing.ProductDiscount(prod),
	}
}

// plan nests the plan products the caller may observe
func (p presenter) plan(plan model.SubscriptionPlan) PlanView {
	products := make([]ProductListView, 0)
	for _, id := range p.view.PlanProductIDs(plan.ID) {
		prod, ok := p.view.Product(id)
		if !ok {
			continue
		}
		c, _ := p.view.Category(prod.CategoryID)
		if p.scope.Product(prod, c) {
			products = append(products, p.productList(prod))
		}
	}
	return PlanView{
		ID:                plan.ID,
		Name:              plan.Name,
		Description:       plan.Description,
		Price:             money(plan.Price),
		DeliveryFrequency: string(plan.DeliveryFrequency),
		Products:          products,
		IsActive:          plan.IsActive,
		CreatedAt:         plan.CreatedAt,
	}
}
