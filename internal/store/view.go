package store

import (
	"sort"

	"catalog-service/internal/model"
)

// View is a consistent read-only picture of the catalog. Stock quantities are read live from
// the per-entity counters.
type View struct {
	snap *snapshot
}

func sortedIDs(ids []uint) []uint {
	out := append([]uint(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func keys[V any](m map[uint]V) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return sortedIDs(ids)
}

// Category returns the category with id
func (v *View) Category(id uint) (model.Category, bool) {
	c, ok := v.snap.categories[id]
	return c, ok
}

// CategoryBySlug looks a category up by its slug
func (v *View) CategoryBySlug(slug string) (model.Category, bool) {
	id, ok := v.snap.categorySlugs[slug]
	if !ok {
		return model.Category{}, false
	}
	return v.Category(id)
}

// Categories lists all categories ordered by name
func (v *View) Categories() []model.Category {
	out := make([]model.Category, 0, len(v.snap.categories))
	for _, id := range keys(v.snap.categories) {
		out = append(out, v.snap.categories[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (v *View) withStock(p model.Product) model.Product {
	if cell, ok := v.snap.productStock[p.ID]; ok {
		p.StockQuantity = cell.load()
	}
	return p
}

func (v *View) variantWithStock(pv model.ProductVariant) model.ProductVariant {
	if cell, ok := v.snap.variantStock[pv.ID]; ok {
		pv.StockQuantity = cell.load()
	}
	return pv
}

// Product returns the product with id
func (v *View) Product(id uint) (model.Product, bool) {
	p, ok := v.snap.products[id]
	if !ok {
		return model.Product{}, false
	}
	return v.withStock(p), true
}

// ProductBySlug looks a product up by its slug
func (v *View) ProductBySlug(slug string) (model.Product, bool) {
	id, ok := v.snap.productSlugs[slug]
	if !ok {
		return model.Product{}, false
	}
	return v.Product(id)
}

// Products lists every product in creation order
func (v *View) Products() []model.Product {
	out := make([]model.Product, 0, len(v.snap.products))
	for _, id := range keys(v.snap.products) {
		out = append(out, v.withStock(v.snap.products[id]))
	}
	return out
}

// ListProductsByCategory lists the products owned by a category in creation order
func (v *View) ListProductsByCategory(categoryID uint) []model.Product {
	var out []model.Product
	for _, id := range keys(v.snap.products) {
		if p := v.snap.products[id]; p.CategoryID == categoryID {
			out = append(out, v.withStock(p))
		}
	}
	return out
}

// Variant returns the variant with id
func (v *View) Variant(id uint) (model.ProductVariant, bool) {
	pv, ok := v.snap.variants[id]
	if !ok {
		return model.ProductVariant{}, false
	}
	return v.variantWithStock(pv), true
}

// Variants lists all variants by position, ties broken by creation order
func (v *View) Variants() []model.ProductVariant {
	return v.ListVariantsByProduct(0)
}

// ListVariantsByProduct lists the variants of a product by position; productID 0 lists all
func (v *View) ListVariantsByProduct(productID uint) []model.ProductVariant {
	var out []model.ProductVariant
	for _, id := range keys(v.snap.variants) {
		if pv := v.snap.variants[id]; productID == 0 || pv.ProductID == productID {
			out = append(out, v.variantWithStock(pv))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Image returns the image with id
func (v *View) Image(id uint) (model.ProductImage, bool) {
	img, ok := v.snap.images[id]
	return img, ok
}

// Images lists all images by position, ties broken by creation order
func (v *View) Images() []model.ProductImage {
	return v.ListImagesByProduct(0)
}

// ListImagesByProduct lists the images of a product by position; productID 0 lists all
func (v *View) ListImagesByProduct(productID uint) []model.ProductImage {
	var out []model.ProductImage
	for _, id := range keys(v.snap.images) {
		if img := v.snap.images[id]; productID == 0 || img.ProductID == productID {
			out = append(out, img)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Plan returns the subscription plan with id
func (v *View) Plan(id uint) (model.SubscriptionPlan, bool) {
	p, ok := v.snap.plans[id]
	return p, ok
}

// Plans lists all subscription plans in creation order
func (v *View) Plans() []model.SubscriptionPlan {
	out := make([]model.SubscriptionPlan, 0, len(v.snap.plans))
	for _, id := range keys(v.snap.plans) {
		out = append(out, v.snap.plans[id])
	}
	return out
}

// PlanProductIDs returns the ids of the products included in a plan, ascending
func (v *View) PlanProductIDs(planID uint) []uint {
	return append([]uint(nil), v.snap.planLinks[planID]...)
}
