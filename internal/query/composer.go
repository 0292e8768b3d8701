package query

import (
	"sort"
	"strings"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
	"catalog-service/internal/policy"
	"catalog-service/internal/store"
)

// Visible returns the products scope may observe, in creation order
func Visible(view *store.View, scope policy.Scope) []model.Product {
	all := view.Products()
	if scope.Unrestricted() {
		return all
	}
	out := make([]model.Product, 0, len(all))
	for _, p := range all {
		c, ok := view.Category(p.CategoryID)
		if ok && scope.Product(p, c) {
			out = append(out, p)
		}
	}
	return out
}

// VisibleProduct looks a product up by slug, hiding what scope may not observe
func VisibleProduct(view *store.View, scope policy.Scope, slug string) (model.Product, error) {
	p, ok := view.ProductBySlug(slug)
	if ok {
		c, _ := view.Category(p.CategoryID)
		if scope.Product(p, c) {
			return p, nil
		}
	}
	return model.Product{}, apperror.NotFound("product %q not found", slug)
}

// Products narrows to scope, applies f and sorts by f.Ordering
func Products(view *store.View, scope policy.Scope, f ProductFilter) []model.Product {
	out := []model.Product{}
	for _, p := range Visible(view, scope) {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	if f.Ordering.Field == "" {
		f.Ordering = DefaultOrdering
	}
	Sort(out, f.Ordering)
	return out
}

// Featured returns up to ConvenienceLimit featured products in default order
func Featured(view *store.View, scope policy.Scope) []model.Product {
	featured := true
	return limit(Products(view, scope, ProductFilter{IsFeatured: &featured}), ConvenienceLimit)
}

// NewArrivals returns the ConvenienceLimit most recently created products
func NewArrivals(view *store.View, scope policy.Scope) []model.Product {
	return limit(Products(view, scope, ProductFilter{Ordering: DefaultOrdering}), ConvenienceLimit)
}

// ByCategory lists the products of the category with slug. An unknown slug yields an empty
// listing; a missing one is a bad request.
func ByCategory(view *store.View, scope policy.Scope, slug string) ([]model.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperror.BadRequest("category", "category parameter required")
	}
	c, ok := view.CategoryBySlug(slug)
	if !ok {
		return []model.Product{}, nil
	}
	return Products(view, scope, ProductFilter{CategoryID: &c.ID}), nil
}

// Sort orders products by o. Ties fall back to creation order in the same direction.
func Sort(products []model.Product, o Ordering) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		var cmp int
		switch o.Field {
		case "price":
			cmp = a.Price.Cmp(b.Price)
		case "name":
			cmp = strings.Compare(a.Name, b.Name)
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if cmp == 0 {
			cmp = compareIDs(a.ID, b.ID)
		}
		if o.Desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareIDs(a, b uint) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
