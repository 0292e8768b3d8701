// Package query composes filtered, ordered and paginated product listings over a store view.
// Visibility narrowing always runs before any caller-supplied filter.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
)

// Ordering is a sort key over products
type Ordering struct {
	Field string
	Desc  bool
}

// DefaultOrdering lists the newest products first
var DefaultOrdering = Ordering{Field: "created_at", Desc: true}

var orderingFields = map[string]bool{"price": true, "created_at": true, "name": true}

func (o Ordering) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}

// ParseOrdering reads an ordering parameter such as "-price". Empty input yields the default.
func ParseOrdering(raw string) (Ordering, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultOrdering, nil
	}
	o := Ordering{Field: strings.TrimPrefix(raw, "-"), Desc: strings.HasPrefix(raw, "-")}
	if !orderingFields[o.Field] {
		return Ordering{}, apperror.BadRequest("ordering", "cannot order by %q", raw)
	}
	return o, nil
}

// ProductFilter is the declarative product query. Nil fields do not constrain.
type ProductFilter struct {
	CategoryID  *uint
	ProductType *model.ProductType
	IsFeatured  *bool
	Status      *model.ProductStatus
	Search      string
	Ordering    Ordering
}

// ParseProductFilter reads a filter from query parameters
func ParseProductFilter(values url.Values) (ProductFilter, error) {
	f := ProductFilter{Search: strings.TrimSpace(values.Get("search"))}

	if raw := values.Get("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 0)
		if err != nil {
			return ProductFilter{}, apperror.BadRequest("category", "category must be a numeric id")
		}
		categoryID := uint(id)
		f.CategoryID = &categoryID
	}
	if raw := values.Get("product_type"); raw != "" {
		pt := model.ProductType(raw)
		if !pt.Valid() {
			return ProductFilter{}, apperror.BadRequest("product_type", "unknown product type %q", raw)
		}
		f.ProductType = &pt
	}
	if raw := values.Get("is_featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return ProductFilter{}, apperror.BadRequest("is_featured", "is_featured must be true or false")
		}
		f.IsFeatured = &featured
	}
	if raw := values.Get("status"); raw != "" {
		status := model.ProductStatus(raw)
		if !status.Valid() {
			return ProductFilter{}, apperror.BadRequest("status", "unknown status %q", raw)
		}
		f.Status = &status
	}

	ordering, err := ParseOrdering(values.Get("ordering"))
	if err != nil {
		return ProductFilter{}, err
	}
	f.Ordering = ordering
	return f, nil
}

// Match reports whether p satisfies every set constraint
func (f ProductFilter) Match(p model.Product) bool {
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if f.ProductType != nil && p.ProductType != *f.ProductType {
		return false
	}
	if f.IsFeatured != nil && p.IsFeatured != *f.IsFeatured {
		return false
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	return matchSearch(p, f.Search)
}

// matchSearch requires every whitespace-separated term to appear, case-insensitively, in at
// least one of name, description, flavor notes or origin.
func matchSearch(p model.Product, search string) bool {
	terms := strings.Fields(strings.ToLower(search))
	if len(terms) == 0 {
		return true
	}
	fields := []string{
		strings.ToLower(p.Name),
		strings.ToLower(p.Description),
		strings.ToLower(p.FlavorNotes),
		strings.ToLower(p.Origin),
	}
	for _, term := range terms {
		found := false
		for _, field := range fields {
			if strings.Contains(field, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
