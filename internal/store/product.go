package store

import (
	"context"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"

	"go.uber.org/zap"
)

const defaultTaxStatus = "taxable"

// CreateProduct validates and stores a new product. Unset fields take the catalog defaults:
// type bean, status draft, inventory tracked, shipping required.
func (s *Store) CreateProduct(ctx context.Context, in model.ProductInput) (model.Product, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := requireProductFields(in); err != nil {
		return model.Product{}, err
	}

	now := s.now()
	p := model.Product{
		ID:               s.seq.product + 1,
		ProductType:      model.ProductTypeBean,
		TrackInventory:   true,
		RequiresShipping: true,
		TaxStatus:        defaultTaxStatus,
		Status:           model.StatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	applyProductInput(&p, in)

	cur := s.current.Load()
	if err := s.checkProduct(cur, p); err != nil {
		return model.Product{}, err
	}

	next := cur.clone()
	next.products[p.ID] = p
	next.productSlugs[p.Slug] = p.ID
	next.skus[p.SKU] = skuOwner{id: p.ID}
	next.productStock[p.ID] = newStockCell(p.StockQuantity)

	cs := &Changeset{}
	cs.save(&p)
	if err := s.commit(ctx, next, cs); err != nil {
		return model.Product{}, err
	}
	s.seq.product = p.ID
	return p, nil
}

// UpdateProduct applies in to an existing product. Moving a product to another category
// requires that category to exist. Slugs never change.
func (s *Store) UpdateProduct(ctx context.Context, id uint, in model.ProductInput, partial bool) (model.Product, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current.Load()
	old, ok := cur.products[id]
	if !ok {
		return model.Product{}, apperror.NotFound("product %d not found", id)
	}
	if !partial {
		if err := requireProductFields(in); err != nil {
			return model.Product{}, err
		}
	}
	if in.Slug != nil && *in.Slug != old.Slug {
		return model.Product{}, apperror.Validation("slug", "slug cannot be changed")
	}

	cell := cur.productStock[id]
	cell.mu.Lock()
	defer cell.mu.Unlock()

	p := old
	p.StockQuantity = cell.load()
	applyProductInput(&p, in)
	p.UpdatedAt = s.now()
	if err := s.checkProduct(cur, p); err != nil {
		return model.Product{}, err
	}

	next := cur.clone()
	delete(next.skus, old.SKU)
	next.products[p.ID] = p
	next.skus[p.SKU] = skuOwner{id: p.ID}

	cs := &Changeset{}
	cs.save(&p)
	if err := s.commit(ctx, next, cs); err != nil {
		return model.Product{}, err
	}
	cell.qty.Store(int64(p.StockQuantity))
	return p, nil
}

// DeleteProduct removes a product with its images and variants and drops it from every
// subscription plan
func (s *Store) DeleteProduct(ctx context.Context, id uint) (CascadeResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current.Load()
	if _, ok := cur.products[id]; !ok {
		return CascadeResult{}, apperror.NotFound("product %d not found", id)
	}

	next := cur.clone()
	cs := &Changeset{}
	result, cells := s.removeProducts(cur, next, cs, []uint{id})

	unlock := lockCells(cells)
	defer unlock()
	if err := s.commit(ctx, next, cs); err != nil {
		return CascadeResult{}, err
	}
	for _, cell := range cells {
		cell.removed.Store(true)
	}

	s.log.Debug("Product deleted",
		zap.Uint("product_id", id),
		zap.Int("variants", result.Variants),
		zap.Int("images", result.Images))
	return result, nil
}

func requireProductFields(in model.ProductInput) error {
	if err := firstError(
		requireText("name", in.Name, 200),
		requireText("slug", in.Slug, 200),
		requireText("sku", in.SKU, 100),
		positivePrice("price", in.Price),
	); err != nil {
		return err
	}
	if in.CategoryID == nil {
		return apperror.Validation("category_id", "category_id is required")
	}
	return nil
}

func applyProductInput(p *model.Product, in model.ProductInput) {
	setString(&p.Name, in.Name)
	setString(&p.Slug, in.Slug)
	setString(&p.Description, in.Description)
	setString(&p.ShortDescription, in.ShortDescription)
	if in.ProductType != nil {
		p.ProductType = *in.ProductType
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	setNullDecimal(&p.ComparePrice, in.ComparePrice)
	setNullDecimal(&p.CostPerUnit, in.CostPerUnit)
	setString(&p.SKU, in.SKU)
	if in.Barcode.Set {
		if in.Barcode.Null {
			p.Barcode = nil
		} else {
			barcode := in.Barcode.Value
			p.Barcode = &barcode
		}
	}
	setBool(&p.TrackInventory, in.TrackInventory)
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	setNullDecimal(&p.Weight, in.Weight)
	setString(&p.Dimensions, in.Dimensions)
	setString(&p.Origin, in.Origin)
	setString(&p.RoastLevel, in.RoastLevel)
	setString(&p.FlavorNotes, in.FlavorNotes)
	setString(&p.CaffeineContent, in.CaffeineContent)
	setBool(&p.IsFeatured, in.IsFeatured)
	setBool(&p.IsDigital, in.IsDigital)
	setBool(&p.RequiresShipping, in.RequiresShipping)
	setString(&p.TaxStatus, in.TaxStatus)
	if in.Status != nil {
		p.Status = *in.Status
	}
}

func (s *Store) checkProduct(snap *snapshot, p model.Product) error {
	barcode := ""
	if p.Barcode != nil {
		barcode = *p.Barcode
	}
	if err := firstError(
		requireText("name", &p.Name, 200),
		validateSlug(p.Slug),
		requireText("sku", &p.SKU, 100),
		checkLength("short_description", p.ShortDescription, 500),
		checkLength("barcode", barcode, 50),
		checkLength("dimensions", p.Dimensions, 100),
		checkLength("origin", p.Origin, 100),
		checkLength("roast_level", p.RoastLevel, 50),
		checkLength("caffeine_content", p.CaffeineContent, 50),
		positivePrice("price", &p.Price),
		nonNegativeAmount("compare_price", p.ComparePrice),
		nonNegativeAmount("cost_per_unit", p.CostPerUnit),
		nonNegativeAmount("weight", p.Weight),
		nonNegative("stock_quantity", p.StockQuantity),
	); err != nil {
		return err
	}
	if !p.ProductType.Valid() {
		return apperror.Validation("product_type", "unknown product type %q", p.ProductType)
	}
	if !p.Status.Valid() {
		return apperror.Validation("status", "unknown status %q", p.Status)
	}
	if _, ok := snap.categories[p.CategoryID]; !ok {
		return apperror.Reference("category_id", "category %d does not exist", p.CategoryID)
	}
	if owner, ok := snap.productSlugs[p.Slug]; ok && owner != p.ID {
		return apperror.Validation("slug", "product with slug %q already exists", p.Slug)
	}
	if owner, ok := snap.skus[p.SKU]; ok && (owner.variant || owner.id != p.ID) {
		return apperror.Validation("sku", "sku %q is already in use", p.SKU)
	}
	for _, other := range snap.products {
		if other.ID != p.ID && other.CategoryID == p.CategoryID && other.Name == p.Name {
			return apperror.Validation("name", "product %q already exists in this category", p.Name)
		}
	}
	return nil
}
