package store

import (
	"context"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
)

// CreateVariant validates and stores a new variant of an existing product
func (s *Store) CreateVariant(ctx context.Context, in model.VariantInput) (model.ProductVariant, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := requireVariantFields(in); err != nil {
		return model.ProductVariant{}, err
	}

	v := model.ProductVariant{ID: s.seq.variant + 1, IsActive: true}
	applyVariantInput(&v, in)

	cur := s.current.Load()
	if err := checkVariant(cur, v); err != nil {
		return model.ProductVariant{}, err
	}

	next := cur.clone()
	next.variants[v.ID] = v
	next.skus[v.SKU] = skuOwner{variant: true, id: v.ID}
	next.variantStock[v.ID] = newStockCell(v.StockQuantity)

	cs := &Changeset{}
	cs.save(&v)
	if err := s.commit(ctx, next, cs); err != nil {
		return model.ProductVariant{}, err
	}
	s.seq.variant = v.ID
	return v, nil
}

// UpdateVariant applies in to an existing variant
func (s *Store) UpdateVariant(ctx context.Context, id uint, in model.VariantInput, partial bool) (model.ProductVariant, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current.Load()
	old, ok := cur.variants[id]
	if !ok {
		return model.ProductVariant{}, apperror.NotFound("variant %d not found", id)
	}
	if !partial {
		if err := requireVariantFields(in); err != nil {
			return model.ProductVariant{}, err
		}
	}

	cell := cur.variantStock[id]
	cell.mu.Lock()
	defer cell.mu.Unlock()

	v := old
	v.StockQuantity = cell.load()
	applyVariantInput(&v, in)
	if err := checkVariant(cur, v); err != nil {
		return model.ProductVariant{}, err
	}

	next := cur.clone()
	delete(next.skus, old.SKU)
	next.variants[v.ID] = v
	next.skus[v.SKU] = skuOwner{variant: true, id: v.ID}

	cs := &Changeset{}
	cs.save(&v)
	if err := s.commit(ctx, next, cs); err != nil {
		return model.ProductVariant{}, err
	}
	cell.qty.Store(int64(v.StockQuantity))
	return v, nil
}

// DeleteVariant removes a variant
func (s *Store) DeleteVariant(ctx context.Context, id uint) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current.Load()
	v, ok := cur.variants[id]
	if !ok {
		return apperror.NotFound("variant %d not found", id)
	}

	next := cur.clone()
	delete(next.variants, id)
	delete(next.skus, v.SKU)
	cell := next.variantStock[id]
	delete(next.variantStock, id)

	cs := &Changeset{}
	cs.remove(&model.ProductVariant{ID: id})

	cell.mu.Lock()
	defer cell.mu.Unlock()
	if err := s.commit(ctx, next, cs); err != nil {
		return err
	}
	cell.removed.Store(true)
	return nil
}

func requireVariantFields(in model.VariantInput) error {
	if in.ProductID == nil {
		return apperror.Validation("product_id", "product_id is required")
	}
	return firstError(
		requireText("name", in.Name, 100),
		requireText("sku", in.SKU, 100),
		positivePrice("price", in.Price),
	)
}

func applyVariantInput(v *model.ProductVariant, in model.VariantInput) {
	if in.ProductID != nil {
		v.ProductID = *in.ProductID
	}
	setString(&v.Name, in.Name)
	setString(&v.SKU, in.SKU)
	if in.Price != nil {
		v.Price = *in.Price
	}
	setNullDecimal(&v.ComparePrice, in.ComparePrice)
	setInt(&v.StockQuantity, in.StockQuantity)
	setNullDecimal(&v.Weight, in.Weight)
	setInt(&v.Position, in.Position)
	setBool(&v.IsActive, in.IsActive)
}

func checkVariant(snap *snapshot, v model.ProductVariant) error {
	if err := firstError(
		requireText("name", &v.Name, 100),
		requireText("sku", &v.SKU, 100),
		positivePrice("price", &v.Price),
		nonNegativeAmount("compare_price", v.ComparePrice),
		nonNegativeAmount("weight", v.Weight),
		nonNegative("stock_quantity", v.StockQuantity),
		nonNegative("position", v.Position),
	); err != nil {
		return err
	}
	if _, ok := snap.products[v.ProductID]; !ok {
		return apperror.Reference("product_id", "product %d does not exist", v.ProductID)
	}
	if owner, ok := snap.skus[v.SKU]; ok && (!owner.variant || owner.id != v.ID) {
		return apperror.Validation("sku", "sku %q is already in use", v.SKU)
	}
	for _, other := range snap.variants {
		if other.ID != v.ID && other.ProductID == v.ProductID && other.Name == v.Name {
			return apperror.Validation("name", "variant %q already exists for this product", v.Name)
		}
	}
	return nil
}
