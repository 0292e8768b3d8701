package store

import (
	"context"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"

	"go.uber.org/zap"
)

// CascadeResult lists what a delete removed besides the target itself
type CascadeResult struct {
	Products []uint `json:"products"`
	Variants int    `json:"variants"`
	Images   int    `json:"images"`
}

// CreateCategory validates and stores a new category. Categories start active unless the
// input says otherwise.
func (s *Store) CreateCategory(ctx context.Context, in model.CategoryInput) (model.Category, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := firstError(
		requireText("name", in.Name, 100),
		requireText("slug", in.Slug, 100),
	); err != nil {
		return model.Category{}, err
	}

	now := s.now()
	c := model.Category{
		ID:        s.seq.category + 1,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyCategoryInput(&c, in)

	cur := s.current.Load()
	if err := s.checkCategory(cur, c); err != nil {
		return model.Category{}, err
	}

	next := cur.clone()
	next.categories[c.ID] = c
	next.categorySlugs[c.Slug] = c.ID
	next.categoryNames[c.Name] = c.ID

	cs := &Changeset{}
	cs.save(&c)
	if err := s.commit(ctx, next, cs); err != nil {
		return model.Category{}, err
	}
	s.seq.category = c.ID
	return c, nil
}

// UpdateCategory applies in to an existing category. A full update requires every mandatory
// field; a partial one only touches what is set. Slugs never change.
func (s *Store) UpdateCategory(ctx context.Context, id uint, in model.CategoryInput, partial bool) (model.Category, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current.Load()
	old, ok := cur.categories[id]
	if !ok {
		return model.Category{}, apperror.NotFound("category %d not found", id)
	}
	if !partial {
		if err := firstError(
			requireText("name", in.Name, 100),
			requireText("slug", in.Slug, 100),
		); err != nil {
			return model.Category{}, err
		}
	}
	if in.Slug != nil && *in.Slug != old.Slug {
		return model.Category{}, apperror.Validation("slug", "slug cannot be changed")
	}

	c := old
	applyCategoryInput(&c, in)
	c.UpdatedAt = s.now()
	if err := s.checkCategory(cur, c); err != nil {
		return model.Category{}, err
	}

	next := cur.clone()
	delete(next.categoryNames, old.Name)
	next.categories[c.ID] = c
	next.categoryNames[c.Name] = c.ID

	cs := &Changeset{}
	cs.save(&c)
	if err := s.commit(ctx, next, cs); err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes a category together with its products and, transitively, their
// images and variants. The whole cascade commits or nothing does.
func (s *Store) DeleteCategory(ctx context.Context, id uint) (CascadeResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current.Load()
	c, ok := cur.categories[id]
	if !ok {
		return CascadeResult{}, apperror.NotFound("category %d not found", id)
	}

	var productIDs []uint
	for _, pid := range keys(cur.products) {
		if cur.products[pid].CategoryID == id {
			productIDs = append(productIDs, pid)
		}
	}

	next := cur.clone()
	cs := &Changeset{}
	result, cells := s.removeProducts(cur, next, cs, productIDs)
	delete(next.categories, id)
	delete(next.categorySlugs, c.Slug)
	delete(next.categoryNames, c.Name)
	cs.remove(&model.Category{ID: id})

	unlock := lockCells(cells)
	defer unlock()
	if err := s.commit(ctx, next, cs); err != nil {
		return CascadeResult{}, err
	}
	for _, cell := range cells {
		cell.removed.Store(true)
	}

	s.log.Info("Category deleted with cascade",
		zap.Uint("category_id", id),
		zap.String("slug", c.Slug),
		zap.Int("products", len(result.Products)),
		zap.Int("variants", result.Variants),
		zap.Int("images", result.Images))
	return result, nil
}

func applyCategoryInput(c *model.Category, in model.CategoryInput) {
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Slug != nil {
		c.Slug = *in.Slug
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Image != nil {
		c.Image = *in.Image
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}

func (s *Store) checkCategory(snap *snapshot, c model.Category) error {
	if err := firstError(
		requireText("name", &c.Name, 100),
		validateSlug(c.Slug),
		checkLength("image", c.Image, 255),
	); err != nil {
		return err
	}
	if owner, ok := snap.categoryNames[c.Name]; ok && owner != c.ID {
		return apperror.Validation("name", "category with name %q already exists", c.Name)
	}
	if owner, ok := snap.categorySlugs[c.Slug]; ok && owner != c.ID {
		return apperror.Validation("slug", "category with slug %q already exists", c.Slug)
	}
	return nil
}

// removeProducts drops products from next in dependency order (images, variants, product)
// and records the deletes in cs. It returns the stock cells the caller must hold while
// committing.
func (s *Store) removeProducts(cur, next *snapshot, cs *Changeset, productIDs []uint) (CascadeResult, []*stockCell) {
	result := CascadeResult{Products: productIDs}
	if len(productIDs) == 0 {
		return result, nil
	}

	doomed := make(map[uint]struct{}, len(productIDs))
	for _, pid := range productIDs {
		doomed[pid] = struct{}{}
	}

	var cells []*stockCell
	for _, imgID := range keys(cur.images) {
		if _, ok := doomed[cur.images[imgID].ProductID]; ok {
			delete(next.images, imgID)
			cs.remove(&model.ProductImage{ID: imgID})
			result.Images++
		}
	}
	for _, vid := range keys(cur.variants) {
		v := cur.variants[vid]
		if _, ok := doomed[v.ProductID]; ok {
			delete(next.variants, vid)
			delete(next.skus, v.SKU)
			if cell := next.variantStock[vid]; cell != nil {
				cells = append(cells, cell)
			}
			delete(next.variantStock, vid)
			cs.remove(&model.ProductVariant{ID: vid})
			result.Variants++
		}
	}
	for _, pid := range productIDs {
		p := cur.products[pid]
		delete(next.products, pid)
		delete(next.productSlugs, p.Slug)
		delete(next.skus, p.SKU)
		if cell := next.productStock[pid]; cell != nil {
			cells = append(cells, cell)
		}
		delete(next.productStock, pid)
		cs.remove(&model.Product{ID: pid})
	}

	for planID, linked := range cur.planLinks {
		kept := make([]uint, 0, len(linked))
		for _, pid := range linked {
			if _, ok := doomed[pid]; !ok {
				kept = append(kept, pid)
			}
		}
		if len(kept) != len(linked) {
			next.planLinks[planID] = kept
			cs.link(planID, kept)
		}
	}
	return result, cells
}
