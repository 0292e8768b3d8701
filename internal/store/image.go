package store

import (
	"context"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
)

// CreateImage attaches an image reference to an existing product. Any number of images may
// be flagged featured.
func (s *Store) CreateImage(ctx context.Context, in model.ImageInput) (model.ProductImage, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := requireImageFields(in); err != nil {
		return model.ProductImage{}, err
	}

	img := model.ProductImage{ID: s.seq.image + 1}
	applyImageInput(&img, in)

	cur := s.current.Load()
	if err := checkImage(cur, img); err != nil {
		return model.ProductImage{}, err
	}

	next := cur.clone()
	next.images[img.ID] = img

	cs := &Changeset{}
	cs.save(&img)
	if err := s.commit(ctx, next, cs); err != nil {
		return model.ProductImage{}, err
	}
	s.seq.image = img.ID
	return img, nil
}

// UpdateImage applies in to an existing image
func (s *Store) UpdateImage(ctx context.Context, id uint, in model.ImageInput, partial bool) (model.ProductImage, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current.Load()
	img, ok := cur.images[id]
	if !ok {
		return model.ProductImage{}, apperror.NotFound("image %d not found", id)
	}
	if !partial {
		if err := requireImageFields(in); err != nil {
			return model.ProductImage{}, err
		}
	}

	applyImageInput(&img, in)
	if err := checkImage(cur, img); err != nil {
		return model.ProductImage{}, err
	}

	next := cur.clone()
	next.images[img.ID] = img

	cs := &Changeset{}
	cs.save(&img)
	if err := s.commit(ctx, next, cs); err != nil {
		return model.ProductImage{}, err
	}
	return img, nil
}

// DeleteImage removes an image
func (s *Store) DeleteImage(ctx context.Context, id uint) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current.Load()
	if _, ok := cur.images[id]; !ok {
		return apperror.NotFound("image %d not found", id)
	}

	next := cur.clone()
	delete(next.images, id)

	cs := &Changeset{}
	cs.remove(&model.ProductImage{ID: id})
	return s.commit(ctx, next, cs)
}

func requireImageFields(in model.ImageInput) error {
	if in.ProductID == nil {
		return apperror.Validation("product_id", "product_id is required")
	}
	return requireText("image", in.Image, 255)
}

func applyImageInput(img *model.ProductImage, in model.ImageInput) {
	if in.ProductID != nil {
		img.ProductID = *in.ProductID
	}
	setString(&img.Image, in.Image)
	setString(&img.AltText, in.AltText)
	setBool(&img.IsFeatured, in.IsFeatured)
	setInt(&img.Position, in.Position)
}

func checkImage(snap *snapshot, img model.ProductImage) error {
	if err := firstError(
		requireText("image", &img.Image, 255),
		checkLength("alt_text", img.AltText, 200),
		nonNegative("position", img.Position),
	); err != nil {
		return err
	}
	if _, ok := snap.products[img.ProductID]; !ok {
		return apperror.Reference("product_id", "product %d does not exist", img.ProductID)
	}
	return nil
}
