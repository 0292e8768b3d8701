package catalog

import (
	"context"
	"strconv"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
	"catalog-service/internal/policy"
	"catalog-service/internal/query"
)

// productParam reads the optional product id filter of image and variant listings; 0 means
// every product
func productParam(req Request) (uint, error) {
	raw := req.Filters.Get("product")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return 0, apperror.BadRequest("product", "product must be a numeric id")
	}
	return uint(id), nil
}

func (s *Service) images(ctx context.Context, req Request) (Response, error) {
	p := s.presenter(req.Role)
	switch req.Operation {
	case policy.OpList:
		productID, err := productParam(req)
		if err != nil {
			return Response{}, err
		}
		pageReq, err := query.ParsePageRequest(req.Filters)
		if err != nil {
			return Response{}, err
		}
		page, err := query.Paginate(p.view.ListImagesByProduct(productID), pageReq)
		if err != nil {
			return Response{}, err
		}
		return ok(query.MapPage(page, p.image))
	case policy.OpRetrieve:
		img, err := findImage(p, req.Ref)
		if err != nil {
			return Response{}, err
		}
		return ok(p.image(img))
	case policy.OpCreate:
		var in model.ImageInput
		if err := decode(req.Payload, &in); err != nil {
			return Response{}, err
		}
		img, err := s.store.CreateImage(ctx, in)
		if err != nil {
			return Response{}, err
		}
		return created(p.image(img))
	case policy.OpUpdate, policy.OpPartialUpdate:
		img, err := findImage(p, req.Ref)
		if err != nil {
			return Response{}, err
		}
		var in model.ImageInput
		if err := decode(req.Payload, &in); err != nil {
			return Response{}, err
		}
		updated, err := s.store.UpdateImage(ctx, img.ID, in, req.Operation == policy.OpPartialUpdate)
		if err != nil {
			return Response{}, err
		}
		return ok(p.image(updated))
	case policy.OpDelete:
		id, err := parseID(req.Ref)
		if err != nil {
			return Response{}, err
		}
		if err := s.store.DeleteImage(ctx, id); err != nil {
			return Response{}, err
		}
		return noContent()
	}
	return unsupported(req)
}

func findImage(p presenter, ref string) (model.ProductImage, error) {
	id, err := parseID(ref)
	if err != nil {
		return model.ProductImage{}, err
	}
	img, found := p.view.Image(id)
	if !found {
		return model.ProductImage{}, apperror.NotFound("image %d not found", id)
	}
	return img, nil
}
