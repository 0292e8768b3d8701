package catalog

import (
	"context"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
	"catalog-service/internal/policy"
	"catalog-service/internal/query"
)

func (s *Service) variants(ctx context.Context, req Request) (Response, error) {
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
		page, err := query.Paginate(p.view.ListVariantsByProduct(productID), pageReq)
		if err != nil {
			return Response{}, err
		}
		return ok(query.MapPage(page, p.variant))
	case policy.OpRetrieve:
		v, err := findVariant(p, req.Ref)
		if err != nil {
			return Response{}, err
		}
		return ok(p.variant(v))
	case policy.OpCreate:
		var in model.VariantInput
		if err := decode(req.Payload, &in); err != nil {
			return Response{}, err
		}
		v, err := s.store.CreateVariant(ctx, in)
		if err != nil {
			return Response{}, err
		}
		return created(p.variant(v))
	case policy.OpUpdate, policy.OpPartialUpdate:
		v, err := findVariant(p, req.Ref)
		if err != nil {
			return Response{}, err
		}
		var in model.VariantInput
		if err := decode(req.Payload, &in); err != nil {
			return Response{}, err
		}
		updated, err := s.store.UpdateVariant(ctx, v.ID, in, req.Operation == policy.OpPartialUpdate)
		if err != nil {
			return Response{}, err
		}
		return ok(p.variant(updated))
	case policy.OpDelete:
		id, err := parseID(req.Ref)
		if err != nil {
			return Response{}, err
		}
		if err := s.store.DeleteVariant(ctx, id); err != nil {
			return Response{}, err
		}
		return noContent()
	case policy.OpDecrementStock, policy.OpIncrementStock:
		id, err := parseID(req.Ref)
		if err != nil {
			return Response{}, err
		}
		n, err := decodeQuantity(req.Payload)
		if err != nil {
			return Response{}, err
		}
		adjust := s.store.IncrementVariantStock
		if req.Operation == policy.OpDecrementStock {
			adjust = s.store.DecrementVariantStock
		}
		qty, err := adjust(ctx, id, n)
		if err != nil {
			return Response{}, err
		}
		return ok(StockView{ID: id, StockQuantity: qty, IsInStock: qty > 0})
	}
	return unsupported(req)
}

func findVariant(p presenter, ref string) (model.ProductVariant, error) {
	id, err := parseID(ref)
	if err != nil {
		return model.ProductVariant{}, err
	}
	v, found := p.view.Variant(id)
	if !found {
		return model.ProductVariant{}, apperror.NotFound("variant %d not found", id)
	}
	return v, nil
}
