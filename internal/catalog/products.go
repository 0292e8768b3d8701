package catalog

import (
	"context"

	"catalog-service/internal/model"
	"catalog-service/internal/policy"
	"catalog-service/internal/pricing"
	"catalog-service/internal/query"
)

func (s *Service) products(ctx context.Context, req Request) (Response, error) {
	p := s.presenter(req.Role)
	switch req.Operation {
	case policy.OpList:
		filter, err := query.ParseProductFilter(req.Filters)
		if err != nil {
			return Response{}, err
		}
		return paginatedProducts(p, query.Products(p.view, p.scope, filter), req)
	case policy.OpFeatured:
		return ok(p.productLists(query.Featured(p.view, p.scope)))
	case policy.OpNewArrivals:
		return ok(p.productLists(query.NewArrivals(p.view, p.scope)))
	case policy.OpByCategory:
		products, err := query.ByCategory(p.view, p.scope, req.Filters.Get("category"))
		if err != nil {
			return Response{}, err
		}
		return paginatedProducts(p, products, req)
	case policy.OpRetrieve:
		prod, err := query.VisibleProduct(p.view, p.scope, req.Ref)
		if err != nil {
			return Response{}, err
		}
		return ok(p.productDetail(prod))
	case policy.OpCreate:
		var in model.ProductInput
		if err := decode(req.Payload, &in); err != nil {
			return Response{}, err
		}
		prod, err := s.store.CreateProduct(ctx, in)
		if err != nil {
			return Response{}, err
		}
		return created(s.presenter(req.Role).productDetail(prod))
	case policy.OpUpdate, policy.OpPartialUpdate:
		prod, err := query.VisibleProduct(p.view, p.scope, req.Ref)
		if err != nil {
			return Response{}, err
		}
		var in model.ProductInput
		if err := decode(req.Payload, &in); err != nil {
			return Response{}, err
		}
		updated, err := s.store.UpdateProduct(ctx, prod.ID, in, req.Operation == policy.OpPartialUpdate)
		if err != nil {
			return Response{}, err
		}
		return ok(s.presenter(req.Role).productDetail(updated))
	case policy.OpDelete:
		prod, err := query.VisibleProduct(p.view, p.scope, req.Ref)
		if err != nil {
			return Response{}, err
		}
		if _, err := s.store.DeleteProduct(ctx, prod.ID); err != nil {
			return Response{}, err
		}
		return noContent()
	case policy.OpDecrementStock, policy.OpIncrementStock:
		prod, err := query.VisibleProduct(p.view, p.scope, req.Ref)
		if err != nil {
			return Response{}, err
		}
		n, err := decodeQuantity(req.Payload)
		if err != nil {
			return Response{}, err
		}
		adjust := s.store.IncrementProductStock
		if req.Operation == policy.OpDecrementStock {
			adjust = s.store.DecrementProductStock
		}
		qty, err := adjust(ctx, prod.ID, n)
		if err != nil {
			return Response{}, err
		}
		prod.StockQuantity = qty
		return ok(StockView{ID: prod.ID, StockQuantity: qty, IsInStock: pricing.IsInStock(prod)})
	}
	return unsupported(req)
}

func paginatedProducts(p presenter, products []model.Product, req Request) (Response, error) {
	pageReq, err := query.ParsePageRequest(req.Filters)
	if err != nil {
		return Response{}, err
	}
	page, err := query.Paginate(products, pageReq)
	if err != nil {
		return Response{}, err
	}
	return ok(query.MapPage(page, p.productList))
}
