package catalog

import (
	"context"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
	"catalog-service/internal/policy"
	"catalog-service/internal/query"

	"go.uber.org/zap"
)

// CategoryDeleted reports what a confirmed category delete removed
type CategoryDeleted struct {
	Slug     string `json:"slug"`
	Products int    `json:"products"`
	Variants int    `json:"variants"`
	Images   int    `json:"images"`
}

func (s *Service) categories(ctx context.Context, req Request) (Response, error) {
	switch req.Operation {
	case policy.OpList:
		return s.listCategories(req)
	case policy.OpRetrieve:
		p := s.presenter(req.Role)
		c, err := visibleCategory(p, req.Ref)
		if err != nil {
			return Response{}, err
		}
		return ok(p.category(c))
	case policy.OpCreate:
		var in model.CategoryInput
		if err := decode(req.Payload, &in); err != nil {
			return Response{}, err
		}
		c, err := s.store.CreateCategory(ctx, in)
		if err != nil {
			return Response{}, err
		}
		return created(s.presenter(req.Role).category(c))
	case policy.OpUpdate, policy.OpPartialUpdate:
		c, err := visibleCategory(s.presenter(req.Role), req.Ref)
		if err != nil {
			return Response{}, err
		}
		var in model.CategoryInput
		if err := decode(req.Payload, &in); err != nil {
			return Response{}, err
		}
		updated, err := s.store.UpdateCategory(ctx, c.ID, in, req.Operation == policy.OpPartialUpdate)
		if err != nil {
			return Response{}, err
		}
		return ok(s.presenter(req.Role).category(updated))
	case policy.OpDelete:
		return s.deleteCategory(ctx, req)
	}
	return unsupported(req)
}

func (s *Service) listCategories(req Request) (Response, error) {
	pageReq, err := query.ParsePageRequest(req.Filters)
	if err != nil {
		return Response{}, err
	}
	p := s.presenter(req.Role)
	var visible []model.Category
	for _, c := range p.view.Categories() {
		if p.scope.Category(c) {
			visible = append(visible, c)
		}
	}
	page, err := query.Paginate(visible, pageReq)
	if err != nil {
		return Response{}, err
	}
	return ok(query.MapPage(page, p.category))
}

// deleteCategory refuses to cascade until the caller confirms
func (s *Service) deleteCategory(ctx context.Context, req Request) (Response, error) {
	p := s.presenter(req.Role)
	c, err := visibleCategory(p, req.Ref)
	if err != nil {
		return Response{}, err
	}
	if !req.Confirm {
		owned := len(p.view.ListProductsByCategory(c.ID))
		return Response{}, apperror.BadRequest("confirm",
			"deleting category %q also deletes its %d products with their variants and images; repeat with confirm=true",
			c.Slug, owned)
	}

	result, err := s.store.DeleteCategory(ctx, c.ID)
	if err != nil {
		return Response{}, err
	}
	s.log.Info("Category delete confirmed",
		zap.String("slug", c.Slug),
		zap.Int("products", len(result.Products)))
	return ok(CategoryDeleted{
		Slug:     c.Slug,
		Products: len(result.Products),
		Variants: result.Variants,
		Images:   result.Images,
	})
}

func visibleCategory(p presenter, slug string) (model.Category, error) {
	c, found := p.view.CategoryBySlug(slug)
	if !found || !p.scope.Category(c) {
		return model.Category{}, apperror.NotFound("category %q not found", slug)
	}
	return c, nil
}
