package catalog

import (
	"context"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
	"catalog-service/internal/policy"
	"catalog-service/internal/query"
)

func (s *Service) plans(ctx context.Context, req Request) (Response, error) {
	p := s.presenter(req.Role)
	switch req.Operation {
	case policy.OpList:
		pageReq, err := query.ParsePageRequest(req.Filters)
		if err != nil {
			return Response{}, err
		}
		var visible []model.SubscriptionPlan
		for _, plan := range p.view.Plans() {
			if p.scope.Plan(plan) {
				visible = append(visible, plan)
			}
		}
		page, err := query.Paginate(visible, pageReq)
		if err != nil {
			return Response{}, err
		}
		return ok(query.MapPage(page, p.plan))
	case policy.OpRetrieve:
		plan, err := visiblePlan(p, req.Ref)
		if err != nil {
			return Response{}, err
		}
		return ok(p.plan(plan))
	case policy.OpCreate:
		var in model.PlanInput
		if err := decode(req.Payload, &in); err != nil {
			return Response{}, err
		}
		plan, err := s.store.CreatePlan(ctx, in)
		if err != nil {
			return Response{}, err
		}
		return created(s.presenter(req.Role).plan(plan))
	case policy.OpUpdate, policy.OpPartialUpdate:
		plan, err := visiblePlan(p, req.Ref)
		if err != nil {
			return Response{}, err
		}
		var in model.PlanInput
		if err := decode(req.Payload, &in); err != nil {
			return Response{}, err
		}
		updated, err := s.store.UpdatePlan(ctx, plan.ID, in, req.Operation == policy.OpPartialUpdate)
		if err != nil {
			return Response{}, err
		}
		return ok(s.presenter(req.Role).plan(updated))
	case policy.OpDelete:
		plan, err := visiblePlan(p, req.Ref)
		if err != nil {
			return Response{}, err
		}
		if err := s.store.DeletePlan(ctx, plan.ID); err != nil {
			return Response{}, err
		}
		return noContent()
	}
	return unsupported(req)
}

func visiblePlan(p presenter, ref string) (model.SubscriptionPlan, error) {
	id, err := parseID(ref)
	if err != nil {
		return model.SubscriptionPlan{}, err
	}
	plan, found := p.view.Plan(id)
	if !found || !p.scope.Plan(plan) {
		return model.SubscriptionPlan{}, apperror.NotFound("subscription plan %d not found", id)
	}
	return plan, nil
}
