package store

import (
	"context"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
)

// CreatePlan validates and stores a subscription plan and its product set
func (s *Store) CreatePlan(ctx context.Context, in model.PlanInput) (model.SubscriptionPlan, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := requirePlanFields(in); err != nil {
		return model.SubscriptionPlan{}, err
	}

	plan := model.SubscriptionPlan{ID: s.seq.plan + 1, IsActive: true, CreatedAt: s.now()}
	applyPlanInput(&plan, in)

	cur := s.current.Load()
	var productIDs []uint
	if in.ProductIDs != nil {
		productIDs = *in.ProductIDs
	}
	linked, err := checkPlan(cur, plan, productIDs)
	if err != nil {
		return model.SubscriptionPlan{}, err
	}

	next := cur.clone()
	next.plans[plan.ID] = plan
	next.planLinks[plan.ID] = linked

	cs := &Changeset{}
	cs.save(&plan)
	cs.link(plan.ID, linked)
	if err := s.commit(ctx, next, cs); err != nil {
		return model.SubscriptionPlan{}, err
	}
	s.seq.plan = plan.ID
	return plan, nil
}

// UpdatePlan applies in to an existing plan. The product set is replaced only when
// product_ids is supplied.
func (s *Store) UpdatePlan(ctx context.Context, id uint, in model.PlanInput, partial bool) (model.SubscriptionPlan, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current.Load()
	plan, ok := cur.plans[id]
	if !ok {
		return model.SubscriptionPlan{}, apperror.NotFound("subscription plan %d not found", id)
	}
	if !partial {
		if err := requirePlanFields(in); err != nil {
			return model.SubscriptionPlan{}, err
		}
	}

	applyPlanInput(&plan, in)
	productIDs := cur.planLinks[id]
	if in.ProductIDs != nil {
		productIDs = *in.ProductIDs
	}
	linked, err := checkPlan(cur, plan, productIDs)
	if err != nil {
		return model.SubscriptionPlan{}, err
	}

	next := cur.clone()
	next.plans[plan.ID] = plan
	next.planLinks[plan.ID] = linked

	cs := &Changeset{}
	cs.save(&plan)
	if in.ProductIDs != nil {
		cs.link(plan.ID, linked)
	}
	if err := s.commit(ctx, next, cs); err != nil {
		return model.SubscriptionPlan{}, err
	}
	return plan, nil
}

// DeletePlan removes a plan and its product links. Products are untouched.
func (s *Store) DeletePlan(ctx context.Context, id uint) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current.Load()
	if _, ok := cur.plans[id]; !ok {
		return apperror.NotFound("subscription plan %d not found", id)
	}

	next := cur.clone()
	delete(next.plans, id)
	delete(next.planLinks, id)

	cs := &Changeset{}
	cs.link(id, nil)
	cs.remove(&model.SubscriptionPlan{ID: id})
	return s.commit(ctx, next, cs)
}

func requirePlanFields(in model.PlanInput) error {
	if err := firstError(
		requireText("name", in.Name, 100),
		positivePrice("price", in.Price),
	); err != nil {
		return err
	}
	if in.DeliveryFrequency == nil {
		return apperror.Validation("delivery_frequency", "delivery_frequency is required")
	}
	if in.ProductIDs == nil {
		return apperror.Validation("product_ids", "product_ids is required")
	}
	return nil
}

func applyPlanInput(plan *model.SubscriptionPlan, in model.PlanInput) {
	setString(&plan.Name, in.Name)
	setString(&plan.Description, in.Description)
	if in.Price != nil {
		plan.Price = *in.Price
	}
	if in.DeliveryFrequency != nil {
		plan.DeliveryFrequency = *in.DeliveryFrequency
	}
	setBool(&plan.IsActive, in.IsActive)
}

// checkPlan validates the plan fields and returns the deduplicated, sorted product set
func checkPlan(snap *snapshot, plan model.SubscriptionPlan, productIDs []uint) ([]uint, error) {
	if err := firstError(
		requireText("name", &plan.Name, 100),
		positivePrice("price", &plan.Price),
	); err != nil {
		return nil, err
	}
	if !plan.DeliveryFrequency.Valid() {
		return nil, apperror.Validation("delivery_frequency", "unknown delivery frequency %q", plan.DeliveryFrequency)
	}

	seen := make(map[uint]struct{}, len(productIDs))
	linked := make([]uint, 0, len(productIDs))
	for _, pid := range productIDs {
		if _, ok := snap.products[pid]; !ok {
			return nil, apperror.Reference("product_ids", "product %d does not exist", pid)
		}
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		linked = append(linked, pid)
	}
	return sortedIDs(linked), nil
}
