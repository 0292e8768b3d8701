// Package catalog is the request-level façade over the catalog: it authorizes a request
// descriptor, runs the matching query or store operation and renders the result.
package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"catalog-service/internal/apperror"
	"catalog-service/internal/policy"
	"catalog-service/internal/store"

	"go.uber.org/zap"
)

// Request describes one catalog call independent of transport
type Request struct {
	Role      policy.Role
	Operation policy.Operation
	Resource  policy.Resource
	// Ref is a slug for categories and products, a numeric id otherwise
	Ref     string
	Filters url.Values
	Payload json.RawMessage
	// Confirm acknowledges a destructive cascade
	Confirm bool
}

// Response is a rendered result. Body is nil for empty responses.
type Response struct {
	Status int
	Body   interface{}
}

// ErrorBody is the structured rendering of a failed request
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// Service is the Catalog API
type Service struct {
	store *store.Store
	media MediaResolver
	log   *zap.Logger
}

// NewService builds the façade over st
func NewService(st *store.Store, media MediaResolver, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, media: media, log: log}
}

type handlerFunc func(ctx context.Context, req Request) (Response, error)

// Handle authorizes and runs req. Every failure comes back as a structured error response.
func (s *Service) Handle(ctx context.Context, req Request) Response {
	if err := policy.Authorize(req.Role, req.Operation, req.Resource); err != nil {
		return s.fail(req, err)
	}

	var handle handlerFunc
	switch req.Resource {
	case policy.ResourceCategory:
		handle = s.categories
	case policy.ResourceProduct:
		handle = s.products
	case policy.ResourceImage:
		handle = s.images
	case policy.ResourceVariant:
		handle = s.variants
	case policy.ResourcePlan:
		handle = s.plans
	}

	resp, err := handle(ctx, req)
	if err != nil {
		return s.fail(req, err)
	}
	return resp
}

func (s *Service) fail(req Request, err error) Response {
	status := apperror.HTTPStatus(err)
	body := ErrorBody{Error: err.Error(), Code: apperror.KindOf(err).String()}
	if appErr, ok := apperror.As(err); ok {
		body.Error = appErr.Message
		body.Field = appErr.Field
	}

	fields := []zap.Field{
		zap.String("resource", string(req.Resource)),
		zap.String("operation", string(req.Operation)),
		zap.String("role", req.Role.String()),
		zap.String("ref", req.Ref),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("Catalog request failed", fields...)
		body.Error = "internal server error"
	} else {
		s.log.Debug("Catalog request rejected", fields...)
	}
	return Response{Status: status, Body: body}
}

func (s *Service) presenter(role policy.Role) presenter {
	return presenter{view: s.store.View(), scope: policy.ScopeFor(role), media: s.media}
}

func ok(body interface{}) (Response, error) {
	return Response{Status: http.StatusOK, Body: body}, nil
}

func created(body interface{}) (Response, error) {
	return Response{Status: http.StatusCreated, Body: body}, nil
}

func noContent() (Response, error) {
	return Response{Status: http.StatusNoContent}, nil
}

func decode(payload json.RawMessage, dst interface{}) error {
	if len(payload) == 0 {
		return apperror.BadRequest("", "request body is required")
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return apperror.BadRequest("", "invalid request body: %v", err)
	}
	return nil
}

func parseID(ref string) (uint, error) {
	id, err := strconv.ParseUint(ref, 10, 0)
	if err != nil || id == 0 {
		return 0, apperror.NotFound("%q is not a valid id", ref)
	}
	return uint(id), nil
}

type stockPayload struct {
	Quantity *int `json:"quantity"`
}

func decodeQuantity(payload json.RawMessage) (int, error) {
	var body stockPayload
	if err := decode(payload, &body); err != nil {
		return 0, err
	}
	if body.Quantity == nil {
		return 0, apperror.Validation("quantity", "quantity is required")
	}
	return *body.Quantity, nil
}

func unsupported(req Request) (Response, error) {
	return Response{}, apperror.BadRequest("operation", "%s does not support %s", req.Resource, req.Operation)
}
