package handler

import (
	"io"
	"net/http"
	"strconv"

	"catalog-service/internal/catalog"
	"catalog-service/internal/middleware"
	"catalog-service/internal/policy"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// CatalogHandler translates HTTP requests into catalog requests
type CatalogHandler struct {
	service *catalog.Service
}

// NewCatalogHandler creates a handler backed by service
func NewCatalogHandler(service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Register mounts the catalog routes on g. Categories and products are addressed by slug,
// everything else by id.
func (h *CatalogHandler) Register(g *echo.Group) {
	h.crud(g.Group("/categories"), policy.ResourceCategory)

	products := g.Group("/products")
	products.GET("/featured", h.handle(policy.ResourceProduct, policy.OpFeatured))
	products.GET("/new_arrivals", h.handle(policy.ResourceProduct, policy.OpNewArrivals))
	products.GET("/by_category", h.handle(policy.ResourceProduct, policy.OpByCategory))
	h.crud(products, policy.ResourceProduct)
	h.stock(products, policy.ResourceProduct)

	h.crud(g.Group("/product-images"), policy.ResourceImage)

	variants := g.Group("/product-variants")
	h.crud(variants, policy.ResourceVariant)
	h.stock(variants, policy.ResourceVariant)

	h.crud(g.Group("/subscription-plans"), policy.ResourcePlan)
}

func (h *CatalogHandler) crud(g *echo.Group, res policy.Resource) {
	g.GET("", h.handle(res, policy.OpList))
	g.POST("", h.handle(res, policy.OpCreate))
	g.GET("/:ref", h.handle(res, policy.OpRetrieve))
	g.PUT("/:ref", h.handle(res, policy.OpUpdate))
	g.PATCH("/:ref", h.handle(res, policy.OpPartialUpdate))
	g.DELETE("/:ref", h.handle(res, policy.OpDelete))
}

func (h *CatalogHandler) stock(g *echo.Group, res policy.Resource) {
	g.POST("/:ref/stock/decrement", h.handle(res, policy.OpDecrementStock))
	g.POST("/:ref/stock/increment", h.handle(res, policy.OpIncrementStock))
}

func (h *CatalogHandler) handle(res policy.Resource, op policy.Operation) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		req := catalog.Request{
			Role:      middleware.RoleFromContext(c),
			Operation: op,
			Resource:  res,
			Ref:       c.Param("ref"),
			Filters:   c.QueryParams(),
		}
		if op == policy.OpDelete {
			req.Confirm, _ = strconv.ParseBool(c.QueryParam("confirm"))
		} else if op.IsWrite() {
			body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
			if err != nil {
				log.Error("Failed to read request body", zap.Error(err))
				return c.JSON(http.StatusBadRequest, catalog.ErrorBody{
					Error: "Invalid request data",
					Code:  "bad_request",
				})
			}
			req.Payload = body
		}

		log.Info("Handling catalog request",
			zap.String("resource", string(res)),
			zap.String("operation", string(op)),
			zap.String("role", req.Role.String()),
			zap.String("ref", req.Ref))

		resp := h.service.Handle(c.Request().Context(), req)
		record(req, resp)

		if resp.Status >= http.StatusBadRequest {
			log.Warn("Catalog request rejected",
				zap.String("resource", string(res)),
				zap.String("operation", string(op)),
				zap.Int("status", resp.Status))
		} else {
			log.Info("Catalog request completed",
				zap.String("resource", string(res)),
				zap.String("operation", string(op)),
				zap.Int("status", resp.Status))
		}

		if resp.Body == nil {
			return c.NoContent(resp.Status)
		}
		return c.JSON(resp.Status, resp.Body)
	}
}

// record feeds the catalog metrics for a served request
func record(req catalog.Request, resp catalog.Response) {
	prometheus.RecordOperation(string(req.Resource), string(req.Operation), strconv.Itoa(resp.Status))

	switch {
	case resp.Status == http.StatusConflict:
		prometheus.RecordStockRejection(string(req.Resource))
	case req.Operation == policy.OpRetrieve && req.Resource == policy.ResourceProduct && resp.Status == http.StatusOK:
		prometheus.RecordProductView(req.Ref)
	}

	if stock, ok := resp.Body.(catalog.StockView); ok {
		id := strconv.FormatUint(uint64(stock.ID), 10)
		if req.Resource == policy.ResourceVariant {
			prometheus.UpdateVariantInventory(id, float64(stock.StockQuantity))
		} else {
			prometheus.UpdateProductInventory(id, float64(stock.StockQuantity))
		}
	}
}

// Health reports liveness
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
