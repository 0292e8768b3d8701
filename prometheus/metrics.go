package prometheus

import (
	"sync"
	"time"

	"catalog-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Catalog operation metrics
	ProductOperationsCounter  *prometheus.CounterVec
	CategoryOperationsCounter *prometheus.CounterVec
	PlanOperationsCounter     *prometheus.CounterVec

	// Inventory metrics
	ProductInventoryGauge  *prometheus.GaugeVec
	VariantInventoryGauge  *prometheus.GaugeVec
	StockRejectionsCounter *prometheus.CounterVec

	// Product popularity metrics
	ProductViewsCounter *prometheus.CounterVec
)

// InitMetrics registers the metrics with the default registry. Later calls are no-ops.
func InitMetrics(config *config.Config) {
	initOnce.Do(func() { register(promauto.With(prometheus.DefaultRegisterer), config.Metrics.Prefix) })
}

func register(factory promauto.Factory, prefix string) {
	HttpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of requests carrying a bearer token",
		},
	)

	AuthSuccessCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successfully validated tokens",
		},
	)

	AuthErrorsCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of rejected tokens",
		},
	)

	DbOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	ProductOperationsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_operations_total",
			Help: "Total number of product operations",
		},
		[]string{"operation", "status"},
	)

	CategoryOperationsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_category_operations_total",
			Help: "Total number of category operations",
		},
		[]string{"operation", "status"},
	)

	PlanOperationsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_subscription_plan_operations_total",
			Help: "Total number of subscription plan operations",
		},
		[]string{"operation", "status"},
	)

	ProductInventoryGauge = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_product_inventory",
			Help: "Current inventory level for products",
		},
		[]string{"product_id"},
	)

	VariantInventoryGauge = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_variant_inventory",
			Help: "Current inventory level for product variants",
		},
		[]string{"variant_id"},
	)

	StockRejectionsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_rejections_total",
			Help: "Total number of stock decrements rejected for insufficient stock",
		},
		[]string{"target"},
	)

	ProductViewsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_views_total",
			Help: "Total number of product detail views",
		},
		[]string{"product_slug"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordHTTPRequest counts one served request and its duration
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAuth counts a token validation attempt and its outcome
func RecordAuth(success bool) {
	if AuthAttemptsCounter == nil {
		return
	}
	AuthAttemptsCounter.Inc()
	if success {
		AuthSuccessCounter.Inc()
	} else {
		AuthErrorsCounter.Inc()
	}
}

// RecordOperation increments the operation counter of a catalog resource
func RecordOperation(resource, operation, status string) {
	var counter *prometheus.CounterVec
	switch resource {
	case "product", "product_image", "product_variant":
		counter = ProductOperationsCounter
	case "category":
		counter = CategoryOperationsCounter
	case "subscription_plan":
		counter = PlanOperationsCounter
	}
	if counter == nil {
		return
	}
	counter.WithLabelValues(resource+":"+operation, status).Inc()
}

// UpdateProductInventory sets the inventory gauge of a product
func UpdateProductInventory(productID string, count float64) {
	if ProductInventoryGauge == nil {
		return
	}
	ProductInventoryGauge.WithLabelValues(productID).Set(count)
}

// UpdateVariantInventory sets the inventory gauge of a variant
func UpdateVariantInventory(variantID string, count float64) {
	if VariantInventoryGauge == nil {
		return
	}
	VariantInventoryGauge.WithLabelValues(variantID).Set(count)
}

// RecordStockRejection counts a decrement refused for insufficient stock
func RecordStockRejection(target string) {
	if StockRejectionsCounter == nil {
		return
	}
	StockRejectionsCounter.WithLabelValues(target).Inc()
}

// RecordProductView increments the counter for product views
func RecordProductView(productSlug string) {
	if ProductViewsCounter == nil {
		return
	}
	ProductViewsCounter.WithLabelValues(productSlug).Inc()
}
