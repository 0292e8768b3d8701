package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	register(promauto.With(reg), "test")

	RecordAuth(true)
	RecordAuth(false)
	assert.Equal(t, 2.0, testutil.ToFloat64(AuthAttemptsCounter))
	assert.Equal(t, 1.0, testutil.ToFloat64(AuthSuccessCounter))
	assert.Equal(t, 1.0, testutil.ToFloat64(AuthErrorsCounter))

	RecordOperation("category", "delete", "200")
	RecordOperation("product_variant", "create", "201")
	RecordOperation("unknown", "list", "200")
	assert.Equal(t, 1.0, testutil.ToFloat64(CategoryOperationsCounter.WithLabelValues("category:delete", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ProductOperationsCounter.WithLabelValues("product_variant:create", "201")))

	UpdateProductInventory("7", 12)
	assert.Equal(t, 12.0, testutil.ToFloat64(ProductInventoryGauge.WithLabelValues("7")))

	RecordStockRejection("variant")
	assert.Equal(t, 1.0, testutil.ToFloat64(StockRejectionsCounter.WithLabelValues("variant")))

	RecordHTTPRequest("GET", "/api/products", "200", 20*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("GET", "/api/products", "200")))

	TrackDBOperation("apply")(time.Now())
	count, err := testutil.GatherAndCount(reg, "test_db_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
