package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteLabelsAndSkip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics("/metrics"))
	r.GET("/animals/:id", func(c *gin.Context) { c.String(http.StatusOK, "rex") })
	r.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "# scrape") })

	byRoute := httpReqs.WithLabelValues(http.MethodGet, "/animals/:id", "200")
	unmatched := httpReqs.WithLabelValues(http.MethodGet, unmatchedRoute, "404")
	scrape := httpReqs.WithLabelValues(http.MethodGet, "/metrics", "200")
	baseRoute := testutil.ToFloat64(byRoute)
	baseUnmatched := testutil.ToFloat64(unmatched)
	baseScrape := testutil.ToFloat64(scrape)

	for _, path := range []string{"/animals/1", "/animals/2", "/wp-login.php", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(byRoute) - baseRoute; got != 2 {
		t.Fatalf("route counter delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(unmatched) - baseUnmatched; got != 1 {
		t.Fatalf("unmatched counter delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(scrape) - baseScrape; got != 0 {
		t.Fatalf("skipped path was counted: delta %v", got)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight = %v after completion", got)
	}
}

func TestMetrics_CollectorNames(t *testing.T) {
	if n := testutil.CollectAndCount(httpInflight, "adoption_http_requests_inflight"); n != 1 {
		t.Fatalf("inflight gauge series = %d", n)
	}
}
