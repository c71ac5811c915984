package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsHandler_Smoke(t *testing.T) {
	ExposeBuildInfo("test")
	ObserveHTTP("POST", "/api/soils", 200, 0.001)
	ObserveUpstreamPage("soils", 0.120)
	ObserveQueryFanout(3, 5500)
	IncCacheHit()
	IncCacheMiss()
	IncFloodMemo("hit")
	IncInvalidation("applied")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{
		"app_build_info",
		"http_requests_total",
		"upstream_page_latency_seconds",
		"upstream_pages_per_query",
		"cache_results_total",
		"flood_memo_total",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("metrics payload missing %s; got:\n%s", name, body)
		}
	}
}
