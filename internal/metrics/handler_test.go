package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// TestHandler_ServesMetrics はスクレイプでメトリクスが返ることを検証する。
func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordCheckIn("morning")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `attendman_check_ins_total{slot="morning"} 1`) {
		t.Errorf("response should contain attendman_check_ins_total, got:\n%s", body)
	}
}

// 別のレジストリのメトリクスは含まれないことを検証する。
func TestHandler_IsolatedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	other := prometheus.NewRegistry()
	NewCollector(other).RecordCheckIn("morning")

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(w.Result().Body)
	if strings.Contains(string(body), "attendman_check_ins_total") {
		t.Error("metrics from another registry should not be exposed")
	}
}
