package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/things/:id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	return r
}

func TestRequestID_Generated(t *testing.T) {
	r := newEngine(RequestID())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/1", nil))

	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("expected a generated request id")
	}
	if w.Body.String() != id {
		t.Errorf("context id %q does not match header %q", w.Body.String(), id)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	r := newEngine(RequestID())

	req := httptest.NewRequest(http.MethodGet, "/things/1", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestRequestID_OversizedReplaced(t *testing.T) {
	r := newEngine(RequestID())

	req := httptest.NewRequest(http.MethodGet, "/things/1", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); len(got) > 128 {
		t.Errorf("oversized id was kept: %d bytes", len(got))
	}
}

func TestMetrics_CountsByRoute(t *testing.T) {
	r := newEngine(Metrics("metrics-test"))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/"+string(rune('1'+i)), nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := testutil.ToFloat64(httpRequests.WithLabelValues("metrics-test", "GET", "/things/:id", "200")); got != 3 {
		t.Errorf("matched route count = %v, want 3", got)
	}
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("metrics-test", "GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched count = %v, want 1", got)
	}
}

func TestRecordCreated(t *testing.T) {
	before := testutil.ToFloat64(recordsCreated.WithLabelValues("widgets"))
	RecordCreated("widgets")
	if got := testutil.ToFloat64(recordsCreated.WithLabelValues("widgets")); got != before+1 {
		t.Errorf("records created = %v, want %v", got, before+1)
	}
}
