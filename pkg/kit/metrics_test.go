package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEndpointLabel(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/api/carts/customer/cart-items/", "/api/carts"},
		{"/api/carts/cart-item/l1/update/", "/api/carts"},
		{"/api/products/p1/retrieve/", "/api/products"},
		{"/healthz", "other"},
		{"", "other"},
	}

	for _, c := range cases {
		if got := EndpointLabel(c.path); got != c.want {
			t.Errorf("EndpointLabel(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestRemoteMetricsTransport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	reg := prometheus.NewRegistry()
	m := NewRemoteMetrics(reg)

	c := &http.Client{Transport: m.Transport(nil)}
	resp, err := c.Get(ts.URL + "/api/carts/customer/cart-items/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	got := testutil.ToFloat64(m.Requests.WithLabelValues("/api/carts", http.MethodGet, "200"))
	if got != 1 {
		t.Fatalf("request count = %v, want 1", got)
	}
}
