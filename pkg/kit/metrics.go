package kit

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelEndpoint = "endpoint"
	labelMethod   = "method"
	labelStatus   = "status"

	statusTransportError = "error"
)

// RemoteMetrics counts and times outbound calls to the storefront API.
type RemoteMetrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

func NewRemoteMetrics(reg prometheus.Registerer) *RemoteMetrics {
	m := &RemoteMetrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_remote_requests_total",
				Help: "Total outbound requests to the remote API",
			},
			[]string{labelEndpoint, labelMethod, labelStatus},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "storefront_remote_request_duration_seconds",
				Help: "Outbound request latency",
			},
			[]string{labelEndpoint, labelMethod},
		),
	}

	reg.MustRegister(m.Requests, m.Latency)
	return m
}

// Transport wraps base so every outbound request is observed. A nil
// base falls back to http.DefaultTransport.
func (m *RemoteMetrics) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := base.RoundTrip(r)

		endpoint := EndpointLabel(r.URL.Path)
		m.Latency.WithLabelValues(endpoint, r.Method).
			Observe(time.Since(start).Seconds())

		status := statusTransportError
		if err == nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		m.Requests.WithLabelValues(endpoint, r.Method, status).Inc()

		return resp, err
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// EndpointLabel collapses a request path to its API group so label
// cardinality stays bounded regardless of ids in the path.
func EndpointLabel(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(parts) >= 2 && parts[0] == "api" {
		return "/api/" + parts[1]
	}
	return "other"
}
