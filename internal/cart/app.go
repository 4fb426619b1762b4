package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"StoreFront/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Registry *prometheus.Registry
}

// NewHandler mounts the local surface the UI drives the store with.
func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(kit.Logging(deps.Log))

	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/cart", s.SnapshotHandler())
	r.Post("/cart/refresh", s.RefreshHandler())
	r.Post("/cart/items/{productID}", s.AddHandler())
	r.Post("/cart/items/{productID}/increment", s.IncrementHandler())
	r.Post("/cart/items/{productID}/decrement", s.DecrementHandler())
	r.Delete("/cart/lines/{lineID}", s.DeleteHandler())

	return r
}
