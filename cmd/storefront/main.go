package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"StoreFront/internal/cart"
	"StoreFront/internal/catalog"
	"StoreFront/internal/notify"
	"StoreFront/internal/session"
	"StoreFront/pkg/kit"
)

func main() {
	service := "storefront"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8090")
	apiURL := getenv("API_BASE_URL", "http://localhost:8000")
	natsURL := getenv("NATS_URL", nats.DefaultURL)
	token := getenv("ACCESS_TOKEN", "")
	background := getenv("RECONCILE_MODE", "sync") == "background"

	registry := prometheus.NewRegistry()
	remoteMetrics := kit.NewRemoteMetrics(registry)

	sess := session.New(token)
	if exp, ok := sess.ExpiresAt(); ok {
		log.Info("session token loaded", zap.Time("expires_at", exp))
	}

	hc := &http.Client{
		Timeout: 3 * time.Second,
		Transport: &session.Transport{
			Base:    remoteMetrics.Transport(nil),
			Session: sess,
			OnUnauthorized: func() {
				log.Warn("session rejected, re-authentication required")
			},
		},
	}

	var events cart.Emitter
	if nc, err := nats.Connect(natsURL); err != nil {
		log.Warn("nats unavailable, cart events disabled", zap.Error(err))
	} else {
		defer nc.Close()
		events = notify.NewEmitter(nc, log)
	}

	store := cart.NewStore(
		cart.NewClient(apiURL, hc),
		catalog.NewClient(apiURL, hc),
		notify.NewAlerter(log, nil),
		events,
		log,
		cart.Config{BackgroundReconcile: background},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.Fetch(ctx); err != nil {
		log.Warn("initial cart fetch failed", zap.Error(err))
	}
	cancel()

	h := cart.NewHandler(&cart.Server{Store: store, Log: log}, cart.HTTPDeps{
		Log:      log,
		Registry: registry,
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
