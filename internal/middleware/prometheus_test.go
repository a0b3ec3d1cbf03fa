// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/rocksky-relay/internal/metrics"
)

func TestPrometheusMetrics_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/health/{check}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/health/{check}", "503")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/health/ready", "/health/live"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: status = %d", path, rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("requests recorded under route pattern = %v, want 2", got)
	}
	if testutil.ToFloat64(metrics.APIActiveRequests) != 0 {
		t.Error("in-flight gauge should return to zero")
	}
}

func TestPrometheusMetrics_UnmatchedRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/metrics", func(http.ResponseWriter, *http.Request) {})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/random/path/123", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}

func TestPrometheusMetrics_AllowsWebSocketUpgrade(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, req, nil)
		if err != nil {
			return
		}
		_ = conn.Close()
	})
	server := httptest.NewServer(r)
	defer server.Close()

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/ws", "101")
	before := testutil.ToFloat64(counter)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("upgrade through metrics middleware failed: %v", err)
	}
	_ = conn.Close()

	// The handler finishes recording after the client sees the handshake.
	deadline := time.Now().Add(2 * time.Second)
	for testutil.ToFloat64(counter)-before != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("upgrades recorded = %v, want 1", testutil.ToFloat64(counter)-before)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
