// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/rocksky-relay/internal/auth"
	"github.com/tomtom215/rocksky-relay/internal/cache"
	"github.com/tomtom215/rocksky-relay/internal/config"
	"github.com/tomtom215/rocksky-relay/internal/models"
	"github.com/tomtom215/rocksky-relay/internal/relay"
	ws "github.com/tomtom215/rocksky-relay/internal/websocket"
)

const testSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(context.Context) error { return p.err }

type testServer struct {
	handler  *Handler
	hub      *ws.Hub
	registry *relay.Registry
	verifier *auth.Verifier
	config   *config.Config
	router   http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			JWTSecret:         testSecret,
			CORSOrigins:       []string{"https://rocksky.app"},
			RateLimitDisabled: true,
		},
		Cache: config.CacheConfig{Backend: config.CacheBackendMemory},
		Relay: config.RelayConfig{SendBufferSize: 16},
	}
}

// newTestServer builds the full HTTP stack. store and cache may be nil.
func newTestServer(t *testing.T, cfg *config.Config, store, cacheStore Pinger) *testServer {
	t.Helper()
	verifier, err := auth.NewVerifier(&cfg.Security)
	if err != nil {
		t.Fatal(err)
	}
	registry := relay.NewRegistry()
	hub := ws.NewHub(relay.New(registry, nil, verifier, &cfg.Relay), &cfg.Relay)
	handler := NewHandler(hub, registry, store, cacheStore, cfg, "test")
	return &testServer{
		handler:  handler,
		hub:      hub,
		registry: registry,
		verifier: verifier,
		config:   cfg,
		router:   NewRouter(handler, NewChiMiddleware(NewChiMiddlewareConfig(&cfg.Security))).Setup(),
	}
}

// runHub starts the hub until the test ends.
func (ts *testServer) runHub(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ts.hub.RunWithContext(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	deadline := time.Now().Add(2 * time.Second)
	for !ts.hub.Running() {
		if time.Now().After(deadline) {
			t.Fatal("hub did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (ts *testServer) get(t *testing.T, path string) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp models.APIResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec, resp
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		store      Pinger
		cache      Pinger
		runHub     bool
		wantStatus string
		wantDB     bool
		wantCache  bool
	}{
		{name: "all up", store: &fakePinger{}, cache: &fakePinger{}, runHub: true, wantStatus: "healthy", wantDB: true, wantCache: true},
		{name: "cache down stays healthy", store: &fakePinger{}, cache: &fakePinger{err: errors.New("refused")}, runHub: true, wantStatus: "healthy", wantDB: true},
		{name: "store down", store: &fakePinger{err: errors.New("closed")}, cache: &fakePinger{}, runHub: true, wantStatus: "degraded", wantCache: true},
		{name: "hub stopped", store: &fakePinger{}, cache: &fakePinger{}, wantStatus: "degraded", wantDB: true, wantCache: true},
		{name: "no dependencies", runHub: true, wantStatus: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, testConfig(), tt.store, tt.cache)
			if tt.runHub {
				ts.runHub(t)
			}

			rec := httptest.NewRecorder()
			ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status code = %d, want 200", rec.Code)
			}

			var resp struct {
				Data models.HealthStatus `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Data.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", resp.Data.Status, tt.wantStatus)
			}
			if resp.Data.DatabaseConnected != tt.wantDB {
				t.Errorf("database_connected = %v, want %v", resp.Data.DatabaseConnected, tt.wantDB)
			}
			if resp.Data.CacheConnected != tt.wantCache {
				t.Errorf("cache_connected = %v, want %v", resp.Data.CacheConnected, tt.wantCache)
			}
			if resp.Data.CacheBackend != config.CacheBackendMemory {
				t.Errorf("cache_backend = %q", resp.Data.CacheBackend)
			}
			if resp.Data.Version != "test" {
				t.Errorf("version = %q", resp.Data.Version)
			}
		})
	}
}

func TestHealth_MemoryCacheStats(t *testing.T) {
	store := cache.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	_ = store.SetWithExpiry(ctx, "track:abc", "{}", time.Minute)
	_, _, _ = store.Get(ctx, "track:abc")
	_, _, _ = store.Get(ctx, "track:missing")

	ts := newTestServer(t, testConfig(), &fakePinger{}, store)
	ts.runHub(t)

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp struct {
		Data models.HealthStatus `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	got := resp.Data.Cache
	if got == nil {
		t.Fatal("cache stats missing for memory backend")
	}
	if got.Hits != 1 || got.Misses != 1 || got.Keys != 1 {
		t.Errorf("cache stats = %+v, want 1 hit, 1 miss, 1 key", got)
	}
	if got.HitRate != 50 {
		t.Errorf("hit_rate = %v, want 50", got.HitRate)
	}
}

func TestHealth_NoCacheStatsForRemoteBackends(t *testing.T) {
	ts := newTestServer(t, testConfig(), &fakePinger{}, &fakePinger{})

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if strings.Contains(rec.Body.String(), `"cache":`) {
		t.Errorf("unexpected cache stats in %s", rec.Body.String())
	}
}

func TestHealthLive(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil, nil)

	rec, resp := ts.get(t, "/health/live")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	if resp.Status != "success" {
		t.Errorf("status = %q", resp.Status)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name     string
		store    Pinger
		cache    Pinger
		runHub   bool
		wantCode int
	}{
		{name: "ready", store: &fakePinger{}, cache: &fakePinger{}, runHub: true, wantCode: http.StatusOK},
		{name: "store down", store: &fakePinger{err: errors.New("closed")}, cache: &fakePinger{}, runHub: true, wantCode: http.StatusServiceUnavailable},
		{name: "cache down", store: &fakePinger{}, cache: &fakePinger{err: errors.New("refused")}, runHub: true, wantCode: http.StatusServiceUnavailable},
		{name: "hub stopped", store: &fakePinger{}, cache: &fakePinger{}, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, testConfig(), tt.store, tt.cache)
			if tt.runHub {
				ts.runHub(t)
			}

			rec, resp := ts.get(t, "/health/ready")
			if rec.Code != tt.wantCode {
				t.Fatalf("status code = %d, want %d", rec.Code, tt.wantCode)
			}
			wantStatus := "ready"
			if tt.wantCode != http.StatusOK {
				wantStatus = "not_ready"
			}
			if resp.Status != wantStatus {
				t.Errorf("status = %q, want %q", resp.Status, wantStatus)
			}
		})
	}
}

func TestHealthDevices(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil, nil)
	ts.registry.Register("did:plc:alice", "desktop", nopSender{})
	ts.registry.Register("did:plc:alice", "mobile", nopSender{})
	ts.registry.Register("did:plc:bob", "car", nopSender{})

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/devices", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}

	var resp struct {
		Data models.DeviceStats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := models.DeviceStats{Connections: 0, Devices: 3, Accounts: 2}
	if resp.Data != want {
		t.Errorf("stats = %+v, want %+v", resp.Data, want)
	}
}

type nopSender struct{}

func (nopSender) Send([]byte) bool { return true }

func TestCheckWebSocketOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    bool
	}{
		{name: "native device without origin", origins: []string{"https://rocksky.app"}, want: true},
		{name: "allowed origin", origins: []string{"https://rocksky.app"}, origin: "https://rocksky.app", want: true},
		{name: "unknown origin", origins: []string{"https://rocksky.app"}, origin: "https://evil.example", want: false},
		{name: "wildcard", origins: []string{"*"}, origin: "https://anything.example", want: true},
		{name: "no origins configured", origin: "https://rocksky.app", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Security.CORSOrigins = tt.origins
			h := NewHandler(nil, nil, nil, nil, cfg, "test")

			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := h.checkWebSocketOrigin(req); got != tt.want {
				t.Errorf("checkWebSocketOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWebSocket_HubNotRunning(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil, nil)

	rec, resp := ts.get(t, "/ws")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status code = %d, want 503", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestWebSocket_RelayThroughRouter(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil, nil)
	ts.runHub(t)
	server := httptest.NewServer(ts.router)
	t.Cleanup(server.Close)

	token, err := ts.verifier.GenerateToken("did:plc:alice", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	dial := func() *websocket.Conn {
		conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
		if resp != nil && resp.Body != nil {
			defer resp.Body.Close()
		}
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	}
	read := func(conn *websocket.Conn) map[string]any {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		return m
	}

	desktop := dial()
	mobile := dial()

	register := func(conn *websocket.Conn, name string) string {
		msg := `{"type":"register","clientName":"` + name + `","token":"` + token + `"}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatal(err)
		}
		ack := read(conn)
		if ack["status"] != "registered" {
			t.Fatalf("ack = %v", ack)
		}
		return ack["deviceId"].(string)
	}

	register(desktop, "desktop")
	mobileID := register(mobile, "mobile")

	// desktop is told about the new peer
	if notice := read(desktop); notice["type"] != "device_registered" {
		t.Fatalf("peer notification = %v", notice)
	}

	control := `{"type":"control","action":"pause","target":"` + mobileID + `","token":"` + token + `"}`
	if err := desktop.WriteMessage(websocket.TextMessage, []byte(control)); err != nil {
		t.Fatal(err)
	}
	got := read(mobile)
	if got["action"] != "pause" {
		t.Errorf("relayed control = %v", got)
	}
	if _, ok := got["token"]; ok {
		t.Error("token must be stripped before relaying")
	}

	devices, accounts := ts.registry.Counts()
	if devices != 2 || accounts != 1 {
		t.Errorf("Counts() = %d, %d", devices, accounts)
	}
}
