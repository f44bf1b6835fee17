package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"planetgen.ai/internal/config"
	"planetgen.ai/internal/protocol"
	"planetgen.ai/internal/transport/ws"
)

func TestBuildMux_HealthGenerateMetrics(t *testing.T) {
	cfg := config.Defaults()
	logger := log.New(io.Discard, "", 0)
	gen := ws.NewGenerator(cfg, nil, nil, logger)
	mux := buildMux(gen, logger, false)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}

	body, _ := json.Marshal(protocol.GenerateMsg{
		Type:            protocol.TypeGenerate,
		ProtocolVersion: protocol.Version,
		Seed:            "metrics",
		Width:           10,
		Height:          10,
		Spacing:         2,
		Chaos:           0.25,
	})
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := rec.Body.String()
	for _, want := range []string{
		"planetgen_requests_total 1\n",
		"planetgen_requests_cached_total 0\n",
		"planetgen_requests_failed_total 0\n",
		"planetgen_points_total 16\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics missing %q:\n%s", want, out)
		}
	}
}

func TestBuildMux_MapsWithoutStorage(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	mux := buildMux(ws.NewGenerator(config.Defaults(), nil, nil, logger), logger, false)

	req := httptest.NewRequest(http.MethodGet, "/v1/maps", nil)
	req.RemoteAddr = "8.8.8.8:1234"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-loopback maps listing, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/maps", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with storage disabled, got %d", rec.Code)
	}
}
