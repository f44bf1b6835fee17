package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xlab/closer"

	"planetgen.ai/internal/config"
	persistlog "planetgen.ai/internal/persistence/log"
	"planetgen.ai/internal/persistence/mapstore"
	"planetgen.ai/internal/transport/ws"
)

func main() {
	var (
		configPath = flag.String("config", "./configs/planet.yaml", "planet config path (empty for built-in defaults)")
		addr       = flag.String("addr", "", "http listen address (overrides server.addr)")
		dataDir    = flag.String("data", "", "runtime data directory (overrides storage.data_dir)")
		disableDB  = flag.Bool("disable_db", false, "do not store or index generated maps")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if v := strings.TrimSpace(*addr); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(*dataDir); v != "" {
		cfg.Storage.DataDir = v
	}
	if *disableDB {
		cfg.Storage.DisableDB = true
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	var store *mapstore.Store
	if !cfg.Storage.DisableDB {
		store, err = mapstore.Open(cfg.Storage.DataDir)
		if err != nil {
			logger.Fatalf("open map store: %v", err)
		}
	} else {
		logger.Printf("map storage disabled")
	}
	var reqLog *persistlog.RequestLogger
	if cfg.Storage.LogRequests {
		reqLog = persistlog.NewRequestLogger(cfg.Storage.DataDir)
	}

	gen := ws.NewGenerator(cfg, store, reqLog, logger)
	mux := buildMux(gen, logger, envBool("PLANET_ENABLE_PPROF_HTTP", false))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	closer.Bind(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		if err := reqLog.Close(); err != nil {
			logger.Printf("close request log: %v", err)
		}
		if store != nil {
			if err := store.Close(); err != nil {
				logger.Printf("close map store: %v", err)
			}
		}
		logger.Printf("stopped")
	})

	go func() {
		logger.Printf("listening on %s (backend=%s data=%s)", cfg.Server.Addr, cfg.Backend(), cfg.Storage.DataDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("ListenAndServe: %v", err)
			closer.Close()
		}
	}()
	closer.Hold()
}

func buildMux(gen *ws.Generator, logger *log.Logger, enablePprof bool) *http.ServeMux {
	wsSrv := ws.NewServer(gen, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := gen.Metrics()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP planetgen_requests_total Generate requests served.\n")
		fmt.Fprintf(rw, "# TYPE planetgen_requests_total counter\n")
		fmt.Fprintf(rw, "planetgen_requests_total %d\n", m.Requests)

		fmt.Fprintf(rw, "# HELP planetgen_requests_cached_total Generate requests answered from stored maps.\n")
		fmt.Fprintf(rw, "# TYPE planetgen_requests_cached_total counter\n")
		fmt.Fprintf(rw, "planetgen_requests_cached_total %d\n", m.Cached)

		fmt.Fprintf(rw, "# HELP planetgen_requests_failed_total Generate requests answered with an error.\n")
		fmt.Fprintf(rw, "# TYPE planetgen_requests_failed_total counter\n")
		fmt.Fprintf(rw, "planetgen_requests_failed_total %d\n", m.Failures)

		fmt.Fprintf(rw, "# HELP planetgen_points_total Elevation points returned.\n")
		fmt.Fprintf(rw, "# TYPE planetgen_points_total counter\n")
		fmt.Fprintf(rw, "planetgen_points_total %d\n", m.Points)
	})
	mux.HandleFunc("/v1/ws", wsSrv.Handler())
	mux.HandleFunc("/v1/generate", wsSrv.GenerateHandler())
	mux.HandleFunc("/v1/maps", wsSrv.MapsHandler())

	if enablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (PLANET_ENABLE_PPROF_HTTP=false)")
	}
	return mux
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
