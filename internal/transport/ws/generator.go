package ws

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"planetgen.ai/internal/config"
	"planetgen.ai/internal/grid"
	persistlog "planetgen.ai/internal/persistence/log"
	"planetgen.ai/internal/persistence/mapstore"
	"planetgen.ai/internal/protocol"
	"planetgen.ai/internal/terrain/graph"
	"planetgen.ai/internal/terrain/noise"
)

// Generator serves GENERATE requests for every transport. Store and request
// log are optional.
type Generator struct {
	cfg    config.Config
	store  *mapstore.Store
	reqLog *persistlog.RequestLogger
	log    *log.Logger

	requests atomic.Uint64
	cached   atomic.Uint64
	failures atomic.Uint64
	points   atomic.Uint64
}

// Metrics counts served requests since start.
type Metrics struct {
	Requests uint64
	Cached   uint64
	Failures uint64
	Points   uint64
}

func (g *Generator) Metrics() Metrics {
	return Metrics{
		Requests: g.requests.Load(),
		Cached:   g.cached.Load(),
		Failures: g.failures.Load(),
		Points:   g.points.Load(),
	}
}

func NewGenerator(cfg config.Config, store *mapstore.Store, reqLog *persistlog.RequestLogger, logger *log.Logger) *Generator {
	return &Generator{cfg: cfg, store: store, reqLog: reqLog, log: logger}
}

// Generate answers one request with a MAP, or with the ERROR to send back.
func (g *Generator) Generate(ctx context.Context, transport string, req protocol.GenerateMsg) (protocol.MapMsg, *protocol.ErrorMsg) {
	start := time.Now()
	rec := persistlog.RequestRecord{
		Transport: transport,
		RequestID: req.RequestID,
		Seed:      req.Seed,
		SeedValue: grid.SeedFromString(req.Seed),
		Width:     req.Width,
		Height:    req.Height,
		Spacing:   req.Spacing,
		Chaos:     req.Chaos,
	}
	m, digest, cached, code, err := g.generate(ctx, req, &rec)
	rec.DurationMs = float64(time.Since(start).Microseconds()) / 1000
	rec.Digest = digest
	rec.Cached = cached
	g.requests.Add(1)
	if err != nil {
		rec.Code = code
		rec.Error = err.Error()
		g.failures.Add(1)
	} else {
		rec.Points = len(m.Points)
		g.points.Add(uint64(len(m.Points)))
		if cached {
			g.cached.Add(1)
		}
	}
	if werr := g.reqLog.WriteRequest(rec); werr != nil {
		g.logf("request log: %v", werr)
	}
	if err != nil {
		e := protocol.NewError(req.RequestID, code, err.Error())
		return protocol.MapMsg{}, &e
	}
	return mapMessage(req.RequestID, digest, cached, m), nil
}

func (g *Generator) generate(ctx context.Context, req protocol.GenerateMsg, rec *persistlog.RequestRecord) (*grid.Map, string, bool, string, error) {
	if req.ProtocolVersion != protocol.Version {
		return nil, "", false, protocol.ErrProtoVersion, fmt.Errorf("unsupported protocol_version %q", req.ProtocolVersion)
	}
	backend := g.cfg.Backend()
	if req.Backend != "" {
		b, err := noise.ParseBackend(req.Backend)
		if err != nil {
			return nil, "", false, protocol.ErrBadRequest, err
		}
		backend = b
	}
	rec.Backend = string(backend)

	opt := grid.Options{
		Seed:    req.Seed,
		Width:   req.Width,
		Height:  req.Height,
		Spacing: req.Spacing,
		Chaos:   req.Chaos,
	}
	// Budget first, so a spacing too fine for the lattice reads as too large.
	if n := grid.PointCount(opt.Width, opt.Height, opt.Spacing); n > g.cfg.Server.MaxPoints {
		return nil, "", false, protocol.ErrTooLarge, fmt.Errorf("request yields %d points, limit is %d", n, g.cfg.Server.MaxPoints)
	}
	if err := opt.Validate(); err != nil {
		return nil, "", false, protocol.ErrConfig, err
	}

	digest := mapstore.Digest(opt, g.cfg.Planet, backend, g.cfg.Sampler.Window)
	if g.store != nil {
		m, ok, err := g.store.Get(ctx, digest)
		if err != nil {
			g.logf("mapstore get %s: %v", digest, err)
		}
		if ok {
			return m, digest, true, "", nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.cfg.Server.TimeoutMs)*time.Millisecond)
	defer cancel()
	m, err := grid.Generate(ctx, opt, grid.Terrain{
		Style:   g.cfg.Planet,
		Backend: backend,
		Window:  g.cfg.Sampler.Window,
		Workers: g.cfg.Sampler.Workers,
	})
	if err != nil {
		return nil, digest, false, errorCode(err), err
	}
	if g.store != nil {
		if _, err := g.store.Put(ctx, digest, m); err != nil {
			g.logf("mapstore put %s: %v", digest, err)
		}
	}
	return m, digest, false, "", nil
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return protocol.ErrTimeout
	case errors.Is(err, graph.ErrConfig):
		return protocol.ErrConfig
	case errors.Is(err, graph.ErrCompute):
		return protocol.ErrCompute
	default:
		return protocol.ErrInternal
	}
}

func mapMessage(requestID, digest string, cached bool, m *grid.Map) protocol.MapMsg {
	points := make([][2]float64, len(m.Points))
	for i, p := range m.Points {
		points[i] = [2]float64{p.X(), p.Y()}
	}
	return protocol.MapMsg{
		Type:            protocol.TypeMap,
		ProtocolVersion: protocol.Version,
		RequestID:       requestID,
		Digest:          digest,
		Seed:            m.Seed,
		SeedValue:       m.SeedValue,
		Width:           m.Width,
		Height:          m.Height,
		Spacing:         m.Spacing,
		Chaos:           m.Chaos,
		Points:          points,
		Elevation:       m.Elevation,
		Stats: protocol.MapStats{
			Count:    m.Stats.Count,
			Min:      m.Stats.Min,
			Max:      m.Stats.Max,
			Mean:     m.Stats.Mean,
			AboveSea: m.Stats.AboveSea,
		},
		Cached: cached,
	}
}

func (g *Generator) logf(format string, args ...any) {
	if g.log != nil {
		g.log.Printf(format, args...)
	}
}
