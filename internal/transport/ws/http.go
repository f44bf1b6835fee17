package ws

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"planetgen.ai/internal/protocol"
)

const maxRequestBytes = 1 << 20

// GenerateHandler serves POST /v1/generate with the same messages as the
// websocket.
func (s *Server) GenerateHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
		if err != nil {
			writeHTTPError(rw, protocol.NewError("", protocol.ErrProtoBadRequest, err.Error()))
			return
		}
		if len(raw) > maxRequestBytes {
			writeHTTPError(rw, protocol.NewError("", protocol.ErrTooLarge, "request body too large"))
			return
		}
		req, e := decodeRequest(raw)
		if e != nil {
			writeHTTPError(rw, *e)
			return
		}
		m, e := s.gen.Generate(r.Context(), "http", req)
		if e != nil {
			writeHTTPError(rw, *e)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(m)
	}
}

type mapRow struct {
	Digest    string  `json:"digest"`
	Seed      string  `json:"seed"`
	SeedValue uint64  `json:"seed_value"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Spacing   float64 `json:"spacing"`
	Chaos     float64 `json:"chaos"`
	Points    int     `json:"points"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	CreatedAt string  `json:"created_at"`
}

// MapsHandler lists stored maps, newest first. Loopback only.
func (s *Server) MapsHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		if s.gen.store == nil {
			writeHTTPError(rw, protocol.NewError("", protocol.ErrNotFound, "map storage is disabled"))
			return
		}
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeHTTPError(rw, protocol.NewError("", protocol.ErrBadRequest, fmt.Sprintf("bad limit %q", v)))
				return
			}
			limit = n
		}
		rows, err := s.gen.store.Index().List(r.Context(), r.URL.Query().Get("seed"), limit)
		if err != nil {
			writeHTTPError(rw, protocol.NewError("", protocol.ErrInternal, err.Error()))
			return
		}
		out := make([]mapRow, 0, len(rows))
		for _, row := range rows {
			out = append(out, mapRow{
				Digest:    row.Digest,
				Seed:      row.Seed,
				SeedValue: row.SeedValue,
				Width:     row.Width,
				Height:    row.Height,
				Spacing:   row.Spacing,
				Chaos:     row.Chaos,
				Points:    row.Points,
				Min:       row.Min,
				Max:       row.Max,
				CreatedAt: row.CreatedAt,
			})
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]any{"maps": out})
	}
}

func httpStatus(code string) int {
	switch code {
	case protocol.ErrTooLarge:
		return http.StatusRequestEntityTooLarge
	case protocol.ErrTimeout:
		return http.StatusGatewayTimeout
	case protocol.ErrNotFound:
		return http.StatusNotFound
	case protocol.ErrCompute, protocol.ErrInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeHTTPError(rw http.ResponseWriter, e protocol.ErrorMsg) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(httpStatus(e.Code))
	_ = json.NewEncoder(rw).Encode(e)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
