package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"planetgen.ai/internal/protocol"
)

type Server struct {
	gen *Generator
	log *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(gen *Generator, logger *log.Logger) *Server {
	s := &Server{
		gen: gen,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

// Handler serves GENERATE requests over one websocket, one reply per request
// in arrival order.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out := make(chan any, 8)
		writerDone := make(chan struct{})

		// Writer goroutine.
		go func() {
			defer close(writerDone)
			for {
				select {
				case <-ctx.Done():
					return
				case v, ok := <-out:
					if !ok {
						return
					}
					if err := writeJSON(conn, v); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			req, e := decodeRequest(msg)
			var reply any
			if e != nil {
				reply = *e
			} else if m, e := s.gen.Generate(ctx, "ws", req); e != nil {
				reply = *e
			} else {
				reply = m
			}
			select {
			case out <- reply:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}

		close(out)
		select {
		case <-writerDone:
		case <-time.After(500 * time.Millisecond):
		}
		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
	}
}

// decodeRequest routes raw by type and validates it as a GENERATE request.
func decodeRequest(raw []byte) (protocol.GenerateMsg, *protocol.ErrorMsg) {
	base, err := protocol.DecodeBase(raw)
	if err != nil {
		e := protocol.NewError("", protocol.ErrProtoBadRequest, fmt.Sprintf("bad json: %v", err))
		return protocol.GenerateMsg{}, &e
	}
	if base.Type != protocol.TypeGenerate {
		e := protocol.NewError(base.RequestID, protocol.ErrProtoBadRequest, fmt.Sprintf("unexpected message type %q", base.Type))
		return protocol.GenerateMsg{}, &e
	}
	if base.ProtocolVersion != protocol.Version {
		e := protocol.NewError(base.RequestID, protocol.ErrProtoVersion, fmt.Sprintf("unsupported protocol_version %q", base.ProtocolVersion))
		return protocol.GenerateMsg{}, &e
	}
	req, err := protocol.DecodeGenerate(raw)
	if err != nil {
		e := protocol.NewError(base.RequestID, protocol.ErrBadRequest, err.Error())
		return protocol.GenerateMsg{}, &e
	}
	return req, nil
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
