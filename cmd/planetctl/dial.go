package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"planetgen.ai/internal/protocol"
	"planetgen.ai/internal/terrain/sampler"
)

func dialCmd(args []string) {
	fs := flag.NewFlagSet("dial", flag.ExitOnError)
	url := fs.String("url", "ws://localhost:8080/v1/ws", "ws url")
	seed := fs.String("seed", "", "seed string")
	width := fs.Float64("width", 512, "map width")
	height := fs.Float64("height", 512, "map height")
	spacing := fs.Float64("spacing", 8, "lattice spacing")
	chaos := fs.Float64("chaos", 0.5, "jitter amount in [0,1]")
	backend := fs.String("backend", "", "noise backend override (optional)")
	timeout := fs.Duration("timeout", 2*time.Minute, "reply timeout")
	asJSON := fs.Bool("json", false, "print the raw reply")
	_ = fs.Parse(args)

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial:", err)
		os.Exit(1)
	}
	defer conn.Close()

	req := protocol.GenerateMsg{
		Type:            protocol.TypeGenerate,
		ProtocolVersion: protocol.Version,
		RequestID:       fmt.Sprintf("cli-%d", time.Now().UnixNano()),
		Seed:            *seed,
		Width:           *width,
		Height:          *height,
		Spacing:         *spacing,
		Chaos:           *chaos,
		Backend:         *backend,
	}
	if err := conn.WriteJSON(req); err != nil {
		fmt.Fprintln(os.Stderr, "send GENERATE:", err)
		os.Exit(1)
	}
	_ = conn.SetReadDeadline(time.Now().Add(*timeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	if *asJSON {
		os.Stdout.Write(msg)
		fmt.Println()
		return
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		os.Exit(1)
	}
	switch base.Type {
	case protocol.TypeMap:
		var m protocol.MapMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			fmt.Fprintln(os.Stderr, "decode MAP:", err)
			os.Exit(1)
		}
		printSummary(m.Digest, m.Seed, m.SeedValue, sampler.Summary(m.Stats))
		if m.Cached {
			fmt.Println("cached=true")
		}
	case protocol.TypeError:
		var e protocol.ErrorMsg
		_ = json.Unmarshal(msg, &e)
		fmt.Fprintf(os.Stderr, "%s: %s\n", e.Code, e.Message)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "unexpected reply type %q\n", base.Type)
		os.Exit(1)
	}
}
