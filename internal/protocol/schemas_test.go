package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"planetgen.ai/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	s, err := jsonschema.Compile(filepath.Join("schemas", "generate.schema.json"))
	if err != nil {
		t.Fatalf("compile generate.schema.json: %v", err)
	}

	var ok any
	_ = json.Unmarshal([]byte(`{
	  "type":"GENERATE",
	  "protocol_version":"1.0",
	  "request_id":"r1",
	  "seed":"earthlike",
	  "width":512,
	  "height":512,
	  "spacing":8,
	  "chaos":0.5
	}`), &ok)
	if err := s.Validate(ok); err != nil {
		t.Fatalf("validate: %v", err)
	}

	bad := map[string]string{
		"missing seed":   `{"type":"GENERATE","protocol_version":"1.0","width":1,"height":1,"spacing":1,"chaos":0}`,
		"chaos too high": `{"type":"GENERATE","protocol_version":"1.0","seed":"a","width":1,"height":1,"spacing":1,"chaos":1.5}`,
		"zero spacing":   `{"type":"GENERATE","protocol_version":"1.0","seed":"a","width":1,"height":1,"spacing":0,"chaos":0}`,
		"wrong type":     `{"type":"MAP","protocol_version":"1.0","seed":"a","width":1,"height":1,"spacing":1,"chaos":0}`,
		"extra field":    `{"type":"GENERATE","protocol_version":"1.0","seed":"a","width":1,"height":1,"spacing":1,"chaos":0,"octaves":3}`,
	}
	for name, raw := range bad {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if err := s.Validate(v); err == nil {
			t.Fatalf("%s: expected schema violation", name)
		}
	}
}

func TestDecodeGenerate(t *testing.T) {
	msg, err := protocol.DecodeGenerate([]byte(`{"type":"GENERATE","protocol_version":"1.0","request_id":"r7","seed":"x","width":64,"height":32,"spacing":4,"chaos":0.25,"backend":"perlin"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.RequestID != "r7" || msg.Seed != "x" || msg.Width != 64 || msg.Height != 32 || msg.Spacing != 4 || msg.Chaos != 0.25 || msg.Backend != "perlin" {
		t.Fatalf("unexpected message %+v", msg)
	}

	for _, raw := range []string{
		`not json`,
		`{"type":"GENERATE","protocol_version":"2.0","seed":"x","width":1,"height":1,"spacing":1,"chaos":0}`,
		`{"type":"GENERATE","protocol_version":"1.0","seed":"x","width":1,"height":1,"spacing":1,"chaos":0,"backend":"value"}`,
	} {
		if _, err := protocol.DecodeGenerate([]byte(raw)); err == nil {
			t.Fatalf("expected error for %s", raw)
		}
	}
}

func TestDecodeBase(t *testing.T) {
	b, err := protocol.DecodeBase([]byte(`{"type":"GENERATE","protocol_version":"1.0","request_id":"q"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Type != protocol.TypeGenerate || b.ProtocolVersion != protocol.Version || b.RequestID != "q" {
		t.Fatalf("unexpected base %+v", b)
	}
}
