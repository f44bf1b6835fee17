package mapstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"planetgen.ai/internal/grid"
	"planetgen.ai/internal/terrain/noise"
	"planetgen.ai/internal/terrain/planet"
	"planetgen.ai/internal/terrain/sampler"
)

// Digest identifies a map by everything that determines its contents.
func Digest(opt grid.Options, style planet.Style, backend noise.Backend, window sampler.Window) string {
	b, _ := json.Marshal(struct {
		V       int            `json:"v"`
		Options grid.Options   `json:"options"`
		Style   planet.Style   `json:"style"`
		Backend noise.Backend  `json:"backend"`
		Window  sampler.Window `json:"window"`
	}{fileVersion, opt, style, backend, window})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
