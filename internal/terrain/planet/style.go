package planet

import (
	"fmt"
	"math"

	"planetgen.ai/internal/terrain/graph"
)

// Style holds the constants that give a planet its character. Elevations are
// in planetary units: -1 is the deepest trench, +1 the highest peak.
type Style struct {
	// ContinentFrequency sets the size of continents; higher values give
	// smaller, more numerous land masses.
	ContinentFrequency float64 `yaml:"continent_frequency" json:"continent_frequency"`

	// Lacunarities should be close to, but not exactly, 2.0.
	ContinentLacunarity float64 `yaml:"continent_lacunarity" json:"continent_lacunarity"`
	MountainLacunarity  float64 `yaml:"mountain_lacunarity" json:"mountain_lacunarity"`
	HillsLacunarity     float64 `yaml:"hills_lacunarity" json:"hills_lacunarity"`
	PlainsLacunarity    float64 `yaml:"plains_lacunarity" json:"plains_lacunarity"`
	BadlandsLacunarity  float64 `yaml:"badlands_lacunarity" json:"badlands_lacunarity"`

	MountainsTwist float64 `yaml:"mountains_twist" json:"mountains_twist"`
	HillsTwist     float64 `yaml:"hills_twist" json:"hills_twist"`
	BadlandsTwist  float64 `yaml:"badlands_twist" json:"badlands_twist"`

	SeaLevel   float64 `yaml:"sea_level" json:"sea_level"`
	ShelfLevel float64 `yaml:"shelf_level" json:"shelf_level"`

	// MountainsAmount is the fraction of rough terrain covered by mountains.
	// Hills cover the midpoint between it and 1. Badlands must stay below it.
	MountainsAmount float64 `yaml:"mountains_amount" json:"mountains_amount"`
	BadlandsAmount  float64 `yaml:"badlands_amount" json:"badlands_amount"`

	// TerrainOffset below 1 keeps rough terrain at high elevations; above 2
	// it may appear anywhere.
	TerrainOffset      float64 `yaml:"terrain_offset" json:"terrain_offset"`
	MountainGlaciation float64 `yaml:"mountain_glaciation" json:"mountain_glaciation"`
	RiverDepth         float64 `yaml:"river_depth" json:"river_depth"`
}

func DefaultStyle() Style {
	return Style{
		ContinentFrequency:  0.4,
		ContinentLacunarity: 2.208984375,
		MountainLacunarity:  2.142578125,
		HillsLacunarity:     2.162109375,
		PlainsLacunarity:    2.314453125,
		BadlandsLacunarity:  2.212890625,
		MountainsTwist:      1.0,
		HillsTwist:          1.0,
		BadlandsTwist:       1.0,
		SeaLevel:            0.0,
		ShelfLevel:          -0.375,
		MountainsAmount:     0.5,
		BadlandsAmount:      0.3125,
		TerrainOffset:       1.0,
		MountainGlaciation:  1.375,
		RiverDepth:          0.0234375,
	}
}

func (s Style) HillsAmount() float64 {
	return (1 + s.MountainsAmount) / 2
}

// ContinentHeightScale is the height of base continents above sea level.
func (s Style) ContinentHeightScale() float64 {
	return (1 - s.SeaLevel) / 4
}

func (s Style) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: planet style: %s", graph.ErrConfig, fmt.Sprintf(format, args...))
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"continent_frequency", s.ContinentFrequency},
		{"continent_lacunarity", s.ContinentLacunarity},
		{"mountain_lacunarity", s.MountainLacunarity},
		{"hills_lacunarity", s.HillsLacunarity},
		{"plains_lacunarity", s.PlainsLacunarity},
		{"badlands_lacunarity", s.BadlandsLacunarity},
		{"mountain_glaciation", s.MountainGlaciation},
	} {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return bad("%s must be finite and > 0, got %v", f.name, f.v)
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"mountains_twist", s.MountainsTwist},
		{"hills_twist", s.HillsTwist},
		{"badlands_twist", s.BadlandsTwist},
		{"terrain_offset", s.TerrainOffset},
		{"river_depth", s.RiverDepth},
	} {
		if !(f.v >= 0) || math.IsInf(f.v, 0) {
			return bad("%s must be finite and >= 0, got %v", f.name, f.v)
		}
	}
	if !(s.SeaLevel > -1 && s.SeaLevel < 1) {
		return bad("sea_level must be in (-1,1), got %v", s.SeaLevel)
	}
	// The shelf terrace needs -0.75 < shelf; the classification terrace
	// needs -1 < shelf+sea/2 < 1.
	if !(s.ShelfLevel > -0.75 && s.ShelfLevel < s.SeaLevel) {
		return bad("shelf_level must be in (-0.75, sea_level), got %v", s.ShelfLevel)
	}
	if tt := s.ShelfLevel + s.SeaLevel/2; !(tt > -1 && tt < 1) {
		return bad("shelf_level+sea_level/2 must be in (-1,1), got %v", tt)
	}
	if s.SeaLevel > s.ContinentHeightScale() {
		return bad("sea_level must not exceed the continent height scale (1-sea_level)/4, got %v", s.SeaLevel)
	}
	if !(s.MountainsAmount > 0 && s.MountainsAmount < 1) {
		return bad("mountains_amount must be in (0,1), got %v", s.MountainsAmount)
	}
	if !(s.BadlandsAmount >= 0 && s.BadlandsAmount < s.MountainsAmount) {
		return bad("badlands_amount must be in [0, mountains_amount), got %v", s.BadlandsAmount)
	}
	return nil
}

// Every primitive of the terrain model draws its seed as base+offset. The
// offsets are fixed and pairwise distinct.
type seedSlot int

const (
	seedContinent seedSlot = iota
	seedContinentCarver
	seedContinentWarpCoarse
	seedContinentWarpMid
	seedContinentWarpFine
	seedTerrainTypeWarp
	seedMountainRidge
	seedMountainValley
	seedMountainWarpCoarse
	seedMountainWarpFine
	seedMountainHigh0
	seedMountainHigh1
	seedMountainHighWarp
	seedMountainLow0
	seedMountainLow1
	seedHillsBillow
	seedHillsValley
	seedHillsWarpCoarse
	seedHillsWarpFine
	seedPlains0
	seedPlains1
	seedBadlandsDunes
	seedBadlandsPits
	seedBadlandsCliffs
	seedBadlandsWarpCoarse
	seedBadlandsWarpFine
	seedRiversLarge
	seedRiversSmall
	seedRiversWarp
	seedMountainPeaks
	seedHilltops
	seedShelfTrenches
	seedBadlandsMask
	numSeedSlots
)

var seedOffsets = [numSeedSlots]int64{
	seedContinent:           0,
	seedContinentCarver:     1,
	seedContinentWarpCoarse: 10,
	seedContinentWarpMid:    11,
	seedContinentWarpFine:   12,
	seedTerrainTypeWarp:     20,
	seedMountainRidge:       30,
	seedMountainValley:      31,
	seedMountainWarpCoarse:  32,
	seedMountainWarpFine:    33,
	seedMountainHigh0:       40,
	seedMountainHigh1:       41,
	seedMountainHighWarp:    42,
	seedMountainLow0:        50,
	seedMountainLow1:        51,
	seedHillsBillow:         60,
	seedHillsValley:         61,
	seedHillsWarpCoarse:     62,
	seedHillsWarpFine:       63,
	seedPlains0:             70,
	seedPlains1:             71,
	seedBadlandsDunes:       80,
	seedBadlandsPits:        81,
	seedBadlandsCliffs:      90,
	seedBadlandsWarpCoarse:  91,
	seedBadlandsWarpFine:    92,
	seedRiversLarge:         100,
	seedRiversSmall:         101,
	seedRiversWarp:          102,
	seedMountainPeaks:       110,
	seedHilltops:            120,
	seedShelfTrenches:       130,
	seedBadlandsMask:        140,
}
