package planet

import (
	"fmt"

	"planetgen.ai/internal/terrain/graph"
	"planetgen.ai/internal/terrain/noise"
)

type cp = graph.ControlPoint

// Stages names the intermediate nodes of an assembled planet.
type Stages struct {
	Continent     graph.NodeID
	TerrainType   graph.NodeID
	Mountains     graph.NodeID
	Hills         graph.NodeID
	Plains        graph.NodeID
	Badlands      graph.NodeID
	Rivers        graph.NodeID
	Shelf         graph.NodeID
	BaseElevation graph.NodeID
	RiverCarve    graph.NodeID
	Carved        graph.NodeID
	Final         graph.NodeID
}

// Planet is one assembled terrain model. Graph evaluates to the final
// elevation, clamped to [-1,1].
type Planet struct {
	Seed   int64
	Style  Style
	Graph  *graph.Graph
	Stages Stages
}

// Build assembles the terrain model for seed. The graph is deterministic in
// (seed, style, backend).
func Build(seed int64, style Style, backend noise.Backend) (*Planet, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	a := &assembler{b: graph.NewBuilder(backend), s: style, base: seed}
	st := a.assemble()
	g, err := a.b.Build(st.Final)
	if err != nil {
		return nil, fmt.Errorf("planet seed %d: %w", seed, err)
	}
	return &Planet{Seed: seed, Style: style, Graph: g, Stages: st}, nil
}

type assembler struct {
	b    *graph.Builder
	s    Style
	base int64
}

func (a *assembler) seed(slot seedSlot) int64 {
	return a.base + seedOffsets[slot]
}

func (a *assembler) fbm(slot seedSlot, freq, lac float64, octaves int) graph.NodeID {
	return a.b.Fractal(noise.Params{Seed: a.seed(slot), Frequency: freq, Octaves: octaves, Persistence: 0.5, Lacunarity: lac})
}

func (a *assembler) billow(slot seedSlot, freq, lac float64, octaves int) graph.NodeID {
	return a.b.Billow(noise.Params{Seed: a.seed(slot), Frequency: freq, Octaves: octaves, Persistence: 0.5, Lacunarity: lac})
}

func (a *assembler) ridged(slot seedSlot, freq, lac float64, octaves int) graph.NodeID {
	return a.b.Ridged(noise.Params{Seed: a.seed(slot), Frequency: freq, Octaves: octaves, Persistence: noise.RidgedPersistence(lac), Lacunarity: lac})
}

func (a *assembler) warp(src graph.NodeID, slot seedSlot, freq, power float64, roughness int) graph.NodeID {
	return a.b.Turbulence(src, graph.TurbulenceParams{Seed: a.seed(slot), Frequency: freq, Power: power, Roughness: roughness})
}

func (a *assembler) assemble() Stages {
	var st Stages
	st.Continent = a.continent()
	st.TerrainType = a.terrainType(st.Continent)
	st.Mountains = a.mountains()
	st.Hills = a.hills()
	st.Plains = a.plains()
	st.Badlands = a.badlands()
	st.Rivers = a.rivers()
	a.combine(&st)
	return st
}

// continent is the base land mass: high values sit near sea level to mark
// mountain ranges, carved so ranges stay passable, then warped above the
// coast only.
func (a *assembler) continent() graph.NodeID {
	b, s := a.b, a.s
	freq, sea := s.ContinentFrequency, s.SeaLevel

	base := a.fbm(seedContinent, freq, s.ContinentLacunarity, 14)
	ranges := b.Curve(base, []cp{
		{In: -2.0 + sea, Out: -1.625 + sea},
		{In: -1.0 + sea, Out: -1.375 + sea},
		{In: 0.0 + sea, Out: -0.375 + sea},
		{In: 0.0625 + sea, Out: 0.125 + sea},
		{In: 0.125 + sea, Out: 0.250 + sea},
		{In: 0.250 + sea, Out: 1.000 + sea},
		{In: 0.500 + sea, Out: 0.250 + sea},
		{In: 0.750 + sea, Out: 0.250 + sea},
		{In: 1.000 + sea, Out: 0.500 + sea},
		{In: 2.000 + sea, Out: 0.500 + sea},
	})
	carver := b.ScaleBias(a.fbm(seedContinentCarver, freq*4.34375, s.ContinentLacunarity, 11), 0.375, 0.625)
	baseDef := b.Cache(b.Clamp(b.Min(carver, ranges), -1, 1))

	warped := a.warp(baseDef, seedContinentWarpCoarse, freq*15.25, freq/113.75, 13)
	warped = a.warp(warped, seedContinentWarpMid, freq*47.25, freq/433.75, 12)
	warped = a.warp(warped, seedContinentWarpFine, freq*95.25, freq/1019.75, 11)

	return b.Cache(b.Select(baseDef, warped, baseDef, sea-0.0375, sea+1000.0375, 0.0625))
}

// terrainType ranks roughness: -1 is plains or ocean floor, +1 mountains.
// The terrace makes rough terrain rarer.
func (a *assembler) terrainType(continent graph.NodeID) graph.NodeID {
	b, s := a.b, a.s
	freq := s.ContinentFrequency
	w := a.warp(continent, seedTerrainTypeWarp, freq*18.125, freq/20.59375*s.TerrainOffset, 3)
	return b.Cache(b.Terrace(w, []float64{-1, s.ShelfLevel + s.SeaLevel/2, 1}, false))
}

func (a *assembler) mountains() graph.NodeID {
	b, s := a.b, a.s
	lac, twist := s.MountainLacunarity, s.MountainsTwist

	// Base: ridges on high ground, flat floors in one-octave valleys.
	ridges := b.ScaleBias(a.ridged(seedMountainRidge, 1723, lac, 4), 0.5, 0.375)
	valleys := b.ScaleBias(a.ridged(seedMountainValley, 367, lac, 1), -2, -0.5)
	baseDef := b.Blend(b.Constant(-1), ridges, valleys)
	baseDef = a.warp(baseDef, seedMountainWarpCoarse, 1337, 1.0/6730.0*twist, 4)
	baseDef = b.Cache(a.warp(baseDef, seedMountainWarpFine, 21221, 1.0/120157.0*twist, 6))

	high := b.Max(a.ridged(seedMountainHigh0, 2371, lac, 3), a.ridged(seedMountainHigh1, 2341, lac, 3))
	high = b.Cache(a.warp(high, seedMountainHighWarp, 31511, 1.0/180371.0*twist, 4))

	// Multiplying two ridged fields leaves cracks, ridges and flats
	// depending on the sign of each.
	low := b.Cache(b.Multiply(a.ridged(seedMountainLow0, 1381, lac, 8), a.ridged(seedMountainLow1, 1427, lac, 8)))

	lowScaled := b.ScaleBias(low, 0.03125, -0.96875)
	highOnBase := b.Add(b.ScaleBias(high, 0.25, 0.25), baseDef)
	terrain := b.Select(lowScaled, highOnBase, baseDef, -0.5, 999.5, 0.5)
	terrain = b.ScaleBias(terrain, 0.8, 0)
	return b.Cache(b.Exponent(terrain, s.MountainGlaciation))
}

func (a *assembler) hills() graph.NodeID {
	b, s := a.b, a.s
	lac, twist := s.HillsLacunarity, s.HillsTwist

	bumps := b.ScaleBias(a.billow(seedHillsBillow, 1663, lac, 6), 0.5, 0.5)
	valleys := b.ScaleBias(a.ridged(seedHillsValley, 367.5, lac, 1), -2, -1)
	terrain := b.Blend(b.Constant(-1), valleys, bumps)
	terrain = b.Exponent(b.ScaleBias(terrain, 0.75, -0.25), 1.375)
	terrain = a.warp(terrain, seedHillsWarpCoarse, 1531, 1.0/16921.0*twist, 4)
	return b.Cache(a.warp(terrain, seedHillsWarpFine, 21617, 1.0/117529.0*twist, 6))
}

// plains is left unstructured; it is flattened heavily when combined.
func (a *assembler) plains() graph.NodeID {
	b, s := a.b, a.s
	lac := s.PlainsLacunarity
	p0 := b.ScaleBias(a.billow(seedPlains0, 1097.5, lac, 8), 0.5, 0.5)
	p1 := b.ScaleBias(a.billow(seedPlains1, 1097.5, lac, 8), 0.5, 0.5)
	return b.Cache(b.ScaleBias(b.Multiply(p0, p1), 2, -1))
}

// badlands are sand dunes with pits, overtopped by terraced cliffs.
func (a *assembler) badlands() graph.NodeID {
	b, s := a.b, a.s
	lac, twist := s.BadlandsLacunarity, s.BadlandsTwist

	dunes := b.ScaleBias(a.ridged(seedBadlandsDunes, 6163.5, lac, 1), 0.875, 0)
	pits := b.ScaleBias(b.Cellular(noise.CellularParams{
		Seed:      a.seed(seedBadlandsPits),
		Frequency: 16183.25,
		Octaves:   1,
		Distance:  true,
	}), 0.25, 0.25)
	sand := b.Cache(b.Add(dunes, pits))

	cliffs := b.Curve(a.fbm(seedBadlandsCliffs, s.ContinentFrequency*839, lac, 6), []cp{
		{In: -2.000, Out: -2.000},
		{In: -1.000, Out: -1.000},
		{In: -0.000, Out: -0.750},
		{In: 0.500, Out: -0.250},
		{In: 0.625, Out: 0.875},
		{In: 0.750, Out: 1.000},
		{In: 2.000, Out: 1.250},
	})
	cliffs = b.Clamp(cliffs, -999.125, 0.875)
	cliffs = b.Terrace(cliffs, []float64{-1, -0.875, -0.75, -0.5, 0, 1}, false)
	cliffs = a.warp(cliffs, seedBadlandsWarpCoarse, 16111, 1.0/141539.0*twist, 3)
	cliffs = b.Cache(a.warp(cliffs, seedBadlandsWarpFine, 36107, 1.0/211543.0*twist, 3))

	return b.Cache(b.Max(cliffs, b.ScaleBias(sand, 0.25, -0.75)))
}

// rivers is low along channels: ridges of two one-octave fields inverted by
// curves, small rivers cut into large ones, then meandered.
func (a *assembler) rivers() graph.NodeID {
	b, s := a.b, a.s
	lac := s.ContinentLacunarity

	large := b.Curve(a.ridged(seedRiversLarge, 18.75, lac, 1), []cp{
		{In: -2.000, Out: 2.000},
		{In: -1.000, Out: 1.000},
		{In: -0.125, Out: 0.875},
		{In: 0.000, Out: -1.000},
		{In: 1.000, Out: -1.500},
		{In: 2.000, Out: -2.000},
	})
	small := b.Curve(a.ridged(seedRiversSmall, 43.25, lac, 1), []cp{
		{In: -2.000, Out: 2.0000},
		{In: -1.000, Out: 1.5000},
		{In: -0.125, Out: 1.4375},
		{In: 0.000, Out: 0.5000},
		{In: 1.000, Out: 0.2500},
		{In: 2.000, Out: 0.0000},
	})
	return b.Cache(a.warp(b.Min(large, small), seedRiversWarp, 9.25, 1.0/57.75, 6))
}

// combine stamps each terrain kind onto the base continent elevation where
// the classification allows it, then carves rivers near the coast.
func (a *assembler) combine(st *Stages) {
	b, s := a.b, a.s
	sea, heightScale := s.SeaLevel, s.ContinentHeightScale()

	// Peak and hilltop heights vary so not every summit is equal.
	peaks := b.Exponent(a.fbm(seedMountainPeaks, 14.5, s.MountainLacunarity, 6), 1.25)
	mountains := b.Cache(b.Multiply(
		b.ScaleBias(st.Mountains, 0.125, 0.125),
		b.ScaleBias(peaks, 0.25, 1),
	))
	tops := b.Exponent(a.fbm(seedHilltops, 13.5, s.HillsLacunarity, 6), 1.25)
	hills := b.Cache(b.Multiply(
		b.ScaleBias(st.Hills, 0.0625, 0.0625),
		b.ScaleBias(tops, 0.5, 1.5),
	))
	plains := b.Cache(b.ScaleBias(st.Plains, 0.00390625, 0.0078125))
	badlands := b.Cache(b.ScaleBias(st.Badlands, 0.0625, 0.0625))

	// Shelf: terraced coastline with ridged trenches, never above sea level.
	shelf := b.Clamp(b.Terrace(st.Continent, []float64{-1, -0.75, s.ShelfLevel, 1}, false), -0.75, sea)
	trenches := b.ScaleBias(a.ridged(seedShelfTrenches, s.ContinentFrequency*4.375, s.ContinentLacunarity, 16), -0.125, -0.125)
	st.Shelf = b.Cache(b.Add(trenches, shelf))

	st.BaseElevation = b.Cache(b.Select(
		b.ScaleBias(st.Continent, heightScale, 0),
		st.Shelf,
		st.Continent,
		s.ShelfLevel-1000, s.ShelfLevel, 0.03125,
	))
	base := st.BaseElevation

	withPlains := b.Cache(b.Add(base, plains))

	hillsAmount := s.HillsAmount()
	withHills := b.Cache(b.Select(withPlains, b.Add(base, hills), st.TerrainType, 1-hillsAmount, 1001-hillsAmount, 0.25))

	lift := b.Curve(st.Continent, []cp{
		{In: -1, Out: -0.0625},
		{In: 0, Out: 0},
		{In: 1 - s.MountainsAmount, Out: 0.0625},
		{In: 1, Out: 0.25},
	})
	withMountains := b.Cache(b.Select(
		withHills,
		b.Add(b.Add(base, mountains), lift),
		st.TerrainType,
		1-s.MountainsAmount, 1001-s.MountainsAmount, 0.25,
	))

	// Badlands may rise through any terrain but never sink into mountains.
	mask := a.fbm(seedBadlandsMask, 16.5, s.ContinentLacunarity, 2)
	withBadlands := b.Select(withMountains, b.Add(base, badlands), mask, 1-s.BadlandsAmount, 1001-s.BadlandsAmount, 0.25)
	withBadlands = b.Cache(b.Max(withMountains, withBadlands))

	// Channel depth is in [-RiverDepth, 0], deepest on the coast.
	channels := b.Clamp(st.Rivers, -1, 1)
	st.RiverCarve = b.ScaleBias(channels, s.RiverDepth/2, -s.RiverDepth/2)
	carved := b.Add(withBadlands, st.RiverCarve)
	st.Carved = b.Cache(b.Select(withBadlands, carved, withBadlands, sea, heightScale+sea, heightScale-sea))

	st.Final = b.Clamp(st.Carved, -1, 1)
}
