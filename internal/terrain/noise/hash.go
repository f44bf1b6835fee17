package noise

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// DeriveSeed returns the seed of an independent stream (an octave, a warp
// axis) of a primitive seeded with seed. Streams of different primitives do
// not alias the way seed+octave would.
func DeriveSeed(seed int64, stream uint64) int64 {
	return int64(mix64(uint64(seed) ^ mix64(stream+1)))
}

// Hash3 hashes an integer lattice cell.
func Hash3(seed int64, x, y, z int64) uint64 {
	v := uint64(seed) ^ (uint64(x) * 0x9e3779b97f4a7c15) ^ (uint64(y) * 0xc2b2ae3d27d4eb4f) ^ (uint64(z) * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// unit maps a hash to [0,1).
func unit(h uint64) float64 {
	return float64(h>>11) / (1 << 53)
}
