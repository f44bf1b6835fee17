package grid

// SeedFromString weights each byte by a descending power of 27, so earlier
// characters dominate. Arithmetic wraps at 64 bits. Bytes past MaxSeedBytes
// all get weight 1; Options.Validate rejects such seeds.
func SeedFromString(s string) uint64 {
	var v uint64
	for i := 0; i < len(s); i++ {
		v += pow27(256-i-1) * (1 + uint64(s[i]))
	}
	return v
}

func pow27(n int) uint64 {
	r, base := uint64(1), uint64(27)
	for n > 0 {
		if n&1 == 1 {
			r *= base
		}
		base *= base
		n >>= 1
	}
	return r
}
