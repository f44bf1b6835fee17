package sampler

import "math"

// Summary describes one sampled elevation set.
type Summary struct {
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	AboveSea float64 `json:"above_sea"`
}

// Stats summarizes values; AboveSea is the fraction strictly above seaLevel.
func Stats(values []float64, seaLevel float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(values), Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	above := 0
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
		if v > seaLevel {
			above++
		}
	}
	s.Mean = sum / float64(len(values))
	s.AboveSea = float64(above) / float64(len(values))
	return s
}
