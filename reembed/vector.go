package reembed

import "math"

// NormalizeVector scales v to unit length and returns the result as a new
// slice. The squared components are summed in float64 so long vectors do
// not lose precision. A zero or empty vector comes back as all zeros.
func NormalizeVector(v []float32) []float32 {
	out := make([]float32, len(v))

	var sum float64
	for _, c := range v {
		sum += float64(c) * float64(c)
	}

	norm := math.Sqrt(sum)
	if norm == 0 {
		return out
	}

	inv := 1 / norm
	for i, c := range v {
		out[i] = float32(float64(c) * inv)
	}
	return out
}
