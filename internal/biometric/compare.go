package biometric

import "math"

// Compare returns the match confidence of two vectors in [0,1].
//
// Cosine similarity s in [-1,1] maps to (s+1)/2. Empty input, a length
// mismatch or a zero-norm vector yields 0.0. Products accumulate in float64
// so Compare(v, v) is exactly 1 for any non-zero v and Compare is symmetric.
func Compare(a, b Vector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	s := dot / math.Sqrt(normA*normB)
	// Clamp to [-1, 1] to absorb rounding.
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	return (s + 1) / 2
}
