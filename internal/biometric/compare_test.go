package biometric

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func repeat(v float32, n int) Vector {
	out := make(Vector, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func randomVector(r *rand.Rand, n int) Vector {
	out := make(Vector, n)
	for i := range out {
		out[i] = r.Float32()*2 - 1
	}
	return out
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{name: "both nil", a: nil, b: nil, want: 0},
		{name: "left empty", a: Vector{}, b: Vector{1, 2}, want: 0},
		{name: "right nil", a: Vector{1, 2}, b: nil, want: 0},
		{name: "length mismatch", a: Vector{1, 2, 3}, b: Vector{1, 2}, want: 0},
		{name: "zero norm", a: Vector{0, 0}, b: Vector{1, 1}, want: 0},
		{name: "identical", a: repeat(0.1, 128), b: repeat(0.1, 128), want: 1},
		{name: "opposite", a: Vector{1, 0}, b: Vector{-1, 0}, want: 0},
		{name: "orthogonal", a: Vector{1, 0}, b: Vector{0, 1}, want: 0.5},
		{name: "scaled copy", a: Vector{1, 2, 3}, b: Vector{2, 4, 6}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Compare(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCompareProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	t.Run("self-similarity is maximal", func(t *testing.T) {
		for range 200 {
			v := randomVector(r, 1+r.IntN(256))
			assert.InDelta(t, 1.0, Compare(v, v), 1e-12)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		for range 200 {
			n := 1 + r.IntN(256)
			a, b := randomVector(r, n), randomVector(r, n)
			assert.Equal(t, Compare(a, b), Compare(b, a))
		}
	})

	t.Run("bounded to the unit interval", func(t *testing.T) {
		for range 200 {
			n := 1 + r.IntN(64)
			c := Compare(randomVector(r, n), randomVector(r, n))
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 1.0)
		}
	})
}

func BenchmarkCompare128(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	x, y := randomVector(r, 128), randomVector(r, 128)
	b.ResetTimer()
	for b.Loop() {
		Compare(x, y)
	}
}
