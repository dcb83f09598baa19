package wide

import "testing"

var sink4 F32x4
var sink2 F32x2
var sinkF float32

func BenchmarkF32x4_MulAdd(b *testing.B) {
	var acc F32x4
	x := F32x4{1, 2, 3, 4}
	y := F32x4{0.5, 0.5, 0.5, 0.5}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acc = acc.MulAdd(x, y)
	}
	sink4 = acc
}

func BenchmarkF32x4_MulAddScalar(b *testing.B) {
	var acc F32x4
	x := F32x4{1, 2, 3, 4}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acc = acc.MulAddScalar(x, 0.5)
	}
	sink4 = acc
}

func BenchmarkF32x2_MulAdd(b *testing.B) {
	var acc F32x2
	x := F32x2{1, 2}
	y := F32x2{0.5, 0.5}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acc = acc.MulAdd(x, y)
	}
	sink2 = acc
}

// BenchmarkScalar_MulAdd is the scalar baseline for the lane benchmarks.
func BenchmarkScalar_MulAdd(b *testing.B) {
	var acc [4]float32
	x := [4]float32{1, 2, 3, 4}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range acc {
			acc[j] += x[j] * 0.5
		}
	}
	sinkF = acc[0]
}
