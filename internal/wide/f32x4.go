package wide

// F32x4 represents 4 float32 values for SIMD-style operations.
// It matches the 128-bit register width of SSE2 and NEON.
//
// Every product is rounded to float32 before it is added, so results do
// not depend on whether the target fuses multiply-add.
type F32x4 [4]float32

// Add performs element-wise addition.
func (v F32x4) Add(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = v[i] + other[i]
	}
	return result
}

// Mul performs element-wise multiplication.
func (v F32x4) Mul(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = float32(v[i] * other[i])
	}
	return result
}

// Scale multiplies every element by s.
func (v F32x4) Scale(s float32) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = float32(v[i] * s)
	}
	return result
}

// MulAdd returns v + a*b element-wise (vmlaq_f32 semantics).
func (v F32x4) MulAdd(a, b F32x4) F32x4 {
	var result F32x4
	for i := range v {
		p := float32(a[i] * b[i])
		result[i] = v[i] + p
	}
	return result
}

// MulAddScalar returns v + a*s element-wise (vmlaq_n_f32 semantics).
func (v F32x4) MulAddScalar(a F32x4, s float32) F32x4 {
	var result F32x4
	for i := range v {
		p := float32(a[i] * s)
		result[i] = v[i] + p
	}
	return result
}
