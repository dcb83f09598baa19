package wide

// F32x2 represents 2 float32 values, the short-vector length used by ARM VFP.
type F32x2 [2]float32

// Add performs element-wise addition.
func (v F32x2) Add(other F32x2) F32x2 {
	return F32x2{v[0] + other[0], v[1] + other[1]}
}

// Mul performs element-wise multiplication.
func (v F32x2) Mul(other F32x2) F32x2 {
	return F32x2{float32(v[0] * other[0]), float32(v[1] * other[1])}
}

// MulAdd returns v + a*b element-wise.
func (v F32x2) MulAdd(a, b F32x2) F32x2 {
	p0 := float32(a[0] * b[0])
	p1 := float32(a[1] * b[1])
	return F32x2{v[0] + p0, v[1] + p1}
}
