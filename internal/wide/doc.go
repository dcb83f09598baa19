// Package wide provides SIMD-friendly lane types for batch vertex processing.
//
// The types are fixed-size float32 arrays operated on with simple loops so
// the Go compiler can keep them in registers and vectorize where the target
// allows (SSE2 on amd64, NEON on arm64).
//
// # Lane Types
//
// F32x4: 4 float32 lanes, the register width of SSE2 and NEON.
// F32x2: 2 float32 lanes, the short-vector width of ARM VFP.
//
// # Design Philosophy
//
//   - Use simple loops over fixed-size arrays for auto-vectorization
//   - Avoid unsafe and assembly - rely on compiler optimization
//   - Keep functions small and inlineable
//   - Provide benchmarks to verify the lane kernels against scalar code
//
// # Usage Example
//
//	// x' = m00*x + m01*y + m02*z + m03 for four vertices at once
//	var x, y, z wide.F32x4
//	out := m00.Mul(x).MulAdd(m01, y).MulAdd(m02, z).Add(m03)
package wide
