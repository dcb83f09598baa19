// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package skinning

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/gogpu/deform/internal/linear"
	"github.com/gogpu/deform/internal/vbuf"
)

// Test vertex layout: position, normal, tangent (xyzw), then an opaque
// 8-byte payload standing in for texture coordinates.
const (
	testStride   = 48
	testPos      = 0
	testNormal   = 12
	testTangent  = 24
	testExtra    = 40
	sentinelSize = 32
	sentinelByte = 0xA5
)

// relTol is the agreement required between a lane kernel and Generic.
const relTol = 1e-4

func near(a, b float32) bool {
	scale := max(float32(1), float32(math.Abs(float64(a))), float32(math.Abs(float64(b))))
	return float32(math.Abs(float64(a-b))) <= relTol*scale
}

func randomBones(rng *rand.Rand, n int) []linear.M4 {
	bones := make([]linear.M4, n)
	for i := range bones {
		axis := linear.V3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32() + 0.1}
		s := 0.5 + rng.Float32()
		bones[i] = linear.Translate(rng.Float32()*4-2, rng.Float32()*4-2, rng.Float32()*4-2).
			Mul(linear.RotateAxis(axis, rng.Float32()*2*math.Pi)).
			Mul(linear.Scale(s, s, s))
	}
	return bones
}

// transformPoint and transformVector are the single-bone reference, with
// products rounded in kernel order.
func transformPoint(m *linear.M4, p linear.V3) linear.V3 {
	v := transformVector(m, p)
	return linear.V3{v[0] + m[12], v[1] + m[13], v[2] + m[14]}
}

func transformVector(m *linear.M4, v linear.V3) linear.V3 {
	var r linear.V3
	for row := range r {
		r[row] = float32(m[row]*v[0]) + float32(m[4+row]*v[1]) + float32(m[8+row]*v[2])
	}
	return r
}

func randomVertices(rng *rand.Rand, count int) []byte {
	data := make([]byte, count*testStride)
	for i := 0; i < count; i++ {
		r := data[i*testStride : (i+1)*testStride]
		vbuf.PutV3(r, testPos, linear.V3{rng.Float32()*10 - 5, rng.Float32()*10 - 5, rng.Float32()*10 - 5})
		n := linear.V3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}.Normalize()
		vbuf.PutV3(r, testNormal, n)
		tw := float32(1)
		if rng.Intn(2) == 0 {
			tw = -1
		}
		t := linear.V3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}.Normalize()
		vbuf.PutV4(r, testTangent, linear.V4{t[0], t[1], t[2], tw})
		for k := testExtra; k < testStride; k++ {
			r[k] = byte(rng.Intn(256))
		}
	}
	return data
}

func randomWeights(rng *rand.Rand, w []float32) {
	var sum float32
	for k := range w {
		w[k] = rng.Float32()
		sum += w[k]
	}
	for k := range w {
		w[k] /= sum
	}
}

func setInfluences(j *Job, rng *rand.Rand, bonesPerVertex, count, boneCount int) {
	switch bonesPerVertex {
	case 1:
		inf := make([]Influence1, count)
		for i := range inf {
			inf[i] = Influence1{Index: uint16(rng.Intn(boneCount)), Weight: 1}
		}
		j.Influences1 = inf
	case 2:
		inf := make([]Influence2, count)
		for i := range inf {
			inf[i].Index = [2]uint16{uint16(rng.Intn(boneCount)), uint16(rng.Intn(boneCount))}
			randomWeights(rng, inf[i].Weight[:])
		}
		j.Influences2 = inf
	case 4:
		inf := make([]Influence4, count)
		for i := range inf {
			for k := range inf[i].Index {
				inf[i].Index[k] = uint16(rng.Intn(boneCount))
			}
			randomWeights(rng, inf[i].Weight[:])
		}
		j.Influences4 = inf
	}
}

// newOutput returns an output view of count records followed by sentinel
// bytes in the same backing array.
func newOutput(count int) (vbuf.View, []byte) {
	backing := make([]byte, count*testStride+sentinelSize)
	for i := range backing {
		backing[i] = sentinelByte
	}
	return vbuf.View{Data: backing[:count*testStride], Stride: testStride}, backing
}

func randomJob(seed int64, count, bonesPerVertex int, f Feature, mode NormalizeMode) *Job {
	rng := rand.New(rand.NewSource(seed))
	const boneCount = 6
	j := &Job{
		In:             vbuf.View{Data: randomVertices(rng, count), Stride: testStride},
		Count:          count,
		PositionOffset: testPos,
		NormalOffset:   testNormal,
		TangentOffset:  testTangent,
		Normals:        f >= PositionsNormals,
		Tangents:       f == PositionsNormalsTangents,
		Normalize:      mode,
		Bones:          randomBones(rng, boneCount),
	}
	setInfluences(j, rng, bonesPerVertex, count, boneCount)
	return j
}

// compareOutputs checks every float attribute within relTol and the extra
// payload byte for byte.
func compareOutputs(t *testing.T, got, want []byte, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		g := got[i*testStride : (i+1)*testStride]
		w := want[i*testStride : (i+1)*testStride]
		for off := 0; off < testExtra; off += 4 {
			a, b := vbuf.Float32(g, off), vbuf.Float32(w, off)
			if !near(a, b) {
				t.Fatalf("vertex %d float at byte %d = %v, want %v", i, off, a, b)
			}
		}
		for k := testExtra; k < testStride; k++ {
			if g[k] != w[k] {
				t.Fatalf("vertex %d extra byte %d = %#x, want %#x", i, k, g[k], w[k])
			}
		}
	}
}

// ============================================================================
// Kernel equivalence
// ============================================================================

func TestKernelEquivalence(t *testing.T) {
	counts := []int{1, 2, 3, 4, 5, 7, 8, 9, 17, 64}
	for _, backend := range []Backend{BackendSSE2, BackendNEON, BackendVFP} {
		for _, bones := range []int{1, 2, 4} {
			for f := Positions; f <= PositionsNormalsTangents; f++ {
				for _, mode := range []NormalizeMode{NormalizeNone, NormalizeFast, NormalizeFastest} {
					name := fmt.Sprintf("%s/bones=%d/feature=%d/%s", backend, bones, f, mode)
					t.Run(name, func(t *testing.T) {
						for _, count := range counts {
							seed := int64(count*1000 + bones*10 + int(f))
							ref := randomJob(seed, count, bones, f, mode)
							ref.Out, _ = newOutput(count)
							Generic(ref)

							j := randomJob(seed, count, bones, f, mode)
							j.Out, _ = newOutput(count)
							kernel, used := Select(backend, j)
							if used != backend {
								t.Fatalf("Select() backend = %s, want %s", used, backend)
							}
							kernel(j)

							compareOutputs(t, j.Out.Data, ref.Out.Data, count)
						}
					})
				}
			}
		}
	}
}

func TestKernelsMatchGenericBits(t *testing.T) {
	const count = 13
	for _, backend := range []Backend{BackendSSE2, BackendNEON, BackendVFP} {
		for _, bones := range []int{1, 2, 4} {
			for _, mode := range []NormalizeMode{NormalizeNone, NormalizeFast, NormalizeFastest} {
				seed := int64(bones*100 + int(mode))
				ref := randomJob(seed, count, bones, PositionsNormalsTangents, mode)
				ref.Out, _ = newOutput(count)
				Generic(ref)

				j := randomJob(seed, count, bones, PositionsNormalsTangents, mode)
				j.Out, _ = newOutput(count)
				kernel, _ := Select(backend, j)
				kernel(j)

				if !bytes.Equal(j.Out.Data, ref.Out.Data) {
					t.Errorf("%s/bones=%d/%s: output differs from Generic bit for bit", backend, bones, mode)
				}
			}
		}
	}
}

func TestVariantTables(t *testing.T) {
	for _, backend := range []Backend{BackendSSE2, BackendNEON, BackendVFP} {
		seen := make(map[uintptr]bool)
		tab := table(backend)
		for s := range tab {
			for f := range tab[s] {
				k := tab[s][f]
				if k == nil {
					t.Fatalf("%s: variant [%d][%d] is nil", backend, s, f)
				}
				ptr := reflect.ValueOf(k).Pointer()
				if seen[ptr] {
					t.Errorf("%s: variant [%d][%d] shares its function with another variant", backend, s, f)
				}
				seen[ptr] = true
			}
		}
		if len(seen) != 9 {
			t.Errorf("%s: %d distinct variants, want 9", backend, len(seen))
		}
	}
}

// ============================================================================
// Bounds
// ============================================================================

func TestNoWritePastOutput(t *testing.T) {
	widths := map[Backend]int{
		BackendGeneric: 1,
		BackendSSE2:    sse2Width,
		BackendNEON:    neonWidth,
		BackendVFP:     vfpWidth,
	}
	for backend, width := range widths {
		for _, count := range []int{1, width - 1, width, width + 1} {
			if count == 0 {
				continue
			}
			t.Run(fmt.Sprintf("%s/count=%d", backend, count), func(t *testing.T) {
				j := randomJob(int64(count), count, 4, PositionsNormalsTangents, NormalizeFast)
				var backing []byte
				j.Out, backing = newOutput(count)
				kernel, _ := Select(backend, j)
				kernel(j)

				for k, b := range backing[count*testStride:] {
					if b != sentinelByte {
						t.Fatalf("sentinel byte %d = %#x, want %#x", k, b, sentinelByte)
					}
				}
			})
		}
	}
}

func TestZeroCountIsNoop(t *testing.T) {
	for _, backend := range []Backend{BackendGeneric, BackendSSE2, BackendNEON, BackendVFP} {
		j := randomJob(1, 0, 2, PositionsNormals, NormalizeNone)
		var backing []byte
		j.Out, backing = newOutput(0)
		kernel, _ := Select(backend, j)
		kernel(j)
		for k, b := range backing {
			if b != sentinelByte {
				t.Fatalf("%s: byte %d = %#x, want untouched", backend, k, b)
			}
		}
	}
}

func TestBoneIndexOutOfRangePanics(t *testing.T) {
	j := randomJob(3, 4, 1, Positions, NormalizeNone)
	j.Out, _ = newOutput(4)
	j.Influences1[2].Index = uint16(len(j.Bones))

	defer func() {
		if recover() == nil {
			t.Error("kernel with out-of-range bone index did not panic")
		}
	}()
	Generic(j)
}

// ============================================================================
// Exact properties of the reference kernel
// ============================================================================

func TestSingleBoneIsRigidTransform(t *testing.T) {
	const count = 9
	j := randomJob(7, count, 1, PositionsNormalsTangents, NormalizeNone)
	j.Out, _ = newOutput(count)
	Generic(j)

	for i := 0; i < count; i++ {
		bone := j.Bones[j.Influences1[i].Index]
		in := j.In.Record(i)
		out := j.Out.Record(i)

		want := transformPoint(&bone, vbuf.V3(in, testPos))
		if got := vbuf.V3(out, testPos); got != want {
			t.Errorf("vertex %d position = %v, want %v", i, got, want)
		}
		wantN := transformVector(&bone, vbuf.V3(in, testNormal))
		if got := vbuf.V3(out, testNormal); got != wantN {
			t.Errorf("vertex %d normal = %v, want %v", i, got, wantN)
		}
		if got, want := vbuf.Float32(out, testTangent+12), vbuf.Float32(in, testTangent+12); got != want {
			t.Errorf("vertex %d tangent w = %v, want %v", i, got, want)
		}
	}
}

func TestTwoBoneWeightReducesToSingleBone(t *testing.T) {
	tests := []struct {
		name   string
		weight [2]float32
		pick   int
	}{
		{"w=0 selects second bone", [2]float32{0, 1}, 1},
		{"w=1 selects first bone", [2]float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const count = 5
			two := randomJob(11, count, 2, PositionsNormalsTangents, NormalizeFast)
			two.Out, _ = newOutput(count)
			one := randomJob(11, count, 2, PositionsNormalsTangents, NormalizeFast)
			one.Out, _ = newOutput(count)
			one.Influences1 = make([]Influence1, count)

			for i := range two.Influences2 {
				two.Influences2[i].Weight = tt.weight
				one.Influences1[i] = Influence1{Index: two.Influences2[i].Index[tt.pick], Weight: 1}
			}
			one.Influences2 = nil

			Generic(two)
			Generic(one)

			for i := 0; i < count; i++ {
				for off := 0; off < testExtra; off += 4 {
					a := vbuf.Float32(two.Out.Record(i), off)
					b := vbuf.Float32(one.Out.Record(i), off)
					if a != b {
						t.Fatalf("vertex %d float at byte %d = %v, want %v", i, off, a, b)
					}
				}
			}
		})
	}
}

func TestGenericTangentsWithoutNormals(t *testing.T) {
	const count = 3
	j := randomJob(5, count, 1, Positions, NormalizeNone)
	j.Tangents = true
	j.Out, _ = newOutput(count)

	kernel, used := Select(BackendSSE2, j)
	if used != BackendGeneric {
		t.Fatalf("Select() backend = %s, want generic", used)
	}
	kernel(j)

	for i := 0; i < count; i++ {
		bone := j.Bones[j.Influences1[i].Index]
		in := vbuf.V4(j.In.Record(i), testTangent)
		want := in.WithXYZ(transformVector(&bone, in.XYZ()))
		if got := vbuf.V4(j.Out.Record(i), testTangent); got != want {
			t.Errorf("vertex %d tangent = %v, want %v", i, got, want)
		}
		if got, want := vbuf.V3(j.Out.Record(i), testNormal), vbuf.V3(j.In.Record(i), testNormal); got != want {
			t.Errorf("vertex %d normal = %v, want copied %v", i, got, want)
		}
	}
}

// ============================================================================
// Dispatch
// ============================================================================

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		backend  Backend
		bones    int
		normals  bool
		tangents bool
		want     Backend
	}{
		{"generic requested", BackendGeneric, 4, true, true, BackendGeneric},
		{"sse2 positions", BackendSSE2, 1, false, false, BackendSSE2},
		{"neon normals", BackendNEON, 2, true, false, BackendNEON},
		{"vfp tangents", BackendVFP, 4, true, true, BackendVFP},
		{"tangents without normals", BackendNEON, 2, false, true, BackendGeneric},
		{"no influences", BackendSSE2, 0, false, false, BackendGeneric},
		{"unknown backend", Backend(42), 1, false, false, BackendGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &Job{Normals: tt.normals, Tangents: tt.tangents}
			switch tt.bones {
			case 1:
				j.Influences1 = []Influence1{}
			case 2:
				j.Influences2 = []Influence2{}
			case 4:
				j.Influences4 = []Influence4{}
			}
			kernel, got := Select(tt.backend, j)
			if got != tt.want {
				t.Errorf("Select() backend = %s, want %s", got, tt.want)
			}
			if kernel == nil {
				t.Error("Select() kernel = nil")
			}
		})
	}
}

func TestDetect(t *testing.T) {
	if b := Detect(); !b.Valid() {
		t.Errorf("Detect() = %v, not a valid backend", b)
	}
}

func TestBackendString(t *testing.T) {
	for b, want := range map[Backend]string{
		BackendGeneric: "generic",
		BackendSSE2:    "sse2",
		BackendNEON:    "neon",
		BackendVFP:     "vfp",
		Backend(9):     "unknown",
	} {
		if got := b.String(); got != want {
			t.Errorf("Backend(%d).String() = %q, want %q", b, got, want)
		}
	}
}

// ============================================================================
// Normalization
// ============================================================================

func TestInvLength(t *testing.T) {
	tests := []struct {
		mode   NormalizeMode
		maxErr float64
	}{
		{NormalizeFast, 1e-5},
		{NormalizeFastest, 2e-3},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			for _, x := range []float32{1e-6, 0.01, 0.5, 1, 2, 3.7, 100, 1e6} {
				got := float64(invLength(x, tt.mode))
				want := 1 / math.Sqrt(float64(x))
				if rel := math.Abs(got-want) / want; rel > tt.maxErr {
					t.Errorf("invLength(%v) = %v, want %v (rel err %.2g)", x, got, want, rel)
				}
			}
			if got := invLength(0, tt.mode); got != 0 {
				t.Errorf("invLength(0) = %v, want 0", got)
			}
		})
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	for _, mode := range []NormalizeMode{NormalizeNone, NormalizeFast, NormalizeFastest} {
		if got := normalize(linear.V3{}, mode); got != (linear.V3{}) {
			t.Errorf("normalize(0, %s) = %v, want zero", mode, got)
		}
	}
}
