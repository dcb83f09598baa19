package deform

import (
	"sort"

	"github.com/gogpu/deform/internal/skinning"
)

// BoneInfluence1 rigidly binds a vertex to one bone. The weight is kept for
// asset fidelity; skinning treats it as 1.
type BoneInfluence1 = skinning.Influence1

// BoneInfluence2 blends two bones. Weights should sum to 1.
type BoneInfluence2 = skinning.Influence2

// BoneInfluence4 blends four bones. Weights should sum to 1; unused slots
// carry weight 0.
type BoneInfluence4 = skinning.Influence4

// Influences is the per-vertex bone influence table of a mesh.
// It is implemented only by Influences1, Influences2 and Influences4, so the
// number of bones per vertex is always 1, 2 or 4.
type Influences interface {
	// BonesPerVertex returns 1, 2 or 4.
	BonesPerVertex() int

	// Len returns the number of vertices covered.
	Len() int

	// MaxBoneIndex returns the largest bone index referenced by any slot,
	// or -1 for an empty table. Zero-weight slots count: kernels read every
	// slot's bone.
	MaxBoneIndex() int

	lower(j *skinning.Job)
}

// Influences1 is a table of single-bone influences.
type Influences1 []BoneInfluence1

// Influences2 is a table of two-bone influences.
type Influences2 []BoneInfluence2

// Influences4 is a table of four-bone influences.
type Influences4 []BoneInfluence4

func (Influences1) BonesPerVertex() int { return 1 }
func (Influences2) BonesPerVertex() int { return 2 }
func (Influences4) BonesPerVertex() int { return 4 }

func (s Influences1) Len() int { return len(s) }
func (s Influences2) Len() int { return len(s) }
func (s Influences4) Len() int { return len(s) }

func (s Influences1) lower(j *skinning.Job) { j.Influences1 = nonNil(s) }
func (s Influences2) lower(j *skinning.Job) { j.Influences2 = nonNil(s) }
func (s Influences4) lower(j *skinning.Job) { j.Influences4 = nonNil(s) }

// nonNil keeps an empty table distinguishable from an absent one.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (s Influences1) MaxBoneIndex() int {
	m := -1
	for _, in := range s {
		m = max(m, int(in.Index))
	}
	return m
}

func (s Influences2) MaxBoneIndex() int {
	m := -1
	for _, in := range s {
		for _, idx := range in.Index {
			m = max(m, int(idx))
		}
	}
	return m
}

func (s Influences4) MaxBoneIndex() int {
	m := -1
	for _, in := range s {
		for _, idx := range in.Index {
			m = max(m, int(idx))
		}
	}
	return m
}

// Normalize rescales every record so its weights sum to 1.
// Records whose weights sum to zero are bound fully to their first slot.
func (s Influences2) Normalize() {
	for i := range s {
		normalizeWeights(s[i].Weight[:])
	}
}

// Normalize rescales every record so its weights sum to 1.
// Records whose weights sum to zero are bound fully to their first slot.
func (s Influences4) Normalize() {
	for i := range s {
		normalizeWeights(s[i].Weight[:])
	}
}

func normalizeWeights(w []float32) {
	var sum float32
	for _, x := range w {
		sum += x
	}
	if sum <= 0 {
		for k := range w {
			w[k] = 0
		}
		w[0] = 1
		return
	}
	inv := 1 / sum
	for k := range w {
		w[k] *= inv
	}
}

// Reduce2 keeps the two strongest bones of every record and renormalizes,
// producing a cheaper table for lower skinning quality settings.
func (s Influences4) Reduce2() Influences2 {
	out := make(Influences2, len(s))
	for i, in := range s {
		order := strongest(in)
		for k := 0; k < 2; k++ {
			out[i].Index[k] = in.Index[order[k]]
			out[i].Weight[k] = in.Weight[order[k]]
		}
		normalizeWeights(out[i].Weight[:])
	}
	return out
}

// Reduce1 binds every vertex to its strongest bone.
func (s Influences4) Reduce1() Influences1 {
	out := make(Influences1, len(s))
	for i, in := range s {
		k := strongest(in)[0]
		out[i] = BoneInfluence1{Index: in.Index[k], Weight: 1}
	}
	return out
}

// Reduce1 binds every vertex to its strongest bone.
func (s Influences2) Reduce1() Influences1 {
	out := make(Influences1, len(s))
	for i, in := range s {
		k := 0
		if in.Weight[1] > in.Weight[0] {
			k = 1
		}
		out[i] = BoneInfluence1{Index: in.Index[k], Weight: 1}
	}
	return out
}

// strongest returns slot numbers ordered by descending weight; ties keep
// slot order.
func strongest(in BoneInfluence4) [4]int {
	order := [4]int{0, 1, 2, 3}
	sort.SliceStable(order[:], func(a, b int) bool {
		return in.Weight[order[a]] > in.Weight[order[b]]
	})
	return order
}
