// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package skinning implements the linear-blend skinning kernels.
//
// A Job describes one mesh: strided input and output vertex views, the byte
// offsets of the position, normal and tangent attributes, the per-vertex
// bone influences and the bone palette. A Kernel transforms Count vertices
// of the job.
//
// Every backend provides nine variants, one for each combination of
// {1, 2, 4} bones per vertex and {position, position+normal,
// position+normal+tangent}. Each variant is its own instantiation over the
// influence type and an attribute-set marker, and variants are resolved once
// per job through a table. Generic is the reference kernel. The lane
// backends round every product to float32, as Generic does, and produce the
// same bits.
package skinning

import (
	"github.com/gogpu/deform/internal/linear"
	"github.com/gogpu/deform/internal/vbuf"
)

// Job is the lowered form of one skinning request.
//
// Exactly one of Influences1, Influences2 or Influences4 is set. Bone
// indices are trusted: an index outside Bones panics.
type Job struct {
	In  vbuf.View
	Out vbuf.View

	// Count is the number of vertices to transform.
	Count int

	PositionOffset int
	NormalOffset   int
	TangentOffset  int

	Normals   bool
	Tangents  bool
	Normalize NormalizeMode

	Bones []linear.M4

	Influences1 []Influence1
	Influences2 []Influence2
	Influences4 []Influence4
}

// BonesPerVertex returns 1, 2 or 4 depending on which influence slice is set,
// or 0 if none is.
func (j *Job) BonesPerVertex() int {
	switch {
	case j.Influences1 != nil:
		return 1
	case j.Influences2 != nil:
		return 2
	case j.Influences4 != nil:
		return 4
	default:
		return 0
	}
}

// Kernel transforms all vertices of a job.
type Kernel func(j *Job)

// Feature is the set of attributes a kernel variant transforms.
type Feature uint8

const (
	Positions Feature = iota
	PositionsNormals
	PositionsNormalsTangents
)

// FeatureOf maps the normal and tangent flags to a variant feature.
// Tangents without normals have no lane variant and report ok == false.
func FeatureOf(normals, tangents bool) (f Feature, ok bool) {
	switch {
	case tangents && !normals:
		return 0, false
	case tangents:
		return PositionsNormalsTangents, true
	case normals:
		return PositionsNormals, true
	default:
		return Positions, true
	}
}

// variantTable holds one kernel per bones-per-vertex slot (1, 2, 4) and
// feature, indexed [slot][Feature].
type variantTable [3][3]Kernel

func bonesSlot(bonesPerVertex int) int {
	switch bonesPerVertex {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	default:
		return -1
	}
}

// Attribute-set markers. A kernel variant is instantiated over one of them;
// their underlying types differ so every variant is stenciled separately.
type (
	attrP   uint8
	attrPN  uint16
	attrPNT uint32
)

func (attrP) normals() bool   { return false }
func (attrPN) normals() bool  { return true }
func (attrPNT) normals() bool { return true }

func (attrP) tangents() bool   { return false }
func (attrPN) tangents() bool  { return false }
func (attrPNT) tangents() bool { return true }

// attributes is the constraint the kernels are instantiated over, alongside
// the influence type.
type attributes interface {
	attrP | attrPN | attrPNT
	normals() bool
	tangents() bool
}

// influencesOf returns the job's influence slice of type I.
func influencesOf[I influence](j *Job) []I {
	var zero I
	switch any(zero).(type) {
	case Influence1:
		return any(j.Influences1).([]I)
	case Influence2:
		return any(j.Influences2).([]I)
	default:
		return any(j.Influences4).([]I)
	}
}
