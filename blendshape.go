package deform

import (
	"fmt"

	"github.com/gogpu/deform/internal/vbuf"
)

// BlendWeightEpsilon is the smallest channel weight that has any effect.
// Channels below it are skipped.
const BlendWeightEpsilon = 1e-4

// BlendShapeVertex is a sparse morph offset for one vertex.
type BlendShapeVertex struct {
	Index    uint32
	Position Vec3
	Normal   Vec3
	Tangent  Vec3
}

// BlendShape is one keyframe of a channel: a run of deltas in
// BlendShapeData.Vertices.
type BlendShape struct {
	FirstVertex uint32
	VertexCount uint32
	HasNormals  bool
	HasTangents bool
}

// BlendShapeChannel is a named, weight-sorted sequence of keyframes:
// BlendShapeData.Shapes[FrameIndex:FrameIndex+FrameCount], reached at
// BlendShapeData.FullWeights over the same range.
type BlendShapeChannel struct {
	Name       string
	FrameIndex int
	FrameCount int
}

// BlendShapeData holds the blend-shape tables of a mesh. It is read-only
// during deformation.
type BlendShapeData struct {
	Vertices    []BlendShapeVertex
	Shapes      []BlendShape
	Channels    []BlendShapeChannel
	FullWeights []float32
}

// ChannelIndex returns the index of the channel with the given name, or -1.
func (d *BlendShapeData) ChannelIndex(name string) int {
	for i, ch := range d.Channels {
		if ch.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks the tables for the integrity ApplyBlendShapes assumes:
// every channel has frames, frame weights are positive and non-decreasing,
// and every range stays inside its table.
func (d *BlendShapeData) Validate() error {
	if len(d.FullWeights) != len(d.Shapes) {
		return fmt.Errorf("%w: %d weights for %d shapes", ErrShapeRange, len(d.FullWeights), len(d.Shapes))
	}
	for _, ch := range d.Channels {
		if ch.FrameCount <= 0 {
			return fmt.Errorf("%w: %q", ErrChannelNoFrames, ch.Name)
		}
		if ch.FrameIndex < 0 || ch.FrameIndex+ch.FrameCount > len(d.Shapes) {
			return fmt.Errorf("%w: channel %q frames [%d, %d) of %d", ErrShapeRange, ch.Name,
				ch.FrameIndex, ch.FrameIndex+ch.FrameCount, len(d.Shapes))
		}
		weights := d.FullWeights[ch.FrameIndex : ch.FrameIndex+ch.FrameCount]
		if weights[0] <= 0 {
			return fmt.Errorf("%w: channel %q first frame weight %v", ErrUnsortedFrames, ch.Name, weights[0])
		}
		for i := 1; i < len(weights); i++ {
			if weights[i] < weights[i-1] {
				return fmt.Errorf("%w: channel %q frame %d weight %v after %v", ErrUnsortedFrames, ch.Name,
					i, weights[i], weights[i-1])
			}
		}
	}
	for i, s := range d.Shapes {
		if int(s.FirstVertex)+int(s.VertexCount) > len(d.Vertices) {
			return fmt.Errorf("%w: shape %d vertices [%d, %d) of %d", ErrShapeRange, i,
				s.FirstVertex, s.FirstVertex+s.VertexCount, len(d.Vertices))
		}
	}
	return nil
}

func (d *BlendShapeData) maxVertexIndex() int {
	m := -1
	for _, v := range d.Vertices {
		m = max(m, int(v.Index))
	}
	return m
}

// active reports whether any channel weight reaches BlendWeightEpsilon.
func active(weights []float32) bool {
	for _, w := range weights {
		if w >= BlendWeightEpsilon {
			return true
		}
	}
	return false
}

// ApplyBlendShapes copies info.In into dst (records of info.OutStride
// bytes) and adds the weighted deltas of every channel of info.BlendShapes.
// info.Out is not used.
//
// A channel weight is clamped to at most 1. Weights below
// BlendWeightEpsilon, including negative ones, skip the channel. A weight at
// or below the first keyframe's, or any weight on a single-frame channel,
// scales frame 0 by weight/fullWeight[0]. Otherwise the leftmost keyframe
// pair bracketing the weight is interpolated; weights above the last
// keyframe extrapolate along the last pair. Normal and tangent deltas are
// added only when both the keyframe has them and info skins that attribute.
//
// A channel with no frames panics; BlendShapeData.Validate reports it ahead
// of time.
func ApplyBlendShapes(info *SkinMeshInfo, dst []byte) error {
	if err := info.check(); err != nil {
		return err
	}
	if err := info.checkOut(dst); err != nil {
		return err
	}
	applyBlendShapes(info, vbuf.View{Data: dst[:info.VertexCount*info.OutStride], Stride: info.OutStride})
	return nil
}

func applyBlendShapes(info *SkinMeshInfo, dst vbuf.View) {
	src := vbuf.View{Data: info.In[:info.VertexCount*info.InStride], Stride: info.InStride}
	vbuf.CopyRecords(dst, src, info.VertexCount)

	d := info.BlendShapes
	if d == nil {
		return
	}
	for c, ch := range d.Channels {
		w := min(info.BlendWeights[c], 1)
		if !(w >= BlendWeightEpsilon) {
			continue
		}
		if ch.FrameCount <= 0 {
			panic(fmt.Sprintf("deform: blend shape channel %q has no frames", ch.Name))
		}
		frames := d.Shapes[ch.FrameIndex : ch.FrameIndex+ch.FrameCount]
		weights := d.FullWeights[ch.FrameIndex : ch.FrameIndex+ch.FrameCount]

		if w <= weights[0] || len(frames) == 1 {
			applyFrame(info, dst, d, frames[0], w/weights[0])
			continue
		}

		i := bracket(weights, w)
		lo, hi := weights[i], weights[i+1]
		var rel float32
		if hi != lo {
			rel = (w - lo) / (hi - lo)
		}
		applyFrame(info, dst, d, frames[i], 1-rel)
		applyFrame(info, dst, d, frames[i+1], rel)
	}
}

// bracket returns the first i with weights[i] <= w <= weights[i+1], or the
// last pair when w lies above every keyframe. weights has at least two
// entries and w > weights[0].
func bracket(weights []float32, w float32) int {
	for i := 0; i+1 < len(weights); i++ {
		if weights[i] <= w && w <= weights[i+1] {
			return i
		}
	}
	return len(weights) - 2
}

func applyFrame(info *SkinMeshInfo, dst vbuf.View, d *BlendShapeData, s BlendShape, scale float32) {
	normals := s.HasNormals && info.SkinNormals
	tangents := s.HasTangents && info.SkinTangents
	pos, nrm, tan := info.Layout.Position, info.Layout.Normal, info.Layout.Tangent

	for _, v := range d.Vertices[s.FirstVertex : s.FirstVertex+s.VertexCount] {
		r := dst.Record(int(v.Index))
		vbuf.PutV3(r, pos, vbuf.V3(r, pos).AddScaled(v.Position, scale))
		if normals {
			vbuf.PutV3(r, nrm, vbuf.V3(r, nrm).AddScaled(v.Normal, scale))
		}
		if tangents {
			vbuf.PutV3(r, tan, vbuf.V3(r, tan).AddScaled(v.Tangent, scale))
		}
	}
}
