// Package meshgen builds procedural skinned meshes for demos and
// benchmarks.
package meshgen

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/deform"
	"github.com/gogpu/deform/internal/vbuf"
)

// Vertex record layout: position, normal, tangent (xyzw), texture
// coordinate.
const (
	Stride   = 48
	UVOffset = 40
)

// Bulge and pinch channel names.
const (
	ChannelBulge = "bulge"
	ChannelPinch = "pinch"
)

// ErrInvalidOptions is returned by NewTube for degenerate options.
var ErrInvalidOptions = errors.New("meshgen: invalid options")

// Options describes a tube along +Y.
type Options struct {
	Rings  int // rings of vertices, at least 2
	Sides  int // vertices per ring, at least 3
	Bones  int // bones in the chain, at least 1
	Radius float32
	Length float32
}

// Tube is a capless cylinder skinned to a chain of bones along its axis,
// with a two-keyframe bulge channel and a single-frame pinch channel.
type Tube struct {
	Options

	Vertices    []byte
	VertexCount int
	Influences  deform.Influences4
	BlendShapes *deform.BlendShapeData

	// Edges index the ring and side lines of the wireframe.
	Edges [][2]int

	inverseBind []deform.Matrix4
}

// NewTube builds a tube.
func NewTube(o Options) (*Tube, error) {
	if o.Rings < 2 || o.Sides < 3 || o.Bones < 1 || o.Bones > math.MaxUint16+1 || o.Radius <= 0 || o.Length <= 0 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidOptions, o)
	}

	t := &Tube{Options: o, VertexCount: o.Rings * o.Sides}
	t.Vertices = make([]byte, t.VertexCount*Stride)
	t.Influences = make(deform.Influences4, t.VertexCount)

	view := vbuf.View{Data: t.Vertices, Stride: Stride}
	for r := 0; r < o.Rings; r++ {
		v := float32(r) / float32(o.Rings-1)
		y := v * o.Length
		for s := 0; s < o.Sides; s++ {
			u := float32(s) / float32(o.Sides)
			theta := 2 * math.Pi * float64(u)
			c, sn := float32(math.Cos(theta)), float32(math.Sin(theta))

			i := t.index(r, s)
			rec := view.Record(i)
			vbuf.PutV3(rec, deform.PackedLayout.Position, deform.Vec3{o.Radius * c, y, o.Radius * sn})
			vbuf.PutV3(rec, deform.PackedLayout.Normal, deform.Vec3{c, 0, sn})
			vbuf.PutV4(rec, deform.PackedLayout.Tangent, deform.Vec4{-sn, 0, c, 1})
			vbuf.PutFloat32(rec, UVOffset, u)
			vbuf.PutFloat32(rec, UVOffset+4, v)

			t.Influences[i] = t.influence(y)

			t.Edges = append(t.Edges, [2]int{i, t.index(r, (s+1)%o.Sides)})
			if r+1 < o.Rings {
				t.Edges = append(t.Edges, [2]int{i, t.index(r+1, s)})
			}
		}
	}
	t.Influences.Normalize()

	seg := o.Length / float32(o.Bones)
	t.inverseBind = make([]deform.Matrix4, o.Bones)
	for b := range t.inverseBind {
		t.inverseBind[b] = deform.Translate(0, -float32(b)*seg, 0)
	}

	t.BlendShapes = t.shapes()
	return t, nil
}

func (t *Tube) index(ring, side int) int {
	return ring*t.Sides + side
}

// influence binds a point at height y to the two bones whose centers
// bracket it, weighted linearly. The spare slots repeat the first bone at
// weight 0.
func (t *Tube) influence(y float32) deform.BoneInfluence4 {
	seg := t.Length / float32(t.Bones)
	s := y/seg - 0.5
	b0 := int(math.Floor(float64(s)))
	f := s - float32(b0)
	switch {
	case b0 < 0:
		b0, f = 0, 0
	case b0 >= t.Bones-1:
		b0, f = t.Bones-1, 0
	}
	b1 := min(b0+1, t.Bones-1)
	return deform.BoneInfluence4{
		Index:  [4]uint16{uint16(b0), uint16(b1), uint16(b0), uint16(b0)},
		Weight: [4]float32{1 - f, f, 0, 0},
	}
}

// falloff is 1 at the middle of the tube and 0 at both ends.
func (t *Tube) falloff(ring int) float32 {
	v := float64(ring) / float64(t.Rings-1)
	return float32(math.Max(0, math.Sin(math.Pi*v)))
}

func (t *Tube) shapes() *deform.BlendShapeData {
	d := &deform.BlendShapeData{}

	// Bulge: half-swollen at 0.5, fully swollen at 1.
	frame := func(amount float32) deform.BlendShape {
		first := len(d.Vertices)
		for r := 1; r < t.Rings-1; r++ {
			k := amount * t.Radius * t.falloff(r)
			if k == 0 {
				continue
			}
			for s := 0; s < t.Sides; s++ {
				n := t.normal(r, s)
				d.Vertices = append(d.Vertices, deform.BlendShapeVertex{
					Index:    uint32(t.index(r, s)),
					Position: n.Scale(k),
				})
			}
		}
		return deform.BlendShape{FirstVertex: uint32(first), VertexCount: uint32(len(d.Vertices) - first)}
	}
	d.Shapes = append(d.Shapes, frame(0.25), frame(0.6))
	d.FullWeights = append(d.FullWeights, 0.5, 1)
	d.Channels = append(d.Channels, deform.BlendShapeChannel{Name: ChannelBulge, FrameIndex: 0, FrameCount: 2})

	// Pinch: the last ring narrows to half its radius.
	first := len(d.Vertices)
	for s := 0; s < t.Sides; s++ {
		n := t.normal(t.Rings-1, s)
		d.Vertices = append(d.Vertices, deform.BlendShapeVertex{
			Index:    uint32(t.index(t.Rings-1, s)),
			Position: n.Scale(-0.5 * t.Radius),
		})
	}
	d.Shapes = append(d.Shapes, deform.BlendShape{FirstVertex: uint32(first), VertexCount: uint32(len(d.Vertices) - first)})
	d.FullWeights = append(d.FullWeights, 1)
	d.Channels = append(d.Channels, deform.BlendShapeChannel{Name: ChannelPinch, FrameIndex: 2, FrameCount: 1})
	return d
}

func (t *Tube) normal(ring, side int) deform.Vec3 {
	rec := t.Vertices[t.index(ring, side)*Stride:]
	return vbuf.V3(rec, deform.PackedLayout.Normal)
}

// Pose writes the skinning palette for a chain bent by bend radians in
// total around Z into dst, which must hold Bones matrices.
func (t *Tube) Pose(dst []deform.Matrix4, bend float32) error {
	seg := t.Length / float32(t.Bones)
	step := deform.RotateAxis(deform.Vec3{0, 0, 1}, bend/float32(t.Bones))
	world := make([]deform.Matrix4, t.Bones)
	for b := range world {
		if b == 0 {
			world[b] = step
			continue
		}
		world[b] = world[b-1].Mul(deform.Translate(0, seg, 0)).Mul(step)
	}
	return deform.SkinPalette(dst, world, t.inverseBind)
}

// Info describes one deformation of the tube into out. A nil out is left
// for a job destination to fill.
func (t *Tube) Info(out []byte, influences deform.Influences, bones []deform.Matrix4, weights []float32) *deform.SkinMeshInfo {
	return &deform.SkinMeshInfo{
		In:           t.Vertices,
		InStride:     Stride,
		Out:          out,
		OutStride:    Stride,
		VertexCount:  t.VertexCount,
		Layout:       deform.PackedLayout,
		SkinNormals:  true,
		SkinTangents: true,
		Normalize:    deform.NormalizeFast,
		Influences:   influences,
		Bones:        bones,
		BlendShapes:  t.BlendShapes,
		BlendWeights: weights,
	}
}

// InfluencesFor returns the influence table reduced to n bones per vertex.
func (t *Tube) InfluencesFor(n int) (deform.Influences, error) {
	switch n {
	case 4:
		return t.Influences, nil
	case 2:
		return t.Influences.Reduce2(), nil
	case 1:
		return t.Influences.Reduce1(), nil
	}
	return nil, fmt.Errorf("%w: %d bones per vertex", ErrInvalidOptions, n)
}

// Positions extracts the positions of count records of stride bytes.
func Positions(buf []byte, stride, count int) []deform.Vec3 {
	view := vbuf.View{Data: buf, Stride: stride}
	out := make([]deform.Vec3, count)
	for i := range out {
		out[i] = vbuf.V3(view.Record(i), deform.PackedLayout.Position)
	}
	return out
}
