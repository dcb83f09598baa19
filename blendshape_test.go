package deform

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

// bumpShapes lifts vertex 2 of the quad by one unit on Z at full weight.
func bumpShapes() *BlendShapeData {
	return &BlendShapeData{
		Vertices: []BlendShapeVertex{
			{Index: 2, Position: Vec3{0, 0, 1}},
		},
		Shapes:      []BlendShape{{FirstVertex: 0, VertexCount: 1}},
		Channels:    []BlendShapeChannel{{Name: "bump", FrameIndex: 0, FrameCount: 1}},
		FullWeights: []float32{1},
	}
}

// stepShapes has one channel with keyframes at 0.2 and 0.8 moving vertex 0
// on X by 1 and 3 units. The first frame also bends the normal.
func stepShapes() *BlendShapeData {
	return &BlendShapeData{
		Vertices: []BlendShapeVertex{
			{Index: 0, Position: Vec3{1, 0, 0}, Normal: Vec3{1, 0, 0}},
			{Index: 0, Position: Vec3{3, 0, 0}},
		},
		Shapes: []BlendShape{
			{FirstVertex: 0, VertexCount: 1, HasNormals: true},
			{FirstVertex: 1, VertexCount: 1},
		},
		Channels:    []BlendShapeChannel{{Name: "step", FrameIndex: 0, FrameCount: 2}},
		FullWeights: []float32{0.2, 0.8},
	}
}

func blendInfo(t *testing.T, d *BlendShapeData, weights ...float32) *SkinMeshInfo {
	t.Helper()
	info := quadInfo(t)
	info.Influences = nil
	info.Bones = nil
	info.BlendShapes = d
	info.BlendWeights = weights
	if err := info.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	return info
}

func blendPosition(t *testing.T, info *SkinMeshInfo, vertex int) Vec3 {
	t.Helper()
	dst := make([]byte, info.VertexCount*info.OutStride)
	if err := ApplyBlendShapes(info, dst); err != nil {
		t.Fatalf("ApplyBlendShapes() = %v", err)
	}
	return positionAt(info, dst, vertex)
}

// ===========================================================================
// Weight evaluation
// ===========================================================================

func TestApplyBlendShapesBelowEpsilonIsCopy(t *testing.T) {
	for _, w := range []float32{0, BlendWeightEpsilon / 2, -1, float32(math.NaN())} {
		info := blendInfo(t, bumpShapes(), w)
		dst := make([]byte, len(info.In))
		if err := ApplyBlendShapes(info, dst); err != nil {
			t.Fatalf("ApplyBlendShapes() = %v", err)
		}
		if !bytes.Equal(dst, info.In) {
			t.Errorf("weight %v: output differs from input", w)
		}
	}
}

func TestApplyBlendShapesSingleFrame(t *testing.T) {
	tests := []struct {
		weight float32
		wantZ  float32
	}{
		{1, 1},
		{0.5, 0.5},
		{0.25, 0.25},
		{2, 1}, // clamped
	}
	for _, tt := range tests {
		info := blendInfo(t, bumpShapes(), tt.weight)
		if got := blendPosition(t, info, 2); !nearV3(got, Vec3{1, 1, tt.wantZ}) {
			t.Errorf("weight %v: vertex 2 = %v, want (1,1,%v)", tt.weight, got, tt.wantZ)
		}
	}
}

func TestApplyBlendShapesKeyframes(t *testing.T) {
	tests := []struct {
		name   string
		weight float32
		wantX  float32
	}{
		{"below first frame", 0.1, 0.5},
		{"at first frame", 0.2, 1},
		{"midway", 0.5, 2},
		{"at last frame", 0.8, 3},
		{"extrapolated", 1, 3 + 2*(0.2/0.6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := blendInfo(t, stepShapes(), tt.weight)
			if got := blendPosition(t, info, 0); !nearV3(got, Vec3{tt.wantX, 0, 0}) {
				t.Errorf("vertex 0 = %v, want (%v,0,0)", got, tt.wantX)
			}
		})
	}
}

func TestApplyBlendShapesFirstFrameExact(t *testing.T) {
	info := blendInfo(t, stepShapes(), 0.2)
	if got := blendPosition(t, info, 0); got != (Vec3{1, 0, 0}) {
		t.Errorf("vertex 0 = %v, want exactly (1,0,0)", got)
	}
}

func TestApplyBlendShapesEqualWeightFrames(t *testing.T) {
	d := stepShapes()
	d.FullWeights = []float32{0.5, 0.5}
	info := blendInfo(t, d, 0.7)
	// The pair has no span: the lower frame applies fully.
	if got := blendPosition(t, info, 0); !nearV3(got, Vec3{1, 0, 0}) {
		t.Errorf("vertex 0 = %v, want (1,0,0)", got)
	}
}

func TestApplyBlendShapesNormals(t *testing.T) {
	info := blendInfo(t, stepShapes(), 0.2)
	dst := make([]byte, len(info.In))
	if err := ApplyBlendShapes(info, dst); err != nil {
		t.Fatalf("ApplyBlendShapes() = %v", err)
	}
	if got := positionAt(info, dst[PackedLayout.Normal:], 0); !nearV3(got, Vec3{1, 0, 1}) {
		t.Errorf("normal = %v, want (1,0,1)", got)
	}

	info.SkinNormals = false
	if err := ApplyBlendShapes(info, dst); err != nil {
		t.Fatalf("ApplyBlendShapes() = %v", err)
	}
	if got := positionAt(info, dst[PackedLayout.Normal:], 0); got != (Vec3{0, 0, 1}) {
		t.Errorf("normal with SkinNormals off = %v, want (0,0,1)", got)
	}
}

func TestApplyBlendShapesChannelsAccumulate(t *testing.T) {
	d := bumpShapes()
	d.Vertices = append(d.Vertices, BlendShapeVertex{Index: 2, Position: Vec3{0, 0, 2}})
	d.Shapes = append(d.Shapes, BlendShape{FirstVertex: 1, VertexCount: 1})
	d.Channels = append(d.Channels, BlendShapeChannel{Name: "lift", FrameIndex: 1, FrameCount: 1})
	d.FullWeights = append(d.FullWeights, 1)

	info := blendInfo(t, d, 0.5, 0.5)
	if got := blendPosition(t, info, 2); !nearV3(got, Vec3{1, 1, 1.5}) {
		t.Errorf("vertex 2 = %v, want (1,1,1.5)", got)
	}
}

func TestApplyBlendShapesNoFramesPanics(t *testing.T) {
	info := quadInfo(t)
	info.Influences, info.Bones = nil, nil
	info.BlendShapes = &BlendShapeData{
		Channels: []BlendShapeChannel{{Name: "empty"}},
	}
	info.BlendWeights = []float32{1}

	defer func() {
		if recover() == nil {
			t.Error("ApplyBlendShapes() with a frameless channel did not panic")
		}
	}()
	_ = ApplyBlendShapes(info, make([]byte, len(info.In)))
}

func TestApplyBlendShapesShortDestination(t *testing.T) {
	info := blendInfo(t, bumpShapes(), 1)
	if err := ApplyBlendShapes(info, make([]byte, quadStride)); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("ApplyBlendShapes() = %v, want ErrBufferTooSmall", err)
	}
}

func TestApplyBlendShapesIgnoresOut(t *testing.T) {
	info := blendInfo(t, bumpShapes(), 1)
	info.Out = nil
	dst := make([]byte, info.VertexCount*info.OutStride)
	if err := ApplyBlendShapes(info, dst); err != nil {
		t.Fatalf("ApplyBlendShapes() with nil Out = %v, want nil", err)
	}
	if got := positionAt(info, dst, 2); !nearV3(got, Vec3{1, 1, 1}) {
		t.Errorf("vertex 2 = %v, want (1, 1, 1)", got)
	}
}

// ===========================================================================
// Tables
// ===========================================================================

func TestChannelIndex(t *testing.T) {
	d := stepShapes()
	if got := d.ChannelIndex("step"); got != 0 {
		t.Errorf("ChannelIndex(step) = %d, want 0", got)
	}
	if got := d.ChannelIndex("missing"); got != -1 {
		t.Errorf("ChannelIndex(missing) = %d, want -1", got)
	}
}

func TestBlendShapeDataValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*BlendShapeData)
		want   error
	}{
		{"valid", func(*BlendShapeData) {}, nil},
		{"no frames", func(d *BlendShapeData) { d.Channels[0].FrameCount = 0 }, ErrChannelNoFrames},
		{"frames past table", func(d *BlendShapeData) { d.Channels[0].FrameIndex = 1 }, ErrShapeRange},
		{"weights length", func(d *BlendShapeData) { d.FullWeights = d.FullWeights[:1] }, ErrShapeRange},
		{"unsorted", func(d *BlendShapeData) { d.FullWeights = []float32{0.8, 0.2} }, ErrUnsortedFrames},
		{"zero first weight", func(d *BlendShapeData) { d.FullWeights[0] = 0 }, ErrUnsortedFrames},
		{"vertices past table", func(d *BlendShapeData) { d.Shapes[1].VertexCount = 2 }, ErrShapeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := stepShapes()
			tt.modify(d)
			err := d.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}
