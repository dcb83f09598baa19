package vbuf

import (
	"testing"

	"github.com/gogpu/deform/internal/linear"
)

func TestViewRecord(t *testing.T) {
	v := View{Data: make([]byte, 40), Stride: 16}
	r := v.Record(1)
	if len(r) != 16 || cap(r) != 16 {
		t.Errorf("Record(1) len/cap = %d/%d, want 16/16", len(r), cap(r))
	}

	defer func() {
		if recover() == nil {
			t.Error("Record(2) past end did not panic")
		}
	}()
	_ = v.Record(2)
}

func TestAttributeRoundTrip(t *testing.T) {
	b := make([]byte, 32)
	PutV3(b, 0, linear.V3{1, -2, 3.5})
	PutV4(b, 12, linear.V4{0.25, 0, -1, -1})

	if got, want := V3(b, 0), (linear.V3{1, -2, 3.5}); got != want {
		t.Errorf("V3() = %v, want %v", got, want)
	}
	if got, want := V4(b, 12), (linear.V4{0.25, 0, -1, -1}); got != want {
		t.Errorf("V4() = %v, want %v", got, want)
	}
	if got := Float32(b, 4); got != -2 {
		t.Errorf("Float32(4) = %v, want -2", got)
	}
}

func TestPutV3OutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("PutV3 past end did not panic")
		}
	}()
	b := make([]byte, 11)
	PutV3(b, 0, linear.V3{})
}

func TestCopyRecords(t *testing.T) {
	tests := []struct {
		name      string
		srcStride int
		dstStride int
	}{
		{"same stride", 8, 8},
		{"narrower dst", 8, 4},
		{"wider dst", 4, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const count = 3
			src := View{Data: make([]byte, count*tt.srcStride), Stride: tt.srcStride}
			for i := range src.Data {
				src.Data[i] = byte(i + 1)
			}
			dst := View{Data: make([]byte, count*tt.dstStride), Stride: tt.dstStride}
			for i := range dst.Data {
				dst.Data[i] = 0xEE
			}

			CopyRecords(dst, src, count)

			n := min(tt.srcStride, tt.dstStride)
			for i := 0; i < count; i++ {
				d, s := dst.Record(i), src.Record(i)
				for j := 0; j < tt.dstStride; j++ {
					want := byte(0xEE)
					if j < n {
						want = s[j]
					}
					if d[j] != want {
						t.Fatalf("record %d byte %d = %#x, want %#x", i, j, d[j], want)
					}
				}
			}
		})
	}
}
