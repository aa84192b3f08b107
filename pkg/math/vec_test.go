package math

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	if got := (Vec3{2, 3, 6}).Length(); got != 7 {
		t.Errorf("Vec3.Length() = %v, want 7", got)
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero Vec3.Normalize() = %v, want zero", got)
	}
}

func TestVec3Lerp(t *testing.T) {
	got := Vec3{0, 0, 0}.Lerp(Vec3{10, 20, 30}, 0.5)
	if got != (Vec3{5, 10, 15}) {
		t.Errorf("Vec3.Lerp() = %v, want (5, 10, 15)", got)
	}
}

func TestVec3Slerp(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		t    float32
		want Vec3
	}{
		{"same direction", Vec3{1, 0, 0}, Vec3{3, 0, 0}, 0.5, Vec3{2, 0, 0}},
		{"quarter turn", Vec3{1, 0, 0}, Vec3{0, 1, 0}, 0.5, Vec3{float32(math.Sqrt2 / 2), float32(math.Sqrt2 / 2), 0}},
		{"start", Vec3{1, 0, 0}, Vec3{0, 0, 2}, 0, Vec3{1, 0, 0}},
		{"end", Vec3{1, 0, 0}, Vec3{0, 0, 2}, 1, Vec3{0, 0, 2}},
		{"opposite", Vec3{1, 0, 0}, Vec3{-1, 0, 0}, 0.5, Vec3{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Slerp(tt.b, tt.t); !near(got, tt.want) {
				t.Errorf("Slerp(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.t, got, tt.want)
			}
		})
	}
}

func TestVec3From(t *testing.T) {
	v := Vec3From([]float32{1, 2, 3, 4})
	if v.Array() != [3]float32{1, 2, 3} {
		t.Errorf("Vec3From() = %v", v)
	}
}
