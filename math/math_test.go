// math/math_test.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestSqrt(t *testing.T) {
	for _, tt := range []struct {
		n    int64
		want int64
	}{
		{0, 0},
		{-5, 0},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{24, 4},
		{25, 5},
		{26, 5},
		{1 << 40, 1 << 20},
		{(1 << 40) - 1, (1 << 20) - 1},
	} {
		if got := Sqrt(tt.n); got != tt.want {
			t.Errorf("Sqrt(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestSqrtExhaustiveSmall(t *testing.T) {
	for n := int64(0); n < 1<<16; n++ {
		got := Sqrt(n)
		if got*got > n || (got+1)*(got+1) <= n {
			t.Fatalf("Sqrt(%d) = %d", n, got)
		}
	}
}

func TestVecLengths(t *testing.T) {
	v := Vec{3072, 4096, 0}
	if got := v.HorizLength(); got != 5120 {
		t.Errorf("HorizLength = %d, want 5120", got)
	}
	if got := v.HorizLengthSq(); got != 5120*5120 {
		t.Errorf("HorizLengthSq = %d, want %d", got, 5120*5120)
	}

	v = Vec{0, 3072, 4096}
	if got := v.Length(); got != 5120 {
		t.Errorf("Length = %d, want 5120", got)
	}
}

func TestVecRotate(t *testing.T) {
	v := Vec{1024, 0, 100}
	for _, tt := range []struct {
		a    Angle
		want Vec
	}{
		{0, Vec{1024, 0, 100}},
		{256, Vec{0, 1024, 100}},
		{512, Vec{-1024, 0, 100}},
		{768, Vec{0, -1024, 100}},
	} {
		if got := v.Rotate(tt.a); got != tt.want {
			t.Errorf("Rotate(%d) = %+v, want %+v", tt.a, got, tt.want)
		}
	}
}

func TestVecDot(t *testing.T) {
	a := Vec{1024, 0, 0}
	if got := a.Dot(Vec{512, 512, 0}); got <= 0 {
		t.Errorf("Dot with forward-ish vector = %d, want positive", got)
	}
	if got := a.Dot(Vec{-512, 512, 0}); got >= 0 {
		t.Errorf("Dot with backward-ish vector = %d, want negative", got)
	}
	if got := a.Dot(Vec{0, 768, 0}); got != 0 {
		t.Errorf("Dot with perpendicular vector = %d, want 0", got)
	}
}

func TestPointOps(t *testing.T) {
	p := Point{1000, 2000, 30}
	q := p.Add(Vec{24, -48, 6})
	if want := (Point{1024, 1952, 36}); q != want {
		t.Errorf("Add = %+v, want %+v", q, want)
	}
	if got := q.Sub(p); got != (Vec{24, -48, 6}) {
		t.Errorf("Sub = %+v", got)
	}
	if got := (Point{0, 0, 0}).HorizDist(Point{3072, 4096, 999}); got != 5120 {
		t.Errorf("HorizDist = %d, want 5120", got)
	}
}

func TestClampSign(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5, 0, 3) = %d", got)
	}
	if got := Clamp(-1, 0, 3); got != 0 {
		t.Errorf("Clamp(-1, 0, 3) = %d", got)
	}
	if got := Clamp(2, 0, 3); got != 2 {
		t.Errorf("Clamp(2, 0, 3) = %d", got)
	}
	if Sign(-7) != -1 || Sign(7) != 1 || Sign(0) != 0 {
		t.Errorf("Sign broken")
	}
	if Abs(Dist(-1234)) != 1234 {
		t.Errorf("Abs broken")
	}
}
