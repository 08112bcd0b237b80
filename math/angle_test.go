// math/angle_test.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestAngleNorm(t *testing.T) {
	for _, tt := range []struct {
		a    Angle
		want Angle
	}{
		{0, 0},
		{1023, 1023},
		{1024, 0},
		{1536, 512},
		{-1, 1023},
		{-1024, 0},
		{-1536, 512},
		{4096, 0},
	} {
		if got := tt.a.Norm(); got != tt.want {
			t.Errorf("Norm(%d) = %d, want %d", tt.a, got, tt.want)
		}
	}
}

func TestAngleSignedDelta(t *testing.T) {
	for _, tt := range []struct {
		a, b Angle
		want Angle
	}{
		{0, 0, 0},
		{0, 100, 100},
		{100, 0, -100},
		{1000, 24, 48},
		{24, 1000, -48},
		{0, 512, 512}, // dead opposite resolves positive
		{512, 0, 512},
		{0, 513, -511},
	} {
		if got := tt.a.SignedDelta(tt.b); got != tt.want {
			t.Errorf("SignedDelta(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSinCos(t *testing.T) {
	for _, tt := range []struct {
		a        Angle
		sin, cos int
	}{
		{0, 0, 1024},
		{256, 1024, 0},
		{512, 0, -1024},
		{768, -1024, 0},
	} {
		if got := tt.a.Sin(); got != tt.sin {
			t.Errorf("Sin(%d) = %d, want %d", tt.a, got, tt.sin)
		}
		if got := tt.a.Cos(); got != tt.cos {
			t.Errorf("Cos(%d) = %d, want %d", tt.a, got, tt.cos)
		}
	}

	// 45 degrees: sin and cos agree and are near 1024/sqrt(2).
	if s, c := Angle(128).Sin(), Angle(128).Cos(); s != c || Abs(s-724) > 1 {
		t.Errorf("Sin/Cos(128) = %d, %d; want both near 724", s, c)
	}
}

func TestArcTan2(t *testing.T) {
	for _, tt := range []struct {
		y, x Dist
		want Angle
	}{
		{0, 1024, 0},
		{1024, 0, 256},
		{0, -1024, 512},
		{-1024, 0, 768},
		{1024, 1024, 128},
		{-1024, 1024, 896},
		{0, 0, 0},
	} {
		got := ArcTan2(tt.y, tt.x)
		if d := got.SignedDelta(tt.want); Abs(d) > 1 {
			t.Errorf("ArcTan2(%d, %d) = %d, want %d", tt.y, tt.x, got, tt.want)
		}
	}
}

// ArcTan2 must invert UnitVec over the whole circle or force directions
// drift as aircraft turn.
func TestArcTan2RoundTrip(t *testing.T) {
	for a := Angle(0); a < AngleFull; a++ {
		v := UnitVec(a)
		got := ArcTan2(v.Y, v.X)
		if d := got.SignedDelta(a); Abs(d) > 1 {
			t.Errorf("ArcTan2(UnitVec(%d)) = %d, off by %d", a, got, d)
		}
	}
}

func TestTurnToward(t *testing.T) {
	for _, tt := range []struct {
		cur, want, rate Angle
		result          Angle
	}{
		{0, 100, 30, 30},
		{0, 100, 200, 100},
		{100, 0, 30, 70},
		{1000, 24, 30, 6},   // wraps through zero
		{24, 1000, 30, 1018}, // wraps backward
		{0, 512, 30, 30},    // opposite turns positive
		{0, 0, 30, 0},
	} {
		if got := TurnToward(tt.cur, tt.want, tt.rate); got != tt.result {
			t.Errorf("TurnToward(%d, %d, %d) = %d, want %d",
				tt.cur, tt.want, tt.rate, got, tt.result)
		}
	}
}
