package pixelnest

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestViewportDefaults(t *testing.T) {
	v := NewViewport()
	if v.Scale != 1 {
		t.Errorf("Scale = %f, want 1", v.Scale)
	}
	if v.OffsetX != 0 || v.OffsetY != 0 {
		t.Errorf("Offset = (%f,%f), want (0,0)", v.OffsetX, v.OffsetY)
	}
}

func TestScreenToWorld(t *testing.T) {
	v := Viewport{OffsetX: 100, OffsetY: 50, Scale: 2}
	wx, wy := v.ScreenToWorld(300, 250)
	if !approxEqual(wx, 100, epsilon) || !approxEqual(wy, 100, epsilon) {
		t.Errorf("ScreenToWorld(300,250) = (%f,%f), want (100,100)", wx, wy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	v := Viewport{OffsetX: -37, OffsetY: 12.5, Scale: 0.7}
	points := [][2]float64{{0, 0}, {640, 480}, {-20, 999}, {13.25, -4}}
	for _, p := range points {
		wx, wy := v.ScreenToWorld(p[0], p[1])
		sx, sy := v.WorldToScreen(wx, wy)
		if !approxEqual(sx, p[0], 1e-9) || !approxEqual(sy, p[1], 1e-9) {
			t.Errorf("roundtrip (%v,%v) -> (%v,%v)", p[0], p[1], sx, sy)
		}
	}
}

func TestPanIsSumOfDeltas(t *testing.T) {
	deltas := [][2]float64{{5, -3}, {12, 7}, {-40, 2}, {0.5, 0.25}, {3, 3}}

	forward := Viewport{Scale: 3}
	for _, d := range deltas {
		forward.Pan(d[0], d[1])
	}
	backward := Viewport{Scale: 0.5}
	for i := len(deltas) - 1; i >= 0; i-- {
		backward.Pan(deltas[i][0], deltas[i][1])
	}

	var sumX, sumY float64
	for _, d := range deltas {
		sumX += d[0]
		sumY += d[1]
	}
	if !approxEqual(forward.OffsetX, sumX, epsilon) || !approxEqual(forward.OffsetY, sumY, epsilon) {
		t.Errorf("forward offset = (%f,%f), want (%f,%f)", forward.OffsetX, forward.OffsetY, sumX, sumY)
	}
	if !approxEqual(backward.OffsetX, sumX, epsilon) || !approxEqual(backward.OffsetY, sumY, epsilon) {
		t.Errorf("backward offset = (%f,%f), want (%f,%f)", backward.OffsetX, backward.OffsetY, sumX, sumY)
	}
}

func TestZoomWheelClamps(t *testing.T) {
	v := NewViewport()
	for i := 0; i < 100; i++ {
		v.ZoomWheel(1)
	}
	if !approxEqual(v.Scale, MinWheelScale, epsilon) {
		t.Errorf("Scale after zooming out = %f, want %f", v.Scale, MinWheelScale)
	}
	for i := 0; i < 100; i++ {
		v.ZoomWheel(-1)
	}
	if !approxEqual(v.Scale, MaxScale, epsilon) {
		t.Errorf("Scale after zooming in = %f, want %f", v.Scale, MaxScale)
	}
}

func TestZoomWheelDirection(t *testing.T) {
	tests := []struct {
		name   string
		deltaY float64
		want   float64
	}{
		{"scroll down zooms out", 120, 0.9},
		{"scroll up zooms in", -120, 1.1},
		{"zero zooms in", 0, 1.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViewport()
			v.ZoomWheel(tt.deltaY)
			if !approxEqual(v.Scale, tt.want, 1e-9) {
				t.Errorf("Scale = %f, want %f", v.Scale, tt.want)
			}
		})
	}
}

func TestZoomButtonsClamp(t *testing.T) {
	v := NewViewport()
	for i := 0; i < 20; i++ {
		v.ZoomOut()
	}
	if !approxEqual(v.Scale, MinButtonScale, epsilon) {
		t.Errorf("Scale = %f, want %f", v.Scale, MinButtonScale)
	}
	for i := 0; i < 40; i++ {
		v.ZoomIn()
	}
	if !approxEqual(v.Scale, MaxScale, epsilon) {
		t.Errorf("Scale = %f, want %f", v.Scale, MaxScale)
	}
}

func TestZoomAnchoredAtOrigin(t *testing.T) {
	v := Viewport{OffsetX: 40, OffsetY: -10, Scale: 1}
	v.ZoomIn()
	if v.OffsetX != 40 || v.OffsetY != -10 {
		t.Errorf("zoom moved offset to (%f,%f)", v.OffsetX, v.OffsetY)
	}
	// The world origin stays put on screen.
	sx, sy := v.WorldToScreen(0, 0)
	if sx != 40 || sy != -10 {
		t.Errorf("WorldToScreen(0,0) = (%f,%f), want (40,-10)", sx, sy)
	}
}

func TestCenterOn(t *testing.T) {
	v := Viewport{OffsetX: 1, OffsetY: 2, Scale: 3}
	v.CenterOn(1024, 768)
	if v.OffsetX != 312 || v.OffsetY != 184 || v.Scale != 1 {
		t.Errorf("CenterOn = %+v, want {312 184 1}", v)
	}
}

func TestViewportGeoMMatchesWorldToScreen(t *testing.T) {
	v := Viewport{OffsetX: 17, OffsetY: -3, Scale: 1.6}
	g := v.GeoM()
	gx, gy := g.Apply(25, 40)
	sx, sy := v.WorldToScreen(25, 40)
	if !approxEqual(gx, sx, 1e-9) || !approxEqual(gy, sy, 1e-9) {
		t.Errorf("GeoM.Apply = (%f,%f), WorldToScreen = (%f,%f)", gx, gy, sx, sy)
	}
}

func TestVisibleBounds(t *testing.T) {
	v := Viewport{OffsetX: 100, OffsetY: 100, Scale: 2}
	b := v.VisibleBounds(800, 600)
	want := Rect{X: -50, Y: -50, Width: 400, Height: 300}
	if b != want {
		t.Errorf("VisibleBounds = %+v, want %+v", b, want)
	}
}
