package pixelnest

import "testing"

func TestAutoSize(t *testing.T) {
	tests := []struct {
		name   string
		native Size
		want   Size
	}{
		{"tiny x4", Size{50, 50}, Size{200, 200}},
		{"small x2", Size{100, 100}, Size{200, 200}},
		{"wide photo capped", Size{800, 400}, Size{400, 200}},
		{"tall photo capped", Size{300, 1200}, Size{100, 400}},
		{"medium unchanged", Size{300, 200}, Size{300, 200}},
		{"one tiny side only x2", Size{40, 100}, Size{80, 200}},
		{"mixed small and large unchanged", Size{60, 300}, Size{60, 300}},
		{"exactly 400 unchanged", Size{400, 400}, Size{400, 400}},
		{"exactly 64 x2", Size{64, 64}, Size{128, 128}},
		{"exactly 128 unchanged", Size{128, 128}, Size{128, 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AutoSize(tt.native); got != tt.want {
				t.Errorf("AutoSize(%v) = %v, want %v", tt.native, got, tt.want)
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{2.5, 3}, {2.49, 2}, {-2.5, -2}, {-2.51, -3}, {0, 0}, {-0.4, 0},
	}
	for _, tt := range tests {
		if got := round(tt.in); got != tt.want {
			t.Errorf("round(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestItemTransformIdentity(t *testing.T) {
	it := &Item{Position: Point{10, 20}, Size: Size{100, 50}}
	x, y := transformPoint(it.Transform(), 0, 0)
	if !approxEqual(x, 10, 1e-9) || !approxEqual(y, 20, 1e-9) {
		t.Errorf("top-left = (%f,%f), want (10,20)", x, y)
	}
	x, y = transformPoint(it.Transform(), 100, 50)
	if !approxEqual(x, 110, 1e-9) || !approxEqual(y, 70, 1e-9) {
		t.Errorf("bottom-right = (%f,%f), want (110,70)", x, y)
	}
}

func TestItemTransformFlipKeepsBounds(t *testing.T) {
	it := &Item{Position: Point{0, 0}, Size: Size{100, 50}, FlipX: true}
	// Local top-left maps to the world top-right when flipped.
	x, y := transformPoint(it.Transform(), 0, 0)
	if !approxEqual(x, 100, 1e-9) || !approxEqual(y, 0, 1e-9) {
		t.Errorf("flipped top-left = (%f,%f), want (100,0)", x, y)
	}
}

func TestItemTransformRotatesAroundCenter(t *testing.T) {
	it := &Item{Position: Point{0, 0}, Size: Size{100, 50}, Rotation: 90}
	cx, cy := transformPoint(it.Transform(), 50, 25)
	if !approxEqual(cx, 50, 1e-9) || !approxEqual(cy, 25, 1e-9) {
		t.Errorf("center moved to (%f,%f)", cx, cy)
	}
	// Clockwise 90: local top-left (-50,-25 from center) lands at (+25,-50).
	x, y := transformPoint(it.Transform(), 0, 0)
	if !approxEqual(x, 75, 1e-9) || !approxEqual(y, -25, 1e-9) {
		t.Errorf("rotated top-left = (%f,%f), want (75,-25)", x, y)
	}
}

func TestItemWorldToLocalRoundtrip(t *testing.T) {
	it := &Item{Position: Point{-30, 12}, Size: Size{64, 32}, Rotation: 33, FlipX: true}
	m := it.Transform()
	for _, p := range [][2]float64{{0, 0}, {64, 32}, {10, 5}} {
		wx, wy := transformPoint(m, p[0], p[1])
		lx, ly := it.WorldToLocal(wx, wy)
		if !approxEqual(lx, p[0], 1e-9) || !approxEqual(ly, p[1], 1e-9) {
			t.Errorf("roundtrip %v -> (%f,%f)", p, lx, ly)
		}
	}
}

func TestItemHitTest(t *testing.T) {
	it := &Item{Position: Point{100, 100}, Size: Size{50, 40}}
	tests := []struct {
		name       string
		wx, wy     float64
		withHandle bool
		want       ItemHandle
	}{
		{"inside body", 120, 120, false, HandleBody},
		{"outside", 90, 90, false, HandleNone},
		{"corner without handle", 150, 140, false, HandleBody},
		{"corner with handle", 150, 140, true, HandleResize},
		{"handle overhang", 160, 150, true, HandleResize},
		{"overhang without handle", 160, 150, false, HandleNone},
		{"body with handle enabled", 110, 110, true, HandleBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := it.HitTest(tt.wx, tt.wy, tt.withHandle); got != tt.want {
				t.Errorf("HitTest(%v,%v,%v) = %d, want %d", tt.wx, tt.wy, tt.withHandle, got, tt.want)
			}
		})
	}
}

func TestItemHitTestRotated(t *testing.T) {
	// A 100x10 bar rotated 90 degrees stands vertically around (50,5).
	it := &Item{Position: Point{0, 0}, Size: Size{100, 10}, Rotation: 90}
	if got := it.HitTest(50, 40, false); got != HandleBody {
		t.Errorf("point on rotated bar = %d, want HandleBody", got)
	}
	if got := it.HitTest(90, 5, false); got != HandleNone {
		t.Errorf("point on unrotated footprint = %d, want HandleNone", got)
	}
}

func TestHitCircleContains(t *testing.T) {
	c := HitCircle{CenterX: 50, CenterY: 50, Radius: 25}
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 50, 50, true},
		{"on circumference", 75, 50, true},
		{"outside", 80, 50, false},
		{"outside diagonal", 70, 70, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("HitCircle.Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestFiltersIdentity(t *testing.T) {
	if !DefaultFilters.IsIdentity() {
		t.Error("DefaultFilters should be identity")
	}
	f := DefaultFilters
	f.Blur = 2
	if f.IsIdentity() {
		t.Error("blurred filters should not be identity")
	}
}
