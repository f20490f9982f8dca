package pixelnest

import (
	"math"
	"testing"
)

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- itemTransform ---

func TestItemTransformTranslation(t *testing.T) {
	it := &Item{Position: Point{10, 20}, Size: Size{50, 30}}
	assertMatrix(t, "translation", itemTransform(it), [6]float64{1, 0, 0, 1, 10, 20})
}

func TestItemTransformFlip(t *testing.T) {
	it := &Item{Position: Point{0, 0}, Size: Size{40, 10}, FlipX: true}
	// Mirrored about the vertical center line: local x -> 40 - x.
	assertMatrix(t, "flip", itemTransform(it), [6]float64{-1, 0, 0, 1, 40, 0})
}

func TestItemTransformRotation180(t *testing.T) {
	it := &Item{Position: Point{100, 100}, Size: Size{20, 10}, Rotation: 180}
	got := itemTransform(it)
	x, y := transformPoint(got, 0, 0)
	assertNear(t, "x", x, 120)
	assertNear(t, "y", y, 110)
	cx, cy := transformPoint(got, 10, 5)
	assertNear(t, "center x", cx, 110)
	assertNear(t, "center y", cy, 105)
}

func TestItemTransformFlipThenRotate(t *testing.T) {
	// Flip applies in local space before rotation, as CSS
	// "rotate(r) scaleX(-1)" does.
	it := &Item{Size: Size{20, 20}, FlipX: true, Rotation: 90}
	x, y := transformPoint(itemTransform(it), 0, 0)
	// local (0,0) -> centered (-10,-10) -> flipped (10,-10) -> rotated (10,10)
	assertNear(t, "x", x, 20)
	assertNear(t, "y", y, 20)
}

// --- multiplyAffine ---

func TestMultiplyAffineIdentity(t *testing.T) {
	m := [6]float64{2, 0.5, -1, 3, 7, 9}
	assertMatrix(t, "I*m", multiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*I", multiplyAffine(m, identityTransform), m)
}

func TestMultiplyAffineOrder(t *testing.T) {
	scale := [6]float64{2, 0, 0, 2, 0, 0}
	translate := [6]float64{1, 0, 0, 1, 10, 0}
	// scale * translate: translate first, then scale.
	x, _ := transformPoint(multiplyAffine(scale, translate), 1, 0)
	assertNear(t, "scale after translate", x, 22)
	x, _ = transformPoint(multiplyAffine(translate, scale), 1, 0)
	assertNear(t, "translate after scale", x, 12)
}

// --- invertAffine ---

func TestInvertAffineRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		it   Item
	}{
		{"plain", Item{Position: Point{5, 6}, Size: Size{10, 20}}},
		{"rotated", Item{Position: Point{-30, 12}, Size: Size{64, 32}, Rotation: 37}},
		{"flipped rotated", Item{Position: Point{3, 4}, Size: Size{9, 90}, FlipX: true, Rotation: 270}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := itemTransform(&tt.it)
			assertMatrix(t, "m*inv", multiplyAffine(m, invertAffine(m)), identityTransform)
		})
	}
}

func TestInvertAffineSingular(t *testing.T) {
	assertMatrix(t, "singular", invertAffine([6]float64{0, 0, 0, 0, 5, 5}), identityTransform)
}
