package pixelnest

import (
	"math"
	"testing"
)

// --- Padding ---

func TestColorMatrixFilterPadding(t *testing.T) {
	f := NewColorMatrixFilter()
	if f.Padding() != 0 {
		t.Errorf("ColorMatrixFilter Padding() = %d, want 0", f.Padding())
	}
}

func TestBlurFilterPadding(t *testing.T) {
	f := NewBlurFilter(8)
	if f.Padding() != 8 {
		t.Errorf("BlurFilter Padding() = %d, want 8", f.Padding())
	}
}

func TestBlurFilterNegativeRadius(t *testing.T) {
	f := NewBlurFilter(-5)
	if f.Radius != 0 {
		t.Errorf("negative radius should clamp to 0, got %d", f.Radius)
	}
}

func TestShadowFilterPadding(t *testing.T) {
	f := NewShadowFilter(5)
	if f.Padding() != 5+ShadowOffsetY {
		t.Errorf("ShadowFilter Padding() = %d, want %d", f.Padding(), 5+ShadowOffsetY)
	}
	f.SetRadius(-1)
	if f.Padding() != ShadowOffsetY {
		t.Errorf("negative radius Padding() = %d, want %d", f.Padding(), ShadowOffsetY)
	}
}

func TestFilterChainPadding(t *testing.T) {
	chain := []Filter{NewColorMatrixFilter(), NewBlurFilter(3), NewShadowFilter(2)}
	if got := filterChainPadding(chain); got != 3+2+ShadowOffsetY {
		t.Errorf("filterChainPadding = %d", got)
	}
}

func TestBlurPasses(t *testing.T) {
	tests := []struct {
		radius, want int
	}{
		{0, 0}, {-1, 0}, {1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {20, 5},
	}
	for _, tt := range tests {
		if got := blurPasses(tt.radius); got != tt.want {
			t.Errorf("blurPasses(%d) = %d, want %d", tt.radius, got, tt.want)
		}
	}
}

// --- Color matrices ---

func TestColorMatrixFilterIdentity(t *testing.T) {
	f := NewColorMatrixFilter()
	if f.Matrix != identityColorMatrix {
		t.Errorf("new filter matrix = %v, want identity", f.Matrix)
	}
}

func TestCSSColorMatrixDefaultsAreIdentity(t *testing.T) {
	m := cssColorMatrix(DefaultFilters)
	for i := range m {
		if !approxEqual(m[i], identityColorMatrix[i], 1e-12) {
			t.Fatalf("cssColorMatrix(defaults)[%d] = %v, want %v", i, m[i], identityColorMatrix[i])
		}
	}
}

func TestCSSColorMatrixAdjustments(t *testing.T) {
	mid := [4]float64{0.4, 0.6, 0.2, 1}
	tests := []struct {
		name    string
		filters Filters
		in      [4]float64
		want    [4]float64
	}{
		{"brightness halves", Filters{Brightness: 50, Contrast: 100, Saturation: 100}, mid, [4]float64{0.2, 0.3, 0.1, 1}},
		{"brightness clamps", Filters{Brightness: 200, Contrast: 100, Saturation: 100}, mid, [4]float64{0.8, 1, 0.4, 1}},
		{"zero contrast is gray", Filters{Brightness: 100, Contrast: 0, Saturation: 100}, mid, [4]float64{0.5, 0.5, 0.5, 1}},
		{"double contrast", Filters{Brightness: 100, Contrast: 200, Saturation: 100}, mid, [4]float64{0.3, 0.7, 0, 1}},
		{"zero saturation is luminance", Filters{Brightness: 100, Contrast: 100, Saturation: 0}, [4]float64{1, 0, 0, 1}, [4]float64{0.2126, 0.2126, 0.2126, 1}},
		{"alpha untouched", Filters{Brightness: 0, Contrast: 0, Saturation: 0}, [4]float64{1, 1, 1, 0.25}, [4]float64{0.5, 0.5, 0.5, 0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyColorMatrix(cssColorMatrix(tt.filters), tt.in)
			for i := range got {
				if !approxEqual(got[i], tt.want[i], 1e-9) {
					t.Errorf("channel %d = %v, want %v (full %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestCSSColorMatrixOrder(t *testing.T) {
	// Brightness applies before contrast. The other order would give 0.25.
	f := Filters{Brightness: 50, Contrast: 0, Saturation: 100}
	got := applyColorMatrix(cssColorMatrix(f), [4]float64{0, 0, 0, 1})
	if !approxEqual(got[0], 0.5, 1e-9) {
		t.Errorf("red = %v, want 0.5 (brightness then contrast)", got[0])
	}
}

func TestMultiplyColorMatrixIdentity(t *testing.T) {
	m := saturateMatrix(0.3)
	if got := multiplyColorMatrix(identityColorMatrix, m); got != m {
		t.Errorf("I*m = %v, want %v", got, m)
	}
	got := multiplyColorMatrix(m, identityColorMatrix)
	for i := range got {
		if math.Abs(got[i]-m[i]) > 1e-12 {
			t.Fatalf("m*I[%d] = %v, want %v", i, got[i], m[i])
		}
	}
}

func TestMultiplyColorMatrixOffsets(t *testing.T) {
	// contrast(0) maps everything to 0.5; brightness(2) after it gives 1.
	m := multiplyColorMatrix(brightnessMatrix(2), contrastMatrix(0))
	got := applyColorMatrix(m, [4]float64{0.1, 0.9, 0.3, 1})
	for i := 0; i < 3; i++ {
		if !approxEqual(got[i], 1, 1e-9) {
			t.Errorf("channel %d = %v, want 1", i, got[i])
		}
	}
}

// --- Effect chain ---

func TestItemEffectsConfigure(t *testing.T) {
	fx := newItemEffects()
	tests := []struct {
		name string
		item Item
		want []Filter
	}{
		{"plain", Item{Filters: DefaultFilters}, nil},
		{"color only", Item{Filters: Filters{Brightness: 120, Contrast: 100, Saturation: 100}}, []Filter{fx.color}},
		{"blur only", Item{Filters: Filters{Brightness: 100, Contrast: 100, Saturation: 100, Blur: 4}}, []Filter{fx.blur}},
		{"shadow only", Item{Filters: DefaultFilters, Shadow: 5}, []Filter{fx.shadow}},
		{"everything", Item{Filters: Filters{Brightness: 80, Contrast: 90, Saturation: 0, Blur: 2}, Shadow: 5}, []Filter{fx.color, fx.blur, fx.shadow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fx.configure(&tt.item, 1)
			if len(got) != len(tt.want) {
				t.Fatalf("chain len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chain[%d] = %T, want %T", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestItemEffectsScaleRadii(t *testing.T) {
	fx := newItemEffects()
	it := Item{Filters: Filters{Brightness: 100, Contrast: 100, Saturation: 100, Blur: 4}, Shadow: 5}
	fx.configure(&it, 2.5)
	if fx.blur.Radius != 10 {
		t.Errorf("blur radius = %d, want 10", fx.blur.Radius)
	}
	if fx.shadow.blur.Radius != 13 {
		t.Errorf("shadow radius = %d, want 13", fx.shadow.blur.Radius)
	}
	// A tiny scale still blurs by at least a pixel.
	fx.configure(&it, 0.01)
	if fx.blur.Radius != 1 || fx.shadow.blur.Radius != 1 {
		t.Errorf("radii = %d, %d, want 1", fx.blur.Radius, fx.shadow.blur.Radius)
	}
}
