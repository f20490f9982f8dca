package pixelnest

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates a float64 field. Create one via TweenValue and call
// Update(dt) each frame; the value is written to the field as the tween
// advances.
//
// There is no global animation manager; owners call Update themselves.
type TweenGroup struct {
	tween *gween.Tween
	field *float64
	Done  bool
}

// Update advances the tween by dt seconds and writes the value to the
// target field.
func (g *TweenGroup) Update(dt float32) {
	if g == nil || g.Done {
		return
	}
	val, finished := g.tween.Update(dt)
	*g.field = float64(val)
	g.Done = finished
}

// TweenValue animates *field from its current value to to.
func TweenValue(field *float64, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return &TweenGroup{
		tween: gween.New(float32(*field), float32(to), duration, fn),
		field: field,
	}
}
