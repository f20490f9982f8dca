package pixelnest

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// itemTransform computes the local-to-world affine matrix of a placed item.
// Returns [a, b, c, d, tx, ty].
//
// Rotation and flip pivot around the item's center:
//
//	Translate(-w/2, -h/2) -> ScaleX(flip) -> Rotate -> Translate(x + w/2, y + h/2)
func itemTransform(it *Item) [6]float64 {
	hw := float64(it.Size.Width) / 2
	hh := float64(it.Size.Height) / 2

	sx := 1.0
	if it.FlipX {
		sx = -1
	}
	sin, cos := math.Sincos(it.Rotation * math.Pi / 180)

	// After Scale * Translate(-half):
	//   a=sx, b=0, c=0, d=1, tx=-hw*sx, ty=-hh
	preTx := -hw * sx
	preTy := -hh

	// After Rotate:
	a := cos * sx
	b := sin * sx
	c := -sin
	d := cos
	tx := cos*preTx - sin*preTy
	ty := sin*preTx + cos*preTy

	return [6]float64{a, b, c, d,
		tx + float64(it.Position.X) + hw,
		ty + float64(it.Position.Y) + hh,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}
