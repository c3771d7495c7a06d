package spritekit

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// poseTransform computes the node matrix of a pose in screen space (Y down).
// Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Scale -> Rotate(roll) -> Translate(X, -Y)
//
// Pitch and yaw have no 2D equivalent; they foreshorten the quad along Y and
// X by their cosine, which also mirrors a billboard turned past 90 degrees.
func poseTransform(p Pose) [6]float64 {
	pitch := float64(p.Rotation.X) * math.Pi / 180
	yaw := float64(p.Rotation.Y) * math.Pi / 180
	roll := float64(p.Rotation.Z) * math.Pi / 180

	sx := float64(p.Scale.X) / 100 * math.Cos(yaw)
	sy := float64(p.Scale.Y) / 100 * math.Cos(pitch)

	// sprite space is counter-clockwise positive; screen space is Y down
	sin, cos := math.Sincos(-roll)
	return [6]float64{
		cos * sx,
		sin * sx,
		-sin * sy,
		cos * sy,
		float64(p.Position.X),
		-float64(p.Position.Y),
	}
}

// quadAnchor places a w x h image with its bottom-center on the origin.
func quadAnchor(w, h float64) [6]float64 {
	return [6]float64{1, 0, 0, 1, -w / 2, -h}
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
// Returns false if the matrix is singular.
func invertAffine(m [6]float64) ([6]float64, bool) {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform, false
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
	}, true
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformRect returns the axis-aligned bounds of a w x h rectangle at the
// origin after applying m.
func transformRect(m [6]float64, w, h float64) Rect {
	xs := [4]float64{}
	ys := [4]float64{}
	xs[0], ys[0] = transformPoint(m, 0, 0)
	xs[1], ys[1] = transformPoint(m, w, 0)
	xs[2], ys[2] = transformPoint(m, 0, h)
	xs[3], ys[3] = transformPoint(m, w, h)
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < 4; i++ {
		minX = min(minX, xs[i])
		maxX = max(maxX, xs[i])
		minY = min(minY, ys[i])
		maxY = max(maxY, ys[i])
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// union returns the smallest rectangle containing r and o. An empty r
// yields o.
func (r Rect) union(o Rect) Rect {
	if r.Width == 0 && r.Height == 0 {
		return o
	}
	x0 := min(r.X, o.X)
	y0 := min(r.Y, o.Y)
	x1 := max(r.X+r.Width, o.X+o.Width)
	y1 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
