package draw

import "math"

// hitSlop widens every hit test a little beyond the stroke itself so thin
// shapes stay clickable.
const hitSlop = 2.0

// PointSegmentDistance returns the distance from p to the segment ab:
// the perpendicular distance when the projection of p falls inside the
// segment, otherwise the distance to the nearest endpoint.
func PointSegmentDistance(p, a, b Point) float64 {
	apx := p.X - a.X
	apy := p.Y - a.Y
	abx := b.X - a.X
	aby := b.Y - a.Y

	lenSq := abx*abx + aby*aby
	t := -1.0
	if lenSq != 0 {
		t = (apx*abx + apy*aby) / lenSq
	}

	var cx, cy float64
	switch {
	case t < 0:
		cx, cy = a.X, a.Y
	case t > 1:
		cx, cy = b.X, b.Y
	default:
		cx, cy = a.X+t*abx, a.Y+t*aby
	}

	return math.Hypot(p.X-cx, p.Y-cy)
}

// HitThreshold resolves the stroke threshold used for hit testing a shape.
func HitThreshold(s Shape, defaultWidth float64) float64 {
	lw := s.Common().LineWidth
	if lw == 0 {
		lw = defaultWidth
	}
	return lw/2 + hitSlop
}

func (s *Rect) Bounds() Box {
	x, y := s.X, s.Y
	w, h := s.Width, s.Height
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	return Box{X: x, Y: y, Width: w, Height: h}
}

func (s *Circle) Bounds() Box {
	r := math.Abs(s.Radius)
	return Box{X: s.CenterX - r, Y: s.CenterY - r, Width: 2 * r, Height: 2 * r}
}

func (s *Ellipse) Bounds() Box {
	return Box{
		X:      s.CenterX - s.RadiusX,
		Y:      s.CenterY - s.RadiusY,
		Width:  2 * s.RadiusX,
		Height: 2 * s.RadiusY,
	}
}

func (s *Pencil) Bounds() Box {
	if len(s.Points) == 0 {
		return Box{}
	}
	minX, maxX := s.Points[0].X, s.Points[0].X
	minY, maxY := s.Points[0].Y, s.Points[0].Y
	for _, p := range s.Points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func segmentBounds(fromX, fromY, toX, toY float64) Box {
	minX := math.Min(fromX, toX)
	minY := math.Min(fromY, toY)
	return Box{
		X:      minX,
		Y:      minY,
		Width:  math.Max(fromX, toX) - minX,
		Height: math.Max(fromY, toY) - minY,
	}
}

func (s *Arrow) Bounds() Box { return segmentBounds(s.FromX, s.FromY, s.ToX, s.ToY) }
func (s *Line) Bounds() Box  { return segmentBounds(s.FromX, s.FromY, s.ToX, s.ToY) }

// Bounds estimates the text box from character count and font size. Exact
// metrics belong to the host surface; this approximation matches what the
// hit test and delete affordance need.
func (s *Text) Bounds() Box {
	return Box{
		X:      s.X - 5,
		Y:      s.Y - s.FontSize,
		Width:  float64(len(s.Text))*(s.FontSize*0.6) + 10,
		Height: s.FontSize + 10,
	}
}

// Hit reports whether p lies within threshold of any of the four edges.
func (s *Rect) Hit(p Point, threshold float64) bool {
	b := s.Bounds()
	tl := Point{b.X, b.Y}
	tr := Point{b.X + b.Width, b.Y}
	bl := Point{b.X, b.Y + b.Height}
	br := Point{b.X + b.Width, b.Y + b.Height}

	return PointSegmentDistance(p, tl, tr) <= threshold ||
		PointSegmentDistance(p, tr, br) <= threshold ||
		PointSegmentDistance(p, br, bl) <= threshold ||
		PointSegmentDistance(p, bl, tl) <= threshold
}

func (s *Circle) Hit(p Point, threshold float64) bool {
	d := math.Hypot(p.X-s.CenterX, p.Y-s.CenterY)
	return math.Abs(d-math.Abs(s.Radius)) <= threshold
}

// Hit normalizes the point into the unit circle of the ellipse and compares
// against 1. Normalizing distorts distances, so the threshold is scaled down
// by the smaller radius.
func (s *Ellipse) Hit(p Point, threshold float64) bool {
	if s.RadiusX == 0 || s.RadiusY == 0 {
		return false
	}
	nx := (p.X - s.CenterX) / s.RadiusX
	ny := (p.Y - s.CenterY) / s.RadiusY
	d := math.Hypot(nx, ny)
	return math.Abs(d-1) <= threshold/math.Min(s.RadiusX, s.RadiusY)
}

func (s *Pencil) Hit(p Point, threshold float64) bool {
	for i := 1; i < len(s.Points); i++ {
		if PointSegmentDistance(p, s.Points[i-1], s.Points[i]) <= threshold {
			return true
		}
	}
	return false
}

func (s *Arrow) Hit(p Point, threshold float64) bool {
	return PointSegmentDistance(p, Point{s.FromX, s.FromY}, Point{s.ToX, s.ToY}) <= threshold
}

func (s *Line) Hit(p Point, threshold float64) bool {
	return PointSegmentDistance(p, Point{s.FromX, s.FromY}, Point{s.ToX, s.ToY}) <= threshold
}

func (s *Text) Hit(p Point, threshold float64) bool {
	b := s.Bounds()
	return p.X >= b.X-threshold && p.X <= b.X+b.Width+threshold &&
		p.Y >= b.Y-threshold && p.Y <= b.Y+b.Height+threshold
}

// Anchor is the reference point a drag holds on to: the top-left corner for
// rects and text, the center for circles and ellipses, the path's bounds
// origin for pencils, and the from-endpoint for arrows and lines.
func (s *Rect) Anchor() Point    { return Point{s.X, s.Y} }
func (s *Circle) Anchor() Point  { return Point{s.CenterX, s.CenterY} }
func (s *Ellipse) Anchor() Point { return Point{s.CenterX, s.CenterY} }
func (s *Text) Anchor() Point    { return Point{s.X, s.Y} }
func (s *Arrow) Anchor() Point   { return Point{s.FromX, s.FromY} }
func (s *Line) Anchor() Point    { return Point{s.FromX, s.FromY} }

func (s *Pencil) Anchor() Point {
	b := s.Bounds()
	return Point{b.X, b.Y}
}

// DragOffset returns the offset between the pointer and the shape's anchor,
// captured at drag start so the shape does not snap under the cursor.
func DragOffset(p Point, s Shape) Point {
	a := s.Anchor()
	return Point{X: p.X - a.X, Y: p.Y - a.Y}
}

func (s *Rect) Translate(dx, dy float64) {
	s.X += dx
	s.Y += dy
}

func (s *Circle) Translate(dx, dy float64) {
	s.CenterX += dx
	s.CenterY += dy
}

func (s *Ellipse) Translate(dx, dy float64) {
	s.CenterX += dx
	s.CenterY += dy
}

func (s *Pencil) Translate(dx, dy float64) {
	for i := range s.Points {
		s.Points[i].X += dx
		s.Points[i].Y += dy
	}
}

func (s *Arrow) Translate(dx, dy float64) {
	s.FromX += dx
	s.FromY += dy
	s.ToX += dx
	s.ToY += dy
}

func (s *Line) Translate(dx, dy float64) {
	s.FromX += dx
	s.FromY += dy
	s.ToX += dx
	s.ToY += dy
}

func (s *Text) Translate(dx, dy float64) {
	s.X += dx
	s.Y += dy
}

// FindShapeAtPoint returns the topmost shape hit at p, iterating in reverse
// insertion order so the most recently added of overlapping shapes wins.
func FindShapeAtPoint(shapes []Shape, p Point, defaultWidth float64) Shape {
	for i := len(shapes) - 1; i >= 0; i-- {
		if shapes[i].Hit(p, HitThreshold(shapes[i], defaultWidth)) {
			return shapes[i]
		}
	}
	return nil
}
