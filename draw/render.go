package draw

import "math"

const (
	// Arrow heads keep a fixed proportion to the stroke so they read the
	// same on short and long arrows.
	arrowHeadScale = 3
	arrowHeadAngle = math.Pi / 8

	deleteButtonRadius = 10
	deleteButtonPad    = 8
	selectionPad       = 4
)

// Render repaints the surface from scratch: clear, background, then every
// shape in list order so later shapes stack on top. Selected shapes get a
// dashed outline and a delete affordance. Shapes are never mutated.
func Render(surface Surface, shapes []Shape, defaults Style) {
	w, h := surface.Size()
	surface.Clear()
	surface.FillRect(0, 0, w, h, defaults.Background)

	for _, s := range shapes {
		drawShape(surface, s, defaults)
		if s.Common().Selected {
			drawSelection(surface, s)
		}
	}
}

func effectiveStroke(s Shape, defaults Style) (string, float64) {
	color := s.Common().Color
	if color == "" {
		color = defaults.StrokeColor
	}
	width := s.Common().LineWidth
	if width == 0 {
		width = defaults.StrokeWidth
	}
	return color, width
}

func drawShape(surface Surface, s Shape, defaults Style) {
	color, width := effectiveStroke(s, defaults)
	surface.SetStroke(color, width)

	switch v := s.(type) {
	case *Rect:
		surface.StrokeRect(v.X, v.Y, v.Width, v.Height)
	case *Circle:
		surface.StrokeCircle(v.CenterX, v.CenterY, math.Abs(v.Radius))
	case *Ellipse:
		surface.StrokeEllipse(v.CenterX, v.CenterY, v.RadiusX, v.RadiusY, v.Rotation)
	case *Pencil:
		// a single point has no segment to stroke
		if len(v.Points) >= 2 {
			surface.StrokePolyline(v.Points)
		}
	case *Arrow:
		drawArrow(surface, v.FromX, v.FromY, v.ToX, v.ToY, width)
	case *Line:
		surface.StrokeLine(v.FromX, v.FromY, v.ToX, v.ToY)
	case *Text:
		family := v.FontFamily
		if family == "" {
			family = defaults.FontFamily
		}
		surface.FillText(v.Text, v.X, v.Y, v.FontSize, family, color)
	}
}

// drawArrow strokes the shaft plus two head segments meeting at the tip.
func drawArrow(surface Surface, fromX, fromY, toX, toY, strokeWidth float64) {
	surface.StrokeLine(fromX, fromY, toX, toY)

	headLen := strokeWidth * arrowHeadScale
	shaft := math.Atan2(toY-fromY, toX-fromX)

	surface.StrokeLine(toX, toY,
		toX-headLen*math.Cos(shaft-arrowHeadAngle),
		toY-headLen*math.Sin(shaft-arrowHeadAngle))
	surface.StrokeLine(toX, toY,
		toX-headLen*math.Cos(shaft+arrowHeadAngle),
		toY-headLen*math.Sin(shaft+arrowHeadAngle))
}

func drawSelection(surface Surface, s Shape) {
	b := s.Bounds()

	surface.SetStroke("#00ff00", 1)
	surface.SetDash(true)
	surface.StrokeRect(
		b.X-selectionPad, b.Y-selectionPad,
		b.Width+2*selectionPad, b.Height+2*selectionPad)
	surface.SetDash(false)

	c := DeleteButtonCenter(s)
	surface.FillCircle(c.X, c.Y, deleteButtonRadius, "red")
	surface.SetStroke("white", 2)
	surface.StrokeLine(c.X-5, c.Y-5, c.X+5, c.Y+5)
	surface.StrokeLine(c.X+5, c.Y-5, c.X-5, c.Y+5)
}

// DeleteButtonCenter positions the delete affordance just outside the
// shape's bounds at the top-right corner.
func DeleteButtonCenter(s Shape) Point {
	b := s.Bounds()
	return Point{X: b.X + b.Width + deleteButtonPad, Y: b.Y - deleteButtonPad}
}

// HitDeleteButton reports whether p lands on the delete affordance of s.
func HitDeleteButton(p Point, s Shape) bool {
	c := DeleteButtonCenter(s)
	return math.Hypot(p.X-c.X, p.Y-c.Y) <= deleteButtonRadius
}
