package draw

// Surface is the drawing backend the renderer paints on. The host supplies
// an implementation bound to its actual canvas; the engine never draws
// directly.
type Surface interface {
	// Size returns the drawable area in canvas units.
	Size() (width, height float64)
	// Clear wipes the whole surface.
	Clear()
	FillRect(x, y, width, height float64, color string)
	FillCircle(cx, cy, r float64, color string)
	FillText(text string, x, y, size float64, family, color string)

	// SetStroke sets the stroke style for subsequent Stroke* calls.
	SetStroke(color string, width float64)
	// SetDash toggles dashed stroking for subsequent Stroke* calls.
	SetDash(dashed bool)
	StrokeRect(x, y, width, height float64)
	StrokeCircle(cx, cy, r float64)
	StrokeEllipse(cx, cy, rx, ry, rotation float64)
	StrokeLine(x1, y1, x2, y2 float64)
	StrokePolyline(points []Point)
}

// Style is the per-client default stroke style shapes fall back to when they
// carry no color or line width of their own.
type Style struct {
	StrokeColor string
	StrokeWidth float64
	Background  string
	FontFamily  string
}

// DefaultStyle mirrors the stock canvas look: white strokes on black.
func DefaultStyle() Style {
	return Style{
		StrokeColor: "rgba(255, 255, 255, 1)",
		StrokeWidth: 5,
		Background:  "rgba(0, 0, 0, 1)",
		FontFamily:  "sans-serif",
	}
}
