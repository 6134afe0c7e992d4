package draw

import "fmt"

// fakeSurface records every call so tests can assert on the paint sequence
// without a real canvas.
type fakeSurface struct {
	width, height float64
	ops           []string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{width: 800, height: 600}
}

func (f *fakeSurface) record(format string, args ...any) {
	f.ops = append(f.ops, fmt.Sprintf(format, args...))
}

func (f *fakeSurface) Size() (float64, float64) { return f.width, f.height }

func (f *fakeSurface) Clear() { f.record("clear") }

func (f *fakeSurface) FillRect(x, y, w, h float64, color string) {
	f.record("fillRect %g %g %g %g %s", x, y, w, h, color)
}

func (f *fakeSurface) FillCircle(cx, cy, r float64, color string) {
	f.record("fillCircle %g %g %g %s", cx, cy, r, color)
}

func (f *fakeSurface) FillText(text string, x, y, size float64, family, color string) {
	f.record("fillText %q %g %g %g %s %s", text, x, y, size, family, color)
}

func (f *fakeSurface) SetStroke(color string, width float64) {
	f.record("setStroke %s %g", color, width)
}

func (f *fakeSurface) SetDash(dashed bool) { f.record("setDash %v", dashed) }

func (f *fakeSurface) StrokeRect(x, y, w, h float64) {
	f.record("strokeRect %g %g %g %g", x, y, w, h)
}

func (f *fakeSurface) StrokeCircle(cx, cy, r float64) {
	f.record("strokeCircle %g %g %g", cx, cy, r)
}

func (f *fakeSurface) StrokeEllipse(cx, cy, rx, ry, rotation float64) {
	f.record("strokeEllipse %g %g %g %g %g", cx, cy, rx, ry, rotation)
}

func (f *fakeSurface) StrokeLine(x1, y1, x2, y2 float64) {
	f.record("strokeLine %g %g %g %g", x1, y1, x2, y2)
}

func (f *fakeSurface) StrokePolyline(points []Point) {
	f.record("strokePolyline %d", len(points))
}

func (f *fakeSurface) count(prefix string) int {
	n := 0
	for _, op := range f.ops {
		if len(op) >= len(prefix) && op[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeSurface) reset() { f.ops = nil }
