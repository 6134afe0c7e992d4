package draw

import (
	"context"
	"log"
	"math"
	"strings"
	"time"
)

// Tool selects how pointer events are interpreted.
type Tool string

const (
	ToolPointer Tool = "pointer"
	ToolRect    Tool = "rect"
	ToolCircle  Tool = "circle"
	ToolEllipse Tool = "ellipse"
	ToolLine    Tool = "line"
	ToolArrow   Tool = "arrow"
	ToolPencil  Tool = "pencil"
	ToolEraser  Tool = "eraser"
	ToolText    Tool = "text"
)

const (
	// Pointer moves are throttled to ~30 Hz; moves inside the interval are
	// dropped, not queued.
	frameInterval = time.Second / 30

	// minDragDistance suppresses degenerate zero-length lines and arrows.
	minDragDistance = 5

	defaultFontSize = 16
)

// Sender pushes a committed shape to the room relay.
type Sender interface {
	SendShape(roomID string, s Shape) error
}

// ShapeStore is the persistence side-channel for deletes: explicit deletes
// and the delete-half of a move go through it.
type ShapeStore interface {
	DeleteShape(ctx context.Context, id string) error
}

// TextEditor is the host UI hook that opens an inline editor when the text
// tool is used; the engine commits the shape later via CommitText.
type TextEditor interface {
	OpenTextEditor(at Point)
}

// Game is the client-local interaction engine: it owns the in-memory shape
// list, the active tool, and all pointer handling. It is single-threaded by
// contract: pointer events and remote arrivals must be delivered from the
// same event loop.
type Game struct {
	surface Surface
	sender  Sender
	store   ShapeStore
	textEd  TextEditor
	roomID  string

	shapes []Shape
	tool   Tool
	style  Style

	clicked        bool
	startX, startY float64
	pencil         *Pencil
	dragging       bool
	dragOffset     Point

	composing  bool
	textAnchor Point
	fontSize   float64

	lastFrame time.Time
	now       func() time.Time
}

// NewGame builds an engine bound to a surface, a relay sender and the
// persistence side-channel for one room.
func NewGame(surface Surface, sender Sender, store ShapeStore, roomID string) *Game {
	return &Game{
		surface:  surface,
		sender:   sender,
		store:    store,
		roomID:   roomID,
		tool:     ToolPointer,
		style:    DefaultStyle(),
		fontSize: defaultFontSize,
		now:      time.Now,
	}
}

// Hydrate replaces the shape list with the replayed mutation log, which must
// already be ordered oldest-first so paint order matches creation order.
func (g *Game) Hydrate(shapes []Shape) {
	g.shapes = shapes
	g.render()
}

// SetTool switches the active tool, cleanly aborting any gesture in
// progress without emitting a partial shape.
func (g *Game) SetTool(tool Tool) {
	g.clicked = false
	g.dragging = false
	g.pencil = nil
	g.composing = false
	g.tool = tool
}

func (g *Game) Tool() Tool { return g.tool }

func (g *Game) SetStrokeColor(color string) { g.style.StrokeColor = color }

func (g *Game) SetStrokeSize(size float64) { g.style.StrokeWidth = size }

func (g *Game) SetTextEditor(ed TextEditor) { g.textEd = ed }

// Shapes exposes the committed shape list in paint order.
func (g *Game) Shapes() []Shape { return g.shapes }

// Selected returns the currently selected shape, if any.
func (g *Game) Selected() Shape {
	for _, s := range g.shapes {
		if s.Common().Selected {
			return s
		}
	}
	return nil
}

// PointerDown starts a gesture according to the active tool.
func (g *Game) PointerDown(x, y float64) {
	p := Point{X: x, Y: y}

	switch g.tool {
	case ToolPointer:
		if sel := g.Selected(); sel != nil && HitDeleteButton(p, sel) {
			g.deleteShape(sel)
			return
		}
		if hit := FindShapeAtPoint(g.shapes, p, g.style.StrokeWidth); hit != nil {
			for _, s := range g.shapes {
				s.Common().Selected = s == hit
			}
			g.dragging = true
			g.dragOffset = DragOffset(p, hit)
		} else {
			g.clearSelection()
		}
		g.render()

	case ToolEraser:
		if hit := FindShapeAtPoint(g.shapes, p, g.style.StrokeWidth); hit != nil {
			g.deleteShape(hit)
		}

	case ToolPencil:
		g.clearSelection()
		g.pencil = &Pencil{
			Attrs:  Attrs{Color: g.style.StrokeColor, LineWidth: g.style.StrokeWidth},
			Points: []Point{p},
		}
		g.clicked = true

	case ToolText:
		g.clearSelection()
		g.textAnchor = p
		g.composing = true
		if g.textEd != nil {
			g.textEd.OpenTextEditor(p)
		}

	default:
		g.clearSelection()
		g.startX, g.startY = x, y
		g.clicked = true
		g.render()
	}
}

// PointerMove updates the drag or the in-progress preview. Calls arriving
// faster than the frame interval are dropped.
func (g *Game) PointerMove(x, y float64) {
	now := g.now()
	if now.Sub(g.lastFrame) < frameInterval {
		return
	}
	g.lastFrame = now

	if g.tool == ToolPointer && g.dragging {
		sel := g.Selected()
		if sel == nil {
			g.dragging = false
			return
		}
		a := sel.Anchor()
		sel.Translate(x-g.dragOffset.X-a.X, y-g.dragOffset.Y-a.Y)
		g.render()
		return
	}

	if !g.clicked {
		return
	}

	if g.tool == ToolPencil && g.pencil != nil {
		g.pencil.Points = append(g.pencil.Points, Point{X: x, Y: y})
		g.render()
		drawShape(g.surface, g.pencil, g.style)
		return
	}

	g.render()
	if preview := g.buildShape(x, y); preview != nil {
		drawShape(g.surface, preview, g.style)
	}
}

// PointerUp ends the gesture: a drag commits as delete-old-id plus
// insert-new-id, a draw commits a fresh shape, and anything degenerate is
// silently discarded.
func (g *Game) PointerUp(x, y float64) {
	if g.dragging {
		g.finishDrag()
		return
	}

	if g.tool == ToolPencil && g.pencil != nil {
		path := g.pencil
		g.pencil = nil
		g.clicked = false
		if len(path.Points) >= 2 {
			path.ID = NewID()
			g.shapes = append(g.shapes, path)
			g.send(path)
		}
		g.render()
		return
	}

	if !g.clicked {
		return
	}
	g.clicked = false

	shape := g.buildShape(x, y)
	if shape == nil {
		g.render()
		return
	}
	shape.Common().ID = NewID()
	g.shapes = append(g.shapes, shape)
	g.send(shape)
	g.render()
}

// CommitText turns the composed text into a shape at the anchor recorded on
// pointer-down. Empty input abandons the gesture.
func (g *Game) CommitText(text string) {
	if !g.composing {
		return
	}
	g.composing = false
	if strings.TrimSpace(text) == "" {
		return
	}

	shape := &Text{
		Attrs:      Attrs{ID: NewID(), Color: g.style.StrokeColor},
		Text:       text,
		X:          g.textAnchor.X,
		Y:          g.textAnchor.Y,
		FontSize:   g.fontSize,
		FontFamily: g.style.FontFamily,
	}
	g.shapes = append(g.shapes, shape)
	g.send(shape)
	g.render()
}

// CancelText abandons text composition without creating a shape.
func (g *Game) CancelText() {
	g.composing = false
}

// AddRemoteShape appends a shape received from the relay. The echo of a
// locally committed shape shares its id and is ignored.
func (g *Game) AddRemoteShape(s Shape) {
	if s == nil {
		return
	}
	for _, existing := range g.shapes {
		if existing.Common().ID == s.Common().ID {
			return
		}
	}
	g.shapes = append(g.shapes, s)
	g.render()
}

// finishDrag commits a move as delete-old-id + insert-new-id so the wire
// protocol stays append/delete-only. If the persistence delete fails the
// move is aborted: the shape keeps its old id and is not rebroadcast.
func (g *Game) finishDrag() {
	g.dragging = false
	g.dragOffset = Point{}

	sel := g.Selected()
	if sel == nil {
		return
	}

	if err := g.store.DeleteShape(context.Background(), sel.Common().ID); err != nil {
		log.Printf("[Game] move aborted, delete of %s failed: %v", sel.Common().ID, err)
		return
	}

	moved := sel.Clone()
	moved.Common().ID = NewID()

	kept := g.shapes[:0]
	for _, s := range g.shapes {
		if s != sel {
			kept = append(kept, s)
		}
	}
	g.shapes = append(kept, moved)
	g.send(moved)
	g.render()
}

func (g *Game) deleteShape(target Shape) {
	if err := g.store.DeleteShape(context.Background(), target.Common().ID); err != nil {
		log.Printf("[Game] delete of %s failed: %v", target.Common().ID, err)
		return
	}

	kept := g.shapes[:0]
	for _, s := range g.shapes {
		if s != target {
			kept = append(kept, s)
		}
	}
	g.shapes = kept
	g.render()
}

// buildShape constructs the provisional shape for the active drawing tool
// from the anchor to the given point, or nil when degenerate.
func (g *Game) buildShape(x, y float64) Shape {
	attrs := Attrs{Color: g.style.StrokeColor, LineWidth: g.style.StrokeWidth}

	switch g.tool {
	case ToolRect:
		if x == g.startX && y == g.startY {
			return nil
		}
		return &Rect{Attrs: attrs, X: g.startX, Y: g.startY, Width: x - g.startX, Height: y - g.startY}

	case ToolCircle:
		radius := math.Max(x-g.startX, y-g.startY) / 2
		if radius <= 0 {
			return nil
		}
		return &Circle{Attrs: attrs, CenterX: g.startX + radius, CenterY: g.startY + radius, Radius: radius}

	case ToolEllipse:
		if x == g.startX && y == g.startY {
			return nil
		}
		return &Ellipse{
			Attrs:   attrs,
			CenterX: g.startX + (x-g.startX)/2,
			CenterY: g.startY + (y-g.startY)/2,
			RadiusX: math.Abs(x-g.startX) / 2,
			RadiusY: math.Abs(y-g.startY) / 2,
		}

	case ToolArrow:
		if math.Hypot(x-g.startX, y-g.startY) <= minDragDistance {
			return nil
		}
		return &Arrow{Attrs: attrs, FromX: g.startX, FromY: g.startY, ToX: x, ToY: y}

	case ToolLine:
		if math.Hypot(x-g.startX, y-g.startY) <= minDragDistance {
			return nil
		}
		return &Line{Attrs: attrs, FromX: g.startX, FromY: g.startY, ToX: x, ToY: y}
	}
	return nil
}

func (g *Game) send(s Shape) {
	if err := g.sender.SendShape(g.roomID, s); err != nil {
		log.Printf("[Game] send of %s failed: %v", s.Common().ID, err)
	}
}

func (g *Game) clearSelection() {
	for _, s := range g.shapes {
		s.Common().Selected = false
	}
}

func (g *Game) render() {
	Render(g.surface, g.shapes, g.style)
}
