package draw

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentShape struct {
	roomID string
	shape  Shape
}

type fakeSender struct {
	sent []sentShape
	err  error
}

func (f *fakeSender) SendShape(roomID string, s Shape) error {
	f.sent = append(f.sent, sentShape{roomID: roomID, shape: s})
	return f.err
}

type fakeStore struct {
	deleted []string
	err     error
}

func (f *fakeStore) DeleteShape(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeTextEditor struct {
	openedAt []Point
}

func (f *fakeTextEditor) OpenTextEditor(at Point) {
	f.openedAt = append(f.openedAt, at)
}

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time { return c.t }

func (c *stepClock) tick() { c.t = c.t.Add(frameInterval + time.Millisecond) }

func newTestGame() (*Game, *fakeSender, *fakeStore, *fakeSurface, *stepClock) {
	sender := &fakeSender{}
	store := &fakeStore{}
	surf := newFakeSurface()
	clock := &stepClock{t: time.Unix(1000, 0)}

	g := NewGame(surf, sender, store, "42")
	g.now = clock.now
	return g, sender, store, surf, clock
}

func TestCreateRectCommitsOnRelease(t *testing.T) {
	g, sender, _, _, clock := newTestGame()
	g.SetTool(ToolRect)

	g.PointerDown(10, 10)
	clock.tick()
	g.PointerMove(40, 25)
	g.PointerUp(60, 40)

	require.Len(t, g.Shapes(), 1)
	rect, ok := g.Shapes()[0].(*Rect)
	require.True(t, ok)
	assert.Equal(t, Box{X: 10, Y: 10, Width: 50, Height: 30}, rect.Bounds())
	require.NotEmpty(t, rect.ID)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "42", sender.sent[0].roomID)
	assert.Same(t, g.Shapes()[0], sender.sent[0].shape)
}

func TestArrowBelowMinimumDistanceDiscarded(t *testing.T) {
	g, sender, _, _, _ := newTestGame()
	g.SetTool(ToolArrow)

	g.PointerDown(100, 100)
	g.PointerUp(100, 102)

	assert.Empty(t, g.Shapes())
	assert.Empty(t, sender.sent)
}

func TestZeroSizeShapesDiscarded(t *testing.T) {
	g, sender, _, _, _ := newTestGame()

	for _, tool := range []Tool{ToolRect, ToolCircle, ToolEllipse} {
		g.SetTool(tool)
		g.PointerDown(100, 100)
		g.PointerUp(100, 100)
	}

	assert.Empty(t, g.Shapes())
	assert.Empty(t, sender.sent)
}

func TestLineBelowMinimumDistanceDiscarded(t *testing.T) {
	g, sender, _, _, _ := newTestGame()
	g.SetTool(ToolLine)

	g.PointerDown(0, 0)
	g.PointerUp(3, 0)

	assert.Empty(t, g.Shapes())
	assert.Empty(t, sender.sent)
}

func TestPencilAccumulatesPointsAndCommits(t *testing.T) {
	g, sender, _, _, clock := newTestGame()
	g.SetTool(ToolPencil)

	g.PointerDown(1, 1)
	clock.tick()
	g.PointerMove(2, 2)
	clock.tick()
	g.PointerMove(3, 1)
	g.PointerUp(3, 1)

	require.Len(t, g.Shapes(), 1)
	path := g.Shapes()[0].(*Pencil)
	assert.Equal(t, []Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 1}}, path.Points)
	assert.NotEmpty(t, path.ID)
	assert.Len(t, sender.sent, 1)
}

func TestSinglePointPencilDiscarded(t *testing.T) {
	g, sender, _, _, _ := newTestGame()
	g.SetTool(ToolPencil)

	g.PointerDown(5, 5)
	g.PointerUp(5, 5)

	assert.Empty(t, g.Shapes())
	assert.Empty(t, sender.sent)
}

func TestPointerSelectsTopmostShape(t *testing.T) {
	g, _, _, _, _ := newTestGame()
	bottom := &Rect{Attrs: Attrs{ID: "bottom"}, X: 0, Y: 0, Width: 100, Height: 100}
	top := &Rect{Attrs: Attrs{ID: "top"}, X: 0, Y: 0, Width: 100, Height: 100}
	g.Hydrate([]Shape{bottom, top})

	g.PointerDown(50, 0)

	sel := g.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, "top", sel.Common().ID)
	assert.False(t, bottom.Selected)
}

func TestClickOnEmptySpaceDeselects(t *testing.T) {
	g, _, _, _, _ := newTestGame()
	shape := &Rect{Attrs: Attrs{ID: "a", Selected: true}, X: 0, Y: 0, Width: 10, Height: 10}
	g.Hydrate([]Shape{shape})

	g.PointerDown(500, 500)

	assert.Nil(t, g.Selected())
	assert.Len(t, g.Shapes(), 1)
}

func TestMoveProtocolDeletesOldInsertsNew(t *testing.T) {
	g, sender, store, _, clock := newTestGame()
	shape := &Rect{Attrs: Attrs{ID: "old-id"}, X: 10, Y: 10, Width: 50, Height: 30}
	g.Hydrate([]Shape{shape})

	g.PointerDown(10, 10) // grabs the top-left corner
	require.True(t, g.dragging)
	clock.tick()
	g.PointerMove(30, 25)
	g.PointerUp(30, 25)

	// exactly one persistence delete of the old id and one broadcast of the new
	assert.Equal(t, []string{"old-id"}, store.deleted)
	require.Len(t, sender.sent, 1)

	require.Len(t, g.Shapes(), 1)
	moved := g.Shapes()[0].(*Rect)
	assert.NotEqual(t, "old-id", moved.ID)
	assert.Equal(t, sender.sent[0].shape.Common().ID, moved.ID)
	assert.Equal(t, Box{X: 30, Y: 25, Width: 50, Height: 30}, moved.Bounds())
}

func TestMoveAbortedWhenPersistenceDeleteFails(t *testing.T) {
	g, sender, store, _, clock := newTestGame()
	store.err = errors.New("store down")
	shape := &Rect{Attrs: Attrs{ID: "old-id"}, X: 10, Y: 10, Width: 50, Height: 30}
	g.Hydrate([]Shape{shape})

	g.PointerDown(10, 10)
	clock.tick()
	g.PointerMove(30, 25)
	g.PointerUp(30, 25)

	assert.Empty(t, sender.sent, "aborted move must not broadcast")
	require.Len(t, g.Shapes(), 1)
	assert.Equal(t, "old-id", g.Shapes()[0].Common().ID, "old id survives the aborted move")
	assert.False(t, g.dragging)
}

func TestDragIntermediateFramesAreLocalOnly(t *testing.T) {
	g, sender, _, _, clock := newTestGame()
	shape := &Rect{Attrs: Attrs{ID: "a"}, X: 10, Y: 10, Width: 50, Height: 30}
	g.Hydrate([]Shape{shape})

	g.PointerDown(10, 10)
	for i := 0; i < 10; i++ {
		clock.tick()
		g.PointerMove(10+float64(i), 10)
	}

	assert.Empty(t, sender.sent, "no network traffic until pointer-up")
}

func TestPointerMoveThrottled(t *testing.T) {
	g, _, _, _, clock := newTestGame()
	shape := &Rect{Attrs: Attrs{ID: "a"}, X: 10, Y: 10, Width: 50, Height: 30}
	g.Hydrate([]Shape{shape})

	g.PointerDown(10, 10)
	clock.tick()
	g.PointerMove(20, 20)
	// second move inside the frame interval is dropped
	g.PointerMove(90, 90)

	assert.Equal(t, Point{X: 20, Y: 20}, shape.Anchor())
}

func TestDeleteButtonClickDeletesShape(t *testing.T) {
	g, sender, store, _, _ := newTestGame()
	shape := &Rect{Attrs: Attrs{ID: "doomed", Selected: true}, X: 10, Y: 10, Width: 50, Height: 30}
	g.Hydrate([]Shape{shape})

	c := DeleteButtonCenter(shape)
	g.PointerDown(c.X, c.Y)

	assert.Empty(t, g.Shapes())
	assert.Equal(t, []string{"doomed"}, store.deleted)
	assert.Empty(t, sender.sent, "deletes never go over the relay")
}

func TestEraserDeletesOnHit(t *testing.T) {
	g, _, store, _, _ := newTestGame()
	shape := &Circle{Attrs: Attrs{ID: "c1"}, CenterX: 100, CenterY: 100, Radius: 50}
	g.Hydrate([]Shape{shape})
	g.SetTool(ToolEraser)

	g.PointerDown(400, 400) // miss
	assert.Len(t, g.Shapes(), 1)

	g.PointerDown(150, 100) // on the outline
	assert.Empty(t, g.Shapes())
	assert.Equal(t, []string{"c1"}, store.deleted)
}

func TestEraserKeepsShapeWhenDeleteFails(t *testing.T) {
	g, _, store, _, _ := newTestGame()
	store.err = errors.New("store down")
	shape := &Circle{Attrs: Attrs{ID: "c1"}, CenterX: 100, CenterY: 100, Radius: 50}
	g.Hydrate([]Shape{shape})
	g.SetTool(ToolEraser)

	g.PointerDown(150, 100)

	assert.Len(t, g.Shapes(), 1)
}

func TestRemoteEchoDeduplicatedByID(t *testing.T) {
	g, sender, _, _, _ := newTestGame()
	g.SetTool(ToolRect)
	g.PointerDown(10, 10)
	g.PointerUp(60, 40)
	require.Len(t, g.Shapes(), 1)
	id := g.Shapes()[0].Common().ID

	echo := g.Shapes()[0].Clone()
	g.AddRemoteShape(echo)
	assert.Len(t, g.Shapes(), 1, "echo of own shape is ignored")

	remote := &Circle{Attrs: Attrs{ID: NewID()}, CenterX: 1, CenterY: 1, Radius: 1}
	g.AddRemoteShape(remote)
	assert.Len(t, g.Shapes(), 2)
	assert.Equal(t, id, g.Shapes()[0].Common().ID)
	assert.Len(t, sender.sent, 1, "remote arrivals are never rebroadcast")
}

func TestToolSwitchAbortsGesture(t *testing.T) {
	g, sender, _, _, _ := newTestGame()
	g.SetTool(ToolRect)
	g.PointerDown(10, 10)

	g.SetTool(ToolPencil)
	g.PointerUp(60, 40)

	assert.Empty(t, g.Shapes())
	assert.Empty(t, sender.sent)
}

func TestTextComposeAndCommit(t *testing.T) {
	g, sender, _, _, _ := newTestGame()
	ed := &fakeTextEditor{}
	g.SetTextEditor(ed)
	g.SetTool(ToolText)

	g.PointerDown(50, 60)
	require.Equal(t, []Point{{X: 50, Y: 60}}, ed.openedAt)

	g.CommitText("hello")

	require.Len(t, g.Shapes(), 1)
	txt := g.Shapes()[0].(*Text)
	assert.Equal(t, "hello", txt.Text)
	assert.Equal(t, 50.0, txt.X)
	assert.Equal(t, 60.0, txt.Y)
	assert.NotEmpty(t, txt.ID)
	assert.Len(t, sender.sent, 1)

	// commit without composition is a no-op
	g.CommitText("again")
	assert.Len(t, g.Shapes(), 1)
}

func TestTextAbandonedOnEmptyOrCancel(t *testing.T) {
	g, sender, _, _, _ := newTestGame()
	g.SetTool(ToolText)

	g.PointerDown(50, 60)
	g.CommitText("   ")
	assert.Empty(t, g.Shapes())

	g.PointerDown(50, 60)
	g.CancelText()
	g.CommitText("late")
	assert.Empty(t, g.Shapes())
	assert.Empty(t, sender.sent)
}

func TestHydrateReplaysOldestFirst(t *testing.T) {
	g, _, _, surf, _ := newTestGame()
	first := &Rect{Attrs: Attrs{ID: "first"}, X: 0, Y: 0, Width: 10, Height: 10}
	second := &Rect{Attrs: Attrs{ID: "second"}, X: 0, Y: 0, Width: 10, Height: 10}

	g.Hydrate([]Shape{first, second})

	assert.Positive(t, surf.count("clear"))
	hit := FindShapeAtPoint(g.Shapes(), Point{X: 5, Y: 0}, 5)
	require.NotNil(t, hit)
	assert.Equal(t, "second", hit.Common().ID, "later log entries stack on top")
}
