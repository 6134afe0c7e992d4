package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderClearsAndFillsBackgroundFirst(t *testing.T) {
	surf := newFakeSurface()
	Render(surf, nil, DefaultStyle())

	require.Len(t, surf.ops, 2)
	assert.Equal(t, "clear", surf.ops[0])
	assert.Equal(t, "fillRect 0 0 800 600 rgba(0, 0, 0, 1)", surf.ops[1])
}

func TestRenderPaintsInListOrder(t *testing.T) {
	surf := newFakeSurface()
	shapes := []Shape{
		&Rect{Attrs: Attrs{ID: "a"}, X: 1, Y: 1, Width: 2, Height: 2},
		&Circle{Attrs: Attrs{ID: "b"}, CenterX: 5, CenterY: 5, Radius: 3},
	}
	Render(surf, shapes, DefaultStyle())

	rectIdx, circleIdx := -1, -1
	for i, op := range surf.ops {
		switch op {
		case "strokeRect 1 1 2 2":
			rectIdx = i
		case "strokeCircle 5 5 3":
			circleIdx = i
		}
	}
	require.NotEqual(t, -1, rectIdx)
	require.NotEqual(t, -1, circleIdx)
	assert.Less(t, rectIdx, circleIdx, "earlier shapes paint below later ones")
}

func TestRenderResolvesEffectiveStyle(t *testing.T) {
	surf := newFakeSurface()
	defaults := Style{StrokeColor: "white", StrokeWidth: 5, Background: "black"}

	shapes := []Shape{
		&Rect{Attrs: Attrs{ID: "a", Color: "red", LineWidth: 2}, Width: 1, Height: 1},
		&Rect{Attrs: Attrs{ID: "b"}, Width: 1, Height: 1},
	}
	Render(surf, shapes, defaults)

	assert.Equal(t, 1, surf.count("setStroke red 2"))
	assert.Equal(t, 1, surf.count("setStroke white 5"))
}

func TestArrowRenderedAsShaftPlusTwoHeads(t *testing.T) {
	surf := newFakeSurface()
	arrow := &Arrow{Attrs: Attrs{ID: "a", LineWidth: 4}, FromX: 0, FromY: 0, ToX: 100, ToY: 0}
	Render(surf, []Shape{arrow}, DefaultStyle())

	assert.Equal(t, 3, surf.count("strokeLine"))
	// head segments are 3x the stroke width long, meeting at the tip
	assert.Equal(t, "strokeLine 0 0 100 0", surf.ops[3])
}

func TestDegeneratePencilRendersNothing(t *testing.T) {
	surf := newFakeSurface()
	Render(surf, []Shape{&Pencil{Attrs: Attrs{ID: "p"}, Points: []Point{{X: 1, Y: 1}}}}, DefaultStyle())
	assert.Equal(t, 0, surf.count("strokePolyline"))

	surf.reset()
	Render(surf, []Shape{&Pencil{Attrs: Attrs{ID: "p"}, Points: []Point{{X: 1, Y: 1}, {X: 2, Y: 2}}}}, DefaultStyle())
	assert.Equal(t, 1, surf.count("strokePolyline 2"))
}

func TestSelectedShapeGetsOverlayAndDeleteAffordance(t *testing.T) {
	surf := newFakeSurface()
	shape := &Rect{Attrs: Attrs{ID: "a", Selected: true}, X: 10, Y: 10, Width: 50, Height: 30}
	Render(surf, []Shape{shape}, DefaultStyle())

	assert.Equal(t, 1, surf.count("setDash true"))
	assert.Equal(t, 1, surf.count("setDash false"))
	assert.Equal(t, 1, surf.count("fillCircle"), "delete affordance background")
	// the X inside the affordance
	c := DeleteButtonCenter(shape)
	assert.Equal(t, Point{X: 68, Y: 2}, c)
	assert.Equal(t, 2, surf.count("strokeLine"))
}

func TestRenderDoesNotMutateShapes(t *testing.T) {
	shape := &Rect{Attrs: Attrs{ID: "a", Selected: true}, X: 10, Y: 10, Width: 50, Height: 30}
	before := *shape
	Render(newFakeSurface(), []Shape{shape}, DefaultStyle())
	assert.Equal(t, before, *shape)
}

func TestHitDeleteButton(t *testing.T) {
	shape := &Circle{Attrs: Attrs{ID: "c"}, CenterX: 100, CenterY: 100, Radius: 50}
	c := DeleteButtonCenter(shape)

	assert.True(t, HitDeleteButton(c, shape))
	assert.True(t, HitDeleteButton(Point{X: c.X + deleteButtonRadius, Y: c.Y}, shape))
	assert.False(t, HitDeleteButton(Point{X: c.X + deleteButtonRadius + 1, Y: c.Y}, shape))
}
