package draw

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCarriesTypeTag(t *testing.T) {
	tests := []struct {
		shape Shape
		kind  string
	}{
		{&Rect{Attrs: Attrs{ID: "a"}, X: 1, Y: 2, Width: 3, Height: 4}, "rect"},
		{&Circle{Attrs: Attrs{ID: "b"}, CenterX: 1, CenterY: 2, Radius: 3}, "circle"},
		{&Ellipse{Attrs: Attrs{ID: "c"}, CenterX: 1, CenterY: 2, RadiusX: 3, RadiusY: 4}, "ellipse"},
		{&Pencil{Attrs: Attrs{ID: "d"}, Points: []Point{{1, 2}, {3, 4}}}, "pencil"},
		{&Arrow{Attrs: Attrs{ID: "e"}, FromX: 1, FromY: 2, ToX: 3, ToY: 4}, "arrow"},
		{&Line{Attrs: Attrs{ID: "f"}, FromX: 1, FromY: 2, ToX: 3, ToY: 4}, "line"},
		{&Text{Attrs: Attrs{ID: "g"}, Text: "hi", X: 1, Y: 2, FontSize: 16, FontFamily: "serif"}, "text"},
	}

	for _, tc := range tests {
		raw, err := json.Marshal(tc.shape)
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(raw, &fields))
		assert.Equal(t, tc.kind, fields["type"])
		assert.Equal(t, tc.shape.Common().ID, fields["id"])
	}
}

func TestSelectedIsNeverSerialized(t *testing.T) {
	s := &Rect{Attrs: Attrs{ID: "a", Selected: true}, X: 1, Y: 2, Width: 3, Height: 4}

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "selected")

	decoded, err := UnmarshalShape(raw)
	require.NoError(t, err)
	assert.False(t, decoded.Common().Selected)
}

func TestUnmarshalShapeRoundTrip(t *testing.T) {
	shapes := []Shape{
		&Rect{Attrs: Attrs{ID: "a", Color: "#fff", LineWidth: 3}, X: 10, Y: 20, Width: 30, Height: 40},
		&Circle{Attrs: Attrs{ID: "b"}, CenterX: 5, CenterY: 6, Radius: 7},
		&Ellipse{Attrs: Attrs{ID: "c"}, CenterX: 1, CenterY: 2, RadiusX: 3, RadiusY: 4, Rotation: 0.5},
		&Pencil{Attrs: Attrs{ID: "d", LineWidth: 2}, Points: []Point{{1, 1}, {2, 2}, {3, 1}}},
		&Arrow{Attrs: Attrs{ID: "e"}, FromX: 0, FromY: 0, ToX: 10, ToY: 10},
		&Line{Attrs: Attrs{ID: "f"}, FromX: 0, FromY: 5, ToX: 5, ToY: 0},
		&Text{Attrs: Attrs{ID: "g"}, Text: "note", X: 4, Y: 8, FontSize: 16, FontFamily: "serif"},
	}

	for _, original := range shapes {
		raw, err := json.Marshal(original)
		require.NoError(t, err)

		decoded, err := UnmarshalShape(raw)
		require.NoError(t, err, "kind %s", original.Kind())
		assert.Equal(t, original, decoded)
	}
}

func TestUnmarshalShapeRejectsUnknownType(t *testing.T) {
	_, err := UnmarshalShape([]byte(`{"type":"star","id":"x"}`))
	assert.Error(t, err)

	_, err = UnmarshalShape([]byte(`not json`))
	assert.Error(t, err)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	shape := &Circle{Attrs: Attrs{ID: "c1", Color: "red"}, CenterX: 50, CenterY: 60, Radius: 12}

	body, err := EncodeEnvelope(shape)
	require.NoError(t, err)
	assert.Contains(t, body, `"shape"`)

	decoded, err := DecodeEnvelope(body)
	require.NoError(t, err)
	assert.Equal(t, shape, decoded)
}

func TestDecodeEnvelopeMissingShape(t *testing.T) {
	_, err := DecodeEnvelope(`{}`)
	assert.Error(t, err)
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		require.NotEmpty(t, id)
		require.False(t, seen[id])
		seen[id] = true
	}
}
