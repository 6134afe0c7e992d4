package draw

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned bounding box.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Attrs holds the fields shared by every shape variant. Selected is
// client-local state and never goes over the wire or into the store.
type Attrs struct {
	ID        string  `json:"id"`
	Color     string  `json:"color,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`
	Selected  bool    `json:"-"`
}

// Shape is the closed set of drawable primitives. Every variant carries a
// stable id; a "move" never mutates coordinates in place across the wire,
// it deletes the old id and inserts a fresh one (see Game.finishDrag).
type Shape interface {
	Kind() string
	Common() *Attrs
	Bounds() Box
	Hit(p Point, threshold float64) bool
	Anchor() Point
	Translate(dx, dy float64)
	Clone() Shape

	isShape()
}

// NewID returns a fresh client-generated shape id.
func NewID() string {
	return uuid.NewString()
}

type Rect struct {
	Attrs
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Circle struct {
	Attrs
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
	Radius  float64 `json:"radius"`
}

type Ellipse struct {
	Attrs
	CenterX  float64 `json:"centerX"`
	CenterY  float64 `json:"centerY"`
	RadiusX  float64 `json:"radiusX"`
	RadiusY  float64 `json:"radiusY"`
	Rotation float64 `json:"rotation"`
}

type Pencil struct {
	Attrs
	Points []Point `json:"points"`
}

type Arrow struct {
	Attrs
	FromX float64 `json:"fromX"`
	FromY float64 `json:"fromY"`
	ToX   float64 `json:"toX"`
	ToY   float64 `json:"toY"`
}

type Line struct {
	Attrs
	FromX float64 `json:"fromX"`
	FromY float64 `json:"fromY"`
	ToX   float64 `json:"toX"`
	ToY   float64 `json:"toY"`
}

type Text struct {
	Attrs
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
}

func (s *Rect) Kind() string    { return "rect" }
func (s *Circle) Kind() string  { return "circle" }
func (s *Ellipse) Kind() string { return "ellipse" }
func (s *Pencil) Kind() string  { return "pencil" }
func (s *Arrow) Kind() string   { return "arrow" }
func (s *Line) Kind() string    { return "line" }
func (s *Text) Kind() string    { return "text" }

func (s *Rect) Common() *Attrs    { return &s.Attrs }
func (s *Circle) Common() *Attrs  { return &s.Attrs }
func (s *Ellipse) Common() *Attrs { return &s.Attrs }
func (s *Pencil) Common() *Attrs  { return &s.Attrs }
func (s *Arrow) Common() *Attrs   { return &s.Attrs }
func (s *Line) Common() *Attrs    { return &s.Attrs }
func (s *Text) Common() *Attrs    { return &s.Attrs }

func (s *Rect) isShape()    {}
func (s *Circle) isShape()  {}
func (s *Ellipse) isShape() {}
func (s *Pencil) isShape()  {}
func (s *Arrow) isShape()   {}
func (s *Line) isShape()    {}
func (s *Text) isShape()    {}

func (s *Rect) Clone() Shape    { c := *s; return &c }
func (s *Circle) Clone() Shape  { c := *s; return &c }
func (s *Ellipse) Clone() Shape { c := *s; return &c }
func (s *Arrow) Clone() Shape   { c := *s; return &c }
func (s *Line) Clone() Shape    { c := *s; return &c }
func (s *Text) Clone() Shape    { c := *s; return &c }

func (s *Pencil) Clone() Shape {
	c := *s
	c.Points = make([]Point, len(s.Points))
	copy(c.Points, s.Points)
	return &c
}

// tagged wraps a variant with its wire discriminator.
func tagged(kind string, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head := []byte(`{"type":"` + kind + `",`)
	// raw is always an object here; splice the tag in front of its fields
	return append(head, raw[1:]...), nil
}

func (s *Rect) MarshalJSON() ([]byte, error) {
	type alias Rect
	return tagged(s.Kind(), (*alias)(s))
}

func (s *Circle) MarshalJSON() ([]byte, error) {
	type alias Circle
	return tagged(s.Kind(), (*alias)(s))
}

func (s *Ellipse) MarshalJSON() ([]byte, error) {
	type alias Ellipse
	return tagged(s.Kind(), (*alias)(s))
}

func (s *Pencil) MarshalJSON() ([]byte, error) {
	type alias Pencil
	return tagged(s.Kind(), (*alias)(s))
}

func (s *Arrow) MarshalJSON() ([]byte, error) {
	type alias Arrow
	return tagged(s.Kind(), (*alias)(s))
}

func (s *Line) MarshalJSON() ([]byte, error) {
	type alias Line
	return tagged(s.Kind(), (*alias)(s))
}

func (s *Text) MarshalJSON() ([]byte, error) {
	type alias Text
	return tagged(s.Kind(), (*alias)(s))
}

// UnmarshalShape decodes a flat shape object with a "type" discriminator
// into the matching variant.
func UnmarshalShape(data []byte) (Shape, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode shape: %w", err)
	}

	var s Shape
	switch probe.Type {
	case "rect":
		s = &Rect{}
	case "circle":
		s = &Circle{}
	case "ellipse":
		s = &Ellipse{}
	case "pencil":
		s = &Pencil{}
	case "arrow":
		s = &Arrow{}
	case "line":
		s = &Line{}
	case "text":
		s = &Text{}
	default:
		return nil, fmt.Errorf("decode shape: unknown type %q", probe.Type)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode shape %q: %w", probe.Type, err)
	}
	return s, nil
}

type envelope struct {
	Shape json.RawMessage `json:"shape"`
}

// EncodeEnvelope serializes a shape into the `{"shape": ...}` message body
// carried inside a chat frame.
func EncodeEnvelope(s Shape) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(envelope{Shape: raw})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DecodeEnvelope parses a chat message body back into a shape.
func DecodeEnvelope(message string) (Shape, error) {
	var env envelope
	if err := json.Unmarshal([]byte(message), &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.Shape) == 0 {
		return nil, fmt.Errorf("decode envelope: missing shape")
	}
	return UnmarshalShape(env.Shape)
}
