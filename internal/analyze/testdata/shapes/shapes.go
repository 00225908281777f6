package shapes

import "errors"

type Circle struct {
	Radius float64 `json:"r"`
	Label  string  `json:"-"`
}

func NewCircle(radius float64) (*Circle, error) {
	if radius < 0 {
		return nil, errors.New("negative radius")
	}

	return &Circle{Radius: radius}, nil
}

type Point struct {
	X, Y int
}

func NewPoint(x int) Point { return Point{X: x} }

type Label struct {
	Text string `tree:"text"`
}

func NewLabel(text string) Label { return Label{Text: text} }

func (Label) Constructor() any { return NewLabel }

type Base struct {
	ID string
}

type Wrapper struct {
	Base
	Name string
}

type Box[T any] struct {
	Item T
}

type Canvas struct {
	Width, Height int
}

type Named interface {
	Name() string
}

type unexported struct {
	Value int
}

var _ = unexported{}
