// Package surfacetest provides an in-memory surface.Surface for tests.
package surfacetest

import (
	"math"

	"github.com/yuanying/epubnav/internal/spread"
	"github.com/yuanying/epubnav/internal/surface"
)

// Element is a fake element placed at X in the column layout and at Y in the
// scroll layout.
type Element struct {
	ID     string
	X, Y   float64
	Styles map[string]string

	// MeasuredHeight is the height style seen by the last BoundingLeftOffset call.
	MeasuredHeight string
}

func (e *Element) Style(name string) string { return e.Styles[name] }

func (e *Element) SetStyle(name, value string) {
	if e.Styles == nil {
		e.Styles = map[string]string{}
	}
	if value == "" {
		delete(e.Styles, name)
		return
	}
	e.Styles[name] = value
}

// Surface behaves like a browser document. When the scroll property is on, it
// is one column of Height pixels; otherwise it is Columns pixels wide.
// With FixedExtent unset the reported content width shrinks as columns scroll
// past, as in most engines.
type Surface struct {
	Columns     float64
	Height      float64
	FixedExtent bool

	Width, ViewHeight float64
	Left, Top         float64

	Props    map[string]string
	Elements map[string]*Element
	Images   []*Element
}

// New returns a paginated surface of the given column and scroll extents.
func New(columns, height float64) *Surface {
	return &Surface{
		Columns:  columns,
		Height:   height,
		Props:    map[string]string{},
		Elements: map[string]*Element{},
	}
}

// AddElement registers an element with id.
func (s *Surface) AddElement(id string, x, y float64) *Element {
	e := &Element{ID: id, X: x, Y: y, Styles: map[string]string{}}
	s.Elements[id] = e
	return e
}

// AddImage registers an image element.
func (s *Surface) AddImage() *Element {
	e := &Element{Styles: map[string]string{}}
	s.Images = append(s.Images, e)
	return e
}

func (s *Surface) scrolling() bool {
	return s.Props[surface.ScrollProperty] == surface.ScrollOn
}

func (s *Surface) ContentWidth() float64 {
	if s.scrolling() {
		return s.Width
	}
	if s.FixedExtent {
		return s.Columns
	}
	return s.Columns - s.Left
}

func (s *Surface) ContentHeight() float64 {
	if s.scrolling() {
		return s.Height
	}
	return s.ViewHeight
}

func (s *Surface) ViewportWidth() float64 { return s.Width }
func (s *Surface) ViewportHeight() float64 { return s.ViewHeight }
func (s *Surface) SetViewportWidth(w float64) { s.Width = w }
func (s *Surface) SetViewportHeight(h float64) { s.ViewHeight = h }
func (s *Surface) ScrollLeft() float64 { return s.Left }
func (s *Surface) ScrollTop() float64 { return s.Top }
func (s *Surface) ElementTopOffset(e surface.Element) float64 {
	return e.(*Element).Y
}

func (s *Surface) SetScrollLeft(x float64) {
	limit := 0.0
	if !s.scrolling() {
		limit = math.Max(0, s.Columns-s.Width)
	}
	s.Left = clamp(x, limit)
}

func (s *Surface) SetScrollTop(y float64) {
	s.Top = clamp(y, math.Max(0, s.ContentHeight()-s.ViewHeight))
}

func (s *Surface) FindElementByID(id string) surface.Element {
	if e, ok := s.Elements[id]; ok {
		return e
	}
	return nil
}

func (s *Surface) BoundingLeftOffset(e surface.Element) float64 {
	el := e.(*Element)
	el.MeasuredHeight = el.Style("height")
	return el.X - s.Left
}

func (s *Surface) ScrollIntoView(e surface.Element) {
	el := e.(*Element)
	if s.scrolling() {
		s.SetScrollTop(el.Y)
		return
	}
	if s.Width > 0 {
		s.SetScrollLeft(math.Floor(el.X/s.Width) * s.Width)
	}
}

func (s *Surface) SetCustomStyleProperty(name, value string) {
	s.Props[name] = value
}

func (s *Surface) QueryImages() []surface.Element {
	out := make([]surface.Element, len(s.Images))
	for i, img := range s.Images {
		out[i] = img
	}
	return out
}

func clamp(v, limit float64) float64 {
	return math.Min(math.Max(0, v), limit)
}

// Loader hands out prepared surfaces by href.
type Loader struct {
	Surfaces map[string]*Surface
	Loads    int
	Err      error
}

func (l *Loader) Load(sp *spread.Spread) ([]surface.Surface, error) {
	l.Loads++
	if l.Err != nil {
		return nil, l.Err
	}
	out := make([]surface.Surface, 0, len(sp.Links))
	for _, link := range sp.Links {
		sf, ok := l.Surfaces[link.Href]
		if !ok {
			sf = New(0, 0)
		}
		out = append(out, sf)
	}
	return out, nil
}
