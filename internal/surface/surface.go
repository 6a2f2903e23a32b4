// Package surface defines what the pagination engines need from the host
// that renders a resource.
package surface

import "github.com/yuanying/epubnav/internal/spread"

// Style names and values written by the engines.
const (
	ScrollProperty = "--USER__scroll"
	ScrollOn       = "readium-scroll-on"
	ScrollOff      = "readium-scroll-off"
)

// Element is a node of a rendered document.
type Element interface {
	Style(name string) string
	SetStyle(name, value string)
}

// Surface wraps one loaded resource. Positions and extents are in CSS pixels.
// Setting a scroll position out of range clamps it, as a browser does.
type Surface interface {
	ContentWidth() float64
	ContentHeight() float64

	ViewportWidth() float64
	ViewportHeight() float64
	SetViewportWidth(w float64)
	SetViewportHeight(h float64)

	ScrollLeft() float64
	SetScrollLeft(x float64)
	ScrollTop() float64
	SetScrollTop(y float64)

	// FindElementByID returns nil when no element has the id.
	FindElementByID(id string) Element
	// BoundingLeftOffset is relative to the current viewport.
	BoundingLeftOffset(e Element) float64
	ScrollIntoView(e Element)
	// ElementTopOffset is relative to the document top.
	ElementTopOffset(e Element) float64

	SetCustomStyleProperty(name, value string)
	QueryImages() []Element
}

// Loader renders the resources of a spread, in reading order.
type Loader interface {
	Load(s *spread.Spread) ([]Surface, error)
}
