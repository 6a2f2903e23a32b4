// Package pagination positions the reader inside the surfaces of a spread,
// either as discrete columns or as a continuous scroll.
//
// Engines are not safe for concurrent use. A navigation call reads and writes
// the surfaces synchronously and must complete before the next one starts.
package pagination

import (
	"math"

	"go.uber.org/zap"

	"github.com/yuanying/epubnav/internal/surface"
)

// Direction is a visual stepping direction.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

// Viewport is the pagination area the surfaces are sized to.
type Viewport struct {
	Width      float64
	Height     float64
	SideMargin float64
}

// Engine is the contract shared by every layout mode.
type Engine interface {
	// CurrentProgression returns the fraction of content before the viewport, in [0,1).
	CurrentProgression() float64
	GoToProgression(p float64) bool
	// GoToFragment brings the element with the given id into view. With
	// relative set, the anchor offset is taken from the current view.
	GoToFragment(id string, relative bool) bool
	GoToDirection(d Direction) bool

	AtStart() bool
	AtEnd() bool

	// CurrentPage is 1-indexed; both counters are 0 when the mode has no pages.
	CurrentPage() int
	PageCount() int

	Start(progression float64)
	Stop()
	Resize(vp Viewport)
	SetActiveSurface(i int) bool
}

// image style overrides written while sizing surfaces
var imageStyles = []string{"max-width", "max-height", "height", "margin-left", "margin-right", "vertical-align"}

// layout is the state shared by the strategies working on the same surfaces.
type layout struct {
	surfaces []surface.Surface
	active   int
	viewport Viewport
	log      *zap.Logger
}

func newLayout(surfaces []surface.Surface, vp Viewport, log *zap.Logger) *layout {
	if log == nil {
		log = zap.NewNop()
	}
	return &layout{surfaces: surfaces, viewport: vp, log: log}
}

// current returns the surface being measured, or nil once stopped.
func (l *layout) current() surface.Surface {
	if l.active < 0 || l.active >= len(l.surfaces) {
		return nil
	}
	return l.surfaces[l.active]
}

func (l *layout) signal(value string) {
	for _, s := range l.surfaces {
		s.SetCustomStyleProperty(surface.ScrollProperty, value)
	}
}

func (l *layout) setActive(i int) bool {
	if i < 0 || i >= len(l.surfaces) {
		return false
	}
	l.active = i
	return true
}

// teardown clears the sizing overrides and forgets the surfaces.
func (l *layout) teardown() {
	for _, s := range l.surfaces {
		for _, img := range s.QueryImages() {
			for _, name := range imageStyles {
				img.SetStyle(name, "")
			}
		}
	}
	l.surfaces = nil
	l.active = 0
}

func validProgression(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
