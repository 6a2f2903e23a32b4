package pagination

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/yuanying/epubnav/internal/surface"
)

// Scrolling lays content out as one continuous column.
type Scrolling struct {
	*layout
}

// NewScrolling returns a scroll engine over surfaces. Call Start before use.
func NewScrolling(surfaces []surface.Surface, vp Viewport, log *zap.Logger) *Scrolling {
	return &Scrolling{layout: newLayout(surfaces, vp, log)}
}

func (s *Scrolling) Start(progression float64) {
	s.prepare()
	s.GoToProgression(progression)
}

func (s *Scrolling) prepare() {
	s.signal(surface.ScrollOn)
	s.applySize()
}

func (s *Scrolling) Stop() {
	s.teardown()
}

func (s *Scrolling) Resize(vp Viewport) {
	progression := s.CurrentProgression()
	s.viewport = vp
	s.prepare()
	s.GoToProgression(progression)
}

func (s *Scrolling) SetActiveSurface(i int) bool {
	return s.setActive(i)
}

// applySize fits images to the text width so that tall images do not make
// the scroll jump.
func (s *Scrolling) applySize() {
	maxWidth := fmt.Sprintf("%gpx", s.viewport.Width-2*s.viewport.SideMargin)
	for _, sf := range s.surfaces {
		sf.SetViewportWidth(s.viewport.Width)
		sf.SetViewportHeight(s.viewport.Height)
		for _, img := range sf.QueryImages() {
			img.SetStyle("max-width", maxWidth)
			img.SetStyle("height", "auto")
		}
	}
}

func (s *Scrolling) CurrentProgression() float64 {
	sf := s.current()
	if sf == nil {
		return 0
	}
	height := sf.ContentHeight()
	if height <= 0 {
		return 0
	}
	return sf.ScrollTop() / height
}

// GoToProgression scrolls to exactly progression of the content height.
func (s *Scrolling) GoToProgression(progression float64) bool {
	sf := s.current()
	if sf == nil || !validProgression(progression) {
		return false
	}
	s.applySize()
	sf.SetScrollTop(sf.ContentHeight() * progression)
	return true
}

func (s *Scrolling) GoToFragment(id string, _ bool) bool {
	sf := s.current()
	if sf == nil {
		return false
	}
	el := sf.FindElementByID(id)
	if el == nil {
		return false
	}
	s.applySize()
	sf.ScrollIntoView(el)

	// Leave room for a top overlay, unless the anchor is already on the last screen.
	height := sf.ViewportHeight()
	if sf.ContentHeight()-sf.ElementTopOffset(el) >= height {
		sf.SetScrollTop(math.Max(0, sf.ScrollTop()-height/3))
	}
	return true
}

// GoToDirection is not supported while scrolling.
func (s *Scrolling) GoToDirection(Direction) bool {
	return false
}

func (s *Scrolling) AtStart() bool {
	sf := s.current()
	return sf == nil || sf.ScrollTop() <= 0
}

// AtEnd tolerates one pixel, some surfaces report fractional residues at the boundary.
func (s *Scrolling) AtEnd() bool {
	sf := s.current()
	if sf == nil {
		return true
	}
	return math.Ceil(sf.ContentHeight()-sf.ScrollTop())-1 <= sf.ViewportHeight()
}

func (s *Scrolling) CurrentPage() int { return 0 }

func (s *Scrolling) PageCount() int { return 0 }
