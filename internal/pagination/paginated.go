package pagination

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/yuanying/epubnav/internal/surface"
)

// Paginated lays content out in columns of exactly one viewport width.
type Paginated struct {
	*layout
	fixedExtent bool
}

// NewPaginated returns a column engine over surfaces. Call Start before use.
func NewPaginated(surfaces []surface.Surface, vp Viewport, log *zap.Logger) *Paginated {
	return &Paginated{layout: newLayout(surfaces, vp, log)}
}

func (p *Paginated) Start(progression float64) {
	p.prepare()
	p.GoToProgression(progression)
}

// prepare disables scroll snapping, sizes every surface and probes the
// extent quirk of the active one.
func (p *Paginated) prepare() {
	p.signal(surface.ScrollOff)
	p.applySize()
	p.probeFixedExtent()
}

func (p *Paginated) Stop() {
	p.teardown()
	p.fixedExtent = false
}

func (p *Paginated) Resize(vp Viewport) {
	progression := p.CurrentProgression()
	p.viewport = vp
	p.prepare()
	p.GoToProgression(progression)
}

func (p *Paginated) SetActiveSurface(i int) bool {
	if !p.setActive(i) {
		return false
	}
	p.probeFixedExtent()
	return true
}

func (p *Paginated) applySize() {
	maxHeight := fmt.Sprintf("%gpx", p.viewport.Height)
	for _, s := range p.surfaces {
		s.SetViewportWidth(p.viewport.Width)
		s.SetViewportHeight(p.viewport.Height)
		for _, img := range s.QueryImages() {
			img.SetStyle("max-width", "100%")
			img.SetStyle("max-height", maxHeight)
			// keeps a trailing image from opening an empty column
			img.SetStyle("vertical-align", "top")
		}
	}
}

// probeFixedExtent checks whether the content width stays the same once a
// column has scrolled past.
func (p *Paginated) probeFixedExtent() {
	s := p.current()
	if s == nil {
		return
	}
	width := s.ViewportWidth()
	origin := s.ScrollLeft()
	defer s.SetScrollLeft(origin)

	s.SetScrollLeft(0)
	before := s.ContentWidth()
	if width <= 0 || before <= width {
		// a single column never scrolls, either formula gives 0
		p.fixedExtent = true
		return
	}
	s.SetScrollLeft(width)
	p.fixedExtent = s.ContentWidth() == before
	p.log.Debug("Probed content extent", zap.Bool("fixed", p.fixedExtent), zap.Float64("width", before))
}

func (p *Paginated) columnWidth(s surface.Surface) float64 {
	return s.ViewportWidth()
}

func (p *Paginated) rightWidth(s surface.Surface) float64 {
	return rightExtent(s.ContentWidth(), p.columnWidth(s), s.ScrollLeft(), p.fixedExtent)
}

func (p *Paginated) totalWidth(s surface.Surface) float64 {
	return s.ScrollLeft() + p.columnWidth(s) + p.rightWidth(s)
}

func (p *Paginated) CurrentProgression() float64 {
	s := p.current()
	if s == nil {
		return 0
	}
	total := p.totalWidth(s)
	if total <= 0 {
		return 0
	}
	return s.ScrollLeft() / total
}

// GoToProgression lands on the column boundary nearest to progression.
func (p *Paginated) GoToProgression(progression float64) bool {
	s := p.current()
	if s == nil || !validProgression(progression) {
		return false
	}
	p.applySize()
	// the viewport may have changed since the columns were laid out
	s.SetScrollLeft(0)
	width := p.columnWidth(s)
	if width <= 0 {
		return false
	}
	total := width + p.rightWidth(s)
	s.SetScrollLeft(snapToColumn(progression*total, width, total))
	return true
}

func (p *Paginated) GoToFragment(id string, relative bool) bool {
	s := p.current()
	if s == nil {
		return false
	}
	el := s.FindElementByID(id)
	if el == nil {
		return false
	}
	width := p.columnWidth(s)
	if width <= 0 {
		return false
	}

	var origin float64
	if relative {
		origin = s.ScrollLeft()
	} else {
		// focus handling may have scrolled the root, which shifts the bounding box
		s.SetScrollLeft(0)
	}
	s.SetScrollLeft(columnStart(p.anchorLeft(s, el), width) + origin)
	return true
}

// anchorLeft measures el with its height collapsed, so that an element
// spanning several columns reports the first one.
func (p *Paginated) anchorLeft(s surface.Surface, el surface.Element) float64 {
	height := el.Style("height")
	defer el.SetStyle("height", height)
	el.SetStyle("height", "0")
	return s.BoundingLeftOffset(el)
}

func (p *Paginated) GoToDirection(d Direction) bool {
	s := p.current()
	if s == nil {
		return false
	}
	left := s.ScrollLeft()
	width := p.columnWidth(s)
	switch d {
	case Left:
		s.SetScrollLeft(math.Max(0, left-width))
	case Right:
		s.SetScrollLeft(math.Min(left+width, p.totalWidth(s)))
	default:
		return false
	}
	return true
}

func (p *Paginated) AtStart() bool {
	s := p.current()
	return s == nil || s.ScrollLeft() <= 0
}

func (p *Paginated) AtEnd() bool {
	s := p.current()
	return s == nil || p.rightWidth(s) <= 0
}

func (p *Paginated) CurrentPage() int {
	s := p.current()
	if s == nil {
		return 0
	}
	width := p.columnWidth(s)
	if width <= 0 {
		return 0
	}
	return int(math.Round(s.ScrollLeft()/width)) + 1
}

func (p *Paginated) PageCount() int {
	s := p.current()
	if s == nil {
		return 0
	}
	return pageCount(p.totalWidth(s), p.columnWidth(s))
}
