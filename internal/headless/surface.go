// Package headless renders EPUB resources without a browser. It lays the
// body out as a sequence of text runs and images measured with fixed line
// metrics, which is enough to drive the pagination engines from the command
// line and in tests. It is not a CSS layout engine: margins, floats and
// fonts are ignored.
package headless

import (
	"math"
	"strconv"
	"strings"

	"github.com/yuanying/epubnav/internal/epub"
	"github.com/yuanying/epubnav/internal/surface"
)

// Metrics are the fixed measurements used for text.
type Metrics struct {
	LineHeight float64
	CharWidth  float64
	// FixedExtent makes the content width ignore the scroll offset, the
	// behaviour of engines with the column extent quirk.
	FixedExtent bool
}

// DefaultMetrics returns the metrics of a 16px serif body text.
func DefaultMetrics() Metrics {
	return Metrics{LineHeight: 24, CharWidth: 9}
}

// Element is an element of a headless document.
type Element struct {
	id      string
	block   int
	image   bool
	natural ImageSize
	styles  map[string]string
}

func newElement() *Element {
	return &Element{block: -1, styles: map[string]string{}}
}

// ID returns the element id, empty for anonymous images.
func (e *Element) ID() string { return e.id }

func (e *Element) Style(name string) string { return e.styles[name] }

// SetStyle sets an inline style; an empty value removes it.
func (e *Element) SetStyle(name, value string) {
	if value == "" {
		delete(e.styles, name)
		return
	}
	e.styles[name] = value
}

// Surface is a headless surface.Surface for one resource.
// It is not safe for concurrent use.
type Surface struct {
	href     string
	metrics  Metrics
	blocks   []block
	elements map[string]*Element
	images   []*Element

	width, height float64
	left, top     float64
	props         map[string]string
}

// New lays out content. sizes holds the intrinsic size of the images it
// references, keyed by archive path; images missing from it fall back to
// their width and height attributes.
func New(content *epub.Content, sizes map[string]ImageSize, m Metrics) *Surface {
	b := buildBlocks(content, sizes)
	if m.LineHeight <= 0 || m.CharWidth <= 0 {
		d := DefaultMetrics()
		m.LineHeight, m.CharWidth = d.LineHeight, d.CharWidth
	}
	return &Surface{
		href:     content.Path,
		metrics:  m,
		blocks:   b.blocks,
		elements: b.elements,
		images:   b.images,
		props:    map[string]string{},
	}
}

// Href returns the archive path of the rendered resource.
func (s *Surface) Href() string { return s.href }

func (s *Surface) scrolling() bool {
	return s.props[surface.ScrollProperty] == surface.ScrollOn
}

func (s *Surface) ContentWidth() float64 {
	if s.scrolling() {
		return s.width
	}
	total := float64(s.layout().columns) * s.width
	if s.metrics.FixedExtent {
		return total
	}
	return total - s.left
}

func (s *Surface) ContentHeight() float64 {
	if s.scrolling() {
		return math.Max(s.layout().height, s.height)
	}
	return s.height
}

func (s *Surface) ViewportWidth() float64  { return s.width }
func (s *Surface) ViewportHeight() float64 { return s.height }

func (s *Surface) SetViewportWidth(w float64) {
	s.width = w
	s.clampScroll()
}

func (s *Surface) SetViewportHeight(h float64) {
	s.height = h
	s.clampScroll()
}

func (s *Surface) ScrollLeft() float64 { return s.left }
func (s *Surface) ScrollTop() float64  { return s.top }

func (s *Surface) SetScrollLeft(x float64) {
	limit := 0.0
	if !s.scrolling() {
		limit = float64(s.layout().columns-1) * s.width
	}
	s.left = clamp(x, limit)
}

func (s *Surface) SetScrollTop(y float64) {
	limit := 0.0
	if s.scrolling() {
		limit = s.ContentHeight() - s.height
	}
	s.top = clamp(y, limit)
}

func (s *Surface) clampScroll() {
	s.SetScrollLeft(s.left)
	s.SetScrollTop(s.top)
}

func (s *Surface) FindElementByID(id string) surface.Element {
	if el, ok := s.elements[id]; ok {
		return el
	}
	return nil
}

func (s *Surface) position(e surface.Element) (placement, bool) {
	el, ok := e.(*Element)
	if !ok || el.block < 0 || el.block >= len(s.blocks) {
		return placement{}, false
	}
	return s.layout().positions[el.block], true
}

func (s *Surface) BoundingLeftOffset(e surface.Element) float64 {
	p, _ := s.position(e)
	return p.x - s.left
}

func (s *Surface) ScrollIntoView(e surface.Element) {
	p, ok := s.position(e)
	if !ok {
		return
	}
	if s.scrolling() {
		s.SetScrollTop(p.y)
		return
	}
	if s.width > 0 {
		s.SetScrollLeft(math.Floor(p.x/s.width) * s.width)
	}
}

func (s *Surface) ElementTopOffset(e surface.Element) float64 {
	p, _ := s.position(e)
	return p.y
}

// SetCustomStyleProperty sets a property on the document root. Switching
// the scroll property re-lays the document out, which resets offsets that
// no longer fit.
func (s *Surface) SetCustomStyleProperty(name, value string) {
	s.props[name] = value
	s.clampScroll()
}

// CustomStyleProperty returns a property set on the document root.
func (s *Surface) CustomStyleProperty(name string) string {
	return s.props[name]
}

func (s *Surface) QueryImages() []surface.Element {
	out := make([]surface.Element, len(s.images))
	for i, img := range s.images {
		out[i] = img
	}
	return out
}

func clamp(v, limit float64) float64 {
	return math.Min(math.Max(0, v), math.Max(0, limit))
}

// pixels parses a "<n>px" length; percentages are resolved against base.
func pixels(value string, base float64) (float64, bool) {
	value = strings.TrimSpace(value)
	switch {
	case strings.HasSuffix(value, "%"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		return f / 100 * base, err == nil
	case strings.HasSuffix(value, "px"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(value, "px"), 64)
		return f, err == nil
	}
	return 0, false
}
