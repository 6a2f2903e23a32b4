package navigator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yuanying/epubnav/internal/pagination"
	"github.com/yuanying/epubnav/internal/publication"
	"github.com/yuanying/epubnav/internal/spread"
	"github.com/yuanying/epubnav/internal/surface"
)

// Options configures a Navigator and its Controller.
type Options struct {
	Viewport           pagination.Viewport
	Mode               pagination.Mode
	PageCountPerSpread int
	// Titles maps resource hrefs to their table of contents title.
	Titles  map[string]string
	Factory EngineFactory
	Logger  *zap.Logger
}

// Navigator turns reading intents into controller calls.
type Navigator struct {
	ctrl      *Controller
	links     []publication.Link
	rp        publication.ReadingProgression
	pageCount int
	titles    map[string]string
	log       *zap.Logger
}

// New builds the spreads for links and returns a navigator with no active
// spread; call GoToIndex or GoToLocator to open one.
func New(links []publication.Link, rp publication.ReadingProgression, loader surface.Loader, opts Options) (*Navigator, error) {
	if opts.PageCountPerSpread == 0 {
		opts.PageCountPerSpread = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	spreads, err := spread.MakeSpreads(links, rp, opts.PageCountPerSpread)
	if err != nil {
		return nil, fmt.Errorf("failed to build spreads: %w", err)
	}
	return &Navigator{
		ctrl:      NewController(spreads, loader, opts),
		links:     links,
		rp:        rp,
		pageCount: opts.PageCountPerSpread,
		titles:    opts.Titles,
		log:       opts.Logger,
	}, nil
}

// Controller exposes the underlying spread location controller.
func (n *Navigator) Controller() *Controller {
	return n.ctrl
}

// ReadingProgression returns the direction used to map intents.
func (n *Navigator) ReadingProgression() publication.ReadingProgression {
	return n.rp
}

// GoToIndex opens spread i at loc.
func (n *Navigator) GoToIndex(i int, loc publication.PageLocation) Result {
	return n.ctrl.GoToIndex(i, loc)
}

// GoToLocator moves to a locator.
func (n *Navigator) GoToLocator(l publication.Locator) Result {
	return n.ctrl.GoToLocator(l)
}

// GoToLink moves to a link, whose href may carry a fragment.
func (n *Navigator) GoToLink(link publication.Link) Result {
	href, fragment := publication.SplitHref(link.Href)
	l := publication.Locator{Href: href, Type: link.Type, Title: link.Title}
	if fragment != "" {
		l.Locations.Fragments = []string{fragment}
	}
	return n.ctrl.GoToLocator(l)
}

// GoForward moves one step in the reading progression.
func (n *Navigator) GoForward() Result {
	return n.step(true)
}

// GoBackward moves one step against the reading progression.
func (n *Navigator) GoBackward() Result {
	return n.step(false)
}

// GoLeft moves forward in a right-to-left book and backward otherwise.
func (n *Navigator) GoLeft() Result {
	return n.step(n.rp.IsReversed())
}

func (n *Navigator) GoRight() Result {
	return n.step(!n.rp.IsReversed())
}

// step moves inside the active spread, or to the adjacent spread in reading
// order when the engine is at its edge. Columns always advance to the right
// within a resource. Crossing forward lands on the first column of the next
// spread, crossing backward on the last column of the previous one.
func (n *Navigator) step(forward bool) Result {
	engine := n.ctrl.Engine()
	if engine == nil {
		return n.ctrl.fail(ErrNoActiveSpread)
	}
	d, atEdge := pagination.Right, engine.AtEnd()
	if !forward {
		d, atEdge = pagination.Left, engine.AtStart()
	}
	if !atEdge {
		return n.ctrl.GoToDirection(d)
	}

	delta, loc := 1, publication.Start()
	if !forward {
		delta, loc = -1, publication.End()
	}
	current, _ := n.ctrl.CurrentIndex()
	next := current + delta
	if next < 0 || next >= len(n.ctrl.Spreads()) {
		return n.ctrl.fail(ErrEdge)
	}
	n.log.Debug("Crossing spread boundary", zap.Int("from", current), zap.Int("to", next))
	return n.ctrl.GoToIndex(next, loc)
}

// CurrentLocation returns a locator for the resource being read.
func (n *Navigator) CurrentLocation() (publication.Locator, bool) {
	link, ok := n.ctrl.CurrentLink()
	if !ok {
		return publication.Locator{}, false
	}
	title := link.Title
	if t, found := n.titles[link.Href]; found {
		title = t
	}
	return publication.Locator{
		Href:  link.Href,
		Type:  link.Type,
		Title: title,
		Locations: publication.Locations{
			Progression: publication.Float(n.ctrl.Engine().CurrentProgression()),
		},
	}, true
}

// SetScrollMode switches reflowable spreads between scrolling and columns and
// goes back to the progression read before the switch.
func (n *Navigator) SetScrollMode(scroll bool) Result {
	mode := pagination.ModePaginated
	if scroll {
		mode = pagination.ModeScrolling
	}
	engine := n.ctrl.Engine()
	if engine == nil {
		n.ctrl.SetMode(mode)
		return n.ctrl.result(true, nil)
	}
	progression := engine.CurrentProgression()
	if !n.ctrl.SetMode(mode) {
		return n.ctrl.result(true, nil)
	}
	if !engine.GoToProgression(progression) {
		return n.ctrl.fail(ErrInvalidProgression)
	}
	return n.ctrl.result(true, nil)
}

// SetPageCountPerSpread rebuilds every spread and reopens the resource being
// read at its current progression.
func (n *Navigator) SetPageCountPerSpread(count int) Result {
	spreads, err := spread.MakeSpreads(n.links, n.rp, count)
	if err != nil {
		return n.ctrl.fail(err)
	}
	loc, ok := n.CurrentLocation()
	n.ctrl.SetSpreads(spreads)
	n.pageCount = count
	if !ok {
		return n.ctrl.result(true, nil)
	}
	return n.ctrl.GoToLocator(loc)
}

// PageCountPerSpread returns the current spread size.
func (n *Navigator) PageCountPerSpread() int {
	return n.pageCount
}

// Resize re-lays out the active spread.
func (n *Navigator) Resize(vp pagination.Viewport) {
	n.ctrl.Resize(vp)
}

// Close stops the active engine.
func (n *Navigator) Close() {
	n.ctrl.Close()
}
