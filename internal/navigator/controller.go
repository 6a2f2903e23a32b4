// Package navigator resolves navigation targets to spreads and drives the
// pagination engine of the active spread.
package navigator

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/yuanying/epubnav/internal/pagination"
	"github.com/yuanying/epubnav/internal/publication"
	"github.com/yuanying/epubnav/internal/spread"
	"github.com/yuanying/epubnav/internal/surface"
)

// EngineFactory builds the engine for a freshly loaded spread.
type EngineFactory func(s *spread.Spread, surfaces []surface.Surface, vp pagination.Viewport, mode pagination.Mode, log *zap.Logger) pagination.Engine

// DefaultEngine paginates fixed-layout spreads, one column per page, and
// hands reflowable ones to a mode-switching engine.
func DefaultEngine(s *spread.Spread, surfaces []surface.Surface, vp pagination.Viewport, mode pagination.Mode, log *zap.Logger) pagination.Engine {
	if s.Layout == publication.LayoutFixed {
		return pagination.NewPaginated(surfaces, vp, log)
	}
	return pagination.NewReflowable(surfaces, vp, mode, log)
}

// ModeSwitcher is implemented by engines that can change layout mode.
type ModeSwitcher interface {
	Mode() pagination.Mode
	SetMode(m pagination.Mode)
}

// Controller owns the spreads and the engine of the active one.
// It is not safe for concurrent use.
type Controller struct {
	spreads []*spread.Spread
	current int // -1 until a spread is active
	active  int // surface index within the current spread
	engine  pagination.Engine

	loader   surface.Loader
	factory  EngineFactory
	viewport pagination.Viewport
	mode     pagination.Mode
	log      *zap.Logger
}

// NewController returns a controller with no active spread.
func NewController(spreads []*spread.Spread, loader surface.Loader, opts Options) *Controller {
	c := &Controller{
		spreads:  spreads,
		current:  -1,
		loader:   loader,
		factory:  opts.Factory,
		viewport: opts.Viewport,
		mode:     opts.Mode,
		log:      opts.Logger,
	}
	if c.factory == nil {
		c.factory = DefaultEngine
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Spreads returns the spread sequence.
func (c *Controller) Spreads() []*spread.Spread {
	return c.spreads
}

// CurrentIndex returns the active spread index.
func (c *Controller) CurrentIndex() (int, bool) {
	return c.current, c.current >= 0
}

// Engine returns the engine of the active spread, nil when none is active.
func (c *Controller) Engine() pagination.Engine {
	return c.engine
}

// CurrentLink returns the resource whose surface the engine is measuring.
func (c *Controller) CurrentLink() (publication.Link, bool) {
	if c.current < 0 {
		return publication.Link{}, false
	}
	return c.spreads[c.current].Links[c.active], true
}

// target is a resolved position inside one spread.
type target struct {
	spread      int
	surface     int
	fragment    string
	progression float64
}

// GoToIndex activates spread i at the given location.
func (c *Controller) GoToIndex(i int, loc publication.PageLocation) Result {
	if i < 0 || i >= len(c.spreads) {
		return c.fail(ErrSpreadOutOfRange)
	}
	switch {
	case loc.Locator != nil:
		if loc.Locator.IsEmpty() {
			return c.result(true, nil)
		}
		t, err := c.resolve(*loc.Locator)
		if err != nil {
			return c.fail(err)
		}
		if t.spread != i {
			return c.fail(ErrHrefNotFound)
		}
		return c.navigate(t)
	case loc.Progression != nil:
		if !validProgression(*loc.Progression) {
			return c.fail(ErrInvalidProgression)
		}
		return c.navigate(target{spread: i, progression: *loc.Progression})
	default:
		return c.navigate(target{spread: i})
	}
}

// GoToLocator activates the spread holding the locator href. The fragment is
// preferred over the progression; with neither the resource start is used.
// An empty locator succeeds without moving.
func (c *Controller) GoToLocator(l publication.Locator) Result {
	if l.IsEmpty() {
		return c.result(true, nil)
	}
	t, err := c.resolve(l)
	if err != nil {
		c.log.Warn("Locator rejected", zap.String("href", l.Href), zap.Error(err))
		return c.fail(err)
	}
	return c.navigate(t)
}

func (c *Controller) resolve(l publication.Locator) (target, error) {
	href, fragment := publication.SplitHref(l.Href)
	if f := l.Fragment(); f != "" {
		fragment = f
	}
	i, ok := spread.FindSpread(c.spreads, href)
	if !ok {
		return target{}, ErrHrefNotFound
	}
	surfaceIndex, _ := c.spreads[i].IndexOf(href)
	t := target{spread: i, surface: surfaceIndex, fragment: fragment}
	if fragment == "" && l.Locations.Progression != nil {
		if !validProgression(*l.Locations.Progression) {
			return target{}, ErrInvalidProgression
		}
		t.progression = *l.Locations.Progression
	}
	return t, nil
}

// navigate moves to t, loading the spread first when it is not active. A
// missing fragment in a spread being loaded leaves the current one in place.
func (c *Controller) navigate(t target) Result {
	if t.spread != c.current || c.engine == nil {
		if err := c.activate(t); err != nil {
			return c.fail(err)
		}
	} else if t.surface != c.active {
		if !c.engine.SetActiveSurface(t.surface) {
			return c.fail(ErrSpreadOutOfRange)
		}
		c.active = t.surface
	}

	if t.fragment != "" {
		if !c.engine.GoToFragment(t.fragment, false) {
			return c.fail(ErrFragmentNotFound)
		}
		return c.result(true, nil)
	}
	if !c.engine.GoToProgression(t.progression) {
		return c.fail(ErrInvalidProgression)
	}
	return c.result(true, nil)
}

func (c *Controller) activate(t target) error {
	sp := c.spreads[t.spread]
	surfaces, err := c.loader.Load(sp)
	if err != nil {
		return fmt.Errorf("failed to load spread %d: %w", t.spread, err)
	}
	if t.surface >= len(surfaces) {
		return fmt.Errorf("spread %d: %w", t.spread, ErrSpreadOutOfRange)
	}
	if t.fragment != "" && surfaces[t.surface].FindElementByID(t.fragment) == nil {
		return ErrFragmentNotFound
	}

	engine := c.factory(sp, surfaces, c.viewport, c.mode, c.log)
	if c.engine != nil {
		c.engine.Stop()
	}
	c.engine, c.current, c.active = engine, t.spread, t.surface
	engine.SetActiveSurface(t.surface)
	engine.Start(t.progression)

	c.log.Debug("Spread activated",
		zap.Int("index", t.spread),
		zap.String("href", sp.Links[t.surface].Href),
		zap.String("layout", string(sp.Layout)))
	return nil
}

// GoToDirection steps inside the active spread. It never changes spreads.
func (c *Controller) GoToDirection(d pagination.Direction) Result {
	if c.engine == nil {
		return c.fail(ErrNoActiveSpread)
	}
	if !c.engine.GoToDirection(d) {
		return c.fail(ErrNoStep)
	}
	return c.result(true, nil)
}

// Progression returns the current progression when href leads the active
// spread, 0 otherwise.
func (c *Controller) Progression(href string) float64 {
	if c.engine == nil || c.spreads[c.current].Leading().Href != href {
		return 0
	}
	return c.engine.CurrentProgression()
}

// SetMode records the mode for future spreads and applies it to the active
// engine when that engine can switch. The position is not preserved.
func (c *Controller) SetMode(m pagination.Mode) bool {
	c.mode = m
	if sw, ok := c.engine.(ModeSwitcher); ok {
		sw.SetMode(m)
		return true
	}
	return false
}

// Mode returns the mode used for reflowable spreads.
func (c *Controller) Mode() pagination.Mode {
	return c.mode
}

// Resize re-lays out the active spread for a new viewport.
func (c *Controller) Resize(vp pagination.Viewport) {
	c.viewport = vp
	if c.engine != nil {
		c.engine.Resize(vp)
	}
}

// SetSpreads replaces the spread sequence and deactivates the current spread.
func (c *Controller) SetSpreads(spreads []*spread.Spread) {
	c.Close()
	c.spreads = spreads
}

// Close stops the active engine.
func (c *Controller) Close() {
	if c.engine != nil {
		c.engine.Stop()
	}
	c.engine, c.current, c.active = nil, -1, 0
}

func (c *Controller) fail(err error) Result {
	return c.result(false, err)
}

func (c *Controller) result(ok bool, err error) Result {
	r := Result{OK: ok, Err: err, SpreadIndex: c.current}
	if c.engine != nil {
		r.Progression = c.engine.CurrentProgression()
		r.Page = c.engine.CurrentPage()
		r.PageCount = c.engine.PageCount()
	}
	return r
}

func validProgression(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
