package pagination

import (
	"go.uber.org/zap"

	"github.com/yuanying/epubnav/internal/surface"
)

// Mode selects the strategy of a Reflowable engine.
type Mode int

const (
	ModePaginated Mode = iota
	ModeScrolling
)

func (m Mode) String() string {
	if m == ModeScrolling {
		return "scrolling"
	}
	return "paginated"
}

// strategy is an engine that can be re-prepared on an already started layout.
type strategy interface {
	Engine
	prepare()
}

// Reflowable switches between the paginated and scrolling strategies at
// runtime. Both strategies share the same surfaces.
//
// The current position is not carried over by SetMode; callers wanting to
// keep it go back to the progression they read before the switch.
type Reflowable struct {
	layout    *layout
	mode      Mode
	paginated *Paginated
	scrolling *Scrolling
}

// NewReflowable returns a mode-switching engine. Call Start before use.
func NewReflowable(surfaces []surface.Surface, vp Viewport, mode Mode, log *zap.Logger) *Reflowable {
	l := newLayout(surfaces, vp, log)
	return &Reflowable{
		layout:    l,
		mode:      mode,
		paginated: &Paginated{layout: l},
		scrolling: &Scrolling{layout: l},
	}
}

func (r *Reflowable) active() strategy {
	if r.mode == ModeScrolling {
		return r.scrolling
	}
	return r.paginated
}

// Mode returns the active strategy.
func (r *Reflowable) Mode() Mode {
	return r.mode
}

// SetMode signals the mode to every surface, re-applies sizing and, when
// paginated, probes the extent quirk again.
func (r *Reflowable) SetMode(m Mode) {
	r.mode = m
	r.active().prepare()
	r.layout.log.Debug("Layout mode set", zap.Stringer("mode", m))
}

func (r *Reflowable) Start(progression float64) {
	r.SetMode(r.mode)
	r.active().GoToProgression(progression)
}

func (r *Reflowable) Stop() {
	r.layout.teardown()
	r.paginated.fixedExtent = false
}

func (r *Reflowable) Resize(vp Viewport) {
	r.active().Resize(vp)
}

func (r *Reflowable) SetActiveSurface(i int) bool {
	return r.active().SetActiveSurface(i)
}

func (r *Reflowable) CurrentProgression() float64 { return r.active().CurrentProgression() }

func (r *Reflowable) GoToProgression(p float64) bool { return r.active().GoToProgression(p) }

func (r *Reflowable) GoToFragment(id string, relative bool) bool {
	return r.active().GoToFragment(id, relative)
}

func (r *Reflowable) GoToDirection(d Direction) bool { return r.active().GoToDirection(d) }

func (r *Reflowable) AtStart() bool { return r.active().AtStart() }

func (r *Reflowable) AtEnd() bool { return r.active().AtEnd() }

func (r *Reflowable) CurrentPage() int { return r.active().CurrentPage() }

func (r *Reflowable) PageCount() int { return r.active().PageCount() }
