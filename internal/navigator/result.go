package navigator

import "errors"

// Reasons a navigation call did not move. Callers branch on Result.OK; the
// error is there for logs.
var (
	ErrInvalidProgression = errors.New("progression must be within [0,1]")
	ErrFragmentNotFound   = errors.New("fragment not found")
	ErrHrefNotFound       = errors.New("href is not in any spread")
	ErrSpreadOutOfRange   = errors.New("spread index out of range")
	ErrNoActiveSpread     = errors.New("no active spread")
	ErrNoStep             = errors.New("layout mode has no discrete steps")
	ErrEdge               = errors.New("no spread beyond the current one")
)

// Result is the outcome of a navigation call and the position it left the
// reader at.
type Result struct {
	OK          bool
	Err         error
	SpreadIndex int
	Progression float64
	Page        int
	PageCount   int
}
