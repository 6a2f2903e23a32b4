package publication

import "strings"

// Locations points into a resource.
type Locations struct {
	Fragments   []string
	Progression *float64 // progression within the resource, [0,1]
}

// Locator is a navigation target inside a resource.
type Locator struct {
	Href      string
	Type      string
	Title     string
	Locations Locations
}

// IsEmpty reports whether the locator carries no data at all.
func (l Locator) IsEmpty() bool {
	return l.Href == "" && l.Type == "" && l.Title == "" &&
		len(l.Locations.Fragments) == 0 && l.Locations.Progression == nil
}

// Fragment returns the first non-blank fragment, trimmed.
func (l Locator) Fragment() string {
	for _, f := range l.Locations.Fragments {
		if f = strings.TrimSpace(f); f != "" {
			return f
		}
	}
	return ""
}

// PageLocation is either a progression or a locator.
type PageLocation struct {
	Progression *float64
	Locator     *Locator
}

// Start is the beginning of a spread.
func Start() PageLocation {
	return AtProgression(0)
}

// End is the end of a spread.
func End() PageLocation {
	return AtProgression(1)
}

// AtProgression returns a location at progression p.
func AtProgression(p float64) PageLocation {
	return PageLocation{Progression: &p}
}

// ForLocator returns a location for the given locator.
func ForLocator(l Locator) PageLocation {
	return PageLocation{Locator: &l}
}

// IsStart reports whether the location designates the very beginning.
func (pl PageLocation) IsStart() bool {
	if pl.Progression != nil {
		return *pl.Progression == 0
	}
	if pl.Locator != nil && pl.Locator.Locations.Progression != nil {
		return *pl.Locator.Locations.Progression == 0
	}
	return false
}

// Float returns a pointer to v, for building Locations literals.
func Float(v float64) *float64 {
	return &v
}
