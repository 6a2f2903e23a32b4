package publication

import "strings"

// Layout is the rendition layout of a resource.
type Layout string

const (
	LayoutReflowable Layout = "reflowable"
	LayoutFixed      Layout = "fixed"
)

// Page is the page-side hint of a fixed-layout resource.
type Page string

const (
	PageNone   Page = ""
	PageLeft   Page = "left"
	PageRight  Page = "right"
	PageCenter Page = "center"
)

// ReadingProgression is the direction in which resources are read.
type ReadingProgression string

const (
	LTR  ReadingProgression = "ltr"
	RTL  ReadingProgression = "rtl"
	TTB  ReadingProgression = "ttb"
	BTT  ReadingProgression = "btt"
	Auto ReadingProgression = "auto"
)

// IsReversed reports whether the visual order of pages is right to left.
func (rp ReadingProgression) IsReversed() bool {
	return rp == RTL || rp == BTT
}

// ParseReadingProgression converts an OPF/config value to a ReadingProgression.
// Unknown values map to Auto.
func ParseReadingProgression(s string) ReadingProgression {
	switch ReadingProgression(strings.ToLower(strings.TrimSpace(s))) {
	case LTR:
		return LTR
	case RTL:
		return RTL
	case TTB:
		return TTB
	case BTT:
		return BTT
	default:
		return Auto
	}
}

// Link identifies one resource of the reading order.
type Link struct {
	Href   string
	Type   string // media type
	Title  string
	Layout Layout
	Page   Page
}

// LayoutOrDefault returns the link layout, falling back to reflowable.
func (l Link) LayoutOrDefault() Layout {
	if l.Layout == "" {
		return LayoutReflowable
	}
	return l.Layout
}

// SplitHref splits "path#fragment" into its path and fragment parts.
func SplitHref(href string) (path, fragment string) {
	path, fragment, _ = strings.Cut(href, "#")
	return path, fragment
}
