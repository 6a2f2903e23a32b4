// Package spread groups the reading order into one- or two-page spreads.
package spread

import (
	"errors"

	"github.com/yuanying/epubnav/internal/publication"
)

var ErrInvalidPageCount = errors.New("page count per spread must be 1 or 2")

// Spread is a list of resources displayed together on screen.
type Spread struct {
	// PageCount is the number of page slots in the spread (1 or 2).
	PageCount int
	// Links are in reading order.
	Links []publication.Link
	// LinksLTR are the same links ordered from the visually leftmost one.
	LinksLTR           []publication.Link
	ReadingProgression publication.ReadingProgression
	Layout             publication.Layout
}

func newSpread(pageCount int, links []publication.Link, rp publication.ReadingProgression, layout publication.Layout) *Spread {
	s := &Spread{
		PageCount:          pageCount,
		Links:              links,
		ReadingProgression: rp,
		Layout:             layout,
	}
	s.LinksLTR = make([]publication.Link, len(links))
	copy(s.LinksLTR, links)
	if rp.IsReversed() {
		for i, j := 0, len(s.LinksLTR)-1; i < j; i, j = i+1, j-1 {
			s.LinksLTR[i], s.LinksLTR[j] = s.LinksLTR[j], s.LinksLTR[i]
		}
	}
	return s
}

// Left returns the leftmost resource of the spread.
func (s *Spread) Left() publication.Link {
	return s.LinksLTR[0]
}

// Right returns the rightmost resource of the spread.
func (s *Spread) Right() publication.Link {
	return s.LinksLTR[len(s.LinksLTR)-1]
}

// Leading returns the resource the reader encounters first.
func (s *Spread) Leading() publication.Link {
	return s.Links[0]
}

// Contains returns the link with exactly the given href.
func (s *Spread) Contains(href string) (publication.Link, bool) {
	if i, ok := s.IndexOf(href); ok {
		return s.Links[i], true
	}
	return publication.Link{}, false
}

// IndexOf returns the reading-order index of href within the spread.
func (s *Spread) IndexOf(href string) (int, bool) {
	for i, l := range s.Links {
		if l.Href == href {
			return i, true
		}
	}
	return -1, false
}

// FindSpread returns the index of the spread holding href.
func FindSpread(spreads []*Spread, href string) (int, bool) {
	for i, s := range spreads {
		if _, ok := s.Contains(href); ok {
			return i, true
		}
	}
	return -1, false
}

// MakeSpreads builds the spreads for a reading order.
func MakeSpreads(links []publication.Link, rp publication.ReadingProgression, pageCountPerSpread int) ([]*Spread, error) {
	switch pageCountPerSpread {
	case 1:
		return makeOnePageSpreads(links, rp), nil
	case 2:
		return makeTwoPageSpreads(links, rp), nil
	default:
		return nil, ErrInvalidPageCount
	}
}

func makeOnePageSpreads(links []publication.Link, rp publication.ReadingProgression) []*Spread {
	spreads := make([]*Spread, 0, len(links))
	for _, l := range links {
		spreads = append(spreads, newSpread(1, []publication.Link{l}, rp, l.LayoutOrDefault()))
	}
	return spreads
}

// makeTwoPageSpreads scans forward once; a resource is never reconsidered
// after it was committed to a spread.
func makeTwoPageSpreads(links []publication.Link, rp publication.ReadingProgression) []*Spread {
	var spreads []*Spread
	for i := 0; i < len(links); {
		first := links[i]
		layout := first.LayoutOrDefault()
		if i+1 < len(links) {
			second := links[i+1]
			if layout == publication.LayoutFixed && second.LayoutOrDefault() == publication.LayoutFixed && areConsecutive(first, second, rp) {
				spreads = append(spreads, newSpread(2, []publication.Link{first, second}, rp, layout))
				i += 2
				continue
			}
		}
		spreads = append(spreads, newSpread(1, []publication.Link{first}, rp, layout))
		i++
	}
	return spreads
}

// areConsecutive reports whether first and second face each other in a spread.
func areConsecutive(first, second publication.Link, rp publication.ReadingProgression) bool {
	leading, trailing := publication.PageLeft, publication.PageRight
	if rp.IsReversed() {
		leading, trailing = publication.PageRight, publication.PageLeft
	}
	firstPage, secondPage := first.Page, second.Page
	if firstPage == publication.PageNone {
		firstPage = leading
	}
	if secondPage == publication.PageNone {
		secondPage = trailing
	}
	return firstPage == leading && secondPage == trailing
}
