package spread

import (
	"errors"
	"testing"

	"github.com/yuanying/epubnav/internal/publication"
)

func fixed(href string, page publication.Page) publication.Link {
	return publication.Link{Href: href, Layout: publication.LayoutFixed, Page: page}
}

func reflowable(href string) publication.Link {
	return publication.Link{Href: href, Layout: publication.LayoutReflowable}
}

func hrefs(links []publication.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Href
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMakeSpreads_OnePage(t *testing.T) {
	links := []publication.Link{fixed("a", publication.PageLeft), reflowable("b"), {Href: "c"}}
	spreads, err := MakeSpreads(links, publication.LTR, 1)
	if err != nil {
		t.Fatalf("MakeSpreads() error = %v", err)
	}
	if len(spreads) != 3 {
		t.Fatalf("len(spreads) = %d, want 3", len(spreads))
	}
	wantLayouts := []publication.Layout{publication.LayoutFixed, publication.LayoutReflowable, publication.LayoutReflowable}
	for i, s := range spreads {
		if s.PageCount != 1 {
			t.Errorf("spreads[%d].PageCount = %d, want 1", i, s.PageCount)
		}
		if s.Layout != wantLayouts[i] {
			t.Errorf("spreads[%d].Layout = %q, want %q", i, s.Layout, wantLayouts[i])
		}
	}
}

func TestMakeSpreads_ReflowableNeverPaired(t *testing.T) {
	links := []publication.Link{reflowable("a"), reflowable("b"), reflowable("c"), reflowable("d")}
	spreads, err := MakeSpreads(links, publication.LTR, 2)
	if err != nil {
		t.Fatalf("MakeSpreads() error = %v", err)
	}
	if len(spreads) != len(links) {
		t.Fatalf("len(spreads) = %d, want %d", len(spreads), len(links))
	}
	for i, s := range spreads {
		if len(s.Links) != 1 || s.Links[0].Href != links[i].Href {
			t.Errorf("spreads[%d].Links = %v, want [%s]", i, hrefs(s.Links), links[i].Href)
		}
	}
}

func TestMakeSpreads_TwoPage(t *testing.T) {
	tests := []struct {
		name  string
		links []publication.Link
		rp    publication.ReadingProgression
		want  [][]string
	}{
		{
			name:  "left right pair under ltr",
			links: []publication.Link{fixed("A", publication.PageLeft), fixed("B", publication.PageRight)},
			rp:    publication.LTR,
			want:  [][]string{{"A", "B"}},
		},
		{
			name:  "left left does not pair",
			links: []publication.Link{fixed("A", publication.PageLeft), fixed("B", publication.PageLeft)},
			rp:    publication.LTR,
			want:  [][]string{{"A"}, {"B"}},
		},
		{
			name:  "missing hints default to facing pages",
			links: []publication.Link{fixed("A", ""), fixed("B", ""), fixed("C", "")},
			rp:    publication.Auto,
			want:  [][]string{{"A", "B"}, {"C"}},
		},
		{
			name:  "right left pair under rtl",
			links: []publication.Link{fixed("A", publication.PageRight), fixed("B", publication.PageLeft)},
			rp:    publication.RTL,
			want:  [][]string{{"A", "B"}},
		},
		{
			name:  "left right does not pair under rtl",
			links: []publication.Link{fixed("A", publication.PageLeft), fixed("B", publication.PageRight)},
			rp:    publication.RTL,
			want:  [][]string{{"A"}, {"B"}},
		},
		{
			name:  "center page stands alone",
			links: []publication.Link{fixed("cover", publication.PageCenter), fixed("A", publication.PageLeft), fixed("B", publication.PageRight)},
			rp:    publication.LTR,
			want:  [][]string{{"cover"}, {"A", "B"}},
		},
		{
			name:  "greedy scan never pulls back",
			links: []publication.Link{fixed("A", publication.PageRight), fixed("B", publication.PageLeft), fixed("C", publication.PageRight)},
			rp:    publication.LTR,
			want:  [][]string{{"A"}, {"B", "C"}},
		},
		{
			name:  "fixed next to reflowable",
			links: []publication.Link{fixed("A", publication.PageLeft), reflowable("B")},
			rp:    publication.LTR,
			want:  [][]string{{"A"}, {"B"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spreads, err := MakeSpreads(tt.links, tt.rp, 2)
			if err != nil {
				t.Fatalf("MakeSpreads() error = %v", err)
			}
			if len(spreads) != len(tt.want) {
				t.Fatalf("len(spreads) = %d, want %d", len(spreads), len(tt.want))
			}
			for i, s := range spreads {
				if got := hrefs(s.Links); !equal(got, tt.want[i]) {
					t.Errorf("spreads[%d].Links = %v, want %v", i, got, tt.want[i])
				}
				if s.PageCount != len(tt.want[i]) {
					t.Errorf("spreads[%d].PageCount = %d, want %d", i, s.PageCount, len(tt.want[i]))
				}
			}
		})
	}
}

func TestMakeSpreads_InvalidPageCount(t *testing.T) {
	if _, err := MakeSpreads(nil, publication.LTR, 3); !errors.Is(err, ErrInvalidPageCount) {
		t.Errorf("MakeSpreads(3) error = %v, want %v", err, ErrInvalidPageCount)
	}
}

func TestSpread_LeftRightLeading(t *testing.T) {
	links := []publication.Link{fixed("A", publication.PageRight), fixed("B", publication.PageLeft)}
	spreads, err := MakeSpreads(links, publication.RTL, 2)
	if err != nil {
		t.Fatalf("MakeSpreads() error = %v", err)
	}
	s := spreads[0]
	if got := s.Leading().Href; got != "A" {
		t.Errorf("Leading() = %q, want %q", got, "A")
	}
	if got := s.Left().Href; got != "B" {
		t.Errorf("Left() = %q, want %q", got, "B")
	}
	if got := s.Right().Href; got != "A" {
		t.Errorf("Right() = %q, want %q", got, "A")
	}
	// Links must stay in reading order.
	if got := hrefs(s.Links); !equal(got, []string{"A", "B"}) {
		t.Errorf("Links = %v, want [A B]", got)
	}
}

func TestSpread_Contains(t *testing.T) {
	spreads, _ := MakeSpreads([]publication.Link{fixed("A", ""), fixed("B", "")}, publication.LTR, 2)
	s := spreads[0]
	if l, ok := s.Contains("B"); !ok || l.Href != "B" {
		t.Errorf("Contains(B) = (%v, %v), want found", l, ok)
	}
	if _, ok := s.Contains("B#frag"); ok {
		t.Error("Contains(B#frag) = found, want exact match only")
	}
	if i, ok := s.IndexOf("B"); !ok || i != 1 {
		t.Errorf("IndexOf(B) = (%d, %v), want (1, true)", i, ok)
	}
}

func TestFindSpread_FirstSpreadIsAddressable(t *testing.T) {
	spreads, _ := MakeSpreads([]publication.Link{reflowable("a"), reflowable("b")}, publication.LTR, 1)
	if i, ok := FindSpread(spreads, "a"); !ok || i != 0 {
		t.Errorf("FindSpread(a) = (%d, %v), want (0, true)", i, ok)
	}
	if _, ok := FindSpread(spreads, "missing"); ok {
		t.Error("FindSpread(missing) = found")
	}
}
