package headless

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/yuanying/epubnav/internal/epub"
	"github.com/yuanying/epubnav/internal/pagination"
	"github.com/yuanying/epubnav/internal/surface"
)

var testMetrics = Metrics{LineHeight: 20, CharWidth: 10, FixedExtent: true}

// chapter lays out, at 400x100 with 20px lines of 40 characters, as:
// column 0 title and the first four lines of p1, column 1 the last line of
// p1 and p2, column 2 the figure, column 3 p3.
var chapter = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter</title><style>p { margin: 0 }</style></head>
<body>
  <h1 id="title">Title</h1>
  <p id="p1">` + strings.Repeat("a", 200) + `</p>
  <p id="p2">` + strings.Repeat("b", 40) + `</p>
  <img id="fig" src="fig.png" width="800" height="400"/>
  <p id="p3">x</p>
</body>
</html>`

func newSurface(t *testing.T, html string, m Metrics) *Surface {
	t.Helper()
	content, err := epub.LoadContent("OEBPS/text/chapter.xhtml", []byte(html))
	if err != nil {
		t.Fatalf("LoadContent() error = %v", err)
	}
	s := New(content, nil, m)
	s.SetViewportWidth(400)
	s.SetViewportHeight(100)
	return s
}

func offsets(s *Surface, ids ...string) []float64 {
	out := make([]float64, len(ids))
	for i, id := range ids {
		out[i] = s.BoundingLeftOffset(s.FindElementByID(id))
	}
	return out
}

func TestSurface_Columns(t *testing.T) {
	s := newSurface(t, chapter, testMetrics)

	if got := s.ContentWidth(); got != 1600 {
		t.Errorf("ContentWidth() = %v, want 1600", got)
	}
	if got := s.ContentHeight(); got != 100 {
		t.Errorf("ContentHeight() = %v, want 100", got)
	}

	got := offsets(s, "title", "p1", "p2", "fig", "p3")
	want := []float64{0, 0, 400, 800, 1200}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("offsets = %v, want %v", got, want)
			break
		}
	}

	s.SetScrollLeft(800)
	if got := s.BoundingLeftOffset(s.FindElementByID("p3")); got != 400 {
		t.Errorf("BoundingLeftOffset(p3) at 800 = %v, want 400", got)
	}
	s.SetScrollLeft(5000)
	if s.ScrollLeft() != 1200 {
		t.Errorf("ScrollLeft() = %v, want clamped 1200", s.ScrollLeft())
	}
	s.SetScrollLeft(-10)
	if s.ScrollLeft() != 0 {
		t.Errorf("ScrollLeft() = %v, want 0", s.ScrollLeft())
	}
	if s.SetScrollTop(50); s.ScrollTop() != 0 {
		t.Errorf("ScrollTop() = %v, want 0 while paginated", s.ScrollTop())
	}
}

func TestSurface_ShrinkingExtent(t *testing.T) {
	m := testMetrics
	m.FixedExtent = false
	s := newSurface(t, chapter, m)
	s.SetScrollLeft(400)
	if got := s.ContentWidth(); got != 1200 {
		t.Errorf("ContentWidth() = %v, want 1200", got)
	}
}

func TestSurface_FindElementByID(t *testing.T) {
	s := newSurface(t, chapter, testMetrics)
	if s.FindElementByID("missing") != nil {
		t.Error("FindElementByID(missing) != nil")
	}
	el, ok := s.FindElementByID("fig").(*Element)
	if !ok || el.ID() != "fig" {
		t.Errorf("FindElementByID(fig) = %v", el)
	}
}

func TestSurface_HeightOverride(t *testing.T) {
	s := newSurface(t, chapter, testMetrics)
	p1 := s.FindElementByID("p1")

	p1.SetStyle("height", "0")
	if got := s.BoundingLeftOffset(s.FindElementByID("p2")); got != 0 {
		t.Errorf("BoundingLeftOffset(p2) with p1 collapsed = %v, want 0", got)
	}
	p1.SetStyle("height", "")
	if got := s.BoundingLeftOffset(s.FindElementByID("p2")); got != 400 {
		t.Errorf("BoundingLeftOffset(p2) = %v, want 400", got)
	}
}

func TestSurface_ScrollMode(t *testing.T) {
	s := newSurface(t, chapter, testMetrics)
	s.SetScrollLeft(800)
	s.SetCustomStyleProperty(surface.ScrollProperty, surface.ScrollOn)

	if s.ScrollLeft() != 0 {
		t.Errorf("ScrollLeft() = %v, want reset to 0", s.ScrollLeft())
	}
	if got := s.ContentWidth(); got != 400 {
		t.Errorf("ContentWidth() = %v, want 400", got)
	}
	// 20 + 100 + 20 + 400 + 20
	if got := s.ContentHeight(); got != 560 {
		t.Errorf("ContentHeight() = %v, want 560", got)
	}
	p3 := s.FindElementByID("p3")
	if got := s.ElementTopOffset(p3); got != 540 {
		t.Errorf("ElementTopOffset(p3) = %v, want 540", got)
	}

	s.ScrollIntoView(p3)
	if s.ScrollTop() != 460 {
		t.Errorf("ScrollTop() = %v, want clamped 460", s.ScrollTop())
	}

	s.QueryImages()[0].SetStyle("max-width", "300px")
	if got := s.ContentHeight(); got != 310 {
		t.Errorf("ContentHeight() with max-width = %v, want 310", got)
	}

	s.SetCustomStyleProperty(surface.ScrollProperty, surface.ScrollOff)
	if s.ScrollTop() != 0 {
		t.Errorf("ScrollTop() = %v, want reset to 0", s.ScrollTop())
	}
}

func TestSurface_ScrollIntoViewColumns(t *testing.T) {
	s := newSurface(t, chapter, testMetrics)
	s.ScrollIntoView(s.FindElementByID("fig"))
	if s.ScrollLeft() != 800 {
		t.Errorf("ScrollLeft() = %v, want 800", s.ScrollLeft())
	}
}

func TestSurface_Anchors(t *testing.T) {
	html := `<html><body>
<p>lead text <a id="note">note</a></p>
<div id="wrap"><p id="first">one</p><p>two</p></div>
<a id="end"></a>
</body></html>`
	s := newSurface(t, html, testMetrics)
	s.SetCustomStyleProperty(surface.ScrollProperty, surface.ScrollOn)

	tests := []struct {
		id   string
		want float64
	}{
		{"note", 0},
		{"wrap", 20},
		{"first", 20},
		{"end", 60},
	}
	for _, tt := range tests {
		el := s.FindElementByID(tt.id)
		if el == nil {
			t.Errorf("FindElementByID(%q) = nil", tt.id)
			continue
		}
		if got := s.ElementTopOffset(el); got != tt.want {
			t.Errorf("ElementTopOffset(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}

	// a container of several blocks does not collapse with a height override
	s.FindElementByID("wrap").SetStyle("height", "0")
	if got := s.ElementTopOffset(s.FindElementByID("end")); got != 60 {
		t.Errorf("ElementTopOffset(end) = %v, want 60", got)
	}
}

func TestSurface_DefaultMetrics(t *testing.T) {
	s := newSurface(t, chapter, Metrics{})
	if s.metrics != DefaultMetrics() {
		t.Errorf("metrics = %+v, want %+v", s.metrics, DefaultMetrics())
	}
}

func TestSurface_PaginatedEngine(t *testing.T) {
	tests := []struct {
		name        string
		fixedExtent bool
	}{
		{"fixed extent", true},
		{"shrinking extent", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMetrics
			m.FixedExtent = tt.fixedExtent
			s := newSurface(t, chapter, m)
			e := pagination.NewPaginated([]surface.Surface{s}, pagination.Viewport{Width: 400, Height: 100}, zaptest.NewLogger(t))
			e.Start(0)

			if !e.GoToFragment("p3", false) {
				t.Fatal("GoToFragment(p3) = false")
			}
			if s.ScrollLeft() != 1200 {
				t.Errorf("ScrollLeft() = %v, want 1200", s.ScrollLeft())
			}
			if e.CurrentPage() != 4 || e.PageCount() != 4 {
				t.Errorf("page = %d/%d, want 4/4", e.CurrentPage(), e.PageCount())
			}
			if !e.AtEnd() {
				t.Error("AtEnd() = false on the last column")
			}
			if s.FindElementByID("p3").Style("height") != "" {
				t.Error("height override left on p3")
			}

			e.GoToProgression(0.5)
			if s.ScrollLeft() != 800 {
				t.Errorf("ScrollLeft() at 0.5 = %v, want 800", s.ScrollLeft())
			}
		})
	}
}

func TestCells(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"日本語", 6},
		{"ＡＢ", 4},
		{"ｱｲ", 2}, // halfwidth katakana
		{"a 語", 4},
	}
	for _, tt := range tests {
		if got := cells(tt.text); got != tt.want {
			t.Errorf("cells(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestSurface_WideText(t *testing.T) {
	html := `<html><body><p id="a">` + strings.Repeat("あ", 20) + `</p><p id="b">` +
		strings.Repeat("あ", 21) + `</p><p id="end">x</p></body></html>`
	s := newSurface(t, html, testMetrics)
	s.SetCustomStyleProperty(surface.ScrollProperty, surface.ScrollOn)

	// 40 cells fill one line, 42 wrap onto a second
	if got := s.ElementTopOffset(s.FindElementByID("end")); got != 60 {
		t.Errorf("ElementTopOffset(end) = %v, want 60", got)
	}
}
