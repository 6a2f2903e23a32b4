package epub

import (
	"archive/zip"
	"reflect"
	"testing"

	"github.com/yuanying/epubnav/internal/publication"
)

func TestOpenBook_ReadingOrder(t *testing.T) {
	files := map[string]string{
		"META-INF/container.xml": testContainer,
		"OEBPS/content.opf":      fixedLayoutOPF,
		"OEBPS/toc.ncx": `<ncx><navMap>
  <navPoint id="a" playOrder="1"><navLabel><text>Opening</text></navLabel><content src="text/p1.xhtml"/></navPoint>
</navMap></ncx>`,
		"OEBPS/text/p1.xhtml": `<html><body><p id="x">one</p></body></html>`,
	}
	b, err := OpenBook(writeEPUB(t, "application/epub+zip", zip.Store, files))
	if err != nil {
		t.Fatalf("OpenBook() error = %v", err)
	}
	defer b.Close()

	want := []publication.Link{
		{Href: "OEBPS/text/p1.xhtml", Type: "application/xhtml+xml", Title: "Opening", Layout: publication.LayoutFixed, Page: publication.PageCenter},
		{Href: "OEBPS/text/p2.xhtml", Type: "application/xhtml+xml", Layout: publication.LayoutFixed, Page: publication.PageRight},
		{Href: "OEBPS/text/p3.xhtml", Type: "application/xhtml+xml", Layout: publication.LayoutReflowable, Page: publication.PageLeft},
	}
	if got := b.ReadingOrder(); !reflect.DeepEqual(got, want) {
		t.Errorf("ReadingOrder() =\n%+v\nwant\n%+v", got, want)
	}
	if b.ReadingProgression() != publication.RTL {
		t.Errorf("ReadingProgression() = %q, want rtl", b.ReadingProgression())
	}
	if b.Metadata().Title != "Manga Vol. 1" {
		t.Errorf("Title = %q", b.Metadata().Title)
	}
	if b.TOC() == nil || b.Titles()["OEBPS/text/p1.xhtml"] != "Opening" {
		t.Errorf("Titles() = %v", b.Titles())
	}

	c, err := b.LoadContent("OEBPS/text/p1.xhtml")
	if err != nil {
		t.Fatalf("LoadContent() error = %v", err)
	}
	if !reflect.DeepEqual(c.IDs, []string{"x"}) {
		t.Errorf("IDs = %v, want [x]", c.IDs)
	}
	if _, err := b.LoadContent("OEBPS/text/p2.xhtml"); err == nil {
		t.Error("LoadContent() of a missing resource should fail")
	}
}

func TestOpenBook_Defaults(t *testing.T) {
	b, err := OpenBook(writeEPUB(t, "application/epub+zip", zip.Store, nil))
	if err != nil {
		t.Fatalf("OpenBook() error = %v", err)
	}
	defer b.Close()

	links := b.ReadingOrder()
	if len(links) != 1 || links[0].Layout != publication.LayoutReflowable || links[0].Page != publication.PageNone {
		t.Errorf("ReadingOrder() = %+v", links)
	}
	if b.ReadingProgression() != publication.Auto {
		t.Errorf("ReadingProgression() = %q, want auto", b.ReadingProgression())
	}
	if b.TOC() != nil || len(b.Titles()) != 0 {
		t.Errorf("TOC() = %+v, want none", b.TOC())
	}
}

func TestOpenBook_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name:  "missing package document",
			files: map[string]string{"META-INF/container.xml": testContainer},
		},
		{
			name: "broken package document",
			files: map[string]string{
				"META-INF/container.xml": testContainer,
				"OEBPS/content.opf":      "<package><metadata>",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := OpenBook(writeEPUB(t, "application/epub+zip", zip.Store, tt.files)); err == nil {
				t.Error("OpenBook() error = nil")
			}
		})
	}
}

func TestItemLayoutAndPage(t *testing.T) {
	tests := []struct {
		name       string
		pkg        string
		props      []string
		wantLayout publication.Layout
		wantPage   publication.Page
	}{
		{name: "defaults", wantLayout: publication.LayoutReflowable},
		{name: "package fixed", pkg: "pre-paginated", wantLayout: publication.LayoutFixed},
		{name: "itemref fixed", props: []string{"rendition:layout-pre-paginated", "page-spread-left"}, wantLayout: publication.LayoutFixed, wantPage: publication.PageLeft},
		{name: "itemref reflowable wins", pkg: "pre-paginated", props: []string{"rendition:layout-reflowable"}, wantLayout: publication.LayoutReflowable},
		{name: "rendition prefix", pkg: "pre-paginated", props: []string{"rendition:page-spread-right"}, wantLayout: publication.LayoutFixed, wantPage: publication.PageRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := SpineItem{IDRef: "x", Properties: tt.props}
			if got := itemLayout(tt.pkg, item); got != tt.wantLayout {
				t.Errorf("itemLayout() = %q, want %q", got, tt.wantLayout)
			}
			if got := itemPage(item); got != tt.wantPage {
				t.Errorf("itemPage() = %q, want %q", got, tt.wantPage)
			}
		})
	}
}
