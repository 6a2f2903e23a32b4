package epub

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yuanying/epubnav/internal/publication"
)

// NCX is the table of contents, read from the NCX document or, failing
// that, from the EPUB 3 navigation document.
type NCX struct {
	UID       string
	Depth     int
	DocTitle  string
	NavPoints []NavPoint
}

// NavPoint is a single entry of the table of contents.
type NavPoint struct {
	ID          string
	PlayOrder   int
	Label       string
	ContentPath string // fragment-free, absolute path within EPUB
	Fragment    string // fragment identifier (without #)
	Children    []NavPoint
}

// Titles maps every resource path to the label of the first entry pointing
// into it, in reading order of the table.
func (n *NCX) Titles() map[string]string {
	titles := map[string]string{}
	if n == nil {
		return titles
	}
	var walk func(points []NavPoint)
	walk = func(points []NavPoint) {
		for _, np := range points {
			if _, seen := titles[np.ContentPath]; !seen && np.ContentPath != "" && np.Label != "" {
				titles[np.ContentPath] = np.Label
			}
			walk(np.Children)
		}
	}
	walk(n.NavPoints)
	return titles
}

type ncxDocument struct {
	Head struct {
		Meta []struct {
			Name    string `xml:"name,attr"`
			Content string `xml:"content,attr"`
		} `xml:"meta"`
	} `xml:"head"`
	DocTitle struct {
		Text string `xml:"text"`
	} `xml:"docTitle"`
	NavMap struct {
		NavPoints []ncxNavPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type ncxNavPoint struct {
	ID        string `xml:"id,attr"`
	PlayOrder string `xml:"playOrder,attr"`
	Label     struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

// parseNCX parses an NCX document; baseDir is the directory of the NCX file.
func parseNCX(content []byte, baseDir string) (*NCX, error) {
	var doc ncxDocument
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse NCX XML: %w", err)
	}

	ncx := &NCX{DocTitle: strings.TrimSpace(doc.DocTitle.Text)}
	for _, m := range doc.Head.Meta {
		switch m.Name {
		case "dtb:uid":
			ncx.UID = strings.TrimSpace(m.Content)
		case "dtb:depth":
			ncx.Depth, _ = strconv.Atoi(strings.TrimSpace(m.Content))
		}
	}
	ncx.NavPoints = convertNavPoints(doc.NavMap.NavPoints, baseDir)
	return ncx, nil
}

func convertNavPoints(points []ncxNavPoint, baseDir string) []NavPoint {
	var out []NavPoint
	for _, p := range points {
		order, _ := strconv.Atoi(strings.TrimSpace(p.PlayOrder))
		contentPath, fragment := resolveHref(baseDir, strings.TrimSpace(p.Content.Src))
		out = append(out, NavPoint{
			ID:          p.ID,
			PlayOrder:   order,
			Label:       strings.TrimSpace(p.Label.Text),
			ContentPath: contentPath,
			Fragment:    fragment,
			Children:    convertNavPoints(p.Children, baseDir),
		})
	}
	return out
}

// parseNAV reads the toc nav of an EPUB 3 navigation document. Entries get
// generated ids and play orders in document order.
func parseNAV(content []byte, baseDir string) (*NCX, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse NAV document: %w", err)
	}

	toc := doc.Find("nav").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return slices.Contains(strings.Fields(s.AttrOr("epub:type", "")), "toc")
	}).First()

	ncx := &NCX{DocTitle: strings.TrimSpace(doc.Find("title").First().Text())}
	order := 0
	ncx.NavPoints = walkNavList(toc.ChildrenFiltered("ol"), baseDir, &order)
	return ncx, nil
}

func walkNavList(ol *goquery.Selection, baseDir string, order *int) []NavPoint {
	var out []NavPoint
	ol.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		*order++
		np := NavPoint{
			ID:        "nav-" + strconv.Itoa(*order),
			PlayOrder: *order,
		}

		nested := li.ChildrenFiltered("ol")
		if a := li.Find("a").NotSelection(nested.Find("a")).First(); a.Length() > 0 {
			np.Label = strings.TrimSpace(a.Text())
			np.ContentPath, np.Fragment = resolveHref(baseDir, strings.TrimSpace(a.AttrOr("href", "")))
		} else {
			// heading without a link: its label is the text outside the nested list
			np.Label = strings.TrimSpace(li.Clone().ChildrenFiltered("ol").Remove().End().Text())
		}

		np.Children = walkNavList(nested, baseDir, order)
		out = append(out, np)
	})
	return out
}

// resolveHref splits a TOC href and resolves its path against baseDir.
func resolveHref(baseDir, href string) (contentPath, fragment string) {
	p, fragment := publication.SplitHref(href)
	if p == "" {
		return "", fragment
	}
	return joinPath(baseDir, p), fragment
}

// findNAVPath returns the manifest path of the navigation document.
func findNAVPath(opf *OPF) (string, bool) {
	for _, item := range opf.Manifest {
		if item.HasProperty("nav") {
			return item.Href, true
		}
	}
	return "", false
}

// LoadNCX reads the table of contents, preferring the NCX document over the
// navigation document. It returns nil without error when the publication
// has neither.
func LoadNCX(r FileReader, opf *OPF) (*NCX, error) {
	if opf.NCXPath != "" {
		content, err := r.ReadFile(opf.NCXPath)
		switch {
		case err == nil:
			return parseNCX(content, path.Dir(opf.NCXPath))
		case !errors.Is(err, ErrFileNotFound):
			return nil, fmt.Errorf("failed to read NCX: %w", err)
		}
	}

	navPath, ok := findNAVPath(opf)
	if !ok {
		return nil, nil
	}
	content, err := r.ReadFile(navPath)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read NAV document: %w", err)
	}
	return parseNAV(content, path.Dir(navPath))
}
