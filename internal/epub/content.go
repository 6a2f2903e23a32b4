package epub

import (
	"bytes"
	"fmt"
	"path"

	"github.com/PuerkitoBio/goquery"
)

// Content is a parsed XHTML resource of the reading order.
type Content struct {
	Path      string            // File path
	Document  *goquery.Document // Parsed HTML document
	ImageRefs []string          // Referenced image paths, in document order
	IDs       []string          // Element ids usable as fragments
}

// LoadContent parses an XHTML resource. filePath is the path within the
// EPUB and is used to resolve relative image references.
func LoadContent(filePath string, content []byte) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XHTML: %w", err)
	}

	c := &Content{
		Path:      filePath,
		Document:  doc,
		ImageRefs: []string{},
		IDs:       []string{},
	}

	doc.Find(ImageSelector).Each(func(_ int, s *goquery.Selection) {
		if src, ok := ImageSource(s); ok {
			c.ImageRefs = append(c.ImageRefs, c.ResolveRef(src))
		}
	})

	doc.Find("body [id]").Each(func(_ int, s *goquery.Selection) {
		c.IDs = append(c.IDs, s.AttrOr("id", ""))
	})

	return c, nil
}

// ImageSelector matches HTML and SVG images.
const ImageSelector = "img[src], image"

// ImageSource returns the unresolved reference of an image element.
func ImageSource(s *goquery.Selection) (string, bool) {
	src, ok := s.Attr("src")
	if !ok {
		// SVG image elements; the parser keeps the xlink prefix as a namespace
		src, ok = s.Attr("href")
	}
	return src, ok && src != ""
}

// ResolveRef resolves a reference found in the document to an archive path.
func (c *Content) ResolveRef(ref string) string {
	return resolvePath(path.Dir(c.Path), ref)
}

// resolvePath resolves a relative reference against a base directory,
// e.g. ("text", "../images/photo.jpg") -> "images/photo.jpg".
func resolvePath(baseDir, rel string) string {
	return path.Clean(path.Join(baseDir, rel))
}
