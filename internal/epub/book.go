package epub

import (
	"fmt"
	"path"

	"go.uber.org/multierr"

	"github.com/yuanying/epubnav/internal/publication"
)

// Book is an opened publication: its archive, package document and table of
// contents.
type Book struct {
	files  *archive
	opf    *OPF
	toc    *NCX
	titles map[string]string
}

// OpenBook opens the EPUB at filePath and reads its package document and
// table of contents. A missing table of contents is not an error.
func OpenBook(filePath string) (b *Book, err error) {
	a, err := openArchive(filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, a.Close())
		}
	}()

	opfPath, err := a.packagePath()
	if err != nil {
		return nil, err
	}
	content, err := a.ReadFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OPF: %w", err)
	}
	opf, err := ParseOPF(content, path.Dir(opfPath))
	if err != nil {
		return nil, err
	}
	toc, err := LoadNCX(a, opf)
	if err != nil {
		return nil, fmt.Errorf("failed to load table of contents: %w", err)
	}

	return &Book{files: a, opf: opf, toc: toc, titles: toc.Titles()}, nil
}

// Close releases the archive.
func (b *Book) Close() error {
	return b.files.Close()
}

// Has reports whether href, with or without a fragment, names a resource of
// the archive.
func (b *Book) Has(href string) bool {
	return b.files.Has(href)
}

// Metadata returns the descriptive metadata of the package.
func (b *Book) Metadata() Metadata {
	return b.opf.Metadata
}

// TOC returns the table of contents, nil when the book has none.
func (b *Book) TOC() *NCX {
	return b.toc
}

// Titles maps resource paths to their table of contents label.
func (b *Book) Titles() map[string]string {
	return b.titles
}

// ReadingProgression returns the spine page progression direction.
func (b *Book) ReadingProgression() publication.ReadingProgression {
	return publication.ParseReadingProgression(b.opf.PageProgressionDirection)
}

// ReadingOrder returns a link per spine item, carrying the layout and page
// side hints of the package. Spine items missing from the manifest are
// skipped.
func (b *Book) ReadingOrder() []publication.Link {
	links := make([]publication.Link, 0, len(b.opf.Spine))
	for _, item := range b.opf.Spine {
		m, ok := b.opf.Manifest[item.IDRef]
		if !ok {
			continue
		}
		links = append(links, publication.Link{
			Href:   m.Href,
			Type:   m.MediaType,
			Title:  b.titles[m.Href],
			Layout: itemLayout(b.opf.Layout, item),
			Page:   itemPage(item),
		})
	}
	return links
}

// ReadFile reads a resource of the publication by archive path.
func (b *Book) ReadFile(href string) ([]byte, error) {
	return b.files.ReadFile(href)
}

// LoadContent reads and parses the XHTML resource at href, ignoring any
// fragment.
func (b *Book) LoadContent(href string) (*Content, error) {
	href, _ = publication.SplitHref(href)
	data, err := b.files.ReadFile(href)
	if err != nil {
		return nil, err
	}
	return LoadContent(href, data)
}

// itemLayout resolves rendition:layout for a spine item; the itemref
// override wins over the package default.
func itemLayout(packageLayout string, item SpineItem) publication.Layout {
	switch {
	case item.HasProperty("rendition:layout-pre-paginated"):
		return publication.LayoutFixed
	case item.HasProperty("rendition:layout-reflowable"):
		return publication.LayoutReflowable
	case packageLayout == "pre-paginated":
		return publication.LayoutFixed
	default:
		return publication.LayoutReflowable
	}
}

func itemPage(item SpineItem) publication.Page {
	for _, p := range item.Properties {
		switch p {
		case "page-spread-left", "rendition:page-spread-left":
			return publication.PageLeft
		case "page-spread-right", "rendition:page-spread-right":
			return publication.PageRight
		case "page-spread-center", "rendition:page-spread-center":
			return publication.PageCenter
		}
	}
	return publication.PageNone
}
