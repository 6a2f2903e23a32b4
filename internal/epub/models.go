package epub

import "slices"

// OPF is the part of the package document the navigator needs.
type OPF struct {
	Metadata Metadata
	Manifest map[string]ManifestItem // id -> item
	Spine    []SpineItem
	NCXPath  string

	// PageProgressionDirection is the spine attribute as written ("ltr", "rtl" or "").
	PageProgressionDirection string
	// Layout is the package-wide rendition:layout ("pre-paginated", "reflowable" or "").
	Layout string
}

// Metadata holds the descriptive fields shown by the CLI.
type Metadata struct {
	Title      string
	Language   string
	Identifier string
}

// ManifestItem is one resource of the publication.
type ManifestItem struct {
	ID         string
	Href       string // path inside the archive
	MediaType  string
	Properties []string
}

// HasProperty reports whether the item carries the given property.
func (m ManifestItem) HasProperty(p string) bool {
	return slices.Contains(m.Properties, p)
}

// SpineItem is a reference to a manifest item in reading order.
type SpineItem struct {
	IDRef      string
	Linear     bool
	Properties []string
}

// HasProperty reports whether the itemref carries the given property.
func (s SpineItem) HasProperty(p string) bool {
	return slices.Contains(s.Properties, p)
}
