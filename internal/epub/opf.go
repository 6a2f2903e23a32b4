package epub

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

// opfPackage represents the OPF XML structure
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	UniqueID string      `xml:"unique-identifier,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Title      []string        `xml:"http://purl.org/dc/elements/1.1/ title"`
	Language   []string        `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifier []opfIdentifier `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Meta       []opfMeta       `xml:"meta"`
}

type opfIdentifier struct {
	Value string `xml:",chardata"`
	ID    string `xml:"id,attr"`
}

// opfMeta represents a meta element (EPUB 2.0 and 3.0)
type opfMeta struct {
	Name     string `xml:"name,attr"`
	Content  string `xml:"content,attr"` // EPUB 2.0: attribute value
	Value    string `xml:",chardata"`    // EPUB 3.0: element text content
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	Toc                      string       `xml:"toc,attr"`
	PageProgressionDirection string       `xml:"page-progression-direction,attr"`
	ItemRefs                 []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef      string `xml:"idref,attr"`
	Linear     string `xml:"linear,attr"`
	Properties string `xml:"properties,attr"`
}

// ParseOPF parses an OPF file content and returns the OPF structure.
// opfDir is the directory containing the OPF file (e.g., "OEBPS/").
func ParseOPF(content []byte, opfDir string) (*OPF, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse OPF XML: %w", err)
	}

	opf := &OPF{
		Metadata:                 parseMetadata(&pkg.Metadata, pkg.UniqueID),
		Manifest:                 make(map[string]ManifestItem, len(pkg.Manifest.Items)),
		PageProgressionDirection: strings.TrimSpace(pkg.Spine.PageProgressionDirection),
		Layout:                   renditionMeta(&pkg.Metadata, "rendition:layout"),
	}

	for _, item := range pkg.Manifest.Items {
		opf.Manifest[item.ID] = ManifestItem{
			ID:         item.ID,
			Href:       joinPath(opfDir, item.Href),
			MediaType:  item.MediaType,
			Properties: strings.Fields(item.Properties),
		}
	}

	for _, ref := range pkg.Spine.ItemRefs {
		opf.Spine = append(opf.Spine, SpineItem{
			IDRef:      ref.IDRef,
			Linear:     ref.Linear != "no",
			Properties: strings.Fields(ref.Properties),
		})
	}

	if pkg.Spine.Toc != "" {
		if ncxItem, ok := opf.Manifest[pkg.Spine.Toc]; ok {
			opf.NCXPath = ncxItem.Href
		}
	}

	return opf, nil
}

func parseMetadata(meta *opfMetadata, uniqueID string) Metadata {
	var md Metadata
	if len(meta.Title) > 0 {
		md.Title = strings.TrimSpace(meta.Title[0])
	}
	if len(meta.Language) > 0 {
		md.Language = strings.TrimSpace(meta.Language[0])
	}
	for _, id := range meta.Identifier {
		if id.ID == uniqueID {
			md.Identifier = strings.TrimSpace(id.Value)
			break
		}
	}
	if md.Identifier == "" && len(meta.Identifier) > 0 {
		md.Identifier = strings.TrimSpace(meta.Identifier[0].Value)
	}
	return md
}

// renditionMeta returns the value of a package-wide rendition property.
// Refining metas apply to a single item and are skipped.
func renditionMeta(meta *opfMetadata, property string) string {
	for _, m := range meta.Meta {
		if m.Refines != "" {
			continue
		}
		if m.Property == property {
			return strings.TrimSpace(m.Value)
		}
		// EPUB 2 style, as written by some converters
		if m.Name == property {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}

// joinPath joins the OPF directory with a manifest href. Archive paths
// always use forward slashes.
func joinPath(base, rel string) string {
	if base == "" {
		return rel
	}
	return path.Join(base, rel)
}
