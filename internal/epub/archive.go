package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/yuanying/epubnav/internal/publication"
)

var (
	ErrInvalidMimetype    = errors.New("invalid mimetype: must be 'application/epub+zip'")
	ErrMimetypeCompressed = errors.New("mimetype must not be compressed")
	ErrMimetypeNotFound   = errors.New("mimetype file not found")
	ErrContainerNotFound  = errors.New("META-INF/container.xml not found")
	ErrOPFPathNotFound    = errors.New("OPF path not found in container.xml")
	ErrFileNotFound       = errors.New("file not found in archive")
)

// FileReader reads publication resources by archive path.
type FileReader interface {
	ReadFile(href string) ([]byte, error)
}

// archive indexes the entries of an EPUB zip by name. Lookups fall back to a
// case-insensitive match, some packagers write manifest hrefs whose case
// differs from the stored entry.
type archive struct {
	zr     *zip.ReadCloser
	files  map[string]*zip.File
	folded map[string]*zip.File
}

// openArchive opens the zip at filePath and checks the mimetype entry.
func openArchive(filePath string) (*archive, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open EPUB: %w", err)
	}
	a := &archive{
		zr:     zr,
		files:  make(map[string]*zip.File, len(zr.File)),
		folded: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		name := strings.TrimPrefix(path.Clean("/"+f.Name), "/")
		a.files[name] = f
		if _, dup := a.folded[strings.ToLower(name)]; !dup {
			a.folded[strings.ToLower(name)] = f
		}
	}
	if err := a.checkMimetype(); err != nil {
		zr.Close()
		return nil, err
	}
	return a, nil
}

func (a *archive) Close() error {
	return a.zr.Close()
}

func (a *archive) lookup(href string) (*zip.File, bool) {
	name := archiveName(href)
	if f, ok := a.files[name]; ok {
		return f, true
	}
	f, ok := a.folded[strings.ToLower(name)]
	return f, ok
}

func (a *archive) Has(href string) bool {
	_, ok := a.lookup(href)
	return ok
}

// ReadFile reads the entry an href points to; fragments and percent
// escapes in href are resolved first.
func (a *archive) ReadFile(href string) ([]byte, error) {
	f, ok := a.lookup(href)
	if !ok {
		return nil, fmt.Errorf("%s: %w", href, ErrFileNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", href, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (a *archive) checkMimetype() error {
	f, ok := a.files["mimetype"]
	if !ok {
		return ErrMimetypeNotFound
	}
	if f.Method != zip.Store {
		return ErrMimetypeCompressed
	}
	content, err := a.ReadFile("mimetype")
	if err != nil {
		return fmt.Errorf("failed to read mimetype: %w", err)
	}
	if strings.TrimSpace(string(content)) != "application/epub+zip" {
		return ErrInvalidMimetype
	}
	return nil
}

// packagePath reads META-INF/container.xml and returns the path of the
// package document it declares.
func (a *archive) packagePath() (string, error) {
	content, err := a.ReadFile("META-INF/container.xml")
	if err != nil {
		return "", ErrContainerNotFound
	}
	var c struct {
		Rootfiles []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfiles>rootfile"`
	}
	if err := xml.Unmarshal(content, &c); err != nil {
		return "", fmt.Errorf("failed to parse container.xml: %w", err)
	}
	if len(c.Rootfiles) == 0 {
		return "", ErrOPFPathNotFound
	}
	for _, rf := range c.Rootfiles {
		if rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "" {
			return archiveName(rf.FullPath), nil
		}
	}
	return archiveName(c.Rootfiles[0].FullPath), nil
}

// archiveName maps an href to the zip entry name it designates.
func archiveName(href string) string {
	href, _ = publication.SplitHref(href)
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	return strings.TrimPrefix(path.Clean("/"+href), "/")
}
