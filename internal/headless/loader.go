package headless

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/yuanying/epubnav/internal/epub"
	"github.com/yuanying/epubnav/internal/spread"
	"github.com/yuanying/epubnav/internal/surface"
)

var ErrUnsupportedImage = errors.New("unsupported image data")

// Resources gives access to the files of a publication.
type Resources interface {
	LoadContent(href string) (*epub.Content, error)
	ReadFile(href string) ([]byte, error)
}

// Loader renders the resources of a spread as headless surfaces. Image
// sizes are decoded once per loader.
type Loader struct {
	res     Resources
	metrics Metrics
	log     *zap.Logger
	sizes   map[string]ImageSize
	failed  map[string]bool
}

// NewLoader returns a surface.Loader reading from res.
func NewLoader(res Resources, m Metrics, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		res:     res,
		metrics: m,
		log:     log,
		sizes:   map[string]ImageSize{},
		failed:  map[string]bool{},
	}
}

// Load renders every resource of the spread. All failures are reported
// together; no surface is returned when any resource fails.
func (l *Loader) Load(sp *spread.Spread) ([]surface.Surface, error) {
	var errs error
	out := make([]surface.Surface, 0, len(sp.Links))
	for _, link := range sp.Links {
		s, err := l.load(link.Href)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to load %s: %w", link.Href, err))
			continue
		}
		out = append(out, s)
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func (l *Loader) load(href string) (*Surface, error) {
	content, err := l.res.LoadContent(href)
	if err != nil {
		return nil, err
	}

	sizes := make(map[string]ImageSize, len(content.ImageRefs))
	for _, ref := range content.ImageRefs {
		if size, ok := l.imageSize(ref); ok {
			sizes[ref] = size
		}
	}

	s := New(content, sizes, l.metrics)
	l.log.Debug("Rendered resource",
		zap.String("href", href),
		zap.Int("blocks", len(s.blocks)),
		zap.Int("images", len(s.images)))
	return s, nil
}

// imageSize decodes the image at ref, honouring its EXIF orientation.
// Undecodable images are logged once and left to their attributes.
func (l *Loader) imageSize(ref string) (ImageSize, bool) {
	if size, ok := l.sizes[ref]; ok {
		return size, true
	}
	if l.failed[ref] {
		return ImageSize{}, false
	}

	size, err := l.decode(ref)
	if err != nil {
		l.failed[ref] = true
		l.log.Warn("Failed to measure image", zap.String("src", ref), zap.Error(err))
		return ImageSize{}, false
	}
	l.sizes[ref] = size
	return size, true
}

func (l *Loader) decode(ref string) (ImageSize, error) {
	data, err := l.res.ReadFile(ref)
	if err != nil {
		return ImageSize{}, err
	}
	if kind, _ := filetype.Match(data); kind == filetype.Unknown || kind.MIME.Type != "image" {
		return ImageSize{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, ref)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return ImageSize{}, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	return ImageSize{Width: float64(b.Dx()), Height: float64(b.Dy())}, nil
}
