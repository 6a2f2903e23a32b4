package headless

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/width"

	"github.com/yuanying/epubnav/internal/epub"
)

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "header": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true, "ul": true,
	"p": true, "pre": true, "section": true,
	"table": true, "tbody": true, "thead": true, "tfoot": true, "tr": true, "td": true, "th": true,
}

var skippedTags = map[string]bool{
	"head": true, "script": true, "style": true, "title": true, "noscript": true,
}

type blockKind int

const (
	textBlock blockKind = iota
	imageBlock
)

// block is a box laid out as a unit: a run of text or an image.
type block struct {
	kind  blockKind
	chars int // character cells
	image *Element
	// owner is the element whose box is exactly this block, nil for
	// anonymous runs.
	owner *Element
}

// ImageSize is the intrinsic size of an image in CSS pixels.
type ImageSize struct {
	Width, Height float64
}

type builder struct {
	content  *epub.Content
	sizes    map[string]ImageSize
	blocks   []block
	elements map[string]*Element
	images   []*Element
	pending  []*Element
	run      strings.Builder
}

// buildBlocks flattens the body of content into blocks. Every element with
// an id is attached to the first block it contains.
func buildBlocks(content *epub.Content, sizes map[string]ImageSize) *builder {
	b := &builder{
		content:  content,
		sizes:    sizes,
		elements: map[string]*Element{},
	}
	root := content.Document.Find("body").First()
	if root.Length() == 0 {
		root = content.Document.Selection
	}
	b.walk(root)
	b.flush()
	if len(b.pending) > 0 {
		// trailing anchors with no content of their own
		b.emit(block{kind: textBlock})
	}
	return b
}

func (b *builder) walk(s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			b.run.WriteString(c.Text())
			b.run.WriteByte(' ')
		case strings.HasPrefix(name, "#"), skippedTags[name]:
		case name == "img" || name == "image":
			b.flush()
			el := b.image(c)
			b.register(c, el)
			b.emit(block{kind: imageBlock, image: el, owner: el})
		case blockTags[name]:
			b.flush()
			el := b.register(c, nil)
			start := len(b.blocks)
			b.walk(c)
			b.flush()
			if el != nil && len(b.blocks) == start+1 {
				b.blocks[start].owner = el
			}
		default:
			b.register(c, nil)
			b.walk(c)
		}
	})
}

// register records the id of c, if any, and returns its element.
func (b *builder) register(c *goquery.Selection, el *Element) *Element {
	id := strings.TrimSpace(c.AttrOr("id", ""))
	if id == "" {
		return el
	}
	if _, dup := b.elements[id]; dup {
		return el
	}
	if el == nil {
		el = newElement()
	}
	el.id = id
	b.elements[id] = el
	b.pending = append(b.pending, el)
	return el
}

func (b *builder) image(c *goquery.Selection) *Element {
	el := newElement()
	el.image = true
	if src, ok := epub.ImageSource(c); ok {
		if size, found := b.sizes[b.content.ResolveRef(src)]; found {
			el.natural = size
		}
	}
	if el.natural == (ImageSize{}) {
		el.natural = ImageSize{Width: attrFloat(c, "width"), Height: attrFloat(c, "height")}
	}
	b.images = append(b.images, el)
	return el
}

// flush turns the pending inline text into an anonymous block.
func (b *builder) flush() {
	text := strings.Join(strings.Fields(b.run.String()), " ")
	b.run.Reset()
	if text == "" {
		return
	}
	b.emit(block{kind: textBlock, chars: cells(text)})
}

// cells counts character cells; East Asian wide and fullwidth runes take two.
func cells(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func (b *builder) emit(bl block) {
	index := len(b.blocks)
	for _, el := range b.pending {
		el.block = index
	}
	b.pending = nil
	b.blocks = append(b.blocks, bl)
}

func attrFloat(c *goquery.Selection, name string) float64 {
	v := strings.TrimSuffix(strings.TrimSpace(c.AttrOr(name, "")), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
