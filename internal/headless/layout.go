package headless

import "math"

type placement struct {
	x, y float64
}

type layoutResult struct {
	positions []placement // per block
	columns   int
	height    float64 // scroll height
}

// layout places every block, in viewport-wide columns or, in scroll mode,
// in a single column. Text splits across columns by lines; an image that
// does not fit the rest of a column moves to the next one.
func (s *Surface) layout() layoutResult {
	w, h := s.width, s.height
	lh := s.metrics.LineHeight
	perLine := math.Max(1, math.Floor(w/s.metrics.CharWidth))
	columns := !s.scrolling() && h > 0 && w > 0

	res := layoutResult{positions: make([]placement, len(s.blocks))}
	col, y := 0, 0.0
	next := func() { col, y = col+1, 0 }

	for i, bl := range s.blocks {
		bh := s.blockHeight(bl, perLine)
		if !columns {
			res.positions[i] = placement{y: y}
			y += bh
			continue
		}

		if bl.kind == textBlock && bh > 0 {
			if y > 0 && y+lh > h {
				next()
			}
			res.positions[i] = placement{x: float64(col) * w, y: y}
			for lines := int(math.Round(bh / lh)); lines > 0; {
				fit := int(math.Floor((h - y) / lh))
				if fit < 1 {
					if y > 0 {
						next()
						continue
					}
					fit = 1 // a line taller than the column
				}
				n := min(fit, lines)
				y += float64(n) * lh
				lines -= n
				if lines > 0 {
					next()
				}
			}
			continue
		}

		bh = math.Min(bh, h)
		if y > 0 && (y+bh > h || y >= h) {
			next()
		}
		res.positions[i] = placement{x: float64(col) * w, y: y}
		y += bh
	}

	res.columns = col + 1
	res.height = y
	return res
}

func (s *Surface) blockHeight(bl block, perLine float64) float64 {
	if bl.owner != nil && bl.owner.Style("height") == "0" {
		return 0
	}
	switch bl.kind {
	case imageBlock:
		return s.imageHeight(bl.image)
	default:
		return math.Ceil(float64(bl.chars)/perLine) * s.metrics.LineHeight
	}
}

// imageHeight scales the intrinsic size down to the max-width and
// max-height styles, keeping the aspect ratio.
func (s *Surface) imageHeight(img *Element) float64 {
	n := img.natural
	if n.Width <= 0 || n.Height <= 0 {
		return math.Max(0, n.Height)
	}
	scale := 1.0
	if maxW, ok := pixels(img.Style("max-width"), s.width); ok && maxW > 0 {
		scale = math.Min(scale, maxW/n.Width)
	}
	if maxH, ok := pixels(img.Style("max-height"), s.height); ok && maxH > 0 {
		scale = math.Min(scale, maxH/n.Height)
	}
	return n.Height * scale
}
