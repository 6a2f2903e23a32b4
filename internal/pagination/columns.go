package pagination

import "math"

// snapToColumn rounds target to the nearest column boundary. A result that
// leaves every column off to the left is moved back by one column.
func snapToColumn(target, columnWidth, totalWidth float64) float64 {
	rounded := math.Round(target/columnWidth) * columnWidth
	if rounded >= totalWidth {
		rounded -= columnWidth
	}
	return math.Max(0, rounded)
}

// rightExtent is the width of the columns after the viewport. Surfaces with a
// fixed extent keep reporting the full content width once columns have
// scrolled past, so the left extent has to be taken out again.
func rightExtent(contentWidth, columnWidth, leftWidth float64, fixedExtent bool) float64 {
	right := contentWidth - columnWidth
	if fixedExtent {
		right = math.Max(0, right-leftWidth)
	}
	return right
}

// columnStart returns the left edge of the column holding offset.
func columnStart(offset, columnWidth float64) float64 {
	return math.Floor(offset/columnWidth) * columnWidth
}

// pageCount returns how many columns make up totalWidth.
func pageCount(totalWidth, columnWidth float64) int {
	if columnWidth <= 0 || totalWidth <= 0 {
		return 0
	}
	// tolerate sub-pixel residues reported by some surfaces
	return int(math.Ceil(totalWidth/columnWidth - 1e-6))
}
