package colorquant

import (
	"errors"
	"fmt"
	"image"
	"slices"
)

// ErrMappingGap reports an indexed color missing from a reduction mapping.
// It marks a strategy defect: the fold fails as a whole rather than drop
// the color's coordinates.
var ErrMappingGap = errors.New("reduction mapping is missing a color")

// ColorIndex maps every color of a Matrix to the coordinates holding it.
// Iteration follows first-seen order, never Go map order, so folds and
// rewrites reproduce exactly run to run.
type ColorIndex struct {
	order   []Color
	buckets map[Color][]image.Point
}

// BuildIndex scans m row by row and records each color's coordinates in
// scan order.
func BuildIndex(m *Matrix) *ColorIndex {
	ix := &ColorIndex{buckets: make(map[Color][]image.Point)}
	for y := range m.H {
		for x := range m.W {
			c := m.At(x, y)
			if _, ok := ix.buckets[c]; !ok {
				ix.order = append(ix.order, c)
			}
			ix.buckets[c] = append(ix.buckets[c], image.Pt(x, y))
		}
	}
	return ix
}

// Len returns the number of distinct indexed colors.
func (ix *ColorIndex) Len() int { return len(ix.order) }

// Colors returns the indexed colors in first-seen order.
func (ix *ColorIndex) Colors() []Color { return slices.Clone(ix.order) }

// Lookup returns the coordinates holding c, nil when c is not indexed.
func (ix *ColorIndex) Lookup(c Color) []image.Point { return ix.buckets[c] }

// Coverage is the total number of indexed coordinates.
func (ix *ColorIndex) Coverage() int {
	n := 0
	for _, pts := range ix.buckets {
		n += len(pts)
	}
	return n
}

// Apply folds the index through an original→reduced mapping and returns the
// reduced index. Buckets whose colors collapse to the same reduced color
// merge in visit order. Every indexed color must have a mapping entry; a
// gap aborts the fold with ErrMappingGap.
func (ix *ColorIndex) Apply(mapping map[Color]Color) (*ColorIndex, error) {
	out := &ColorIndex{buckets: make(map[Color][]image.Point, len(mapping))}
	for _, c := range ix.order {
		rc, ok := mapping[c]
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrMappingGap, c)
		}
		if _, ok := out.buckets[rc]; !ok {
			out.order = append(out.order, rc)
		}
		out.buckets[rc] = append(out.buckets[rc], ix.buckets[c]...)
	}
	return out, nil
}

// Rewrite stamps every indexed color onto its coordinates in m. Bounds are
// checked up front so a bad index never leaves m half rewritten.
func (ix *ColorIndex) Rewrite(m *Matrix) error {
	for _, c := range ix.order {
		for _, pt := range ix.buckets[c] {
			if pt.X < 0 || pt.X >= m.W || pt.Y < 0 || pt.Y >= m.H {
				return fmt.Errorf("coordinate %v of %v outside %dx%d matrix", pt, c, m.W, m.H)
			}
		}
	}
	for _, c := range ix.order {
		for _, pt := range ix.buckets[c] {
			m.Set(pt.X, pt.Y, c)
		}
	}
	return nil
}
