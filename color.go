package colorquant

import (
	"fmt"
	"image/color"
	"slices"
)

// Color is one palette entry. Channels are straight (non-premultiplied)
// 8-bit values; two Colors are equal iff all four channels match, so Color
// works directly as a map key.
type Color struct {
	R, G, B, A uint8
}

// ColorOf converts any color.Color, keeping channels non-premultiplied.
func ColorOf(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{n.R, n.G, n.B, n.A}
}

// Packed returns the color as a single integer with R in the highest byte
// and A in the lowest, so packed values order colors lexicographically by
// (R, G, B, A).
func (c Color) Packed() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// UnpackColor is the inverse of Packed.
func UnpackColor(v uint32) Color {
	return Color{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
}

// RGBA implements color.Color with the usual premultiplied conversion.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// NRGBA returns the straight-alpha stdlib form.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%d)", c.R, c.G, c.B, c.A)
}

// Luminance returns the Rec. 709 luma of the raw 8-bit channels
// (0.2126 R + 0.7152 G + 0.0722 B), in [0, 255]. Alpha is ignored.
func (c Color) Luminance() float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

// Luminances computes Luminance over a whole color slice.
func Luminances(colors []Color) []float64 {
	out := make([]float64, len(colors))
	for i, c := range colors {
		out[i] = c.Luminance()
	}
	return out
}

// SortColors orders colors ascending by their packed value, the canonical
// ordering for unique color sets.
func SortColors(colors []Color) {
	slices.SortFunc(colors, func(a, b Color) int {
		pa, pb := a.Packed(), b.Packed()
		if pa < pb {
			return -1
		}
		if pa > pb {
			return 1
		}
		return 0
	})
}
