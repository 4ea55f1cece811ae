package utils

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/setanarut/colorquant"
)

// PreviewMethod selects how PreviewPalette extracts colors.
type PreviewMethod int

const (
	PreviewDominant PreviewMethod = iota
	PreviewKMeans
)

func (m PreviewMethod) String() string {
	switch m {
	case PreviewKMeans:
		return "kmeans"
	default:
		return "dominant"
	}
}

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// SortByBrightness orders colors from darkest to brightest in linear RGB.
// The first palette entry becomes the darkest color.
func SortByBrightness(palette []colorquant.Color) {
	slices.SortFunc(palette, func(a, b colorquant.Color) int {
		ya := linearLuma(a)
		yb := linearLuma(b)
		if ya < yb {
			return -1
		}
		if ya > yb {
			return 1
		}
		return 0
	})
}

func linearLuma(c colorquant.Color) float64 {
	r, g, b := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// PreviewPalette extracts a quick k-color impression of img without running
// the reduction pipeline. Previews feed swatches and logs only: the kmeans
// method seeds randomly upstream, so its output is not reproducible the way
// Reducer output is.
func PreviewPalette(img image.Image, k int, method PreviewMethod) []colorquant.Color {
	if k <= 0 {
		return nil
	}
	switch method {
	case PreviewKMeans:
		if p := previewKMeans(img, k); len(p) != 0 {
			return p
		}
		slog.Warn("kmeans preview came back empty, falling back to dominant colors")
		return previewDominant(img, k)
	default:
		return previewDominant(img, k)
	}
}

func previewDominant(img image.Image, k int) []colorquant.Color {
	nCandidates := max(24, k*8)
	candidates := dominantcolor.FindWeight(img, nCandidates)
	if len(candidates) == 0 {
		// Last resort: a single neutral tone instead of an empty swatch.
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: w})
	}
	return toColors(selectDiverse(weighted, k))
}

func previewKMeans(img image.Image, k int) []colorquant.Color {
	// Downscale first so Partition stays fast on large inputs.
	thumb := imaging.Resize(img, 128, 128, imaging.NearestNeighbor)
	b := thumb.Bounds()
	dataset := make(clusters.Observations, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r16, g16, b16, a16 := thumb.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	// Sort by cluster population so dominant tones come first.
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		na := len(a.Observations)
		nb := len(b.Observations)
		if na > nb {
			return -1
		}
		if na < nb {
			return 1
		}
		return 0
	})

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		w := float64(len(c.Observations))
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{Col: col, Weight: w})
	}
	return toColors(selectDiverse(weighted, k))
}

// selectDiverse greedily picks k colors that balance weight against Lab
// distance to the colors already picked, seeded with the strongest
// candidate.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	type item struct {
		col colorful.Color
		lab [3]float64
		w   float64
	}
	items := make([]item, 0, len(cands))
	maxW := 0.0
	for _, c := range cands {
		col := c.Col.Clamped()
		l, a, b := col.Lab()
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		if w > maxW {
			maxW = w
		}
		items = append(items, item{col: col, lab: [3]float64{l, a, b}, w: w})
	}
	if k > len(items) {
		k = len(items)
	}
	if maxW <= 0 {
		maxW = 1.0
	}

	selectedIdx := make([]int, 0, k)
	selected := make([]bool, len(items))

	bestSeed := 0
	bestSeedW := items[0].w
	for i := 1; i < len(items); i++ {
		if items[i].w > bestSeedW {
			bestSeedW = items[i].w
			bestSeed = i
		}
	}
	selectedIdx = append(selectedIdx, bestSeed)
	selected[bestSeed] = true

	for len(selectedIdx) < k {
		bestIdx := -1
		bestScore := -1.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range selectedIdx {
				d0 := items[i].lab[0] - items[s].lab[0]
				d1 := items[i].lab[1] - items[s].lab[1]
				d2 := items[i].lab[2] - items[s].lab[2]
				d2v := d0*d0 + d1*d1 + d2*d2
				if d2v < minD2 {
					minD2 = d2v
				}
			}
			normW := items[i].w / maxW
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(normW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
	}

	out := make([]colorful.Color, 0, len(selectedIdx))
	for _, idx := range selectedIdx {
		out = append(out, items[idx].col)
	}
	return out
}

func toColors(cols []colorful.Color) []colorquant.Color {
	out := make([]colorquant.Color, len(cols))
	for i, c := range cols {
		out[i] = colorquant.Color{
			R: uint8(max(0, min(255, c.R*255))),
			G: uint8(max(0, min(255, c.G*255))),
			B: uint8(max(0, min(255, c.B*255))),
			A: 255,
		}
	}
	return out
}

func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// Swatch renders a palette as a strip of solid tiles, one per color.
// Tiles show RGB only; alpha tiers are visible in the reduced image itself.
func Swatch(palette []colorquant.Color, tileSize int) (*image.RGBA, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	w := tileSize * len(palette)
	h := tileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, c := range palette {
		x0 := i * tileSize
		x1 := x0 + tileSize
		for y := range h {
			for x := x0; x < x1; x++ {
				img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
			}
		}
	}
	return img, nil
}

func SaveSwatch(palette []colorquant.Color, tileSize int, filename string) error {
	img, err := Swatch(palette, tileSize)
	if err != nil {
		return err
	}
	return SaveImage(img, filename)
}

// DiffImage renders the per-pixel mean absolute channel difference of two
// equal-size matrices as grayscale, for original-vs-reduced comparisons.
func DiffImage(a, b *colorquant.Matrix) (*image.Gray, error) {
	if a.W != b.W || a.H != b.H {
		return nil, fmt.Errorf("size mismatch: %dx%d vs %dx%d", a.W, a.H, b.W, b.H)
	}
	img := image.NewGray(image.Rect(0, 0, a.W, a.H))
	for y := range a.H {
		for x := range a.W {
			ca := a.At(x, y)
			cb := b.At(x, y)
			d := (absDiff(ca.R, cb.R) + absDiff(ca.G, cb.G) + absDiff(ca.B, cb.B) + absDiff(ca.A, cb.A)) / 4
			img.SetGray(x, y, color.Gray{Y: uint8(d)})
		}
	}
	return img, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
