package colorquant

import (
	"fmt"
	"math"
	"runtime"
	"slices"
	"sync"

	"github.com/muesli/clusters"
)

// Reduction is the outcome of one reduce call: the surviving palette in
// first-produced order and the mapping from every input color to its
// palette replacement.
type Reduction struct {
	Palette []Color
	Mapping map[Color]Color
}

// Reducer turns a unique color set into a reduced palette plus a total
// mapping. Input order fixes output order, so callers pass the set in a
// stable order when reproducibility matters.
type Reducer interface {
	Reduce(colors []Color) (*Reduction, error)
}

// AlphaLayered clusters RGB within each exact alpha value, so transparency
// tiers survive reduction untouched. Every mapped color keeps its original
// alpha.
type AlphaLayered struct {
	// Cluster budget per alpha layer, clamped to the layer size.
	K int

	Engine KMeans
}

func (s *AlphaLayered) Reduce(colors []Color) (*Reduction, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("reduce: empty color set")
	}
	if s.K <= 0 {
		return nil, fmt.Errorf("reduce: cluster budget must be positive, got %d", s.K)
	}
	layers := splitByAlpha(colors)

	results := make([]partitionResult, len(layers))
	err := forEachPartition(len(layers), func(i int) error {
		layer := layers[i]
		cc, assign, err := s.Engine.Fit(rgbDataset(layer.colors), min(s.K, len(layer.colors)))
		if err != nil {
			return err
		}
		centroids := make([]Color, len(cc))
		for ci := range cc {
			if len(cc[ci].Observations) == 0 {
				continue
			}
			centroids[ci] = centroidColor(cc[ci].Center, layer.alpha)
		}
		results[i] = partitionResult{centroids: centroids, assign: assign}
		return nil
	})
	if err != nil {
		return nil, err
	}

	red := &Reduction{Mapping: make(map[Color]Color, len(colors))}
	for i, layer := range layers {
		red.Palette = mergePartition(red.Palette, red.Mapping, layer.colors, results[i])
	}
	return red, nil
}

// LuminanceColor clusters luminance first and RGB within each luminance
// group. Alpha is quantized too: every sub-cluster gets the rounded mean
// alpha of its members.
type LuminanceColor struct {
	// Number of luminance groups, clamped to the color count.
	KLuminance int
	// Cluster budget within each luminance group, clamped to the group size.
	KColor int

	Engine KMeans
}

func (s *LuminanceColor) Reduce(colors []Color) (*Reduction, error) {
	if s.KLuminance <= 0 || s.KColor <= 0 {
		return nil, fmt.Errorf("reduce: group and cluster budgets must be positive, got %d and %d", s.KLuminance, s.KColor)
	}
	return reduceByLuminance(s.Engine, colors, fixedK(s.KLuminance), fixedK(s.KColor))
}

// AutoAdaptive is LuminanceColor with both stage budgets chosen by the
// silhouette search instead of fixed configuration, trading extra fits for
// palette sizes that follow the image's actual color complexity.
type AutoAdaptive struct {
	// Upper bound handed to the silhouette search at both stages.
	MaxClusters int

	Engine KMeans
}

func (s *AutoAdaptive) Reduce(colors []Color) (*Reduction, error) {
	if s.MaxClusters <= 0 {
		return nil, fmt.Errorf("reduce: cluster search bound must be positive, got %d", s.MaxClusters)
	}
	pick := func(dataset clusters.Observations) (int, error) {
		return s.Engine.OptimalK(dataset, s.MaxClusters)
	}
	return reduceByLuminance(s.Engine, colors, pick, pick)
}

// kPicker chooses the cluster count for one dataset; fixed budgets and the
// silhouette search are both expressed through it.
type kPicker func(dataset clusters.Observations) (int, error)

func fixedK(k int) kPicker {
	return func(dataset clusters.Observations) (int, error) {
		return min(k, len(dataset)), nil
	}
}

func reduceByLuminance(engine KMeans, colors []Color, pickLum, pickColor kPicker) (*Reduction, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("reduce: empty color set")
	}

	lumData := make(clusters.Observations, len(colors))
	for i, l := range Luminances(colors) {
		lumData[i] = clusters.Coordinates{l}
	}
	kl, err := pickLum(lumData)
	if err != nil {
		return nil, err
	}
	_, lumAssign, err := engine.Fit(lumData, kl)
	if err != nil {
		return nil, err
	}

	groups := make([][]Color, kl)
	for i, c := range colors {
		groups[lumAssign[i]] = append(groups[lumAssign[i]], c)
	}

	results := make([]partitionResult, len(groups))
	err = forEachPartition(len(groups), func(gi int) error {
		members := groups[gi]
		if len(members) == 0 {
			return nil
		}
		dataset := rgbDataset(members)
		kc, err := pickColor(dataset)
		if err != nil {
			return err
		}
		cc, assign, err := engine.Fit(dataset, kc)
		if err != nil {
			return err
		}

		alphaSum := make([]float64, len(cc))
		alphaN := make([]int, len(cc))
		for p, ci := range assign {
			alphaSum[ci] += float64(members[p].A)
			alphaN[ci]++
		}
		centroids := make([]Color, len(cc))
		for ci := range cc {
			if alphaN[ci] == 0 {
				continue
			}
			meanAlpha := roundChannel(alphaSum[ci] / float64(alphaN[ci]))
			centroids[ci] = centroidColor(cc[ci].Center, meanAlpha)
		}
		results[gi] = partitionResult{centroids: centroids, assign: assign}
		return nil
	})
	if err != nil {
		return nil, err
	}

	red := &Reduction{Mapping: make(map[Color]Color, len(colors))}
	for gi, members := range groups {
		if len(members) == 0 {
			continue
		}
		red.Palette = mergePartition(red.Palette, red.Mapping, members, results[gi])
	}
	return red, nil
}

// partitionResult carries one layer's or group's fit back to the merge
// step: rounded centroid colors by cluster index and each member's cluster.
type partitionResult struct {
	centroids []Color
	assign    []int
}

// mergePartition folds one partition into the palette and mapping. Palette
// entries keep centroid order, skip clusters that received no members and
// drop duplicates from earlier partitions.
func mergePartition(palette []Color, mapping map[Color]Color, members []Color, res partitionResult) []Color {
	used := make([]bool, len(res.centroids))
	for p, c := range members {
		ci := res.assign[p]
		used[ci] = true
		mapping[c] = res.centroids[ci]
	}
	for ci, c := range res.centroids {
		if !used[ci] || slices.Contains(palette, c) {
			continue
		}
		palette = append(palette, c)
	}
	return palette
}

type alphaLayer struct {
	alpha  uint8
	colors []Color
}

// splitByAlpha partitions colors by exact alpha. Layers come out in
// ascending alpha order with members keeping input order.
func splitByAlpha(colors []Color) []alphaLayer {
	byAlpha := make(map[uint8][]Color)
	for _, c := range colors {
		byAlpha[c.A] = append(byAlpha[c.A], c)
	}
	alphas := make([]uint8, 0, len(byAlpha))
	for a := range byAlpha {
		alphas = append(alphas, a)
	}
	slices.Sort(alphas)

	layers := make([]alphaLayer, len(alphas))
	for i, a := range alphas {
		layers[i] = alphaLayer{alpha: a, colors: byAlpha[a]}
	}
	return layers
}

// rgbDataset lifts colors into 3-D observations over the raw channel range.
func rgbDataset(colors []Color) clusters.Observations {
	dataset := make(clusters.Observations, 0, len(colors))
	for _, c := range colors {
		dataset = append(dataset, clusters.Coordinates{float64(c.R), float64(c.G), float64(c.B)})
	}
	return dataset
}

// centroidColor rounds a 3-D RGB center to 8-bit channels and attaches
// alpha.
func centroidColor(center clusters.Coordinates, alpha uint8) Color {
	return Color{
		R: roundChannel(center[0]),
		G: roundChannel(center[1]),
		B: roundChannel(center[2]),
		A: alpha,
	}
}

func roundChannel(v float64) uint8 {
	return uint8(math.Round(min(255, max(0, v))))
}

// forEachPartition runs fn for every partition index on a bounded set of
// goroutines. Each fn writes only to its own index, so the merge that
// follows is independent of completion order; the first error in index
// order is returned after all workers finish.
func forEachPartition(n int, fn func(int) error) error {
	if n <= 0 {
		return nil
	}
	workers := min(n, runtime.GOMAXPROCS(0))
	errs := make([]error, n)
	if workers <= 1 {
		for i := range n {
			errs[i] = fn(i)
		}
	} else {
		idx := make(chan int)
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range idx {
					errs[i] = fn(i)
				}
			}()
		}
		for i := range n {
			idx <- i
		}
		close(idx)
		wg.Wait()
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
