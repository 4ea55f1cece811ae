package colorquant

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/muesli/clusters"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KMeans is a deterministic Lloyd's clustering engine. All restarts draw
// from one seeded stream, so the same seed, dataset order and k always
// produce the same clusters.
type KMeans struct {
	// Independent restarts per Fit; the run with the lowest within-cluster
	// sum of squares wins. Zero means 10.
	Restarts int
	// Iteration cap per restart; assignment stability usually stops a run
	// much earlier. Zero means 300.
	MaxIterations int
	// Seed of the restart stream.
	Seed int64
}

// NewKMeans returns the engine configuration used by all reduction
// strategies.
func NewKMeans() KMeans {
	return KMeans{Restarts: 10, MaxIterations: 300, Seed: 42}
}

func (km KMeans) restarts() int {
	if km.Restarts <= 0 {
		return 10
	}
	return km.Restarts
}

func (km KMeans) maxIterations() int {
	if km.MaxIterations <= 0 {
		return 300
	}
	return km.MaxIterations
}

// Fit clusters dataset into k groups and returns the clusters together with
// each observation's cluster index. k must already be clamped by the
// caller; asking for more clusters than observations is an error, never a
// silent adjustment.
func (km KMeans) Fit(dataset clusters.Observations, k int) (clusters.Clusters, []int, error) {
	if len(dataset) == 0 {
		return nil, nil, fmt.Errorf("kmeans: empty dataset")
	}
	if k <= 0 {
		return nil, nil, fmt.Errorf("kmeans: cluster count must be positive, got %d", k)
	}
	if k > len(dataset) {
		return nil, nil, fmt.Errorf("kmeans: %d clusters requested from %d observations", k, len(dataset))
	}

	rng := rand.New(rand.NewSource(km.Seed))
	var best clusters.Clusters
	var bestAssign []int
	bestScore := math.Inf(1)
	for range km.restarts() {
		cc, assign := km.run(dataset, k, rng)
		if score := wcss(cc); score < bestScore {
			bestScore = score
			best = cc
			bestAssign = assign
		}
	}
	return best, bestAssign, nil
}

// run performs one restart: centers seeded with k distinct observations,
// then reassign and recenter until assignments settle.
func (km KMeans) run(dataset clusters.Observations, k int, rng *rand.Rand) (clusters.Clusters, []int) {
	cc := make(clusters.Clusters, k)
	for i, pi := range rng.Perm(len(dataset))[:k] {
		cc[i].Center = slices.Clone(dataset[pi].Coordinates())
	}

	assign := make([]int, len(dataset))
	for i := range assign {
		assign[i] = -1
	}
	for range km.maxIterations() {
		cc.Reset()
		changes := 0
		for p, obs := range dataset {
			ci := cc.Nearest(obs)
			cc[ci].Append(obs)
			if assign[p] != ci {
				assign[p] = ci
				changes++
			}
		}
		changes += refillEmpty(cc, dataset, assign)
		cc.Recenter()
		if changes == 0 {
			break
		}
	}
	return cc, assign
}

// refillEmpty moves the observation farthest from its current center into
// each empty cluster, taking only from clusters that keep at least two
// members. Clusters are visited in index order, so refills are
// deterministic. A cluster may stay empty when no donor can spare a point;
// callers skip such clusters.
func refillEmpty(cc clusters.Clusters, dataset clusters.Observations, assign []int) int {
	moves := 0
	for ci := range cc {
		if len(cc[ci].Observations) != 0 {
			continue
		}
		pick, worst := -1, -1.0
		for p, obs := range dataset {
			if len(cc[assign[p]].Observations) < 2 {
				continue
			}
			if d := obs.Distance(cc[assign[p]].Center); d > worst {
				worst, pick = d, p
			}
		}
		if pick < 0 {
			continue
		}
		assign[pick] = ci
		moves++
		cc.Reset()
		for p, obs := range dataset {
			cc[assign[p]].Append(obs)
		}
	}
	return moves
}

// wcss ranks restarts. Coordinates.Distance is already the squared
// euclidean distance, so plain summation gives the within-cluster sum of
// squares.
func wcss(cc clusters.Clusters) float64 {
	var sum float64
	for _, c := range cc {
		for _, obs := range c.Observations {
			sum += obs.Distance(c.Center)
		}
	}
	return sum
}

// Silhouette scores a clustering in [-1, 1]: the mean over observations of
// (b-a)/max(a,b), where a is the mean distance to the observation's own
// cluster members and b the lowest mean distance to another cluster's
// members. Observations alone in their cluster contribute 0.
func Silhouette(dataset clusters.Observations, assign []int, k int) float64 {
	if len(dataset) == 0 || k < 2 {
		return 0
	}
	return silhouetteFrom(distanceMatrix(dataset), assign, k)
}

// distanceMatrix fills the symmetric euclidean distance matrix of dataset.
func distanceMatrix(dataset clusters.Observations) *mat.SymDense {
	n := len(dataset)
	d := mat.NewSymDense(n, nil)
	coords := make([][]float64, n)
	for i, obs := range dataset {
		coords[i] = obs.Coordinates()
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, floats.Distance(coords[i], coords[j], 2))
		}
	}
	return d
}

func silhouetteFrom(d *mat.SymDense, assign []int, k int) float64 {
	n := len(assign)
	if n == 0 || k < 2 {
		return 0
	}
	counts := make([]int, k)
	for _, ci := range assign {
		counts[ci]++
	}
	sums := make([]float64, k)
	var total float64
	for i := range n {
		for ci := range sums {
			sums[ci] = 0
		}
		for j := range n {
			if j == i {
				continue
			}
			sums[assign[j]] += d.At(i, j)
		}
		own := assign[i]
		if counts[own] < 2 {
			continue
		}
		a := sums[own] / float64(counts[own]-1)
		b := math.Inf(1)
		for ci := range k {
			if ci == own || counts[ci] == 0 {
				continue
			}
			if m := sums[ci] / float64(counts[ci]); m < b {
				b = m
			}
		}
		if math.IsInf(b, 1) {
			continue
		}
		if m := max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n)
}

// OptimalK picks the cluster count with the best silhouette score. Sets of
// fewer than 10 observations skip the search and use min(3, n). The grid
// runs from 2 up to but not including min(maxK, n-1); the first k reaching
// the best score wins ties. Every candidate costs a full Fit and the scores
// share one n×n distance matrix, so callers keep maxK and the observation
// count bounded.
func (km KMeans) OptimalK(dataset clusters.Observations, maxK int) (int, error) {
	n := len(dataset)
	if n == 0 {
		return 0, fmt.Errorf("kmeans: empty dataset")
	}
	if n < 10 {
		return min(3, n), nil
	}

	d := distanceMatrix(dataset)
	bestK := 2
	bestScore := math.Inf(-1)
	for k := 2; k < min(maxK, n-1); k++ {
		_, assign, err := km.Fit(dataset, k)
		if err != nil {
			return 0, err
		}
		if score := silhouetteFrom(d, assign, k); score > bestScore {
			bestScore = score
			bestK = k
		}
	}
	return bestK, nil
}
