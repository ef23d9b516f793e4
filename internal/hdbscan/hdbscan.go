// Package hdbscan implements the HDBSCAN-lite peer algorithm: core
// distances, a mutual-reachability minimum spanning tree via Prim's
// algorithm, and flat extraction at an epsilon cut. It is a drop-in
// alternative to internal/hac's single linkage.
package hdbscan

import (
	"math"
	"sort"

	"github.com/agusespa/gcommit/internal/diffmodel"
	"github.com/agusespa/gcommit/internal/hac"
	"github.com/agusespa/gcommit/internal/unionfind"
)

// Options configures the algorithm. MinClusterSize and MinPts default to 2
// when left at zero.
type Options struct {
	MinClusterSize int
	MinPts         int
}

func (o Options) normalize() Options {
	if o.MinClusterSize <= 0 {
		o.MinClusterSize = 2
	}
	if o.MinPts <= 0 {
		o.MinPts = 2
	}
	return o
}

// Result holds the fitted mutual-reachability MST plus the default epsilon
// derived from its edge-weight range.
type Result struct {
	MST            []diffmodel.MSTEdge
	DefaultEpsilon float64
	opts           Options
}

// Fit computes core distances, builds the mutual-reachability MST with
// Prim's algorithm, and derives the default epsilon as the midpoint of the
// MST's edge-weight range.
func Fit(vectors [][]float32, opts Options) Result {
	opts = opts.normalize()
	n := len(vectors)
	res := Result{opts: opts}
	if n == 0 {
		return res
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := pairDistance(vectors[i], vectors[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	core := coreDistances(dist, opts.MinPts)
	res.MST = buildMSTPrim(dist, core)

	if len(res.MST) > 0 {
		minD := res.MST[0].Distance
		maxD := res.MST[len(res.MST)-1].Distance
		res.DefaultEpsilon = minD + (maxD-minD)*0.5
	}

	return res
}

// Dendrogram exposes the MST as a Dendrogram-shaped merge list (the tree is
// already sorted ascending by distance, so cutting it with ThresholdCut at t
// gives the same connected components as ClustersAtEpsilon at epsilon t,
// without its noise handling), letting the pipeline treat both clustering
// engines uniformly. Merge distances are mutual-reachability distances, not
// the plain cosine distances internal/hac records.
func (r Result) Dendrogram(labels []string) diffmodel.Dendrogram {
	dg := diffmodel.Dendrogram{Labels: append([]string(nil), labels...)}
	if len(r.MST) == 0 {
		return dg
	}
	uf := unionfind.New(len(labels))
	dg.Merges = make([]diffmodel.MergeEvent, 0, len(r.MST))
	for _, e := range r.MST {
		left, right := uf.Find(e.A), uf.Find(e.B)
		dg.Merges = append(dg.Merges, diffmodel.MergeEvent{Left: left, Right: right, Distance: e.Distance})
		uf.Unite(e.A, e.B)
		if e.Distance > dg.MaxDistance {
			dg.MaxDistance = e.Distance
		}
	}
	return dg
}

// ClustersAtEpsilon cuts the MST by removing edges heavier than epsilon and
// taking connected components. Components smaller than MinClusterSize are
// noise and emitted as their own singleton clusters.
func (r Result) ClustersAtEpsilon(n int, epsilon float64) [][]int {
	if n == 0 {
		return nil
	}
	uf := unionfind.New(n)
	for _, e := range r.MST {
		if e.Distance > epsilon {
			break
		}
		uf.Unite(e.A, e.B)
	}

	groups := uf.Sets()
	var result [][]int
	var noise []int
	for _, g := range groups {
		if len(g) >= r.opts.MinClusterSize {
			result = append(result, g)
		} else {
			noise = append(noise, g...)
		}
	}
	for _, idx := range noise {
		result = append(result, []int{idx})
	}
	return result
}

// Labels returns a per-point cluster label vector for the given clustering:
// each point gets the index of the cluster that lists it, so the noise
// singletons ClustersAtEpsilon emits receive their own label. Only indices
// that appear in no cluster keep the -1 label.
func Labels(n int, clusters [][]int) []int {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	for ci, members := range clusters {
		for _, idx := range members {
			labels[idx] = ci
		}
	}
	return labels
}

func coreDistances(dist [][]float64, k int) []float64 {
	n := len(dist)
	core := make([]float64, n)
	for i := 0; i < n; i++ {
		neighbors := make([]float64, 0, n-1)
		for j := 0; j < n; j++ {
			if i != j {
				neighbors = append(neighbors, dist[i][j])
			}
		}
		sort.Float64s(neighbors)
		idx := k - 1
		if idx >= len(neighbors) {
			idx = len(neighbors) - 1
		}
		if idx < 0 {
			core[i] = 0
		} else {
			core[i] = neighbors[idx]
		}
	}
	return core
}

func mutualReachability(a, b int, core []float64, dist [][]float64) float64 {
	m := core[a]
	if core[b] > m {
		m = core[b]
	}
	if dist[a][b] > m {
		m = dist[a][b]
	}
	return m
}

func buildMSTPrim(dist [][]float64, core []float64) []diffmodel.MSTEdge {
	n := len(dist)
	if n == 0 {
		return nil
	}

	mst := make([]diffmodel.MSTEdge, 0, n-1)
	inTree := make([]bool, n)
	minDist := make([]float64, n)
	minEdgeFrom := make([]int, n)
	for i := range minDist {
		minDist[i] = math.Inf(1)
		minEdgeFrom[i] = -1
	}

	inTree[0] = true
	for j := 1; j < n; j++ {
		minDist[j] = mutualReachability(0, j, core, dist)
		minEdgeFrom[j] = 0
	}

	for added := 0; added < n-1; added++ {
		next := -1
		best := math.Inf(1)
		for j := 0; j < n; j++ {
			if !inTree[j] && minDist[j] < best {
				best = minDist[j]
				next = j
			}
		}
		if next == -1 {
			break
		}

		mst = append(mst, diffmodel.MSTEdge{A: minEdgeFrom[next], B: next, Distance: best}.Canonicalize())
		inTree[next] = true

		for j := 0; j < n; j++ {
			if !inTree[j] {
				mrd := mutualReachability(next, j, core, dist)
				if mrd < minDist[j] {
					minDist[j] = mrd
					minEdgeFrom[j] = next
				}
			}
		}
	}

	sort.Slice(mst, func(i, j int) bool { return mst[i].Distance < mst[j].Distance })
	return mst
}

func pairDistance(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return hac.MaxCosineDistance
	}
	return hac.CosineDistance(a, b)
}
