// Package hac implements single-linkage hierarchical agglomerative
// clustering over cosine distance, producing a full dendrogram that
// internal/threshold can cut at any distance without recomputation.
package hac

import (
	"math"

	"github.com/agusespa/gcommit/internal/diffmodel"
	"github.com/agusespa/gcommit/internal/unionfind"
)

// CosineDistance returns 1 - dot(a, b). Vectors are assumed pre-normalized;
// unit-normalize defensively since a non-normalized embedder would make the
// distance meaningless otherwise.
func CosineDistance(a, b []float32) float64 {
	return 1 - cosSim(a, b)
}

func cosSim(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Cluster runs single-linkage HAC over n unit vectors (vectors[i] may be
// empty, meaning "exclude from clustering" — it is treated as maximally
// distant from everything and ends up a singleton). It returns exactly n-1
// merge events in ascending distance order, labeled by the given labels
// (by convention each chunk's filepath).
func Cluster(vectors [][]float32, labels []string) diffmodel.Dendrogram {
	n := len(vectors)
	dg := diffmodel.Dendrogram{Labels: append([]string(nil), labels...)}
	if n <= 1 {
		return dg
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

	uf := unionfind.New(n)
	members := make([][]int, n)
	for i := range members {
		members[i] = []int{i}
	}

	merges := make([]diffmodel.MergeEvent, 0, n-1)
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	for len(remaining) > 1 {
		bestI, bestJ := remaining[0], remaining[1]
		bestDist := clusterDistance(members[bestI], members[bestJ], dist)

		// remaining stays sorted ascending as entries are only ever
		// removed, so iterating ai, aj in order and keeping only strict
		// improvements naturally ties-break toward the smaller (i, j).
		for ai := 0; ai < len(remaining); ai++ {
			ci := remaining[ai]
			for aj := ai + 1; aj < len(remaining); aj++ {
				cj := remaining[aj]
				d := clusterDistance(members[ci], members[cj], dist)
				if d < bestDist {
					bestDist = d
					bestI = ci
					bestJ = cj
				}
			}
		}

		left, right := uf.Find(bestI), uf.Find(bestJ)
		merges = append(merges, diffmodel.MergeEvent{Left: left, Right: right, Distance: bestDist})

		uf.Unite(bestI, bestJ)
		members[bestI] = append(members[bestI], members[bestJ]...)

		newRemaining := make([]int, 0, len(remaining)-1)
		for _, c := range remaining {
			if c != bestJ {
				newRemaining = append(newRemaining, c)
			}
		}
		remaining = newRemaining

		if bestDist > dg.MaxDistance {
			dg.MaxDistance = bestDist
		}
	}

	dg.Merges = merges
	return dg
}

// clusterDistance computes single-linkage distance: the minimum pairwise
// distance between any point of a and any point of b.
func clusterDistance(a, b []int, dist [][]float64) float64 {
	min := math.Inf(1)
	for _, pi := range a {
		for _, pj := range b {
			if dist[pi][pj] < min {
				min = dist[pi][pj]
			}
		}
	}
	return min
}

// MaxCosineDistance is the largest distance two unit vectors can have
// (antipodal, dot = -1). Used as a finite stand-in for "maximally
// distant" so a failed embedding never produces an unrepresentable
// +Inf in the dendrogram's JSON encoding (spec §7: a failed embedding
// is local recovery, not a crash).
const MaxCosineDistance = 2.0

// pairDistance treats an empty vector (failed embedding) as maximally
// distant from everything else, so it only ever merges as a singleton
// at the dendrogram's top.
func pairDistance(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return MaxCosineDistance
	}
	return CosineDistance(a, b)
}
