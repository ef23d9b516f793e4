// Package threshold applies a distance threshold to a dendrogram to yield
// flat clusters, without recomputing the clustering itself.
package threshold

import (
	"sort"

	"github.com/agusespa/gcommit/internal/diffmodel"
	"github.com/agusespa/gcommit/internal/unionfind"
)

// Cut partitions n leaves by uniting every merge whose distance is at most
// t, in dendrogram order. Raising t can only coarsen the partition
// (monotone); t == dendrogram.MaxDistance yields a single cluster.
func Cut(n int, merges []diffmodel.MergeEvent, t float64) [][]int {
	uf := unionfind.New(n)
	for _, m := range merges {
		if m.Distance <= t {
			uf.Unite(m.Left, m.Right)
		}
	}

	groups := uf.Sets()
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
