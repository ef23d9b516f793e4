// Package pipeline orchestrates the two run modes: merge mode (parse,
// chunk, embed, cluster, project, emit a dendrogram) and threshold mode
// (cut a previously-produced dendrogram, emit patch files and commit
// messages).
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agusespa/gcommit/internal/chunker"
	"github.com/agusespa/gcommit/internal/diffmodel"
	"github.com/agusespa/gcommit/internal/diffparser"
	"github.com/agusespa/gcommit/internal/embedder"
	"github.com/agusespa/gcommit/internal/hac"
	"github.com/agusespa/gcommit/internal/hdbscan"
	"github.com/agusespa/gcommit/internal/patch"
	"github.com/agusespa/gcommit/internal/projector"
	"github.com/agusespa/gcommit/internal/summarizer"
	"github.com/agusespa/gcommit/internal/threshold"
)

// Algorithm selects which clustering engine merge mode runs.
type Algorithm string

const (
	HAC     Algorithm = "hac"
	HDBSCAN Algorithm = "hdbscan"
)

// previewMaxChars bounds the "preview" string emitted per chunk in the
// merge-mode JSON.
const previewMaxChars = 80

// ChunkOutput is one entry of the merge-mode "chunks" array: a DiffChunk
// plus its index, 2-D projection, and a human preview line.
type ChunkOutput struct {
	diffmodel.DiffChunk
	Index   int     `json:"index"`
	UmapX   float64 `json:"umap_x"`
	UmapY   float64 `json:"umap_y"`
	Preview string  `json:"preview"`
}

// MergeOutput is merge mode's JSON document. SuggestedThreshold is not part
// of the wire schema (spec.md §6) — it is the HDBSCAN engine's fitted
// default epsilon, surfaced only so the CLI can log a hint for the
// follow-up threshold-mode invocation.
type MergeOutput struct {
	Dendrogram         diffmodel.Dendrogram `json:"dendrogram"`
	Chunks             []ChunkOutput        `json:"chunks"`
	SuggestedThreshold float64              `json:"-"`
}

// MergeOptions configures a merge-mode run.
type MergeOptions struct {
	Algorithm      Algorithm
	HDBSCANMinSize int
	HDBSCANMinPts  int
	// EpsilonOverride replaces the HDBSCAN engine's fitted default epsilon
	// in the SuggestedThreshold hint, when > 0. Ignored for HAC.
	EpsilonOverride float64
}

// RunMerge parses r as a unified diff, chunks it, embeds every chunk's
// content, clusters the embeddings, projects them to 2-D, and returns the
// merge-mode document. An input with zero chunks is an error, per
// spec.md §7.
func RunMerge(ctx context.Context, r io.Reader, emb embedder.Embedder, proj projector.Project2D, opts MergeOptions) (*MergeOutput, error) {
	rawChunks, err := diffparser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}
	if len(rawChunks) == 0 {
		return nil, fmt.Errorf("input contains no diff chunks")
	}

	c, err := chunker.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chunker: %w", err)
	}
	chunks := c.ChunkAll(rawChunks)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("input contains no diff chunks")
	}

	texts := make([]string, len(chunks))
	labels := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = embedText(ch)
		labels[i] = ch.Filepath
	}

	slog.Debug("submitting embedding requests", "count", len(texts))
	vectors := embedder.EmbedAll(ctx, emb, texts)

	var dg diffmodel.Dendrogram
	var suggestedThreshold float64
	switch opts.Algorithm {
	case HDBSCAN:
		res := hdbscan.Fit(vectors, hdbscan.Options{MinClusterSize: opts.HDBSCANMinSize, MinPts: opts.HDBSCANMinPts})
		dg = res.Dendrogram(labels)
		suggestedThreshold = res.DefaultEpsilon
		if opts.EpsilonOverride > 0 {
			suggestedThreshold = opts.EpsilonOverride
		}
	default:
		dg = hac.Cluster(vectors, labels)
	}

	slog.Debug("submitting projection request", "count", len(vectors))
	points := proj.Project(ctx, vectors)

	out := &MergeOutput{Dendrogram: dg, Chunks: make([]ChunkOutput, len(chunks)), SuggestedThreshold: suggestedThreshold}
	for i, ch := range chunks {
		var x, y float64
		if i < len(points) {
			x, y = points[i].X, points[i].Y
		}
		out.Chunks[i] = ChunkOutput{
			DiffChunk: ch,
			Index:     i,
			UmapX:     x,
			UmapY:     y,
			Preview:   preview(ch),
		}
	}

	return out, nil
}

// embedText builds the text submitted to the Embedder for one chunk. A
// pure rename has no lines, so it submits the original's literal
// description instead (scenario S1).
func embedText(c diffmodel.DiffChunk) string {
	if c.IsRename {
		return fmt.Sprintf("renamed file from %s to %s", c.OldFilepath, c.Filepath)
	}
	return c.CombineContent()
}

func preview(c diffmodel.DiffChunk) string {
	content := c.CombineContent()
	line := strings.SplitN(content, "\n", 2)[0]
	if len(line) > previewMaxChars {
		return embedder.Utf8Substr(line, previewMaxChars)
	}
	return line
}

// CommitOutput is one entry of the threshold-mode "commits" array.
type CommitOutput struct {
	ClusterID  int      `json:"cluster_id"`
	PatchFiles []string `json:"patch_files"`
	Message    string   `json:"message"`
}

// VisualizationPoint is one entry of the threshold-mode visualization's
// "points" array.
type VisualizationPoint struct {
	ID        int     `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ClusterID int     `json:"cluster_id"`
	Filepath  string  `json:"filepath"`
	Preview   string  `json:"preview"`
}

// VisualizationCluster is one entry of the threshold-mode visualization's
// "clusters" array.
type VisualizationCluster struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

// Visualization is echoed back in the threshold-mode output, built from
// the merge-mode chunk coordinates and the clusters ThresholdCut found.
type Visualization struct {
	Points   []VisualizationPoint   `json:"points"`
	Clusters []VisualizationCluster `json:"clusters"`
}

// ThresholdOutput is threshold mode's JSON document.
type ThresholdOutput struct {
	Commits       []CommitOutput `json:"commits"`
	Visualization Visualization  `json:"visualization"`
}

// RunThreshold cuts merged's dendrogram at t, writes each cluster's patches
// under workDir/cluster_<i>/, summarizes each cluster that produced at least
// one patch file, and returns the threshold-mode document. workDir is
// cleared and recreated first so a
// prior run's files cannot leak into this one (spec.md §5).
func RunThreshold(ctx context.Context, merged *MergeOutput, t float64, workDir string, summ summarizer.Summarizer) (*ThresholdOutput, error) {
	if err := os.RemoveAll(workDir); err != nil {
		return nil, fmt.Errorf("failed to clear scratch directory: %w", err)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	n := len(merged.Chunks)
	groups := threshold.Cut(n, merged.Dendrogram.Merges, t)

	out := &ThresholdOutput{
		Commits: make([]CommitOutput, 0, len(groups)),
	}

	for clusterID, members := range groups {
		sort.Ints(members)

		chunks := make([]diffmodel.DiffChunk, len(members))
		for i, idx := range members {
			chunks[i] = merged.Chunks[idx].DiffChunk
		}

		patches := patch.CreatePatches(chunks)

		clusterDir := filepath.Join(workDir, fmt.Sprintf("cluster_%d", clusterID))
		if err := os.MkdirAll(clusterDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cluster directory: %w", err)
		}

		var patchFiles []string
		j := 0
		for _, p := range patches {
			if p == "" {
				slog.Debug("skipping empty patch", "cluster", clusterID)
				continue
			}
			name := fmt.Sprintf("patch_%d.patch", j)
			path := filepath.Join(clusterDir, name)
			if err := os.WriteFile(path, []byte(p), 0o644); err != nil {
				return nil, fmt.Errorf("failed to write patch file: %w", err)
			}
			patchFiles = append(patchFiles, path)
			j++
		}

		// A cluster whose members were all trivial (EQ-only) chunks writes
		// no patches; the original source skips it entirely — no commit
		// entry, no summarization call — rather than summarizing nothing.
		if len(patchFiles) == 0 {
			slog.Debug("skipping cluster with no valid patches", "cluster", clusterID)
		} else {
			diffContext := summarizer.BuildDiffContext(chunks)
			message := summ.Summarize(ctx, diffContext)

			out.Commits = append(out.Commits, CommitOutput{
				ClusterID:  clusterID,
				PatchFiles: patchFiles,
				Message:    message,
			})

			out.Visualization.Clusters = append(out.Visualization.Clusters, VisualizationCluster{
				ID:      clusterID,
				Message: message,
			})
		}

		for _, idx := range members {
			co := merged.Chunks[idx]
			out.Visualization.Points = append(out.Visualization.Points, VisualizationPoint{
				ID:        co.Index,
				X:         co.UmapX,
				Y:         co.UmapY,
				ClusterID: clusterID,
				Filepath:  co.Filepath,
				Preview:   co.Preview,
			})
		}
	}

	return out, nil
}

// LoadMergeOutput reads a previously-written merge-mode JSON document.
func LoadMergeOutput(r io.Reader) (*MergeOutput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read merge document: %w", err)
	}
	var out MergeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse merge document: %w", err)
	}
	return &out, nil
}
