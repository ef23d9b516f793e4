// Package patch re-emits DiffChunks as unified diff text, tracking
// cumulative line-offset deltas per file so that chunks reordered by
// clustering still carry correct hunk headers when applied in sequence.
package patch

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/agusespa/gcommit/internal/diffmodel"
	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// CreatePatch serializes a single chunk. includeFileHeader controls whether
// the "---" / "+++" preamble is emitted ahead of the hunk body; a
// "diff --git" line and "rename from/to" lines precede it only when the
// chunk renames its file, so other hunks carry no "diff --git" line. A pure
// rename (differing paths, no lines) always emits the four-line rename
// patch, whatever includeFileHeader says. Any other chunk with no
// insertions or deletions (an all-EQ window) emits the empty string.
func CreatePatch(c diffmodel.DiffChunk, includeFileHeader bool) string {
	isRename := c.OldFilepath != c.Filepath && !c.IsNew && !c.IsDeleted
	isPureRename := isRename && len(c.Lines) == 0

	if isPureRename {
		var b strings.Builder
		fmt.Fprintf(&b, "diff --git a/%s b/%s\n", c.OldFilepath, c.Filepath)
		b.WriteString("similarity index 100%\n")
		fmt.Fprintf(&b, "rename from %s\n", c.OldFilepath)
		fmt.Fprintf(&b, "rename to %s\n", c.Filepath)
		return b.String()
	}

	if !c.IsNonTrivial() {
		return ""
	}
	oldCount, newCount := c.Counts()

	var b strings.Builder
	if includeFileHeader {
		if isRename {
			fmt.Fprintf(&b, "diff --git a/%s b/%s\n", c.OldFilepath, c.Filepath)
			fmt.Fprintf(&b, "rename from %s\n", c.OldFilepath)
			fmt.Fprintf(&b, "rename to %s\n", c.Filepath)
		}

		if c.IsNew {
			b.WriteString("--- /dev/null\n")
		} else {
			fmt.Fprintf(&b, "--- a/%s\n", c.OldFilepath)
		}
		if c.IsDeleted {
			b.WriteString("+++ /dev/null\n")
		} else {
			fmt.Fprintf(&b, "+++ b/%s\n", c.Filepath)
		}
	}

	fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", c.Start, oldCount, c.Start, newCount)

	for _, l := range c.Lines {
		switch l.Mode {
		case diffmodel.EQ:
			b.WriteString(" " + l.Content + "\n")
		case diffmodel.Insertion:
			b.WriteString("+" + l.Content + "\n")
		case diffmodel.Deletion:
			b.WriteString("-" + l.Content + "\n")
		case diffmodel.NoNewline:
			b.WriteString(l.Content + "\n")
		}
	}

	return b.String()
}

func createDeletePatch(filepath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", filepath, filepath)
	b.WriteString("deleted file mode 100644\n")
	fmt.Fprintf(&b, "--- a/%s\n", filepath)
	b.WriteString("+++ /dev/null\n")
	return b.String()
}

// CreatePatches serializes chunks in the given order (the cluster-grouping
// order, not necessarily input order) into one patch string per chunk, plus
// a file-deletion patch right after the last chunk of a deleted file,
// rewriting start values so that chunks of the same file remain correct
// when applied in sequence. Within-file order must already match the
// original diff's order; CreatePatches does not reorder within a file.
func CreatePatches(chunks []diffmodel.DiffChunk) []string {
	renamedFiles := make(map[string]string)
	fileCumulativeDeltas := make(map[string]*deltaMap)

	deletedLastIdx := make(map[string]int)
	newFirstIdx := make(map[string]int)
	for i, c := range chunks {
		if c.IsDeleted {
			deletedLastIdx[c.Filepath] = i
		}
		if c.IsNew {
			if _, ok := newFirstIdx[c.Filepath]; !ok {
				newFirstIdx[c.Filepath] = i
			}
		}
	}

	patches := make([]string, 0, len(chunks))

	for i, c := range chunks {
		chunk := c

		if newPath, ok := renamedFiles[chunk.OldFilepath]; ok {
			chunk.OldFilepath = newPath
			chunk.Filepath = newPath
		}

		if chunk.OldFilepath != chunk.Filepath && !chunk.IsNew && !chunk.IsDeleted {
			renamedFiles[chunk.OldFilepath] = chunk.Filepath
		}

		isDeletedFile := chunk.IsDeleted
		filepath := chunk.Filepath

		if chunk.IsNew && newFirstIdx[filepath] != i {
			chunk.IsNew = false
		}
		chunk.IsDeleted = false

		originalStart := chunk.Start

		deltas, ok := fileCumulativeDeltas[filepath]
		if !ok {
			deltas = newDeltaMap()
			fileCumulativeDeltas[filepath] = deltas
		}
		adjustment := deltas.adjustmentBefore(originalStart)
		chunk.Start += adjustment

		text := CreatePatch(chunk, true)
		if text != "" {
			validate(text)
		}
		patches = append(patches, text)

		oc, nc := chunk.Counts()
		delta := nc - oc
		if delta != 0 {
			deltas.addFrom(originalStart, delta)
			deltas.set(originalStart, adjustment+delta)
		}

		if last, ok := deletedLastIdx[filepath]; isDeletedFile && ok && last == i {
			patches = append(patches, createDeletePatch(filepath))
		}
	}

	return patches
}

// validate best-effort parses the emitted hunk back with sourcegraph/go-diff
// to catch an internally inconsistent header before it reaches disk. A
// parse failure is logged and never fatal: PatchEmitter has no fatal path.
func validate(patchText string) {
	if !strings.Contains(patchText, "@@") {
		return
	}
	if _, err := sgdiff.ParseFileDiff([]byte(patchText)); err != nil {
		slog.Debug("patch failed round-trip validation", "error", err)
	}
}

// deltaMap is the ordered original_start -> cumulative_delta map from
// spec.md §4.7, backed by a sorted slice since Go has no built-in ordered
// map and the chunk counts involved are small.
type deltaMap struct {
	starts []int
	deltas map[int]int
}

func newDeltaMap() *deltaMap {
	return &deltaMap{deltas: make(map[int]int)}
}

// adjustmentBefore returns the delta recorded at the largest key strictly
// less than s, or 0 if none exists.
func (d *deltaMap) adjustmentBefore(s int) int {
	best := -1
	for _, k := range d.starts {
		if k < s && k > best {
			best = k
		}
	}
	if best == -1 {
		return 0
	}
	return d.deltas[best]
}

// addFrom adds delta to every existing key >= s.
func (d *deltaMap) addFrom(s, delta int) {
	for _, k := range d.starts {
		if k >= s {
			d.deltas[k] += delta
		}
	}
}

func (d *deltaMap) set(s, v int) {
	if _, ok := d.deltas[s]; !ok {
		d.starts = append(d.starts, s)
		sort.Ints(d.starts)
	}
	d.deltas[s] = v
}
