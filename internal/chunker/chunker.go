// Package chunker subdivides a DiffChunk along syntax-tree boundaries and a
// character budget, falling back to line-windowed splitting when no
// grammar is available for the file's language. Grounded on
// original_source/shared/ast.cpp, reimplemented against
// github.com/tree-sitter/go-tree-sitter the way the teacher's
// internal/tools/*_parser.go files use that binding.
package chunker

import (
	"github.com/agusespa/gcommit/internal/diffmodel"
)

const (
	// DefaultASTMaxChars is the soft byte budget for AST-guided splitting.
	DefaultASTMaxChars = 1500
	// DefaultLineMaxChars is the soft byte budget for line-windowed
	// splitting, used for "text" files and for languages with no loaded
	// parser. An oversize AST split interval is not re-split by lines.
	DefaultLineMaxChars = 1000
)

// Chunker subdivides DiffChunks. The zero value is not usable; construct
// with New.
type Chunker struct {
	astMaxChars  int
	lineMaxChars int
	parsers      *astParsers
}

// New builds a Chunker with the default character budgets and every
// supported language's tree-sitter grammar loaded.
func New() (*Chunker, error) {
	parsers, err := newASTParsers()
	if err != nil {
		return nil, err
	}
	return &Chunker{
		astMaxChars:  DefaultASTMaxChars,
		lineMaxChars: DefaultLineMaxChars,
		parsers:      parsers,
	}, nil
}

// ChunkAll subdivides every chunk in order, passing pure renames through
// unchanged (they carry no lines to split).
func (c *Chunker) ChunkAll(chunks []diffmodel.DiffChunk) []diffmodel.DiffChunk {
	var out []diffmodel.DiffChunk
	for _, chunk := range chunks {
		if chunk.IsRename {
			out = append(out, chunk)
			continue
		}
		out = append(out, c.chunkOne(chunk)...)
	}
	return out
}

func (c *Chunker) chunkOne(chunk diffmodel.DiffChunk) []diffmodel.DiffChunk {
	lang := DetectLanguage(chunk.Filepath)
	if lang == "text" {
		return chunkByLines(chunk, c.lineMaxChars)
	}

	parser := c.parsers.get(lang)
	if parser == nil {
		return chunkByLines(chunk, c.lineMaxChars)
	}

	content := chunk.CombineContent()
	offsets := parser.childEndOffsets(content)
	return chunkByAST(offsets, chunk, c.astMaxChars)
}

// calculateDiffLinesSize sums each line's byte size plus its newline.
func calculateDiffLinesSize(lines []diffmodel.DiffLine) int {
	total := 0
	for _, l := range lines {
		total += len(l.Content) + 1
	}
	return total
}

// calculateLineOffset counts the EQ and DELETION lines in [start, end) —
// the old-side line advance those lines represent.
func calculateLineOffset(lines []diffmodel.DiffLine, start, end int) int {
	offset := 0
	if end > len(lines) {
		end = len(lines)
	}
	for i := start; i < end; i++ {
		switch lines[i].Mode {
		case diffmodel.EQ, diffmodel.Deletion:
			offset++
		}
	}
	return offset
}

// byteToLineIndex finds which line a byte offset into the combined content
// falls within, accounting for the trailing newline DiffChunk.CombineContent
// adds to every line.
func byteToLineIndex(lines []diffmodel.DiffLine, bytePos uint) int {
	var cur uint
	for i, l := range lines {
		lineEnd := cur + uint(len(l.Content)) + 1
		if bytePos < lineEnd {
			return i
		}
		cur = lineEnd
	}
	if len(lines) == 0 {
		return 0
	}
	return len(lines) - 1
}

// chunkByLines is the fallback path: emit groups of consecutive lines whose
// cumulative byte size does not exceed maxChars; a single oversize line
// forms its own chunk.
func chunkByLines(input diffmodel.DiffChunk, maxChars int) []diffmodel.DiffChunk {
	var chunks []diffmodel.DiffChunk
	if len(input.Lines) == 0 {
		return chunks
	}

	if calculateDiffLinesSize(input.Lines) <= maxChars {
		return []diffmodel.DiffChunk{input}
	}

	startIdx := 0
	cumulativeOffset := 0
	isFirst := true

	for startIdx < len(input.Lines) {
		cur := diffmodel.DiffChunk{
			Filepath:    input.Filepath,
			OldFilepath: input.OldFilepath,
			Start:       input.Start + cumulativeOffset,
			IsNew:       isFirst && input.IsNew,
		}

		curSize := 0
		curIdx := startIdx
		for curIdx < len(input.Lines) {
			line := input.Lines[curIdx]
			lineSize := len(line.Content) + 1

			if len(cur.Lines) > 0 && curSize+lineSize > maxChars {
				break
			}

			cur.Lines = append(cur.Lines, line)
			curSize += lineSize
			curIdx++
		}

		isLast := curIdx >= len(input.Lines)
		cur.IsDeleted = isLast && input.IsDeleted

		chunks = append(chunks, cur)

		if isLast {
			break
		}

		cumulativeOffset += calculateLineOffset(input.Lines, startIdx, curIdx)
		startIdx = curIdx
		isFirst = false
	}

	return chunks
}

// chunkByAST walks the root node's direct-child byte boundaries, translates
// them to line-index split points, and greedily packs split intervals into
// output chunks bounded by maxChars — a single oversize interval is still
// emitted alone, since the budget is only a soft bound between splits.
func chunkByAST(childEndOffsets []uint, diffChunk diffmodel.DiffChunk, maxChars int) []diffmodel.DiffChunk {
	var newChunks []diffmodel.DiffChunk
	if len(diffChunk.Lines) == 0 {
		return newChunks
	}

	splitPoints := []int{0}
	for _, end := range childEndOffsets {
		endLineIdx := byteToLineIndex(diffChunk.Lines, end)
		splitPoint := endLineIdx + 1
		if splitPoint > splitPoints[len(splitPoints)-1] && splitPoint <= len(diffChunk.Lines) {
			splitPoints = append(splitPoints, splitPoint)
		}
	}
	if splitPoints[len(splitPoints)-1] < len(diffChunk.Lines) {
		splitPoints = append(splitPoints, len(diffChunk.Lines))
	}

	cur := diffmodel.DiffChunk{Filepath: diffChunk.Filepath, OldFilepath: diffChunk.OldFilepath}
	curSize := 0
	curStartIdx := 0

	for i := 0; i+1 < len(splitPoints); i++ {
		startIdx := splitPoints[i]
		endIdx := splitPoints[i+1]

		segment := diffChunk.Lines[startIdx:endIdx]
		segSize := calculateDiffLinesSize(segment)

		if len(cur.Lines) > 0 && curSize+segSize > maxChars {
			cur.Start = diffChunk.Start + calculateLineOffset(diffChunk.Lines, 0, curStartIdx)
			newChunks = append(newChunks, cur)
			cur = diffmodel.DiffChunk{Filepath: diffChunk.Filepath, OldFilepath: diffChunk.OldFilepath}
			curSize = 0
			curStartIdx = startIdx
		}

		if len(cur.Lines) == 0 {
			curStartIdx = startIdx
		}

		cur.Lines = append(cur.Lines, segment...)
		curSize += segSize
	}

	if len(cur.Lines) > 0 {
		cur.Start = diffChunk.Start + calculateLineOffset(diffChunk.Lines, 0, curStartIdx)
		newChunks = append(newChunks, cur)
	}

	if len(newChunks) > 0 {
		newChunks[0].IsNew = diffChunk.IsNew
		newChunks[len(newChunks)-1].IsDeleted = diffChunk.IsDeleted
	}

	return newChunks
}
