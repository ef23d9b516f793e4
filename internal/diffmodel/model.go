// Package diffmodel holds the in-memory representation of a parsed diff:
// lines, chunks, merge events, and the dendrogram that clustering produces
// from them. Nothing in here parses or emits text; see internal/diffparser
// and internal/patch for that.
package diffmodel

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LineMode classifies one line of a unified diff hunk.
type LineMode int

const (
	EQ LineMode = iota
	Insertion
	Deletion
	NoNewline
)

func (m LineMode) String() string {
	switch m {
	case EQ:
		return "eq"
	case Insertion:
		return "insertion"
	case Deletion:
		return "deletion"
	case NoNewline:
		return "no_newline"
	default:
		return "unknown"
	}
}

func (m LineMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *LineMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "eq":
		*m = EQ
	case "insertion":
		*m = Insertion
	case "deletion":
		*m = Deletion
	case "no_newline":
		*m = NoNewline
	default:
		return fmt.Errorf("diffmodel: unknown line mode %q", s)
	}
	return nil
}

// DiffLine is one line inside a DiffChunk. LineNum is assigned sequentially
// within the parent chunk starting at 0, counting every line regardless of
// mode (matches the original parser's curr_line_num counter).
type DiffLine struct {
	Mode    LineMode `json:"mode"`
	Content string   `json:"content"`
	LineNum int      `json:"line_num"`
}

// DiffChunk is a contiguous region of a diff belonging to one file. It may
// be an entire original @@ hunk or a syntax-aligned sub-chunk produced by
// the chunker.
type DiffChunk struct {
	Filepath    string     `json:"filepath"`
	OldFilepath string     `json:"old_filepath"`
	Start       int        `json:"start"`
	Lines       []DiffLine `json:"lines"`
	IsNew       bool       `json:"is_new"`
	IsDeleted   bool       `json:"is_deleted"`
	IsRename    bool       `json:"is_rename"`
}

// CombineContent reassembles the chunk's line content, one line per
// DiffLine, newline-terminated. Used both to feed embedding text and to
// re-parse AST boundaries.
func (c DiffChunk) CombineContent() string {
	var b strings.Builder
	for _, l := range c.Lines {
		b.WriteString(l.Content)
		b.WriteByte('\n')
	}
	return b.String()
}

// Counts returns the old-side and new-side line counts a patch hunk for
// this chunk would report.
func (c DiffChunk) Counts() (oldCount, newCount int) {
	for _, l := range c.Lines {
		switch l.Mode {
		case EQ:
			oldCount++
			newCount++
		case Deletion:
			oldCount++
		case Insertion:
			newCount++
		}
	}
	return
}

// IsNonTrivial reports whether the chunk contains at least one insertion or
// deletion line. A chunk of only EQ lines emits no patch.
func (c DiffChunk) IsNonTrivial() bool {
	for _, l := range c.Lines {
		if l.Mode == Insertion || l.Mode == Deletion {
			return true
		}
	}
	return false
}

// MergeEvent is one step of a dendrogram: the two clusters that were found
// closest and merged, and the distance at which that happened.
type MergeEvent struct {
	Left     int     `json:"left"`
	Right    int     `json:"right"`
	Distance float64 `json:"distance"`
}

// MSTEdge is one edge of a minimum spanning tree over the complete distance
// graph. A is always less than B once canonicalized.
type MSTEdge struct {
	A        int     `json:"a"`
	B        int     `json:"b"`
	Distance float64 `json:"distance"`
}

// Canonicalize orders the edge endpoints so A < B.
func (e MSTEdge) Canonicalize() MSTEdge {
	if e.A > e.B {
		e.A, e.B = e.B, e.A
	}
	return e
}

// Dendrogram is the ascending-distance merge history produced by either
// clustering engine, labeled by chunk filepath.
type Dendrogram struct {
	Labels      []string     `json:"labels"`
	Merges      []MergeEvent `json:"merges"`
	MaxDistance float64      `json:"max_distance"`
}
