// Package diffparser tokenizes a unified diff byte stream into DiffChunks.
package diffparser

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/agusespa/gcommit/internal/diffmodel"
)

type state int

const (
	outside state = iota
	inFile
	inHunk
)

var (
	fileHeaderRegex = regexp.MustCompile(`^diff --git a/(.*) b/(.*)`)
	hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
	deletedRegex    = regexp.MustCompile(`^deleted file mode`)
	newFileRegex    = regexp.MustCompile(`^new file mode`)
)

// Parser consumes a unified diff line by line, maintaining a small state
// machine (outside / in a file header / inside a hunk). It is single-pass,
// O(total bytes), and never mutates its input.
type Parser struct {
	state state

	curLineNum     int
	curFilepath    string
	curOldFilepath string
	curIsDeleted   bool
	curIsNew       bool

	chunks []diffmodel.DiffChunk
}

// New returns a fresh Parser.
func New() *Parser {
	return &Parser{state: outside}
}

// Parse reads the full diff from r and returns the parsed chunks. Malformed
// input is never fatal: unknown lines outside a hunk are ignored, and a
// hunk header with an unparseable range defaults start to 1.
func Parse(r io.Reader) ([]diffmodel.DiffChunk, error) {
	p := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		p.ingestLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	p.flushPendingRename()
	return p.chunks, nil
}

func (p *Parser) ingestLine(line string) {
	if m := fileHeaderRegex.FindStringSubmatch(line); m != nil {
		p.flushPendingRename()

		p.curOldFilepath = m[1]
		p.curFilepath = m[2]
		p.curLineNum = 0
		p.curIsDeleted = false
		p.curIsNew = false
		p.state = inFile
		return
	}

	if p.state == outside {
		return
	}

	if deletedRegex.MatchString(line) {
		p.curIsDeleted = true
		return
	}
	if newFileRegex.MatchString(line) {
		p.curIsNew = true
		return
	}

	if strings.HasPrefix(line, "@@") {
		start := 1
		if m := hunkHeaderRegex.FindStringSubmatch(line); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				start = v
			}
		}

		p.chunks = append(p.chunks, diffmodel.DiffChunk{
			Filepath:    p.curFilepath,
			OldFilepath: p.curOldFilepath,
			Start:       start,
			IsNew:       p.curIsNew,
			IsDeleted:   p.curIsDeleted,
		})
		p.curLineNum = 0
		p.state = inHunk
		return
	}

	if p.state != inHunk || len(p.chunks) == 0 {
		return
	}
	if line == "" {
		return
	}

	var dline diffmodel.DiffLine
	dline.LineNum = p.curLineNum
	switch line[0] {
	case '+':
		dline.Mode = diffmodel.Insertion
		dline.Content = line[1:]
	case '-':
		dline.Mode = diffmodel.Deletion
		dline.Content = line[1:]
	case ' ':
		dline.Mode = diffmodel.EQ
		dline.Content = line[1:]
	case '\\':
		dline.Mode = diffmodel.NoNewline
		dline.Content = line
	default:
		return
	}

	last := &p.chunks[len(p.chunks)-1]
	last.Lines = append(last.Lines, dline)
	p.curLineNum++
}

// flushPendingRename emits a pure-rename chunk when the current file
// declared differing old/new paths and no hunk has followed it yet.
func (p *Parser) flushPendingRename() {
	if p.state == inFile && p.curOldFilepath != p.curFilepath && p.curOldFilepath != "" {
		p.chunks = append(p.chunks, diffmodel.DiffChunk{
			Filepath:    p.curFilepath,
			OldFilepath: p.curOldFilepath,
			Start:       0,
			IsRename:    true,
		})
	}
}
