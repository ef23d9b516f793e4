package diffparser

import (
	"strings"
	"testing"

	"github.com/agusespa/gcommit/internal/diffmodel"
)

func TestParseSingleHunk(t *testing.T) {
	diff := "diff --git a/f.go b/f.go\n" +
		"--- a/f.go\n" +
		"+++ b/f.go\n" +
		"@@ -10,2 +10,3 @@\n" +
		" unchanged\n" +
		"+added\n" +
		" more\n"

	chunks, err := Parse(strings.NewReader(diff))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}

	c := chunks[0]
	if c.Filepath != "f.go" || c.OldFilepath != "f.go" {
		t.Errorf("unexpected filepaths: %+v", c)
	}
	if c.Start != 10 {
		t.Errorf("Start = %d, want 10", c.Start)
	}
	if len(c.Lines) != 3 {
		t.Fatalf("len(Lines) = %d, want 3", len(c.Lines))
	}
	if c.Lines[1].Mode != diffmodel.Insertion || c.Lines[1].Content != "added" {
		t.Errorf("unexpected second line: %+v", c.Lines[1])
	}
}

// TestParsePureRename covers scenario S1: a diff --git with no following
// hunks emits a single is_rename chunk with empty lines.
func TestParsePureRename(t *testing.T) {
	diff := "diff --git a/old.txt b/new.txt\n"

	chunks, err := Parse(strings.NewReader(diff))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}

	c := chunks[0]
	if !c.IsRename {
		t.Error("expected IsRename = true")
	}
	if len(c.Lines) != 0 {
		t.Errorf("expected empty lines, got %d", len(c.Lines))
	}
	if c.OldFilepath != "old.txt" || c.Filepath != "new.txt" {
		t.Errorf("unexpected filepaths: %+v", c)
	}
}

func TestParseNewFile(t *testing.T) {
	diff := "diff --git a/new.go b/new.go\n" +
		"new file mode 100644\n" +
		"--- /dev/null\n" +
		"+++ b/new.go\n" +
		"@@ -0,0 +1,2 @@\n" +
		"+line one\n" +
		"+line two\n"

	chunks, err := Parse(strings.NewReader(diff))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if !chunks[0].IsNew {
		t.Error("expected IsNew = true")
	}
}

func TestParseDeletedFile(t *testing.T) {
	diff := "diff --git a/gone.go b/gone.go\n" +
		"deleted file mode 100644\n" +
		"--- a/gone.go\n" +
		"+++ /dev/null\n" +
		"@@ -1,2 +0,0 @@\n" +
		"-line one\n" +
		"-line two\n"

	chunks, err := Parse(strings.NewReader(diff))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if !chunks[0].IsDeleted {
		t.Error("expected IsDeleted = true")
	}
}

func TestParseNoNewlineMarker(t *testing.T) {
	diff := "diff --git a/f.go b/f.go\n" +
		"--- a/f.go\n" +
		"+++ b/f.go\n" +
		"@@ -1,1 +1,1 @@\n" +
		"-old\n" +
		"+new\n" +
		"\\ No newline at end of file\n"

	chunks, err := Parse(strings.NewReader(diff))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	lines := chunks[0].Lines
	last := lines[len(lines)-1]
	if last.Mode != diffmodel.NoNewline {
		t.Errorf("expected last line to be NoNewline, got %v", last.Mode)
	}
	if last.Content != "\\ No newline at end of file" {
		t.Errorf("unexpected NoNewline content: %q", last.Content)
	}
}

func TestParseMalformedHunkHeaderDefaultsStartToOne(t *testing.T) {
	diff := "diff --git a/f.go b/f.go\n" +
		"--- a/f.go\n" +
		"+++ b/f.go\n" +
		"@@ garbage @@\n" +
		" line\n"

	chunks, err := Parse(strings.NewReader(diff))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if chunks[0].Start != 1 {
		t.Errorf("Start = %d, want 1", chunks[0].Start)
	}
}

func TestParseEmptyInput(t *testing.T) {
	chunks, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("len(chunks) = %d, want 0", len(chunks))
	}
}

func TestParseMultipleHunksSameFile(t *testing.T) {
	diff := "diff --git a/f.c b/f.c\n" +
		"--- a/f.c\n" +
		"+++ b/f.c\n" +
		"@@ -10,2 +10,3 @@\n" +
		" a\n" +
		"+b\n" +
		" c\n" +
		"@@ -50,1 +51,1 @@\n" +
		"-old\n" +
		"+new\n"

	chunks, err := Parse(strings.NewReader(diff))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("len(chunks) = %d, want 2", len(chunks))
	}
	if chunks[0].Start != 10 || chunks[1].Start != 50 {
		t.Errorf("unexpected starts: %d, %d", chunks[0].Start, chunks[1].Start)
	}
}
