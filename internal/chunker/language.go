package chunker

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// DetectLanguage maps a file extension to one of the chunker's known
// languages, or "text" for anything it doesn't have a grammar for (the
// chunker falls back to line-windowed splitting for "text").
func DetectLanguage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return "python"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".cxx", ".hpp", ".hh":
		return "cpp"
	case ".java":
		return "java"
	case ".js", ".jsx":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".go":
		return "go"
	default:
		return "text"
	}
}

// astParser wraps one tree-sitter grammar, used only to find the byte
// offsets where the root node's direct children end. Grounded on the
// teacher's internal/tools/*_parser.go, which each construct one
// sitter.Parser per language the same way.
type astParser struct {
	parser *sitter.Parser
}

func newASTParser(lang *sitter.Language) (*astParser, error) {
	p := sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		return nil, err
	}
	return &astParser{parser: p}, nil
}

// childEndOffsets parses content and returns the byte offset immediately
// past each direct child of the root node, in order.
func (a *astParser) childEndOffsets(content string) []uint {
	src := []byte(content)
	tree := a.parser.Parse(src, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	var offsets []uint
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		offsets = append(offsets, child.EndByte())
	}
	return offsets
}

// astParsers is the registry of language -> parser; newASTParsers builds
// every entry up front.
type astParsers struct {
	byLang map[string]*astParser
}

func newASTParsers() (*astParsers, error) {
	reg := &astParsers{byLang: make(map[string]*astParser)}

	langs := map[string]*sitter.Language{
		"python":     sitter.NewLanguage(tree_sitter_python.Language()),
		"c":          sitter.NewLanguage(tree_sitter_c.Language()),
		"cpp":        sitter.NewLanguage(tree_sitter_cpp.Language()),
		"java":       sitter.NewLanguage(tree_sitter_java.Language()),
		"go":         sitter.NewLanguage(tree_sitter_go.Language()),
		"javascript": sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		"typescript": sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
	}

	for name, lang := range langs {
		p, err := newASTParser(lang)
		if err != nil {
			return nil, err
		}
		reg.byLang[name] = p
	}

	return reg, nil
}

func (r *astParsers) get(lang string) *astParser {
	return r.byLang[lang]
}
