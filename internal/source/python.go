package source

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// pyExtractor extracts symbols and import specifiers from Python source files.
type pyExtractor struct{}

func (e *pyExtractor) Extract(root *tree_sitter.Node, src []byte) ([]Symbol, []string) {
	var symbols []Symbol
	var imports []string

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, src, &symbols, &imports)
	return symbols, imports
}

func (e *pyExtractor) walk(cursor *tree_sitter.TreeCursor, src []byte, symbols *[]Symbol, imports *[]string) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_definition":
		kind := KindFunction
		if insideClass(node) {
			kind = KindMethod
		}
		if sym := e.extractDef(node, src, kind); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "class_definition":
		if sym := e.extractDef(node, src, KindClass); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "import_statement":
		// import_statement children: "import" keyword then dotted_name(s).
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "dotted_name" {
				if name := child.Utf8Text(src); name != "" {
					*imports = append(*imports, name)
				}
			}
		}

	case "import_from_statement":
		if module := e.fromImportModule(node, src); module != "" {
			*imports = append(*imports, module)
		}
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, src, symbols, imports)
		for cursor.GotoNextSibling() {
			e.walk(cursor, src, symbols, imports)
		}
		cursor.GotoParent()
	}
}

func (e *pyExtractor) extractDef(node *tree_sitter.Node, src []byte, kind SymbolKind) *Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(src)
	startLine, endLine := span(node)
	return &Symbol{
		Name:      name,
		Kind:      kind,
		Exported:  !strings.HasPrefix(name, "_"),
		Signature: colonSignature(node, src),
		StartLine: startLine,
		EndLine:   endLine,
	}
}

// fromImportModule returns the module of a `from X import ...` statement,
// including any leading dots of a relative import.
func (e *pyExtractor) fromImportModule(node *tree_sitter.Node, src []byte) string {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && (child.Kind() == "dotted_name" || child.Kind() == "relative_import") {
				moduleNode = child
				break
			}
		}
	}
	if moduleNode == nil {
		return ""
	}
	return moduleNode.Utf8Text(src)
}

// insideClass walks ancestors to find whether a definition sits in a class
// body (directly or under a decorator).
func insideClass(node *tree_sitter.Node) bool {
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Kind() {
		case "class_definition":
			return true
		case "function_definition":
			return false
		}
	}
	return false
}
