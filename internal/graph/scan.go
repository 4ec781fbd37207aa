package graph

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cortexlocal/codeintel/internal/chunker"
)

// definitionKinds lists, per language, the tree-sitter node kinds whose
// "name" child identifies a definition rather than a use. Grounded on
// the same per-language node-kind tables the chunker uses in
// adapters.go, widened to include parameters and local bindings that
// the chunker intentionally ignores (it only cares about chunk
// boundaries, not every binding site).
var definitionKinds = map[string]map[string]bool{
	"go": {
		"function_declaration": true, "method_declaration": true,
		"type_spec": true, "const_spec": true, "var_spec": true,
		"parameter_declaration": true,
	},
	"typescript": {
		"function_declaration": true, "class_declaration": true,
		"interface_declaration": true, "method_definition": true,
		"variable_declarator": true,
	},
	"javascript": {
		"function_declaration": true, "class_declaration": true,
		"method_definition": true, "variable_declarator": true,
	},
	"python": {
		"function_definition": true, "class_definition": true,
	},
	"rust": {
		"function_item": true, "struct_item": true, "trait_item": true,
		"mod_item": true, "let_declaration": true,
	},
	"java": {
		"class_declaration": true, "interface_declaration": true,
		"method_declaration": true, "constructor_declaration": true,
	},
	"c": {
		"function_definition": true, "struct_specifier": true,
		"declarator": true,
	},
	"cpp": {
		"function_definition": true, "class_specifier": true,
		"struct_specifier": true, "namespace_definition": true,
	},
	"ruby": {
		"class": true, "module": true, "method": true,
	},
	"php": {
		"class_declaration": true, "interface_declaration": true,
		"function_definition": true, "method_declaration": true,
	},
}

// identifierKinds lists the leaf node kinds that carry a plain
// identifier's text, across all supported grammars.
var identifierKinds = map[string]bool{
	"identifier": true, "type_identifier": true, "field_identifier": true,
	"property_identifier": true, "constant": true,
}

// scanFile walks source's parse tree looking for every occurrence of
// name, classifying each as a definition (it is the "name" field of a
// node in definitionKinds for this language) or a reference (any other
// identifier occurrence).
func scanFile(language, relPath, name string, source []byte) []Location {
	grammarFn, ok := chunker.Grammar(language)
	if !ok {
		return nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammarFn())

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	defKinds := definitionKinds[language]
	var locs []Location

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}

		if identifierKinds[node.Kind()] {
			text := string(source[node.StartByte():node.EndByte()])
			if text == name {
				kind := KindReference
				if parent := node.Parent(); parent != nil && defKinds[parent.Kind()] {
					if n := parent.ChildByFieldName("name"); n != nil && n.StartByte() == node.StartByte() {
						kind = KindDefinition
					}
				}
				locs = append(locs, Location{
					RelativePath: relPath,
					Line:         int(node.StartPosition().Row) + 1,
					Column:       int(node.StartPosition().Column) + 1,
					Kind:         kind,
				})
			}
		}

		count := int(node.NamedChildCount())
		for i := 0; i < count; i++ {
			walk(node.NamedChild(uint(i)))
		}
	}

	walk(tree.RootNode())
	return locs
}
