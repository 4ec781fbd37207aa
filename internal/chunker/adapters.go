package chunker

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/cortexlocal/codeintel/internal/model"
)

// LanguageSpec binds a tree-sitter grammar to the "named unit" node
// kinds the chunker should emit chunks for, per spec §4.2. Grounded on
// the teacher's per-language parsers in internal/indexer/parsers/,
// whose switch statements over node.Kind() are the source of these
// tables.
type LanguageSpec struct {
	Grammar      func() *sitter.Language
	NodeKinds    map[string]model.ChunkKind
	CommentKinds map[string]bool
}

var specs = map[string]LanguageSpec{
	"go": {
		Grammar: func() *sitter.Language { return sitter.NewLanguage(golang.Language()) },
		NodeKinds: map[string]model.ChunkKind{
			"function_declaration": model.KindFunction,
			"method_declaration":   model.KindMethod,
			"type_declaration":     model.KindClass,
		},
		CommentKinds: map[string]bool{"comment": true},
	},
	"typescript": {
		Grammar: func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
		NodeKinds: map[string]model.ChunkKind{
			"class_declaration":      model.KindClass,
			"interface_declaration":  model.KindInterface,
			"function_declaration":   model.KindFunction,
			"method_definition":      model.KindMethod,
			"type_alias_declaration": model.KindClass,
		},
		CommentKinds: map[string]bool{"comment": true},
	},
	"javascript": {
		Grammar: func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
		NodeKinds: map[string]model.ChunkKind{
			"class_declaration":    model.KindClass,
			"function_declaration": model.KindFunction,
			"method_definition":    model.KindMethod,
		},
		CommentKinds: map[string]bool{"comment": true},
	},
	"python": {
		Grammar: func() *sitter.Language { return sitter.NewLanguage(python.Language()) },
		NodeKinds: map[string]model.ChunkKind{
			"class_definition":    model.KindClass,
			"function_definition": model.KindFunction,
		},
		CommentKinds: map[string]bool{"comment": true},
	},
	"rust": {
		Grammar: func() *sitter.Language { return sitter.NewLanguage(rust.Language()) },
		NodeKinds: map[string]model.ChunkKind{
			"struct_item":   model.KindClass,
			"trait_item":    model.KindInterface,
			"impl_item":     model.KindClass,
			"function_item": model.KindFunction,
			"mod_item":      model.KindModule,
		},
		CommentKinds: map[string]bool{"line_comment": true, "block_comment": true},
	},
	"java": {
		Grammar: func() *sitter.Language { return sitter.NewLanguage(java.Language()) },
		NodeKinds: map[string]model.ChunkKind{
			"class_declaration":       model.KindClass,
			"interface_declaration":   model.KindInterface,
			"enum_declaration":        model.KindClass,
			"method_declaration":      model.KindMethod,
			"constructor_declaration": model.KindMethod,
		},
		CommentKinds: map[string]bool{"line_comment": true, "block_comment": true},
	},
	"c": {
		Grammar: func() *sitter.Language { return sitter.NewLanguage(c.Language()) },
		NodeKinds: map[string]model.ChunkKind{
			"struct_specifier":    model.KindClass,
			"union_specifier":     model.KindClass,
			"enum_specifier":      model.KindClass,
			"function_definition": model.KindFunction,
		},
		CommentKinds: map[string]bool{"comment": true},
	},
	"cpp": {
		Grammar: func() *sitter.Language { return sitter.NewLanguage(cpp.Language()) },
		NodeKinds: map[string]model.ChunkKind{
			"class_specifier":     model.KindClass,
			"struct_specifier":    model.KindClass,
			"enum_specifier":      model.KindClass,
			"function_definition": model.KindFunction,
			"namespace_definition": model.KindModule,
		},
		CommentKinds: map[string]bool{"comment": true},
	},
	"ruby": {
		Grammar: func() *sitter.Language { return sitter.NewLanguage(ruby.Language()) },
		NodeKinds: map[string]model.ChunkKind{
			"class":  model.KindClass,
			"module": model.KindModule,
			"method": model.KindMethod,
		},
		CommentKinds: map[string]bool{"comment": true},
	},
	"php": {
		Grammar: func() *sitter.Language { return sitter.NewLanguage(php.LanguagePHP()) },
		NodeKinds: map[string]model.ChunkKind{
			"class_declaration":     model.KindClass,
			"interface_declaration": model.KindInterface,
			"trait_declaration":     model.KindClass,
			"function_definition":   model.KindFunction,
			"method_declaration":    model.KindMethod,
		},
		CommentKinds: map[string]bool{"comment": true},
	},
}

// SupportedLanguages lists the languages with a registered adapter.
func SupportedLanguages() []string {
	langs := make([]string, 0, len(specs))
	for lang := range specs {
		langs = append(langs, lang)
	}
	return langs
}

// Grammar exposes a language's tree-sitter grammar constructor, for
// callers outside the chunker that need to parse source directly (the
// symbol resolver's fallback scanner, notably).
func Grammar(language string) (func() *sitter.Language, bool) {
	spec, ok := specs[language]
	if !ok {
		return nil, false
	}
	return spec.Grammar, true
}
