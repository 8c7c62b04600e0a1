// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

const (
	// DefaultMaxFileSize is the extractor's input size limit (5 MiB).
	DefaultMaxFileSize = 5 * 1024 * 1024

	// WarnFileSize triggers a large-file warning log (1 MiB).
	WarnFileSize = 1024 * 1024
)

// mutatingMethods are receiver methods treated as in-place mutations.
var mutatingMethods = map[string]bool{
	"push": true, "pop": true, "shift": true, "unshift": true,
	"splice": true, "sort": true, "reverse": true, "fill": true,
	"copyWithin": true, "set": true, "delete": true, "clear": true,
}

// ExtractorOption configures an Extractor instance.
type ExtractorOption func(*Extractor)

// WithMaxFileSize sets the maximum input size the extractor accepts.
func WithMaxFileSize(bytes int64) ExtractorOption {
	return func(e *Extractor) {
		if bytes > 0 {
			e.maxFileSize = bytes
		}
	}
}

// Extractor builds SourceModels from raw source text.
//
// Description:
//
//	Extractor uses tree-sitter to parse TypeScript/TSX/JavaScript and
//	extract the normalized structural lists the category analyzers diff.
//	It is error-tolerant: input with syntax errors yields a partial
//	model flagged Partial, never a failure.
//
// Thread Safety:
//
//	Extractor instances are safe for concurrent use. Each Extract call
//	creates its own tree-sitter parser instance internally.
type Extractor struct {
	maxFileSize int64
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses content and builds a SourceModel.
//
// Inputs:
//   - ctx: Context for cancellation. Checked before and after parsing;
//     tree-sitter parsing itself cannot be interrupted mid-parse.
//   - content: Raw source bytes. Must be valid UTF-8.
//   - filePath: Path used for the model and change locations.
//   - dialect: DialectMarkup selects the TSX grammar, DialectPlain the
//     TypeScript grammar.
//
// Outputs:
//   - *SourceModel: Never nil on success; may be partial for malformed
//     input. The caller owns the model and must Close it.
//   - error: ErrFileTooLarge, ErrInvalidContent, or context errors.
func (e *Extractor) Extract(ctx context.Context, content []byte, filePath string, dialect Dialect) (*SourceModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract canceled before start: %w", err)
	}
	if int64(len(content)) > e.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), e.maxFileSize)
	}
	if len(content) > WarnFileSize {
		slog.Warn("extracting large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	parser := sitter.NewParser()
	if dialect == DialectMarkup {
		parser.SetLanguage(tsx.GetLanguage())
	} else {
		parser.SetLanguage(typescript.GetLanguage())
	}

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		tree.Close()
		return nil, fmt.Errorf("extract canceled after parse: %w", err)
	}

	model := &SourceModel{
		Model: StructuralModel{
			FilePath:  filePath,
			Dialect:   dialect,
			Functions: make([]FunctionSite, 0),
			Types:     make([]TypeSite, 0),
			Calls:     make([]CallSite, 0),
			Imports:   make([]ImportSite, 0),
		},
		tree: tree,
	}

	root := tree.RootNode()
	if root == nil {
		model.Model.Partial = true
		return model, nil
	}
	if root.HasError() {
		model.Model.Partial = true
	}

	w := &walker{content: content, model: &model.Model, markup: dialect == DialectMarkup}
	w.walk(root, scopeCtx{kind: ScopeModule})

	return model, nil
}

// scopeCtx carries the enclosing container down the walk.
type scopeCtx struct {
	kind     ScopeKind
	name     string
	funcName string // nearest enclosing named function, for bucketing
}

// walker performs a single depth-first extraction pass.
type walker struct {
	content []byte
	model   *StructuralModel
	markup  bool
}

func (w *walker) text(n *sitter.Node) string {
	return nodeText(n, w.content)
}

// walk dispatches on node type; unhandled nodes recurse into all named
// children under the current scope.
func (w *walker) walk(n *sitter.Node, scope scopeCtx) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "export_statement":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			w.walk(n.NamedChild(i), scope)
		}

	case "import_statement":
		w.extractImport(n)

	case "function_declaration", "generator_function_declaration", "function_signature":
		w.extractFunction(n, scope, "", false)

	case "class_declaration", "abstract_class_declaration":
		w.extractClass(n, scope)

	case "interface_declaration":
		w.extractInterface(n)

	case "type_alias_declaration":
		w.extractTypeAlias(n)

	case "enum_declaration":
		w.extractEnum(n)

	case "lexical_declaration", "variable_declaration":
		w.extractVariableStatement(n, scope)

	case "call_expression":
		w.extractCall(n, scope)

	case "new_expression":
		w.extractNew(n, scope)

	case "await_expression":
		w.model.Promises = append(w.model.Promises, PromiseSite{
			Kind:          PromiseAwait,
			Subject:       NormalizeText(w.text(n.NamedChild(0))),
			EnclosingFunc: scope.funcName,
			Span:          spanOf(n),
		})
		w.walkChildren(n, scope)

	case "ternary_expression":
		w.model.Ternaries = append(w.model.Ternaries, TernarySite{
			Condition:     NormalizeText(w.text(n.ChildByFieldName("condition"))),
			WhenTrue:      NormalizeText(w.text(n.ChildByFieldName("consequence"))),
			WhenFalse:     NormalizeText(w.text(n.ChildByFieldName("alternative"))),
			EnclosingFunc: scope.funcName,
			Span:          spanOf(n),
		})
		w.walkChildren(n, scope)

	case "assignment_expression":
		w.extractAssignment(n, "=", scope)

	case "augmented_assignment_expression":
		op := "="
		if opNode := n.ChildByFieldName("operator"); opNode != nil {
			op = opNode.Type()
		}
		w.extractAssignment(n, op, scope)

	case "jsx_element":
		if w.markup {
			w.extractMarkup(n.ChildByFieldName("open_tag"), false, scope)
		}
		w.walkChildren(n, scope)

	case "jsx_self_closing_element":
		if w.markup {
			w.extractMarkup(n, true, scope)
		}
		w.walkChildren(n, scope)

	default:
		w.walkChildren(n, scope)
	}
}

func (w *walker) walkChildren(n *sitter.Node, scope scopeCtx) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i), scope)
	}
}

// extractImport handles ES module import statements.
func (w *walker) extractImport(n *sitter.Node) {
	imp := ImportSite{Span: spanOf(n)}

	sawClause := false
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "type":
			imp.TypeOnly = true
		case "import_clause":
			sawClause = true
			w.extractImportClause(child, &imp)
		case "string":
			imp.Module = stringContent(child, w.content)
		}
	}
	if imp.Module == "" {
		return
	}
	imp.SideEffectOnly = !sawClause
	w.model.Imports = append(w.model.Imports, imp)
}

func (w *walker) extractImportClause(clause *sitter.Node, imp *ImportSite) {
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "identifier":
			imp.Default = w.text(child)
		case "namespace_import":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if gc := child.NamedChild(j); gc.Type() == "identifier" {
					imp.Namespace = w.text(gc)
				}
			}
		case "named_imports":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				if text := w.importSpecifier(spec); text != "" {
					imp.Specifiers = append(imp.Specifiers, text)
				}
			}
		}
	}
}

func (w *walker) importSpecifier(spec *sitter.Node) string {
	name := w.text(spec.ChildByFieldName("name"))
	alias := w.text(spec.ChildByFieldName("alias"))
	if alias != "" {
		return name + " as " + alias
	}
	return name
}

// extractFunction records one FunctionSite and walks its body under a
// function scope. className is set for class members.
func (w *walker) extractFunction(n *sitter.Node, scope scopeCtx, overrideName string, static bool) {
	name := overrideName
	if name == "" {
		name = w.text(n.ChildByFieldName("name"))
	}
	if name == "" {
		w.walkChildren(n, scope)
		return
	}

	site := FunctionSite{
		Name:      name,
		ScopeKind: scope.kind,
		ScopeName: scope.name,
		Static:    static,
		Generator: n.Type() == "generator_function_declaration",
		Span:      spanOf(n),
	}
	w.fillFunctionDetails(n, &site)
	w.model.Functions = append(w.model.Functions, site)

	if body := n.ChildByFieldName("body"); body != nil {
		w.walk(body, scopeCtx{kind: ScopeFunction, name: name, funcName: name})
	}
}

// fillFunctionDetails extracts params, return type, type params, body
// text and modifiers, and builds the normalized signature.
func (w *walker) fillFunctionDetails(n *sitter.Node, site *FunctionSite) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "async":
			site.Async = true
		case "*":
			site.Generator = true
		case "accessibility_modifier":
			site.Visibility = w.text(child)
		case "static":
			site.Static = true
		}
	}

	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		site.TypeParams = NormalizeText(w.text(tp))
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		site.Params = w.extractParams(params)
	} else if p := n.ChildByFieldName("parameter"); p != nil {
		// Arrow functions with a single bare parameter.
		site.Params = []Param{{Name: w.text(p)}}
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		site.ReturnType = CanonicalType(typeAnnotationText(rt, w.content))
	}
	if body := n.ChildByFieldName("body"); body != nil {
		site.BodyText = NormalizeText(w.text(body))
	}
	site.Signature = buildSignature(site)
}

// buildSignature renders the normalized signature text used in reports.
func buildSignature(site *FunctionSite) string {
	var b strings.Builder
	if site.Static {
		b.WriteString("static ")
	}
	if site.Async {
		b.WriteString("async ")
	}
	b.WriteString(site.Name)
	if site.TypeParams != "" {
		b.WriteString(site.TypeParams)
	}
	b.WriteByte('(')
	for i, p := range site.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Rest {
			b.WriteString("...")
		}
		if p.Destructured {
			b.WriteByte('{')
			b.WriteString(strings.Join(p.Keys, ", "))
			b.WriteByte('}')
		} else if p.Name != "" {
			b.WriteString(p.Name)
		} else {
			b.WriteByte('_')
		}
		if p.Optional {
			b.WriteByte('?')
		}
		if p.Type != "" {
			b.WriteString(": ")
			b.WriteString(p.Type)
		}
	}
	b.WriteByte(')')
	if site.ReturnType != "" {
		b.WriteString(": ")
		b.WriteString(site.ReturnType)
	}
	return b.String()
}

// extractParams reduces a formal_parameters node to Param shapes.
func (w *walker) extractParams(params *sitter.Node) []Param {
	out := make([]Param, 0, int(params.NamedChildCount()))
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		var p Param
		switch child.Type() {
		case "required_parameter", "optional_parameter":
			p.Optional = child.Type() == "optional_parameter"
			pattern := child.ChildByFieldName("pattern")
			w.fillParamPattern(pattern, &p)
			if t := child.ChildByFieldName("type"); t != nil {
				p.Type = CanonicalType(typeAnnotationText(t, w.content))
			}
			if child.ChildByFieldName("value") != nil {
				p.Optional = true
			}
		case "identifier":
			p.Name = w.text(child)
		case "rest_pattern":
			p.Rest = true
			w.fillParamPattern(child.NamedChild(0), &p)
		case "object_pattern":
			w.fillParamPattern(child, &p)
		case "assignment_pattern":
			p.Optional = true
			w.fillParamPattern(child.ChildByFieldName("left"), &p)
		default:
			continue
		}
		out = append(out, p)
	}
	return out
}

// fillParamPattern resolves the binding pattern of one parameter.
func (w *walker) fillParamPattern(pattern *sitter.Node, p *Param) {
	if pattern == nil {
		return
	}
	switch pattern.Type() {
	case "identifier", "this":
		p.Name = w.text(pattern)
	case "rest_pattern":
		p.Rest = true
		w.fillParamPattern(pattern.NamedChild(0), p)
	case "object_pattern":
		p.Destructured = true
		p.Keys = append(p.Keys, destructuredKeys(pattern, w.content)...)
	case "array_pattern":
		p.Name = NormalizeText(w.text(pattern))
	default:
		p.Name = NormalizeText(w.text(pattern))
	}
}

// destructuredKeys lists property keys of an object pattern.
func destructuredKeys(pattern *sitter.Node, content []byte) []string {
	keys := make([]string, 0, int(pattern.NamedChildCount()))
	for i := 0; i < int(pattern.NamedChildCount()); i++ {
		child := pattern.NamedChild(i)
		switch child.Type() {
		case "shorthand_property_identifier_pattern":
			keys = append(keys, nodeText(child, content))
		case "pair_pattern":
			keys = append(keys, nodeText(child.ChildByFieldName("key"), content))
		case "object_assignment_pattern":
			left := child.ChildByFieldName("left")
			if left != nil {
				keys = append(keys, nodeText(left, content))
			}
		case "rest_pattern":
			keys = append(keys, NormalizeText(nodeText(child, content)))
		}
	}
	return keys
}

// extractClass records the class shape, its methods as FunctionSites,
// and walks method bodies.
func (w *walker) extractClass(n *sitter.Node, scope scopeCtx) {
	name := w.text(n.ChildByFieldName("name"))
	if name == "" {
		w.walkChildren(n, scope)
		return
	}

	shape := ShapeSite{Name: name, Kind: ShapeClass, Span: spanOf(n)}
	body := n.ChildByFieldName("body")
	if body == nil {
		w.model.Shapes = append(w.model.Shapes, shape)
		return
	}

	classScope := scopeCtx{kind: ScopeClass, name: name, funcName: scope.funcName}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_definition", "abstract_method_signature":
			methodName := w.text(member.ChildByFieldName("name"))
			if methodName == "" {
				continue
			}
			site := FunctionSite{
				Name:      methodName,
				ScopeKind: ScopeClass,
				ScopeName: name,
				Span:      spanOf(member),
			}
			w.fillFunctionDetails(member, &site)
			w.model.Functions = append(w.model.Functions, site)
			shape.Members = append(shape.Members, site.Signature)

			if mbody := member.ChildByFieldName("body"); mbody != nil {
				w.walk(mbody, scopeCtx{kind: ScopeFunction, name: methodName, funcName: methodName})
			}
		case "public_field_definition", "field_definition":
			fieldName := w.text(member.ChildByFieldName("name"))
			if fieldName == "" {
				continue
			}
			fieldType := ""
			if t := member.ChildByFieldName("type"); t != nil {
				fieldType = CanonicalType(typeAnnotationText(t, w.content))
			}
			sig := fieldName
			if fieldType != "" {
				sig += ": " + fieldType
			}
			shape.Members = append(shape.Members, sig)
			// Field initializers may contain calls and arrow functions.
			if value := member.ChildByFieldName("value"); value != nil {
				if value.Type() == "arrow_function" || value.Type() == "function_expression" {
					fn := FunctionSite{
						Name:      fieldName,
						ScopeKind: ScopeClass,
						ScopeName: name,
						Span:      spanOf(member),
					}
					w.fillFunctionDetails(value, &fn)
					fn.Signature = buildSignature(&fn)
					w.model.Functions = append(w.model.Functions, fn)
					if fbody := value.ChildByFieldName("body"); fbody != nil {
						w.walk(fbody, scopeCtx{kind: ScopeFunction, name: fieldName, funcName: fieldName})
					}
				} else {
					w.walk(value, classScope)
				}
			}
		}
	}
	w.model.Shapes = append(w.model.Shapes, shape)
}

// extractInterface records the interface as both a TypeSite (definition
// diffing) and a ShapeSite (member diffing).
func (w *walker) extractInterface(n *sitter.Node) {
	name := w.text(n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	body := n.ChildByFieldName("body")

	site := TypeSite{
		Name:       name,
		Kind:       TypeInterface,
		Definition: CanonicalType(w.text(body)),
		Span:       spanOf(n),
	}
	w.model.Types = append(w.model.Types, site)

	shape := ShapeSite{Name: name, Kind: ShapeInterface, Span: spanOf(n)}
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			if member.Type() == "comment" {
				continue
			}
			shape.Members = append(shape.Members, NormalizeText(w.text(member)))
		}
	}
	w.model.Shapes = append(w.model.Shapes, shape)
}

// extractTypeAlias records a `type X = ...` declaration.
func (w *walker) extractTypeAlias(n *sitter.Node) {
	name := w.text(n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	w.model.Types = append(w.model.Types, TypeSite{
		Name:       name,
		Kind:       TypeAlias,
		Definition: CanonicalType(w.text(n.ChildByFieldName("value"))),
		Span:       spanOf(n),
	})
}

// extractEnum records an enum declaration.
func (w *walker) extractEnum(n *sitter.Node) {
	name := w.text(n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	w.model.Types = append(w.model.Types, TypeSite{
		Name:       name,
		Kind:       TypeEnum,
		Definition: NormalizeText(w.text(n.ChildByFieldName("body"))),
		Span:       spanOf(n),
	})
}

// extractVariableStatement handles const/let/var statements: function
// initializers become FunctionSites, module-level declarations become
// ShapeSites, and initializer expressions are walked for call sites.
func (w *walker) extractVariableStatement(n *sitter.Node, scope scopeCtx) {
	declKind := "var"
	for i := 0; i < int(n.ChildCount()); i++ {
		if t := n.Child(i).Type(); t == "const" || t == "let" {
			declKind = t
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		decl := n.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		name := w.text(decl.ChildByFieldName("name"))
		value := unwrapExpression(decl.ChildByFieldName("value"))

		if value != nil && (value.Type() == "arrow_function" || value.Type() == "function_expression" || value.Type() == "generator_function") {
			if name != "" {
				site := FunctionSite{
					Name:      name,
					ScopeKind: scope.kind,
					ScopeName: scope.name,
					Generator: value.Type() == "generator_function",
					Span:      spanOf(decl),
				}
				w.fillFunctionDetails(value, &site)
				w.model.Functions = append(w.model.Functions, site)
			}
			if body := value.ChildByFieldName("body"); body != nil {
				w.walk(body, scopeCtx{kind: ScopeFunction, name: name, funcName: name})
			}
			continue
		}

		if scope.kind == ScopeModule && name != "" {
			w.model.Shapes = append(w.model.Shapes, ShapeSite{
				Name:        name,
				Kind:        ShapeVariable,
				DeclKind:    declKind,
				Initializer: NormalizeText(w.text(decl.ChildByFieldName("value"))),
				Span:        spanOf(decl),
			})
		}
		if value != nil {
			w.walk(value, scope)
		}
	}
}

// extractCall records one CallSite plus any promise, mutation, or hook
// facts derivable from it, then walks the arguments.
func (w *walker) extractCall(n *sitter.Node, scope scopeCtx) {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	callee := w.text(fn)
	if callee == "" {
		w.walkChildren(n, scope)
		return
	}

	site := CallSite{
		Callee:        callee,
		EnclosingFunc: scope.funcName,
		Span:          spanOf(n),
	}

	if args != nil && args.Type() == "template_string" {
		site.TemplateText = NormalizeText(w.text(args))
	} else if args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			if arg.Type() == "comment" {
				continue
			}
			site.Args = append(site.Args, NormalizeText(w.text(arg)))
		}
	}

	// Promise chain usage.
	if fn != nil && fn.Type() == "member_expression" {
		prop := w.text(fn.ChildByFieldName("property"))
		subject := NormalizeText(w.text(fn.ChildByFieldName("object")))
		switch prop {
		case "then":
			w.model.Promises = append(w.model.Promises, PromiseSite{
				Kind: PromiseThen, Subject: subject, EnclosingFunc: scope.funcName, Span: spanOf(n)})
		case "catch":
			w.model.Promises = append(w.model.Promises, PromiseSite{
				Kind: PromiseCatch, Subject: subject, EnclosingFunc: scope.funcName, Span: spanOf(n)})
		case "finally":
			w.model.Promises = append(w.model.Promises, PromiseSite{
				Kind: PromiseFinally, Subject: subject, EnclosingFunc: scope.funcName, Span: spanOf(n)})
		}
		if mutatingMethods[prop] && subject != "" {
			w.model.Mutations = append(w.model.Mutations, MutationSite{
				Target:        subject,
				Op:            prop,
				EnclosingFunc: scope.funcName,
				Span:          spanOf(n),
			})
		}
	}

	// Hook-pattern dependency list.
	if isHookName(callee) {
		site.IsHook = true
		if args != nil && args.Type() != "template_string" && args.NamedChildCount() >= 2 {
			depArg := args.NamedChild(int(args.NamedChildCount()) - 1)
			if deps := resolveDependencyList(depArg, w.content); deps != nil {
				site.HasDeps = true
				site.Deps = deps
				site.DepsRaw = NormalizeText(w.text(depArg))
			}
		}
	}

	w.model.Calls = append(w.model.Calls, site)
	if args != nil {
		w.walkChildren(args, scope)
	}
	// The callee itself may contain nested calls (e.g. f().g()).
	if fn != nil {
		w.walkChildren(fn, scope)
	}
}

// extractNew records constructor invocations.
func (w *walker) extractNew(n *sitter.Node, scope scopeCtx) {
	ctor := n.ChildByFieldName("constructor")
	callee := w.text(ctor)
	if callee == "" {
		w.walkChildren(n, scope)
		return
	}

	site := CallSite{
		Callee:        callee,
		IsNew:         true,
		EnclosingFunc: scope.funcName,
		Span:          spanOf(n),
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			if arg.Type() == "comment" {
				continue
			}
			site.Args = append(site.Args, NormalizeText(w.text(arg)))
		}
	}
	w.model.Calls = append(w.model.Calls, site)

	if callee == "Promise" {
		w.model.Promises = append(w.model.Promises, PromiseSite{
			Kind:          PromiseNew,
			Subject:       "Promise",
			EnclosingFunc: scope.funcName,
			Span:          spanOf(n),
		})
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		w.walkChildren(args, scope)
	}
}

// extractAssignment records member/index assignments as mutations.
func (w *walker) extractAssignment(n *sitter.Node, op string, scope scopeCtx) {
	left := n.ChildByFieldName("left")
	if left != nil && (left.Type() == "member_expression" || left.Type() == "subscript_expression") {
		w.model.Mutations = append(w.model.Mutations, MutationSite{
			Target:        NormalizeText(w.text(left)),
			Op:            op,
			EnclosingFunc: scope.funcName,
			Span:          spanOf(n),
		})
	}
	if right := n.ChildByFieldName("right"); right != nil {
		w.walk(right, scope)
	}
	if left != nil {
		w.walkChildren(left, scope)
	}
}

// extractMarkup records one declarative markup element from an opening
// or self-closing JSX tag.
func (w *walker) extractMarkup(tag *sitter.Node, selfClosing bool, scope scopeCtx) {
	if tag == nil {
		return
	}
	name := w.text(tag.ChildByFieldName("name"))
	if name == "" {
		return
	}
	el := MarkupElement{
		Tag:           name,
		SelfClosing:   selfClosing,
		EnclosingFunc: scope.funcName,
		Span:          spanOf(tag),
	}
	for i := 0; i < int(tag.NamedChildCount()); i++ {
		child := tag.NamedChild(i)
		if child.Type() != "jsx_attribute" {
			continue
		}
		attr := MarkupAttr{}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			gc := child.NamedChild(j)
			if gc.Type() == "property_identifier" {
				attr.Name = w.text(gc)
			} else {
				attr.Value = NormalizeText(w.text(gc))
			}
		}
		if attr.Name != "" {
			el.Attrs = append(el.Attrs, attr)
		}
	}
	w.model.Elements = append(w.model.Elements, el)
}

// typeAnnotationText returns the type text of a type_annotation node,
// skipping the leading colon.
func typeAnnotationText(n *sitter.Node, content []byte) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() != ":" {
			return nodeText(child, content)
		}
	}
	return nodeText(n, content)
}

// stringContent extracts the unquoted content of a string node.
func stringContent(n *sitter.Node, content []byte) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "string_fragment" {
			return nodeText(child, content)
		}
	}
	raw := nodeText(n, content)
	return strings.Trim(raw, `"'`)
}
