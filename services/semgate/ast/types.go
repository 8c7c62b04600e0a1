// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast provides the structural extractor that turns raw source text
// into a normalized StructuralModel used by the category analyzers.
//
// The extractor is built on tree-sitter and targets TypeScript, TSX and
// JavaScript. It is deliberately error-tolerant: malformed or mid-edit
// input produces a partial model rather than a failure.
//
// Design principles:
//   - Models are built once per diff and never mutated after extraction
//   - Normalized text (signatures, type definitions) is whitespace- and
//     idiom-insensitive so purely syntactic rewrites never register
//   - Analyzers consume the model lists and never touch a tree-sitter
//     handle; the tree lives only for the duration of extraction
package ast

import "strings"

// Dialect selects the grammar used for extraction.
type Dialect int

const (
	// DialectPlain parses with the plain TypeScript grammar.
	// Suitable for .ts, .mts, .cts and plain .js sources.
	DialectPlain Dialect = iota

	// DialectMarkup parses with the TSX grammar, enabling extraction of
	// declarative markup elements. Suitable for .tsx and .jsx sources.
	DialectMarkup
)

// DialectForPath returns the Dialect matching a file path's extension.
func DialectForPath(path string) Dialect {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tsx") || strings.HasSuffix(lower, ".jsx") {
		return DialectMarkup
	}
	return DialectPlain
}

// ScopeKind classifies the container enclosing a declaration.
type ScopeKind int

const (
	// ScopeModule is the top level of a file.
	ScopeModule ScopeKind = iota

	// ScopeClass is a class body.
	ScopeClass

	// ScopeInterface is an interface body.
	ScopeInterface

	// ScopeFunction is a function or method body.
	ScopeFunction

	// ScopeNamespace is a TypeScript namespace/module block.
	ScopeNamespace
)

// String returns the lowercase scope kind name.
func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeClass:
		return "class"
	case ScopeInterface:
		return "interface"
	case ScopeFunction:
		return "function"
	case ScopeNamespace:
		return "namespace"
	default:
		return "unknown"
	}
}

// Span is a source location. Lines are 1-indexed, columns 0-indexed,
// both ends inclusive of the node's extent.
type Span struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Param is one function parameter reduced to the shape that matters for
// call compatibility. Names and default-value text are extracted for
// diagnostics but excluded from identity comparisons.
type Param struct {
	// Name is the declared parameter name, or "" for pure patterns.
	Name string

	// Type is the canonicalized type annotation text ("" when untyped).
	Type string

	// Optional is true for `x?: T` and for parameters with defaults.
	Optional bool

	// Rest is true for `...xs` parameters.
	Rest bool

	// Destructured is true for object-pattern parameters.
	Destructured bool

	// Keys lists destructured property keys, in declaration order.
	Keys []string
}

// FunctionSite is one function or method extracted from a file version.
type FunctionSite struct {
	// Name is the declared name.
	Name string

	// ScopeKind and ScopeName identify the enclosing container, so a
	// method never collides with a same-named free function.
	ScopeKind ScopeKind
	ScopeName string

	// Static is true for static class members.
	Static bool

	// Visibility is "public", "private" or "protected" ("" when absent).
	Visibility string

	// Signature is the normalized full signature text.
	Signature string

	// ReturnType is the canonicalized return type ("" when absent).
	ReturnType string

	// Params holds the parameter shapes in order.
	Params []Param

	// TypeParams is the normalized generic parameter list text including
	// constraints and defaults ("" when non-generic).
	TypeParams string

	// BodyText is the normalized body text, used for rename inference.
	BodyText string

	// Async and Generator record execution-model modifiers.
	Async     bool
	Generator bool

	Span Span
}

// IdentityKey returns the composite key used to match a function across
// versions: name + enclosing scope + static flag + visibility.
func (f *FunctionSite) IdentityKey() string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteByte('|')
	b.WriteString(f.ScopeKind.String())
	b.WriteByte(':')
	b.WriteString(f.ScopeName)
	b.WriteByte('|')
	if f.Static {
		b.WriteString("static")
	}
	b.WriteByte('|')
	b.WriteString(f.Visibility)
	return b.String()
}

// DestructuredKeys returns the union of destructured parameter keys.
func (f *FunctionSite) DestructuredKeys() []string {
	var keys []string
	for _, p := range f.Params {
		if p.Destructured {
			keys = append(keys, p.Keys...)
		}
	}
	return keys
}

// TypeKind classifies a type definition site.
type TypeKind int

const (
	// TypeAlias is a `type X = ...` declaration.
	TypeAlias TypeKind = iota

	// TypeInterface is an interface declaration.
	TypeInterface

	// TypeEnum is an enum declaration.
	TypeEnum
)

// String returns the lowercase type kind name.
func (k TypeKind) String() string {
	switch k {
	case TypeAlias:
		return "alias"
	case TypeInterface:
		return "interface"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// TypeSite is one type definition extracted from a file version.
type TypeSite struct {
	Name string
	Kind TypeKind

	// Definition is the canonicalized definition text: whitespace
	// collapsed, comments stripped, list idioms rewritten to one form,
	// union members sorted.
	Definition string

	Span Span
}

// IdentityKey returns the matching key for a type across versions.
func (t *TypeSite) IdentityKey() string {
	return t.Name
}

// CallSite is one call expression extracted from a file version.
type CallSite struct {
	// Callee is the raw callee text as written (may contain `?.`,
	// bracket access, or `new`).
	Callee string

	// Args holds normalized argument texts in order. For tagged
	// templates Args is empty and TemplateText carries the literal.
	Args []string

	// IsNew is true for constructor invocations.
	IsNew bool

	// TemplateText is the normalized template literal for tagged
	// template calls ("" otherwise).
	TemplateText string

	// EnclosingFunc names the nearest enclosing function ("" at module
	// level), used for location bucketing.
	EnclosingFunc string

	// IsHook is true when the callee matches the reserved hook-pattern
	// naming convention (`use` followed by an uppercase letter).
	IsHook bool

	// HasDeps is true when a hook call declares a dependency argument.
	HasDeps bool

	// Deps is the flattened, scope-resolved dependency expression list.
	// Bare identifiers are expanded to their nearest enclosing scope's
	// array-literal initializer and spreads are expanded recursively.
	Deps []string

	// DepsRaw is the dependency argument as written, for diagnostics.
	DepsRaw string

	Span Span
}

// ImportSite is one import statement extracted from a file version.
type ImportSite struct {
	// Module is the imported module path.
	Module string

	// Specifiers lists named imports ("a", "a as b").
	Specifiers []string

	// Default is the default-import binding name ("" when absent).
	Default string

	// Namespace is the `* as ns` binding name ("" when absent).
	Namespace string

	// TypeOnly is true for `import type` statements, which have no
	// runtime effect and are invisible to the import analyzer.
	TypeOnly bool

	// SideEffectOnly is true for bare `import "mod"` statements.
	SideEffectOnly bool

	Span Span
}

// MarkupAttr is one attribute on a declarative markup element.
type MarkupAttr struct {
	Name  string
	Value string
}

// MarkupElement is one templated UI node (tag plus attributes).
type MarkupElement struct {
	Tag           string
	Attrs         []MarkupAttr
	SelfClosing   bool
	EnclosingFunc string
	Span          Span
}

// MutationSite is one in-place mutation: an assignment to a member or
// index expression, or a call to a known mutating method.
type MutationSite struct {
	// Target is the normalized path of the mutated expression.
	Target string

	// Op is the operator or method ("=", "+=", "push", "splice", ...).
	Op string

	EnclosingFunc string
	Span          Span
}

// PromiseKind classifies promise usage sites.
type PromiseKind int

const (
	// PromiseAwait is an `await` expression.
	PromiseAwait PromiseKind = iota

	// PromiseThen is a `.then(...)` chain call.
	PromiseThen

	// PromiseCatch is a `.catch(...)` chain call.
	PromiseCatch

	// PromiseFinally is a `.finally(...)` chain call.
	PromiseFinally

	// PromiseNew is a `new Promise(...)` construction.
	PromiseNew
)

// String returns the lowercase promise kind name.
func (k PromiseKind) String() string {
	switch k {
	case PromiseAwait:
		return "await"
	case PromiseThen:
		return "then"
	case PromiseCatch:
		return "catch"
	case PromiseFinally:
		return "finally"
	case PromiseNew:
		return "new-promise"
	default:
		return "unknown"
	}
}

// PromiseSite is one promise-usage site extracted from a file version.
type PromiseSite struct {
	Kind PromiseKind

	// Subject is the normalized expression the usage applies to.
	Subject string

	EnclosingFunc string
	Span          Span
}

// TernarySite is one conditional expression extracted from a file version.
type TernarySite struct {
	Condition string
	WhenTrue  string
	WhenFalse string

	EnclosingFunc string
	Span          Span
}

// ShapeKind classifies a shape declaration site.
type ShapeKind int

const (
	// ShapeClass is a class declaration.
	ShapeClass ShapeKind = iota

	// ShapeInterface is an interface declaration.
	ShapeInterface

	// ShapeVariable is a module-level variable declaration.
	ShapeVariable
)

// String returns the lowercase shape kind name.
func (k ShapeKind) String() string {
	switch k {
	case ShapeClass:
		return "class"
	case ShapeInterface:
		return "interface"
	case ShapeVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// ShapeSite is one class, interface, or module-level variable reduced to
// its externally visible shape.
type ShapeSite struct {
	Name string
	Kind ShapeKind

	// Members holds normalized member signatures for classes and
	// interfaces, in declaration order.
	Members []string

	// DeclKind is "const", "let" or "var" for variables ("" otherwise).
	DeclKind string

	// Initializer is the normalized initializer text for variables.
	Initializer string

	Span Span
}

// StructuralModel is the normalized, per-file-version extraction used by
// every category analyzer. Built fresh per diff; never mutated once built.
type StructuralModel struct {
	FilePath string
	Dialect  Dialect

	Functions []FunctionSite
	Types     []TypeSite
	Calls     []CallSite
	Imports   []ImportSite
	Elements  []MarkupElement
	Mutations []MutationSite
	Promises  []PromiseSite
	Ternaries []TernarySite
	Shapes    []ShapeSite

	// Partial is true when the source contained syntax errors and the
	// model may be incomplete.
	Partial bool
}
