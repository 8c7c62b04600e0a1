// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package detect implements the category analyzers: independent pure
// diff functions that compare two StructuralModels and report semantic
// differences as ChangeRecords.
//
// Design principles:
//   - Every analyzer is a pure, deterministic function: calling it twice
//     with identical input yields identical output, content and order
//   - Analyzers never mutate the models they are given
//   - A panicking analyzer is isolated by the Detector and contributes
//     an empty result instead of failing the file
package detect

import (
	"encoding/json"
	"fmt"

	"github.com/AleutianAI/semgate/services/semgate/ast"
)

// Severity ranks how risky a change is for the tests-required gate.
type Severity int

const (
	// SeverityLow marks changes that rarely alter behavior.
	SeverityLow Severity = iota

	// SeverityMedium marks changes that plausibly alter behavior.
	SeverityMedium

	// SeverityHigh marks changes that almost certainly alter behavior
	// or break callers.
	SeverityHigh
)

// String returns "low", "medium" or "high".
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the severity as its string name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// ParseSeverity converts a config string to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return SeverityLow, fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
	}
}

// Anchor says which file version a record's location refers to, which
// determines the hunk range it must fall inside to survive scoping.
type Anchor int

const (
	// AnchorHead locates the record in the head version.
	AnchorHead Anchor = iota

	// AnchorBase locates the record in the base version (removals).
	AnchorBase

	// AnchorFile marks whole-file records that are always kept.
	AnchorFile
)

// Kind identifies one change category from the closed vocabulary.
type Kind string

// Function surface kinds.
const (
	KindFunctionRemoved            Kind = "function-removed"
	KindFunctionAdded              Kind = "function-added"
	KindSignatureChanged           Kind = "function-signature-changed"
	KindDestructuredParamRemoved   Kind = "destructured-param-removed"
	KindDestructuredParamAdded     Kind = "destructured-param-added"
	KindGenericConstraintsChanged  Kind = "generic-constraints-changed"
	KindFunctionLikelyRenamed      Kind = "function-likely-renamed"
	KindFunctionRenameShapeChanged Kind = "function-rename-shape-changed"
)

// Call site kinds.
const (
	KindCallRemoved           Kind = "call-removed"
	KindCallAdded             Kind = "call-added"
	KindConstructorCallFlip   Kind = "constructor-call-flip"
	KindTaggedTemplateChanged Kind = "tagged-template-changed"
	KindArgumentOrderChanged  Kind = "argument-order-changed"
	KindArgumentsRemoved      Kind = "arguments-removed"
	KindArgumentsAdded        Kind = "arguments-added"
	KindHookDepsChanged       Kind = "hook-deps-changed"
)

// Hook usage kinds.
const (
	KindHookAdded   Kind = "hook-added"
	KindHookRemoved Kind = "hook-removed"
)

// Type definition kinds.
const (
	KindTypeAdded              Kind = "type-added"
	KindTypeDefinitionChanged  Kind = "type-definition-changed"
	KindTypeAssignabilityBroke Kind = "type-assignability-broken"
)

// Import structure kinds.
const (
	KindImportAdded                  Kind = "import-added"
	KindImportRemoved                Kind = "import-removed"
	KindImportSpecifierAdded         Kind = "import-specifier-added"
	KindImportSpecifierRemoved       Kind = "import-specifier-removed"
	KindSideEffectImportOrderChanged Kind = "side-effect-import-order-changed"
)

// Declarative markup kinds.
const (
	KindElementAdded       Kind = "element-added"
	KindElementRemoved     Kind = "element-removed"
	KindElementAttrAdded   Kind = "element-attr-added"
	KindElementAttrRemoved Kind = "element-attr-removed"
	KindElementAttrChanged Kind = "element-attr-changed"
)

// Mutation kinds.
const (
	KindMutationAdded   Kind = "mutation-added"
	KindMutationRemoved Kind = "mutation-removed"
)

// Promise usage kinds.
const (
	KindPromiseAdded         Kind = "promise-usage-added"
	KindPromiseRemoved       Kind = "promise-usage-removed"
	KindErrorHandlingRemoved Kind = "promise-error-handling-removed"
)

// Ternary kinds.
const (
	KindTernaryAdded            Kind = "ternary-added"
	KindTernaryRemoved          Kind = "ternary-removed"
	KindTernaryConditionChanged Kind = "ternary-condition-changed"
	KindTernaryBranchesSwapped  Kind = "ternary-branches-swapped"
)

// Shape kinds.
const (
	KindClassMemberAdded           Kind = "class-member-added"
	KindClassMemberRemoved         Kind = "class-member-removed"
	KindInterfaceMemberAdded       Kind = "interface-member-added"
	KindInterfaceMemberRemoved     Kind = "interface-member-removed"
	KindVariableAdded              Kind = "variable-added"
	KindVariableRemoved            Kind = "variable-removed"
	KindVariableKindChanged        Kind = "variable-kind-changed"
	KindVariableInitializerChanged Kind = "variable-initializer-changed"
)

// Aggregator fallback kind.
const (
	KindSignatureInferred Kind = "signature-change-inferred-by-context"
)

// KnownKinds is the closed vocabulary of reportable change kinds.
var KnownKinds = map[Kind]bool{
	KindFunctionRemoved:              true,
	KindFunctionAdded:                true,
	KindSignatureChanged:             true,
	KindDestructuredParamRemoved:     true,
	KindDestructuredParamAdded:       true,
	KindGenericConstraintsChanged:    true,
	KindFunctionLikelyRenamed:        true,
	KindFunctionRenameShapeChanged:   true,
	KindCallRemoved:                  true,
	KindCallAdded:                    true,
	KindConstructorCallFlip:          true,
	KindTaggedTemplateChanged:        true,
	KindArgumentOrderChanged:         true,
	KindArgumentsRemoved:             true,
	KindArgumentsAdded:               true,
	KindHookDepsChanged:              true,
	KindHookAdded:                    true,
	KindHookRemoved:                  true,
	KindTypeAdded:                    true,
	KindTypeDefinitionChanged:        true,
	KindTypeAssignabilityBroke:       true,
	KindImportAdded:                  true,
	KindImportRemoved:                true,
	KindImportSpecifierAdded:         true,
	KindImportSpecifierRemoved:       true,
	KindSideEffectImportOrderChanged: true,
	KindElementAdded:                 true,
	KindElementRemoved:               true,
	KindElementAttrAdded:             true,
	KindElementAttrRemoved:           true,
	KindElementAttrChanged:           true,
	KindMutationAdded:                true,
	KindMutationRemoved:              true,
	KindPromiseAdded:                 true,
	KindPromiseRemoved:               true,
	KindErrorHandlingRemoved:         true,
	KindTernaryAdded:                 true,
	KindTernaryRemoved:               true,
	KindTernaryConditionChanged:      true,
	KindTernaryBranchesSwapped:       true,
	KindClassMemberAdded:             true,
	KindClassMemberRemoved:           true,
	KindInterfaceMemberAdded:         true,
	KindInterfaceMemberRemoved:       true,
	KindVariableAdded:                true,
	KindVariableRemoved:              true,
	KindVariableKindChanged:          true,
	KindVariableInitializerChanged:   true,
	KindSignatureInferred:            true,
}

// ChangeRecord is one reported semantic difference.
//
// Invariants: Kind is from the closed vocabulary; the start position
// never exceeds the end position. Records are value types: the
// aggregator merges them but never edits them in place.
type ChangeRecord struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	FilePath string   `json:"file_path"`

	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`

	// Detail is the human-readable description, usually carrying
	// before/after text.
	Detail string `json:"detail"`

	// NodeLabel names the declaration or expression involved.
	NodeLabel string `json:"node_label,omitempty"`

	// Context carries extra before/after payloads where useful.
	Context string `json:"context,omitempty"`

	// Anchor controls hunk scoping and is not serialized.
	Anchor Anchor `json:"-"`
}

// Params carries per-invocation analyzer inputs. The same value is
// passed unchanged to every analyzer of a diff.
type Params struct {
	// FilePath stamps every produced record.
	FilePath string
}

// record is a small helper building a ChangeRecord from a span.
func record(kind Kind, sev Severity, params Params, span ast.Span, anchor Anchor, label, detail string) ChangeRecord {
	return ChangeRecord{
		Kind:      kind,
		Severity:  sev,
		FilePath:  params.FilePath,
		StartLine: span.StartLine,
		StartCol:  span.StartCol,
		EndLine:   span.EndLine,
		EndCol:    span.EndCol,
		NodeLabel: label,
		Detail:    detail,
		Anchor:    anchor,
	}
}
