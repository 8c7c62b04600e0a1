// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/semgate/services/semgate/ast"
)

func TestSafeDiffIsolatesPanic(t *testing.T) {
	t.Parallel()

	boom := Analyzer{Name: "boom", Diff: func(base, head *ast.StructuralModel, params Params) []ChangeRecord {
		panic("analyzer bug")
	}}

	out := SafeDiff(boom, &ast.StructuralModel{}, &ast.StructuralModel{}, testParams)
	assert.Empty(t, out)
}

func TestAnalyzersFixedOrder(t *testing.T) {
	t.Parallel()

	want := []string{
		"functions", "calls", "hooks", "types", "imports",
		"markup", "mutations", "promises", "ternaries", "shapes",
	}
	analyzers := Analyzers()
	require.Len(t, analyzers, len(want))
	for i, a := range analyzers {
		assert.Equal(t, want[i], a.Name)
		assert.NotNil(t, a.Diff)
	}
}

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	sev, err := ParseSeverity("high")
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, sev)

	_, err = ParseSeverity("critical")
	require.ErrorIs(t, err, ErrUnknownSeverity)
}

func TestKnownKindsCoverAnalyzerVocabulary(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{
		KindFunctionRemoved, KindSignatureChanged, KindHookDepsChanged,
		KindTypeAssignabilityBroke, KindSideEffectImportOrderChanged,
		KindTernaryBranchesSwapped, KindErrorHandlingRemoved,
		KindSignatureInferred,
	} {
		assert.True(t, KnownKinds[k], "kind %q missing from vocabulary", k)
	}
}

func TestDiffMarkupElementAndAttrChanges(t *testing.T) {
	t.Parallel()

	base := &ast.StructuralModel{Elements: []ast.MarkupElement{
		{Tag: "Button", EnclosingFunc: "Form", Attrs: []ast.MarkupAttr{
			{Name: "variant", Value: `"primary"`},
			{Name: "disabled", Value: "{loading}"},
		}},
	}}
	head := &ast.StructuralModel{Elements: []ast.MarkupElement{
		{Tag: "Button", EnclosingFunc: "Form", Attrs: []ast.MarkupAttr{
			{Name: "variant", Value: `"secondary"`},
			{Name: "onClick", Value: "{submit}"},
		}},
	}}

	out := DiffMarkup(base, head, testParams)
	require.Len(t, out, 3)
	assert.Equal(t, KindElementAttrChanged, out[0].Kind)
	assert.Equal(t, `"primary" -> "secondary"`, out[0].Context)
	assert.Equal(t, KindElementAttrRemoved, out[1].Kind)
	assert.Equal(t, KindElementAttrAdded, out[2].Kind)
	assert.Equal(t, SeverityLow, out[2].Severity)
}

func TestDiffMarkupWholeElement(t *testing.T) {
	t.Parallel()

	base := &ast.StructuralModel{Elements: []ast.MarkupElement{
		{Tag: "Spinner", EnclosingFunc: "Page"},
	}}
	head := &ast.StructuralModel{Elements: []ast.MarkupElement{
		{Tag: "Skeleton", EnclosingFunc: "Page"},
	}}

	out := DiffMarkup(base, head, testParams)
	require.Len(t, out, 2)
	assert.Equal(t, KindElementRemoved, out[0].Kind)
	assert.Equal(t, KindElementAdded, out[1].Kind)
}

func TestDiffMutations(t *testing.T) {
	t.Parallel()

	base := &ast.StructuralModel{Mutations: []ast.MutationSite{
		{Target: "state.items", Op: "push", EnclosingFunc: "addItem"},
	}}
	head := &ast.StructuralModel{Mutations: []ast.MutationSite{
		{Target: "state.items", Op: "push", EnclosingFunc: "addItem"},
		{Target: "cache.size", Op: "=", EnclosingFunc: "reset"},
	}}

	out := DiffMutations(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindMutationAdded, out[0].Kind)
	assert.Equal(t, SeverityMedium, out[0].Severity)
	assert.Equal(t, "cache.size", out[0].NodeLabel)
}

func TestDiffMutationsOptionalChainingTargetsEqual(t *testing.T) {
	t.Parallel()

	base := &ast.StructuralModel{Mutations: []ast.MutationSite{
		{Target: "state?.items", Op: "=", EnclosingFunc: "f"},
	}}
	head := &ast.StructuralModel{Mutations: []ast.MutationSite{
		{Target: "state.items", Op: "=", EnclosingFunc: "f"},
	}}

	assert.Empty(t, DiffMutations(base, head, testParams))
}

func TestDiffPromisesCatchRemovalIsHigh(t *testing.T) {
	t.Parallel()

	base := &ast.StructuralModel{Promises: []ast.PromiseSite{
		{Kind: ast.PromiseThen, Subject: "fetchUser()", EnclosingFunc: "load"},
		{Kind: ast.PromiseCatch, Subject: "fetchUser()", EnclosingFunc: "load"},
	}}
	head := &ast.StructuralModel{Promises: []ast.PromiseSite{
		{Kind: ast.PromiseThen, Subject: "fetchUser()", EnclosingFunc: "load"},
	}}

	out := DiffPromises(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindErrorHandlingRemoved, out[0].Kind)
	assert.Equal(t, SeverityHigh, out[0].Severity)
}

func TestDiffPromisesAwaitAdded(t *testing.T) {
	t.Parallel()

	base := &ast.StructuralModel{}
	head := &ast.StructuralModel{Promises: []ast.PromiseSite{
		{Kind: ast.PromiseAwait, Subject: "save(data)", EnclosingFunc: "submit"},
	}}

	out := DiffPromises(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindPromiseAdded, out[0].Kind)
	assert.Equal(t, SeverityMedium, out[0].Severity)
}

func TestDiffTernariesBranchesSwapped(t *testing.T) {
	t.Parallel()

	base := &ast.StructuralModel{Ternaries: []ast.TernarySite{
		{Condition: "isAdmin", WhenTrue: "allow()", WhenFalse: "deny()", EnclosingFunc: "gate"},
	}}
	head := &ast.StructuralModel{Ternaries: []ast.TernarySite{
		{Condition: "isAdmin", WhenTrue: "deny()", WhenFalse: "allow()", EnclosingFunc: "gate"},
	}}

	out := DiffTernaries(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindTernaryBranchesSwapped, out[0].Kind)
	assert.Equal(t, SeverityHigh, out[0].Severity)
}

func TestDiffTernariesConditionChanged(t *testing.T) {
	t.Parallel()

	base := &ast.StructuralModel{Ternaries: []ast.TernarySite{
		{Condition: "count > 0", WhenTrue: "render()", WhenFalse: "empty()", EnclosingFunc: "view"},
	}}
	head := &ast.StructuralModel{Ternaries: []ast.TernarySite{
		{Condition: "count >= 0", WhenTrue: "render()", WhenFalse: "empty()", EnclosingFunc: "view"},
	}}

	out := DiffTernaries(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindTernaryConditionChanged, out[0].Kind)
	assert.Equal(t, "count > 0 -> count >= 0", out[0].Context)
}

func TestDiffShapesMemberChanges(t *testing.T) {
	t.Parallel()

	base := &ast.StructuralModel{Shapes: []ast.ShapeSite{
		{Name: "Store", Kind: ast.ShapeClass, Members: []string{"get(key:string):string", "set(key:string,v:string):void"}},
	}}
	head := &ast.StructuralModel{Shapes: []ast.ShapeSite{
		{Name: "Store", Kind: ast.ShapeClass, Members: []string{"get(key:string):string", "has(key:string):boolean"}},
	}}

	out := DiffShapes(base, head, testParams)
	require.Len(t, out, 2)
	assert.Equal(t, KindClassMemberRemoved, out[0].Kind)
	assert.Equal(t, SeverityHigh, out[0].Severity)
	assert.Equal(t, KindClassMemberAdded, out[1].Kind)
	assert.Equal(t, SeverityMedium, out[1].Severity)
}

func TestDiffShapesVariable(t *testing.T) {
	t.Parallel()

	base := &ast.StructuralModel{Shapes: []ast.ShapeSite{
		{Name: "config", Kind: ast.ShapeVariable, DeclKind: "const", Initializer: "{retries:3}"},
	}}
	head := &ast.StructuralModel{Shapes: []ast.ShapeSite{
		{Name: "config", Kind: ast.ShapeVariable, DeclKind: "let", Initializer: "{retries:5}"},
	}}

	out := DiffShapes(base, head, testParams)
	require.Len(t, out, 2)
	assert.Equal(t, KindVariableKindChanged, out[0].Kind)
	assert.Equal(t, KindVariableInitializerChanged, out[1].Kind)
	assert.Equal(t, "{retries:3} -> {retries:5}", out[1].Context)
}

func TestDiffShapesInterfaceMemberRemoved(t *testing.T) {
	t.Parallel()

	base := &ast.StructuralModel{Shapes: []ast.ShapeSite{
		{Name: "Codec", Kind: ast.ShapeInterface, Members: []string{"encode(v:unknown):string", "decode(s:string):unknown"}},
	}}
	head := &ast.StructuralModel{Shapes: []ast.ShapeSite{
		{Name: "Codec", Kind: ast.ShapeInterface, Members: []string{"encode(v:unknown):string"}},
	}}

	out := DiffShapes(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindInterfaceMemberRemoved, out[0].Kind)
	assert.Equal(t, SeverityHigh, out[0].Severity)
}
