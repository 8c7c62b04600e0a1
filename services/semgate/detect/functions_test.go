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

var testParams = Params{FilePath: "src/app.ts"}

func fnModel(fns ...ast.FunctionSite) *ast.StructuralModel {
	return &ast.StructuralModel{FilePath: "src/app.ts", Functions: fns}
}

func numberParams(names ...string) []ast.Param {
	out := make([]ast.Param, len(names))
	for i, n := range names {
		out[i] = ast.Param{Name: n, Type: "number"}
	}
	return out
}

func TestDiffFunctionsSignatureChanged(t *testing.T) {
	t.Parallel()

	base := fnModel(ast.FunctionSite{
		Name: "add", Signature: "add(a:number,b:number)",
		Params: numberParams("a", "b"),
	})
	head := fnModel(ast.FunctionSite{
		Name: "add", Signature: "add(a:number,b:number,c:number)",
		Params: numberParams("a", "b", "c"),
	})

	out := DiffFunctions(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindSignatureChanged, out[0].Kind)
	assert.Equal(t, SeverityHigh, out[0].Severity)
	assert.Contains(t, out[0].Detail, "add(a:number,b:number,c:number)")
}

func TestDiffFunctionsParamNamesIgnored(t *testing.T) {
	t.Parallel()

	base := fnModel(ast.FunctionSite{Name: "add", Params: numberParams("a", "b")})
	head := fnModel(ast.FunctionSite{Name: "add", Params: numberParams("x", "y")})

	assert.Empty(t, DiffFunctions(base, head, testParams))
}

func TestDiffFunctionsRemovedAndAdded(t *testing.T) {
	t.Parallel()

	base := fnModel(
		ast.FunctionSite{Name: "alpha", BodyText: "return 1;"},
		ast.FunctionSite{Name: "beta", BodyText: "return 2;"},
	)
	head := fnModel(
		ast.FunctionSite{Name: "beta", BodyText: "return 2;"},
	)

	out := DiffFunctions(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindFunctionRemoved, out[0].Kind)
	assert.Equal(t, SeverityHigh, out[0].Severity)
	assert.Equal(t, "alpha", out[0].NodeLabel)
	assert.Equal(t, AnchorBase, out[0].Anchor)
}

func TestDiffFunctionsRenameInference(t *testing.T) {
	t.Parallel()

	body := "const total = items.reduce((acc, it) => acc + it.price, 0); return total * rate;"
	base := fnModel(ast.FunctionSite{
		Name: "oldFn", BodyText: body, Params: numberParams("items", "rate"),
	})
	head := fnModel(ast.FunctionSite{
		Name: "newFn", BodyText: body + " // adjusted", Params: numberParams("items", "rate"),
	})

	out := DiffFunctions(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindFunctionLikelyRenamed, out[0].Kind)
	assert.Equal(t, SeverityMedium, out[0].Severity)
	assert.Equal(t, "oldFn -> newFn", out[0].Context)
}

func TestDiffFunctionsRenameShapeChanged(t *testing.T) {
	t.Parallel()

	base := fnModel(ast.FunctionSite{
		Name: "fetchUser", BodyText: "return api.get(id);", Params: numberParams("id"),
	})
	head := fnModel(ast.FunctionSite{
		Name: "loadAccount", BodyText: "const r = await client.query(sql, args); return r.rows[0];",
		Params: numberParams("sql", "args"),
	})

	out := DiffFunctions(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindFunctionRenameShapeChanged, out[0].Kind)
	assert.Equal(t, SeverityHigh, out[0].Severity)
}

func TestDiffFunctionsDestructuredKeys(t *testing.T) {
	t.Parallel()

	base := fnModel(ast.FunctionSite{
		Name: "render",
		Params: []ast.Param{{Destructured: true, Keys: []string{"title", "onClose"}}},
	})
	head := fnModel(ast.FunctionSite{
		Name: "render",
		Params: []ast.Param{{Destructured: true, Keys: []string{"title", "variant"}}},
	})

	out := DiffFunctions(base, head, testParams)
	require.Len(t, out, 2)
	assert.Equal(t, KindDestructuredParamRemoved, out[0].Kind)
	assert.Equal(t, SeverityHigh, out[0].Severity)
	assert.Contains(t, out[0].Detail, "onClose")
	assert.Equal(t, KindDestructuredParamAdded, out[1].Kind)
	assert.Equal(t, SeverityMedium, out[1].Severity)
}

func TestDiffFunctionsGenericConstraintsIndependent(t *testing.T) {
	t.Parallel()

	base := fnModel(ast.FunctionSite{
		Name: "pick", TypeParams: "<T extends object>", ReturnType: "T",
	})
	head := fnModel(ast.FunctionSite{
		Name: "pick", TypeParams: "<T extends Record<string,unknown>>", ReturnType: "T[]",
	})

	out := DiffFunctions(base, head, testParams)
	require.Len(t, out, 2)
	kinds := []Kind{out[0].Kind, out[1].Kind}
	assert.Contains(t, kinds, KindSignatureChanged)
	assert.Contains(t, kinds, KindGenericConstraintsChanged)
}

func TestDiffFunctionsScopeSeparatesIdentity(t *testing.T) {
	t.Parallel()

	// A method and a free function with the same name never pair.
	base := fnModel(
		ast.FunctionSite{Name: "save", ScopeKind: ast.ScopeClass, ScopeName: "Store", ReturnType: "void"},
		ast.FunctionSite{Name: "save", ScopeKind: ast.ScopeModule, ReturnType: "void"},
	)
	head := fnModel(
		ast.FunctionSite{Name: "save", ScopeKind: ast.ScopeClass, ScopeName: "Store", ReturnType: "Promise<void>"},
		ast.FunctionSite{Name: "save", ScopeKind: ast.ScopeModule, ReturnType: "void"},
	)

	out := DiffFunctions(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindSignatureChanged, out[0].Kind)
}

func TestDiffFunctionsIdempotent(t *testing.T) {
	t.Parallel()

	base := fnModel(
		ast.FunctionSite{Name: "a", ReturnType: "number"},
		ast.FunctionSite{Name: "b", Params: numberParams("x")},
	)
	head := fnModel(
		ast.FunctionSite{Name: "a", ReturnType: "string"},
		ast.FunctionSite{Name: "c", Params: numberParams("x", "y")},
	)

	first := DiffFunctions(base, head, testParams)
	second := DiffFunctions(base, head, testParams)
	assert.Equal(t, first, second)
}

func TestDiffFunctionsAmbiguousReplacementSilent(t *testing.T) {
	t.Parallel()

	// One removed, one added, same parameter count, dissimilar bodies:
	// too ambiguous to classify, so nothing is emitted. That includes a
	// same-named identity change, e.g. a free function becoming a method.
	base := fnModel(ast.FunctionSite{
		Name: "save", ScopeKind: ast.ScopeModule,
		BodyText: "return db.put(entry);", Params: numberParams("entry"),
	})
	head := fnModel(ast.FunctionSite{
		Name: "save", ScopeKind: ast.ScopeClass, ScopeName: "Store",
		BodyText: "const tx = this.begin(); tx.write(entry); return tx.commit();",
		Params:   numberParams("entry"),
	})

	assert.Empty(t, DiffFunctions(base, head, testParams))
}
