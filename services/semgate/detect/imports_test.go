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

func importModel(imports ...ast.ImportSite) *ast.StructuralModel {
	return &ast.StructuralModel{FilePath: "src/app.ts", Imports: imports}
}

func TestDiffImportsModuleAddedRemoved(t *testing.T) {
	t.Parallel()

	base := importModel(ast.ImportSite{Module: "lodash", Specifiers: []string{"chunk"}})
	head := importModel(ast.ImportSite{Module: "ramda", Specifiers: []string{"splitEvery"}})

	out := DiffImports(base, head, testParams)
	require.Len(t, out, 2)
	assert.Equal(t, KindImportRemoved, out[0].Kind)
	assert.Equal(t, SeverityMedium, out[0].Severity)
	assert.Equal(t, "lodash", out[0].NodeLabel)
	assert.Equal(t, KindImportAdded, out[1].Kind)
	assert.Equal(t, SeverityLow, out[1].Severity)
}

func TestDiffImportsTypeOnlyInvisible(t *testing.T) {
	t.Parallel()

	base := importModel(ast.ImportSite{Module: "./types", Specifiers: []string{"User"}, TypeOnly: true})
	head := importModel()

	assert.Empty(t, DiffImports(base, head, testParams))
}

func TestDiffImportsSpecifierDiff(t *testing.T) {
	t.Parallel()

	base := importModel(ast.ImportSite{Module: "react", Specifiers: []string{"useState", "useEffect"}})
	head := importModel(ast.ImportSite{Module: "react", Specifiers: []string{"useState", "useRef"}})

	out := DiffImports(base, head, testParams)
	require.Len(t, out, 2)
	assert.Equal(t, KindImportSpecifierRemoved, out[0].Kind)
	assert.Equal(t, SeverityMedium, out[0].Severity)
	assert.Contains(t, out[0].Detail, "useEffect")
	assert.Equal(t, KindImportSpecifierAdded, out[1].Kind)
	assert.Equal(t, SeverityLow, out[1].Severity)
}

func TestDiffImportsSpecifierReorderSilent(t *testing.T) {
	t.Parallel()

	base := importModel(ast.ImportSite{Module: "react", Specifiers: []string{"useState", "useEffect"}})
	head := importModel(ast.ImportSite{Module: "react", Specifiers: []string{"useEffect", "useState"}})

	assert.Empty(t, DiffImports(base, head, testParams))
}

func TestDiffImportsSideEffectOrderChanged(t *testing.T) {
	t.Parallel()

	base := importModel(
		ast.ImportSite{Module: "./polyfills", SideEffectOnly: true},
		ast.ImportSite{Module: "./globals", SideEffectOnly: true},
	)
	head := importModel(
		ast.ImportSite{Module: "./globals", SideEffectOnly: true},
		ast.ImportSite{Module: "./polyfills", SideEffectOnly: true},
	)

	out := DiffImports(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindSideEffectImportOrderChanged, out[0].Kind)
	assert.Equal(t, SeverityMedium, out[0].Severity)
}

func TestDiffImportsDefaultBindingTracked(t *testing.T) {
	t.Parallel()

	base := importModel(ast.ImportSite{Module: "axios", Default: "axios"})
	head := importModel(ast.ImportSite{Module: "axios", Specifiers: []string{"get"}})

	out := DiffImports(base, head, testParams)
	require.Len(t, out, 2)
	assert.Equal(t, KindImportSpecifierRemoved, out[0].Kind)
	assert.Equal(t, KindImportSpecifierAdded, out[1].Kind)
}
