// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package aggregate

import (
	"fmt"
	"regexp"

	"github.com/AleutianAI/semgate/services/semgate/ast"
	"github.com/AleutianAI/semgate/services/semgate/detect"
)

// funcDeclPattern recognizes plain function declarations in raw text,
// the last-resort evidence source when one side failed to parse.
var funcDeclPattern = regexp.MustCompile(`(?m)\bfunction\s+([A-Za-z_$][\w$]*)\s*\(([^)]*)\)`)

// signatureFallback escalates hidden signature changes.
//
// It runs only when parse degradation left one model partial, no
// analyzer reported a signature change, and other categories did report
// structural change. Three tiers of evidence are tried: identity-key
// signature comparison, bare-name comparison, and a raw-text
// declaration scan. When every tier comes up empty one synthetic
// inferred record is appended: the gate must not report a healthy
// function surface it could not actually see.
func signatureFallback(in Input, surviving []detect.ChangeRecord) []detect.ChangeRecord {
	if in.Base == nil || in.Head == nil {
		return nil
	}
	if !in.Base.Partial && !in.Head.Partial {
		return nil
	}
	if len(surviving) == 0 || hasSignatureRecord(surviving) {
		return nil
	}

	if rec, ok := signatureByKey(in, (*ast.FunctionSite).IdentityKey); ok {
		return []detect.ChangeRecord{rec}
	}
	if rec, ok := signatureByKey(in, func(f *ast.FunctionSite) string { return f.Name }); ok {
		return []detect.ChangeRecord{rec}
	}
	if rec, ok := signatureByRawText(in); ok {
		return []detect.ChangeRecord{rec}
	}

	return []detect.ChangeRecord{{
		Kind:      detect.KindSignatureInferred,
		Severity:  detect.SeverityMedium,
		FilePath:  in.FilePath,
		StartLine: 1,
		EndLine:   1,
		Detail:    "structural changes detected but the function surface could not be fully compared",
		Anchor:    detect.AnchorFile,
	}}
}

func hasSignatureRecord(records []detect.ChangeRecord) bool {
	for _, rec := range records {
		switch rec.Kind {
		case detect.KindSignatureChanged, detect.KindSignatureInferred:
			return true
		}
	}
	return false
}

// signatureByKey compares signature text of functions matched under the
// given key, returning the first difference found.
func signatureByKey(in Input, key func(*ast.FunctionSite) string) (detect.ChangeRecord, bool) {
	baseSigs := make(map[string]*ast.FunctionSite, len(in.Base.Functions))
	for i := range in.Base.Functions {
		f := &in.Base.Functions[i]
		baseSigs[key(f)] = f
	}
	for i := range in.Head.Functions {
		h := &in.Head.Functions[i]
		b, ok := baseSigs[key(h)]
		if !ok || b.Signature == h.Signature {
			continue
		}
		return detect.ChangeRecord{
			Kind:      detect.KindSignatureChanged,
			Severity:  detect.SeverityHigh,
			FilePath:  in.FilePath,
			StartLine: h.Span.StartLine,
			StartCol:  h.Span.StartCol,
			EndLine:   h.Span.EndLine,
			EndCol:    h.Span.EndCol,
			NodeLabel: h.Name,
			Detail:    fmt.Sprintf("signature changed: %q -> %q", b.Signature, h.Signature),
			Context:   b.Signature + " -> " + h.Signature,
			Anchor:    detect.AnchorHead,
		}, true
	}
	return detect.ChangeRecord{}, false
}

// signatureByRawText scans both raw sources for plain function
// declarations and reports the first name whose parameter text differs.
func signatureByRawText(in Input) (detect.ChangeRecord, bool) {
	baseDecls := scanDeclarations(in.BaseText)
	headDecls := scanDeclarations(in.HeadText)
	// Iterate in source order so the reported declaration is stable.
	for _, m := range funcDeclPattern.FindAllStringSubmatch(in.HeadText, -1) {
		name := m[1]
		headParams := headDecls[name]
		baseParams, ok := baseDecls[name]
		if !ok || baseParams == headParams {
			continue
		}
		return detect.ChangeRecord{
			Kind:      detect.KindSignatureChanged,
			Severity:  detect.SeverityHigh,
			FilePath:  in.FilePath,
			StartLine: 1,
			EndLine:   1,
			NodeLabel: name,
			Detail:    fmt.Sprintf("signature of %q changed: (%s) -> (%s)", name, baseParams, headParams),
			Anchor:    detect.AnchorFile,
		}, true
	}
	return detect.ChangeRecord{}, false
}

func scanDeclarations(text string) map[string]string {
	decls := make(map[string]string)
	for _, m := range funcDeclPattern.FindAllStringSubmatch(text, -1) {
		name, params := m[1], m[2]
		if _, seen := decls[name]; seen {
			// Overloads and duplicates are ambiguous; keep the first.
			continue
		}
		decls[name] = params
	}
	return decls
}
