// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policy

import (
	"fmt"

	"github.com/AleutianAI/semgate/services/semgate/detect"
)

// Resolver is the compiled form of a Config, consumed by the aggregator
// and the orchestrating caller.
//
// Thread Safety: Resolver is immutable after NewResolver and safe for
// concurrent use.
type Resolver struct {
	cfg       Config
	files     *Matcher
	overrides map[detect.Kind]detect.Severity
	disabled  map[detect.Kind]bool
	minSev    detect.Severity
}

// NewResolver validates and compiles a Config.
func NewResolver(cfg Config) (*Resolver, error) {
	overrides := make(map[detect.Kind]detect.Severity, len(cfg.SeverityOverrides))
	for kind, sevName := range cfg.SeverityOverrides {
		k := detect.Kind(kind)
		if !detect.KnownKinds[k] {
			return nil, fmt.Errorf("%w: unknown kind %q", ErrBadOverride, kind)
		}
		sev, err := detect.ParseSeverity(sevName)
		if err != nil {
			return nil, fmt.Errorf("%w: kind %q: %v", ErrBadOverride, kind, err)
		}
		overrides[k] = sev
	}

	disabled := make(map[detect.Kind]bool, len(cfg.DisabledKinds))
	for _, kind := range cfg.DisabledKinds {
		disabled[detect.Kind(kind)] = true
	}

	minSev := detect.SeverityMedium
	if cfg.Tests.MinSeverity != "" {
		sev, err := detect.ParseSeverity(cfg.Tests.MinSeverity)
		if err != nil {
			return nil, err
		}
		minSev = sev
	}

	return &Resolver{
		cfg:       cfg,
		files:     NewMatcher(cfg.Include, cfg.Exclude),
		overrides: overrides,
		disabled:  disabled,
		minSev:    minSev,
	}, nil
}

// IncludesFile reports whether a path is a candidate for analysis.
func (r *Resolver) IncludesFile(path string) bool {
	return r.files.Match(path)
}

// AnalyzerEnabled reports whether a category analyzer group is enabled.
// Categories absent from the config default to enabled.
func (r *Resolver) AnalyzerEnabled(name string) bool {
	if r.cfg.Categories == nil {
		return true
	}
	enabled, ok := r.cfg.Categories[name]
	return !ok || enabled
}

// IsSideEffectCallee reports whether a callee matches the configured
// side-effect patterns.
func (r *Resolver) IsSideEffectCallee(callee string) bool {
	return MatchAny(r.cfg.SideEffectCallees, callee)
}

// Apply filters disabled kinds, rewrites overridden severities, and
// escalates records touching configured side-effect callees. The input
// slice is never modified.
func (r *Resolver) Apply(records []detect.ChangeRecord) []detect.ChangeRecord {
	out := make([]detect.ChangeRecord, 0, len(records))
	for _, rec := range records {
		if r.disabled[rec.Kind] {
			continue
		}
		if sev, ok := r.overrides[rec.Kind]; ok {
			rec.Severity = sev
		}
		// Adding or removing a call to a side-effect callee is always
		// high risk, whatever the kind's base or overridden severity.
		if (rec.Kind == detect.KindCallRemoved || rec.Kind == detect.KindCallAdded) &&
			r.IsSideEffectCallee(rec.NodeLabel) {
			rec.Severity = detect.SeverityHigh
		}
		out = append(out, rec)
	}
	return out
}

// TestsRequired computes the gate decision for one file's surviving
// records. Never-require wins over always-require; otherwise any record
// at or above the minimum severity trips the gate.
func (r *Resolver) TestsRequired(filePath string, records []detect.ChangeRecord) bool {
	if len(records) == 0 {
		return false
	}
	if MatchAny(r.cfg.Tests.NeverRequire, filePath) {
		return false
	}
	if MatchAny(r.cfg.Tests.AlwaysRequire, filePath) {
		return true
	}
	for _, rec := range records {
		if rec.Severity >= r.minSev {
			return true
		}
	}
	return false
}
