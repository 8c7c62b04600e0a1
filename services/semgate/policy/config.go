// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package policy resolves the effective per-kind severity, enablement,
// and tests-required rules from an on-disk YAML config merged over
// compiled defaults.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TestsConfig controls the tests-required gate decision.
type TestsConfig struct {
	// AlwaysRequire lists file globs that always trip the gate when any
	// record survives, regardless of severity.
	AlwaysRequire []string `yaml:"always_require"`

	// NeverRequire lists file globs exempt from the gate.
	NeverRequire []string `yaml:"never_require"`

	// MinSeverity is the lowest severity that trips the gate
	// ("low", "medium" or "high").
	MinSeverity string `yaml:"min_severity"`
}

// Config is the on-disk configuration shape.
type Config struct {
	// Include and Exclude select candidate files.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	// SideEffectCallees lists glob patterns for callees whose calls are
	// always treated as behavior-relevant.
	SideEffectCallees []string `yaml:"side_effect_callees"`

	// Categories enables or disables whole analyzer groups by name.
	// Absent categories default to enabled.
	Categories map[string]bool `yaml:"categories"`

	// SeverityOverrides maps a change kind to a replacement severity.
	SeverityOverrides map[string]string `yaml:"severity_overrides"`

	// DisabledKinds suppresses individual change kinds entirely.
	DisabledKinds []string `yaml:"disabled_kinds"`

	Tests TestsConfig `yaml:"tests"`
}

// DefaultConfig returns the compiled-in configuration.
func DefaultConfig() Config {
	return Config{
		Include: []string{
			"**/*.ts",
			"**/*.tsx",
			"**/*.js",
			"**/*.jsx",
		},
		Exclude: []string{
			"node_modules/**",
			"dist/**",
			"build/**",
			"**/*.d.ts",
			"**/*.test.ts",
			"**/*.test.tsx",
			"**/*.spec.ts",
			"**/*.spec.tsx",
		},
		Tests: TestsConfig{
			MinSeverity: "medium",
		},
	}
}

// Load reads a YAML config file and merges it over the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrConfigRead, path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	return merge(cfg, file), nil
}

// merge overlays non-empty file values onto the defaults.
func merge(base, file Config) Config {
	if len(file.Include) > 0 {
		base.Include = file.Include
	}
	if len(file.Exclude) > 0 {
		base.Exclude = file.Exclude
	}
	if len(file.SideEffectCallees) > 0 {
		base.SideEffectCallees = file.SideEffectCallees
	}
	if len(file.Categories) > 0 {
		base.Categories = file.Categories
	}
	if len(file.SeverityOverrides) > 0 {
		base.SeverityOverrides = file.SeverityOverrides
	}
	if len(file.DisabledKinds) > 0 {
		base.DisabledKinds = file.DisabledKinds
	}
	if len(file.Tests.AlwaysRequire) > 0 {
		base.Tests.AlwaysRequire = file.Tests.AlwaysRequire
	}
	if len(file.Tests.NeverRequire) > 0 {
		base.Tests.NeverRequire = file.Tests.NeverRequire
	}
	if file.Tests.MinSeverity != "" {
		base.Tests.MinSeverity = file.Tests.MinSeverity
	}
	return base
}
