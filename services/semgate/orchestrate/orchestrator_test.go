// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package orchestrate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/semgate/services/semgate/detect"
	"github.com/AleutianAI/semgate/services/semgate/policy"
	"github.com/AleutianAI/semgate/services/semgate/source"
)

// memProvider serves content from an in-memory (path, ref) map.
type memProvider struct {
	files map[string]map[string]string
	delay map[string]time.Duration
}

var _ source.Provider = (*memProvider)(nil)

func (p *memProvider) Content(ctx context.Context, path, ref string) ([]byte, error) {
	if d, ok := p.delay[path]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	text, ok := p.files[path][ref]
	if !ok {
		return nil, nil
	}
	return []byte(text), nil
}

func (p *memProvider) Patch(ctx context.Context, path, baseRef, headRef string) (string, error) {
	return "", nil
}

func newTestOrchestrator(t *testing.T, provider source.Provider, opts ...Option) *Orchestrator {
	t.Helper()
	resolver, err := policy.NewResolver(policy.DefaultConfig())
	require.NoError(t, err)
	o, err := New(provider, resolver, opts...)
	require.NoError(t, err)
	return o
}

func TestNewRejectsNilDependencies(t *testing.T) {
	t.Parallel()

	_, err := New(nil, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRunDetectsSignatureChange(t *testing.T) {
	t.Parallel()

	provider := &memProvider{files: map[string]map[string]string{
		"src/math.ts": {
			"base": "export function add(a: number, b: number): number { return a + b; }\n",
			"head": "export function add(a: number, b: number, c: number): number { return a + b + c; }\n",
		},
	}}
	o := newTestOrchestrator(t, provider)

	results := o.Run(context.Background(), []Task{
		{FilePath: "src/math.ts", BaseRef: "base", HeadRef: "head"},
	})
	require.Len(t, results, 1)

	res := results["src/math.ts"]
	require.Equal(t, StatusSuccess, res.Status, "error: %s", res.Error)
	require.NotEmpty(t, res.Changes)
	assert.Equal(t, detect.KindSignatureChanged, res.Changes[0].Kind)
	assert.Equal(t, detect.SeverityHigh, res.Changes[0].Severity)
	assert.True(t, res.TestsRequired)
}

func TestRunWhitespaceOnlyEditIsSilent(t *testing.T) {
	t.Parallel()

	provider := &memProvider{files: map[string]map[string]string{
		"src/util.ts": {
			"base": "export function id(x: number): number { return x; }\n",
			"head": "export function id(x: number): number {\n    return x;\n}\n",
		},
	}}
	o := newTestOrchestrator(t, provider)

	results := o.Run(context.Background(), []Task{
		{FilePath: "src/util.ts", BaseRef: "base", HeadRef: "head"},
	})
	res := results["src/util.ts"]
	require.Equal(t, StatusSuccess, res.Status, "error: %s", res.Error)
	assert.Empty(t, res.Changes)
	assert.False(t, res.TestsRequired)
}

func TestRunTimeoutIsolatesTask(t *testing.T) {
	t.Parallel()

	provider := &memProvider{
		files: map[string]map[string]string{
			"src/fast.ts": {
				"base": "const a = 1;\n",
				"head": "const a = 1;\n",
			},
			"src/slow.ts": {
				"base": "const b = 1;\n",
				"head": "const b = 2;\n",
			},
		},
		delay: map[string]time.Duration{"src/slow.ts": 5 * time.Second},
	}
	o := newTestOrchestrator(t, provider, WithTaskTimeout(100*time.Millisecond), WithWorkers(2))

	results := o.Run(context.Background(), []Task{
		{FilePath: "src/fast.ts", BaseRef: "base", HeadRef: "head"},
		{FilePath: "src/slow.ts", BaseRef: "base", HeadRef: "head"},
	})
	require.Len(t, results, 2)

	slow := results["src/slow.ts"]
	assert.Equal(t, StatusError, slow.Status)
	assert.Contains(t, slow.Error, "timeout")

	fast := results["src/fast.ts"]
	assert.Equal(t, StatusSuccess, fast.Status, "sibling task must be unaffected: %s", fast.Error)
}

func TestRunBothVersionsMissing(t *testing.T) {
	t.Parallel()

	provider := &memProvider{files: map[string]map[string]string{}}
	o := newTestOrchestrator(t, provider)

	results := o.Run(context.Background(), []Task{
		{FilePath: "src/ghost.ts", BaseRef: "base", HeadRef: "head"},
	})
	res := results["src/ghost.ts"]
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Empty(t, res.Changes)
}

func TestRunFileAdded(t *testing.T) {
	t.Parallel()

	provider := &memProvider{files: map[string]map[string]string{
		"src/new.ts": {
			"head": "export function fresh(): void {}\n",
		},
	}}
	o := newTestOrchestrator(t, provider)

	results := o.Run(context.Background(), []Task{
		{FilePath: "src/new.ts", BaseRef: "base", HeadRef: "head"},
	})
	res := results["src/new.ts"]
	require.Equal(t, StatusSuccess, res.Status, "error: %s", res.Error)
	require.NotEmpty(t, res.Changes)
	assert.Equal(t, detect.KindFunctionAdded, res.Changes[0].Kind)
}

func TestRunManyFilesBounded(t *testing.T) {
	t.Parallel()

	files := make(map[string]map[string]string)
	tasks := make([]Task, 0, 16)
	for _, name := range []string{
		"a.ts", "b.ts", "c.ts", "d.ts", "e.ts", "f.ts", "g.ts", "h.ts",
		"i.ts", "j.ts", "k.ts", "l.ts", "m.ts", "n.ts", "o.ts", "p.ts",
	} {
		files["src/"+name] = map[string]string{
			"base": "export const v = 1;\n",
			"head": "export const v = 2;\n",
		}
		tasks = append(tasks, Task{FilePath: "src/" + name, BaseRef: "base", HeadRef: "head"})
	}
	o := newTestOrchestrator(t, &memProvider{files: files}, WithWorkers(3))

	results := o.Run(context.Background(), tasks)
	require.Len(t, results, len(tasks))
	for path, res := range results {
		require.Equal(t, StatusSuccess, res.Status, "%s: %s", path, res.Error)
		assert.NotEmpty(t, res.Changes, path)
	}
}

func TestRunDuplicateTasksFirstWins(t *testing.T) {
	t.Parallel()

	provider := &memProvider{files: map[string]map[string]string{
		"src/dup.ts": {
			"base": "export const v = 1;\n",
			"head": "export const v = 2;\n",
		},
	}}
	o := newTestOrchestrator(t, provider, WithWorkers(1))

	// The second task names refs with no content; if it ran, its empty
	// result would overwrite the first task's diff.
	results := o.Run(context.Background(), []Task{
		{FilePath: "src/dup.ts", BaseRef: "base", HeadRef: "head"},
		{FilePath: "src/dup.ts", BaseRef: "missing", HeadRef: "missing"},
	})
	require.Len(t, results, 1)

	res := results["src/dup.ts"]
	require.Equal(t, StatusSuccess, res.Status, "error: %s", res.Error)
	assert.NotEmpty(t, res.Changes, "the first task's result must survive")
}
