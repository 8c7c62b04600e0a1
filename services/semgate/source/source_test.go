// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package source

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSProviderContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.ts"), []byte("export {};"), 0o644))

	p := NewFSProvider(dir)
	data, err := p.Content(context.Background(), "app.ts", WorkingRef)
	require.NoError(t, err)
	assert.Equal(t, "export {};", string(data))
}

func TestFSProviderMissingFileIsNil(t *testing.T) {
	t.Parallel()

	p := NewFSProvider(t.TempDir())
	data, err := p.Content(context.Background(), "nope.ts", WorkingRef)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFSProviderRejectsHistoricalRef(t *testing.T) {
	t.Parallel()

	p := NewFSProvider(t.TempDir())
	_, err := p.Content(context.Background(), "app.ts", "HEAD")
	require.ErrorIs(t, err, ErrHistoricalRef)
}

func TestFSProviderPatchIsEmpty(t *testing.T) {
	t.Parallel()

	p := NewFSProvider(t.TempDir())
	patch, err := p.Patch(context.Background(), "app.ts", "HEAD", WorkingRef)
	require.NoError(t, err)
	assert.Empty(t, patch)
}

func TestNewGitProviderRequiresAbsolutePath(t *testing.T) {
	t.Parallel()

	_, err := NewGitProvider("relative/path")
	require.ErrorIs(t, err, ErrRepoPath)
}

// initTestRepo builds a two-commit repository and returns its path and
// the first commit's hash.
func initTestRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	git := func(args ...string) string {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
		return string(out)
	}

	git("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.ts"), []byte("const a = 1;\n"), 0o644))
	git("add", "app.ts")
	git("commit", "-q", "-m", "first")
	first := git("rev-parse", "HEAD")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.ts"), []byte("const a = 2;\n"), 0o644))
	git("add", "app.ts")
	git("commit", "-q", "-m", "second")

	return dir, first[:40]
}

func TestGitProviderContentAndPatch(t *testing.T) {
	t.Parallel()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir, first := initTestRepo(t)
	p, err := NewGitProvider(dir)
	require.NoError(t, err)
	ctx := context.Background()

	old, err := p.Content(ctx, "app.ts", first)
	require.NoError(t, err)
	assert.Equal(t, "const a = 1;\n", string(old))

	working, err := p.Content(ctx, "app.ts", WorkingRef)
	require.NoError(t, err)
	assert.Equal(t, "const a = 2;\n", string(working))

	missing, err := p.Content(ctx, "ghost.ts", first)
	require.NoError(t, err)
	assert.Nil(t, missing)

	patch, err := p.Patch(ctx, "app.ts", first, "HEAD")
	require.NoError(t, err)
	assert.Contains(t, patch, "-const a = 1;")
	assert.Contains(t, patch, "+const a = 2;")

	files, err := p.ChangedFiles(ctx, first, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{"app.ts"}, files)
}
