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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// defaultGitTimeout bounds each git invocation.
const defaultGitTimeout = 30 * time.Second

// GitProvider retrieves content and patches from a git repository by
// shelling out to the git command line. The working copy is read from
// the filesystem directly; historical refs use `git show`.
//
// Thread Safety: all methods are safe for concurrent use.
type GitProvider struct {
	repoPath string
	timeout  time.Duration
}

var _ Provider = (*GitProvider)(nil)

// NewGitProvider creates a provider for the repository at repoPath.
// The path must be absolute.
func NewGitProvider(repoPath string) (*GitProvider, error) {
	if !filepath.IsAbs(repoPath) {
		return nil, fmt.Errorf("%w: %s", ErrRepoPath, repoPath)
	}
	return &GitProvider{repoPath: repoPath, timeout: defaultGitTimeout}, nil
}

// run executes one git command and returns stdout. A non-zero exit is
// reported with missing=true so callers can treat absent paths as data.
func (p *GitProvider) run(ctx context.Context, args ...string) (out string, missing bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", true, nil
		}
		return "", false, fmt.Errorf("%w: git %s: %v: %s", ErrGitUnavailable, args[0], err, stderr.String())
	}
	return stdout.String(), false, nil
}

// Content returns the file bytes at ref. WorkingRef reads the
// filesystem; any other ref reads `git show ref:path`. Missing files
// return nil in both cases.
func (p *GitProvider) Content(ctx context.Context, path, ref string) ([]byte, error) {
	if ref == WorkingRef {
		data, err := os.ReadFile(filepath.Join(p.repoPath, path))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return data, nil
	}

	out, missing, err := p.run(ctx, "show", ref+":"+filepath.ToSlash(path))
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, nil
	}
	return []byte(out), nil
}

// Patch returns unified-diff text for one file between two refs. A head
// ref of WorkingRef diffs against the working tree.
func (p *GitProvider) Patch(ctx context.Context, path, baseRef, headRef string) (string, error) {
	args := []string{"diff", "--unified=3", baseRef}
	if headRef != WorkingRef {
		args = []string{"diff", "--unified=3", baseRef, headRef}
	}
	args = append(args, "--", filepath.ToSlash(path))

	out, missing, err := p.run(ctx, args...)
	if err != nil {
		return "", err
	}
	if missing {
		return "", nil
	}
	return out, nil
}

// ChangedFiles lists paths changed between two refs, for candidate
// selection. A head ref of WorkingRef compares against the working tree.
func (p *GitProvider) ChangedFiles(ctx context.Context, baseRef, headRef string) ([]string, error) {
	args := []string{"diff", "--name-only", baseRef}
	if headRef != WorkingRef {
		args = []string{"diff", "--name-only", baseRef, headRef}
	}

	out, missing, err := p.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, nil
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}
