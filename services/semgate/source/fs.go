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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FSProvider reads working-copy content from a directory root. It has
// no notion of history: only WorkingRef is readable and Patch is always
// empty, which makes downstream scoping fall back to whole-file hunks.
//
// Thread Safety: safe for concurrent use.
type FSProvider struct {
	root string
}

var _ Provider = (*FSProvider)(nil)

// NewFSProvider creates a provider rooted at dir.
func NewFSProvider(dir string) *FSProvider {
	return &FSProvider{root: dir}
}

// Content reads a file relative to the root. Missing files return nil.
func (p *FSProvider) Content(ctx context.Context, path, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ref != WorkingRef {
		return nil, fmt.Errorf("%w: %q", ErrHistoricalRef, ref)
	}

	data, err := os.ReadFile(filepath.Join(p.root, path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Patch always returns "" for the filesystem provider.
func (p *FSProvider) Patch(ctx context.Context, path, baseRef, headRef string) (string, error) {
	return "", ctx.Err()
}
