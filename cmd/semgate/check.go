// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/semgate/services/semgate/orchestrate"
	"github.com/AleutianAI/semgate/services/semgate/policy"
	"github.com/AleutianAI/semgate/services/semgate/render"
	"github.com/AleutianAI/semgate/services/semgate/source"
)

// checkOptions carries the check subcommand's flags.
type checkOptions struct {
	configPath string
	repoPath   string
	baseRef    string
	headRef    string
	files      []string
	format     string
	workers    int
	timeout    time.Duration
	noColor    bool
	exitCode   bool
}

func newCheckCmd() *cobra.Command {
	opts := checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Diff changed files between two refs and report semantic changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to semgate.yaml (defaults apply when absent)")
	cmd.Flags().StringVar(&opts.repoPath, "repo", ".", "repository root")
	cmd.Flags().StringVar(&opts.baseRef, "base", "HEAD", "base ref")
	cmd.Flags().StringVar(&opts.headRef, "head", source.WorkingRef, "head ref (WORKING reads the working copy)")
	cmd.Flags().StringSliceVar(&opts.files, "files", nil, "explicit candidate files (default: git changed files)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "console", "output format (console, json, lines, github)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "worker pool size (default: logical CPU count)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-file analysis timeout (0 disables)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored console output")
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", true, "exit 2 when the tests-required gate trips")

	return cmd
}

func runCheck(cmd *cobra.Command, opts checkOptions) error {
	ctx := cmd.Context()

	cfg, err := policy.Load(opts.configPath)
	if err != nil {
		return err
	}
	resolver, err := policy.NewResolver(cfg)
	if err != nil {
		return err
	}

	repoPath, err := filepath.Abs(opts.repoPath)
	if err != nil {
		return fmt.Errorf("resolve repo path: %w", err)
	}
	provider, err := source.NewGitProvider(repoPath)
	if err != nil {
		return err
	}

	candidates := opts.files
	if len(candidates) == 0 {
		candidates, err = provider.ChangedFiles(ctx, opts.baseRef, opts.headRef)
		if err != nil {
			return fmt.Errorf("list changed files: %w", err)
		}
	}

	tasks := make([]orchestrate.Task, 0, len(candidates))
	for _, file := range candidates {
		file = filepath.ToSlash(file)
		if !resolver.IncludesFile(file) {
			slog.Debug("file excluded by policy", slog.String("file", file))
			continue
		}
		tasks = append(tasks, orchestrate.Task{
			FilePath: file,
			BaseRef:  opts.baseRef,
			HeadRef:  opts.headRef,
		})
	}
	if len(tasks) == 0 {
		slog.Info("no candidate files to analyze")
	}

	orch, err := orchestrate.New(provider, resolver,
		orchestrate.WithWorkers(opts.workers),
		orchestrate.WithTaskTimeout(opts.timeout),
	)
	if err != nil {
		return err
	}

	run := render.BuildRun(orch.Run(ctx, tasks))

	var consoleOpts []render.ConsoleOption
	if opts.noColor {
		consoleOpts = append(consoleOpts, render.WithoutColor())
	}
	if err := render.Render(os.Stdout, render.Format(opts.format), run, consoleOpts...); err != nil {
		return err
	}

	if run.ErrorCount > 0 {
		return fmt.Errorf("%d file(s) failed to analyze", run.ErrorCount)
	}
	if opts.exitCode && run.TestsRequired {
		return errTestsRequired
	}
	return nil
}
