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
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"

	"github.com/AleutianAI/semgate/services/semgate/aggregate"
	"github.com/AleutianAI/semgate/services/semgate/ast"
	"github.com/AleutianAI/semgate/services/semgate/detect"
	"github.com/AleutianAI/semgate/services/semgate/hunk"
	"github.com/AleutianAI/semgate/services/semgate/policy"
	"github.com/AleutianAI/semgate/services/semgate/source"
)

var (
	tracer = otel.Tracer("semgate.orchestrate")
	meter  = otel.Meter("semgate.orchestrate")
)

// Orchestrator dispatches file-diff tasks to a bounded worker pool.
//
// Thread Safety: Orchestrator is safe for concurrent use; multiple Run
// calls can execute concurrently.
type Orchestrator struct {
	provider  source.Provider
	resolver  *policy.Resolver
	extractor *ast.Extractor
	logger    *slog.Logger

	workers     int
	taskTimeout time.Duration

	metricsOnce  sync.Once
	taskLatency  metric.Float64Histogram
	taskOutcomes metric.Int64Counter
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithWorkers sets the pool size. Values below one keep the default
// (the logical CPU count).
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithTaskTimeout sets the per-task deadline. Zero disables timeouts.
func WithTaskTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.taskTimeout = d }
}

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an Orchestrator with the injected content provider and
// policy resolver.
func New(provider source.Provider, resolver *policy.Resolver, opts ...Option) (*Orchestrator, error) {
	if provider == nil || resolver == nil {
		return nil, ErrInvalidInput
	}

	o := &Orchestrator{
		provider:  provider,
		resolver:  resolver,
		extractor: ast.NewExtractor(),
		logger:    slog.Default(),
		workers:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// initMetrics lazily creates instruments, degrading gracefully when the
// meter provider rejects them.
func (o *Orchestrator) initMetrics() {
	o.metricsOnce.Do(func() {
		var err error
		o.taskLatency, err = meter.Float64Histogram("semgate_task_duration_seconds",
			metric.WithDescription("Per-file diff duration"))
		if err != nil {
			o.logger.Warn("metric init failed", slog.String("metric", "semgate_task_duration_seconds"), slog.Any("error", err))
		}
		o.taskOutcomes, err = meter.Int64Counter("semgate_task_outcomes_total",
			metric.WithDescription("Task outcomes by status"))
		if err != nil {
			o.logger.Warn("metric init failed", slog.String("metric", "semgate_task_outcomes_total"), slog.Any("error", err))
		}
	})
}

// Run executes every task and returns results keyed by file path.
// Duplicate tasks for one file are dropped at dispatch (first wins), so
// no result can silently overwrite another. Collection order is
// irrelevant: record ordering inside each result is fixed by the
// aggregator. No task's failure aborts the batch.
func (o *Orchestrator) Run(ctx context.Context, tasks []Task) map[string]Result {
	o.initMetrics()

	ctx, span := tracer.Start(ctx, "orchestrate.Run")
	defer span.End()
	span.SetAttributes(attribute.Int("tasks", len(tasks)))

	sem := semaphore.NewWeighted(int64(o.workers))
	resultCh := make(chan Result, len(tasks))

	seen := make(map[string]bool, len(tasks))
	var wg sync.WaitGroup
	for _, task := range tasks {
		if seen[task.FilePath] {
			o.logger.Debug("duplicate task skipped", slog.String("file", task.FilePath))
			continue
		}
		seen[task.FilePath] = true
		if err := sem.Acquire(ctx, 1); err != nil {
			resultCh <- Result{
				TaskID:   uuid.NewString()[:12],
				FilePath: task.FilePath,
				Status:   StatusError,
				Error:    fmt.Sprintf("dispatch cancelled: %v", err),
			}
			continue
		}
		wg.Add(1)
		go func(task Task) {
			defer wg.Done()
			defer sem.Release(1)
			resultCh <- o.runTask(ctx, task)
		}(task)
	}

	wg.Wait()
	close(resultCh)

	results := make(map[string]Result, len(tasks))
	for res := range resultCh {
		results[res.FilePath] = res
	}

	if ctx.Err() == nil {
		span.SetStatus(codes.Ok, "")
	}
	return results
}

// runTask runs one task under the configured deadline. On timeout the
// worker goroutine is abandoned and its eventual result discarded.
func (o *Orchestrator) runTask(ctx context.Context, task Task) Result {
	taskID := uuid.NewString()[:12]
	start := time.Now()

	ctx, span := tracer.Start(ctx, "orchestrate.task")
	defer span.End()
	span.SetAttributes(
		attribute.String("task.id", taskID),
		attribute.String("task.file", task.FilePath),
	)

	taskCtx := ctx
	cancel := context.CancelFunc(func() {})
	if o.taskTimeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, o.taskTimeout)
	}
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		done <- o.analyze(taskCtx, taskID, task)
	}()

	var res Result
	select {
	case res = <-done:
	case <-taskCtx.Done():
		res = Result{
			TaskID:   taskID,
			FilePath: task.FilePath,
			Status:   StatusError,
			Error:    fmt.Sprintf("%v after %v", ErrTaskTimeout, o.taskTimeout),
		}
		o.logger.Warn("task abandoned",
			slog.String("task_id", taskID),
			slog.String("file", task.FilePath),
			slog.Duration("timeout", o.taskTimeout))
	}

	elapsed := time.Since(start)
	if o.taskLatency != nil {
		o.taskLatency.Record(ctx, elapsed.Seconds(),
			metric.WithAttributes(attribute.String("status", res.Status.String())))
	}
	if o.taskOutcomes != nil {
		o.taskOutcomes.Add(ctx, 1,
			metric.WithAttributes(attribute.String("status", res.Status.String())))
	}
	if res.Status == StatusError {
		span.SetStatus(codes.Error, res.Error)
	}
	return res
}

// analyze performs the full per-file pipeline: retrieve both versions,
// extract both models, run every enabled analyzer, aggregate.
func (o *Orchestrator) analyze(ctx context.Context, taskID string, task Task) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				TaskID:   taskID,
				FilePath: task.FilePath,
				Status:   StatusError,
				Error:    fmt.Sprintf("panic: %v", r),
			}
			o.logger.Error("task panicked",
				slog.String("task_id", taskID),
				slog.String("file", task.FilePath),
				slog.Any("panic", r))
		}
	}()

	baseContent, err := o.provider.Content(ctx, task.FilePath, task.BaseRef)
	if err != nil {
		return errResult(taskID, task, fmt.Errorf("base content: %w", err))
	}
	headContent, err := o.provider.Content(ctx, task.FilePath, task.HeadRef)
	if err != nil {
		return errResult(taskID, task, fmt.Errorf("head content: %w", err))
	}
	if baseContent == nil && headContent == nil {
		return Result{TaskID: taskID, FilePath: task.FilePath, Status: StatusSuccess}
	}

	dialect := ast.DialectForPath(task.FilePath)
	baseModel := o.extractModel(ctx, baseContent, task.FilePath, dialect)
	headModel := o.extractModel(ctx, headContent, task.FilePath, dialect)

	params := detect.Params{FilePath: task.FilePath}
	var records []detect.ChangeRecord
	for _, analyzer := range detect.Analyzers() {
		if !o.resolver.AnalyzerEnabled(analyzer.Name) {
			continue
		}
		records = append(records, detect.SafeDiff(analyzer, baseModel, headModel, params)...)
	}

	patch, err := o.provider.Patch(ctx, task.FilePath, task.BaseRef, task.HeadRef)
	if err != nil {
		// A failed patch fetch degrades to whole-file scoping.
		o.logger.Debug("patch unavailable",
			slog.String("task_id", taskID),
			slog.String("file", task.FilePath),
			slog.Any("error", err))
		patch = ""
	}

	changes := aggregate.Aggregate(aggregate.Input{
		FilePath: task.FilePath,
		Base:     baseModel,
		Head:     headModel,
		BaseText: string(baseContent),
		HeadText: string(headContent),
		Records:  records,
		Hunks:    hunk.Parse(task.FilePath, patch),
	}, o.resolver)

	return Result{
		TaskID:        taskID,
		FilePath:      task.FilePath,
		Status:        StatusSuccess,
		Changes:       changes,
		TestsRequired: o.resolver.TestsRequired(task.FilePath, changes),
	}
}

// extractModel parses one version, degrading to an empty model for
// absent content or parse-level failures.
func (o *Orchestrator) extractModel(ctx context.Context, content []byte, filePath string, dialect ast.Dialect) *ast.StructuralModel {
	if len(content) == 0 {
		return &ast.StructuralModel{FilePath: filePath, Dialect: dialect}
	}
	src, err := o.extractor.Extract(ctx, content, filePath, dialect)
	if err != nil {
		o.logger.Warn("extraction degraded",
			slog.String("file", filePath),
			slog.Any("error", err))
		return &ast.StructuralModel{FilePath: filePath, Dialect: dialect, Partial: true}
	}
	defer src.Close()
	model := src.Model
	return &model
}

func errResult(taskID string, task Task, err error) Result {
	return Result{
		TaskID:   taskID,
		FilePath: task.FilePath,
		Status:   StatusError,
		Error:    err.Error(),
	}
}
