// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package reader reads flow records from directories of compressed TSV files.
package reader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/DataDog/datadog-agent/pkg/util/log"

	"github.com/DataDog/flowanomaly/pkg/netflow/common"
)

// ctxCheckInterval is the number of lines decoded between two context checks.
const ctxCheckInterval = 4096

// Config contains the reader settings
type Config struct {
	DataDir string
	// Workers is the number of files decoded concurrently. With a single
	// worker files are streamed line by line.
	Workers int
	// MaxCount stops the reader after that many flows, 0 means no limit.
	MaxCount int64
	// Rebase shifts every timestamp so that the first flow happens now.
	Rebase bool
}

// Stats contains the reader counters
type Stats struct {
	FilesRead     int64
	FlowsRead     int64
	FlowsFiltered int64
	LinesSkipped  int64
}

type fileResult struct {
	flows []*common.Flow
	err   error
}

// Reader is a common.FlowSource reading every flow file of a directory tree,
// keeping the routable flows only. Flows are yielded in file order whatever
// the number of workers.
type Reader struct {
	config Config
	clock  clock.Clock
	files  []string

	filesRead     *atomic.Int64
	flowsRead     *atomic.Int64
	flowsFiltered *atomic.Int64
	linesSkipped  *atomic.Int64

	started  bool
	rebased  bool
	offset   float64
	finished bool

	// sequential mode
	nextFile int
	current  *flowFile
	scanner  *bufio.Scanner
	path     string
	line     int

	// parallel mode
	futures chan chan fileResult
	group   *errgroup.Group
	cancel  context.CancelFunc
	pending []*common.Flow
}

// Option configures a Reader
type Option func(*Reader)

// WithClock sets the clock used to rebase timestamps
func WithClock(c clock.Clock) Option {
	return func(r *Reader) {
		r.clock = c
	}
}

// New lists the flow files of config.DataDir and returns a Reader over them.
func New(config Config, opts ...Option) (*Reader, error) {
	if config.Workers <= 0 {
		config.Workers = common.DefaultReaderWorkers
	}
	if config.MaxCount < 0 {
		return nil, fmt.Errorf("max count must be positive, got %d", config.MaxCount)
	}
	files, err := listFiles(config.DataDir)
	if err != nil {
		return nil, err
	}
	r := &Reader{
		config:        config,
		clock:         clock.New(),
		files:         files,
		filesRead:     atomic.NewInt64(0),
		flowsRead:     atomic.NewInt64(0),
		flowsFiltered: atomic.NewInt64(0),
		linesSkipped:  atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	log.Infof("Found %d flow files in %s", len(files), config.DataDir)
	return r, nil
}

// Files returns the files read, in order
func (r *Reader) Files() []string {
	return r.files
}

// Stats returns the reader counters. It is safe to call concurrently with Next.
func (r *Reader) Stats() Stats {
	return Stats{
		FilesRead:     r.filesRead.Load(),
		FlowsRead:     r.flowsRead.Load(),
		FlowsFiltered: r.flowsFiltered.Load(),
		LinesSkipped:  r.linesSkipped.Load(),
	}
}

// Next implements common.FlowSource
func (r *Reader) Next(ctx context.Context) (*common.Flow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.finished {
		return nil, io.EOF
	}
	if r.config.MaxCount > 0 && r.flowsRead.Load() >= r.config.MaxCount {
		log.Infof("Read %d flows - terminated", r.flowsRead.Load())
		r.finished = true
		return nil, io.EOF
	}

	var flow *common.Flow
	var err error
	if r.config.Workers > 1 {
		flow, err = r.nextParallel(ctx)
	} else {
		flow, err = r.nextSequential(ctx)
	}
	if errors.Is(err, io.EOF) {
		log.Infof("Read %d flows - completed", r.flowsRead.Load())
		r.finished = true
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	r.flowsRead.Inc()
	return r.rebase(flow), nil
}

func (r *Reader) rebase(flow *common.Flow) *common.Flow {
	if !r.config.Rebase {
		return flow
	}
	if !r.rebased {
		now := r.clock.Now()
		r.offset = float64(now.UnixNano())/1e9 - flow.Timestamp
		r.rebased = true
	}
	rebased := *flow
	rebased.Timestamp += r.offset
	return &rebased
}

// keep parses line and reports whether the flow must be yielded
func (r *Reader) keep(path string, lineNumber int, line string) (*common.Flow, bool) {
	if line == "" {
		return nil, false
	}
	flow, err := ParseLine(line)
	if err != nil {
		r.linesSkipped.Inc()
		log.Debugf("Skipping line %d of %s: %s", lineNumber, path, err)
		return nil, false
	}
	if !flow.Routable {
		r.flowsFiltered.Inc()
		return nil, false
	}
	return flow, true
}

func (r *Reader) nextSequential(ctx context.Context) (*common.Flow, error) {
	for {
		if r.scanner == nil {
			if r.nextFile >= len(r.files) {
				return nil, io.EOF
			}
			r.path = r.files[r.nextFile]
			r.nextFile++
			file, err := openFile(r.path)
			if err != nil {
				return nil, fmt.Errorf("failed to open %s: %w", r.path, err)
			}
			log.Debugf("Reading %s", r.path)
			r.current = file
			r.scanner = bufio.NewScanner(file)
			r.line = 0
		}

		for r.scanner.Scan() {
			r.line++
			if r.line%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			if flow, ok := r.keep(r.path, r.line, r.scanner.Text()); ok {
				return flow, nil
			}
		}
		err := r.scanner.Err()
		closeErr := r.current.Close()
		r.current, r.scanner = nil, nil
		r.filesRead.Inc()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("failed to close %s: %w", r.path, closeErr)
		}
	}
}

// decodeFile reads every routable flow of path
func (r *Reader) decodeFile(ctx context.Context, path string) ([]*common.Flow, error) {
	file, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	log.Debugf("Reading %s", path)

	var flows []*common.Flow
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				file.Close()
				return nil, err
			}
		}
		if flow, ok := r.keep(path, line, scanner.Text()); ok {
			flows = append(flows, flow)
		}
	}
	var errs *multierror.Error
	if err := scanner.Err(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to read %s: %w", path, err))
	}
	if err := file.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to close %s: %w", path, err))
	}
	r.filesRead.Inc()
	return flows, errs.ErrorOrNil()
}

// startParallel decodes up to Workers files concurrently. Results are handed
// over through futures, in file order, so that at most 2*Workers decoded
// files are held in memory. The workers live until ctx is done or Close is
// called.
func (r *Reader) startParallel(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.futures = make(chan chan fileResult, r.config.Workers)
	group, groupCtx := errgroup.WithContext(ctx)
	r.group = group

	group.Go(func() error {
		defer close(r.futures)
		workers, workersCtx := errgroup.WithContext(groupCtx)
		workers.SetLimit(r.config.Workers)
		for _, path := range r.files {
			path := path
			result := make(chan fileResult, 1)
			select {
			case r.futures <- result:
			case <-workersCtx.Done():
				return workers.Wait()
			}
			workers.Go(func() error {
				flows, err := r.decodeFile(workersCtx, path)
				result <- fileResult{flows: flows, err: err}
				return err
			})
		}
		return workers.Wait()
	})
}

func (r *Reader) nextParallel(ctx context.Context) (*common.Flow, error) {
	if !r.started {
		r.started = true
		r.startParallel(ctx)
	}
	for len(r.pending) == 0 {
		var future chan fileResult
		var ok bool
		select {
		case future, ok = <-r.futures:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if !ok {
			if err := r.group.Wait(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		var result fileResult
		select {
		case result = <-future:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if errors.Is(result.err, context.Canceled) {
			// another file failed first
			if err := r.group.Wait(); err != nil {
				return nil, err
			}
		}
		if result.err != nil {
			return nil, result.err
		}
		r.pending = result.flows
	}
	flow := r.pending[0]
	r.pending = r.pending[1:]
	return flow, nil
}

// Close stops the workers and closes the file being read.
func (r *Reader) Close() error {
	var errs *multierror.Error
	if r.cancel != nil {
		r.cancel()
		if err := r.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			errs = multierror.Append(errs, err)
		}
	}
	if r.current != nil {
		if err := r.current.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
		r.current, r.scanner = nil, nil
	}
	return errs.ErrorOrNil()
}
