// Package pipeline runs feature extraction over many participants in
// parallel. Each participant is isolated: a load error, extraction error or
// panic becomes a Failure in the report and never stops the others.
package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/sleep.report/internal/features"
	"github.com/banshee-data/sleep.report/internal/monitoring"
	"github.com/banshee-data/sleep.report/internal/timeutil"
)

// Failure stages.
const (
	StageLoad      = "load"
	StageExtract   = "extract"
	StagePanic     = "panic"
	StageCancelled = "cancelled"
)

// Source supplies participant tables. *dataset.Loader satisfies it.
type Source interface {
	Participants() ([]string, error)
	Load(id string, columns ...string) (*features.Table, error)
}

// Failure records why one participant produced no output.
type Failure struct {
	Participant string
	Stage       string
	Err         error
}

func (f Failure) Error() string {
	return fmt.Sprintf("participant %s: %s: %v", f.Participant, f.Stage, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// ParticipantResult is one participant's successful extraction.
type ParticipantResult struct {
	Participant string
	Result      *features.Result
}

// Run is the outcome of a pipeline run. Results keep participant order.
type Run struct {
	Results []ParticipantResult
	Report  Report
}

// Runner wires a Source to an Extractor.
type Runner struct {
	Source    Source
	Extractor *features.Extractor
	// Workers bounds concurrent participants; values below 1 mean 1.
	Workers int
	// Columns restricts loaded columns; nil loads the source defaults.
	Columns []string
	Clock   timeutil.Clock
}

// Run extracts features for ids, or for every participant the source lists
// when ids is empty. Cancelling ctx stops new participants from starting;
// those are reported with StageCancelled and ctx.Err() is returned alongside
// the partial run.
func (r *Runner) Run(ctx context.Context, ids []string) (*Run, error) {
	if r.Source == nil || r.Extractor == nil {
		return nil, fmt.Errorf("pipeline: source and extractor are required")
	}
	clock := r.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := clock.Now()

	if len(ids) == 0 {
		var err error
		ids, err = r.Source.Participants()
		if err != nil {
			return nil, fmt.Errorf("discover participants: %w", err)
		}
	}

	type outcome struct {
		result  *features.Result
		failure *Failure
	}
	outcomes := make([]outcome, len(ids))

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, id := range ids {
		i, id := i, id
		if ctx.Err() != nil {
			outcomes[i].failure = &Failure{Participant: id, Stage: StageCancelled, Err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			res, fail := r.participant(ctx, clock, id)
			outcomes[i] = outcome{result: res, failure: fail}
			return nil
		})
	}
	_ = g.Wait()

	run := &Run{}
	var failures []Failure
	for i, o := range outcomes {
		if o.failure != nil {
			failures = append(failures, *o.failure)
			continue
		}
		run.Results = append(run.Results, ParticipantResult{Participant: ids[i], Result: o.result})
	}
	run.Report = buildReport(r.Extractor.FeatureNames(), len(ids), run.Results, failures)
	run.Report.Duration = clock.Since(start)
	return run, ctx.Err()
}

func (r *Runner) participant(ctx context.Context, clock timeutil.Clock, id string) (res *features.Result, fail *Failure) {
	logf := monitoring.Prefixed(id)
	defer func() {
		if p := recover(); p != nil {
			logf("panic during extraction: %v\n%s", p, debug.Stack())
			res, fail = nil, &Failure{Participant: id, Stage: StagePanic, Err: fmt.Errorf("%v", p)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, &Failure{Participant: id, Stage: StageCancelled, Err: err}
	}

	t0 := clock.Now()
	tbl, err := r.Source.Load(id, r.Columns...)
	if err != nil {
		logf("load failed: %v", err)
		return nil, &Failure{Participant: id, Stage: StageLoad, Err: err}
	}
	res, err = r.Extractor.ExtractAll(tbl)
	if err != nil {
		logf("extraction failed: %v", err)
		return nil, &Failure{Participant: id, Stage: StageExtract, Err: err}
	}
	logf("extracted %d epochs in %s", res.Len(), clock.Since(t0).Round(time.Millisecond))
	return res, nil
}
