// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs identifier resolution jobs concurrently.
//
// Each input identifier is one job. Jobs are independent: a failure is
// recorded and never cancels or delays the others. Results are reassembled
// into input order regardless of completion order, so output is stable
// across runs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/bibfetch/internal/biblatex"
	"github.com/pdiddy/bibfetch/internal/httputil"
	"github.com/pdiddy/bibfetch/internal/resolve"
)

// Result is the outcome of one job. Exactly one of Record and Err is set.
type Result struct {
	Index      int
	Identifier string
	Record     string
	Err        error
}

// Summary tallies a finished run.
type Summary struct {
	OK      int
	Failed  int
	Elapsed time.Duration
}

// Options configures a run.
type Options struct {
	// Concurrency caps the number of jobs in flight. Zero or negative
	// means one goroutine per identifier.
	Concurrency int
}

// Run resolves every identifier and returns results in input order plus a
// tally. The context bounds the whole run; individual job failures do not
// stop it.
func Run(ctx context.Context, identifiers []string, reg *resolve.Registry, client *httputil.Client, opts Options) ([]Result, Summary) {
	start := time.Now()
	results := make([]Result, len(identifiers))

	ch := make(chan Result)
	done := make(chan struct{})
	go func() {
		for r := range ch {
			results[r.Index] = r
		}
		close(done)
	}()

	var g errgroup.Group
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, id := range identifiers {
		i, id := i, id
		g.Go(func() error {
			ch <- resolveOne(ctx, i, id, reg, client)
			return nil
		})
	}
	g.Wait()
	close(ch)
	<-done

	summary := Summary{Elapsed: time.Since(start)}
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.OK++
		}
	}
	return results, summary
}

// resolveOne runs a single job: recognize, resolve, serialize, and check
// that the serialized record parses back. A record that does not survive
// the round trip is a bug in the serializer and is reported as this job's
// failure rather than emitted.
func resolveOne(ctx context.Context, index int, identifier string, reg *resolve.Registry, client *httputil.Client) Result {
	res := Result{Index: index, Identifier: identifier}

	entry, err := reg.Resolve(ctx, client, identifier)
	if err != nil {
		res.Err = err
		return res
	}

	record := entry.Serialize()
	if _, err := biblatex.ParseFirst(record); err != nil {
		res.Err = fmt.Errorf("%w: record for %s did not parse back: %v", resolve.ErrSerialization, identifier, err)
		return res
	}
	res.Record = record
	return res
}
