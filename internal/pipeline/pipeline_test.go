// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibfetch/internal/httputil"
	"github.com/pdiddy/bibfetch/internal/resolve"
)

// registrar serves canned BibTeX for any DOI suffix it is asked for.
func registrar(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suffix := strings.TrimPrefix(r.URL.Path, "/10.1000/")
		if suffix == "missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, "@article{key%s,\n    title = {Record %s},\n}\n", suffix, suffix)
	}))
}

func TestRunOrderAndTally(t *testing.T) {
	ts := registrar(t)
	defer ts.Close()

	restore := resolve.DOIBase
	resolve.DOIBase = ts.URL + "/"
	defer func() { resolve.DOIBase = restore }()

	client := httputil.NewClient(httputil.WithRateLimit(0))
	ids := []string{
		"10.1000/aaa",
		"not an identifier",
		"10.1000/missing",
		"10.1000/bbb",
	}
	results, summary := Run(context.Background(), ids, resolve.NewRegistry(), client, Options{})

	require.Len(t, results, len(ids))
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, ids[i], r.Identifier)
	}

	assert.NoError(t, results[0].Err)
	assert.Contains(t, results[0].Record, "Record aaa")

	var unrec *resolve.UnrecognizedError
	assert.ErrorAs(t, results[1].Err, &unrec)
	assert.Empty(t, results[1].Record)

	assert.ErrorIs(t, results[2].Err, resolve.ErrFetch)

	assert.NoError(t, results[3].Err)
	assert.Contains(t, results[3].Record, "Record bbb")

	assert.Equal(t, 2, summary.OK)
	assert.Equal(t, 2, summary.Failed)
	assert.Greater(t, summary.Elapsed.Nanoseconds(), int64(0))
}

func TestRunConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int64
	var mu sync.Mutex
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		defer inFlight.Add(-1)
		fmt.Fprint(w, "@article{k,\n    title = {T},\n}\n")
	}))
	defer ts.Close()

	restore := resolve.DOIBase
	resolve.DOIBase = ts.URL + "/"
	defer func() { resolve.DOIBase = restore }()

	client := httputil.NewClient(httputil.WithRateLimit(0))
	ids := make([]string, 8)
	for i := range ids {
		ids[i] = fmt.Sprintf("10.1000/job%d", i)
	}
	results, summary := Run(context.Background(), ids, resolve.NewRegistry(), client, Options{Concurrency: 2})

	assert.Equal(t, 8, summary.OK)
	assert.Equal(t, 0, summary.Failed)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	assert.LessOrEqual(t, peak.Load(), int64(2))
}

func TestRunEmptyInput(t *testing.T) {
	client := httputil.NewClient(httputil.WithRateLimit(0))
	results, summary := Run(context.Background(), nil, resolve.NewRegistry(), client, Options{})
	assert.Empty(t, results)
	assert.Equal(t, 0, summary.OK)
	assert.Equal(t, 0, summary.Failed)
}

func TestRunCancelledContext(t *testing.T) {
	ts := registrar(t)
	defer ts.Close()

	restore := resolve.DOIBase
	resolve.DOIBase = ts.URL + "/"
	defer func() { resolve.DOIBase = restore }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := httputil.NewClient(httputil.WithRateLimit(0))
	results, summary := Run(ctx, []string{"10.1000/aaa"}, resolve.NewRegistry(), client, Options{})
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Equal(t, 1, summary.Failed)
	assert.False(t, errors.Is(results[0].Err, resolve.ErrSerialization))
}
