// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve recognizes bibliographic identifiers and resolves them to
// BibLaTeX records.
//
// Each identifier family (DOI, arXiv, USENIX presentation pages, generic
// webpages) contributes a recognizer and a resolver. Recognition is pure
// string analysis; resolution performs exactly one network fetch through the
// shared httputil.Client and synthesizes a record from whatever signals the
// response carried.
package resolve

import (
	"context"

	"github.com/pdiddy/bibfetch/internal/biblatex"
	"github.com/pdiddy/bibfetch/internal/httputil"
)

// Family recognizes raw input strings belonging to one identifier family.
type Family interface {
	// Name is a short lowercase family name for diagnostics.
	Name() string

	// Recognize reports whether raw belongs to this family, returning
	// the normalized identifier when it does. It never touches the
	// network.
	Recognize(raw string) (Identifier, bool)
}

// Identifier is a recognized identifier that can resolve itself to a record.
type Identifier interface {
	// Resolve fetches once and synthesizes a record. The client is
	// shared across workers.
	Resolve(ctx context.Context, client *httputil.Client) (*biblatex.Entry, error)
}

// Registry dispatches raw inputs to families in priority order.
type Registry struct {
	families []Family
}

// NewRegistry returns the standard registry. Order matters: most specific
// first, the webpage fallback last, and the first family to claim an input
// wins even if its resolution later fails.
func NewRegistry() *Registry {
	return &Registry{families: []Family{
		doiFamily{},
		arxivFamily{},
		usenixFamily{},
		webpageFamily{},
	}}
}

// Recognize scans families in order and returns the first match.
func (r *Registry) Recognize(raw string) (Family, Identifier, error) {
	for _, f := range r.families {
		if id, ok := f.Recognize(raw); ok {
			return f, id, nil
		}
	}
	return nil, nil, &UnrecognizedError{Input: raw}
}

// Resolve recognizes raw and resolves it in one call.
func (r *Registry) Resolve(ctx context.Context, client *httputil.Client, raw string) (*biblatex.Entry, error) {
	_, id, err := r.Recognize(raw)
	if err != nil {
		return nil, err
	}
	return id.Resolve(ctx, client)
}
