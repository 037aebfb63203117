// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibfetch/internal/httputil"
)

func TestRecognizeUsenix(t *testing.T) {
	accepted := []string{
		"https://www.usenix.org/conference/atc24/presentation/sharma",
		"https://www.usenix.org/conference/usenixsecurity23/presentation/wang-qi/presentation",
		"https://www.usenix.org/conference/osdi20/presentation",
		"https://www.usenix.org/conference/nsdi21/presentation/doe?ref=home",
		"https://www.usenix.org/conference/fast22/presentation/kim#abstract",
	}
	for _, input := range accepted {
		if _, ok := (usenixFamily{}).Recognize(input); !ok {
			t.Errorf("Recognize(%q) rejected, want accept", input)
		}
	}

	rejected := []string{
		"http://www.usenix.org/conference/atc24/presentation/sharma",
		"https://usenix.org/conference/atc24/presentation/sharma",
		"https://www.usenix.org/event/atc24/presentation/sharma",
		"https://www.usenix.org/conference/atc24/program",
		"https://www.usenix.org/conference/atc24/presentationx",
		"https://blog.usenix.org/conference/atc24/presentation/sharma",
		"https://www.usenix.org/conference/presentation",
	}
	for _, input := range rejected {
		if _, ok := (usenixFamily{}).Recognize(input); ok {
			t.Errorf("Recognize(%q) accepted, want reject", input)
		}
	}
}

func TestStripUnescapedBraces(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"{BLAKE2}", "BLAKE2"},
		{"{A {B} C}", "A B C"},
		{`\{esc\}`, "{esc}"},
		{"nest {one {two}} end", "nest one two end"},
		{"no braces", "no braces"},
		{"unmatched {open", "unmatched {open"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := stripUnescapedBraces(tt.in); got != tt.want {
			t.Errorf("stripUnescapedBraces(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

const usenixPage = `<!DOCTYPE html>
<html lang="en">
<head>
<title>Fast Recovery for Distributed Stores | USENIX</title>
<meta property="og:site_name" content="USENIX">
<meta property="og:title" content="Fast Recovery for Distributed Stores | USENIX">
<meta name="citation_title" content="HighWire Title Should Lose">
<meta name="citation_publication_date" content="2024/07/10">
<meta name="citation_conference_title" content="2024 USENIX Annual Technical Conference">
<meta name="citation_firstpage" content="101">
<meta name="citation_lastpage" content="115">
<script type="application/ld+json">
{
  "@type": "ScholarlyArticle",
  "name": "Fast Recovery for {Distributed} Stores",
  "author": [{"name": "Priya Sharma"}, {"name": "Wei Chen"}, "Priya Sharma"],
  "datePublished": "2024-07-10T09:00:00Z",
  "isPartOf": {"name": "Proceedings of the 2024 USENIX Annual Technical Conference"},
  "url": "/conference/atc24/presentation/sharma"
}
</script>
</head>
<body></body>
</html>`

func TestUsenixResolve(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(usenixPage))
	}))
	defer ts.Close()

	client := httputil.NewClient(httputil.WithRateLimit(0))
	p := &Presentation{URL: ts.URL + "/conference/atc24/presentation/sharma"}
	entry, err := p.Resolve(context.Background(), client)
	require.NoError(t, err)

	// JSON-LD name wins over the HighWire and OpenGraph titles, brace
	// wrappers are stripped.
	title, _ := entry.Get("title")
	assert.Equal(t, "Fast Recovery for Distributed Stores", title)

	// Article-like JSON-LD type, so its author list is used, deduped.
	author, _ := entry.Get("author")
	assert.Equal(t, "Priya Sharma and Wei Chen", author)

	date, _ := entry.Get("date")
	assert.Equal(t, "2024-07-10", date)

	// citation_conference_title outranks isPartOf.name.
	booktitle, _ := entry.Get("booktitle")
	assert.Equal(t, "2024 USENIX Annual Technical Conference", booktitle)
	assert.EqualValues(t, "inproceedings", entry.Type)

	pages, _ := entry.Get("pages")
	assert.Equal(t, "101-115", pages)

	// JSON-LD url is relative and resolves against the final URL.
	url, _ := entry.Get("url")
	assert.Equal(t, ts.URL+"/conference/atc24/presentation/sharma", url)
}

const usenixPlainPage = `<html>
<head>
<title>A Talk = USENIX</title>
<meta property="og:site_name" content="USENIX">
</head>
</html>`

func TestUsenixResolveLegacyArticleBias(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(usenixPlainPage))
	}))
	defer ts.Close()

	client := httputil.NewClient(httputil.WithRateLimit(0))
	p := &Presentation{URL: ts.URL + "/conference/atc24/presentation/doe"}
	entry, err := p.Resolve(context.Background(), client)
	require.NoError(t, err)

	// No container signals at all: the page still comes out as an
	// article, and the site suffix is stripped from the <title> text.
	assert.EqualValues(t, "article", entry.Type)
	title, _ := entry.Get("title")
	assert.Equal(t, "A Talk", title)

	key := entry.Key
	assert.Contains(t, key, "usenix:")
	assert.Contains(t, key, "conference-atc24-presentation-doe")
}

func TestUsenixResolveRejectsNonHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.5"))
	}))
	defer ts.Close()

	client := httputil.NewClient(httputil.WithRateLimit(0))
	p := &Presentation{URL: ts.URL + "/conference/atc24/presentation/doe"}
	_, err := p.Resolve(context.Background(), client)
	require.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "non-HTML content type")
}
