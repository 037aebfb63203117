// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/pdiddy/bibfetch/internal/httputil"
)

func TestRecognizeDOI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare", "10.1145/3297858.3304013", "10.1145/3297858.3304013"},
		{"doi prefix", "doi:10.1000/182", "10.1000/182"},
		{"DOI prefix uppercase", "DOI: 10.1000/182", "10.1000/182"},
		{"urn prefix", "urn:doi:10.1000/182", "10.1000/182"},
		{"URN prefix uppercase", "URN:DOI:10.1000/182", "10.1000/182"},
		{"https url", "https://doi.org/10.1145/3297858.3304013", "10.1145/3297858.3304013"},
		{"dx url", "http://dx.doi.org/10.1000/182", "10.1000/182"},
		{"query stripped", "https://doi.org/10.1000/182?utm_source=feed", "10.1000/182"},
		{"fragment stripped", "10.1000/182#section", "10.1000/182"},
		{"trailing period", "See 10.1000/182.", "10.1000/182"},
		{"trailing paren", "(10.1000/182)", "10.1000/182"},
		{"embedded in prose", "as shown in 10.1234/abc-def.12 earlier", "10.1234/abc-def.12"},
		{"first of several", "10.1000/first then 10.2000/second", "10.1000/first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := doiFamily{}.Recognize(tt.input)
			if !ok {
				t.Fatalf("Recognize(%q) did not match", tt.input)
			}
			if got := id.(*DOI).String(); got != tt.want {
				t.Errorf("Recognize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRecognizeDOIRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"plain text", "not an identifier"},
		{"short registrant", "10.123/abc"},
		{"no suffix", "10.1000/"},
		{"arxiv id", "1810.04805"},
		{"web url", "https://example.org/article"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := (doiFamily{}).Recognize(tt.input); ok {
				t.Errorf("Recognize(%q) matched, want reject", tt.input)
			}
		})
	}
}

// TestRecognizeDOIGenerated drives recognition with generated DOIs wrapped
// in the decorations seen in the wild.
func TestRecognizeDOIGenerated(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.StringMatching(`10\.\d{4,9}`).Draw(t, "prefix")
		suffix := rapid.StringMatching(`[a-z0-9]{1,8}(\.[a-z0-9]{1,8}){0,3}`).Draw(t, "suffix")
		doi := prefix + "/" + suffix

		wrapped := rapid.SampledFrom([]string{
			doi,
			"doi:" + doi,
			"urn:doi:" + doi,
			"https://doi.org/" + doi,
			"see " + doi + " for details.",
			"(" + doi + ")",
			doi + "?ref=x",
		}).Draw(t, "wrapped")

		id, ok := (doiFamily{}).Recognize(wrapped)
		if !ok {
			t.Fatalf("Recognize(%q) did not match", wrapped)
		}
		if got := id.(*DOI).String(); got != doi {
			t.Fatalf("Recognize(%q) = %q, want %q", wrapped, got, doi)
		}
	})
}

func TestDOIResolve(t *testing.T) {
	var gotAccept, gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path
		w.Write([]byte(registrarBibtex))
	}))
	defer ts.Close()

	orig := DOIBase
	DOIBase = ts.URL + "/"
	defer func() { DOIBase = orig }()

	client := httputil.NewClient(httputil.WithRateLimit(0))
	id, ok := (doiFamily{}).Recognize("doi:10.1081/E-ELIS3-120044418")
	require.True(t, ok)

	entry, err := id.Resolve(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, "application/x-bibtex", gotAccept)
	assert.Equal(t, "/10.1081/E-ELIS3-120044418", gotPath)
	assert.Equal(t, "Paskin_2010", entry.Key)
	title, _ := entry.Get("title")
	assert.Contains(t, title, "Digital Object Identifier")
}

const registrarBibtex = `@article{Paskin_2010,
	title={Digital Object Identifier ({DOI}) System},
	author={Paskin, Norman},
	year={2010},
	DOI={10.1081/E-ELIS3-120044418}
}`

func TestDOIResolveErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/10.9999/missing"):
			http.NotFound(w, r)
		default:
			w.Write([]byte("No records found."))
		}
	}))
	defer ts.Close()

	orig := DOIBase
	DOIBase = ts.URL + "/"
	defer func() { DOIBase = orig }()

	client := httputil.NewClient(httputil.WithRateLimit(0))

	_, err := (&DOI{Prefix: "10.9999", Suffix: "missing"}).Resolve(context.Background(), client)
	require.ErrorIs(t, err, ErrFetch)

	_, err = (&DOI{Prefix: "10.9999", Suffix: "junk"}).Resolve(context.Background(), client)
	require.ErrorIs(t, err, ErrExtraction)
}

func TestEncodeDOISuffix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a b", "a%20b"},
		{`a"b`, "a%22b"},
		{"a#b", "a%23b"},
		{"a<b>c", "a%3Cb%3Ec"},
		{"a?b", "a%3Fb"},
		{"a{b}c", "a%7Bb%7Dc"},
		{"keep/:;()-._", "keep/:;()-._"},
	}
	for _, tt := range tests {
		if got := encodeDOISuffix(tt.in); got != tt.want {
			t.Errorf("encodeDOISuffix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
