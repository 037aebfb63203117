// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/pdiddy/bibfetch/internal/biblatex"
	"github.com/pdiddy/bibfetch/internal/httputil"
)

// DOIBase is the registrar resolver endpoint.
// Declared as a var so tests can substitute an httptest server.
var DOIBase = "https://doi.org/"

// doiPattern finds a DOI anywhere in the input: a 10.NNNN+ prefix, a slash
// and a suffix from the registrar's character set, ending at a word
// boundary so trailing prose punctuation is not swallowed.
var doiPattern = regexp.MustCompile(`(?i)\b(10\.\d{4,9})/([-._;()/:A-Z0-9]+)\b`)

// doiPrefixes are textual prefixes stripped case-insensitively before the
// scan. Order matters: the longer urn form first.
var doiPrefixes = []string{"urn:doi:", "doi:"}

type doiFamily struct{}

func (doiFamily) Name() string { return "doi" }

// Recognize finds the first DOI in the input. The input may be a bare DOI,
// a doi:/urn:doi: form, a https://doi.org/ URL or a prose fragment with a
// DOI embedded in it.
func (doiFamily) Recognize(raw string) (Identifier, bool) {
	s := strings.TrimSpace(raw)
	for _, p := range doiPrefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}
	// Query and fragment are never part of a DOI.
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, `.,;:)]}"'`)

	m := doiPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	return &DOI{Prefix: m[1], Suffix: m[2]}, true
}

// DOI is a recognized DOI, split at the first slash.
type DOI struct {
	Prefix string
	Suffix string
}

func (d *DOI) String() string { return d.Prefix + "/" + d.Suffix }

// URL returns the registrar URL for the DOI, with the suffix
// percent-encoded over the characters doi.org treats as delimiters.
func (d *DOI) URL() string {
	return DOIBase + d.Prefix + "/" + encodeDOISuffix(d.Suffix)
}

// Resolve asks the registrar for the record directly via content
// negotiation and parses the BibTeX it returns.
func (d *DOI) Resolve(ctx context.Context, client *httputil.Client) (*biblatex.Entry, error) {
	header := http.Header{"Accept": []string{"application/x-bibtex"}}
	resp, err := client.Get(ctx, d.URL(), header)
	if err != nil {
		return nil, fmt.Errorf("%w: doi %s: %v", ErrFetch, d, err)
	}
	entry, err := biblatex.ParseFirst(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: doi %s registrar response: %v", ErrExtraction, d, err)
	}
	return entry, nil
}

// encodeDOISuffix percent-encodes controls, space and the characters
// `"#<>?` + "`{}" so any registered DOI survives inside a URL path.
func encodeDOISuffix(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c <= 0x1f || c == 0x7f,
			c == ' ', c == '"', c == '#', c == '<', c == '>', c == '?',
			c == '`', c == '{', c == '}':
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
