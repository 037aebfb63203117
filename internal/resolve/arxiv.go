// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/beevik/etree"

	"github.com/pdiddy/bibfetch/internal/biblatex"
	"github.com/pdiddy/bibfetch/internal/htmlmeta"
	"github.com/pdiddy/bibfetch/internal/httputil"
)

// API and abstract-page endpoints.
// Declared as vars so tests can substitute httptest servers.
var (
	ArxivAPIBase = "https://export.arxiv.org/api/query"
	ArxivAbsBase = "https://arxiv.org/abs/"
)

var (
	// New-style IDs: YYMM.NNNN or YYMM.NNNNN, optional vN.
	arxivNewStylePattern = regexp.MustCompile(`^(\d{4}\.\d{4,5})(?:v(\d+))?$`)

	// Legacy IDs: archive(.subject)?/NNNNNNN, optional vN.
	arxivLegacyPattern = regexp.MustCompile(`^([A-Za-z-]+(?:\.[A-Za-z-]+)?/\d{7})(?:v(\d+))?$`)

	// DOIs carried in rel=related links on the Atom entry.
	doiInURLPattern = regexp.MustCompile(`(?i)https?://(?:dx\.)?doi\.org/(10\.\d{4,9}/[-._;()/:A-Z0-9]+)`)
)

type arxivFamily struct{}

func (arxivFamily) Name() string { return "arxiv" }

// Recognize accepts bare IDs ("1810.04805v2", "astro-ph/0603274"),
// arXiv:-prefixed forms and abs/pdf URLs on arxiv.org, export.arxiv.org and
// the historic xxx.lanl.gov alias. Listing pages (find/, list/, search/)
// name many papers, not one, and are rejected.
func (arxivFamily) Recognize(raw string) (Identifier, bool) {
	s := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(s, "arXiv:"); ok {
		s = strings.TrimLeft(rest, " \t")
	} else if rest, ok := strings.CutPrefix(s, "arxiv:"); ok {
		s = strings.TrimLeft(rest, " \t")
	}

	rest, hasScheme := strings.CutPrefix(s, "https://")
	if !hasScheme {
		rest, hasScheme = strings.CutPrefix(s, "http://")
	}
	if hasScheme {
		host, path, found := strings.Cut(rest, "/")
		if found {
			h := strings.ToLower(host)
			if strings.HasSuffix(h, "arxiv.org") || strings.HasSuffix(h, "xxx.lanl.gov") {
				if i := strings.IndexAny(path, "?#"); i >= 0 {
					path = path[:i]
				}
				switch {
				case strings.HasPrefix(path, "abs/"):
					s = strings.TrimPrefix(path, "abs/")
				case strings.HasPrefix(path, "pdf/"):
					s = strings.TrimSuffix(strings.TrimPrefix(path, "pdf/"), ".pdf")
				default:
					return nil, false
				}
			}
		}
	}

	s = strings.Trim(s, "/")
	if m := arxivNewStylePattern.FindStringSubmatch(s); m != nil {
		return &ArxivID{ID: m[1], Version: m[2]}, true
	}
	if m := arxivLegacyPattern.FindStringSubmatch(s); m != nil {
		return &ArxivID{ID: m[1], Version: m[2], Legacy: true}, true
	}
	return nil, false
}

// ArxivID is a recognized arXiv identifier, canonical ID without version.
type ArxivID struct {
	ID      string
	Version string
	Legacy  bool
}

func (a *ArxivID) String() string { return a.ID }

// Resolve queries the arXiv Atom API for the single entry and synthesizes
// an @online record from it.
func (a *ArxivID) Resolve(ctx context.Context, client *httputil.Client) (*biblatex.Entry, error) {
	query := url.Values{}
	query.Set("id_list", a.ID)
	query.Set("max_results", "1")
	resp, err := client.Get(ctx, ArxivAPIBase+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: arXiv %s: %v", ErrFetch, a.ID, err)
	}

	meta, err := parseAtomEntry(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: arXiv %s: %v", ErrExtraction, a.ID, err)
	}
	return a.buildEntry(meta), nil
}

// arxivMeta holds the signals read from one Atom entry.
type arxivMeta struct {
	title      string
	summary    string
	updated    string
	authors    []string
	doi        string
	primary    string
	categories []string
	comments   []string
}

// parseAtomEntry reads the first entry of an Atom feed. The arxiv:*
// extension elements are addressed by their prefixed names, which etree
// preserves.
func parseAtomEntry(body string) (*arxivMeta, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return nil, fmt.Errorf("parsing Atom feed: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty Atom feed")
	}
	entry := root.SelectElement("entry")
	if entry == nil {
		return nil, fmt.Errorf("no Atom entry in feed")
	}

	meta := &arxivMeta{}
	if e := entry.SelectElement("title"); e != nil {
		meta.title = htmlmeta.NormalizeSpace(e.Text())
	}
	if e := entry.SelectElement("summary"); e != nil {
		meta.summary = htmlmeta.NormalizeSpace(e.Text())
	}
	if e := entry.SelectElement("updated"); e != nil {
		meta.updated = strings.TrimSpace(e.Text())
	}
	for _, author := range entry.SelectElements("author") {
		if name := author.SelectElement("name"); name != nil {
			if v := strings.TrimSpace(name.Text()); v != "" {
				meta.authors = append(meta.authors, v)
			}
		}
	}
	if e := entry.SelectElement("arxiv:primary_category"); e != nil {
		meta.primary = e.SelectAttrValue("term", "")
	}
	for _, cat := range entry.SelectElements("category") {
		if term := cat.SelectAttrValue("term", ""); term != "" {
			meta.categories = append(meta.categories, term)
		}
	}
	if e := entry.SelectElement("arxiv:doi"); e != nil {
		meta.doi = strings.TrimSpace(e.Text())
	}
	if meta.doi == "" {
		for _, link := range entry.SelectElements("link") {
			if link.SelectAttrValue("rel", "") != "related" {
				continue
			}
			if m := doiInURLPattern.FindStringSubmatch(link.SelectAttrValue("href", "")); m != nil {
				meta.doi = m[1]
				break
			}
		}
	}
	for _, c := range entry.SelectElements("arxiv:comment") {
		if v := htmlmeta.NormalizeSpace(c.Text()); v != "" {
			meta.comments = append(meta.comments, v)
		}
	}

	// The API answers an unknown ID with a feed whose entry has no
	// bibliographic content at all.
	if meta.title == "" && meta.summary == "" && len(meta.authors) == 0 {
		return nil, fmt.Errorf("Atom entry carries no metadata")
	}
	return meta, nil
}

// buildEntry synthesizes the @online record.
func (a *ArxivID) buildEntry(meta *arxivMeta) *biblatex.Entry {
	key := "arXiv:" + a.ID

	doi := meta.doi
	if doi == "" {
		// Every arXiv paper has a registered DOI under the 10.48550
		// prefix even when the feed does not carry a published one.
		doi = "10.48550/arXiv." + a.ID
	}

	var tags []string
	for _, term := range meta.categories {
		if label, ok := categoryLabel(term, meta.primary); ok && !slices.Contains(tags, label) {
			tags = append(tags, label)
		}
	}
	if len(tags) == 0 && meta.primary != "" {
		if label, ok := categoryLabel(meta.primary, meta.primary); ok {
			tags = append(tags, label)
		}
	}

	e := &biblatex.Entry{Type: biblatex.TypeOnline, Key: key}
	e.Add("title", meta.title)
	e.Add("abstract", meta.summary)
	e.Add("date", meta.updated)
	e.Add("author", strings.Join(meta.authors, " and "))
	e.Add("doi", doi)
	e.Add("url", ArxivAbsBase+a.ID)
	e.Add("eprinttype", "arXiv")
	e.Add("eprint", a.ID)
	if !a.Legacy {
		if arch, ok := primaryArchive(meta.primary); ok {
			e.Add("eprintclass", arch)
		}
	}
	e.Add("eprintversion", a.Version)
	e.Add("publisher", "arXiv")
	e.Add("number", key)
	e.Add("keywords", strings.Join(tags, ", "))
	if len(meta.comments) > 0 {
		var note strings.Builder
		for i, c := range meta.comments {
			if i > 0 {
				note.WriteString("; ")
			}
			note.WriteString("Comment: ")
			note.WriteString(c)
		}
		e.Add("note", note.String())
	}
	return e
}
