// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/pdiddy/bibfetch/internal/biblatex"
	"github.com/pdiddy/bibfetch/internal/htmlmeta"
	"github.com/pdiddy/bibfetch/internal/httputil"
)

// usenixPresentationPattern anchors the canonical presentation-page shape.
// Deliberately strict: https only, www host only, /conference/ paths only.
// Program pages, /event/ archives and other subdomains fall through to the
// webpage family.
var usenixPresentationPattern = regexp.MustCompile(
	`^https://www\.usenix\.org/conference/.*/presentation(?:[/?#].*)?$`)

// articleLikeTypes are the JSON-LD @type values whose author lists we
// trust over the HighWire tags.
var articleLikeTypes = []string{
	"ScholarlyArticle",
	"Article",
	"CreativeWork",
	"PresentationDigitalDocument",
}

type usenixFamily struct{}

func (usenixFamily) Name() string { return "usenix" }

func (usenixFamily) Recognize(raw string) (Identifier, bool) {
	if !usenixPresentationPattern.MatchString(raw) {
		return nil, false
	}
	if _, err := url.Parse(raw); err != nil {
		return nil, false
	}
	return &Presentation{URL: raw}, true
}

// Presentation is a recognized USENIX conference presentation page.
type Presentation struct {
	URL string
}

func (p *Presentation) String() string { return p.URL }

// Resolve fetches the page once and synthesizes a record from its JSON-LD,
// HighWire and OpenGraph signals, in that order of trust.
func (p *Presentation) Resolve(ctx context.Context, client *httputil.Client) (*biblatex.Entry, error) {
	resp, err := client.Get(ctx, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if ct := resp.ContentType(); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("%w: non-HTML content type %q for %s", ErrFetch, ct, p.URL)
	}
	finalURL := resp.FinalURL

	metas := htmlmeta.Metas(resp.Body)
	nodes := htmlmeta.JSONLD(resp.Body)

	// Title: JSON-LD name first, HighWire, OpenGraph, the <title> tag,
	// finally the URL itself.
	title, ok := ldName(nodes)
	if !ok {
		title, ok = htmlmeta.MetaByName(metas, "citation_title")
	}
	if !ok {
		title, ok = htmlmeta.MetaByProperty(metas, "og:title")
	}
	if !ok {
		title, ok = htmlmeta.Title(resp.Body)
	}
	if !ok {
		title = finalURL.String()
	}
	title = htmlmeta.NormalizeSpace(title)
	if site, ok := htmlmeta.MetaByProperty(metas, "og:site_name"); ok {
		title = stripSiteSuffix(title, site)
	}
	title = stripUnescapedBraces(title)

	// Authors: the JSON-LD list only when the node type is article-like.
	var authors []string
	if hasArticleLikeType(nodes) {
		authors = ldAuthors(nodes)
	}
	if len(authors) == 0 {
		for _, v := range htmlmeta.MetasByName(metas, "citation_author") {
			if !looksLikeURLOrHandle(v) {
				authors = append(authors, v)
			}
		}
		if v, ok := htmlmeta.MetaByName(metas, "citation_authors"); ok {
			for _, name := range splitCreators(v) {
				if name != "" && !looksLikeURLOrHandle(name) {
					authors = append(authors, name)
				}
			}
		}
	}
	if len(authors) == 0 {
		for _, v := range htmlmeta.MetasByProperty(metas, "article:author") {
			if !isAbsoluteURL(v) {
				authors = append(authors, v)
			}
		}
	}
	authors = dedupFold(authors)

	date, hasDate := ldString(nodes, "datePublished")
	if !hasDate {
		date, hasDate = htmlmeta.MetaByName(metas, "citation_publication_date")
	}
	if !hasDate {
		date, hasDate = htmlmeta.MetaByName(metas, "citation_cover_date")
	}
	if !hasDate {
		date, hasDate = htmlmeta.MetaByName(metas, "citation_date")
	}
	if !hasDate {
		date, _ = htmlmeta.MetaByProperty(metas, "article:published_time")
	}
	date, _ = normalizeDate(date)

	booktitle, ok := htmlmeta.MetaByName(metas, "citation_conference_title")
	if !ok {
		booktitle, _ = ldIsPartOfName(nodes)
	}
	journaltitle, _ := htmlmeta.MetaByName(metas, "citation_journal_title")

	volume, _ := htmlmeta.MetaByName(metas, "citation_volume")
	number, _ := htmlmeta.MetaByName(metas, "citation_issue")
	first, _ := htmlmeta.MetaByName(metas, "citation_firstpage")
	last, _ := htmlmeta.MetaByName(metas, "citation_lastpage")

	rawDOI, _ := htmlmeta.MetaByName(metas, "citation_doi")
	isbn, _ := htmlmeta.MetaByName(metas, "citation_isbn")

	pageURL, ok := ldString(nodes, "url")
	if !ok {
		pageURL, ok = htmlmeta.MetaByName(metas, "citation_public_url")
	}
	if !ok {
		pageURL, ok = htmlmeta.MetaByName(metas, "citation_abstract_html_url")
	}
	if !ok {
		pageURL, ok = htmlmeta.MetaByName(metas, "citation_fulltext_html_url")
	}
	if !ok {
		pageURL, ok = htmlmeta.MetaByProperty(metas, "og:url")
	}
	recordURL := finalURL
	if ok {
		if abs, resolved := absolutize(finalURL, pageURL); resolved {
			recordURL = abs
		}
	}

	language, ok := htmlmeta.MetaByName(metas, "citation_language")
	if !ok {
		language, ok = htmlmeta.MetaByNameFold(metas, "language")
	}
	if !ok {
		language, _ = htmlmeta.MetaByNameFold(metas, "lang")
	}

	shorttitle, ok := ldString(nodes, "alternativeHeadline")
	if !ok {
		shorttitle = deriveShortTitle(title)
	}

	// Talk pages without a clear proceedings container historically came
	// out as articles, and downstream keys depend on that. Keep the bias.
	entryType := biblatex.TypeArticle
	if booktitle != "" {
		entryType = biblatex.TypeInProceedings
	} else if journaltitle != "" {
		entryType = biblatex.TypeArticle
	}

	e := &biblatex.Entry{Type: entryType, Key: buildKey("usenix", finalURL)}
	e.Add("title", title)
	e.Add("date", date)
	e.Add("author", strings.Join(authors, " and "))
	e.Add("language", language)
	e.Add("booktitle", booktitle)
	e.Add("journaltitle", journaltitle)
	e.Add("volume", volume)
	e.Add("number", number)
	e.Add("pages", buildPages(first, last))
	e.Add("doi", cleanDOI(rawDOI))
	e.Add("isbn", isbn)
	e.Add("url", recordURL.String())
	e.Add("shorttitle", shorttitle)

	if title == "" {
		return nil, fmt.Errorf("%w: empty title for %s", ErrValidation, finalURL)
	}
	if recordURL.String() == "" {
		return nil, fmt.Errorf("%w: missing url for %s", ErrValidation, finalURL)
	}
	return e, nil
}

func hasArticleLikeType(nodes []map[string]any) bool {
	for _, t := range ldTypes(nodes) {
		if slices.Contains(articleLikeTypes, t) {
			return true
		}
	}
	return false
}

// stripUnescapedBraces repeatedly removes innermost unescaped {...} pairs,
// then unescapes \{ and \}. Conference pages wrap protected words in
// braces and those wrappers are typography, not content.
func stripUnescapedBraces(s string) string {
	for {
		next, changed := stripBracePairOnce(s)
		if !changed {
			break
		}
		s = next
	}
	s = strings.ReplaceAll(s, `\{`, "{")
	return strings.ReplaceAll(s, `\}`, "}")
}

// stripBracePairOnce removes every {inner} pair whose opening brace is not
// backslash-escaped and whose inner text contains no braces.
func stripBracePairOnce(s string) (string, bool) {
	var b strings.Builder
	changed := false
	emitFrom := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '{' || (i > 0 && s[i-1] == '\\') {
			continue
		}
		j := i + 1
		bad := false
		for j < len(s) && s[j] != '}' {
			if s[j] == '{' {
				bad = true
				break
			}
			j++
		}
		if bad || j >= len(s) {
			continue
		}
		b.WriteString(s[emitFrom:i])
		b.WriteString(s[i+1 : j])
		changed = true
		i = j
		emitFrom = j + 1
	}
	if !changed {
		return s, false
	}
	b.WriteString(s[emitFrom:])
	return b.String(), true
}
