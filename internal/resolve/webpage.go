// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/bibfetch/internal/biblatex"
	"github.com/pdiddy/bibfetch/internal/htmlmeta"
	"github.com/pdiddy/bibfetch/internal/httputil"
)

// urlDenylist marks utility endpoints that are URLs but never citable
// documents.
var urlDenylist = []string{
	"jetpack.wordpress.com/jetpack-comment/",
}

type webpageFamily struct{}

func (webpageFamily) Name() string { return "webpage" }

// Recognize accepts any http or https URL. This family is the registry's
// last resort, so claiming broadly is correct; quality control happens at
// resolve time.
func (webpageFamily) Recognize(raw string) (Identifier, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, false
	}
	for _, deny := range urlDenylist {
		if strings.Contains(u.String(), deny) {
			return nil, false
		}
	}
	return &Webpage{URL: u.String()}, true
}

// Webpage is a recognized generic page URL.
type Webpage struct {
	URL string
}

func (w *Webpage) String() string { return w.URL }

// Resolve fetches the page once and synthesizes a record from embedded
// metadata: HighWire tags steer the entry kind, then each field follows
// its own precedence chain across HighWire, JSON-LD, OpenGraph and plain
// meta tags.
func (w *Webpage) Resolve(ctx context.Context, client *httputil.Client) (*biblatex.Entry, error) {
	resp, err := client.Get(ctx, w.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	// The effective base honors an in-document <base href>.
	base := resp.FinalURL
	if href, ok := htmlmeta.BaseHref(resp.Body); ok {
		if abs, resolved := absolutize(resp.FinalURL, href); resolved {
			base = abs
		}
	}

	metas := htmlmeta.Metas(resp.Body)
	links := htmlmeta.Links(resp.Body)
	nodes := htmlmeta.JSONLD(resp.Body)

	canonical := base
	for _, l := range links {
		if strings.EqualFold(l.Rel, "canonical") {
			if abs, resolved := absolutize(base, l.Href); resolved {
				canonical = abs
			}
			break
		}
	}

	hasHighWire := false
	for _, m := range metas {
		if strings.HasPrefix(m.Name, "citation_") {
			hasHighWire = true
			break
		}
	}

	entryType, keyPrefix := webpageKind(metas, hasHighWire)

	title, ok := htmlmeta.MetaByName(metas, "citation_title")
	if !ok {
		title, ok = ldHeadline(nodes)
	}
	if !ok {
		title, ok = htmlmeta.MetaByProperty(metas, "og:title")
	}
	if !ok {
		title, ok = htmlmeta.Title(resp.Body)
	}
	if !ok {
		title = base.String()
	}
	title = htmlmeta.NormalizeSpace(title)
	if site, ok := htmlmeta.MetaByProperty(metas, "og:site_name"); ok {
		title = stripSiteSuffix(title, site)
	}

	var authors []string
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
	if len(authors) == 0 {
		authors = ldAuthors(nodes)
	}
	if len(authors) == 0 {
		for _, v := range htmlmeta.MetasByProperty(metas, "article:author") {
			if !isAbsoluteURL(v) {
				authors = append(authors, v)
			}
		}
	}
	if len(authors) == 0 {
		if v, ok := htmlmeta.MetaByNameFold(metas, "author"); ok {
			authors = append(authors, splitCreators(v)...)
		}
	}
	authors = dedupFold(authors)

	var editors []string
	for _, v := range htmlmeta.MetasByName(metas, "citation_editor") {
		if !looksLikeURLOrHandle(v) {
			editors = append(editors, v)
		}
	}
	if v, ok := htmlmeta.MetaByName(metas, "citation_editors"); ok {
		for _, name := range splitCreators(v) {
			if name != "" && !looksLikeURLOrHandle(name) {
				editors = append(editors, name)
			}
		}
	}
	editors = dedupFold(editors)

	date, hasDate := htmlmeta.MetaByName(metas, "citation_publication_date")
	if !hasDate {
		date, hasDate = htmlmeta.MetaByName(metas, "citation_cover_date")
	}
	if !hasDate {
		date, hasDate = htmlmeta.MetaByName(metas, "citation_date")
	}
	if !hasDate {
		online, hasOnline := htmlmeta.MetaByName(metas, "citation_online_date")
		year, hasYear := htmlmeta.MetaByName(metas, "citation_year")
		switch {
		case hasOnline && hasYear:
			date, hasDate = pickEarlierDate(online, year), true
		case hasOnline:
			date, hasDate = online, true
		case hasYear:
			date, hasDate = year, true
		}
	}
	if !hasDate {
		date, hasDate = ldString(nodes, "datePublished")
	}
	if !hasDate {
		date, hasDate = htmlmeta.MetaByProperty(metas, "article:published_time")
	}
	if !hasDate {
		date, _ = htmlmeta.TimeDatetime(resp.Body)
	}
	date, _ = normalizeDate(date)

	journal, _ := htmlmeta.MetaByName(metas, "citation_journal_title")
	inbook, _ := htmlmeta.MetaByName(metas, "citation_inbook_title")
	book, _ := htmlmeta.MetaByName(metas, "citation_book_title")

	volume, _ := htmlmeta.MetaByName(metas, "citation_volume")
	issue, _ := htmlmeta.MetaByName(metas, "citation_issue")
	first, _ := htmlmeta.MetaByName(metas, "citation_firstpage")
	last, _ := htmlmeta.MetaByName(metas, "citation_lastpage")

	rawDOI, _ := htmlmeta.MetaByName(metas, "citation_doi")

	// Print ISSN preferred over the electronic one.
	issn, ok := htmlmeta.MetaByName(metas, "citation_issn")
	if !ok {
		issn, ok = htmlmeta.MetaByName(metas, "citation_ISSN")
	}
	if !ok {
		issn, _ = htmlmeta.MetaByName(metas, "citation_eIssn")
	}

	pageURL, ok := htmlmeta.MetaByName(metas, "citation_public_url")
	if !ok {
		pageURL, ok = htmlmeta.MetaByName(metas, "citation_abstract_html_url")
	}
	if !ok {
		pageURL, ok = htmlmeta.MetaByName(metas, "citation_fulltext_html_url")
	}
	if !ok {
		pageURL, ok = htmlmeta.MetaByProperty(metas, "og:url")
	}
	recordURL := canonical
	if ok {
		if abs, resolved := absolutize(base, pageURL); resolved {
			recordURL = abs
		}
	}

	language, ok := htmlmeta.MetaByName(metas, "citation_language")
	if !ok {
		language, ok = htmlmeta.MetaByNameFold(metas, "language")
	}
	if !ok {
		language, ok = htmlmeta.MetaByNameFold(metas, "lang")
	}
	if !ok {
		language, ok = htmlmeta.MetaByHTTPEquiv(metas, "content-language")
	}
	if !ok {
		language, _ = htmlmeta.Lang(resp.Body)
	}

	abstract, ok := htmlmeta.MetaByName(metas, "citation_abstract")
	if !ok {
		abstract, ok = ldString(nodes, "description")
	}
	if !ok {
		abstract, _ = htmlmeta.MetaByNameFold(metas, "description")
	}

	keywordSource, ok := htmlmeta.MetaByName(metas, "citation_keywords")
	if !ok {
		keywordSource, ok = ldKeywords(nodes)
	}
	if !ok {
		keywordSource, _ = htmlmeta.MetaByNameFold(metas, "keywords")
	}
	keywords := dedupFold(splitTags(keywordSource))

	site, _ := htmlmeta.MetaByProperty(metas, "og:site_name")
	publisher, _ := htmlmeta.MetaByName(metas, "citation_publisher")
	dissertation, _ := htmlmeta.MetaByName(metas, "citation_dissertation_institution")
	techReport, _ := htmlmeta.MetaByName(metas, "citation_technical_report_institution")
	reportNumber, _ := htmlmeta.MetaByName(metas, "citation_technical_report_number")
	conference, ok := htmlmeta.MetaByName(metas, "citation_conference_title")
	if !ok {
		conference, _ = htmlmeta.MetaByName(metas, "citation_conference")
	}

	e := &biblatex.Entry{Type: entryType, Key: buildKey(keyPrefix, canonical)}
	e.Add("title", title)
	e.Add("date", date)
	e.Add("author", strings.Join(authors, " and "))
	e.Add("editor", strings.Join(editors, " and "))
	e.Add("langid", language)
	e.Add("abstract", htmlmeta.NormalizeSpace(abstract))
	e.Add("journaltitle", journal)
	if inbook != "" {
		e.Add("booktitle", inbook)
	} else if journal == "" {
		e.Add("booktitle", book)
	}
	e.Add("volume", volume)
	e.Add("number", issue)
	e.Add("pages", buildPages(first, last))
	e.Add("doi", cleanDOI(rawDOI))
	e.Add("issn", issn)
	e.Add("url", recordURL.String())
	e.Add("urldate", now().UTC().Format("2006-01-02"))
	e.Add("keywords", strings.Join(keywords, ", "))
	e.Add("shorttitle", deriveShortTitle(title))
	e.Add("organization", site)
	e.Add("publisher", publisher)
	e.Add("institution", dissertation)
	e.Add("institution", techReport)
	e.Add("number", reportNumber)
	e.Add("eventtitle", conference)
	return e, nil
}

// webpageKind infers the entry type from the HighWire container tags, most
// specific first. Without HighWire tags the page is just an online source.
func webpageKind(metas []htmlmeta.Meta, hasHighWire bool) (biblatex.EntryType, string) {
	if !hasHighWire {
		return biblatex.TypeOnline, "web"
	}
	has := func(name string) bool {
		_, ok := htmlmeta.MetaByName(metas, name)
		return ok
	}
	switch {
	case has("citation_conference_title") || has("citation_conference"):
		return biblatex.TypeInProceedings, "conf"
	case has("citation_dissertation_institution"):
		return biblatex.TypeThesis, "thesis"
	case has("citation_technical_report_institution"):
		return biblatex.TypeReport, "report"
	case has("citation_journal_title"):
		return biblatex.TypeArticle, "article"
	case has("citation_inbook_title"):
		return biblatex.TypeInCollection, "incollection"
	default:
		return biblatex.TypeOnline, "web"
	}
}
