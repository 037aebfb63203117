// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/bibfetch/internal/htmlmeta"
)

// now is the clock for access-date stamping. Tests pin it.
var now = time.Now

var (
	dateYMDPattern = regexp.MustCompile(`^(\d{4})[-/](\d{2})[-/](\d{2})`)
	dateYMPattern  = regexp.MustCompile(`^(\d{4})[-/](\d{2})\b`)
	dateYPattern   = regexp.MustCompile(`^(\d{4})\b`)
	dateRFCPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[T\s]`)
	yearPattern    = regexp.MustCompile(`\b(\d{4})\b`)
	bareDOIPattern = regexp.MustCompile(`(?i)\b(10\.\d{4,9}/[-._;()/:A-Z0-9]+)\b`)
)

// normalizeDate reduces publisher date strings to YYYY, YYYY-MM or
// YYYY-MM-DD. Time-of-day is truncated; anything else is dropped.
func normalizeDate(s string) (string, bool) {
	t := strings.TrimSpace(s)
	if m := dateYMDPattern.FindStringSubmatch(t); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3], true
	}
	if m := dateYMPattern.FindStringSubmatch(t); m != nil {
		return m[1] + "-" + m[2], true
	}
	if m := dateYPattern.FindStringSubmatch(t); m != nil {
		return m[1], true
	}
	if m := dateRFCPattern.FindStringSubmatch(t); m != nil {
		return m[1], true
	}
	return "", false
}

// extractYear pulls the first four-digit year out of a date string.
func extractYear(s string) int {
	if m := yearPattern.FindStringSubmatch(s); m != nil {
		y := 0
		for _, c := range m[1] {
			y = y*10 + int(c-'0')
		}
		return y
	}
	return 0
}

// pickEarlierDate arbitrates between citation_online_date and
// citation_year: the online date wins unless the year field names an
// earlier year.
func pickEarlierDate(online, year string) string {
	oy := extractYear(online)
	cy := extractYear(year)
	if oy > cy && cy > 0 {
		return year
	}
	return online
}

// buildPages joins first/last page values, mapping en and em dashes to "-".
func buildPages(first, last string) string {
	dashes := strings.NewReplacer("–", "-", "—", "-")
	f := strings.TrimSpace(dashes.Replace(first))
	l := strings.TrimSpace(dashes.Replace(last))
	switch {
	case f != "" && l != "":
		return f + "-" + l
	case f != "":
		return f
	default:
		return l
	}
}

// cleanDOI extracts a bare 10.NNNN/suffix DOI from whatever wrapper the
// publisher put around it.
func cleanDOI(s string) string {
	if m := bareDOIPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// splitCreators splits a multi-author string: semicolons first, then
// " and ", then commas when more than one, else the whole string.
func splitCreators(s string) []string {
	t := strings.TrimSpace(s)
	var parts []string
	switch {
	case strings.Contains(t, ";"):
		parts = strings.Split(t, ";")
	case strings.Contains(t, " and "):
		parts = strings.Split(t, " and ")
	case strings.Count(t, ",") > 1:
		parts = strings.Split(t, ",")
	default:
		parts = []string{t}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, normalizeName(p))
	}
	return out
}

func normalizeName(s string) string {
	return strings.TrimSpace(strings.Trim(htmlmeta.NormalizeSpace(s), ","))
}

// looksLikeURLOrHandle rejects creator values that are links or handles
// rather than names.
func looksLikeURLOrHandle(s string) bool {
	return strings.Contains(s, "@") ||
		strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://")
}

// isAbsoluteURL reports whether s parses as a URL with a scheme.
func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// dedupFold removes case-insensitive duplicates, keeping first occurrences
// in order.
func dedupFold(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// splitTags splits a keyword string on semicolons when present, otherwise
// commas, normalizing each tag.
func splitTags(s string) []string {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	var parts []string
	switch {
	case strings.Contains(t, ";"):
		parts = strings.Split(t, ";")
	case strings.Contains(t, ","):
		parts = strings.Split(t, ",")
	default:
		parts = []string{t}
	}
	var out []string
	for _, p := range parts {
		w := strings.TrimSpace(strings.Trim(htmlmeta.NormalizeSpace(p), ",;"))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// stripSiteSuffix removes a trailing "<separator> <site name>" decoration
// from page titles.
func stripSiteSuffix(title, site string) string {
	pattern := `(?i)\s*[\-–—=|:~#]\s*` + regexp.QuoteMeta(strings.TrimSpace(site)) + `\s*$`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return title
	}
	return strings.TrimSpace(re.ReplaceAllString(title, ""))
}

// deriveShortTitle returns the text before the first colon when it is
// meaningfully shorter than the whole title.
func deriveShortTitle(title string) string {
	head, _, found := strings.Cut(title, ":")
	if !found {
		return ""
	}
	h := strings.TrimSpace(head)
	if h != "" && len(h)+3 < len(title) {
		return h
	}
	return ""
}

// absolutize resolves cand against base. Absolute candidates pass through;
// scheme-relative and path-relative candidates resolve against base.
func absolutize(base *url.URL, cand string) (*url.URL, bool) {
	c := strings.TrimSpace(cand)
	if c == "" {
		return nil, false
	}
	u, err := url.Parse(c)
	if err != nil {
		return nil, false
	}
	if u.IsAbs() {
		return u, true
	}
	if base == nil {
		return nil, false
	}
	return base.ResolveReference(u), true
}

// buildKey derives a stable cite key "<prefix>:<host>:<path slug>" from a
// URL, with slashes in the path turned into hyphens.
func buildKey(prefix string, u *url.URL) string {
	host := u.Host
	if host == "" {
		host = "site"
	}
	path := strings.Trim(u.Path, "/")
	slug := "root"
	if path != "" {
		slug = strings.ReplaceAll(path, "/", "-")
	}
	return prefix + ":" + host + ":" + slug
}
