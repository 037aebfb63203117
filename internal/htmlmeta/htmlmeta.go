// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package htmlmeta extracts bibliographic signals from raw HTML text.
//
// Extraction is regex scanning over the document source, not DOM parsing.
// Scholarly metadata lives in <meta> tags, <link> tags, the <title> element
// and JSON-LD script blocks, all of which are reliably found by tag-level
// scanning, and the scanners keep working on the truncated or slightly
// malformed markup real publisher pages serve.
package htmlmeta

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	metaTagPattern  = regexp.MustCompile(`(?is)<meta\b[^>]*>`)
	linkTagPattern  = regexp.MustCompile(`(?is)<link\b[^>]*>`)
	attrPattern     = regexp.MustCompile(`(?i)([a-zA-Z_:\-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	titlePattern    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	htmlLangPattern = regexp.MustCompile(`(?is)<html\b[^>]*\blang\s*=\s*["']([^"']+)["']`)
	timeTagPattern  = regexp.MustCompile(`(?is)<time\b[^>]*\bdatetime\s*=\s*["']([^"']+)["']`)
	baseTagPattern  = regexp.MustCompile(`(?is)<base\b[^>]*\bhref\s*=\s*["']([^"']+)["']`)
	jsonLDPattern   = regexp.MustCompile(`(?is)<script\b[^>]*type\s*=\s*["']application/ld\+json["'][^>]*>(.*?)</script>`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// Meta is one <meta> tag. Exactly one of Name, Property or HTTPEquiv is
// normally set, matching how publishers use the three addressing schemes.
type Meta struct {
	Name      string
	Property  string
	HTTPEquiv string
	Content   string
}

// Link is one <link> tag with rel and href attributes.
type Link struct {
	Rel  string
	Href string
}

// attrs decodes the key="value" pairs of a single tag. Keys are lowercased.
func attrs(tag string) map[string]string {
	out := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(tag, -1) {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		key := strings.ToLower(m[1])
		if _, seen := out[key]; !seen {
			out[key] = value
		}
	}
	return out
}

// Metas returns every <meta> tag in document order.
func Metas(html string) []Meta {
	var metas []Meta
	for _, tag := range metaTagPattern.FindAllString(html, -1) {
		a := attrs(tag)
		metas = append(metas, Meta{
			Name:      a["name"],
			Property:  a["property"],
			HTTPEquiv: a["http-equiv"],
			Content:   a["content"],
		})
	}
	return metas
}

// Links returns every <link> tag in document order.
func Links(html string) []Link {
	var links []Link
	for _, tag := range linkTagPattern.FindAllString(html, -1) {
		a := attrs(tag)
		links = append(links, Link{Rel: a["rel"], Href: a["href"]})
	}
	return links
}

// Title returns the text of the first <title> element.
func Title(html string) (string, bool) {
	m := titlePattern.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	return NormalizeSpace(m[1]), true
}

// Lang returns the lang attribute of the <html> element.
func Lang(html string) (string, bool) {
	m := htmlLangPattern.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// TimeDatetime returns the datetime attribute of the first <time> element.
func TimeDatetime(html string) (string, bool) {
	m := timeTagPattern.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// BaseHref returns the href of the first <base> tag.
func BaseHref(html string) (string, bool) {
	m := baseTagPattern.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	href := strings.TrimSpace(m[1])
	return href, href != ""
}

// JSONLD decodes every application/ld+json script block into generic
// objects. Top-level arrays are flattened, blocks that fail to decode are
// skipped. Publishers routinely wrap the payload in HTML comment markers
// or leave stray NULs in it, so those are stripped before decoding.
func JSONLD(html string) []map[string]any {
	var nodes []map[string]any
	for _, m := range jsonLDPattern.FindAllStringSubmatch(html, -1) {
		raw := strings.TrimSpace(m[1])
		raw = strings.ReplaceAll(raw, "<!--", "")
		raw = strings.ReplaceAll(raw, "-->", "")
		raw = strings.ReplaceAll(raw, "\x00", "")
		if raw == "" {
			continue
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			continue
		}
		switch v := value.(type) {
		case map[string]any:
			nodes = append(nodes, v)
		case []any:
			for _, item := range v {
				if obj, ok := item.(map[string]any); ok {
					nodes = append(nodes, obj)
				}
			}
		}
	}
	return nodes
}

// MetaByName returns the content of the first non-empty meta with the exact
// name.
func MetaByName(metas []Meta, name string) (string, bool) {
	for _, m := range metas {
		if m.Name == name && strings.TrimSpace(m.Content) != "" {
			return strings.TrimSpace(m.Content), true
		}
	}
	return "", false
}

// MetaByNameFold is MetaByName with case-insensitive name matching. Some
// publishers emit citation_ISSN and similar variants.
func MetaByNameFold(metas []Meta, name string) (string, bool) {
	for _, m := range metas {
		if strings.EqualFold(m.Name, name) && strings.TrimSpace(m.Content) != "" {
			return strings.TrimSpace(m.Content), true
		}
	}
	return "", false
}

// MetasByName returns the contents of every non-empty meta with the exact
// name, in document order.
func MetasByName(metas []Meta, name string) []string {
	var out []string
	for _, m := range metas {
		if m.Name == name && strings.TrimSpace(m.Content) != "" {
			out = append(out, strings.TrimSpace(m.Content))
		}
	}
	return out
}

// MetaByProperty returns the content of the first non-empty meta with the
// given property (og:* and article:* tags).
func MetaByProperty(metas []Meta, property string) (string, bool) {
	for _, m := range metas {
		if strings.EqualFold(m.Property, property) && strings.TrimSpace(m.Content) != "" {
			return strings.TrimSpace(m.Content), true
		}
	}
	return "", false
}

// MetasByProperty returns every non-empty content for the given property.
func MetasByProperty(metas []Meta, property string) []string {
	var out []string
	for _, m := range metas {
		if strings.EqualFold(m.Property, property) && strings.TrimSpace(m.Content) != "" {
			out = append(out, strings.TrimSpace(m.Content))
		}
	}
	return out
}

// MetaByHTTPEquiv returns the content of the first non-empty meta with the
// given http-equiv attribute.
func MetaByHTTPEquiv(metas []Meta, equiv string) (string, bool) {
	for _, m := range metas {
		if strings.EqualFold(m.HTTPEquiv, equiv) && strings.TrimSpace(m.Content) != "" {
			return strings.TrimSpace(m.Content), true
		}
	}
	return "", false
}

// NormalizeSpace collapses runs of whitespace to single spaces and trims.
func NormalizeSpace(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
