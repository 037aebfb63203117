// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package htmlmeta

import (
	"testing"
)

const sampleDoc = `<!DOCTYPE html>
<html lang="en-US">
<head>
<base href="https://example.org/papers/">
<title>
  A   Study of
  Things
</title>
<meta name="citation_title" content="A Study of Things">
<meta name="citation_author" content="Doe, Jane">
<meta name="citation_author" content="Roe, Richard">
<meta property="og:title" content='OG Title'>
<meta http-equiv="content-language" content="en">
<meta name="empty" content="  ">
<link rel="canonical" href="https://example.org/papers/study">
<link rel="stylesheet" href="/style.css">
<script type="application/ld+json">
<!--
{"@type": "ScholarlyArticle", "name": "LD Name"}
-->
</script>
<script type="application/ld+json">
[{"@type": "Article", "headline": "First"}, {"@type": "Person"}]
</script>
<script type="application/ld+json">not json at all</script>
</head>
<body>
<time datetime="2024-03-05T10:00:00Z">March 5</time>
</body>
</html>`

func TestMetas(t *testing.T) {
	metas := Metas(sampleDoc)
	if len(metas) != 6 {
		t.Fatalf("Metas() returned %d tags, want 6", len(metas))
	}
	if v, ok := MetaByName(metas, "citation_title"); !ok || v != "A Study of Things" {
		t.Errorf("MetaByName(citation_title) = %q, %v", v, ok)
	}
	if got := MetasByName(metas, "citation_author"); len(got) != 2 || got[0] != "Doe, Jane" {
		t.Errorf("MetasByName(citation_author) = %v", got)
	}
	if v, ok := MetaByProperty(metas, "og:title"); !ok || v != "OG Title" {
		t.Errorf("MetaByProperty(og:title) = %q, %v (single-quoted attr)", v, ok)
	}
	if v, ok := MetaByHTTPEquiv(metas, "Content-Language"); !ok || v != "en" {
		t.Errorf("MetaByHTTPEquiv(content-language) = %q, %v", v, ok)
	}
	// Whitespace-only content does not satisfy a lookup.
	if _, ok := MetaByName(metas, "empty"); ok {
		t.Error("MetaByName(empty) matched blank content")
	}
}

func TestMetaByNameFold(t *testing.T) {
	metas := Metas(`<meta name="citation_ISSN" content="1234-5678">`)
	if _, ok := MetaByName(metas, "citation_issn"); ok {
		t.Error("exact lookup matched different case")
	}
	if v, ok := MetaByNameFold(metas, "citation_issn"); !ok || v != "1234-5678" {
		t.Errorf("MetaByNameFold = %q, %v", v, ok)
	}
}

func TestLinks(t *testing.T) {
	links := Links(sampleDoc)
	if len(links) != 2 {
		t.Fatalf("Links() returned %d tags, want 2", len(links))
	}
	if links[0].Rel != "canonical" || links[0].Href != "https://example.org/papers/study" {
		t.Errorf("links[0] = %+v", links[0])
	}
}

func TestTitle(t *testing.T) {
	got, ok := Title(sampleDoc)
	if !ok || got != "A Study of Things" {
		t.Errorf("Title() = %q, %v, want normalized text", got, ok)
	}
	if _, ok := Title("<p>no title</p>"); ok {
		t.Error("Title() matched a document without <title>")
	}
}

func TestDocumentAttributes(t *testing.T) {
	if v, ok := Lang(sampleDoc); !ok || v != "en-US" {
		t.Errorf("Lang() = %q, %v", v, ok)
	}
	if v, ok := TimeDatetime(sampleDoc); !ok || v != "2024-03-05T10:00:00Z" {
		t.Errorf("TimeDatetime() = %q, %v", v, ok)
	}
	if v, ok := BaseHref(sampleDoc); !ok || v != "https://example.org/papers/" {
		t.Errorf("BaseHref() = %q, %v", v, ok)
	}
	if _, ok := BaseHref(`<base href="">`); ok {
		t.Error("BaseHref() matched empty href")
	}
}

func TestJSONLD(t *testing.T) {
	nodes := JSONLD(sampleDoc)
	// Comment-wrapped object, plus two objects from the flattened array.
	// The invalid block is skipped.
	if len(nodes) != 3 {
		t.Fatalf("JSONLD() returned %d nodes, want 3", len(nodes))
	}
	if nodes[0]["name"] != "LD Name" {
		t.Errorf("nodes[0] = %v", nodes[0])
	}
	if nodes[1]["headline"] != "First" {
		t.Errorf("nodes[1] = %v", nodes[1])
	}
}

func TestNormalizeSpace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  a  b  ", "a b"},
		{"a\n\tb", "a b"},
		{"single", "single"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeSpace(tt.in); got != tt.want {
			t.Errorf("NormalizeSpace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
