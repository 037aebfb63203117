// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblatex

import (
	"errors"
	"testing"
)

// registrarSample is the shape doi.org returns for Accept: application/x-bibtex.
const registrarSample = `@article{Paskin_2010,
	title={Digital Object Identifier ({DOI}) System},
	author={Paskin, Norman},
	year={2010},
	journal={Encyclopedia of Library and Information Sciences},
	pages={1586--1592},
	DOI={10.1081/E-ELIS3-120044418}
}`

func TestParseRegistrarResponse(t *testing.T) {
	e, err := ParseFirst(registrarSample)
	if err != nil {
		t.Fatalf("ParseFirst() error = %v", err)
	}
	if e.Type != TypeArticle {
		t.Errorf("Type = %q, want article", e.Type)
	}
	if e.Key != "Paskin_2010" {
		t.Errorf("Key = %q", e.Key)
	}
	if v, _ := e.Get("title"); v != "Digital Object Identifier ({DOI}) System" {
		t.Errorf("title = %q", v)
	}
	// Field names are lowercased on parse.
	if v, _ := e.Get("doi"); v != "10.1081/E-ELIS3-120044418" {
		t.Errorf("doi = %q", v)
	}
}

func TestParseValueForms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
		want  string
	}{
		{"quoted value", `@misc{k, title = "Plain quoted"}`, "title", "Plain quoted"},
		{"bare numeric value", `@misc{k, year = 2024}`, "year", "2024"},
		{"nested braces preserved", `@misc{k, title = {A {B} C}}`, "title", "A {B} C"},
		{"escaped braces unescaped", `@misc{k, title = {esc \{x\} ok}}`, "title", "esc {x} ok"},
		{"junk before entry skipped", "fetched 1 record\n@misc{k, note = {n}}", "note", "n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseFirst(tt.input)
			if err != nil {
				t.Fatalf("ParseFirst(%q) error = %v", tt.input, err)
			}
			if v, _ := e.Get(tt.field); v != tt.want {
				t.Errorf("%s = %q, want %q", tt.field, v, tt.want)
			}
		})
	}
}

func TestParseMultipleEntries(t *testing.T) {
	input := `@article{a, title={First}} noise @online{b, title={Second}}`
	entries, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Parse() returned %d entries, want 2", len(entries))
	}
	if entries[0].Key != "a" || entries[1].Key != "b" {
		t.Errorf("keys = %q, %q", entries[0].Key, entries[1].Key)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"no entry marker", "just text"},
		{"unbalanced value braces", `@misc{k, title = {open`},
		{"unterminated entry", `@misc{k, title = {t},`},
		{"unterminated quote", `@misc{k, title = "open}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.input); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.input)
			}
		})
	}
	if _, err := Parse("no marker"); !errors.Is(err, ErrNoEntries) {
		t.Errorf("err = %v, want ErrNoEntries", err)
	}
}
