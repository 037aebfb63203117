// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package biblatex builds and serializes BibLaTeX records.
//
// Records are held as ordered field lists so that serialization is
// deterministic: fields appear in the order the resolver added them. The
// package also contains a small parser, used both for the doi.org registrar
// responses (which arrive as BibTeX text) and for the parse-back check the
// pipeline runs on every record it emits.
package biblatex

import (
	"fmt"
	"strings"
)

// EntryType is the BibLaTeX entry type (@article, @online, ...).
type EntryType string

const (
	TypeArticle       EntryType = "article"
	TypeInProceedings EntryType = "inproceedings"
	TypeInCollection  EntryType = "incollection"
	TypeThesis        EntryType = "thesis"
	TypeReport        EntryType = "report"
	TypeOnline        EntryType = "online"
)

// Field is a single name/value pair. Values are stored unescaped; Serialize
// applies brace escaping on the way out.
type Field struct {
	Name  string
	Value string
}

// Entry is one bibliographic record.
type Entry struct {
	Type   EntryType
	Key    string
	Fields []Field
}

// Add appends a field. Empty values are dropped so precedence chains can
// call Add unconditionally with whatever they found.
func (e *Entry) Add(name, value string) {
	if value == "" {
		return
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
}

// Get returns the first field with the given name.
func (e *Entry) Get(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// escapeValue protects braces so field values cannot unbalance the record.
func escapeValue(v string) string {
	v = strings.ReplaceAll(v, "{", `\{`)
	return strings.ReplaceAll(v, "}", `\}`)
}

// Serialize renders the entry as BibLaTeX text:
//
//	@type{key,
//	    name = {value},
//	}
//
// One field per line, four-space indent, trailing comma on every field line.
func (e *Entry) Serialize() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", e.Type, e.Key)
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "    %s = {%s},\n", f.Name, escapeValue(f.Value))
	}
	b.WriteString("}\n")
	return b.String()
}
