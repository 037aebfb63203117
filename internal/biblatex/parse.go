// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblatex

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrNoEntries is returned when the input contains no @entry at all.
var ErrNoEntries = errors.New("no biblatex entries found")

// Parse tokenizes every entry in the input. Text outside entries is ignored,
// so registrar responses with leading whitespace or banners parse cleanly.
func Parse(input string) ([]Entry, error) {
	p := &parser{src: input}
	var entries []Entry
	for {
		if !p.seekEntry() {
			break
		}
		e, err := p.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return entries, nil
}

// ParseFirst returns the first entry in the input.
func ParseFirst(input string) (*Entry, error) {
	entries, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

type parser struct {
	src string
	pos int
}

// seekEntry advances to the next '@' and consumes it.
func (p *parser) seekEntry() bool {
	i := strings.IndexByte(p.src[p.pos:], '@')
	if i < 0 {
		p.pos = len(p.src)
		return false
	}
	p.pos += i + 1
	return true
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) ident(stop string) string {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(stop, rune(p.src[p.pos])) {
		p.pos++
	}
	return strings.TrimSpace(p.src[start:p.pos])
}

// entry parses one record, with the leading '@' already consumed.
func (p *parser) entry() (Entry, error) {
	typ := p.ident("{(")
	if p.pos >= len(p.src) {
		return Entry{}, fmt.Errorf("entry %q: missing opening brace", typ)
	}
	open := p.src[p.pos]
	p.pos++
	closer := byte('}')
	if open == '(' {
		closer = ')'
	}

	key := p.ident(",")
	if p.pos >= len(p.src) {
		return Entry{}, fmt.Errorf("entry %q: unterminated key", typ)
	}
	p.pos++ // consume ','

	e := Entry{Type: EntryType(strings.ToLower(typ)), Key: key}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Entry{}, fmt.Errorf("entry %q: unterminated entry", key)
		}
		if p.src[p.pos] == closer {
			p.pos++
			return e, nil
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		name := p.ident("=")
		if p.pos >= len(p.src) {
			return Entry{}, fmt.Errorf("entry %q: field %q has no value", key, name)
		}
		p.pos++ // consume '='
		p.skipSpace()
		value, err := p.value(closer)
		if err != nil {
			return Entry{}, fmt.Errorf("entry %q: field %q: %w", key, name, err)
		}
		e.Fields = append(e.Fields, Field{Name: strings.ToLower(name), Value: value})
	}
}

// value reads one field value: brace-delimited (nesting and \{ \} escapes
// honored), double-quoted, or a bare token ending at ',' or the entry closer.
func (p *parser) value(closer byte) (string, error) {
	if p.pos >= len(p.src) {
		return "", errors.New("missing value")
	}
	switch p.src[p.pos] {
	case '{':
		return p.bracedValue()
	case '"':
		return p.quotedValue()
	default:
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != ',' && p.src[p.pos] != closer {
			p.pos++
		}
		return strings.TrimSpace(p.src[start:p.pos]), nil
	}
}

func (p *parser) bracedValue() (string, error) {
	p.pos++ // consume '{'
	var b strings.Builder
	depth := 1
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src) && (p.src[p.pos+1] == '{' || p.src[p.pos+1] == '}'):
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
			continue
		case c == '{':
			depth++
			b.WriteByte(c)
		case c == '}':
			depth--
			if depth == 0 {
				p.pos++
				return b.String(), nil
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
		p.pos++
	}
	return "", errors.New("unbalanced braces")
}

func (p *parser) quotedValue() (string, error) {
	p.pos++ // consume '"'
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\\' && p.pos+1 < len(p.src) {
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
			continue
		}
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", errors.New("unterminated quoted value")
}
