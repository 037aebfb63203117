// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import "strings"

// Accessors over the generic JSON-LD nodes htmlmeta decodes. Each scans the
// nodes in document order and returns the first usable value.

func ldString(nodes []map[string]any, key string) (string, bool) {
	for _, obj := range nodes {
		if s, ok := obj[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// ldTypes collects every @type declaration, flattening arrays.
func ldTypes(nodes []map[string]any) []string {
	var out []string
	for _, obj := range nodes {
		switch t := obj["@type"].(type) {
		case string:
			out = append(out, t)
		case []any:
			for _, v := range t {
				if s, ok := v.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// ldName returns name, then headline.
func ldName(nodes []map[string]any) (string, bool) {
	for _, obj := range nodes {
		if s, ok := obj["name"].(string); ok && s != "" {
			return s, true
		}
		if s, ok := obj["headline"].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// ldHeadline returns headline, then name. The generic webpage resolver
// prefers headline; the USENIX resolver prefers name.
func ldHeadline(nodes []map[string]any) (string, bool) {
	for _, obj := range nodes {
		if s, ok := obj["headline"].(string); ok && s != "" {
			return s, true
		}
		if s, ok := obj["name"].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// ldAuthors reads the author value: a single string is split into names,
// an array contributes string items and object names.
func ldAuthors(nodes []map[string]any) []string {
	for _, obj := range nodes {
		a, present := obj["author"]
		if !present {
			continue
		}
		switch v := a.(type) {
		case string:
			if v != "" {
				return splitCreators(v)
			}
		case []any:
			var out []string
			for _, item := range v {
				switch it := item.(type) {
				case string:
					out = append(out, it)
				case map[string]any:
					if n, ok := it["name"].(string); ok && n != "" {
						out = append(out, n)
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// ldIsPartOfName returns isPartOf.name (the containing proceedings).
func ldIsPartOfName(nodes []map[string]any) (string, bool) {
	for _, obj := range nodes {
		part, ok := obj["isPartOf"].(map[string]any)
		if !ok {
			continue
		}
		if s, ok := part["name"].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// ldKeywords returns keywords as a single string, joining arrays.
func ldKeywords(nodes []map[string]any) (string, bool) {
	for _, obj := range nodes {
		k, present := obj["keywords"]
		if !present {
			continue
		}
		switch v := k.(type) {
		case string:
			if v != "" {
				return v, true
			}
		case []any:
			var parts []string
			for _, item := range v {
				if s, ok := item.(string); ok {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", "), true
			}
		}
	}
	return "", false
}
