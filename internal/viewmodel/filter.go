package viewmodel

import "strings"

// Keywords splits a raw filter string on commas and whitespace, lower-cases
// the pieces and drops empties. An empty result means "match everything".
func Keywords(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			keywords = append(keywords, f)
		}
	}
	return keywords
}

// matchAny reports whether at least one keyword is a case-insensitive
// substring of at least one field. With no keywords every record matches.
func matchAny(fields []string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	for _, field := range fields {
		lower := strings.ToLower(field)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
