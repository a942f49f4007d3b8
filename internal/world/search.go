// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package world

import "strings"

// PrefixQuery converts free text into a tsquery where every token is a
// prefix match and tokens are ANDed: "drag peak" becomes "drag:* & peak:*".
// Returns "" when the input holds no usable tokens.
func PrefixQuery(query string) string {
	words := strings.Fields(query)
	parts := make([]string, 0, len(words))
	for _, word := range words {
		escaped := escapeTsQueryWord(word)
		if escaped != "" {
			parts = append(parts, escaped+":*")
		}
	}
	return strings.Join(parts, " & ")
}

// escapeTsQueryWord drops characters with special meaning in tsquery
// syntax.
func escapeTsQueryWord(word string) string {
	var b strings.Builder
	for _, r := range word {
		switch r {
		case '&', '|', '!', '(', ')', ':', '\'', '\\', '*', '<', '>':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
