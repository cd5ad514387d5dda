// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package ingest

import (
	"regexp"
	"strings"
)

// nameField matches a 'name' entry whose value is quoted with either quote
// character. The dumps switch to double quotes for names containing an
// apostrophe.
var nameField = regexp.MustCompile(`['"]name['"]\s*:\s*(?:'((?:[^'\\]|\\.)*)'|"((?:[^"\\]|\\.)*)")`)

var literalEscapes = strings.NewReplacer(`\'`, `'`, `\"`, `"`, `\\`, `\`)

// ParseNames extracts the name values of a list-of-dicts literal, in order.
// Empty, missing or malformed values yield nil.
func ParseNames(literal string) []string {
	s := strings.TrimSpace(literal)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil
	}

	matches := nameField.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		v := m[1]
		if v == "" {
			v = m[2]
		}
		v = strings.TrimSpace(literalEscapes.Replace(v))
		if v != "" {
			names = append(names, v)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}
