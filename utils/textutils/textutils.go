// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils provides the text normalization helpers shared by the
// matchers and the CLI.
package textutils

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the Unicode case folded form of s. A new Caser is created on
// every call since casers are stateful.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// Tokenize splits s on whitespace and case folds each token. Empty input
// yields no tokens.
func Tokenize(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}

	tokens := make([]string, len(fields))
	for i, f := range fields {
		tokens[i] = Fold(f)
	}

	return tokens
}

// AnyToStringSlice converts an interface{} to []string safely.
func AnyToStringSlice(v any) ([]string, bool) {
	if v == nil {
		return nil, true
	}

	if i, ok := v.([]string); ok {
		return i, true
	}

	if i, ok := v.([]any); ok {
		s := make([]string, len(i))

		for j, e := range i {
			val, ok := e.(string)
			if !ok {
				return nil, false
			}

			s[j] = val
		}

		return s, true
	}

	return nil, false
}

// FormatInt formats n with thousands separators, e.g. 1234567 as "1,234,567".
func FormatInt(n int64) string {
	digits := strconv.FormatInt(n, 10)

	var sb strings.Builder
	if n < 0 {
		sb.WriteByte('-')
		digits = digits[1:]
	}

	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}

		sb.WriteRune(c)
	}

	return sb.String()
}
