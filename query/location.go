// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"sort"
	"strings"

	"github.com/jcodagnone/alumap/alumni"
	"github.com/jcodagnone/alumap/utils/textutils"
)

const (
	rankCity = iota + 1
	rankDistrict
	rankAddress
	rankOther
)

type foldedLocation struct {
	city, district, address, country string
}

func foldLocation(r *alumni.Record) foldedLocation {
	return foldedLocation{
		city:     textutils.Fold(r.City),
		district: textutils.Fold(r.District),
		address:  textutils.Fold(r.Address),
		country:  textutils.Fold(r.Country),
	}
}

func (l foldedLocation) contains(token string) bool {
	return strings.Contains(l.city, token) ||
		strings.Contains(l.district, token) ||
		strings.Contains(l.address, token) ||
		strings.Contains(l.country, token)
}

func (l foldedLocation) rank(token string) int {
	switch {
	case strings.Contains(l.city, token):
		return rankCity
	case strings.Contains(l.district, token):
		return rankDistrict
	case strings.Contains(l.address, token):
		return rankAddress
	default:
		return rankOther
	}
}

// MatchByLocation returns the records matching every whitespace separated
// token of phrase. A token matches when it is a case-insensitive substring of
// the city, district, address or country. Matches are ordered by where the
// first token hit: city, then district, then address, then anything else.
// Records with the same rank keep their input order. An empty phrase matches
// nothing.
func MatchByLocation(all []*alumni.Record, phrase string) []*alumni.Record {
	tokens := textutils.Tokenize(phrase)
	if len(tokens) == 0 {
		return []*alumni.Record{}
	}

	type ranked struct {
		record *alumni.Record
		rank   int
	}

	var matches []ranked

	for _, r := range all {
		loc := foldLocation(r)

		ok := true
		for _, token := range tokens {
			if !loc.contains(token) {
				ok = false

				break
			}
		}

		if ok {
			matches = append(matches, ranked{record: r, rank: loc.rank(tokens[0])})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].rank < matches[j].rank
	})

	out := make([]*alumni.Record, len(matches))
	for i, m := range matches {
		out[i] = m.record
	}

	return out
}
