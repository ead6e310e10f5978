// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"sort"

	"github.com/jcodagnone/alumap/alumni"
	"github.com/jcodagnone/alumap/spatial"
	"github.com/jcodagnone/alumap/utils/textutils"
)

// matchKeyword reports whether keyword is a case-insensitive substring of any
// of the career fields of r.
func matchKeyword(r *alumni.Record, keyword string) bool {
	for _, field := range []string{r.Name, r.Industry, r.Company, r.IndustrySegment, r.JobTitle} {
		if textutils.ContainsFold(field, keyword) {
			return true
		}
	}

	return false
}

// usesLocation reports whether f is answered by the location phrase path. A
// radius takes precedence over the phrase.
func (f *Filter) usesLocation() bool {
	return f.Near == nil && f.Location != ""
}

// FilterRecords applies f to all and returns the surviving profiles, masked.
// Hidden and friends-only profiles are never returned. With a radius the
// result is sorted by ascending distance; with a location phrase it is ranked
// by MatchByLocation; otherwise the input order is kept.
func FilterRecords(all []*alumni.Record, f Filter) []PublicRecord {
	location := f.usesLocation()

	kept := make([]*alumni.Record, 0, len(all))

	for _, r := range all {
		if !r.PrivacyLevel.Listable() {
			continue
		}

		if location {
			if !f.Predicates.MatchFold(r) {
				continue
			}
		} else {
			if !f.Predicates.Match(r) {
				continue
			}

			if f.Keyword != "" && !matchKeyword(r, f.Keyword) {
				continue
			}
		}

		kept = append(kept, r)
	}

	switch {
	case f.Near != nil:
		return presentAll(withinRadius(kept, f.Near))
	case location:
		return presentAll(annotate(MatchByLocation(kept, f.Location), nil))
	default:
		return presentAll(annotate(kept, nil))
	}
}

// annotate pairs every record with its distance to center. A nil center
// leaves every distance nil.
func annotate(records []*alumni.Record, center *spatial.Point) []Annotated {
	out := make([]Annotated, len(records))

	for i, r := range records {
		out[i] = Annotated{Record: r}

		if center == nil {
			continue
		}

		if d, ok := spatial.DistanceKm(center, r.Point); ok {
			out[i].DistanceKm = &d
		}
	}

	return out
}

// withinRadius keeps the records with a known location no farther than
// near.RadiusKm, closest first.
func withinRadius(records []*alumni.Record, near *Radius) []Annotated {
	center := near.Center
	all := annotate(records, &center)

	out := all[:0]
	for _, a := range all {
		if a.DistanceKm != nil && *a.DistanceKm <= near.RadiusKm {
			out = append(out, a)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DistanceKm < *out[j].DistanceKm
	})

	return out
}

func presentAll(annotated []Annotated) []PublicRecord {
	rows := make([]PublicRecord, len(annotated))
	for i, a := range annotated {
		rows[i] = present(a.Record, a.DistanceKm)
	}

	return rows
}
