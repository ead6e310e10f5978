// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package alumni

import (
	"strconv"

	"github.com/jcodagnone/alumap/utils/textutils"
)

// Predicates are the structured equality filters of a listing query. An
// empty string or a nil pointer means the predicate is not enforced.
type Predicates struct {
	School          string `json:"school,omitempty"`
	College         string `json:"college,omitempty"`
	Major           string `json:"major,omitempty"`
	GraduationYear  *int   `json:"graduation_year,omitempty"`
	Degree          string `json:"degree,omitempty"`
	Industry        string `json:"industry,omitempty"`
	IndustrySegment string `json:"industry_segment,omitempty"`
	IsStartup       *bool  `json:"is_startup,omitempty"`
	FundingStage    string `json:"funding_stage,omitempty"`
	BusinessDomain  string `json:"business_domain,omitempty"`
	City            string `json:"city,omitempty"`
	District        string `json:"district,omitempty"`
	Country         string `json:"country,omitempty"`
}

// stringPredicate pairs a predicate value with the record field it constrains.
type stringPredicate struct {
	column string
	want   string
	field  func(*Record) string
}

func (p *Predicates) strings() []stringPredicate {
	return []stringPredicate{
		{"school", p.School, func(r *Record) string { return r.School }},
		{"college", p.College, func(r *Record) string { return r.College }},
		{"major", p.Major, func(r *Record) string { return r.Major }},
		{"degree", p.Degree, func(r *Record) string { return r.Degree }},
		{"industry", p.Industry, func(r *Record) string { return r.Industry }},
		{"industry_segment", p.IndustrySegment, func(r *Record) string { return r.IndustrySegment }},
		{"funding_stage", p.FundingStage, func(r *Record) string { return r.FundingStage }},
		{"business_domain", p.BusinessDomain, func(r *Record) string { return r.BusinessDomain }},
		{"city", p.City, func(r *Record) string { return r.City }},
		{"district", p.District, func(r *Record) string { return r.District }},
		{"country", p.Country, func(r *Record) string { return r.Country }},
	}
}

// IsEmpty reports whether no predicate is set.
func (p *Predicates) IsEmpty() bool {
	for _, sp := range p.strings() {
		if sp.want != "" {
			return false
		}
	}

	return p.GraduationYear == nil && p.IsStartup == nil
}

// Match reports whether r satisfies every present predicate by exact equality.
func (p *Predicates) Match(r *Record) bool {
	for _, sp := range p.strings() {
		if sp.want != "" && sp.field(r) != sp.want {
			return false
		}
	}

	if p.GraduationYear != nil && (r.GraduationYear == nil || *r.GraduationYear != *p.GraduationYear) {
		return false
	}

	if p.IsStartup != nil && r.IsStartup != *p.IsStartup {
		return false
	}

	return true
}

// MatchFold reports whether every present predicate is a case-insensitive
// substring of the corresponding field. The graduation year is compared on its
// decimal representation; is_startup stays an equality.
func (p *Predicates) MatchFold(r *Record) bool {
	for _, sp := range p.strings() {
		if sp.want != "" && !textutils.ContainsFold(sp.field(r), sp.want) {
			return false
		}
	}

	if p.GraduationYear != nil {
		if r.GraduationYear == nil {
			return false
		}

		if !textutils.ContainsFold(strconv.Itoa(*r.GraduationYear), strconv.Itoa(*p.GraduationYear)) {
			return false
		}
	}

	if p.IsStartup != nil && r.IsStartup != *p.IsStartup {
		return false
	}

	return true
}
