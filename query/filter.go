// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

// Package query implements the privacy-aware listing and aggregation engine:
// structured and fuzzy filtering, radius search, location-phrase ranking and
// greedy category clustering over profile snapshots.
package query

import (
	"fmt"

	"github.com/jcodagnone/alumap/alumni"
	"github.com/jcodagnone/alumap/spatial"
)

const (
	// DefaultNearbyRadiusKm applies to nearby searches without a radius.
	DefaultNearbyRadiusKm = 5.0

	// DefaultGroupRadiusKm applies to grouped queries without a radius.
	DefaultGroupRadiusKm = 100.0

	// UnknownCategory labels profiles with no value for the grouping key.
	UnknownCategory = "未知"
)

// Radius restricts a listing to profiles within RadiusKm of Center.
type Radius struct {
	Center   spatial.Point
	RadiusKm float64
}

// Filter is an immutable listing query. Zero values mean the corresponding
// criterion is not applied.
type Filter struct {
	alumni.Predicates

	// Keyword is matched against name, industry, company, industry segment and
	// job title.
	Keyword string

	// Location is a whitespace separated phrase matched against the location
	// fields. See MatchByLocation.
	Location string

	Near *Radius

	GroupBy       CategoryKey
	GroupRadiusKm float64
}

// CategoryKey selects the profile field clusters are grouped by.
type CategoryKey string

const (
	CategoryIndustry        CategoryKey = "industry"
	CategoryIndustrySegment CategoryKey = "industry_segment"
	CategoryBusinessDomain  CategoryKey = "business_domain"
	CategoryFundingStage    CategoryKey = "funding_stage"
	CategoryCity            CategoryKey = "city"
	CategoryCountry         CategoryKey = "country"
)

// CategoryKeys lists the supported grouping keys.
var CategoryKeys = []CategoryKey{
	CategoryIndustry, CategoryIndustrySegment, CategoryBusinessDomain,
	CategoryFundingStage, CategoryCity, CategoryCountry,
}

// ParseCategoryKey validates a grouping key. The empty string selects
// CategoryIndustry.
func ParseCategoryKey(s string) (CategoryKey, error) {
	if s == "" {
		return CategoryIndustry, nil
	}

	for _, k := range CategoryKeys {
		if string(k) == s {
			return k, nil
		}
	}

	return "", fmt.Errorf("unknown group key %q", s)
}

// Of returns the category label of row, or UnknownCategory.
func (k CategoryKey) Of(row *PublicRecord) string {
	var v string

	switch k {
	case CategoryIndustrySegment:
		v = row.IndustrySegment
	case CategoryBusinessDomain:
		v = row.BusinessDomain
	case CategoryFundingStage:
		v = row.FundingStage
	case CategoryCity:
		if row.City != nil {
			v = *row.City
		}
	case CategoryCountry:
		v = row.Country
	default:
		v = row.Industry
	}

	if v == "" {
		return UnknownCategory
	}

	return v
}

func (f *Filter) groupRadiusKm() float64 {
	if f.GroupRadiusKm <= 0 {
		return DefaultGroupRadiusKm
	}

	return f.GroupRadiusKm
}
