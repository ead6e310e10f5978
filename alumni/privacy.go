// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package alumni

import (
	"fmt"

	"github.com/jcodagnone/alumap/spatial"
)

// PrivacyTier governs which location fields of a profile are visible to
// viewers other than its owner.
type PrivacyTier string

const (
	TierHidden   PrivacyTier = "hidden"
	TierFriends  PrivacyTier = "friends"
	TierCity     PrivacyTier = "city"
	TierDistrict PrivacyTier = "district"
	TierAddress  PrivacyTier = "address"

	// DefaultTier applies to profiles that never chose a tier.
	DefaultTier = TierDistrict
)

// Tiers lists the tiers a user can choose from.
var Tiers = []PrivacyTier{TierCity, TierDistrict, TierAddress, TierFriends, TierHidden}

// ParsePrivacyTier validates a user supplied tier.
func ParsePrivacyTier(s string) (PrivacyTier, error) {
	for _, t := range Tiers {
		if string(t) == s {
			return t, nil
		}
	}

	return "", &ValidationError{Field: "privacy_level", Message: fmt.Sprintf("unknown privacy level %q", s)}
}

// Effective resolves an unset tier to DefaultTier. Any other value is
// returned as is, including values outside Tiers.
func (t PrivacyTier) Effective() PrivacyTier {
	if t == "" {
		return DefaultTier
	}

	return t
}

// Listable reports whether profiles in this tier may appear in public
// listings at all.
func (t PrivacyTier) Listable() bool {
	switch t.Effective() {
	case TierHidden, TierFriends:
		return false
	default:
		return true
	}
}

// LocationView is the subset of location fields visible to a non-owner.
type LocationView struct {
	City     string
	District string
	Address  string
	Point    *spatial.Point
}

// Mask returns the location fields of r that its privacy tier allows an
// external viewer to see. Tiers outside Tiers expose everything.
func Mask(r *Record) LocationView {
	switch r.PrivacyLevel.Effective() {
	case TierHidden, TierFriends:
		return LocationView{}
	case TierCity:
		return LocationView{City: r.City}
	case TierDistrict:
		return LocationView{City: r.City, District: r.District}
	default:
		view := LocationView{City: r.City, District: r.District, Address: r.Address}
		if r.Point != nil {
			p := *r.Point
			view.Point = &p
		}

		return view
	}
}

// MaskRecord returns a copy of r whose location fields were replaced by Mask.
// The input is left untouched.
func MaskRecord(r *Record) *Record {
	view := Mask(r)
	masked := *r
	masked.City = view.City
	masked.District = view.District
	masked.Address = view.Address
	masked.Point = view.Point

	return &masked
}
