// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package alumni

import (
	"strings"

	"github.com/jcodagnone/alumap/spatial"
)

const (
	maxNameLen    = 200
	maxAddressLen = 500
)

// validateRecord checks that r holds data the store may persist.
func validateRecord(r *Record) error {
	if r == nil {
		return &ValidationError{Field: "record", Message: "must not be nil"}
	}

	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}

	if len(r.Name) > maxNameLen {
		return &ValidationError{Field: "name", Message: "too long"}
	}

	if len(r.Address) > maxAddressLen {
		return &ValidationError{Field: "address", Message: "too long"}
	}

	if r.PrivacyLevel != "" {
		if _, err := ParsePrivacyTier(string(r.PrivacyLevel)); err != nil {
			return err
		}
	}

	if r.Point != nil {
		if err := spatial.ValidateCoordinates(r.Point.Lat, r.Point.Lng); err != nil {
			return &ValidationError{Field: "point", Message: "invalid coordinates", Err: err}
		}
	}

	if r.OfficePoint != nil {
		if err := spatial.ValidateCoordinates(r.OfficePoint.Lat, r.OfficePoint.Lng); err != nil {
			return &ValidationError{Field: "office_point", Message: "invalid coordinates", Err: err}
		}
	}

	return nil
}

// sanitizeRecord trims the free text fields of r in place.
func sanitizeRecord(r *Record) {
	for _, s := range []*string{
		&r.Name, &r.School, &r.College, &r.Major, &r.Degree,
		&r.Company, &r.JobTitle, &r.Industry, &r.IndustrySegment,
		&r.FundingStage, &r.BusinessDomain,
		&r.Country, &r.City, &r.District, &r.Address, &r.AddressEN, &r.OfficeAddress,
	} {
		*s = strings.TrimSpace(*s)
	}

	if r.PrivacyLevel == "" {
		r.PrivacyLevel = DefaultTier
	}
}
