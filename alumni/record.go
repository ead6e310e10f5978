// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

// Package alumni holds the alumni profile model, the privacy tiers that govern
// which location fields a viewer may see, and the DuckDB backed profile store.
package alumni

import (
	"time"

	"github.com/jcodagnone/alumap/spatial"
)

// Record is a registered alumnus together with their profile. Empty strings
// stand for unknown values; a nil Point means the location is unknown.
type Record struct {
	ID               int64  `json:"id"`
	AlumniIdentityID string `json:"alumni_identity_id,omitempty"`
	Name             string `json:"name"`
	GraduationYear   *int   `json:"graduation_year,omitempty"`

	School  string `json:"school,omitempty"`
	College string `json:"college,omitempty"`
	Major   string `json:"major,omitempty"`
	Degree  string `json:"degree,omitempty"`

	Company         string `json:"company,omitempty"`
	JobTitle        string `json:"job_title,omitempty"`
	Industry        string `json:"industry,omitempty"`
	IndustrySegment string `json:"industry_segment,omitempty"`
	IsStartup       bool   `json:"is_startup"`
	FundingStage    string `json:"funding_stage,omitempty"`
	BusinessDomain  string `json:"business_domain,omitempty"`

	Country   string         `json:"country,omitempty"`
	City      string         `json:"city,omitempty"`
	District  string         `json:"district,omitempty"`
	Address   string         `json:"address,omitempty"`
	AddressEN string         `json:"address_en,omitempty"`
	Point     *spatial.Point `json:"point,omitempty"`

	OfficeAddress string         `json:"office_address,omitempty"`
	OfficePoint   *spatial.Point `json:"office_point,omitempty"`

	PrivacyLevel PrivacyTier `json:"privacy_level,omitempty"`

	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	WeChat       string `json:"wechat,omitempty"`
	QQ           string `json:"qq,omitempty"`

	Skills    []string `json:"skills,omitempty"`
	Resources []string `json:"resources,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdate describes a partial profile change. Nil fields are left
// untouched.
type ProfileUpdate struct {
	Name           *string `json:"name,omitempty"`
	GraduationYear *int    `json:"graduation_year,omitempty"`

	School          *string      `json:"school,omitempty"`
	College         *string      `json:"college,omitempty"`
	Major           *string      `json:"major,omitempty"`
	Degree          *string      `json:"degree,omitempty"`
	City            *string      `json:"city,omitempty"`
	District        *string      `json:"district,omitempty"`
	Address         *string      `json:"address,omitempty"`
	AddressEN       *string      `json:"address_en,omitempty"`
	Country         *string      `json:"country,omitempty"`
	Lat             *float64     `json:"lat,omitempty"`
	Lng             *float64     `json:"lng,omitempty"`
	OfficeAddress   *string      `json:"office_address,omitempty"`
	OfficeLat       *float64     `json:"office_lat,omitempty"`
	OfficeLng       *float64     `json:"office_lng,omitempty"`
	PrivacyLevel    *PrivacyTier `json:"privacy_level,omitempty"`
	JobTitle        *string      `json:"job_title,omitempty"`
	Company         *string      `json:"company,omitempty"`
	Industry        *string      `json:"industry,omitempty"`
	IndustrySegment *string      `json:"industry_segment,omitempty"`
	IsStartup       *bool        `json:"is_startup,omitempty"`
	BusinessDomain  *string      `json:"business_domain,omitempty"`
	FundingStage    *string      `json:"funding_stage,omitempty"`
	ContactName     *string      `json:"contact_name,omitempty"`
	ContactPhone    *string      `json:"contact_phone,omitempty"`
	ContactEmail    *string      `json:"contact_email,omitempty"`
	WeChat          *string      `json:"wechat,omitempty"`
	QQ              *string      `json:"qq,omitempty"`
	Skills          *[]string    `json:"skills,omitempty"`
	Resources       *[]string    `json:"resources,omitempty"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Apply copies every present field of u into r. A coordinate pair is only
// replaced when both halves are present.
func (u *ProfileUpdate) Apply(r *Record) {
	setString(&r.Name, u.Name)

	if u.GraduationYear != nil {
		year := *u.GraduationYear
		r.GraduationYear = &year
	}

	setString(&r.School, u.School)
	setString(&r.College, u.College)
	setString(&r.Major, u.Major)
	setString(&r.Degree, u.Degree)
	setString(&r.City, u.City)
	setString(&r.District, u.District)
	setString(&r.Address, u.Address)
	setString(&r.AddressEN, u.AddressEN)
	setString(&r.Country, u.Country)
	setString(&r.OfficeAddress, u.OfficeAddress)
	setString(&r.JobTitle, u.JobTitle)
	setString(&r.Company, u.Company)
	setString(&r.Industry, u.Industry)
	setString(&r.IndustrySegment, u.IndustrySegment)
	setString(&r.BusinessDomain, u.BusinessDomain)
	setString(&r.FundingStage, u.FundingStage)
	setString(&r.ContactName, u.ContactName)
	setString(&r.ContactPhone, u.ContactPhone)
	setString(&r.ContactEmail, u.ContactEmail)
	setString(&r.WeChat, u.WeChat)
	setString(&r.QQ, u.QQ)

	if p := spatial.NewPoint(u.Lat, u.Lng); p != nil {
		r.Point = p
	}

	if p := spatial.NewPoint(u.OfficeLat, u.OfficeLng); p != nil {
		r.OfficePoint = p
	}

	if u.PrivacyLevel != nil {
		r.PrivacyLevel = *u.PrivacyLevel
	}

	if u.IsStartup != nil {
		r.IsStartup = *u.IsStartup
	}

	if u.Skills != nil {
		r.Skills = append([]string(nil), (*u.Skills)...)
	}

	if u.Resources != nil {
		r.Resources = append([]string(nil), (*u.Resources)...)
	}
}
