// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"encoding/json"
	"math"

	"github.com/jcodagnone/alumap/alumni"
	"github.com/jcodagnone/alumap/spatial"
)

// Annotated is a profile together with its distance to a query point. The
// distance is nil when either location is unknown.
type Annotated struct {
	Record     *alumni.Record
	DistanceKm *float64
}

// PublicRecord is the shape of a profile as seen by anyone but its owner.
// Location fields hold only what the privacy tier allows.
type PublicRecord struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	College         string `json:"college,omitempty"`
	Major           string `json:"major,omitempty"`
	GraduationYear  *int   `json:"graduation_year"`
	Industry        string `json:"industry,omitempty"`
	IndustrySegment string `json:"industry_segment,omitempty"`
	Company         string `json:"company,omitempty"`
	JobTitle        string `json:"job_title,omitempty"`
	FundingStage    string `json:"funding_stage,omitempty"`
	BusinessDomain  string `json:"business_domain,omitempty"`
	IsStartup       bool   `json:"is_startup"`

	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	WeChat       string `json:"wechat,omitempty"`
	QQ           string `json:"qq,omitempty"`

	Country   string   `json:"country,omitempty"`
	City      *string  `json:"city"`
	District  *string  `json:"district"`
	Address   *string  `json:"address"`
	AddressEN string   `json:"address_en,omitempty"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`

	OfficeAddress string   `json:"office_address,omitempty"`
	OfficeLat     *float64 `json:"office_lat"`
	OfficeLng     *float64 `json:"office_lng"`

	DistanceKm *float64 `json:"distance_km"`
}

// Detail is the public detail view of a single profile.
type Detail struct {
	PublicRecord

	AlumniIdentityID string   `json:"alumni_identity_id,omitempty"`
	School           string   `json:"school,omitempty"`
	Degree           string   `json:"degree,omitempty"`
	Skills           []string `json:"skills"`
	Resources        []string `json:"resources"`
}

// OwnerView is the unmasked profile as seen by its owner.
type OwnerView struct {
	*alumni.Record
}

// ownerJSON flattens the coordinates to lat/lng, the shape profile updates
// are written in. Point and OfficePoint stay nil so the nested record forms
// are shadowed and left out.
type ownerJSON struct {
	*alumni.Record

	Point       *spatial.Point `json:"point,omitempty"`
	OfficePoint *spatial.Point `json:"office_point,omitempty"`

	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	OfficeLat *float64 `json:"office_lat"`
	OfficeLng *float64 `json:"office_lng"`
}

func (v OwnerView) MarshalJSON() ([]byte, error) {
	out := ownerJSON{Record: v.Record}
	if v.Record != nil {
		out.Lat, out.Lng = coordinates(v.Record.Point)
		out.OfficeLat, out.OfficeLng = coordinates(v.Record.OfficePoint)
	}

	return json.Marshal(out)
}

// ClusterSummary is a virtual map point standing for every profile of a
// cluster. It carries no member identity.
type ClusterSummary struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	GroupBy      CategoryKey `json:"group_by"`
	Category     string      `json:"category"`
	Industry     string      `json:"industry,omitempty"`
	Lat          float64     `json:"lat"`
	Lng          float64     `json:"lng"`
	VirtualCount int         `json:"virtual_count"`
}

// OverseasGroups maps country to city to the profiles located there.
type OverseasGroups map[string]map[string][]PublicRecord

func optionalString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// coordinates splits p into nullable lat/lng copies.
func coordinates(p *spatial.Point) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}

	lat, lng := p.Lat, p.Lng

	return &lat, &lng
}

func roundKm(d float64) float64 {
	return math.Round(d*1000) / 1000
}

// present masks r and shapes it for a non-owner viewer.
func present(r *alumni.Record, distanceKm *float64) PublicRecord {
	view := alumni.Mask(r)

	row := PublicRecord{
		ID:              r.ID,
		Name:            r.Name,
		College:         r.College,
		Major:           r.Major,
		GraduationYear:  r.GraduationYear,
		Industry:        r.Industry,
		IndustrySegment: r.IndustrySegment,
		Company:         r.Company,
		JobTitle:        r.JobTitle,
		FundingStage:    r.FundingStage,
		BusinessDomain:  r.BusinessDomain,
		IsStartup:       r.IsStartup,
		ContactName:     r.ContactName,
		ContactPhone:    r.ContactPhone,
		ContactEmail:    r.ContactEmail,
		WeChat:          r.WeChat,
		QQ:              r.QQ,
		Country:         r.Country,
		City:            optionalString(view.City),
		District:        optionalString(view.District),
		Address:         optionalString(view.Address),
		AddressEN:       r.AddressEN,
		OfficeAddress:   r.OfficeAddress,
	}

	row.Lat, row.Lng = coordinates(view.Point)
	row.OfficeLat, row.OfficeLng = coordinates(r.OfficePoint)

	if distanceKm != nil {
		d := roundKm(*distanceKm)
		if view.Point == nil {
			// coordinates are masked: whole km only
			d = math.Round(*distanceKm)
		}

		row.DistanceKm = &d
	}

	return row
}

func presentDetail(r *alumni.Record) *Detail {
	d := &Detail{
		PublicRecord:     present(r, nil),
		AlumniIdentityID: r.AlumniIdentityID,
		School:           r.School,
		Degree:           r.Degree,
		Skills:           append([]string{}, r.Skills...),
		Resources:        append([]string{}, r.Resources...),
	}

	return d
}

// point returns the visible coordinates of row, or nil.
func (row *PublicRecord) point() *spatial.Point {
	if row.Lat == nil || row.Lng == nil {
		return nil
	}

	return &spatial.Point{Lat: *row.Lat, Lng: *row.Lng}
}

func summarize(clusters []Cluster, key CategoryKey) []ClusterSummary {
	summaries := make([]ClusterSummary, len(clusters))

	for i, c := range clusters {
		summaries[i] = ClusterSummary{
			ID:           i + 1,
			Name:         c.Category + "圈层",
			GroupBy:      key,
			Category:     c.Category,
			Lat:          c.Centroid.Lat,
			Lng:          c.Centroid.Lng,
			VirtualCount: c.Count,
		}

		if key == CategoryIndustry {
			summaries[i].Industry = c.Category
		}
	}

	return summaries
}

func groupOverseas(rows []PublicRecord) OverseasGroups {
	groups := OverseasGroups{}

	for _, row := range rows {
		country := row.Country
		if country == "" {
			country = UnknownCategory
		}

		city := UnknownCategory
		if row.City != nil {
			city = *row.City
		}

		if groups[country] == nil {
			groups[country] = map[string][]PublicRecord{}
		}

		groups[country][city] = append(groups[country][city], row)
	}

	return groups
}
