// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/alumap/alumni"
	"github.com/jcodagnone/alumap/query"
	"github.com/jcodagnone/alumap/spatial"
)

type predicatesQuery struct {
	School          string  `form:"school"`
	College         string  `form:"college"`
	Major           string  `form:"major"`
	GraduationYear  *int    `form:"graduation_year"`
	Degree          string  `form:"degree"`
	Industry        string  `form:"industry"`
	IndustrySegment string  `form:"industry_segment"`
	IsStartup       *string `form:"is_startup" binding:"omitempty,oneof=0 1"`
	FundingStage    string  `form:"funding_stage"`
	BusinessDomain  string  `form:"business_domain"`
	City            string  `form:"city"`
	District        string  `form:"district"`
	Country         string  `form:"country"`
}

func (q *predicatesQuery) predicates() alumni.Predicates {
	p := alumni.Predicates{
		School:          q.School,
		College:         q.College,
		Major:           q.Major,
		GraduationYear:  q.GraduationYear,
		Degree:          q.Degree,
		Industry:        q.Industry,
		IndustrySegment: q.IndustrySegment,
		FundingStage:    q.FundingStage,
		BusinessDomain:  q.BusinessDomain,
		City:            q.City,
		District:        q.District,
		Country:         q.Country,
	}

	if q.IsStartup != nil {
		startup := *q.IsStartup == "1"
		p.IsStartup = &startup
	}

	return p
}

type radiusQuery struct {
	Lat      *float64 `form:"lat" binding:"omitempty,gte=-90,lte=90"`
	Lng      *float64 `form:"lng" binding:"omitempty,gte=-180,lte=180"`
	RadiusKm *float64 `form:"radius_km" binding:"omitempty,gte=0"`
}

// near returns the radius restriction, or nil unless all three parameters
// are present.
func (q *radiusQuery) near() *query.Radius {
	if q.Lat == nil || q.Lng == nil || q.RadiusKm == nil {
		return nil
	}

	return &query.Radius{Center: spatial.Point{Lat: *q.Lat, Lng: *q.Lng}, RadiusKm: *q.RadiusKm}
}

type listQuery struct {
	predicatesQuery
	radiusQuery
	Keyword string `form:"keyword"`
}

type nearbyQuery struct {
	Lat      *float64 `form:"lat" binding:"required,gte=-90,lte=90"`
	Lng      *float64 `form:"lng" binding:"required,gte=-180,lte=180"`
	RadiusKm *float64 `form:"radius_km" binding:"omitempty,gte=0"`
}

type groupedQuery struct {
	predicatesQuery
	GroupRadiusKm float64 `form:"group_radius_km" binding:"omitempty,gte=0"`
	GroupBy       string  `form:"group_by"`
}

type startupsQuery struct {
	radiusQuery
	FundingStage   string `form:"funding_stage"`
	BusinessDomain string `form:"business_domain"`
	City           string `form:"city"`
	District       string `form:"district"`
}

type overseasQuery struct {
	Country string `form:"country"`
}

type locationQuery struct {
	Location        string `form:"location" binding:"required,min=1"`
	College         string `form:"college"`
	Major           string `form:"major"`
	GraduationYear  *int   `form:"graduation_year"`
	Industry        string `form:"industry"`
	IndustrySegment string `form:"industry_segment"`
}

type privacyRequest struct {
	PrivacyLevel string `json:"privacy_level" binding:"required,oneof=city district address friends hidden"`
}

type updateMeRequest struct {
	User *struct {
		Name           *string `json:"name"`
		GraduationYear *int    `json:"graduation_year"`
	} `json:"user"`
	Profile *alumni.ProfileUpdate `json:"profile"`
}

func (r *updateMeRequest) update() *alumni.ProfileUpdate {
	u := &alumni.ProfileUpdate{}
	if r.Profile != nil {
		u = r.Profile
	}

	if r.User != nil {
		if r.User.Name != nil && *r.User.Name != "" {
			u.Name = r.User.Name
		}

		if r.User.GraduationYear != nil && *r.User.GraduationYear != 0 {
			u.GraduationYear = r.User.GraduationYear
		}
	}

	return u
}

func invalidQuery(ctx *gin.Context) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid_query"})
}

func respondItems[T any](ctx *gin.Context, items []T) {
	ctx.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (s *Server) listAlumni(ctx *gin.Context) {
	var q listQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		invalidQuery(ctx)

		return
	}

	rows, err := s.engine.List(query.Filter{
		Predicates: q.predicates(),
		Keyword:    q.Keyword,
		Near:       q.near(),
	})
	if err != nil {
		respondError(ctx, err)

		return
	}

	respondItems(ctx, rows)
}

func (s *Server) nearbyAlumni(ctx *gin.Context) {
	var q nearbyQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		invalidQuery(ctx)

		return
	}

	radius := query.DefaultNearbyRadiusKm
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}

	rows, err := s.engine.Nearby(spatial.Point{Lat: *q.Lat, Lng: *q.Lng}, radius)
	if err != nil {
		respondError(ctx, err)

		return
	}

	respondItems(ctx, rows)
}

func (s *Server) groupedAlumni(ctx *gin.Context) {
	var q groupedQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		invalidQuery(ctx)

		return
	}

	key, err := query.ParseCategoryKey(q.GroupBy)
	if err != nil {
		invalidQuery(ctx)

		return
	}

	summaries, err := s.engine.Grouped(query.Filter{
		Predicates:    q.predicates(),
		GroupBy:       key,
		GroupRadiusKm: q.GroupRadiusKm,
	})
	if err != nil {
		respondError(ctx, err)

		return
	}

	respondItems(ctx, summaries)
}

func (s *Server) listStartups(ctx *gin.Context) {
	var q startupsQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		invalidQuery(ctx)

		return
	}

	rows, err := s.engine.Startups(query.Filter{
		Predicates: alumni.Predicates{
			FundingStage:   q.FundingStage,
			BusinessDomain: q.BusinessDomain,
			City:           q.City,
			District:       q.District,
		},
		Near: q.near(),
	})
	if err != nil {
		respondError(ctx, err)

		return
	}

	respondItems(ctx, rows)
}

func (s *Server) overseasAlumni(ctx *gin.Context) {
	var q overseasQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		invalidQuery(ctx)

		return
	}

	groups, err := s.engine.Overseas(q.Country)
	if err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (s *Server) searchByLocation(ctx *gin.Context) {
	var q locationQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		invalidQuery(ctx)

		return
	}

	rows, err := s.engine.SearchLocation(q.Location, alumni.Predicates{
		College:         q.College,
		Major:           q.Major,
		GraduationYear:  q.GraduationYear,
		Industry:        q.Industry,
		IndustrySegment: q.IndustrySegment,
	})
	if err != nil {
		respondError(ctx, err)

		return
	}

	respondItems(ctx, rows)
}

func (s *Server) getMe(ctx *gin.Context) {
	view, err := s.engine.Owner(callerID(ctx))
	if err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, view)
}

func (s *Server) updateMe(ctx *gin.Context) {
	var req updateMeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})

		return
	}

	if _, err := s.store.Update(callerID(ctx), req.update()); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})

		return 0, false
	}

	return id, true
}

func (s *Server) getDetail(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	detail, err := s.engine.Detail(id)
	if err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, detail)
}

func (s *Server) updatePrivacy(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if callerID(ctx) != id {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})

		return
	}

	var req privacyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})

		return
	}

	if err := s.store.UpdatePrivacy(id, alumni.PrivacyTier(req.PrivacyLevel)); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
