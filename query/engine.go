// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"fmt"
	"log"
	"time"

	"github.com/jcodagnone/alumap/alumni"
	"github.com/jcodagnone/alumap/metrics"
	"github.com/jcodagnone/alumap/spatial"
	"github.com/jcodagnone/alumap/utils/textutils"
)

// Source supplies the profiles a query runs over.
type Source interface {
	// FetchCandidates returns a superset of the listable profiles matching p.
	FetchCandidates(p alumni.Predicates) ([]*alumni.Record, error)

	// Get returns a single profile, unmasked.
	Get(id int64) (*alumni.Record, error)
}

// Engine answers listing, search and aggregation queries over a Source. It
// keeps no state between calls and is safe for concurrent use.
type Engine struct {
	src     Source
	metrics *metrics.Metrics
}

// NewEngine creates a query engine. m may be nil.
func NewEngine(src Source, m *metrics.Metrics) *Engine {
	return &Engine{src: src, metrics: m}
}

func (e *Engine) observe(operation string, start time.Time, results int, err error) {
	if err != nil {
		e.metrics.IncrementErrors(operation)

		return
	}

	e.metrics.ObserveQuery(operation, time.Since(start), results)
}

func (e *Engine) filter(f Filter) ([]PublicRecord, error) {
	pushdown := f.Predicates

	if f.usesLocation() {
		if f.Keyword != "" {
			log.Printf("⚠️ keyword %q ignored, location %q takes precedence", f.Keyword, f.Location)
			e.metrics.IncrementConflicts()
		}

		// Structured predicates become substring matches on this path, so the
		// store can't narrow by equality.
		pushdown = alumni.Predicates{}
	}

	candidates, err := e.src.FetchCandidates(pushdown)
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}

	return FilterRecords(candidates, f), nil
}

// List returns the listable profiles matching f, masked.
func (e *Engine) List(f Filter) ([]PublicRecord, error) {
	start := time.Now()
	rows, err := e.filter(f)
	e.observe("list", start, len(rows), err)

	return rows, err
}

// Nearby returns the profiles with a known location within radiusKm of center,
// closest first.
func (e *Engine) Nearby(center spatial.Point, radiusKm float64) ([]PublicRecord, error) {
	start := time.Now()
	rows, err := e.filter(Filter{Near: &Radius{Center: center, RadiusKm: radiusKm}})
	e.observe("nearby", start, len(rows), err)

	return rows, err
}

// Startups is List restricted to startup founders and employees.
func (e *Engine) Startups(f Filter) ([]PublicRecord, error) {
	start := time.Now()
	startup := true
	f.IsStartup = &startup
	rows, err := e.filter(f)
	e.observe("startups", start, len(rows), err)

	return rows, err
}

// Grouped clusters the profiles matching f by f.GroupBy and returns one
// anonymous summary per cluster.
func (e *Engine) Grouped(f Filter) ([]ClusterSummary, error) {
	start := time.Now()

	key := f.GroupBy
	if key == "" {
		key = CategoryIndustry
	}

	rows, err := e.filter(f)
	if err != nil {
		e.observe("grouped", start, 0, err)

		return nil, err
	}

	clusters := ClusterRecords(rows, key, f.groupRadiusKm())
	e.metrics.AddClusters(len(clusters))
	e.observe("grouped", start, len(clusters), nil)

	return summarize(clusters, key), nil
}

// SearchLocation ranks the listable profiles by phrase. The extra predicates
// are applied as case-insensitive substring matches. An empty phrase matches
// nothing.
func (e *Engine) SearchLocation(phrase string, extra alumni.Predicates) ([]PublicRecord, error) {
	start := time.Now()

	if len(textutils.Tokenize(phrase)) == 0 {
		e.observe("location", start, 0, nil)

		return []PublicRecord{}, nil
	}

	rows, err := e.filter(Filter{Predicates: extra, Location: phrase})
	e.observe("location", start, len(rows), err)

	return rows, err
}

// Overseas groups the listable profiles, optionally restricted to a country,
// by country and city.
func (e *Engine) Overseas(country string) (OverseasGroups, error) {
	start := time.Now()

	rows, err := e.filter(Filter{Predicates: alumni.Predicates{Country: country}})
	if err != nil {
		e.observe("overseas", start, 0, err)

		return nil, err
	}

	e.observe("overseas", start, len(rows), nil)

	return groupOverseas(rows), nil
}

// Detail returns the masked public view of a single profile. Unlike listings
// it is returned whatever the privacy tier.
func (e *Engine) Detail(id int64) (*Detail, error) {
	start := time.Now()

	rec, err := e.src.Get(id)
	if err != nil {
		e.observe("detail", start, 0, err)

		return nil, fmt.Errorf("getting profile: %w", err)
	}

	e.observe("detail", start, 1, nil)

	return presentDetail(rec), nil
}

// Owner returns the unmasked profile for its authenticated owner.
func (e *Engine) Owner(id int64) (*OwnerView, error) {
	rec, err := e.src.Get(id)
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	return &OwnerView{Record: rec}, nil
}
