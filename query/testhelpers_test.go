// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"github.com/jcodagnone/alumap/alumni"
	"github.com/jcodagnone/alumap/spatial"
)

// kmPerDegree is the length of one degree of latitude on the haversine sphere.
const kmPerDegree = 6371.0 * 3.141592653589793 / 180

// north returns the point km kilometres north of origin along a meridian.
func north(origin spatial.Point, km float64) *spatial.Point {
	return &spatial.Point{Lat: origin.Lat + km/kmPerDegree, Lng: origin.Lng}
}

func ids(rows []PublicRecord) []int64 {
	out := []int64{}
	for _, r := range rows {
		out = append(out, r.ID)
	}

	return out
}

func intPtr(i int) *int { return &i }

type fakeSource struct {
	records []*alumni.Record
	err     error
	calls   []alumni.Predicates
}

func (s *fakeSource) FetchCandidates(p alumni.Predicates) ([]*alumni.Record, error) {
	s.calls = append(s.calls, p)
	if s.err != nil {
		return nil, s.err
	}

	var out []*alumni.Record

	for _, r := range s.records {
		if p.Match(r) {
			out = append(out, r)
		}
	}

	return out, nil
}

func (s *fakeSource) Get(id int64) (*alumni.Record, error) {
	if s.err != nil {
		return nil, s.err
	}

	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}

	return nil, alumni.ErrNotFound
}
