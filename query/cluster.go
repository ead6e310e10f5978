// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"github.com/jcodagnone/alumap/spatial"
)

// Cluster is a request scoped aggregate of nearby profiles sharing a category.
type Cluster struct {
	Category string
	Centroid spatial.Point
	Count    int
}

// ClusterRecords groups rows by key and greedily merges the rows of each
// category into clusters. Only visible coordinates take part; rows without
// them are left out. Categories are emitted in order of first appearance.
//
// A cluster is seeded with the first unassigned row. Any unassigned row within
// radiusKm of the current centroid joins, and the centroid moves to the mean
// of all members, so a cluster may chain beyond radiusKm of its seed. Scans
// repeat until one adds no member. The result depends on input order.
func ClusterRecords(rows []PublicRecord, key CategoryKey, radiusKm float64) []Cluster {
	var order []string

	points := map[string][]spatial.Point{}

	for i := range rows {
		category := key.Of(&rows[i])
		if _, seen := points[category]; !seen {
			order = append(order, category)
			points[category] = nil
		}

		if p := rows[i].point(); p != nil {
			points[category] = append(points[category], *p)
		}
	}

	var clusters []Cluster
	for _, category := range order {
		clusters = append(clusters, clusterCategory(category, points[category], radiusKm)...)
	}

	return clusters
}

func clusterCategory(category string, pts []spatial.Point, radiusKm float64) []Cluster {
	var clusters []Cluster

	assigned := make([]bool, len(pts))

	for seed := range pts {
		if assigned[seed] {
			continue
		}

		assigned[seed] = true
		members := []spatial.Point{pts[seed]}
		centroid := pts[seed]

		for changed := true; changed; {
			changed = false

			for j := range pts {
				if assigned[j] {
					continue
				}

				if d, ok := spatial.DistanceKm(&centroid, &pts[j]); ok && d <= radiusKm {
					assigned[j] = true
					members = append(members, pts[j])
					centroid = spatial.Centroid(members)
					changed = true
				}
			}
		}

		clusters = append(clusters, Cluster{Category: category, Centroid: centroid, Count: len(members)})
	}

	return clusters
}
