// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/jcodagnone/alumap/query"
	"github.com/jcodagnone/alumap/spatial"
	"github.com/spf13/cobra"
)

var queryOptions struct {
	query.Filter

	GraduationYear int
	Startup        bool
	Lat            float64
	Lng            float64
	RadiusKm       float64
	GroupBy        string
}

// queryFilter builds the engine filter from the flags that were set.
func queryFilter(cmd *cobra.Command) (query.Filter, error) {
	f := queryOptions.Filter
	flags := cmd.Flags()

	if flags.Changed("graduation-year") {
		year := queryOptions.GraduationYear
		f.GraduationYear = &year
	}

	if flags.Changed("startup") {
		startup := queryOptions.Startup
		f.IsStartup = &startup
	}

	if flags.Changed("lat") != flags.Changed("lng") {
		return f, errors.New("--lat and --lng must be given together")
	}

	if flags.Changed("lat") {
		if err := spatial.ValidateCoordinates(queryOptions.Lat, queryOptions.Lng); err != nil {
			return f, err
		}

		f.Near = &query.Radius{
			Center:   spatial.Point{Lat: queryOptions.Lat, Lng: queryOptions.Lng},
			RadiusKm: queryOptions.RadiusKm,
		}
	}

	key, err := query.ParseCategoryKey(queryOptions.GroupBy)
	if err != nil {
		return f, err
	}

	f.GroupBy = key

	return f, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// withEngine opens the local database and hands a query engine to fn.
func withEngine(fn func(*query.Engine) (any, error)) error {
	db, repo, err := openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := fn(query.NewEngine(repo, nil))
	if err != nil {
		return err
	}

	return printJSON(os.Stdout, result)
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run engine queries against the local database and print JSON",
}

var queryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the public profiles matching the filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := queryFilter(cmd)
		if err != nil {
			return err
		}

		return withEngine(func(e *query.Engine) (any, error) {
			return e.List(f)
		})
	},
}

var queryNearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "List the public profiles around --lat/--lng, closest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := queryFilter(cmd)
		if err != nil {
			return err
		}

		if f.Near == nil {
			return errors.New("--lat and --lng are required")
		}

		return withEngine(func(e *query.Engine) (any, error) {
			return e.Nearby(f.Near.Center, f.Near.RadiusKm)
		})
	},
}

var queryGroupedCmd = &cobra.Command{
	Use:   "grouped",
	Short: "Cluster the matching profiles into anonymous map points",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := queryFilter(cmd)
		if err != nil {
			return err
		}

		return withEngine(func(e *query.Engine) (any, error) {
			return e.Grouped(f)
		})
	},
}

var queryLocationCmd = &cobra.Command{
	Use:   "location <phrase>...",
	Short: "Rank the public profiles by a free text location phrase",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := queryFilter(cmd)
		if err != nil {
			return err
		}

		return withEngine(func(e *query.Engine) (any, error) {
			return e.SearchLocation(strings.Join(args, " "), f.Predicates)
		})
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(queryListCmd, queryNearbyCmd, queryGroupedCmd, queryLocationCmd)

	flags := queryCmd.PersistentFlags()
	flags.StringVar(&queryOptions.School, "school", "", "School")
	flags.StringVar(&queryOptions.College, "college", "", "College")
	flags.StringVar(&queryOptions.Major, "major", "", "Major")
	flags.IntVar(&queryOptions.GraduationYear, "graduation-year", 0, "Graduation year")
	flags.StringVar(&queryOptions.Degree, "degree", "", "Degree")
	flags.StringVar(&queryOptions.Industry, "industry", "", "Industry")
	flags.StringVar(&queryOptions.IndustrySegment, "industry-segment", "", "Industry segment")
	flags.BoolVar(&queryOptions.Startup, "startup", false, "Only startups (or, with =false, only non startups)")
	flags.StringVar(&queryOptions.FundingStage, "funding-stage", "", "Funding stage")
	flags.StringVar(&queryOptions.BusinessDomain, "business-domain", "", "Business domain")
	flags.StringVar(&queryOptions.City, "city", "", "City")
	flags.StringVar(&queryOptions.District, "district", "", "District")
	flags.StringVar(&queryOptions.Country, "country", "", "Country")
	flags.StringVar(&queryOptions.Keyword, "keyword", "", "Keyword matched against name, industry, company and job title")
	flags.Float64Var(&queryOptions.Lat, "lat", 0, "Latitude of the search center")
	flags.Float64Var(&queryOptions.Lng, "lng", 0, "Longitude of the search center")
	flags.Float64Var(&queryOptions.RadiusKm, "radius-km", query.DefaultNearbyRadiusKm, "Search radius in km")

	queryGroupedCmd.Flags().StringVar(&queryOptions.GroupBy, "group-by", "industry", "Grouping key")
	queryGroupedCmd.Flags().Float64Var(&queryOptions.GroupRadiusKm, "group-radius-km", query.DefaultGroupRadiusKm, "Cluster radius in km")
}
