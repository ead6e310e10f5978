// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"

	"github.com/jcodagnone/alumap/alumni"
	"github.com/jcodagnone/alumap/metrics"
	"github.com/jcodagnone/alumap/query"
	"github.com/jcodagnone/alumap/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveOptions struct {
	Addr     string
	SeedFile string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the alumni map HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openRepository()
		if err != nil {
			return err
		}
		defer db.Close()

		if serveOptions.SeedFile != "" {
			seeded, count, err := alumni.SeedIfEmpty(repo, serveOptions.SeedFile)
			if err != nil {
				return fmt.Errorf("seeding database: %w", err)
			}

			if seeded {
				log.Printf("🌱 Seeded %d profiles from %s", count, serveOptions.SeedFile)
			}
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		cfg := server.ConfigFromEnv()
		if serveOptions.Addr != "" {
			cfg.Addr = serveOptions.Addr
		}

		if cfg.JWTSecret == server.DefaultJWTSecret {
			log.Println("⚠️ JWT_SECRET is not set, using the development secret")
		}

		engine := query.NewEngine(repo, metrics.New(reg))
		srv := server.NewServer(engine, repo, reg, cfg)

		fmt.Println("🗺️  Alumni map API starting...")

		return srv.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(
		&serveOptions.Addr,
		"addr",
		"",
		"Listen address (default $ALUMAP_ADDR or "+server.DefaultAddr+")",
	)
	serveCmd.Flags().StringVar(
		&serveOptions.SeedFile,
		"seed",
		"",
		"Seed the database from this JSON file when it is empty",
	)
}
