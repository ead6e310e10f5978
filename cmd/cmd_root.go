// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/alumap/alumni"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const dbFile = "alumap.duckdb"

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})

	rootCmd.PersistentFlags().StringVar(
		&options.DbPath,
		"db-path",
		"db",
		"Base directory where the profile database is stored",
	)
}

// Options are the settings shared by every subcommand.
type Options struct {
	DbPath string
}

var options = &Options{}

var rootCmd = &cobra.Command{
	Use:   "alumap",
	Short: "privacy-aware alumni map directory",
	Long: `
alumap stores alumni profiles and answers listing, radius, location and
clustered map queries over them, masking every location according to the
privacy level chosen by each profile owner.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		return nil
	},
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func dbFilePath() string {
	return filepath.Join(options.DbPath, dbFile)
}

// openRepository opens the profile database, creating it when missing.
func openRepository() (*sql.DB, alumni.Repository, error) {
	if err := os.MkdirAll(options.DbPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", dbFilePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := alumni.NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, repo, nil
}
