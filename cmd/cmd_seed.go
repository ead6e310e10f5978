// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/jcodagnone/alumap/alumni"
	"github.com/jcodagnone/alumap/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const defaultSeedFile = "cmd/testdata/seed.json"

var seedReset bool

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Seeds the database with profiles from a JSON file (default " + defaultSeedFile + ")",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			file := defaultSeedFile
			if len(args) == 1 {
				file = args[0]
			}

			if seedReset {
				// remove old db if it exists
				_ = os.Remove(dbFilePath())
				_ = os.Remove(dbFilePath() + ".wal")
			}

			return seedDatabase(file)
		},
	}

	cmd.Flags().BoolVar(&seedReset, "reset", false, "Remove the existing database before seeding")

	return cmd
}

func init() {
	rootCmd.AddCommand(newSeedCmd())
}

func seedDatabase(file string) error {
	seed, err := alumni.LoadSeed(file)
	if err != nil {
		return fmt.Errorf("loading %s: %w", file, err)
	}

	db, repo, err := openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(seed.Alumni),
			progressbar.OptionSetDescription("Seeding profiles"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, rec := range seed.Alumni {
		if err := repo.Save(rec); err != nil {
			if alumni.IsValidationError(err) {
				return fmt.Errorf("%s: invalid profile %d (%q): %w", file, rec.ID, rec.Name, err)
			}

			return fmt.Errorf("saving profile %q: %w", rec.Name, err)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	count, err := repo.Count()
	if err != nil {
		return fmt.Errorf("counting profiles: %w", err)
	}

	log.Printf("🌱 Seeded %s profiles from %s (%s total)",
		textutils.FormatInt(int64(len(seed.Alumni))), file, textutils.FormatInt(int64(count)))

	return nil
}
