// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"

	"github.com/jcodagnone/alumap/alumni"
	"github.com/jcodagnone/alumap/utils/textutils"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store [file]",
	Short: "Export every profile to a JSON seed file",
	Long:  `Exports all profiles from the database to a local JSON file. Profiles are sorted by id to minimize diffs when checking into version control.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		file := "alumni.json"
		if len(args) == 1 {
			file = args[0]
		}

		db, repo, err := openRepository()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := alumni.ExportToJSON(repo, file); err != nil {
			return fmt.Errorf("exporting profiles: %w", err)
		}

		count, err := repo.Count()
		if err != nil {
			return fmt.Errorf("counting profiles: %w", err)
		}

		log.Printf("💾 Exported %s profiles to %s", textutils.FormatInt(int64(count)), file)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
}
