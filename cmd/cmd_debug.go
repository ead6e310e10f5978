// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jcodagnone/alumap/server"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugTokenOptions struct {
	UID int64
	TTL time.Duration
}

var debugTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development JWT for a profile id",
	Long: `Prints a bearer token signed with $JWT_SECRET (or the development secret)
for the given profile id.

$ curl -H "Authorization: Bearer $(alumap debug token --uid 1)" localhost:3001/alumni/me
`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if debugTokenOptions.UID <= 0 {
			return errors.New("--uid must be a positive profile id")
		}

		cfg := server.ConfigFromEnv()

		token, err := server.NewToken(cfg.JWTSecret, debugTokenOptions.UID, debugTokenOptions.TTL)
		if err != nil {
			return fmt.Errorf("signing token: %w", err)
		}

		fmt.Println(token)

		if isatty.IsTerminal(os.Stdout.Fd()) {
			fmt.Fprintf(os.Stderr, "expires in %s\n", debugTokenOptions.TTL)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugTokenCmd)
	debugTokenCmd.Flags().Int64Var(&debugTokenOptions.UID, "uid", 0, "Profile id the token identifies")
	debugTokenCmd.Flags().DurationVar(&debugTokenOptions.TTL, "ttl", 24*time.Hour, "Token lifetime")
}
