// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cheatsheet/internal/generate"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List the cheatsheet styles",
	RunE: func(cmd *cobra.Command, args []string) error {
		styles, err := generate.Styles()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, s := range styles {
			fmt.Fprintf(w, "%-12s %-27s %s\n", s.Name, s.Label, s.Summary)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stylesCmd)
}
