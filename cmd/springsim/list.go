package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnatoleLucet/spring"
)

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the named spring configs",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range spring.Presets() {
				cfg, err := spring.Preset(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s tension=%g friction=%g\n", name, *cfg.Tension, *cfg.Friction)
			}
			return nil
		},
	}
}

func easingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "easings",
		Short: "List the named easings usable with --easing",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range spring.Easings() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
