package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agenthands/dupscan/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and print the effective values",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, found, err := config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		green := color.New(color.FgGreen).SprintFunc()
		if found {
			fmt.Fprintf(w, "%s %s\n", green("✓"), configPath)
		} else {
			fmt.Fprintf(w, "%s no config file at %s, using defaults\n", green("✓"), configPath)
		}
		fmt.Fprintln(w, cfg.String())

		for _, s := range []struct {
			name string
			src  config.SourceConfig
		}{{"a", cfg.Sources.A}, {"b", cfg.Sources.B}} {
			if s.src.Path == "" {
				continue
			}
			if err := s.src.Validate("sources." + s.name); err != nil {
				return err
			}
			fmt.Fprintf(w, "source %s: %s id=%q fields=[%s]\n",
				strings.ToUpper(s.name), s.src.Path, s.src.IDColumn, strings.Join(s.src.Fields, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
