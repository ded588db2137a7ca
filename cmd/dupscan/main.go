package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	exitError      = 1
	exitIncomplete = 3
)

// errIncomplete is returned by scan when the deadline stopped the run; the
// report has already been written.
var errIncomplete = errors.New("scan did not finish before the deadline")

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "dupscan",
	Short: "Find duplicate opportunity records",
	Long: `dupscan finds duplicate and near-duplicate opportunity records in a
worklist (self mode), or records in one list that match a partner's list
(cross mode), and writes the duplicate clusters to a report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "dupscan.toml", "path to the TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

func main() {
	_ = godotenv.Load()

	err := rootCmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, errIncomplete):
		fmt.Fprintf(os.Stderr, "%s %v\n", color.YellowString("Warning:"), err)
		os.Exit(exitIncomplete)
	default:
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(exitError)
	}
}
