// Package main provides the enviroscope CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/enviroscope/enviroscope/pkg/config"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "enviroscope",
		Short: "Environmental disclosure verification from public data",
		Long: `Enviroscope normalizes self-reported emissions, scores companies against
public environmental signals, and cross-validates disclosures against
regulator datasets.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newCalcCmd(),
		newScoreCmd(),
		newValidateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the config file from the working directory upward and
// applies environment overrides.
func loadConfig() *config.Config {
	path := ""
	if wd, err := os.Getwd(); err == nil {
		path = config.FindConfigFile(wd)
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}
	cfg.ApplyEnv()
	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
