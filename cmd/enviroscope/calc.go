package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/enviroscope/enviroscope/pkg/units"
)

func newCalcCmd() *cobra.Command {
	var (
		payloadFile string
		outputFmt   string
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Normalize activity data to CO2e",
		Long: `Reads a scoped activity payload (JSON) and converts it to kilograms of
CO2e using the pinned emission factor tables. Use "-" to read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(payloadFile, outputFmt)
		},
	}

	cmd.Flags().StringVarP(&payloadFile, "file", "f", "", "Path to activity payload JSON (required)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runCalc(payloadFile, outputFmt string) error {
	data, err := readPayload(payloadFile)
	if err != nil {
		return err
	}

	var input units.Input
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}

	result, err := units.Normalize(input)
	if err != nil {
		return err
	}

	if outputFmt == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"total_co2e_kg":     result.TotalKg,
			"total_co2e_tonnes": result.Tonnes(),
			"lines":             result.Lines,
			"factors_version":   units.FactorsVersion,
		})
	}

	for _, line := range result.Lines {
		label := line.Activity.Type
		if line.Activity.Fuel != "" {
			label = line.Activity.Fuel
		}
		fmt.Printf("  %-14s %10.2f %-7s x %7.3f = %12.2f kg CO2e\n",
			label, line.Activity.Amount, line.Activity.Unit, line.Factor, line.CO2eKg)
	}
	fmt.Printf("\nTotal: %.2f kg CO2e (%.3f t), factors v%s\n",
		result.TotalKg, result.Tonnes(), units.FactorsVersion)
	return nil
}

// readPayload reads the payload file, or stdin when path is "-".
func readPayload(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	return data, nil
}
