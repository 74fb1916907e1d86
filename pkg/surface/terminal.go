package surface

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/enviroscope/enviroscope/pkg/scoring"
	"github.com/enviroscope/enviroscope/pkg/validation"
)

// TerminalRenderer renders results as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func scoreColor(score float64) string {
	if noColor() {
		return ""
	}
	switch {
	case score >= 70:
		return colorGreen
	case score >= 50:
		return colorYellow
	default:
		return colorRed
	}
}

func severityColor(severity string) string {
	if noColor() {
		return ""
	}
	switch severity {
	case validation.SeverityCritical, validation.SeverityHigh:
		return colorRed
	case validation.SeverityMedium:
		return colorYellow
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) RenderScore(w io.Writer, result *scoring.Result) error {
	fmt.Fprintf(w, "%s\n\n",
		bold(fmt.Sprintf("Enviroscope: %s — Score %s",
			result.Company, colored(fmt.Sprintf("%.1f", result.Score), scoreColor(result.Score)))))

	fmt.Fprintln(w, "Components:")
	for _, sr := range result.Breakdown {
		sign := "+"
		if sr.Contribution < 0 {
			sign = ""
		}
		fmt.Fprintf(w, "  (%s%.1f) %s", sign, sr.Contribution, bold(sr.Name))
		if sr.Detail != "" {
			fmt.Fprintf(w, " — %s", sr.Detail)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	keys := make([]string, 0, len(result.Sources))
	for k := range result.Sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, "Sources:")
	for _, k := range keys {
		fmt.Fprintf(w, "  %s\n", dim(fmt.Sprintf("%s: %v", k, result.Sources[k])))
	}
	fmt.Fprintln(w)

	return nil
}

func (r *TerminalRenderer) RenderReport(w io.Writer, report *validation.Report) error {
	fmt.Fprintf(w, "%s\n\n", bold(fmt.Sprintf("Enviroscope validation: %s", report.Company)))

	fmt.Fprintf(w, "Self-reported: %.1f t CO2e (scope1 %.0f kg, scope2 %.0f kg)\n\n",
		report.SelfReported.TotalTonnes, report.SelfReported.Scope1Kg, report.SelfReported.Scope2Kg)

	if report.Mapping != nil {
		fmt.Fprintf(w, "Facility: %s", bold(report.Mapping.FacilityID))
		if report.Mapping.FacilityName != "" {
			fmt.Fprintf(w, " (%s)", report.Mapping.FacilityName)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w)
	}

	if dev := report.QuantitativeDeviation; dev != nil {
		fmt.Fprintf(w, "Deviation vs %s:\n", dev.ReferenceSource)
		for _, c := range dev.Comparisons {
			fmt.Fprintf(w, "  %s: %s (%.1f vs %.1f tons)\n",
				bold(c.Pollutant),
				colored(fmt.Sprintf("%.1f%% %s", c.DeviationPct, c.Severity), severityColor(c.Severity)),
				c.SelfTons, c.ReferenceTons)
		}
		for _, p := range dev.NonComparable {
			fmt.Fprintf(w, "  %s\n", dim(fmt.Sprintf("%s: reference is zero, not comparable", p)))
		}
		fmt.Fprintln(w)
	}

	if report.EPA != nil {
		fmt.Fprintf(w, "Regulator name search: %d match(es) for %q\n\n",
			report.EPA.MatchesCount, report.EPA.Query)
	}

	if len(report.Flags) == 0 {
		fmt.Fprintln(w, "No flags.")
		fmt.Fprintln(w)
		return nil
	}

	fmt.Fprintln(w, "Flags:")
	for _, f := range report.Flags {
		fmt.Fprintf(w, "  %s %s %s\n",
			colored("●", severityColor(f.Severity)),
			bold(fmt.Sprintf("[%s]", f.Severity)), f.Type)
		for _, line := range wrapText(f.Message, 70) {
			fmt.Fprintf(w, "    %s\n", dim(line))
		}
	}
	fmt.Fprintln(w)

	return nil
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
