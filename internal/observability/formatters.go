// Package observability provides prometheus metrics and formatted output
// for the career CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/career-path/internal/model"
	"github.com/jonathan/career-path/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintPrediction outputs a human-readable summary of a prediction result.
func (p *Printer) PrintPrediction(result *types.PredictionResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Primary:      %s (%.3f)\n", result.PrimaryCareer, result.Confidence))
	sb.WriteString(fmt.Sprintf("Skills match: %.2f\n", result.SkillsMatch))
	if result.Fallback {
		sb.WriteString("Mode:         fallback (model not loaded)\n")
	}
	sb.WriteString("\n")

	if len(result.AlternativeCareers) > 0 {
		sb.WriteString("Alternatives:\n")
		count := min(len(result.AlternativeCareers), maxItemsToShow)
		for i := 0; i < count; i++ {
			alt := result.AlternativeCareers[i]
			sb.WriteString(fmt.Sprintf("  #%d %s (%.3f)\n", i+2, alt.Career, alt.Confidence))
		}
		sb.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		sb.WriteString("Recommendations:\n")
		for _, rec := range result.Recommendations {
			sb.WriteString(fmt.Sprintf("  • %s\n", rec))
		}
	}

	p.printBox("CAREER PREDICTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBundleSummary outputs the shape of a loaded encoder bundle.
func (p *Printer) PrintBundleSummary(bundle *model.Bundle) {
	if bundle == nil {
		p.printBox("MODEL ARTIFACTS", "✗ model not loaded, predictions use the static fallback")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Skills vocabulary:    %d\n", bundle.Skills.Width()))
	sb.WriteString(fmt.Sprintf("Interests vocabulary: %d\n", bundle.Interests.Width()))
	sb.WriteString(fmt.Sprintf("Feature width:        %d\n", bundle.FeatureWidth()))
	sb.WriteString(fmt.Sprintf("Classes:              %d\n", bundle.Labels.Len()))
	sb.WriteString(fmt.Sprintf("Education default:    %s\n", bundle.Education.Default))
	sb.WriteString("\n")

	count := min(bundle.Labels.Len(), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", bundle.Labels.Classes[i]))
	}
	if bundle.Labels.Len() > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", bundle.Labels.Len()-maxItemsToShow))
	}

	p.printBox("✓ MODEL ARTIFACTS", strings.TrimSuffix(sb.String(), "\n"))
}
