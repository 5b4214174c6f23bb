// Package observability provides logger construction and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/hmhhmm/apex-insurance/internal/risk"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
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
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// PrintProfile outputs the wizard answers the recommendation was computed from.
func (p *Printer) PrintProfile(profile *types.UserProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Age:        %d\n", profile.Age)
	fmt.Fprintf(&sb, "Lifestyle:  %s\n", profile.Lifestyle)
	fmt.Fprintf(&sb, "Exercise:   %s\n", profile.ExerciseFrequency)
	fmt.Fprintf(&sb, "Smoker:     %s\n", profile.SmokingStatus)
	fmt.Fprintf(&sb, "Budget:     $%.2f/month\n", profile.Budget)
	if len(profile.SelectedTypes) > 0 {
		fmt.Fprintf(&sb, "Interested: %s\n", strings.Join(profile.SelectedTypes, ", "))
	}
	if len(profile.DNARisks) > 0 {
		fmt.Fprintf(&sb, "DNA risks:  %s\n", strings.Join(profile.DNARisks, ", "))
	}

	p.printBox("USER PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRisk outputs the risk value and its tier.
func (p *Printer) PrintRisk(riskValue int) {
	p.printBox("RISK ASSESSMENT", fmt.Sprintf("Risk value: %d/100 (%s)", riskValue, risk.TierOf(riskValue)))
}

// PrintRecommendations outputs the ranked plans with scores and adjusted prices.
func (p *Printer) PrintRecommendations(bundle *types.RecommendationBundle) {
	if bundle == nil {
		return
	}
	if len(bundle.TopRecommendations) == 0 {
		p.printBox("TOP RECOMMENDATIONS", "No plans match the selected insurance types.")
		return
	}

	var sb strings.Builder
	for i, rec := range bundle.TopRecommendations {
		fmt.Fprintf(&sb, "#%d  %s (%s)\n", i+1, rec.PlanID, rec.PlanType)
		fmt.Fprintf(&sb, "    Match: %d%%\n", rec.MatchScore)
		fmt.Fprintf(&sb, "    Price: $%.2f", rec.AdjustedPrice)
		if rec.PriceAdjustment != 0 {
			fmt.Fprintf(&sb, " (base $%.2f, %+d%%)", rec.BasePrice, rec.PriceAdjustment)
		}
		sb.WriteString("\n")
		if i < len(bundle.TopRecommendations)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("TOP RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintNarrative outputs the analysis, risk factors and savings tips of a bundle.
func (p *Printer) PrintNarrative(bundle *types.RecommendationBundle) {
	if bundle == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Source: %s\n\n", bundle.NarrativeSource)
	sb.WriteString(wrap(bundle.OverallAnalysis, boxWidth-4))
	sb.WriteString("\n")

	writeList(&sb, "Risk factors:", bundle.RiskFactors)
	writeList(&sb, "Savings tips:", bundle.SavingsTips)

	p.printBox("ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCatalog outputs the plan catalog grouped in catalog order.
func (p *Printer) PrintCatalog(plans []types.InsurancePlan) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d plans\n\n", len(plans))
	for _, plan := range plans {
		name := plan.Name
		if name == "" {
			name = plan.ID
		}
		fmt.Fprintf(&sb, "%-18s %-24s $%.2f\n", plan.Type, name, plan.BasePrice)
	}
	p.printBox("PLAN CATALOG", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s\n", heading)
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		fmt.Fprintf(sb, "  • %s\n", items[i])
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-maxItemsToShow)
	}
}

// wrap breaks text on spaces so each line fits in width runes.
func wrap(text string, width int) string {
	var (
		sb   strings.Builder
		line int
	)
	for _, word := range strings.Fields(text) {
		n := len([]rune(word))
		if line > 0 && line+1+n > width {
			sb.WriteString("\n")
			line = 0
		}
		if line > 0 {
			sb.WriteString(" ")
			line++
		}
		sb.WriteString(word)
		line += n
	}
	return sb.String()
}
