package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seuros/covidboard/internal/dashboard"
	"github.com/seuros/covidboard/internal/logging"
	"github.com/seuros/covidboard/internal/stats"
)

var (
	countryMetric string
	countryFormat string
)

var countryCmd = &cobra.Command{
	Use:   "country <iso-code|worldwide> [--format text|json]",
	Short: "Print the info cards for a country",
	Long: `Print today's change and the running total for cases, recovered and
deaths, either worldwide or for one country.

Example:
  covidboard country worldwide
  covidboard country fr --metric deaths --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCountry(cmd.Context(), args[0], countryMetric, countryFormat)
	},
}

// CountryReport is the json output of the country command.
type CountryReport struct {
	Country string       `json:"country"`
	ISOCode string       `json:"iso_code,omitempty"`
	Cards   []stats.Card `json:"cards"`
}

func runCountry(ctx context.Context, selection, metric, format string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig("", "")
	if err != nil {
		return err
	}

	coordinator := dashboard.NewCoordinator(newSource(cfg),
		dashboard.WithLogger(logging.With(zap.String("command", "country"))))
	if err := coordinator.OnMetricTypeSelect(metric); err != nil {
		return err
	}
	if err := coordinator.OnCountrySelect(ctx, selection); err != nil {
		return err
	}

	state := coordinator.Snapshot()
	report := CountryReport{
		Country: state.CountryInfo.CountryName,
		ISOCode: state.CountryInfo.ISOCode(),
		Cards:   state.Cards(),
	}
	if state.SelectedCountry == dashboard.Worldwide {
		report.Country = "Worldwide"
	}

	switch format {
	case "text", "":
		return outputCountryText(report)
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	default:
		return fmt.Errorf("invalid format: %s (use text or json)", format)
	}
}

func outputCountryText(report CountryReport) error {
	title := report.Country
	if report.ISOCode != "" {
		title = fmt.Sprintf("%s (%s)", report.Country, report.ISOCode)
	}
	fmt.Println(title)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	for _, card := range report.Cards {
		marker := " "
		if card.Active {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s %s\t%s today\t%s total\n", marker, card.Title, card.Today, card.Total)
	}
	return nil
}

func init() {
	countryCmd.Flags().StringVarP(&countryMetric, "metric", "m", string(stats.MetricCases), "Highlighted metric (cases, recovered, deaths)")
	countryCmd.Flags().StringVarP(&countryFormat, "format", "f", "text", "Output format (text, json)")
}
