package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/seuros/covidboard/internal/stats"
)

var (
	tableMetric string
	tableLimit  int
	tableFormat string
)

var tableCmd = &cobra.Command{
	Use:   "table [--metric cases|recovered|deaths] [--limit N] [--format table|json|csv]",
	Short: "Print the country leaderboard",
	Long: `Print countries ranked by a metric, highest first.

Formats:
  table  - Aligned columns sized to the terminal (default)
  json   - JSON array format
  csv    - Comma-separated values

Example:
  covidboard table --metric deaths --limit 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTable(cmd.Context(), tableMetric, tableLimit, tableFormat)
	},
}

// TableEntry is one leaderboard row as printed by the table command.
type TableEntry struct {
	Rank      int    `json:"rank"`
	Country   string `json:"country"`
	ISOCode   string `json:"iso_code"`
	Cases     int64  `json:"cases"`
	Today     int64  `json:"today_cases"`
	Recovered int64  `json:"recovered"`
	Deaths    int64  `json:"deaths"`
}

// terminalWidth reports the stdout width, or 0 when stdout is not a terminal.
var terminalWidth = func() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

func runTable(ctx context.Context, metric string, limit int, format string) error {
	m, err := stats.ParseMetric(metric)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig("", "")
	if err != nil {
		return err
	}

	records, err := newSource(cfg).Countries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load countries: %w", err)
	}

	ranked := stats.SortBy(records, m)
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	switch format {
	case "table", "":
		return outputLeaderboard(ranked)
	case "json":
		return outputLeaderboardJSON(ranked)
	case "csv":
		return outputLeaderboardCSV(ranked)
	default:
		return fmt.Errorf("invalid format: %s (use table, json, or csv)", format)
	}
}

func leaderboardEntries(records []stats.CountryRecord) []TableEntry {
	entries := make([]TableEntry, len(records))
	for i, r := range records {
		entries[i] = TableEntry{
			Rank:      i + 1,
			Country:   r.CountryName,
			ISOCode:   r.ISOCode(),
			Cases:     r.Cases.N,
			Today:     r.TodayCases.N,
			Recovered: r.Recovered.N,
			Deaths:    r.Deaths.N,
		}
	}
	return entries
}

// fixedColumnsWidth is roughly what every column but COUNTRY needs.
const fixedColumnsWidth = 64

func outputLeaderboard(records []stats.CountryRecord) error {
	if len(records) == 0 {
		fmt.Println("No countries found")
		return nil
	}

	nameWidth := 0
	if width := terminalWidth(); width > 0 {
		nameWidth = max(width-fixedColumnsWidth, 8)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	// Write header
	_, _ = fmt.Fprintln(w, "#\tCOUNTRY\tISO\tCASES\tTODAY\tRECOVERED\tDEATHS")

	// Write rows
	for i, r := range records {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			truncate(r.CountryName, nameWidth),
			r.ISOCode(),
			stats.PrettyPrintTotal(r.Cases),
			stats.PrettyPrintStat(r.TodayCases),
			stats.PrettyPrintTotal(r.Recovered),
			stats.PrettyPrintTotal(r.Deaths),
		)
	}

	return nil
}

func outputLeaderboardJSON(records []stats.CountryRecord) error {
	data, err := json.MarshalIndent(leaderboardEntries(records), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Println(string(data))
	return nil
}

func outputLeaderboardCSV(records []stats.CountryRecord) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	// Write header
	err := w.Write([]string{"rank", "country", "iso_code", "cases", "today_cases", "recovered", "deaths"})
	if err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write rows
	for _, e := range leaderboardEntries(records) {
		err := w.Write([]string{
			strconv.Itoa(e.Rank),
			e.Country,
			e.ISOCode,
			strconv.FormatInt(e.Cases, 10),
			strconv.FormatInt(e.Today, 10),
			strconv.FormatInt(e.Recovered, 10),
			strconv.FormatInt(e.Deaths, 10),
		})
		if err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

// truncate shortens s to width runes with a trailing ellipsis. Zero width
// means unlimited.
func truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

func init() {
	tableCmd.Flags().StringVarP(&tableMetric, "metric", "m", string(stats.MetricCases), "Metric to rank by (cases, recovered, deaths)")
	tableCmd.Flags().IntVarP(&tableLimit, "limit", "n", 20, "Number of countries to show (0 for all)")
	tableCmd.Flags().StringVarP(&tableFormat, "format", "f", "table", "Output format (table, json, csv)")
}
