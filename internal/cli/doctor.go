package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/seuros/covidboard/internal/config"
	"github.com/seuros/covidboard/internal/diseasesh"
	"github.com/seuros/covidboard/internal/geoip"
)

var errChecksFailed = errors.New("one or more checks failed")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the covidboard installation",
	Long: `Run health checks on the covidboard installation.

Checks performed:
  - Data directory writable
  - GeoIP database exists
  - Statistics API reachable
  - Statistics API payloads readable
  - Trusted origins configured

Example:
  covidboard doctor
  covidboard doctor --json`,
	RunE: runDoctor,
	// Failed checks are reported in the output already.
	SilenceUsage: true,
}

type CheckResult struct {
	Name       string `json:"name"`
	Pass       bool   `json:"pass"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    string `json:"details,omitempty"`
}

func checkDataDirectory(cfg *config.Config) CheckResult {
	// Test write access to DATA_DIR
	testFile := filepath.Join(cfg.DataDir, ".covidboard-write-test")
	err := os.WriteFile(testFile, []byte("test"), 0644)
	if err != nil {
		return CheckResult{
			Name:       "Data Directory Writable",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Ensure DATA_DIR exists and has write permissions",
		}
	}
	_ = os.Remove(testFile)
	return CheckResult{Name: "Data Directory Writable", Pass: true}
}

func checkGeoIPDatabase(cfg *config.Config) CheckResult {
	geoipPath := filepath.Join(cfg.DataDir, geoip.DatabaseFile)

	info, err := os.Stat(geoipPath)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Name:       "GeoIP Database",
				Pass:       false,
				Error:      geoip.DatabaseFile + " not found",
				Suggestion: "Database will auto-download on first server start",
			}
		}
		return CheckResult{Name: "GeoIP Database", Pass: false, Error: err.Error()}
	}

	// Check if file is readable
	file, err := os.Open(geoipPath)
	if err != nil {
		return CheckResult{
			Name:       "GeoIP Database",
			Pass:       false,
			Error:      "Cannot read " + geoip.DatabaseFile,
			Suggestion: "Check file permissions",
		}
	}
	_ = file.Close()

	return CheckResult{
		Name:    "GeoIP Database",
		Pass:    true,
		Details: fmt.Sprintf("%.1f MB", float64(info.Size())/(1024*1024)),
	}
}

func checkUpstream(ctx context.Context, src source, baseURL string) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	if err := src.Ping(ctx); err != nil {
		return CheckResult{
			Name:       "Statistics API",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: suggestionFor(err),
		}
	}
	return CheckResult{
		Name:    "Statistics API",
		Pass:    true,
		Details: fmt.Sprintf("%s, %s", baseURL, time.Since(start).Round(time.Millisecond)),
	}
}

func checkUpstreamPayloads(ctx context.Context, src source) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	records, err := src.Countries(ctx)
	if err != nil {
		return CheckResult{
			Name:       "Statistics Payloads",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: suggestionFor(err),
		}
	}

	var unlisted int
	for _, r := range records {
		if r.ISOCode() == "" {
			unlisted++
		}
	}

	return CheckResult{
		Name:    "Statistics Payloads",
		Pass:    true,
		Details: fmt.Sprintf("%d countries, %d without ISO code", len(records), unlisted),
	}
}

func checkTrustedOrigins(cfg *config.Config) CheckResult {
	if len(cfg.TrustedOrigins) == 0 {
		return CheckResult{
			Name:       "Trusted Origins",
			Pass:       false,
			Error:      "No trusted origins configured",
			Suggestion: "Set TRUSTED_ORIGINS, for example: localhost,dashboard.example.com",
		}
	}
	return CheckResult{
		Name:    "Trusted Origins",
		Pass:    true,
		Details: strings.Join(cfg.TrustedOrigins, ", "),
	}
}

func suggestionFor(err error) string {
	switch diseasesh.KindOf(err) {
	case diseasesh.KindNetwork:
		return "Verify API_BASE_URL and outbound network access"
	case diseasesh.KindStatus:
		return "The API rejected the request; check API_BASE_URL points at a disease.sh deployment"
	case diseasesh.KindMalformed:
		return "The API answered with unexpected data; check API_BASE_URL"
	}
	return ""
}

func runDoctor(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig("", "")
	if err != nil {
		fmt.Printf("✗ Configuration Error: %v\n", err)
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results := doctorChecks(ctx, cfg, newSource(cfg))

	// Output results
	if jsonOutput {
		outputDoctorJSON(results)
	} else {
		outputDoctorHuman(results)
	}

	for _, r := range results {
		if !r.Pass {
			return errChecksFailed
		}
	}
	return nil
}

func doctorChecks(ctx context.Context, cfg *config.Config, src source) []CheckResult {
	results := []CheckResult{
		checkDataDirectory(cfg),
		checkGeoIPDatabase(cfg),
		checkTrustedOrigins(cfg),
	}

	upstream := checkUpstream(ctx, src, cfg.APIBaseURL)
	results = append(results, upstream)
	// Payload checks are noise while the API is unreachable.
	if upstream.Pass {
		results = append(results, checkUpstreamPayloads(ctx, src))
	}
	return results
}

func outputDoctorHuman(results []CheckResult) {
	fmt.Println("\ncovidboard health check")

	for _, r := range results {
		icon := "✓"
		if !r.Pass {
			icon = "✗"
		}

		fmt.Printf("%s %s", icon, r.Name)
		if r.Details != "" {
			fmt.Printf(" (%s)", r.Details)
		}
		fmt.Println()

		if !r.Pass {
			if r.Error != "" {
				fmt.Printf("  Error: %s\n", r.Error)
			}
			if r.Suggestion != "" {
				fmt.Printf("  Hint: %s\n", r.Suggestion)
			}
		}
	}

	// Summary
	passed := 0
	for _, r := range results {
		if r.Pass {
			passed++
		}
	}

	fmt.Printf("\n%d/%d checks passed\n\n", passed, len(results))
}

func outputDoctorJSON(results []CheckResult) {
	data, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(data))
}

func init() {
	doctorCmd.Flags().Bool("json", false, "Output results as JSON")
}
