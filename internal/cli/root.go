package cli

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"

	"github.com/seuros/covidboard/internal/config"
	"github.com/seuros/covidboard/internal/dashboard"
	"github.com/seuros/covidboard/internal/diseasesh"
)

var Version string

// DashboardPage is the embedded single-page dashboard, passed from main
var DashboardPage []byte

var apiURLFlag string

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:   "covidboard",
	Short: "COVID-19 statistics dashboard",
	Long: `covidboard - COVID-19 statistics at a glance.

covidboard fetches global and per-country figures from disease.sh and shows
them as info cards, a ranked table, a map and a daily chart, in the browser
or straight in the terminal.`,
	Version: Version,
	// Default to serve command if no subcommand provided
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runServe(cmd.Context())
		}
		return cmd.Help()
	},
}

// Execute is called by main
func Execute(version string, dashboardPage []byte) error {
	Version = version
	DashboardPage = dashboardPage

	RootCmd.Version = version

	return RootCmd.Execute()
}

// source is the statistics API as the server and commands use it.
type source interface {
	dashboard.Fetcher
	Ping(ctx context.Context) error
}

// newSource builds the disease.sh client for cfg. Tests point API_BASE_URL
// at an httptest server instead of replacing this.
func newSource(cfg *config.Config) source {
	return diseasesh.New(cfg.APIBaseURL, cfg.RequestTimeout,
		diseasesh.WithUserAgent("covidboard/"+strings.TrimPrefix(Version, "v")))
}

// loadConfig reads configuration with the persistent --api-url override.
func loadConfig(port, dataDir string) (*config.Config, error) {
	return config.LoadWithOverrides(apiURLFlag, port, dataDir)
}

// Handler functions

func handleIndex(page []byte) fiber.Handler {
	// Replace template variables once; the page is static afterwards.
	html := strings.ReplaceAll(string(page), "{{.Title}}", "covidboard")
	html = strings.ReplaceAll(html, "{{.Version}}", Version)

	return func(c fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(html)
	}
}

func handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "covidboard",
	})
}

// handleUp is the container health check: 200 while the statistics API
// answers, 503 otherwise.
func handleUp(ping func(ctx context.Context) error) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("statistics api unavailable")
		}
		return c.SendStatus(fiber.StatusOK)
	}
}

func handleVersion(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": Version,
	})
}

func init() {
	RootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Statistics API base URL (overrides config)")

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(tableCmd)
	RootCmd.AddCommand(countryCmd)
	RootCmd.AddCommand(doctorCmd)
	RootCmd.AddCommand(healthcheckCmd)

	setupSelfUpgrade()

	// Set version output
	RootCmd.Version = Version
}
