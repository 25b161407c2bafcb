package cli

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/spf13/cobra"
)

// healthcheckTimeout bounds the probe so a hung server fails the check.
const healthcheckTimeout = 2 * time.Second

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check if the server is healthy",
	Long:  "Performs an HTTP request to the /up endpoint to verify the server and the statistics API are reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig("", "")
		if err != nil {
			return err
		}
		return runHealthcheck(fmt.Sprintf("http://localhost:%s/up", cfg.Port))
	},
}

func runHealthcheck(url string) error {
	client := cleanhttp.DefaultClient()
	client.Timeout = healthcheckTimeout

	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Healthcheck failed: status %d\n", resp.StatusCode)
		return fmt.Errorf("healthcheck failed: status %d", resp.StatusCode)
	}

	return nil
}
