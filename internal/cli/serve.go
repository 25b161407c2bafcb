package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	fiberzap "github.com/gofiber/contrib/v3/zap"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seuros/covidboard/internal/config"
	"github.com/seuros/covidboard/internal/dashboard"
	"github.com/seuros/covidboard/internal/geoip"
	"github.com/seuros/covidboard/internal/handlers"
	"github.com/seuros/covidboard/internal/logging"
	"github.com/seuros/covidboard/internal/middleware"
)

var (
	servePort          string
	serveDataDir       string
	serveGeoIPDownload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the covidboard web dashboard",
	Long: `Start the covidboard web dashboard.

Every browser gets its own dashboard session, loaded from the statistics API
on first visit and kept in memory until it has been idle for SESSION_TTL.

Environment variables:
  API_BASE_URL     Statistics API (default: https://disease.sh)
  PORT             Server port (default: 3000)
  DATA_DIR         GeoIP database directory (default: ./data)
  MAX_SESSIONS     Live dashboard sessions kept in memory (default: 10000)
  TRUSTED_ORIGINS  Hosts allowed to change dashboard state cross-origin

Example:
  covidboard serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(servePort, serveDataDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.L()

	// Initialize GeoIP database (downloads if missing)
	if err := geoip.Init(ctx, cfg.DataDir, serveGeoIPDownload); err != nil {
		return err
	}
	defer func() {
		if err := geoip.Close(); err != nil {
			log.Warn("error closing GeoIP", zap.Error(err))
		}
	}()

	app, registry := newApp(cfg, newSource(cfg), DashboardPage)

	sweeper := dashboard.NewSessionSweeper(registry, max(cfg.SessionTTL, time.Minute))
	sweeper.Start()
	defer sweeper.Stop()

	log.Info("covidboard starting",
		zap.String("port", cfg.Port),
		zap.String("api", cfg.APIBaseURL),
		zap.String("version", Version))

	return app.Listen(":"+cfg.Port, fiber.ListenConfig{
		DisableStartupMessage: true,
		GracefulContext:       ctx,
	})
}

// newApp wires middleware, the dashboard session layer and every route. The
// returned registry holds the per-browser sessions.
func newApp(cfg *config.Config, src source, page []byte) (*fiber.App, *dashboard.Registry) {
	app := fiber.New(createFiberConfig("covidboard " + Version))

	// Middleware
	app.Use(recover.New())
	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logging.L(),
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(cfg.TrustedOrigins),
		AllowOriginsFunc: middleware.OriginMatcher(cfg.TrustedOrigins),
		AllowHeaders:     []string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept},
		AllowMethods:     []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodDelete, fiber.MethodOptions},
	}))

	// Add version header to all responses
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Covidboard-Version", Version)
		return c.Next()
	})

	// Routes
	app.Get("/", handleIndex(page))
	app.Get("/health", handleHealth)
	app.Get("/up", handleUp(src.Ping)) // Docker health check
	app.Get("/api/version", handleVersion)

	registry := dashboard.NewRegistry(cfg.SessionTTL, func() *dashboard.Coordinator {
		return dashboard.NewCoordinator(src, dashboard.WithHistoryDays(cfg.HistoryDays))
	}, dashboard.WithMaxSessions(cfg.MaxSessions))

	api := app.Group("/api",
		middleware.TrustedOrigin(cfg.TrustedOrigins),
		middleware.Session(middleware.SessionConfig{
			Registry:      registry,
			TTL:           cfg.SessionTTL,
			SecureCookies: cfg.SecureCookies,
		}),
	)
	handlers.NewHandler(geoip.LookupCountry).RegisterRoutes(api)

	return app, registry
}

// corsOrigins expands trusted hosts into the scheme-qualified origins the
// CORS middleware matches exactly. Port-less entries are also matched on
// any port through the origin matcher.
func corsOrigins(trusted []string) []string {
	origins := make([]string, 0, len(trusted)*2)
	for _, host := range trusted {
		origins = append(origins, "https://"+host, "http://"+host)
	}
	return origins
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Server port (overrides config)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "GeoIP database directory (overrides config)")
	serveCmd.Flags().BoolVar(&serveGeoIPDownload, "geoip-download", true, "Download the GeoIP database when it is missing")
}
