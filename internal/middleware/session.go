package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seuros/covidboard/internal/dashboard"
	"github.com/seuros/covidboard/internal/logging"
)

// SessionCookie holds the id of the browser's dashboard session.
const SessionCookie = "covidboard_session"

const coordinatorKey = "coordinator"

// SessionConfig configures the Session middleware.
type SessionConfig struct {
	Registry      *dashboard.Registry
	TTL           time.Duration
	SecureCookies bool
}

// Session attaches the caller's dashboard coordinator to the request,
// creating and initializing one for new or expired sessions. Initial load
// failures are surfaced through the coordinator's notice, not the request.
func Session(cfg SessionConfig) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := uuid.Parse(c.Cookies(SessionCookie))
		if err != nil {
			id = uuid.New()
		}

		coordinator, created := cfg.Registry.GetOr(id)
		if created {
			if err := coordinator.OnInit(c.Context()); err != nil {
				logging.L().Warn("dashboard initial load incomplete",
					zap.String("session", id.String()),
					zap.Error(err))
			}
		}

		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    id.String(),
			Path:     "/",
			MaxAge:   int(cfg.TTL.Seconds()),
			HTTPOnly: true,
			Secure:   cfg.SecureCookies,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		c.Locals(coordinatorKey, coordinator)
		return c.Next()
	}
}

// GetCoordinator retrieves the session coordinator from context
func GetCoordinator(c fiber.Ctx) *dashboard.Coordinator {
	if coordinator, ok := c.Locals(coordinatorKey).(*dashboard.Coordinator); ok {
		return coordinator
	}
	return nil
}
