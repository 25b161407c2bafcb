package middleware

import (
	"net"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/covidboard/internal/logging"
)

// TrustedOrigin rejects state-changing requests whose Origin header names a
// host outside trusted. Safe methods and requests without an Origin header
// (curl, server-to-server) pass through.
func TrustedOrigin(trusted []string) fiber.Handler {
	matches := OriginMatcher(trusted)

	return func(c fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}

		if !sameHost(origin, c.Hostname()) && !matches(origin) {
			logging.L().Warn("rejected cross-origin request",
				zap.String("origin", origin),
				zap.String("path", c.Path()))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Origin not allowed",
			})
		}
		return c.Next()
	}
}

// OriginMatcher reports whether an Origin header value names a trusted host.
// An entry without a port trusts every port on that host.
func OriginMatcher(trusted []string) func(origin string) bool {
	allowed := make(map[string]struct{}, len(trusted))
	for _, o := range trusted {
		allowed[strings.ToLower(o)] = struct{}{}
	}

	return func(origin string) bool {
		host := originHost(origin)
		if host == "" {
			return false
		}
		if _, ok := allowed[host]; ok {
			return true
		}
		if hostname, _, err := net.SplitHostPort(host); err == nil {
			_, ok := allowed[hostname]
			return ok
		}
		return false
	}
}

func sameHost(origin, requestHost string) bool {
	host := originHost(origin)
	return host != "" && strings.EqualFold(host, requestHost)
}

func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
