//go:build !docker

package cli

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
)

// createFiberConfig returns Fiber configuration for bare metal installs.
// X-Forwarded-For is honoured only from a reverse proxy on the same host.
func createFiberConfig(appName string) fiber.Config {
	return fiber.Config{
		AppName:     appName,
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		// Use X-Forwarded-For to get real client IP behind reverse proxy
		ProxyHeader: fiber.HeaderXForwardedFor,
		TrustProxy:  true,
		TrustProxyConfig: fiber.TrustProxyConfig{
			Loopback: true,
		},
	}
}
