//go:build docker

package cli

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
)

// createFiberConfig returns Fiber configuration for Docker deployments.
// The ingress proxy sits on the container network, so forwarded client IPs
// are trusted from private ranges as well as loopback.
func createFiberConfig(appName string) fiber.Config {
	return fiber.Config{
		AppName:     appName,
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		ProxyHeader: fiber.HeaderXForwardedFor,
		TrustProxy:  true,
		TrustProxyConfig: fiber.TrustProxyConfig{
			Loopback: true,
			Private:  true,
		},
	}
}
