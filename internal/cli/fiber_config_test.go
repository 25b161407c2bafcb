package cli

import (
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
)

func TestCreateFiberConfig(t *testing.T) {
	appName := "Test App"
	config := createFiberConfig(appName)

	// AppName should always be set correctly
	assert.Equal(t, appName, config.AppName, "AppName should match input")
	assert.NotNil(t, config.JSONEncoder)
	assert.NotNil(t, config.JSONDecoder)
	assert.Equal(t, fiber.HeaderXForwardedFor, config.ProxyHeader)
	assert.True(t, config.TrustProxyConfig.Loopback)
}

func TestCreateFiberConfigAppNameFormat(t *testing.T) {
	tests := []struct {
		name     string
		appName  string
		expected string
	}{
		{
			name:     "simple name",
			appName:  "covidboard",
			expected: "covidboard",
		},
		{
			name:     "name with version",
			appName:  "covidboard v1.0.0",
			expected: "covidboard v1.0.0",
		},
		{
			name:     "empty name",
			appName:  "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createFiberConfig(tt.appName)
			assert.Equal(t, tt.expected, config.AppName)
		})
	}
}
