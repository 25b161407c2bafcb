//go:build docker

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateFiberConfigTrustDocker(t *testing.T) {
	config := createFiberConfig("Test App")

	// The ingress proxy lives on the container network
	assert.True(t, config.TrustProxy)
	assert.True(t, config.TrustProxyConfig.Private, "private ranges should be trusted in Docker deployments")
}
