//go:build docker

package cli

// setupSelfUpgrade is a no-op in Docker images; upgrade by pulling a new image.
func setupSelfUpgrade() {}
