//go:build mage

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build builds covidboard for Linux with Green Tea GC
func Build() error {
	fmt.Println("Building covidboard for Linux with Go 1.25 + Green Tea GC...")
	env := map[string]string{
		"GOOS":         "linux",
		"GOARCH":       "amd64",
		"GOEXPERIMENT": "greenteagc",
	}
	return sh.RunWith(env, "go", "build", "-o", "covidboard-linux-amd64", "./cmd/covidboard")
}

// BuildDocker builds the container binary with the docker build tag
func BuildDocker() error {
	fmt.Println("Building covidboard for Docker...")
	env := map[string]string{
		"GOOS":        "linux",
		"CGO_ENABLED": "0",
	}
	return sh.RunWith(env, "go", "build", "-tags", "docker", "-o", "covidboard-docker", "./cmd/covidboard")
}

// BuildLocal builds covidboard for current platform
func BuildLocal() error {
	fmt.Printf("Building covidboard for %s/%s...\n", runtime.GOOS, runtime.GOARCH)
	return sh.Run("go", "build", "-o", "covidboard", "./cmd/covidboard")
}

// Test runs tests
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-v", "./...")
}

// TestDocker runs tests with the docker build tag
func TestDocker() error {
	fmt.Println("Running tests (docker tag)...")
	return sh.Run("go", "test", "-tags", "docker", "./...")
}

// Check runs both test variants
func Check() {
	mg.SerialDeps(Test, TestDocker)
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning build artifacts...")
	for _, f := range []string{"covidboard", "covidboard-linux-amd64", "covidboard-docker"} {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
