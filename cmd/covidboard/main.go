package main

import (
	_ "embed"
	"strings"

	"go.uber.org/zap"

	"github.com/seuros/covidboard/internal/cli"
	"github.com/seuros/covidboard/internal/logging"
)

//go:embed VERSION
var versionFile string

//go:embed dashboard.html
var dashboardPage []byte

var executeCLI = cli.Execute

func run() error {
	version := strings.TrimSpace(versionFile)
	return executeCLI(version, dashboardPage)
}

func main() {
	if err := run(); err != nil {
		logging.Fatal("covidboard execution failed", zap.Error(err))
	}
}
