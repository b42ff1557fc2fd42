// Package cli provides the command-line interface for katalon-recorder.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// AppName is the binary name, also used for the log and report tool name.
const AppName = "katalon-recorder"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"KATALON_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// newApp builds the CLI application.
func newApp() *cli.App {
	return &cli.App{
		Name:    AppName,
		Usage:   "Convert Chrome DevTools Recorder JSON into Katalon Studio test scripts",
		Version: Version,
		Description: `katalon-recorder converts recordings exported from the Chrome DevTools
Recorder panel into Katalon Studio Groovy test cases.

Examples:
  katalon-recorder convert recording.json
  katalon-recorder convert recordings/ --output Scripts/Generated
  katalon-recorder convert recording.json --dry
  katalon-recorder validate recordings/`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			if c.Bool("no-ansi") {
				colorsEnabled = false
			}
			return nil
		},
		Commands: []*cli.Command{
			convertCommand,
			validateCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	// Variables from .env fill in anything not already exported.
	_ = godotenv.Load(".env")

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
