package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/katalon-recorder/pkg/validator"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check recordings without writing any scripts",
	ArgsUsage: "<recording-file-or-folder>...",
	Description: `Parse every recording and report malformed files and steps that would
be skipped during conversion. Exits non-zero when any recording is malformed.

Examples:
  katalon-recorder validate recording.json
  katalon-recorder validate recordings/ --selector-attribute data-testid`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to katalon-recorder.yaml (default: ./katalon-recorder.yaml if present)",
		},
		&cli.StringFlag{
			Name:    "selector-attribute",
			Usage:   "Prefer selectors containing this attribute (overrides the recording)",
			EnvVars: []string{"KATALON_SELECTOR_ATTRIBUTE"},
		},
	},
	Action: runValidate,
}

func runValidate(c *cli.Context) error {
	workspaceConfig, configDir, err := loadWorkspaceConfig(c.String("config"))
	if err != nil {
		return err
	}

	paths := c.Args().Slice()
	if len(paths) == 0 {
		paths, err = workspaceConfig.ResolveRecordings(configDir)
		if err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("at least one recording file or folder is required")
	}

	attr := firstNonEmpty(stringFlag(c, "selector-attribute"), workspaceConfig.SelectorAttribute)
	result := validator.New(validator.WithSelectorAttribute(attr)).Validate(paths...)
	printValidation(result)

	if !result.IsValid() {
		return fmt.Errorf("%d recording(s) failed validation", len(result.Errors))
	}
	return nil
}

func printValidation(result *validator.Result) {
	for _, w := range result.Warnings {
		fmt.Printf("  %s⚠%s %s\n", color(colorYellow), color(colorReset), w)
	}
	for _, err := range result.Errors {
		fmt.Printf("  %s✗%s %v\n", color(colorRed), color(colorReset), err)
	}
	fmt.Printf("\n%s%d valid%s, %s%d invalid%s, %d warning(s)\n",
		color(colorGreen), len(result.Files), color(colorReset),
		color(colorRed), len(result.Errors), color(colorReset),
		len(result.Warnings))
}
