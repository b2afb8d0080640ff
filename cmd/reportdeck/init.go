package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/reportdeck/reportdeck/internal/setup"
	"github.com/reportdeck/reportdeck/pkg/errors"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or check the configuration file",
	Long: `Create the configuration file with default settings when it is missing,
then validate it: config values, the report content file, and whether a
Chrome binary is available for PDF export.

Use --yes to create the file without a prompt.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolP("yes", "y", false, "create a missing config file without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

	i := setup.New(setup.Options{
		ConfigPath:  configPath,
		Yes:         yes,
		Interactive: isatty.IsTerminal(os.Stdin.Fd()),
	})
	result, err := i.Run()
	if err != nil {
		return err
	}
	i.Print(result)

	if !result.Success() {
		os.Exit(errors.ExitCodeConfigValidation)
	}
	return nil
}
