package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/giraftest/packages/core/config"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
	yamlInit  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration",
	Long: `Write a configuration file with the default base URL and seeded
accounts, and a .env.example listing the GIRAF_* variables.

This creates:
  - giraftest.config.json (or giraftest.yaml with --yaml)
  - .env.example

Examples:
  giraftest init
  giraftest init --yaml --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
	initCmd.Flags().BoolVar(&yamlInit, "yaml", false, "Write YAML instead of JSON")
}

const envExample = `# Variables read by giraftest run; the process environment wins over this file
GIRAF_BASE_URL=http://localhost:5000
GIRAF_API_VERSION=v1
GIRAF_TIMEOUT=30s
# GIRAF_RATE_LIMIT=10
# GIRAF_GUARDIAN_USERNAME=Graatand
# GIRAF_GUARDIAN_PASSWORD=password
# GIRAF_DEPARTMENT_USERNAME=Tobias
# GIRAF_DEPARTMENT_PASSWORD=password
# GIRAF_CITIZEN_USERNAME=Kurt
# GIRAF_CITIZEN_PASSWORD=password
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	name := "giraftest.config.json"
	if yamlInit {
		name = "giraftest.yaml"
	}
	configFile := filepath.Join(cwd, name)
	envFile := filepath.Join(cwd, ".env.example")

	if !forceInit {
		for _, f := range []string{configFile, envFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	if err := config.DefaultConfig().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(envFile, []byte(envExample), 0644); err != nil {
		return fmt.Errorf("failed to create env example: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", envFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nStart the fake server with: giraftest mock\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Then run the suites with:    giraftest run\n")
	return nil
}
