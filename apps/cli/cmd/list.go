package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/giraftest/packages/core/config"
	"github.com/abdul-hamid-achik/giraftest/packages/giraf"
	"github.com/abdul-hamid-achik/giraftest/packages/http"
	"github.com/spf13/cobra"
)

var listSuiteFlag []string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List suites and their cases",
	Long: `List every suite with its cases in declaration order, their tags and
the cases they depend on.

Examples:
  giraftest list
  giraftest list --suite weektemplate`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func init() {
	listCmd.Flags().StringSliceVarP(&listSuiteFlag, "suite", "s", nil, "List only the named suites")
}

func listCommand(cmd *cobra.Command, args []string) error {
	e, err := giraf.NewEnv(config.DefaultConfig(), http.NewClient())
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	suites, err := giraf.Select(giraf.Suites(e), listSuiteFlag)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	out := cmd.OutOrStdout()
	for _, s := range suites {
		fmt.Fprintf(out, "\n%s:", s.Name)
		if s.Description != "" {
			fmt.Fprintf(out, " %s", s.Description)
		}
		fmt.Fprintln(out)
		for _, c := range s.Cases {
			fmt.Fprintf(out, "  - %s\n", c.Name)
			if len(c.Tags) > 0 {
				fmt.Fprintf(out, "    tags: %s\n", strings.Join(c.Tags, ", "))
			}
			if len(c.Depends) > 0 {
				fmt.Fprintf(out, "    depends: %s\n", strings.Join(c.Depends, ", "))
			}
		}
	}
	return nil
}
