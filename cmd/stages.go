package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"blogcast/config"
	"blogcast/runner"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Print the pipeline stages in execution order",
	RunE: func(cmd *cobra.Command, args []string) error {
		// listing stages needs no credentials, so the config is read unvalidated
		cfg, err := config.Read(configPath)
		if err != nil {
			return err
		}
		if stagesPath != "" {
			cfg.StagesPath = stagesPath
		}

		def, err := runner.LoadDefinition(cfg.StagesPath)
		if err != nil {
			return err
		}
		stages, err := def.Ordered()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, s := range stages {
			from := "request URL"
			if s.Upstream != "" {
				from = s.Upstream
			}
			fmt.Fprintf(out, "%d. %s (%s) <- %s\n", i+1, s.Name, s.Kind, from)
			if s.Role != "" {
				fmt.Fprintf(out, "   role: %s\n", strings.TrimSpace(s.Role))
			}
		}
		fmt.Fprintf(out, "\nminimum final length: %d characters\n", def.MinFinalLength)
		return nil
	},
}
