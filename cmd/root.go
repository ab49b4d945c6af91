package cmd

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion records the build version shown by the version command
func SetVersion(v string) {
	version = v
}

var (
	configPath string
	stagesPath string
)

var rootCmd = &cobra.Command{
	Use:   "blogcast",
	Short: "blogcast turns blog posts into short podcast episodes",
	Long: `blogcast extracts a blog post, restructures it into a spoken summary with a language
model, and voices the result with a text-to-speech service.

Configuration is read from config.yml and .env in the working directory. Run history
is kept in SQLite under the data directory.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&stagesPath, "stages", "", "Path to a stage definition file (default: built-in stages)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stagesCmd)
}
