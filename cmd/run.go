package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"blogcast/events"
	"blogcast/podcast"
)

var runCmd = &cobra.Command{
	Use:   "run <url>",
	Short: "Generate a podcast episode for one blog URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		gen, err := podcast.NewFromConfig(cfg, store, events.GetBroker(), true)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		episode, err := gen.Generate(ctx, args[0])
		state, status := podcast.Outcome(err)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, status)
		if state != podcast.StateSuccess {
			return fmt.Errorf("podcast generation %s", state)
		}

		fmt.Fprintf(out, "\n📜 Podcast Script\n\n%s\n\n", episode.Script)
		if !episode.Style.OK() {
			fmt.Fprintln(out, "⚠️  Style notes:")
			for _, v := range episode.Style.Violations {
				fmt.Fprintf(out, "  - %s\n", v)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "🎧 Audio: %s (%d bytes)\n", episode.AudioPath, episode.AudioBytes)
		fmt.Fprintf(out, "📊 Run ID: %d | Status: success | Duration: %s\n", episode.RunID, episode.Duration)
		return nil
	},
}
