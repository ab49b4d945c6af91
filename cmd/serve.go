package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"blogcast/api"
	"blogcast/events"
	"blogcast/podcast"
	"blogcast/runner"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI, API and scheduled runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}

		store, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		broker := events.GetBroker()
		gen, err := podcast.NewFromConfig(cfg, store, broker, false)
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.HandleFunc("/", api.Index())
		mux.HandleFunc("/api/generate", api.Generate(gen))
		mux.HandleFunc("/api/audio", api.Audio(gen.AudioPath()))
		mux.HandleFunc("/api/runs", api.GetRuns(store))
		mux.HandleFunc("/api/runs/", api.GetRun(store))
		mux.HandleFunc("/api/stats", api.GetStats(store))
		mux.HandleFunc("/api/stages", api.GetStages(gen.Stages()))
		mux.HandleFunc("/api/events", api.SSEHandler(broker))

		server := &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: corsMiddleware(mux),
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errGrp, gCtx := errgroup.WithContext(ctx)

		errGrp.Go(func() error {
			log.Printf("🚀 Starting blogcast server on port %s...", cfg.Port)
			log.Printf("🎙️  UI: http://localhost:%s", cfg.Port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		})

		errGrp.Go(func() error {
			<-gCtx.Done()
			log.Printf("🛑 Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})

		errGrp.Go(func() error {
			scheduler := runner.NewScheduler(cfg.Schedules, func(ctx context.Context, url string) error {
				_, err := gen.Generate(ctx, url)
				return err
			})
			return scheduler.Start(gCtx)
		})

		return errGrp.Wait()
	},
}

// corsMiddleware allows the UI to be served from a dev server
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides config and PORT)")
}
