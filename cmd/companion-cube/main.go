// Package main is the entry point for the Companion Cube daemon.
//
// Usage:
//
//	companion-cube            - Start the companion daemon
//	companion-cube daemon     - Start the companion daemon
//	companion-cube check      - Run a single activity check
//	companion-cube summary    - Print today's summary
//	companion-cube ping       - Test connections and exit
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/HandsomeHarry/companion-cube/internal/companion"
	"github.com/HandsomeHarry/companion-cube/internal/config"
	"github.com/HandsomeHarry/companion-cube/internal/server"
	"github.com/HandsomeHarry/companion-cube/internal/storage"
)

const version = "0.2.0"

var (
	flagMode     string
	flagInterval int
	flagModel    string
	flagVerbose  bool
	flagServe    bool
)

func main() {
	root := &cobra.Command{
		Use:     "companion-cube",
		Short:   "A supportive activity companion for ADHD brains",
		Long:    "Companion Cube watches your activity through ActivityWatch and checks in with supportive nudges when you drift, without judgment.",
		Version: version,
	}

	root.PersistentFlags().StringVar(&flagMode, "mode", "", "operating mode: ghost, coach, study_buddy, weekend")
	root.PersistentFlags().IntVar(&flagInterval, "interval", 0, "check interval in seconds")
	root.PersistentFlags().StringVar(&flagModel, "model", "", "Ollama model to use")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "print per-check analysis details")

	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Start the companion daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon()
		},
	}
	daemonCmd.Flags().BoolVar(&flagServe, "serve", false, "expose the local status API")

	root.AddCommand(daemonCmd)
	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Run a single activity check and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Print today's activity summary and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Test connections to ActivityWatch and Ollama",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPing()
		},
	})

	// Bare invocation starts the daemon.
	root.RunE = daemonCmd.RunE

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if flagMode != "" {
		cfg.Mode = flagMode
	}
	if flagInterval > 0 {
		cfg.CheckIntervalSeconds = flagInterval
	}
	if flagModel != "" {
		cfg.Ollama.Model = flagModel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens persistent storage, or logs and returns nil so the
// companion can still run without it.
func openStore(cfg *config.Config) *storage.Store {
	if err := cfg.EnsureStorageDir(); err != nil {
		log.Printf("[storage] Cannot create storage dir: %v", err)
		return nil
	}
	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Printf("[storage] Disabled: %v", err)
		return nil
	}
	return store
}

func runDaemon() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	comp := companion.New(cfg, store, flagVerbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagServe || cfg.Server.Enabled {
		srv := server.New(comp, store, cfg.Server.Addr, version)
		go func() {
			log.Printf("[server] Status API on http://%s", cfg.Server.Addr)
			if err := srv.Start(); err != nil {
				log.Printf("[server] %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	return comp.Run(ctx)
}

func runCheck() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	comp := companion.New(cfg, nil, true)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := comp.TestConnections(ctx); err != nil {
		return err
	}
	return comp.CheckActivity(ctx, time.Now())
}

func runSummary() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	comp := companion.New(cfg, store, flagVerbose)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	return comp.FinishDay(ctx)
}

func runPing() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	comp := companion.New(cfg, nil, flagVerbose)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := comp.TestConnections(ctx); err != nil {
		return err
	}
	fmt.Println("All set.")
	return nil
}
