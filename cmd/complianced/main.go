// Package main provides the complianced binary entry point. Complianced is
// the compliance decision service of the spec generation platform: it judges
// whether a described project may be generated and which regulatory controls
// its specification must include.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	// Register oracle providers via init()
	_ "github.com/assurecode/compliance/oracle/providers"

	"github.com/assurecode/compliance/config"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "complianced"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:           appName,
		Short:         "Compliance decision engine for spec generation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(serveCmd(&configPath, &verbose))
	root.AddCommand(analyzeCmd(&configPath, &verbose))
	root.AddCommand(versionCmd())

	return root
}

func serveCmd(configPath *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the compliance HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(*verbose)
			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return err
			}

			app, err := NewApp(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return app.Run(ctx)
		},
	}
}

func analyzeCmd(configPath *string, verbose *bool) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "analyze <description>",
		Short: "Run a one-shot compliance analysis and print the verdict",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(*verbose)
			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return err
			}

			app, err := NewApp(cfg, logger)
			if err != nil {
				return err
			}

			verdict := app.Engine().AnalyzeCompliance(cmd.Context(), title, args[0])

			out, err := json.MarshalIndent(verdict, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal verdict: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "project title")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, Version)
		},
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.NewLoader(logger).Load()
}
