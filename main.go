package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/slgero/talk-with-me/cmd"
	"github.com/slgero/talk-with-me/config"
	"github.com/slgero/talk-with-me/corpus"
	"github.com/slgero/talk-with-me/progress"
	"github.com/slgero/talk-with-me/stats"
	"github.com/slgero/talk-with-me/writer"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "talk-with-me",
		Short: "Build a text or dialogue-pair corpus from a VK message export",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(c)
			if err != nil {
				return err
			}

			logger, cleanup, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = cleanup()
			}()

			slog.SetDefault(logger)
			logger.Info("starting talk-with-me", "messages", cfg.MessagesPath, "mode", cfg.Mode, "out", cfg.OutputPath)

			return run(cfg, logger)
		},
	}

	if err := config.RegisterFlags(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register CLI flags: %v\n", err)
		os.Exit(1)
	}
	rootCmd.AddCommand(cmd.NewArchiveStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	builder, err := corpus.New(corpus.Options{
		Root:          cfg.MessagesPath,
		Mode:          corpus.Mode(cfg.Mode),
		MinPages:      cfg.MinPages,
		MaxTurnLength: cfg.MaxTurnLength,
		Workers:       cfg.Workers,
	}, logger)
	if err != nil {
		return fmt.Errorf("corpus.New: %w", err)
	}

	showProgress := !cfg.NoProgress && cfg.LogLevel == "info"
	bar := progress.New(builder.ConversationCount(), showProgress)
	progress.NewReporter(builder, bar, logger)
	reporter := stats.NewReporter(builder, logger)

	built, err := builder.Run()
	bar.Stop()
	if err != nil {
		return fmt.Errorf("build corpus: %w", err)
	}

	if err := writer.Write(built, corpus.Mode(cfg.Mode), cfg.OutputPath); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}

	summary := reporter.Summary()
	logger.Info("corpus written", append([]any{"out", cfg.OutputPath}, summary.LogAttrs()...)...)
	return nil
}

func setupLogger(cfg config.Config) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}

	opts := &slog.HandlerOptions{Level: level}
	cleanup := func() error { return nil }

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, cleanup, err
		}

		logFilePath := filepath.Join(cfg.LogDir, fmt.Sprintf("talk-with-me-%s.log", time.Now().Format("20060102T150405")))
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, err
		}

		handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, file), opts)
		cleanup = func() error {
			return file.Close()
		}
		return slog.New(handler), cleanup, nil
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler), cleanup, nil
}
