package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Config captures all command-line options required to build a corpus.
type Config struct {
	MessagesPath  string
	Mode          string
	MinPages      int
	MaxTurnLength int
	OutputPath    string
	Workers       int
	LogLevel      string
	LogDir        string
	NoProgress    bool
}

// RegisterFlags attaches all CLI flags to the provided command.
func RegisterFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	flags.String("messages", "", "Path to the export's messages folder")
	flags.String("mode", "dialogue-pairs", "Corpus shape: text-generation or dialogue-pairs")
	flags.Int("min-pages", 2, "Skip conversations with fewer message pages than this")
	flags.Int("max-turn-length", 10, "Drop pairs whose turns reach this many tokens")
	flags.String("out", "corpus.jsonl", "Output file, or - for stdout")
	flags.Int("workers", 4, "Conversations processed in parallel")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (also logs to stdout)")
	flags.Bool("no-progress", false, "Disable the progress bar")

	return cmd.MarkFlagRequired("messages")
}

// LoadConfig converts the parsed Cobra flags into a Config struct with
// validation.
func LoadConfig(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	messagesPath, err := flags.GetString("messages")
	if err != nil {
		return Config{}, err
	}
	mode, err := flags.GetString("mode")
	if err != nil {
		return Config{}, err
	}
	minPages, err := flags.GetInt("min-pages")
	if err != nil {
		return Config{}, err
	}
	maxTurnLength, err := flags.GetInt("max-turn-length")
	if err != nil {
		return Config{}, err
	}
	outputPath, err := flags.GetString("out")
	if err != nil {
		return Config{}, err
	}
	workers, err := flags.GetInt("workers")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}
	noProgress, err := flags.GetBool("no-progress")
	if err != nil {
		return Config{}, err
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}

	cfg := Config{
		MessagesPath:  messagesPath,
		Mode:          mode,
		MinPages:      minPages,
		MaxTurnLength: maxTurnLength,
		OutputPath:    outputPath,
		Workers:       workers,
		LogLevel:      logLevel,
		LogDir:        logDir,
		NoProgress:    noProgress,
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	if cfg.MessagesPath == "" {
		return fmt.Errorf("--messages is required")
	}
	switch cfg.Mode {
	case "text-generation", "dialogue-pairs":
	default:
		return fmt.Errorf("invalid --mode: %s", cfg.Mode)
	}
	if cfg.MinPages < 1 {
		return fmt.Errorf("--min-pages must be at least 1")
	}
	if cfg.MaxTurnLength < 1 {
		return fmt.Errorf("--max-turn-length must be at least 1")
	}
	if cfg.OutputPath == "" {
		return fmt.Errorf("--out must not be empty")
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("--workers must be at least 1")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}
