package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/driftcap/narrativescan/internal/config"
	"github.com/driftcap/narrativescan/internal/models"
	"github.com/driftcap/narrativescan/internal/pipeline"
)

const version = "v0.3.0"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     "narrativescan",
		Short:   "Cluster token batches into ranked thematic narratives",
		Version: version,
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one pipeline pass over a token batch file",
		Long:  "Reads a JSON array of token descriptors, clusters them into narratives and prints the adaptively-weighted ranking.",
		RunE:  runScan,
	}
	scanCmd.Flags().String("input", "", "Path to the JSON batch file (required)")
	scanCmd.Flags().String("config", "", "Optional YAML config overlay")
	scanCmd.Flags().String("output", "table", "Output format (table|json)")
	scanCmd.Flags().Int64("seed", 0, "Fix the centroid strategy seed (0 = time-seeded)")
	scanCmd.Flags().Bool("no-adapt", false, "Disable weight adaptation for this pass")
	scanCmd.Flags().String("log-level", "info", "Log level (debug|info|warn|error)")
	_ = scanCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(scanCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")
	configPath, _ := cmd.Flags().GetString("config")
	output, _ := cmd.Flags().GetString("output")
	seed, _ := cmd.Flags().GetInt64("seed")
	noAdapt, _ := cmd.Flags().GetBool("no-adapt")
	levelName, _ := cmd.Flags().GetString("log-level")

	if level, err := zerolog.ParseLevel(levelName); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.Cluster.Seed = seed
	}
	if noAdapt {
		cfg.Scoring.AdaptEnabled = false
	}

	batch, err := readBatch(input)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, nil, nil)
	res, err := p.Run(context.Background(), batch)
	if err != nil {
		return err
	}

	switch output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	default:
		printTable(res)
		return nil
	}
}

func readBatch(path string) ([]models.TokenDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch %s: %w", path, err)
	}
	var batch []models.TokenDescriptor
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse batch %s: %w", path, err)
	}
	return batch, nil
}

func printTable(res *pipeline.RunResult) {
	fmt.Printf("Run %s — %d tokens, strategy %s, %d narratives, %d outliers\n\n",
		res.RunID, res.TokenCount, res.Strategy, len(res.Narratives), len(res.Outliers))

	fmt.Printf("%-4s %-26s %-10s %-10s %7s %7s %-8s\n",
		"RANK", "NAME", "THEME", "STAGE", "SCORE", "Δ", "TREND")
	for _, n := range res.Narratives {
		name := n.Score.Name
		if len(name) > 25 {
			name = name[:25]
		}
		theme, stage := "-", "-"
		if n.Profile != nil {
			if n.Profile.PrimaryTheme != "" {
				theme = n.Profile.PrimaryTheme
			}
			stage = string(n.Profile.Stage)
		}
		fmt.Printf("%-4d %-26s %-10s %-10s %7.1f %+7.1f %-8s\n",
			n.Score.Rank, name, theme, stage, n.Score.FinalScore, n.Score.Delta, n.Score.Trend)
	}

	if len(res.Diagnostics) > 0 {
		fmt.Printf("\nDiagnostics:\n  %s\n", strings.Join(res.Diagnostics, "\n  "))
	}
	if res.ScoringFallback {
		fmt.Println("\nNote: scorer fell back to strength-ordered ranking.")
	}
}
