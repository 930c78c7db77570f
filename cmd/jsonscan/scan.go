package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Crescent617/jsonscan/internal/config"
	"github.com/Crescent617/jsonscan/jsonpath"
)

var (
	patternsFile string
	withPath     bool
)

func init() {
	scanCmd.Flags().StringVar(&patternsFile, "patterns",
		envDefault("JSONSCAN_PATTERNS_FILE", ""), "path to a pattern-set YAML file")
	scanCmd.Flags().BoolVar(&withPath, "with-path", false,
		"include the materialized match path in output (overrides the config file's with_path)")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan [input.json]",
	Short: "Run a pattern-set scan over a JSON file and print matches as JSON lines",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

// matchLine is the CLI's own output envelope, one JSON line per match;
// the scanner itself never produces JSON, only byte offsets.
type matchLine struct {
	RunID   string `json:"run_id"`
	Pattern int    `json:"pattern"`
	Begin   uint64 `json:"begin"`
	End     uint64 `json:"end"`
	Kind    string `json:"kind"`
	Path    []any  `json:"path,omitempty"`
}

func pathToJSON(path []jsonpath.PathElement) []any {
	if path == nil {
		return nil
	}
	out := make([]any, len(path))
	for i, e := range path {
		if e.IsKey {
			out[i] = e.Key
		} else {
			out[i] = e.Index
		}
	}
	return out
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	runID := uuid.New().String()

	if patternsFile == "" {
		return fmt.Errorf("scan: --patterns is required (or set JSONSCAN_PATTERNS_FILE)")
	}

	patterns, opts, err := config.Load(patternsFile)
	if err != nil {
		logger.Error("scan.error", "run_id", runID, "error", err.Error())
		return err
	}
	if withPath {
		opts.WithPath = true
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		err = fmt.Errorf("scan: read %s: %w", args[0], err)
		logger.Error("scan.error", "run_id", runID, "error", err.Error())
		return err
	}

	logger.Info("scan.start", "run_id", runID, "input", args[0], "patterns", len(patterns))

	buckets, err := jsonpath.ScanPatterns(data, patterns, opts)
	if err != nil {
		logger.Error("scan.error", "run_id", runID, "error", err.Error())
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	total := 0
	for pi, bucket := range buckets {
		for _, res := range bucket {
			line := matchLine{
				RunID:   runID,
				Pattern: pi,
				Begin:   res.Match.Begin,
				End:     res.Match.End,
				Kind:    res.Match.Kind.String(),
				Path:    pathToJSON(res.Path),
			}
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("scan: encode match: %w", err)
			}
			logger.Debug("scan.match", "run_id", runID, "pattern", pi,
				"begin", res.Match.Begin, "end", res.Match.End)
			total++
		}
	}

	logger.Info("scan.done", "run_id", runID, "matches", total)
	return nil
}
