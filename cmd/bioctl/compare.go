package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bioclock/internal/biometric"
)

var compareCmd = &cobra.Command{
	Use:   "compare <enrolled.json> <probe.json>",
	Short: "Score two feature vectors",
	Long: `Compare two feature vectors stored as JSON arrays of numbers and report
their cosine similarity and whether it clears the threshold.

Examples:
  # Score against the default threshold
  bioctl compare alice-enrolled.json alice-probe.json

  # Use a stricter threshold and JSON output
  bioctl compare --threshold 0.95 --json a.json b.json`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().Float64("threshold", biometric.DefaultThreshold, "Minimum similarity to count as a match")
	compareCmd.Flags().Bool("json", false, "Output as JSON")
}

// CompareResult is the outcome of scoring two vectors.
type CompareResult struct {
	Similarity float64 `json:"similarity"`
	Threshold  float64 `json:"threshold"`
	Match      bool    `json:"match"`
}

func runCompare(cmd *cobra.Command, args []string) error {
	threshold := mustGetFloat64(cmd, "threshold")
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold must be within [0,1], got %v", threshold)
	}

	a, err := readVector(args[0])
	if err != nil {
		return err
	}
	b, err := readVector(args[1])
	if err != nil {
		return err
	}

	result := compareVectors(a, b, threshold)
	return writeCompare(cmd.OutOrStdout(), result, mustGetBool(cmd, "json"))
}

func compareVectors(a, b biometric.Vector, threshold float64) CompareResult {
	similarity := biometric.Compare(a, b)
	return CompareResult{
		Similarity: similarity,
		Threshold:  threshold,
		Match:      similarity >= threshold,
	}
}

func readVector(path string) (biometric.Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var v biometric.Vector
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse %s as a JSON number array: %w", path, err)
	}
	return v, nil
}

func writeCompare(w io.Writer, result CompareResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	verdict := "no match"
	if result.Match {
		verdict = "match"
	}
	_, err := fmt.Fprintf(w, "similarity %.4f (threshold %.2f): %s\n", result.Similarity, result.Threshold, verdict)
	return err
}
