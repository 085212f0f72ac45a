package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tylerpriest/readiwi/internal/position"
)

var reliabilityCmd = &cobra.Command{
	Use:   "reliability",
	Short: "Measure position-restoration reliability on a text",
	Long: `Reliability samples offsets across a text, runs a save/restore round
trip at each, and reports the success rate and error distribution. Point
it at a stored chapter with --book and --chapter, or at a plain text
file with --file.

Use it to tune fuzzy_stride and fuzzy_threshold for a source whose
chapters drift often.`,
	RunE: runReliability,
}

func init() {
	reliabilityCmd.Flags().String("book", "", "book ID to sample a chapter from")
	reliabilityCmd.Flags().Int("chapter", 0, "chapter index (with --book)")
	reliabilityCmd.Flags().String("file", "", "plain text file to measure instead of a stored chapter")
	reliabilityCmd.Flags().Int("samples", 0, "sample count (0 = use default)")
	reliabilityCmd.Flags().Bool("json", false, "output the report as JSON")

	rootCmd.AddCommand(reliabilityCmd)
}

func runReliability(cmd *cobra.Command, args []string) error {
	text, label, err := reliabilityText(cmd)
	if err != nil {
		return err
	}

	cfg := positionConfig()
	if samples, _ := cmd.Flags().GetInt("samples"); samples > 0 {
		cfg.HarnessSamples = samples
	}
	tracker := position.NewTracker(cfg)
	report := tracker.ValidateReliability(text)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("Reliability of %s (%d bytes, %d samples)\n", label, len(text), report.Samples)
	fmt.Printf("  success rate:   %.1f%%\n", report.SuccessRate*100)
	fmt.Printf("  failures:       %d\n", report.FailureCount)
	fmt.Printf("  average error:  %.1f bytes\n", report.AverageError)
	fmt.Printf("  max error:      %d bytes\n", report.MaxError)
	fmt.Printf("  average time:   %s\n", report.AverageTime)
	return nil
}

func reliabilityText(cmd *cobra.Command) (text, label string, err error) {
	file, _ := cmd.Flags().GetString("file")
	bookID, _ := cmd.Flags().GetString("book")

	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", "", err
		}
		return string(data), file, nil
	case bookID != "":
		chapter, _ := cmd.Flags().GetInt("chapter")
		store, err := openStore(cmd)
		if err != nil {
			return "", "", err
		}
		defer store.Close()

		ch, err := store.GetChapter(context.Background(), bookID, chapter)
		if err != nil {
			return "", "", err
		}
		return ch.Content, fmt.Sprintf("%s chapter %d", bookID, chapter), nil
	default:
		return "", "", fmt.Errorf("provide --book or --file")
	}
}
