// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tylerpriest/readiwi/internal/position"
	"github.com/tylerpriest/readiwi/pkg/types"
)

var positionCmd = &cobra.Command{
	Use:   "position",
	Short: "Save and restore reading positions",
	Long: `Position manages bookmarks. Save records a fingerprint of the text
around a byte offset; restore relocates that fingerprint in the stored
chapter, which may have been re-imported with edits since the save.`,
}

// --- save subcommand ---

var positionSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a reading position for a book",
	Long: `Save builds a text fingerprint around --offset in the given chapter
and stores it as the book's reading position, replacing any earlier one.`,
	RunE: runPositionSave,
}

func runPositionSave(cmd *cobra.Command, args []string) error {
	bookID, _ := cmd.Flags().GetString("book")
	chapter, _ := cmd.Flags().GetInt("chapter")
	offset, _ := cmd.Flags().GetInt("offset")
	if bookID == "" {
		return fmt.Errorf("--book is required")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	ch, err := store.GetChapter(ctx, bookID, chapter)
	if err != nil {
		return err
	}
	if offset < 0 || offset > len(ch.Content) {
		return fmt.Errorf("offset %d out of range for chapter %d (%d bytes)", offset, chapter, len(ch.Content))
	}

	tracker := position.NewTracker(positionConfig())
	pos := types.ReadingPosition{
		BookID:       bookID,
		ChapterIndex: chapter,
		Offset:       offset,
		Fingerprint:  tracker.CreateFingerprint(ch.Content, offset),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := store.SavePosition(ctx, pos); err != nil {
		return err
	}

	fmt.Printf("Saved position: %s chapter %d, offset %d\n", bookID, chapter, offset)
	fmt.Printf("Context: …%s⟨here⟩%s…\n", pos.Fingerprint.Before, pos.Fingerprint.After)
	return nil
}

// --- restore subcommand ---

var positionRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore a book's saved reading position",
	Long: `Restore loads the saved position, relocates its fingerprint in the
current chapter text, and prints the resolved offset with a confidence
score. A low-confidence result is printed with a warning; when no
strategy finds the position at all, restore suggests the top of the
chapter and exits non-zero.`,
	RunE: runPositionRestore,
}

func runPositionRestore(cmd *cobra.Command, args []string) error {
	bookID, _ := cmd.Flags().GetString("book")
	if bookID == "" {
		return fmt.Errorf("--book is required")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	pos, found, err := store.LoadPosition(ctx, bookID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no saved position for %s", bookID)
	}

	ch, err := store.GetChapter(ctx, bookID, pos.ChapterIndex)
	if err != nil {
		return err
	}

	tracker := position.NewTracker(positionConfig())
	cand, ok := tracker.RestorePosition(ch.Content, pos.Fingerprint)
	if !ok {
		fmt.Fprintf(os.Stderr, "Position lost: the saved context no longer appears in chapter %d.\n", pos.ChapterIndex)
		fmt.Fprintf(os.Stderr, "Start from the top of chapter %d (offset 0).\n", pos.ChapterIndex)
		return fmt.Errorf("position not found in %s chapter %d", bookID, pos.ChapterIndex)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cand)
	}

	fmt.Printf("%s chapter %d, offset %d (strategy %s, confidence %.2f)\n",
		bookID, pos.ChapterIndex, cand.Offset, cand.Strategy, cand.Confidence)
	if cand.Confidence < tracker.Config().MinConfidence {
		fmt.Println("Position is approximate: the chapter text has drifted substantially since the save.")
	}
	fmt.Printf("Context: …%s\n", snippetAt(ch.Content, cand.Offset, 60))
	return nil
}

// snippetAt returns up to n bytes of text starting at offset, flattened
// to a single line.
func snippetAt(text string, offset, n int) string {
	if offset < 0 || offset >= len(text) {
		return ""
	}
	end := offset + n
	if end > len(text) {
		end = len(text)
	}
	out := make([]byte, 0, end-offset)
	for i := offset; i < end; i++ {
		if text[i] == '\n' {
			out = append(out, ' ')
		} else {
			out = append(out, text[i])
		}
	}
	return string(out)
}

func init() {
	positionCmd.PersistentFlags().String("book", "", "book ID")

	positionSaveCmd.Flags().Int("chapter", 0, "chapter index")
	positionSaveCmd.Flags().Int("offset", 0, "byte offset within the chapter text")

	positionRestoreCmd.Flags().Bool("json", false, "output the candidate as JSON")

	positionCmd.AddCommand(positionSaveCmd)
	positionCmd.AddCommand(positionRestoreCmd)

	rootCmd.AddCommand(positionCmd)
}
