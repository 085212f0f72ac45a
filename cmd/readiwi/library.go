// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tylerpriest/readiwi/internal/library"
	"github.com/tylerpriest/readiwi/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the book library (list, show, search, export)",
	Long: `Library manages the local SQLite collection built by import. Use
subcommands to list stored books, inspect one book's chapters, run
full-text searches over chapter content, or export a manifest.`,
}

// --- list subcommand ---

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all books in the library",
	RunE:  runLibraryList,
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	books, err := store.ListBooks(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(books)
	}

	if len(books) == 0 {
		fmt.Println("Library is empty.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-30s  %-40s  %-20s  %s\n", "ID", "Title", "Author", "Chapters")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, b := range books {
		fmt.Fprintf(os.Stdout, "%-30s  %-40s  %-20s  %d\n",
			truncate(b.ID, 30), truncate(b.Title, 40), truncate(b.Author, 20), b.ChapterCount)
	}
	fmt.Fprintf(os.Stdout, "\n%d book(s)\n", len(books))
	return nil
}

// --- show subcommand ---

var libraryShowCmd = &cobra.Command{
	Use:   "show [book-id]",
	Short: "Show one book's metadata and chapter list",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryShow,
}

func runLibraryShow(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	book, err := store.GetBook(ctx, args[0])
	if err != nil {
		return err
	}
	chapters, err := store.ListChapters(ctx, book.ID)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		entry := library.ExportEntry{Book: book, Chapters: chapters}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	}

	fmt.Printf("%s by %s\n", book.Title, book.Author)
	fmt.Printf("ID:      %s\n", book.ID)
	fmt.Printf("Source:  %s\n", book.SourceURL)
	fmt.Printf("Added:   %s\n", book.CreatedAt.Format("2006-01-02"))
	fmt.Printf("\n%-8s  %-50s  %s\n", "Chapter", "Title", "Words")
	fmt.Println(strings.Repeat("-", 70))
	for _, ch := range chapters {
		fmt.Printf("%-8d  %-50s  %d\n", ch.Index, truncate(ch.Title, 50), ch.WordCount)
	}
	return nil
}

// --- search subcommand ---

var librarySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over chapter content",
	Long: `Search runs an FTS5 full-text query over stored chapter text and
prints matching chapters with a snippet around the first match. Use
--book to scope the search to one book.`,
	RunE: runLibrarySearch,
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	bookID, _ := cmd.Flags().GetString("book")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := library.QueryOptions{
		Query:      strings.Join(args, " "),
		BookID:     bookID,
		MaxResults: limit,
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search terms or --book")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []library.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-25s  %-8s  %-30s  %s\n",
		"Rank", "Book", "Chapter", "Title", "Snippet")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-25s  %-8d  %-30s  %s\n",
			i+1, truncate(r.BookID, 25), r.Chapter, truncate(r.Title, 30),
			strings.ReplaceAll(r.Snippet, "\n", " "))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library manifest to YAML or JSON",
	Long: `Export writes a manifest of the library (books, chapter metadata, and
saved positions, without chapter text) to library/index/export.yaml or
export.json.`,
	RunE: runLibraryExport,
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	dir := libraryDir(cmd)
	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/index/export.yaml\n", dir)
	case "json":
		if err := store.ExportJSON(context.Background()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/index/export.json\n", dir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*library.Store, error) {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return library.NewStore(types.LibraryConfig{
		LibraryDir: libraryDir(cmd),
		MaxResults: maxResults,
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	libraryCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")
	libraryCmd.PersistentFlags().Bool("json", false, "output as JSON")

	librarySearchCmd.Flags().String("book", "", "restrict the search to one book ID")
	librarySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")

	libraryExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryShowCmd)
	libraryCmd.AddCommand(librarySearchCmd)
	libraryCmd.AddCommand(libraryExportCmd)

	rootCmd.AddCommand(libraryCmd)
}
