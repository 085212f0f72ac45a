// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the readiwi CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tylerpriest/readiwi/internal/secrets"
	"github.com/tylerpriest/readiwi/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds per-site cookies loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the readiwi CLI.
var rootCmd = &cobra.Command{
	Use:   "readiwi",
	Short: "Web-novel library with drift-tolerant reading positions",
	Long: `readiwi imports web novels into a local SQLite library and tracks
reading positions that survive edits to the source text. Positions are
saved as text fingerprints rather than raw offsets, so a re-imported
chapter with corrected typos or inserted author notes still restores to
the right sentence.

Each concern is a subcommand: import fetches books, library manages the
stored collection, position saves and restores bookmarks, and
reliability measures how well restoration holds up on a given text.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			hosts := make([]string, 0, len(s))
			for k := range s {
				hosts = append(hosts, k)
			}
			sort.Strings(hosts)
			fmt.Fprintf(os.Stderr, "Loaded cookies for: %v\n", hosts)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./readiwi.yaml or ~/.config/readiwi/config.yaml)")
	rootCmd.PersistentFlags().String("library-dir", "", "base directory for the library (default: library)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("readiwi")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "readiwi"))
		}
	}

	viper.SetEnvPrefix("READIWI")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// libraryDir resolves the library directory from the flag, the config
// file, or the built-in default, in that order.
func libraryDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("library-dir"); dir != "" {
		return dir
	}
	if dir := viper.GetString("library.library_dir"); dir != "" {
		return dir
	}
	return "library"
}

// positionConfig builds the tracker configuration from the config file.
// Unset fields stay zero and fall back to package defaults.
func positionConfig() types.PositionConfig {
	return types.PositionConfig{
		ContextWindow:  viper.GetInt("position.context_window"),
		FuzzyStride:    viper.GetInt("position.fuzzy_stride"),
		FuzzyThreshold: viper.GetFloat64("position.fuzzy_threshold"),
		MinConfidence:  viper.GetFloat64("position.min_confidence"),
		HarnessSamples: viper.GetInt("position.harness_samples"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
