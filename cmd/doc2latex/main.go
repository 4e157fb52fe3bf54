// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the doc2latex CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the doc2latex CLI.
var rootCmd = &cobra.Command{
	Use:   "doc2latex",
	Short: "Convert PDF and Word documents into LaTeX projects",
	Long: `doc2latex converts PDF, .docx, and legacy .doc files into a zipped LaTeX
project: main.tex, an images/ directory with every extracted image, and a
README. The archive is written next to the source file as
latex_project_<timestamp>.zip.

Legacy .doc files are upgraded to .docx through a container image, so they
need docker or podman.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(viper.GetBool("verbose"))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./doc2latex.yaml or ~/.config/doc2latex/doc2latex.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug detail to stderr")
	rootCmd.PersistentFlags().String("history-db", "", "conversion history database (empty string disables history)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("history_db", rootCmd.PersistentFlags().Lookup("history-db"))

	if home, err := os.UserHomeDir(); err == nil {
		viper.SetDefault("history_db", filepath.Join(home, ".local", "share", "doc2latex", "history.db"))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("doc2latex")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "doc2latex"))
		}
	}

	viper.SetEnvPrefix("DOC2LATEX")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// initLogger installs a text handler on stderr as the default logger.
func initLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
