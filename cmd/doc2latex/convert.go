// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/doc2latex/internal/container"
	"github.com/pdiddy/doc2latex/internal/convert"
	"github.com/pdiddy/doc2latex/internal/history"
	"github.com/pdiddy/doc2latex/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert PDF and Word files to zipped LaTeX projects",
	Long: `Convert turns each file into latex_project_<timestamp>.zip containing
main.tex, images/, and README.txt. PDF text is split into paragraphs and
pipe-delimited lines become tables. Word paragraphs keep their alignment
and font size; Word tables follow the paragraphs.

Files are converted in order. A failed file does not stop the batch, but
the command exits non-zero when any file fails.`,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := conversionConfig()
	if err != nil {
		return err
	}

	var opts []convert.Option
	if u := docUpgrader(ctx, cfg.DocImage, args); u != nil {
		opts = append(opts, convert.WithUpgrader(u))
	}
	if store := openHistory(); store != nil {
		defer store.Close()
		opts = append(opts, convert.WithRecorder(store))
	}

	result, err := convert.New(cfg, opts...).ConvertPaths(ctx, args, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}

// conversionConfig reads the conversion keys from flags, environment, and
// the config file.
func conversionConfig() (types.ConversionConfig, error) {
	var cfg types.ConversionConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.Logger = slog.Default()
	cfg.OnProgress = func(current, total int) {
		slog.Debug("progress", "current", current, "total", total)
	}
	return cfg, nil
}

// docUpgrader returns an upgrader for .doc inputs, or nil when there are
// none or no container runtime can serve them. Those files then fail as
// unsupported.
func docUpgrader(ctx context.Context, image string, paths []string) convert.Upgrader {
	needed := false
	for _, p := range paths {
		if convert.DetectFormat(p) == types.FormatDoc {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	rt, err := container.DetectRuntime(ctx)
	if err != nil {
		slog.Warn("legacy .doc files cannot be converted", "error", err)
		return nil
	}
	u, err := convert.NewDocUpgrader(ctx, rt, image)
	if err != nil {
		slog.Warn("legacy .doc files cannot be converted", "runtime", rt.Name(), "error", err)
		return nil
	}
	slog.Debug("using container runtime for .doc upgrade", "runtime", rt.Name(), "image", image)
	return u
}

// openHistory opens the configured history store. A missing or broken
// store only disables history.
func openHistory() *history.Store {
	store, err := history.Open(historyConfig())
	if err != nil {
		if !errors.Is(err, history.ErrDisabled) {
			slog.Warn("conversion history unavailable", "error", err)
		}
		return nil
	}
	return store
}

func historyConfig() types.HistoryConfig {
	return types.HistoryConfig{
		DBPath:     viper.GetString("history_db"),
		MaxResults: viper.GetInt("history_max_results"),
	}
}

func init() {
	convertCmd.Flags().String("output-dir", "", "directory for projects and archives (default: next to each source file)")
	convertCmd.Flags().String("image-width", types.DefaultImageWidth, "LaTeX width for every figure")
	convertCmd.Flags().Bool("keep-project", false, "keep the project directory after zipping")
	convertCmd.Flags().Bool("strict-extensions", false, "fail files whose extension has no extractor")
	convertCmd.Flags().Bool("png-fallback", false, "re-encode images pdflatex cannot include as PNG")
	convertCmd.Flags().String("doc-image", types.DefaultDocImage, "container image that upgrades .doc to .docx")

	for key, flag := range map[string]string{
		"output_dir":        "output-dir",
		"image_width":       "image-width",
		"keep_project":      "keep-project",
		"strict_extensions": "strict-extensions",
		"png_fallback":      "png-fallback",
		"doc_image":         "doc-image",
	} {
		viper.BindPFlag(key, convertCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd)
}
