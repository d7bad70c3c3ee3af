package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/resumeparse/internal/config"
	"github.com/dgallion1/resumeparse/internal/parser"
	"github.com/dgallion1/resumeparse/internal/pipeline"
	"github.com/dgallion1/resumeparse/internal/resume"
)

var parsePretty bool

var parseCmd = &cobra.Command{
	Use:   "parse FILE...",
	Short: "Extract fields from résumé files and print them as JSON",
	Long:  "Parse each file and print one JSON result per file, in argument order. Files are parsed concurrently.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parsePretty, "pretty", false, "Indent JSON output")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	opts := parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}
	return parseFiles(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, parsePretty, opts)
}

// parseFiles parses paths concurrently and writes one result per file to
// out in the order given. Per-file failures go to errOut; the returned error
// reports how many files failed.
func parseFiles(ctx context.Context, out, errOut io.Writer, paths []string, pretty bool, opts parser.Options) error {
	results := make([]*resume.Result, len(paths))
	errs := make([]error, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				errs[i] = err
				return nil
			}
			doc, err := pipeline.ParseDocument(data, path, opts)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = &doc.Result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}
	failed := 0
	for i, path := range paths {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(errOut, "%s: %v\n", path, errs[i])
			continue
		}
		if err := enc.Encode(results[i]); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}
