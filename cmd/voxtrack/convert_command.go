package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"voxtrack"
	"voxtrack/config"
	"voxtrack/pipeline"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		outDir     string
		format     string
		fit        bool
		copySource bool
		overwrite  bool
		ignoreDOP  bool
		encoding   string
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "convert <logfile>",
		Short: "Convert one track log into an output bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			logPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			info, err := os.Stat(logPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", logPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", logPath)
			}

			ok, err := voxtrack.DetectFile(logPath)
			if err != nil {
				return fmt.Errorf("sniff %s: %w", filepath.Base(logPath), err)
			}
			if !ok {
				return fmt.Errorf("%s does not look like a logger track file", filepath.Base(logPath))
			}

			// Flags win over the configuration file.
			if !cmd.Flags().Changed("format") {
				format = cfg.Export.Format
			}
			if !cmd.Flags().Changed("fit") {
				fit = cfg.Export.FIT
			}
			if !cmd.Flags().Changed("copy-source") {
				copySource = cfg.Export.CopySource
			}
			if !cmd.Flags().Changed("ignore-dop") {
				ignoreDOP = cfg.Import.IgnoreDOP
			}
			if !cmd.Flags().Changed("encoding") {
				encoding = cfg.Import.Encoding
			}
			if outDir == "" {
				outDir = strings.TrimSuffix(logPath, filepath.Ext(logPath)) + "_bundle"
			}

			res, err := pipeline.Run(pipeline.Options{
				LogPath:    logPath,
				OutDir:     outDir,
				Format:     format,
				FIT:        fit,
				CopySource: copySource,
				Overwrite:  overwrite,
				IgnoreDOP:  ignoreDOP,
				Encoding:   encoding,
				Logger:     log,
			})
			if err != nil {
				var ferr *voxtrack.FormatError
				if errors.As(err, &ferr) {
					return fmt.Errorf("%s: %w", filepath.Base(logPath), err)
				}
				return err
			}

			if quiet {
				return nil
			}
			out := cmd.OutOrStdout()
			for _, p := range []string{res.ManifestPath, res.GPXPath, res.PointsPath, res.FITPath, res.SourceCopyPath} {
				if p != "" {
					fmt.Fprintf(out, "wrote %s\n", p)
				}
			}
			if fit && res.FITPath == "" {
				fmt.Fprintln(out, "track.fit skipped: log contains no track points")
			}
			if cfg.Report.ShowSummary {
				fmt.Fprintln(out, renderStatsTable(res.Stats, res.Metrics))
				fmt.Fprintln(out, res.Summary)
			}
			reportWarnings(cmd.ErrOrStderr(), cfg, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: <logfile>_bundle)")
	cmd.Flags().StringVar(&format, "format", "", "Point table format, parquet or csv")
	cmd.Flags().BoolVar(&fit, "fit", false, "Also write the track as a FIT activity")
	cmd.Flags().BoolVar(&copySource, "copy-source", false, "Copy the input log into the bundle")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Allow writing into a non-empty output directory")
	cmd.Flags().BoolVar(&ignoreDOP, "ignore-dop", false, "Skip fix mode and precision columns")
	cmd.Flags().StringVar(&encoding, "encoding", "", "Input encoding (utf-8, latin1, windows-1252)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress conversion output")

	return cmd
}

func reportWarnings(w io.Writer, cfg *config.Config, res *pipeline.Result) {
	colorize := shouldColorize(w)
	warn := func(line string) {
		if colorize {
			fmt.Fprintln(w, ansiYellow+"warning: "+line+ansiReset)
			return
		}
		fmt.Fprintln(w, "warning: "+line)
	}
	if cfg.Report.WarnMissingAudio {
		for _, name := range res.MissingFiles {
			warn(fmt.Sprintf("audio file %s was not found next to the track log", name))
		}
	}
	if cfg.Report.WarnConversionErrors {
		if res.Stats.DateErrors > 0 {
			warn(fmt.Sprintf("%d timestamps could not be converted", res.Stats.DateErrors))
		}
		if res.Stats.DOPErrors > 0 {
			warn(fmt.Sprintf("%d precision values could not be converted", res.Stats.DOPErrors))
		}
	}
}
