// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command minetext extracts text from PDF files.
//
// With a single input the result goes to standard output or the file
// named by -o. With several inputs each result lands next to its
// source with the extension of the chosen format, and files are
// processed concurrently.
//
// Defaults can come from the environment (MINETEXT_PASSWORD,
// MINETEXT_OUTPUT), optionally loaded from a .env file.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/minetext/pdf"
)

var (
	flagOutput     string
	flagFormat     string
	flagCodec      string
	flagPassword   string
	flagPages      string
	flagMaxPages   int
	flagRotation   int
	flagScale      float64
	flagLayoutMode string
	flagImageDir   string
	flagStripCtrl  bool
	flagDebug      bool
	flagNoCache    bool
	flagWorkers    int

	flagWordMargin float64
	flagCharMargin float64
	flagLineMargin float64
	flagNoLayout   bool
)

func main() {
	// A .env in the working directory supplies defaults; absence is fine.
	godotenv.Load()

	root := &cobra.Command{
		Use:           "minetext [flags] file.pdf...",
		Short:         "Extract text from PDF files",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	fl := root.Flags()
	fl.StringVarP(&flagOutput, "output", "o", os.Getenv("MINETEXT_OUTPUT"), "output file (default stdout)")
	fl.StringVarP(&flagFormat, "format", "t", "text", "output format: text, xml, html, tag")
	fl.StringVarP(&flagCodec, "codec", "c", "", "output character encoding (default utf-8)")
	fl.StringVarP(&flagPassword, "password", "P", os.Getenv("MINETEXT_PASSWORD"), "password for encrypted files")
	fl.StringVarP(&flagPages, "pages", "p", "", "pages to extract, e.g. 1,3-5 (default all)")
	fl.IntVarP(&flagMaxPages, "maxpages", "m", 0, "maximum number of pages to extract (0 = all)")
	fl.IntVarP(&flagRotation, "rotation", "R", 0, "extra rotation in degrees, multiple of 90")
	fl.Float64Var(&flagScale, "scale", 1, "coordinate scale for html output")
	fl.StringVarP(&flagLayoutMode, "layoutmode", "Y", "normal", "html layout mode: normal, exact, loose")
	fl.StringVarP(&flagImageDir, "output-dir", "O", "", "directory to save embedded images")
	fl.BoolVarP(&flagStripCtrl, "strip-control", "S", false, "strip control characters from xml output")
	fl.BoolVarP(&flagDebug, "debug", "d", false, "enable debug logging")
	fl.BoolVar(&flagNoCache, "no-cache", false, "disable resource caching")
	fl.IntVarP(&flagWorkers, "workers", "j", 4, "concurrent files when extracting several")
	fl.Float64VarP(&flagWordMargin, "word-margin", "W", 0.1, "word margin for layout analysis")
	fl.Float64VarP(&flagCharMargin, "char-margin", "M", 2.0, "char margin for layout analysis")
	fl.Float64VarP(&flagLineMargin, "line-margin", "L", 0.5, "line margin for layout analysis")
	fl.BoolVarP(&flagNoLayout, "no-layout", "n", false, "skip layout analysis tuning, use defaults")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "minetext:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
	if flagDebug {
		log = log.Level(zerolog.DebugLevel)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		out := os.Stdout
		if flagOutput != "" && flagOutput != "-" {
			f, err := os.Create(flagOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return extractOne(args[0], out, cfg, log)
	}

	var g errgroup.Group
	g.SetLimit(flagWorkers)
	for _, name := range args {
		name := name
		g.Go(func() error {
			dst := outputName(name, cfg.Output)
			f, err := os.Create(dst)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := extractOne(name, f, cfg, log); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			log.Info().Str("input", name).Str("output", dst).Msg("extracted")
			return nil
		})
	}
	return g.Wait()
}

func extractOne(name string, w io.Writer, cfg pdf.Config, log zerolog.Logger) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	log.Debug().Str("input", name).Str("format", cfg.Output.String()).Msg("extracting")
	return pdf.ExtractToWriter(f, w, cfg)
}

func buildConfig() (pdf.Config, error) {
	kind, err := pdf.ParseOutputKind(flagFormat)
	if err != nil {
		return pdf.Config{}, err
	}
	pages, err := parsePageRange(flagPages)
	if err != nil {
		return pdf.Config{}, err
	}
	la := pdf.DefaultLAParams()
	if !flagNoLayout {
		la.WordMargin = flagWordMargin
		la.CharMargin = flagCharMargin
		la.LineMargin = flagLineMargin
	}
	return pdf.Config{
		Output:         kind,
		Codec:          flagCodec,
		LAParams:       la,
		PageNumbers:    pages,
		MaxPages:       flagMaxPages,
		Password:       flagPassword,
		Rotation:       flagRotation,
		Scale:          flagScale,
		LayoutMode:     flagLayoutMode,
		ImageDir:       flagImageDir,
		StripControl:   flagStripCtrl,
		Debug:          flagDebug,
		DisableCaching: flagNoCache,
	}, nil
}

// parsePageRange parses "1,3-5" (1-based, as users count pages) into
// zero-based page indexes.
func parsePageRange(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi := part, part
		if i := strings.IndexByte(part, '-'); i >= 0 {
			lo, hi = part[:i], part[i+1:]
		}
		a, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("bad page range %q", part)
		}
		b, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("bad page range %q", part)
		}
		if a < 1 || b < a {
			return nil, fmt.Errorf("bad page range %q", part)
		}
		for n := a; n <= b; n++ {
			pages = append(pages, n-1)
		}
	}
	return pages, nil
}

func outputName(input string, kind pdf.OutputKind) string {
	ext := ".txt"
	switch kind {
	case pdf.OutputXML, pdf.OutputTag:
		ext = ".xml"
	case pdf.OutputHTML:
		ext = ".html"
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ext
}
