// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// High-level extraction entry points: a stream-to-sink orchestrator
// and a one-call path-to-string convenience.

package pdf

import (
	"io"
	"os"
	"strings"
)

// ExtractToWriter extracts the document in rs to w according to cfg.
//
// Configuration is validated before the document is opened; page
// enumeration (including password checking and permission checks)
// happens before any page is rendered; and the output device is closed
// exactly once after the last processed page, whether or not an error
// occurred. The first error aborts the run and is returned.
func ExtractToWriter(rs io.ReadSeeker, w io.Writer, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	out, err := codecWriter(w, cfg.Codec)
	if err != nil {
		return err
	}
	log := runLogger(cfg.Debug)

	pages, err := Pages(rs, &PageOptions{
		PageNumbers:      cfg.PageNumbers,
		MaxPages:         cfg.MaxPages,
		Password:         cfg.Password,
		DisableCaching:   cfg.DisableCaching,
		CheckExtractable: true,
	})
	if err != nil {
		return err
	}
	log.Debug().
		Int("pages", len(pages)).
		Str("output", cfg.Output.String()).
		Msg("starting extraction")

	var images *ImageWriter
	if cfg.ImageDir != "" && cfg.Output != OutputTag {
		images = NewImageWriter(cfg.ImageDir)
	}

	var dev Device
	switch cfg.Output {
	case OutputText:
		dev = NewTextConverter(out, cfg.LAParams, images)
	case OutputXML:
		dev = NewXMLConverter(out, cfg.LAParams, images, cfg.StripControl)
	case OutputHTML:
		dev = NewHTMLConverter(out, cfg.LAParams, images, cfg.Scale, cfg.LayoutMode)
	case OutputTag:
		dev = NewTagConverter(out)
	}

	rm := NewResourceManager(!cfg.DisableCaching)
	ip := NewInterpreter(rm, dev)

	var runErr error
	for _, p := range pages {
		p.Rotation = normalizeRotation(p.Rotation + cfg.Rotation)
		log.Debug().
			Int("page", p.Index).
			Int("rotation", p.Rotation).
			Msg("processing page")
		if err := ip.ProcessPage(p); err != nil {
			runErr = wrapPageError("process page", p.Index, err)
			break
		}
	}

	if cerr := dev.Close(); cerr != nil && runErr == nil {
		runErr = wrapError("close device", cerr)
	}
	// A transcoding writer buffers partial sequences; flush it.
	if c, ok := out.(io.Closer); ok && out != io.Writer(w) {
		if cerr := c.Close(); cerr != nil && runErr == nil {
			runErr = wrapError("flush output", cerr)
		}
	}
	return runErr
}

// TextOptions controls ExtractText. The zero value extracts every page
// with default layout analysis.
type TextOptions struct {
	Password       string
	Codec          string // output character encoding; empty means UTF-8
	PageNumbers    []int  // zero-based page indexes; nil selects all
	MaxPages       int
	LAParams       *LAParams // nil uses DefaultLAParams
	DisableCaching bool
}

// ExtractText extracts the document at path as plain text. Pages are
// separated by form feeds. Page rotation follows each page's intrinsic
// /Rotate value; no extra rotation is applied.
func ExtractText(path string, opts *TextOptions) (string, error) {
	if opts == nil {
		opts = &TextOptions{}
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	la := opts.LAParams
	if la == nil {
		la = DefaultLAParams()
	}
	var sb strings.Builder
	err = ExtractToWriter(f, &sb, Config{
		Output:         OutputText,
		Codec:          opts.Codec,
		LAParams:       la,
		PageNumbers:    opts.PageNumbers,
		MaxPages:       opts.MaxPages,
		Password:       opts.Password,
		DisableCaching: opts.DisableCaching,
	})
	return sb.String(), err
}
