// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"fmt"
	"strconv"
)

// An OutputKind selects the output format of an extraction run.
type OutputKind int

const (
	OutputText OutputKind = iota // plain text, form feed between pages
	OutputXML                    // hierarchical layout XML
	OutputHTML                   // positioned HTML
	OutputTag                    // marked-content tag dump
)

func (k OutputKind) String() string {
	switch k {
	case OutputText:
		return "text"
	case OutputXML:
		return "xml"
	case OutputHTML:
		return "html"
	case OutputTag:
		return "tag"
	}
	return "OutputKind(" + strconv.Itoa(int(k)) + ")"
}

// ParseOutputKind converts an output format name to an OutputKind.
func ParseOutputKind(s string) (OutputKind, error) {
	switch s {
	case "text", "txt":
		return OutputText, nil
	case "xml":
		return OutputXML, nil
	case "html":
		return OutputHTML, nil
	case "tag":
		return OutputTag, nil
	}
	return 0, &ConfigError{Field: "Output", Reason: "unknown output kind " + strconv.Quote(s)}
}

// A Config controls an ExtractToWriter run. The zero value extracts
// all pages as UTF-8 plain text with default layout analysis.
type Config struct {
	// Output selects the output format.
	Output OutputKind

	// Codec names the character encoding of the output. Empty means
	// UTF-8.
	Codec string

	// LAParams tunes layout analysis for the text, xml, and html
	// outputs. Nil uses DefaultLAParams. The tag output never performs
	// layout analysis.
	LAParams *LAParams

	// PageNumbers selects pages by zero-based index. Nil or empty
	// selects all pages. Order and duplicates are ignored; the
	// document order always wins.
	PageNumbers []int

	// MaxPages caps the number of pages processed after selection.
	// Zero means no cap.
	MaxPages int

	// Password decrypts protected documents.
	Password string

	// Rotation is added to each page's intrinsic rotation, in degrees;
	// the sum is reduced modulo 360. Any value is accepted, though only
	// multiples of 90 change the rendered orientation.
	Rotation int

	// Scale multiplies coordinates in the html output. Zero means 1.
	Scale float64

	// LayoutMode selects the html rendering style: "normal", "exact",
	// or "loose". Empty means "normal".
	LayoutMode string

	// ImageDir, when non-empty, saves embedded images there during
	// extraction. Ignored by the tag output.
	ImageDir string

	// StripControl removes control characters from xml text content.
	StripControl bool

	// Debug enables verbose logging for the run.
	Debug bool

	// DisableCaching turns off cross-page caching of parsed objects
	// and resources.
	DisableCaching bool
}

// validate rejects configurations before any document processing
// begins.
func (c *Config) validate() error {
	switch c.Output {
	case OutputText, OutputXML, OutputHTML, OutputTag:
	default:
		return &ConfigError{Field: "Output", Reason: fmt.Sprintf("unknown output kind %d", int(c.Output))}
	}
	if c.Scale < 0 {
		return &ConfigError{Field: "Scale", Reason: "must be non-negative"}
	}
	switch c.LayoutMode {
	case "", "normal", "exact", "loose":
	default:
		return &ConfigError{Field: "LayoutMode", Reason: "unknown layout mode " + strconv.Quote(c.LayoutMode)}
	}
	if c.MaxPages < 0 {
		return &ConfigError{Field: "MaxPages", Reason: "must be non-negative"}
	}
	for _, n := range c.PageNumbers {
		if n < 0 {
			return &ConfigError{Field: "PageNumbers", Reason: "page indexes are zero-based and non-negative"}
		}
	}
	return nil
}
