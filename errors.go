// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"errors"
	"fmt"
)

// PDFError represents an error that occurred during PDF processing.
// It includes contextual information about where the error occurred.
type PDFError struct {
	Op   string // Operation that failed (e.g., "read xref", "process page")
	Page int    // Zero-indexed page ordinal, or -1 if not page-specific
	Err  error  // Underlying error
}

func (e *PDFError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("pdf: %s on page %d: %v", e.Op, e.Page, e.Err)
	}
	return fmt.Sprintf("pdf: %s: %v", e.Op, e.Err)
}

func (e *PDFError) Unwrap() error {
	return e.Err
}

// A ConfigError reports an extraction configuration that was rejected
// before any document processing began.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pdf: invalid configuration: %s: %s", e.Field, e.Reason)
}

// Common errors
var (
	// ErrInvalidPassword indicates the password does not decrypt the document.
	ErrInvalidPassword = errors.New("encrypted PDF: invalid password")

	// ErrNotExtractable indicates the document's permissions forbid text extraction.
	ErrNotExtractable = errors.New("encrypted PDF: text extraction not allowed")

	// ErrDeviceClosed indicates a page effect was applied to a closed output device.
	ErrDeviceClosed = errors.New("output device is closed")

	// ErrMalformedStream indicates a content stream is malformed.
	ErrMalformedStream = errors.New("malformed content stream")

	// ErrInvalidPage indicates an invalid page number or corrupted page.
	ErrInvalidPage = errors.New("invalid page")

	// ErrCorrupted indicates the PDF file structure is corrupted.
	ErrCorrupted = errors.New("PDF file is corrupted")

	// ErrUnsupportedEncryption indicates an encryption scheme this package cannot read.
	ErrUnsupportedEncryption = errors.New("unsupported encryption")
)

// wrapError wraps an error with operation context.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PDFError{Op: op, Page: -1, Err: err}
}

// wrapPageError wraps an error with page-specific context.
func wrapPageError(op string, page int, err error) error {
	if err == nil {
		return nil
	}
	return &PDFError{Op: op, Page: page, Err: err}
}
