// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"io"
)

// A Font represents a font resource referenced by a content stream.
// It knows how to turn raw string operands into Unicode text and
// glyph advance widths.
type Font struct {
	V Value

	name      string
	cid       bool
	vertical  bool
	toUnicode *CMap

	// Simple fonts: byte code to rune and to width.
	simple       [256]rune
	widths       []float64
	firstChar    int
	missingWidth float64

	// CID fonts (Type0): code to width from the /W array.
	cidWidths map[uint32]float64
	cidDW     float64
}

// BaseFont returns the font's /BaseFont name.
func (f *Font) BaseFont() string {
	return f.name
}

// newFont builds a Font from a font dictionary. Malformed entries
// degrade to defaults rather than failing; text from such fonts may be
// incomplete but extraction continues.
func newFont(v Value) *Font {
	f := &Font{
		V:            v,
		name:         v.Key("BaseFont").Name(),
		missingWidth: 500,
		cidDW:        1000,
	}
	if tu := v.Key("ToUnicode"); tu.Kind() == Stream {
		if data, err := io.ReadAll(tu.Reader()); err == nil {
			f.toUnicode = parseToUnicode(data)
		}
	}
	if v.Key("Subtype").Name() == "Type0" {
		f.initComposite(v)
		return f
	}
	f.initSimple(v)
	return f
}

func (f *Font) initSimple(v Value) {
	f.simple = buildSimpleEncoding(v.Key("Encoding"))
	f.firstChar = int(v.Key("FirstChar").Int64())
	if w := v.Key("Widths"); w.Kind() == Array {
		f.widths = make([]float64, w.Len())
		for i := range f.widths {
			f.widths[i] = w.Index(i).Float64()
		}
	}
	if mw := v.Key("FontDescriptor").Key("MissingWidth"); !mw.IsNull() {
		f.missingWidth = mw.Float64()
	}
}

func (f *Font) initComposite(v Value) {
	f.cid = true
	if enc := v.Key("Encoding"); enc.Kind() == Name {
		f.vertical = enc.Name() == "Identity-V"
	}
	desc := v.Key("DescendantFonts").Index(0)
	if desc.IsNull() {
		return
	}
	if dw := desc.Key("DW"); !dw.IsNull() {
		f.cidDW = dw.Float64()
	}
	f.cidWidths = parseCIDWidths(desc.Key("W"))
}

// parseCIDWidths expands a /W array, which alternates between
// "c [w1 w2 ...]" runs and "cfirst clast w" spans.
func parseCIDWidths(w Value) map[uint32]float64 {
	if w.Len() == 0 {
		return nil
	}
	m := make(map[uint32]float64)
	for i := 0; i < w.Len(); {
		c := w.Index(i)
		if c.Kind() != Integer {
			break
		}
		first := uint32(c.Int64())
		next := w.Index(i + 1)
		if next.Kind() == Array {
			for j := 0; j < next.Len(); j++ {
				m[first+uint32(j)] = next.Index(j).Float64()
			}
			i += 2
			continue
		}
		last := uint32(next.Int64())
		width := w.Index(i + 2).Float64()
		if last-first > 65535 {
			last = first + 65535
		}
		for cid := first; cid <= last; cid++ {
			m[cid] = width
		}
		i += 3
	}
	return m
}

// A glyphCode is one decoded code from a string operand: its Unicode
// text and its advance width in glyph space (thousandths of text space).
type glyphCode struct {
	code  uint32
	bytes int
	text  string
	width float64
}

// decodeString splits a raw Tj/TJ string operand into glyph codes.
// ToUnicode takes precedence over the font's declared encoding.
func (f *Font) decodeString(raw string) []glyphCode {
	if f.cid {
		return f.decodeComposite(raw)
	}
	out := make([]glyphCode, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		code := uint32(raw[i])
		g := glyphCode{code: code, bytes: 1, width: f.simpleWidth(code)}
		if f.toUnicode != nil {
			if s, ok := f.toUnicode.lookup(code); ok {
				g.text = s
				out = append(out, g)
				continue
			}
		}
		if r := f.simple[code]; r != 0 && r != noRune {
			g.text = string(r)
		}
		out = append(out, g)
	}
	return out
}

func (f *Font) decodeComposite(raw string) []glyphCode {
	var out []glyphCode
	cm := f.toUnicode
	if cm == nil {
		// Identity mapping: 2-byte codes, text recovered only through
		// widths-free identity (no usable Unicode without ToUnicode).
		for i := 0; i+1 < len(raw); i += 2 {
			code := uint32(raw[i])<<8 | uint32(raw[i+1])
			out = append(out, glyphCode{code: code, bytes: 2, width: f.cidWidth(code)})
		}
		return out
	}
	cm.Decode(raw, func(code uint32, nbytes int, text string) {
		out = append(out, glyphCode{
			code:  code,
			bytes: nbytes,
			text:  text,
			width: f.cidWidth(code),
		})
	})
	return out
}

func (f *Font) simpleWidth(code uint32) float64 {
	i := int(code) - f.firstChar
	if i >= 0 && i < len(f.widths) && f.widths[i] > 0 {
		return f.widths[i]
	}
	return f.missingWidth
}

func (f *Font) cidWidth(code uint32) float64 {
	if w, ok := f.cidWidths[code]; ok {
		return w
	}
	return f.cidDW
}

// Vertical reports whether the font uses vertical writing mode.
func (f *Font) Vertical() bool {
	return f.vertical
}
