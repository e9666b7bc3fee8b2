// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Layout analysis: grouping positioned glyphs into lines and text
// boxes, and ordering the boxes for reading.

package pdf

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// LAParams holds layout analysis parameters. The zero value disables
// analysis; use DefaultLAParams for the standard tuning.
type LAParams struct {
	// LineOverlap is the vertical overlap ratio two glyphs need to be
	// considered part of the same line.
	LineOverlap float64

	// CharMargin is the maximum horizontal gap between consecutive
	// glyphs on a line, as a multiple of glyph size.
	CharMargin float64

	// LineMargin is the maximum vertical gap between lines of the same
	// text box, as a multiple of line height.
	LineMargin float64

	// WordMargin is the gap, as a multiple of glyph size, beyond which
	// a space is inserted between glyphs.
	WordMargin float64

	// BoxesFlow biases box ordering between horizontal (-1) and
	// vertical (+1) position. Nil keeps boxes in detection order.
	BoxesFlow *float64

	// DetectVertical enables separate handling of vertical writing.
	DetectVertical bool

	// AllTexts includes text inside figures.
	AllTexts bool
}

// DefaultLAParams returns the standard layout parameters.
func DefaultLAParams() *LAParams {
	flow := 0.5
	return &LAParams{
		LineOverlap: 0.5,
		CharMargin:  2.0,
		LineMargin:  0.5,
		WordMargin:  0.1,
		BoxesFlow:   &flow,
	}
}

// A TextLine is a run of glyphs sharing a baseline.
type TextLine struct {
	Glyphs         []Glyph
	X0, Y0, X1, Y1 float64
	Vertical       bool
}

// A TextBox is a group of adjacent lines forming a block of text.
type TextBox struct {
	Lines          []*TextLine
	X0, Y0, X1, Y1 float64
	Index          int
}

// A LayoutResult is the analyzed layout of one page.
type LayoutResult struct {
	Boxes        []*TextBox
	PageW, PageH float64
}

// Text renders the line's glyphs as a string, inserting spaces at word
// gaps. Output is NFC-normalized.
func (l *TextLine) Text(la *LAParams) string {
	var b strings.Builder
	for i, g := range l.Glyphs {
		if i > 0 {
			p := l.Glyphs[i-1]
			var gap, unit float64
			if l.Vertical {
				gap = (p.Y - p.W) - g.Y
				unit = g.H
			} else {
				gap = g.X - (p.X + p.W)
				unit = g.W
				if unit == 0 {
					unit = g.H
				}
			}
			if unit > 0 && gap > la.WordMargin*unit {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.Text)
	}
	return norm.NFC.String(b.String())
}

// Text renders the box as its lines joined by newlines.
func (t *TextBox) Text(la *LAParams) string {
	var b strings.Builder
	for _, l := range t.Lines {
		b.WriteString(l.Text(la))
		b.WriteByte('\n')
	}
	return b.String()
}

// buildLayout groups a page's glyphs into lines and boxes.
func buildLayout(glyphs []Glyph, la *LAParams, pageW, pageH float64) *LayoutResult {
	res := &LayoutResult{PageW: pageW, PageH: pageH}
	lines := groupLines(glyphs, la)
	res.Boxes = groupBoxes(lines, la)
	orderBoxes(res.Boxes, la)
	for i, t := range res.Boxes {
		t.Index = i
	}
	return res
}

// groupLines scans glyphs in emission order and splits them into lines
// at baseline jumps and large horizontal gaps.
func groupLines(glyphs []Glyph, la *LAParams) []*TextLine {
	var lines []*TextLine
	var cur *TextLine
	for _, g := range glyphs {
		if g.Text == "" && g.W == 0 {
			continue
		}
		vertical := la.DetectVertical && g.Vertical
		if cur != nil && !lineBreak(cur, g, vertical, la) {
			cur.add(g)
			continue
		}
		cur = &TextLine{
			X0: g.X, Y0: g.Y, X1: g.X + g.W, Y1: g.Y + g.H,
			Vertical: vertical,
		}
		cur.add(g)
		lines = append(lines, cur)
	}
	return lines
}

func lineBreak(l *TextLine, g Glyph, vertical bool, la *LAParams) bool {
	if vertical != l.Vertical {
		return true
	}
	p := l.Glyphs[len(l.Glyphs)-1]
	size := math.Max(g.H, p.H)
	if size == 0 {
		size = 1
	}
	if vertical {
		if math.Abs(g.X-p.X) > la.LineOverlap*size {
			return true
		}
		gap := (p.Y - p.W) - g.Y
		return gap > la.CharMargin*size || gap < -size
	}
	if math.Abs(g.Y-p.Y) > la.LineOverlap*size {
		return true
	}
	gap := g.X - (p.X + p.W)
	return gap > la.CharMargin*size || gap < -size
}

func (l *TextLine) add(g Glyph) {
	l.Glyphs = append(l.Glyphs, g)
	l.X0 = math.Min(l.X0, g.X)
	l.Y0 = math.Min(l.Y0, g.Y)
	l.X1 = math.Max(l.X1, g.X+g.W)
	l.Y1 = math.Max(l.Y1, g.Y+g.H)
}

// groupBoxes merges consecutive lines into boxes when they are close
// vertically and overlap horizontally.
func groupBoxes(lines []*TextLine, la *LAParams) []*TextBox {
	var boxes []*TextBox
	var cur *TextBox
	for _, l := range lines {
		if cur != nil && sameBox(cur, l, la) {
			cur.Lines = append(cur.Lines, l)
			cur.X0 = math.Min(cur.X0, l.X0)
			cur.Y0 = math.Min(cur.Y0, l.Y0)
			cur.X1 = math.Max(cur.X1, l.X1)
			cur.Y1 = math.Max(cur.Y1, l.Y1)
			continue
		}
		cur = &TextBox{
			Lines: []*TextLine{l},
			X0:    l.X0, Y0: l.Y0, X1: l.X1, Y1: l.Y1,
		}
		boxes = append(boxes, cur)
	}
	return boxes
}

func sameBox(t *TextBox, l *TextLine, la *LAParams) bool {
	last := t.Lines[len(t.Lines)-1]
	if l.Vertical != last.Vertical {
		return false
	}
	height := math.Max(last.Y1-last.Y0, l.Y1-l.Y0)
	if height == 0 {
		height = 1
	}
	if l.Vertical {
		gap := last.X0 - l.X1
		overlap := math.Min(last.Y1, l.Y1) - math.Max(last.Y0, l.Y0)
		return gap > -height && gap < la.LineMargin*height && overlap > 0
	}
	gap := last.Y0 - l.Y1
	overlap := math.Min(last.X1, l.X1) - math.Max(last.X0, l.X0)
	return gap > -height && gap < la.LineMargin*height && overlap > 0
}

// orderBoxes sorts boxes into reading order: top to bottom, then left
// to right, weighted by BoxesFlow. A nil BoxesFlow keeps detection
// order.
func orderBoxes(boxes []*TextBox, la *LAParams) {
	if la.BoxesFlow == nil {
		return
	}
	flow := *la.BoxesFlow
	sort.SliceStable(boxes, func(i, j int) bool {
		a, b := boxes[i], boxes[j]
		ka := (1-flow)*a.X0 - (1+flow)*a.Y1
		kb := (1-flow)*b.X0 - (1+flow)*b.Y1
		return ka < kb
	})
}
