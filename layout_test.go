package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// glyphRun lays out a word's glyphs left to right at a baseline.
func glyphRun(text string, x, y float64) []Glyph {
	var gs []Glyph
	for _, r := range text {
		gs = append(gs, Glyph{Text: string(r), X: x, Y: y, W: 6, H: 12, Size: 12})
		x += 6
	}
	return gs
}

func TestGroupLinesSplitsOnBaselineJump(t *testing.T) {
	glyphs := append(glyphRun("top", 72, 700), glyphRun("bottom", 72, 650)...)
	lines := groupLines(glyphs, DefaultLAParams())
	require.Len(t, lines, 2)
	assert.Equal(t, "top", lines[0].Text(DefaultLAParams()))
	assert.Equal(t, "bottom", lines[1].Text(DefaultLAParams()))
}

func TestGroupLinesSplitsOnWideGap(t *testing.T) {
	// Gap of 100pt at size 12 far exceeds CharMargin 2.0.
	glyphs := append(glyphRun("left", 72, 700), glyphRun("right", 300, 700)...)
	lines := groupLines(glyphs, DefaultLAParams())
	assert.Len(t, lines, 2)
}

func TestWordMarginInsertsSpace(t *testing.T) {
	la := DefaultLAParams()
	glyphs := append(glyphRun("ab", 72, 700), glyphRun("cd", 86, 700)...)
	// Gap is 86-84 = 2pt > 0.1*6; still one line (2 < 2.0*12).
	lines := groupLines(glyphs, la)
	require.Len(t, lines, 1)
	assert.Equal(t, "ab cd", lines[0].Text(la))
}

func TestNoSpaceWhenGlyphsAbut(t *testing.T) {
	la := DefaultLAParams()
	lines := groupLines(glyphRun("abcd", 72, 700), la)
	require.Len(t, lines, 1)
	assert.Equal(t, "abcd", lines[0].Text(la))
}

func TestGroupBoxesMergesAdjacentLines(t *testing.T) {
	la := DefaultLAParams()
	glyphs := append(glyphRun("line one", 72, 712), glyphRun("line two", 72, 698)...)
	glyphs = append(glyphs, glyphRun("far away", 72, 300)...)
	layout := buildLayout(glyphs, la, 612, 792)
	require.Len(t, layout.Boxes, 2)
	assert.Len(t, layout.Boxes[0].Lines, 2)
	assert.Len(t, layout.Boxes[1].Lines, 1)
}

func TestBoxReadingOrderTopToBottom(t *testing.T) {
	la := DefaultLAParams()
	// Emit bottom box first; flow ordering puts the top box first.
	glyphs := append(glyphRun("bottom", 72, 100), glyphRun("top", 72, 700)...)
	layout := buildLayout(glyphs, la, 612, 792)
	require.Len(t, layout.Boxes, 2)
	assert.Equal(t, "top\n", layout.Boxes[0].Text(la))
	assert.Equal(t, "bottom\n", layout.Boxes[1].Text(la))
}

func TestNilBoxesFlowKeepsDetectionOrder(t *testing.T) {
	la := DefaultLAParams()
	la.BoxesFlow = nil
	glyphs := append(glyphRun("bottom", 72, 100), glyphRun("top", 72, 700)...)
	layout := buildLayout(glyphs, la, 612, 792)
	require.Len(t, layout.Boxes, 2)
	assert.Equal(t, "bottom\n", layout.Boxes[0].Text(la))
}

func TestBoxIndexAssigned(t *testing.T) {
	la := DefaultLAParams()
	glyphs := append(glyphRun("a", 72, 700), glyphRun("b", 72, 100)...)
	layout := buildLayout(glyphs, la, 612, 792)
	for i, box := range layout.Boxes {
		assert.Equal(t, i, box.Index)
	}
}

func TestEmptyGlyphsDropped(t *testing.T) {
	la := DefaultLAParams()
	glyphs := []Glyph{{Text: "", W: 0}, {Text: "x", X: 10, Y: 10, W: 6, H: 12}}
	lines := groupLines(glyphs, la)
	require.Len(t, lines, 1)
	assert.Len(t, lines[0].Glyphs, 1)
}
