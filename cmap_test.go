package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleToUnicode = `
/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0003> <0020>
<0041> <2603>
endbfchar
2 beginbfrange
<0010> <0012> <0061>
<0020> <0021> [<00480069> <0042007900650021>]
endbfrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end
`

func TestParseToUnicode(t *testing.T) {
	cm := parseToUnicode([]byte(sampleToUnicode))
	require.NotNil(t, cm)

	lookup := func(code uint32) string {
		s, _ := cm.lookup(code)
		return s
	}
	assert.Equal(t, " ", lookup(0x0003))
	assert.Equal(t, "☃", lookup(0x0041))

	// bfrange with a base destination increments through the range.
	assert.Equal(t, "a", lookup(0x0010))
	assert.Equal(t, "b", lookup(0x0011))
	assert.Equal(t, "c", lookup(0x0012))

	// bfrange with an array destination maps per code, including
	// multi-unit UTF-16 destinations.
	assert.Equal(t, "Hi", lookup(0x0020))
	assert.Equal(t, "Bye!", lookup(0x0021))

	_, ok := cm.lookup(0x9999)
	assert.False(t, ok)
}

func TestCMapDecodeTwoByteCodes(t *testing.T) {
	cm := parseToUnicode([]byte(sampleToUnicode))

	var texts []string
	var widths []int
	cm.Decode("\x00\x41\x00\x10\x00\x03", func(code uint32, nbytes int, text string) {
		texts = append(texts, text)
		widths = append(widths, nbytes)
	})
	assert.Equal(t, []string{"☃", "a", " "}, texts)
	assert.Equal(t, []int{2, 2, 2}, widths)
}

func TestCMapDefaultCodespace(t *testing.T) {
	// No codespacerange: a 2-byte bfchar implies 2-byte codes.
	src := `1 beginbfchar
<0041> <0058>
endbfchar`
	cm := parseToUnicode([]byte(src))
	var got string
	cm.Decode("\x00\x41", func(code uint32, nbytes int, text string) {
		got += text
	})
	assert.Equal(t, "X", got)
}

func TestCMapSingleByteCodes(t *testing.T) {
	src := `1 begincodespacerange
<00> <FF>
endcodespacerange
1 beginbfchar
<41> <0041>
endbfchar`
	cm := parseToUnicode([]byte(src))
	var n int
	var got string
	cm.Decode("AB", func(code uint32, nbytes int, text string) {
		n++
		got += text
	})
	assert.Equal(t, 2, n, "two single-byte codes")
	assert.Equal(t, "A", got, "unmapped codes contribute nothing")
}
