package pdf

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func scanAll(src string) []token {
	sc := newScanner(strings.NewReader(src), 0)
	sc.allowEOF = true
	var toks []token
	for {
		tok := sc.readToken()
		if tok == nil || tok == io.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestScannerBasicTokens(t *testing.T) {
	toks := scanAll("42 -7 3.14 true false /Name (lit) <48656C6C6F> xref")
	assert.Equal(t, []token{
		int64(42), int64(-7), 3.14, true, false,
		name("Name"), "lit", "Hello", keyword("xref"),
	}, toks)
}

func TestScannerLiteralStringEscapes(t *testing.T) {
	toks := scanAll(`(a\nb) (par\(en\)) (octal \101) (cont\` + "\n" + `inue)`)
	assert.Equal(t, []token{"a\nb", "par(en)", "octal A", "continue"}, toks)
}

func TestScannerNestedParens(t *testing.T) {
	toks := scanAll("(outer (inner) more)")
	assert.Equal(t, []token{"outer (inner) more"}, toks)
}

func TestScannerHexOddDigits(t *testing.T) {
	// An odd final digit is padded with zero; whitespace is ignored.
	toks := scanAll("<48 65 6C6C 6F2>")
	assert.Equal(t, []token{"Hello "}, toks)
}

func TestScannerNameHexEscape(t *testing.T) {
	toks := scanAll("/A#20B /Type")
	assert.Equal(t, []token{name("A B"), name("Type")}, toks)
}

func TestScannerComments(t *testing.T) {
	toks := scanAll("1 % a comment\n2")
	assert.Equal(t, []token{int64(1), int64(2)}, toks)
}

func TestReadObjectDictAndArray(t *testing.T) {
	sc := newScanner(strings.NewReader("<< /A 1 /B [2 3] /C << /D true >> >>"), 0)
	sc.allowEOF = true
	obj := sc.readObject()
	d, ok := obj.(dict)
	assert.True(t, ok)
	assert.Equal(t, int64(1), d["A"])
	assert.Equal(t, array{int64(2), int64(3)}, d["B"])
	inner, ok := d["C"].(dict)
	assert.True(t, ok)
	assert.Equal(t, true, inner["D"])
}

func TestReadObjectIndirectReference(t *testing.T) {
	sc := newScanner(strings.NewReader("12 0 R"), 0)
	sc.allowEOF = true
	sc.allowObjptr = true
	assert.Equal(t, objptr{12, 0}, sc.readObject())

	// Without allowObjptr the same input is three separate tokens.
	sc = newScanner(strings.NewReader("12 0 R"), 0)
	sc.allowEOF = true
	assert.Equal(t, int64(12), sc.readObject())
}

func TestReadObjectDefinition(t *testing.T) {
	sc := newScanner(strings.NewReader("5 0 obj\n<< /K /V >>\nendobj"), 0)
	sc.allowEOF = true
	sc.allowObjptr = true
	def, ok := sc.readObject().(objdef)
	assert.True(t, ok)
	assert.Equal(t, objptr{5, 0}, def.ptr)
	d, _ := def.obj.(dict)
	assert.Equal(t, name("V"), d["K"])
}

func TestScannerSeekWithReaderAt(t *testing.T) {
	src := "AAAA 111 BBBB 222"
	sc := newScanner(strings.NewReader(src), 0)
	sc.allowEOF = true
	sc.seek(5)
	assert.Equal(t, int64(111), sc.readToken())
	sc.seek(14)
	assert.Equal(t, int64(222), sc.readToken())
	sc.seek(0)
	assert.Equal(t, keyword("AAAA"), sc.readToken())
}
