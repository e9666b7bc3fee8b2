package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripControl(t *testing.T) {
	assert.Equal(t, "ab", stripControl("a\x01\x02b"))
	// Tab and newline survive.
	assert.Equal(t, "a\tb\nc", stripControl("a\tb\nc"))
	// Clean strings come back without copying.
	s := "perfectly clean"
	assert.Equal(t, s, stripControl(s))
	assert.Equal(t, "", stripControl("\x00\x1f\x0b"))
}

func TestControlScansAgree(t *testing.T) {
	cases := []string{
		"",
		"short",
		"a longer string with no control characters at all.............",
		"ctrl at end of a long string...................................\x01",
		"\x01ctrl at start",
		strings.Repeat("x", 1000),
		strings.Repeat("x", 1000) + "\x1f",
		"tab\tand\nnewline are fine",
	}
	for _, s := range cases {
		assert.Equal(t, hasControlGeneric(s), hasControlWide(s), "input %q", s)
		assert.Equal(t, hasControlGeneric(s), hasControl(s), "input %q", s)
	}
}

func TestXMLEscape(t *testing.T) {
	assert.Equal(t, "a&amp;b&lt;c&gt;d&quot;e&#39;f", xmlEscape(`a&b<c>d"e'f`))
	assert.Equal(t, "plain", xmlEscape("plain"))
}
