package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOutputKind(t *testing.T) {
	for in, want := range map[string]OutputKind{
		"text": OutputText,
		"txt":  OutputText,
		"xml":  OutputXML,
		"html": OutputHTML,
		"tag":  OutputTag,
	} {
		got, err := ParseOutputKind(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseOutputKind("pdf")
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
	assert.Equal(t, "Output", cerr.Field)
}

func TestConfigValidate(t *testing.T) {
	ok := Config{}
	assert.NoError(t, ok.validate())

	// Any rotation delta is valid; it is reduced modulo 360 at run time.
	for _, r := range []int{30, 45, -135, 360, 7200} {
		cfg := Config{Rotation: r}
		assert.NoError(t, cfg.validate(), "rotation %d", r)
	}

	cases := map[string]Config{
		"output":   {Output: OutputKind(9)},
		"scale":    {Scale: -1},
		"layout":   {LayoutMode: "diagonal"},
		"maxpages": {MaxPages: -3},
		"pages":    {PageNumbers: []int{0, -1}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			var cerr *ConfigError
			assert.ErrorAs(t, cfg.validate(), &cerr)
		})
	}
}

func TestOutputKindString(t *testing.T) {
	assert.Equal(t, "text", OutputText.String())
	assert.Equal(t, "tag", OutputTag.String())
	assert.Contains(t, OutputKind(7).String(), "7")
}
