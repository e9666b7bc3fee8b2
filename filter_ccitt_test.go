package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func faxParam(k, columns, rows int64, extra dict) Value {
	d := dict{"K": k, "Columns": columns, "Rows": rows}
	for key, v := range extra {
		d[key] = v
	}
	return Value{data: d}
}

func TestFaxParamsDefaults(t *testing.T) {
	p := faxParamsFrom(Value{})
	assert.Equal(t, 0, p.k)
	assert.Equal(t, 1728, p.columns)
	assert.Equal(t, 0, p.rows)
	assert.False(t, p.blackIs1)
	assert.False(t, p.byteAlign)
}

func TestFaxGroup3WhiteRow(t *testing.T) {
	// White run of 8 is 10011; padded to a byte that is 0x98.
	got := decode(t, "CCITTFaxDecode", faxParam(0, 8, 1, nil), []byte{0x98})
	assert.Equal(t, []byte{0xff}, got, "white pixels decode to 1 bits by default")
}

func TestFaxGroup3BlackThenWhite(t *testing.T) {
	// White 0 (00110101), black 4 (011), white 4 (1011).
	data := []byte{0x35, 0x76}
	got := decode(t, "CCITTFaxDecode", faxParam(0, 8, 1, nil), data)
	assert.Equal(t, []byte{0x0f}, got)
}

func TestFaxGroup3MultiRowByteAligned(t *testing.T) {
	data := []byte{0x98, 0x98}
	param := faxParam(0, 8, 2, dict{"EncodedByteAlign": true})
	got := decode(t, "CCITTFaxDecode", param, data)
	assert.Equal(t, []byte{0xff, 0xff}, got)
}

func TestFaxGroup4VerticalMode(t *testing.T) {
	// Two all-white rows, each a single V0 code (one 1 bit).
	got := decode(t, "CCITTFaxDecode", faxParam(-1, 8, 2, nil), []byte{0xc0})
	assert.Equal(t, []byte{0xff, 0xff}, got)
}

func TestFaxBlackIs1InvertsOutput(t *testing.T) {
	param := faxParam(0, 8, 1, dict{"BlackIs1": true})
	got := decode(t, "CCITTFaxDecode", param, []byte{0x98})
	assert.Equal(t, []byte{0x00}, got, "an all-white row has no 1 bits when BlackIs1 is set")
}

func TestFaxRowsCapStopsDecoding(t *testing.T) {
	// Three byte-aligned all-white rows encoded, but only two wanted.
	data := []byte{0x98, 0x98, 0x98}
	param := faxParam(0, 8, 2, dict{"EncodedByteAlign": true})
	got := decode(t, "CCITTFaxDecode", param, data)
	assert.Equal(t, []byte{0xff, 0xff}, got)
}
