// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Simple-font character encodings: WinAnsi, MacRoman, Standard, and
// glyph-name resolution for /Differences arrays.

package pdf

import (
	"strconv"
	"strings"
)

// buildSimpleEncoding returns the code-to-rune table for a simple font's
// /Encoding entry, which may be a name, a dictionary with /BaseEncoding
// and /Differences, or absent (StandardEncoding).
func buildSimpleEncoding(enc Value) [256]rune {
	var table [256]rune
	base := "StandardEncoding"
	switch enc.Kind() {
	case Name:
		base = enc.Name()
	case Dict:
		if b := enc.Key("BaseEncoding"); !b.IsNull() {
			base = b.Name()
		}
	}
	switch base {
	case "WinAnsiEncoding":
		table = winAnsiTable()
	case "MacRomanEncoding":
		table = macRomanTable()
	default:
		table = standardTable()
	}

	if enc.Kind() == Dict {
		diff := enc.Key("Differences")
		code := 0
		for i := 0; i < diff.Len(); i++ {
			e := diff.Index(i)
			switch e.Kind() {
			case Integer:
				code = int(e.Int64())
			case Name:
				if code >= 0 && code < 256 {
					table[code] = glyphToRune(e.Name())
				}
				code++
			}
		}
	}
	return table
}

// winAnsiTable is Windows code page 1252: Latin-1 with the C1 control
// block replaced by typographic characters.
func winAnsiTable() [256]rune {
	var t [256]rune
	for i := 32; i < 256; i++ {
		t[i] = rune(i)
	}
	for code, r := range map[int]rune{
		0x80: 0x20ac, 0x82: 0x201a, 0x83: 0x0192, 0x84: 0x201e,
		0x85: 0x2026, 0x86: 0x2020, 0x87: 0x2021, 0x88: 0x02c6,
		0x89: 0x2030, 0x8a: 0x0160, 0x8b: 0x2039, 0x8c: 0x0152,
		0x8e: 0x017d, 0x91: 0x2018, 0x92: 0x2019, 0x93: 0x201c,
		0x94: 0x201d, 0x95: 0x2022, 0x96: 0x2013, 0x97: 0x2014,
		0x98: 0x02dc, 0x99: 0x2122, 0x9a: 0x0161, 0x9b: 0x203a,
		0x9c: 0x0153, 0x9e: 0x017e, 0x9f: 0x0178,
	} {
		t[code] = r
	}
	return t
}

// macRomanTable is the Mac OS Roman upper half over ASCII.
func macRomanTable() [256]rune {
	var t [256]rune
	for i := 32; i < 128; i++ {
		t[i] = rune(i)
	}
	upper := [128]rune{
		0x00c4, 0x00c5, 0x00c7, 0x00c9, 0x00d1, 0x00d6, 0x00dc, 0x00e1,
		0x00e0, 0x00e2, 0x00e4, 0x00e3, 0x00e5, 0x00e7, 0x00e9, 0x00e8,
		0x00ea, 0x00eb, 0x00ed, 0x00ec, 0x00ee, 0x00ef, 0x00f1, 0x00f3,
		0x00f2, 0x00f4, 0x00f6, 0x00f5, 0x00fa, 0x00f9, 0x00fb, 0x00fc,
		0x2020, 0x00b0, 0x00a2, 0x00a3, 0x00a7, 0x2022, 0x00b6, 0x00df,
		0x00ae, 0x00a9, 0x2122, 0x00b4, 0x00a8, 0x2260, 0x00c6, 0x00d8,
		0x221e, 0x00b1, 0x2264, 0x2265, 0x00a5, 0x00b5, 0x2202, 0x2211,
		0x220f, 0x03c0, 0x222b, 0x00aa, 0x00ba, 0x03a9, 0x00e6, 0x00f8,
		0x00bf, 0x00a1, 0x00ac, 0x221a, 0x0192, 0x2248, 0x2206, 0x00ab,
		0x00bb, 0x2026, 0x00a0, 0x00c0, 0x00c3, 0x00d5, 0x0152, 0x0153,
		0x2013, 0x2014, 0x201c, 0x201d, 0x2018, 0x2019, 0x00f7, 0x25ca,
		0x00ff, 0x0178, 0x2044, 0x20ac, 0x2039, 0x203a, 0xfb01, 0xfb02,
		0x2021, 0x00b7, 0x201a, 0x201e, 0x2030, 0x00c2, 0x00ca, 0x00c1,
		0x00cb, 0x00c8, 0x00cd, 0x00ce, 0x00cf, 0x00cc, 0x00d3, 0x00d4,
		0xf8ff, 0x00d2, 0x00da, 0x00db, 0x00d9, 0x0131, 0x02c6, 0x02dc,
		0x00af, 0x02d8, 0x02d9, 0x02da, 0x00b8, 0x02dd, 0x02db, 0x02c7,
	}
	for i, r := range upper {
		t[128+i] = r
	}
	return t
}

// standardTable is Adobe StandardEncoding; ASCII plus a sparse upper half.
func standardTable() [256]rune {
	var t [256]rune
	for i := 32; i < 127; i++ {
		t[i] = rune(i)
	}
	t['\''] = 0x2019
	t['`'] = 0x2018
	for code, r := range map[int]rune{
		0xa1: 0x00a1, 0xa2: 0x00a2, 0xa3: 0x00a3, 0xa4: 0x2044,
		0xa5: 0x00a5, 0xa6: 0x0192, 0xa7: 0x00a7, 0xa8: 0x00a4,
		0xa9: 0x0027, 0xaa: 0x201c, 0xab: 0x00ab, 0xac: 0x2039,
		0xad: 0x203a, 0xae: 0xfb01, 0xaf: 0xfb02, 0xb1: 0x2013,
		0xb2: 0x2020, 0xb3: 0x2021, 0xb4: 0x00b7, 0xb6: 0x00b6,
		0xb7: 0x2022, 0xb8: 0x201a, 0xb9: 0x201e, 0xba: 0x201d,
		0xbb: 0x00bb, 0xbc: 0x2026, 0xbd: 0x2030, 0xbf: 0x00bf,
		0xc1: 0x0060, 0xc2: 0x00b4, 0xc3: 0x02c6, 0xc4: 0x02dc,
		0xc5: 0x00af, 0xc6: 0x02d8, 0xc7: 0x02d9, 0xc8: 0x00a8,
		0xca: 0x02da, 0xcb: 0x00b8, 0xcd: 0x02dd, 0xce: 0x02db,
		0xcf: 0x02c7, 0xd0: 0x2014, 0xe1: 0x00c6, 0xe3: 0x00aa,
		0xe8: 0x0141, 0xe9: 0x00d8, 0xea: 0x0152, 0xeb: 0x00ba,
		0xf1: 0x00e6, 0xf5: 0x0131, 0xf8: 0x0142, 0xf9: 0x00f8,
		0xfa: 0x0153, 0xfb: 0x00df,
	} {
		t[code] = r
	}
	return t
}

// glyphToRune resolves an Adobe glyph name to a rune. It understands the
// uniXXXX and uXXXX[XX] forms and a table of common names; unknown names
// map to the replacement character.
func glyphToRune(glyph string) rune {
	if r, ok := commonGlyphs[glyph]; ok {
		return r
	}
	if strings.HasPrefix(glyph, "uni") && len(glyph) >= 7 {
		if x, err := strconv.ParseUint(glyph[3:7], 16, 32); err == nil {
			return rune(x)
		}
	}
	if strings.HasPrefix(glyph, "u") && len(glyph) >= 5 && len(glyph) <= 7 {
		if x, err := strconv.ParseUint(glyph[1:], 16, 32); err == nil {
			return rune(x)
		}
	}
	return noRune
}

var commonGlyphs = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@',
	"A": 'A', "B": 'B', "C": 'C', "D": 'D', "E": 'E', "F": 'F', "G": 'G',
	"H": 'H', "I": 'I', "J": 'J', "K": 'K', "L": 'L', "M": 'M', "N": 'N',
	"O": 'O', "P": 'P', "Q": 'Q', "R": 'R', "S": 'S', "T": 'T', "U": 'U',
	"V": 'V', "W": 'W', "X": 'X', "Y": 'Y', "Z": 'Z',
	"bracketleft": '[', "backslash": '\\', "bracketright": ']',
	"asciicircum": '^', "underscore": '_', "grave": '`',
	"a": 'a', "b": 'b', "c": 'c', "d": 'd', "e": 'e', "f": 'f', "g": 'g',
	"h": 'h', "i": 'i', "j": 'j', "k": 'k', "l": 'l', "m": 'm', "n": 'n',
	"o": 'o', "p": 'p', "q": 'q', "r": 'r', "s": 's', "t": 't', "u": 'u',
	"v": 'v', "w": 'w', "x": 'x', "y": 'y', "z": 'z',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"quoteleft": 0x2018, "quoteright": 0x2019,
	"quotedblleft": 0x201c, "quotedblright": 0x201d,
	"endash": 0x2013, "emdash": 0x2014, "bullet": 0x2022,
	"ellipsis": 0x2026, "fi": 0xfb01, "fl": 0xfb02,
	"dagger": 0x2020, "daggerdbl": 0x2021,
	"Euro": 0x20ac, "sterling": 0x00a3, "yen": 0x00a5, "cent": 0x00a2,
	"section": 0x00a7, "paragraph": 0x00b6, "copyright": 0x00a9,
	"registered": 0x00ae, "trademark": 0x2122, "degree": 0x00b0,
	"plusminus": 0x00b1, "multiply": 0x00d7, "divide": 0x00f7,
	"germandbls": 0x00df, "nbspace": 0x00a0,
}
