package report

import (
	"strings"
	"unicode"
)

// The nine major Indic scripts share one layout in Unicode: the same offset
// inside each 128 code point block holds the same letter, from Devanagari
// at U+0900 to Malayalam at U+0D00.
const (
	indicFirst = 0x0900
	indicLast  = 0x0D7F

	offNukta  = 0x3C
	offVirama = 0x4D
)

var indicLetters = [0x80]string{
	0x01: "n", 0x02: "n", 0x03: "h",
	0x04: "a", 0x05: "a", 0x06: "a", 0x07: "i", 0x08: "i", 0x09: "u", 0x0A: "u",
	0x0B: "ri", 0x0C: "li", 0x0D: "e", 0x0E: "e", 0x0F: "e", 0x10: "ai",
	0x11: "o", 0x12: "o", 0x13: "o", 0x14: "au",

	0x15: "k", 0x16: "kh", 0x17: "g", 0x18: "gh", 0x19: "n",
	0x1A: "ch", 0x1B: "chh", 0x1C: "j", 0x1D: "jh", 0x1E: "n",
	0x1F: "t", 0x20: "th", 0x21: "d", 0x22: "dh", 0x23: "n",
	0x24: "t", 0x25: "th", 0x26: "d", 0x27: "dh", 0x28: "n", 0x29: "n",
	0x2A: "p", 0x2B: "ph", 0x2C: "b", 0x2D: "bh", 0x2E: "m",
	0x2F: "y", 0x30: "r", 0x31: "r", 0x32: "l", 0x33: "l", 0x34: "l", 0x35: "v",
	0x36: "sh", 0x37: "sh", 0x38: "s", 0x39: "h",

	0x3E: "a", 0x3F: "i", 0x40: "i", 0x41: "u", 0x42: "u", 0x43: "ri", 0x44: "ri",
	0x45: "e", 0x46: "e", 0x47: "e", 0x48: "ai", 0x49: "o", 0x4A: "o", 0x4B: "o", 0x4C: "au",

	0x50: "om",
	0x58: "q", 0x59: "kh", 0x5A: "gh", 0x5B: "z", 0x5C: "r", 0x5D: "rh", 0x5E: "f", 0x5F: "y",
	0x60: "ri", 0x61: "li", 0x62: "li", 0x63: "li",

	// Malayalam chillu letters: consonants without a vowel.
	0x7A: "n", 0x7B: "n", 0x7C: "r", 0x7D: "l", 0x7E: "l", 0x7F: "k",
}

func isIndic(r rune) bool { return r >= indicFirst && r <= indicLast }

func isConsonant(off int) bool {
	return (off >= 0x15 && off <= 0x39) || (off >= 0x58 && off <= 0x5F)
}

func isVowelSign(off int) bool {
	return (off >= 0x3E && off <= 0x4C) || off == 0x62 || off == 0x63
}

func isIndependentVowel(off int) bool {
	return (off >= 0x04 && off <= 0x14) || off == 0x60 || off == 0x61 || off >= 0x7A
}

// romanize spells Indic script text in plain Latin letters the way names
// are usually written in India ("राहुल शर्मा" becomes "Rahul Sharma"). Text
// without Indic letters is returned unchanged.
//
// A consonant carries an implicit "a" unless a vowel sign or virama
// follows it; the implicit vowel of the last consonant of a word of two or
// more letters is dropped.
func romanize(s string) string {
	if strings.IndexFunc(s, isIndic) < 0 {
		return s
	}
	var (
		b        strings.Builder
		inherent bool
		letters  int
		capNext  = true
	)
	settle := func(wordEnd bool) {
		if inherent && !(wordEnd && letters > 1) {
			b.WriteByte('a')
		}
		inherent = false
	}
	emit := func(latin string) {
		if latin == "" {
			return
		}
		if capNext {
			latin = strings.ToUpper(latin[:1]) + latin[1:]
			capNext = false
		}
		b.WriteString(latin)
	}
	for _, r := range s {
		if !isIndic(r) {
			settle(true)
			letters = 0
			b.WriteRune(r)
			capNext = unicode.IsSpace(r)
			continue
		}
		off := int(r-indicFirst) % 0x80
		switch {
		case off == offNukta:
		case off == offVirama:
			inherent = false
		case isVowelSign(off):
			inherent = false
			emit(indicLetters[off])
		case isConsonant(off):
			settle(false)
			emit(indicLetters[off])
			inherent = true
			letters++
		case isIndependentVowel(off):
			settle(false)
			emit(indicLetters[off])
			letters++
		case off >= 0x66 && off <= 0x6F:
			settle(true)
			letters = 0
			b.WriteByte(byte('0' + off - 0x66))
			capNext = false
		case off == 0x64 || off == 0x65:
			settle(true)
			letters = 0
			b.WriteByte('.')
		case r == 0x0A70:
			// Gurmukhi tippi nasalises like an anusvara.
			settle(false)
			emit("n")
		default:
			settle(false)
			emit(indicLetters[off])
		}
	}
	settle(true)
	return b.String()
}
