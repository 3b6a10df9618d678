package dtr

import (
	"strings"
	"unicode"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/punch"
	"github.com/mozillazg/go-unidecode"
)

// honorifics are generational suffixes dropped from names before comparison.
var honorifics = map[string]struct{}{
	"jr":  {},
	"sr":  {},
	"ii":  {},
	"iii": {},
	"iv":  {},
}

// NormalizeDigits keeps only ASCII digits and strips leading zeros.
// "03-0946" becomes "30946"; input without digits (or only zeros) becomes "".
func NormalizeDigits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c < '0' || c > '9' {
			continue
		}
		if c == '0' && b.Len() == 0 {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// NormalizeName produces the comparison key of a person's name.
//
// Diacritics are folded to ASCII and the result lowercased. "Last, First Middle"
// is reordered to "first middle last" using the first comma. Generational
// suffixes (jr, sr, ii, iii, iv) are dropped as whole words, every other
// non-alphanumeric character is removed and whitespace is collapsed.
func NormalizeName(raw string) string {
	s := strings.ToLower(unidecode.Unidecode(raw))
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:] + " " + s[:i]
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	tokens := strings.Fields(b.String())
	kept := tokens[:0]
	for _, tok := range tokens {
		if _, ok := honorifics[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// withKeys fills the memoised normalizer keys of p when they are missing.
func withKeys(p punch.RawPunch) punch.RawPunch {
	if p.DigitKey == "" && p.DeviceCode != "" {
		p.DigitKey = NormalizeDigits(p.DeviceCode)
	}
	if p.NameKey == "" && p.RawName != "" {
		p.NameKey = NormalizeName(p.RawName)
	}
	return p
}
