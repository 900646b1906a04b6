package slug

import (
	"regexp"
	"strings"
	"unicode"
)

// Latin letters and Hebrew consonants survive; everything else becomes a
// separator.
var separatorRegexp = regexp.MustCompile(`[^a-z0-9\p{Hebrew}]+`)

var latinFolder = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a",
	"ç", "c",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ñ", "n",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ß", "ss",
)

// Generate returns a URL path segment for name: lowercased, accented Latin
// folded to ASCII, Hebrew vowel points dropped, and every run of other
// characters collapsed to a single hyphen.
//
//	Generate("Café Zezman")   // "cafe-zezman"
//	Generate("מִסְעָדוֹת כשרות") // "מסעדות-כשרות"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = latinFolder.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, s)
	s = separatorRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FromNames prefers the English name, which yields an ASCII slug, and falls
// back to the primary name.
func FromNames(name, nameEn string) string {
	if s := Generate(nameEn); s != "" {
		return s
	}
	return Generate(name)
}
