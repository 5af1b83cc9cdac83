// Package langhint guesses the script and, where the script is decisive,
// the language of a body of text. Hints feed storage and filtering; they
// are advisory, never authoritative
package langhint

import "unicode"

// minLetters is the letter count below which no language is emitted.
// Short fragments mislabel too often to be worth a hint
const minLetters = 20

// classes orders the scripts we classify. Earlier entries win count ties,
// so the kana outrank Han and Japanese text does not read as Chinese.
// A non-empty lang marks scripts whose mere presence fixes the language;
// Han, Cyrillic and Devanagari stay unset because each spans many
var classes = []struct {
	script string
	runes  *unicode.RangeTable
	lang   string
}{
	{"Hiragana", unicode.Hiragana, "ja"},
	{"Katakana", unicode.Katakana, "ja"},
	{"Hangul", unicode.Hangul, "ko"},
	{"Han", unicode.Han, ""},
	{"Arabic", unicode.Arabic, "ar"},
	{"Hebrew", unicode.Hebrew, "he"},
	{"Thai", unicode.Thai, "th"},
	{"Greek", unicode.Greek, "el"},
	{"Cyrillic", unicode.Cyrillic, ""},
	{"Georgian", unicode.Georgian, ""},
	{"Armenian", unicode.Armenian, ""},
	{"Devanagari", unicode.Devanagari, ""},
	{"Latin", unicode.Latin, ""},
}

// DetectScriptAndLang returns the predominant script of s and a BCP-47
// language code when the script implies one. Either result may be ""
func DetectScriptAndLang(s string) (script, lang string) {
	counts := make([]int, len(classes))
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for i, c := range classes {
			if unicode.In(r, c.runes) {
				counts[i]++
				break
			}
		}
	}

	best := -1
	for i, n := range counts {
		if n > 0 && (best < 0 || n > counts[best]) {
			best = i
		}
	}
	if best < 0 {
		return "", ""
	}
	script = classes[best].script

	if letters >= minLetters {
		for i, c := range classes {
			if counts[i] > 0 && c.lang != "" {
				lang = c.lang
				break
			}
		}
	}
	return script, lang
}
