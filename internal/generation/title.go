package generation

import (
	"strings"
	"unicode"
)

const (
	maxTitleRunes = 50
	defaultTitle  = "Personal song"
)

var vocalizations = map[string]struct{}{
	"oh": {}, "ooh": {}, "oooh": {}, "ah": {}, "aah": {}, "la": {}, "na": {},
	"yeah": {}, "hey": {}, "mm": {}, "mmm": {}, "uh": {}, "whoa": {}, "woo": {},
	"о": {}, "оо": {}, "а": {}, "ла": {}, "на": {}, "эй": {}, "е": {}, "у": {},
}

// SongTitle takes the first substantive lyric line, or the fallback when the
// text has none. The result never exceeds 50 runes.
func SongTitle(text, fallback string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "(") {
			continue
		}
		line = strings.TrimFunc(line, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSpace(r)
		})
		if line == "" || isVocalization(line) {
			continue
		}
		return truncateRunes(line, maxTitleRunes)
	}

	if fallback = strings.TrimSpace(fallback); fallback != "" {
		return truncateRunes(fallback, maxTitleRunes)
	}
	return defaultTitle
}

func isVocalization(line string) bool {
	words := strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if _, ok := vocalizations[w]; !ok {
			return false
		}
	}
	return true
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
