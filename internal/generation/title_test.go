package generation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSongTitle(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		fallback string
		want     string
	}{
		{"first lyric line", "[Verse]\nHello world\n[End]", "", "Hello world"},
		{"skips directions", "(softly)\n\n[Intro]\nOur summer, Lena!\n", "", "Our summer, Lena"},
		{"skips vocalizations", "Oh, oh!\nLa la la\nЭй, эй\nYou are my light", "", "You are my light"},
		{"fallback name", "[Verse]\n(ooh)\n", "  Lena  ", "Lena"},
		{"default", "", "", "Personal song"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SongTitle(tc.text, tc.fallback))
		})
	}
}

func TestSongTitleTruncates(t *testing.T) {
	line := strings.Repeat("Песня ", 20)
	title := SongTitle(line, "")
	assert.LessOrEqual(t, utf8.RuneCountInString(title), 50)
	assert.True(t, strings.HasPrefix(line, title))
}
