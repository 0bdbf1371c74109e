package test

import (
	"math/rand/v2"
	"strings"
)

const (
	lowerAlnum   = "abcdefghijklmnopqrstuvwxyz0123456789"
	asciiLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ" + lowerAlnum
)

// RandomASCIIString returns a random alphanumeric string of minLen..maxLen runes.
func RandomASCIIString(minLen, maxLen int) string {
	return randomFrom(asciiLetters, minLen, maxLen)
}

// RandomEmail returns an address accepted by order validation.
func RandomEmail() string {
	return randomFrom(lowerAlnum, 4, 12) + "@" + randomFrom(lowerAlnum, 3, 8) + ".example"
}

// RandomPartnerID returns a valid lower-case affiliate slug.
func RandomPartnerID() string {
	return "p" + randomFrom(lowerAlnum+"_-", 3, 20)
}

func randomFrom(alphabet string, minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	n := minLen + rand.IntN(maxLen-minLen+1)

	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(alphabet[rand.IntN(len(alphabet))])
	}
	return b.String()
}
