package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SongInput is the song order form as submitted by the customer.
type SongInput struct {
	RecipientName string   `json:"recipientName"`
	Occasion      string   `json:"occasion"`
	Relationship  string   `json:"relationship"`
	Description   string   `json:"description"`
	Genre         string   `json:"genre"`
	Voice         string   `json:"voice"`
	Mood          string   `json:"mood"`
	Phrases       []string `json:"phrases"`
	SongName      string   `json:"songName"`
}

// ParseSongInput decodes the order form. A song needs a recipient or a story.
func ParseSongInput(raw json.RawMessage) (SongInput, error) {
	var in SongInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(in.RecipientName) == "" && strings.TrimSpace(in.Description) == "" {
		return in, fmt.Errorf("%w: recipient and description are empty", ErrInvalidInput)
	}
	return in, nil
}

func BuildSongPrompt(in SongInput) string {
	var b strings.Builder
	b.WriteString("Write lyrics for a personal song used as a gift.\n")
	writeField(&b, "Recipient", in.RecipientName)
	writeField(&b, "Relationship to the customer", in.Relationship)
	writeField(&b, "Occasion", in.Occasion)
	writeField(&b, "Story about the recipient", in.Description)
	writeField(&b, "Genre", in.Genre)
	writeField(&b, "Mood", in.Mood)

	var phrases []string
	for _, p := range in.Phrases {
		if p = strings.TrimSpace(p); p != "" {
			phrases = append(phrases, fmt.Sprintf("%q", p))
		}
	}
	if len(phrases) > 0 {
		b.WriteString("Phrases that must appear verbatim: ")
		b.WriteString(strings.Join(phrases, ", "))
		b.WriteString("\n")
	}

	b.WriteString("Structure the song as [Verse], [Chorus], [Verse], [Chorus], [Bridge], [Chorus], [End]. ")
	b.WriteString("Mark sections with square brackets on their own line. ")
	b.WriteString("Reply with the lyrics only, in the language of the story.")
	return b.String()
}

// TarotInput is the tarot reading order form.
type TarotInput struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"`
	Question  string `json:"question"`
	Spread    string `json:"spread"`
}

func ParseTarotInput(raw json.RawMessage) (TarotInput, error) {
	var in TarotInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(in.Question) == "" {
		return in, fmt.Errorf("%w: question is empty", ErrInvalidInput)
	}
	return in, nil
}

func BuildTarotPrompt(in TarotInput) string {
	spread := in.Spread
	if spread == "" {
		spread = "three cards: past, present, future"
	}

	var b strings.Builder
	b.WriteString("Act as a warm and thoughtful tarot reader.\n")
	writeField(&b, "Name", in.Name)
	writeField(&b, "Date of birth", in.BirthDate)
	writeField(&b, "Question", in.Question)
	writeField(&b, "Spread", spread)
	b.WriteString("Draw the cards, name each one and explain it in the context of the question. ")
	b.WriteString("Finish with a short piece of advice. Reply in the language of the question.")
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}
