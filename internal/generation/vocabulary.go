package generation

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// Vocabulary maps human readable form labels to music network tags.
type Vocabulary struct {
	Genres map[string]string `yaml:"genres"`
	Voices map[string]string `yaml:"voices"`
	Moods  map[string]string `yaml:"moods"`
}

// LoadVocabulary parses a YAML vocabulary and lower-cases its keys.
func LoadVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	v.Genres = lowerKeys(v.Genres)
	v.Voices = lowerKeys(v.Voices)
	v.Moods = lowerKeys(v.Moods)
	return &v, nil
}

// DefaultVocabulary returns the embedded vocabulary.
func DefaultVocabulary() (*Vocabulary, error) {
	return LoadVocabulary(defaultVocabulary)
}

// Tags joins the mapped genre, voice and mood. Unknown labels pass through
// lower-cased, empty ones are skipped.
func (v *Vocabulary) Tags(genre, voice, mood string) string {
	var parts []string
	for _, item := range []struct {
		table map[string]string
		label string
	}{
		{v.Genres, genre},
		{v.Voices, voice},
		{v.Moods, mood},
	} {
		label := strings.ToLower(strings.TrimSpace(item.label))
		if label == "" {
			continue
		}
		if token, ok := item.table[label]; ok {
			parts = append(parts, token)
			continue
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
