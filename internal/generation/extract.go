package generation

import (
	"bytes"
	"encoding/json"
	"strings"
)

const maxExtractDepth = 8

// audioKeys lists object fields that may carry the track, most specific first.
var audioKeys = []string{
	"audio_url",
	"audioUrl",
	"stream_audio_url",
	"video_url",
	"output",
	"result",
	"data",
	"url",
}

// ExtractAudioURL finds a playable URL in a music backend response. Objects
// are probed by audioKeys in order, arrays yield their first candidate.
func ExtractAudioURL(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	return probeAudio(v, 0)
}

func probeAudio(v any, depth int) (string, bool) {
	if depth > maxExtractDepth {
		return "", false
	}

	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") {
			return s, true
		}
		// Some networks return the result list as an encoded JSON string.
		if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
			return ExtractAudioURL(json.RawMessage(s))
		}
	case []any:
		for _, item := range t {
			if url, ok := probeAudio(item, depth+1); ok {
				return url, true
			}
		}
	case map[string]any:
		for _, key := range audioKeys {
			if item, ok := t[key]; ok {
				if url, ok := probeAudio(item, depth+1); ok {
					return url, true
				}
			}
		}
	}
	return "", false
}
