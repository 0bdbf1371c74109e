package payment

import (
	"bytes"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
)

var errNotObject = errors.New("payload is not a JSON object")

// canonicalObject re-serializes a JSON object in its original key order with
// the excluded keys removed. It also returns the raw field values.
func canonicalObject(raw []byte, exclude ...string) ([]byte, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, errNotObject
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errNotObject
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, key := range exclude {
		skip[key] = struct{}{}
	}

	fields := make(map[string]json.RawMessage)
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, errNotObject
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}
		fields[key] = value
		if _, excluded := skip[key]; excluded {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := writeKey(&buf, key); err != nil {
			return nil, nil, err
		}
		buf.WriteByte(':')
		if err := json.Compact(&buf, value); err != nil {
			return nil, nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), fields, nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(key); err != nil {
		return err
	}
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// rawText returns the textual form of a scalar JSON value: strings unquoted,
// numbers and literals as written.
func rawText(value json.RawMessage) string {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return ""
	}
	if value[0] == '"' {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			return s
		}
	}
	return string(value)
}

func rawFloat(value json.RawMessage) float64 {
	f, _ := strconv.ParseFloat(rawText(value), 64)
	return f
}

func hmacSHA256Hex(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func md5Hex(payload string) string {
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func equalSignature(expected, provided string) bool {
	if provided == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(provided))
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
