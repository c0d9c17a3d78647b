// Package jsonutil extracts JSON payloads from model responses. Even with a
// declared response schema the text can arrive wrapped in ```json fences or
// with stray prose around it, so parsing always goes through here.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes a ```json ... ``` (or bare ``` ... ```) wrapper and
// returns the content between the fences. Text without a leading fence is
// returned unchanged.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}

	return strings.Join(lines[1:end], "\n")
}

// Extract returns the first JSON value (object or array) embedded in text,
// matching the opening delimiter with the last corresponding closer.
func Extract(text string) (string, error) {
	text = strings.TrimSpace(text)

	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")
	if objIdx == -1 && arrIdx == -1 {
		return "", fmt.Errorf("no JSON content found")
	}

	start, closer := arrIdx, "]"
	if arrIdx == -1 || (objIdx != -1 && objIdx < arrIdx) {
		start, closer = objIdx, "}"
	}

	text = text[start:]
	end := strings.LastIndex(text, closer)
	if end == -1 {
		return "", fmt.Errorf("no closing %s found", closer)
	}

	return text[:end+1], nil
}

// Parse strips fences, extracts the embedded JSON value, and unmarshals it
// into T.
func Parse[T any](raw string) (T, error) {
	var zero T

	payload, err := Extract(StripFences(raw))
	if err != nil {
		return zero, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	var result T
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		preview := payload
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return result, nil
}
